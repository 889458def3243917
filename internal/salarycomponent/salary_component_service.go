package salarycomponent

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	salarycomponenterrors "go-payroll/internal/salarycomponent/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const CatalogKeyPrefix = "salary_components:all:"

func GetCatalogKey(companyID string) string {
	return CatalogKeyPrefix + companyID
}

type Service interface {
	Create(ctx context.Context, companyID string, req CreateSalaryComponentRequest) (SalaryComponentResponse, error)
	GetAll(ctx context.Context, companyID string) ([]SalaryComponentResponse, error)
	GetByID(ctx context.Context, companyID, id string) (SalaryComponentResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateSalaryComponentRequest) (SalaryComponentResponse, error)
	Deactivate(ctx context.Context, companyID, id string) (SalaryComponentResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("salarycomponent.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salarycomponent.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateSalaryComponentRequest,
) (SalaryComponentResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SalaryComponentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	component := &SalaryComponent{
		ID:        uuid.New(),
		CompanyID: uuid.MustParse(companyID),
		Code:      req.Code,
		Name:      req.Name,
		Kind:      req.Kind,
		Taxable:   req.Taxable,
		IsActive:  true,
	}

	if err := qtx.Create(ctx, component); err != nil {
		return SalaryComponentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return SalaryComponentResponse{}, err
	}

	s.invalidateCatalogCache(ctx, companyID)
	s.logger.Info("salary component created",
		zap.String("company_id", companyID),
		zap.String("component_id", component.ID.String()),
		zap.String("code", component.Code),
	)

	return mapToResponse(*component), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]SalaryComponentResponse, error) {
	cacheKey := GetCatalogKey(companyID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []SalaryComponentResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// Singleflight collapses concurrent catalog reads into one query.
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		components, err := s.repo.FindAllByCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}

		resp := mapToListResponse(components)

		if s.rdb != nil {
			if payload, marshalErr := json.Marshal(resp); marshalErr == nil {
				_ = s.rdb.Set(ctx, cacheKey, payload, time.Hour).Err()
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]SalaryComponentResponse), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (SalaryComponentResponse, error) {
	component, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SalaryComponentResponse{}, salarycomponenterrors.ErrComponentNotFound
		}
		return SalaryComponentResponse{}, err
	}
	return mapToResponse(*component), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateSalaryComponentRequest,
) (SalaryComponentResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SalaryComponentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	component, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SalaryComponentResponse{}, salarycomponenterrors.ErrComponentNotFound
		}
		return SalaryComponentResponse{}, err
	}

	// Kind is immutable once created; only the label and tax flag may change.
	component.Name = req.Name
	component.Taxable = req.Taxable

	if err := qtx.Update(ctx, component); err != nil {
		return SalaryComponentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return SalaryComponentResponse{}, err
	}

	s.invalidateCatalogCache(ctx, companyID)

	return mapToResponse(*component), nil
}

func (s *service) Deactivate(ctx context.Context, companyID, id string) (SalaryComponentResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SalaryComponentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	component, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SalaryComponentResponse{}, salarycomponenterrors.ErrComponentNotFound
		}
		return SalaryComponentResponse{}, err
	}

	// Idempotent: deactivating an inactive component is a no-op.
	if component.IsActive {
		component.IsActive = false
		if err := qtx.Update(ctx, component); err != nil {
			return SalaryComponentResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return SalaryComponentResponse{}, err
	}

	s.invalidateCatalogCache(ctx, companyID)
	s.logger.Info("salary component deactivated",
		zap.String("company_id", companyID),
		zap.String("component_id", id),
		zap.String("code", component.Code),
	)

	return mapToResponse(*component), nil
}

func (s *service) invalidateCatalogCache(ctx context.Context, companyID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetCatalogKey(companyID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate catalog cache",
			zap.String("key", cacheKey),
			zap.Error(err),
		)
	}
}

func mapToResponse(component SalaryComponent) SalaryComponentResponse {
	return SalaryComponentResponse{
		ID:        component.ID.String(),
		CompanyID: component.CompanyID.String(),
		Code:      component.Code,
		Name:      component.Name,
		Kind:      component.Kind,
		Taxable:   component.Taxable,
		IsActive:  component.IsActive,
	}
}

func mapToListResponse(components []SalaryComponent) []SalaryComponentResponse {
	resp := make([]SalaryComponentResponse, len(components))
	for i, component := range components {
		resp[i] = mapToResponse(component)
	}
	return resp
}
