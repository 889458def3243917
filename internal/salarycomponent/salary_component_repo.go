package salarycomponent

import (
	"context"
	"database/sql"

	"go-payroll/internal/shared/gormtx"
	"go-payroll/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, component *SalaryComponent) error
	FindAllByCompany(ctx context.Context, companyID string) ([]SalaryComponent, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*SalaryComponent, error)
	FindByIDs(ctx context.Context, companyID string, ids []uuid.UUID) ([]SalaryComponent, error)
	Update(ctx context.Context, component *SalaryComponent) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) orm() *gorm.DB {
	return gormtx.Bind(r.db, r.tx)
}

func (r *repository) Create(ctx context.Context, component *SalaryComponent) error {
	return r.orm().WithContext(ctx).Create(component).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]SalaryComponent, error) {
	var components []SalaryComponent
	err := r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("code ASC").
		Find(&components).Error
	return components, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*SalaryComponent, error) {
	var component SalaryComponent
	err := r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&component, "id = ?", id).Error
	return &component, err
}

func (r *repository) FindByIDs(ctx context.Context, companyID string, ids []uuid.UUID) ([]SalaryComponent, error) {
	var components []SalaryComponent
	err := r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id IN ?", ids).
		Find(&components).Error
	return components, err
}

func (r *repository) Update(ctx context.Context, component *SalaryComponent) error {
	return r.orm().WithContext(ctx).Save(component).Error
}
