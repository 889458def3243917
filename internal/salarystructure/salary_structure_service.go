package salarystructure

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"go-payroll/internal/salarycomponent"
	salarystructureerrors "go-payroll/internal/salarystructure/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, companyID string, req CreateSalaryStructureRequest) (SalaryStructureResponse, error)
	GetAll(ctx context.Context, companyID string) ([]SalaryStructureResponse, error)
	GetByID(ctx context.Context, companyID, id string) (SalaryStructureResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateSalaryStructureRequest) (SalaryStructureResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	CalculateGross(ctx context.Context, companyID, structureID string, workingDays, presentDays int) (CalculateGrossResponse, error)
	ResolverInputs(ctx context.Context, companyID, structureID string) ([]StructureLine, map[uuid.UUID]salarycomponent.SalaryComponent, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	components salarycomponent.Repository
	logger     *zap.Logger
}

func NewService(db *sql.DB, repo Repository, components salarycomponent.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("salarystructure.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salarystructure.service")
	}
	return &service{db: db, repo: repo, components: components, logger: l}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateSalaryStructureRequest,
) (SalaryStructureResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create structure requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("name", req.Name),
		zap.Int("lines", len(req.Lines)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SalaryStructureResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return SalaryStructureResponse{}, apperror.New(apperror.CodeInvalidInput, "invalid company id", http.StatusBadRequest)
	}

	structureID := uuid.New()
	lines, componentsByID, err := s.validateAndBuildLines(ctx, companyID, companyUUID, structureID, req.Lines)
	if err != nil {
		s.logger.Warn("create structure validation failed", zap.String("request_id", rid), zap.Error(err))
		return SalaryStructureResponse{}, err
	}

	structure := &SalaryStructure{
		ID:        structureID,
		CompanyID: companyUUID,
		Name:      req.Name,
		Lines:     lines,
	}

	if err := qtx.Create(ctx, structure); err != nil {
		s.logger.Error("create structure persist failed", zap.String("request_id", rid), zap.Error(err))
		return SalaryStructureResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return SalaryStructureResponse{}, err
	}

	s.logger.Info("create structure success",
		zap.String("request_id", rid),
		zap.String("structure_id", structure.ID.String()),
		zap.String("company_id", companyID),
	)

	return mapToResponse(*structure, componentsByID), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]SalaryStructureResponse, error) {
	structures, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	componentsByID, err := s.componentsForStructures(ctx, companyID, structures)
	if err != nil {
		return nil, err
	}

	resp := make([]SalaryStructureResponse, len(structures))
	for i, structure := range structures {
		resp[i] = mapToResponse(structure, componentsByID)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (SalaryStructureResponse, error) {
	structure, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SalaryStructureResponse{}, salarystructureerrors.ErrStructureNotFound
		}
		return SalaryStructureResponse{}, err
	}

	componentsByID, err := s.componentsForStructures(ctx, companyID, []SalaryStructure{*structure})
	if err != nil {
		return SalaryStructureResponse{}, err
	}

	return mapToResponse(*structure, componentsByID), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateSalaryStructureRequest,
) (SalaryStructureResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SalaryStructureResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	structure, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SalaryStructureResponse{}, salarystructureerrors.ErrStructureNotFound
		}
		return SalaryStructureResponse{}, err
	}

	lines, componentsByID, err := s.validateAndBuildLines(ctx, companyID, structure.CompanyID, structure.ID, req.Lines)
	if err != nil {
		return SalaryStructureResponse{}, err
	}

	structure.Name = req.Name
	if err := qtx.Update(ctx, structure); err != nil {
		return SalaryStructureResponse{}, err
	}
	if err := qtx.ReplaceLines(ctx, companyID, id, lines); err != nil {
		return SalaryStructureResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return SalaryStructureResponse{}, err
	}

	structure.Lines = lines
	return mapToResponse(*structure, componentsByID), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindByIDAndCompany(ctx, companyID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return salarystructureerrors.ErrStructureNotFound
		}
		return err
	}

	inUse, err := qtx.CountEmployeesUsingStructure(ctx, companyID, id)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return salarystructureerrors.ErrStructureInUse
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *service) CalculateGross(
	ctx context.Context,
	companyID, structureID string,
	workingDays, presentDays int,
) (CalculateGrossResponse, error) {
	lines, componentsByID, err := s.ResolverInputs(ctx, companyID, structureID)
	if err != nil {
		return CalculateGrossResponse{}, err
	}

	result, err := ResolveGross(lines, componentsByID, workingDays, presentDays)
	if err != nil {
		return CalculateGrossResponse{}, err
	}

	return CalculateGrossResponse{
		StructureID:     structureID,
		WorkingDays:     workingDays,
		PresentDays:     presentDays,
		GrossMonthly:    result.GrossMonthly,
		GrossProRated:   result.GrossProRated,
		TotalDeductions: result.TotalDeductions,
		Earnings:        mapResolvedLines(result.Breakdown.Earnings),
		Deductions:      mapResolvedLines(result.Breakdown.Deductions),
	}, nil
}

// ResolverInputs fetches a structure's lines and their components as plain
// data for the resolver, so run processing never triggers hidden I/O inside
// the calculation.
func (s *service) ResolverInputs(
	ctx context.Context,
	companyID, structureID string,
) ([]StructureLine, map[uuid.UUID]salarycomponent.SalaryComponent, error) {
	structure, err := s.repo.FindByIDAndCompany(ctx, companyID, structureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, salarystructureerrors.ErrStructureNotFound
		}
		return nil, nil, err
	}

	componentsByID, err := s.componentsForStructures(ctx, companyID, []SalaryStructure{*structure})
	if err != nil {
		return nil, nil, err
	}

	return structure.Lines, componentsByID, nil
}

// validateAndBuildLines enforces the structure-save rules eagerly: at least
// one line, positive amounts, and every referenced component existing and
// active. Failures name the offending component so the admin can fix the
// structure.
func (s *service) validateAndBuildLines(
	ctx context.Context,
	companyID string,
	companyUUID, structureID uuid.UUID,
	inputs []StructureLineInput,
) ([]StructureLine, map[uuid.UUID]salarycomponent.SalaryComponent, error) {
	if len(inputs) == 0 {
		return nil, nil, salarystructureerrors.ErrEmptyStructure
	}

	componentIDs := make([]uuid.UUID, 0, len(inputs))
	for _, input := range inputs {
		componentID, err := uuid.Parse(input.ComponentID)
		if err != nil {
			return nil, nil, apperror.New(apperror.CodeInvalidInput, "invalid component id", http.StatusBadRequest)
		}
		if input.Amount.Sign() <= 0 {
			return nil, nil, apperror.New(apperror.CodeInvalidInput, "line amount must be greater than zero", http.StatusBadRequest)
		}
		componentIDs = append(componentIDs, componentID)
	}

	found, err := s.components.FindByIDs(ctx, companyID, componentIDs)
	if err != nil {
		return nil, nil, err
	}
	componentsByID := make(map[uuid.UUID]salarycomponent.SalaryComponent, len(found))
	for _, component := range found {
		componentsByID[component.ID] = component
	}

	lines := make([]StructureLine, len(inputs))
	for i, input := range inputs {
		componentID := componentIDs[i]
		component, ok := componentsByID[componentID]
		if !ok {
			return nil, nil, salarystructureerrors.InvalidComponentReference(componentID.String())
		}
		if !component.IsActive {
			return nil, nil, salarystructureerrors.InactiveComponent(component.Code)
		}

		kind := input.CalcKind
		if kind == "" {
			kind = CalcKindFixed
		}

		lines[i] = StructureLine{
			ID:          uuid.New(),
			StructureID: structureID,
			CompanyID:   companyUUID,
			ComponentID: componentID,
			Amount:      input.Amount,
			CalcKind:    kind,
			Position:    i,
		}
	}

	return lines, componentsByID, nil
}

func (s *service) componentsForStructures(
	ctx context.Context,
	companyID string,
	structures []SalaryStructure,
) (map[uuid.UUID]salarycomponent.SalaryComponent, error) {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0)
	for _, structure := range structures {
		for _, line := range structure.Lines {
			if !seen[line.ComponentID] {
				seen[line.ComponentID] = true
				ids = append(ids, line.ComponentID)
			}
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]salarycomponent.SalaryComponent{}, nil
	}

	found, err := s.components.FindByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}
	componentsByID := make(map[uuid.UUID]salarycomponent.SalaryComponent, len(found))
	for _, component := range found {
		componentsByID[component.ID] = component
	}
	return componentsByID, nil
}

func mapToResponse(structure SalaryStructure, componentsByID map[uuid.UUID]salarycomponent.SalaryComponent) SalaryStructureResponse {
	lines := make([]StructureLineResponse, len(structure.Lines))
	for i, line := range structure.Lines {
		component := componentsByID[line.ComponentID]
		lines[i] = StructureLineResponse{
			ComponentID:   line.ComponentID.String(),
			ComponentCode: component.Code,
			ComponentName: component.Name,
			Kind:          component.Kind,
			Amount:        line.Amount,
			CalcKind:      line.CalcKind,
		}
	}
	return SalaryStructureResponse{
		ID:        structure.ID.String(),
		CompanyID: structure.CompanyID.String(),
		Name:      structure.Name,
		Lines:     lines,
	}
}

func mapResolvedLines(lines []ResolvedLine) []ResolvedLineResponse {
	resp := make([]ResolvedLineResponse, len(lines))
	for i, line := range lines {
		resp[i] = ResolvedLineResponse{
			Code:   line.Code,
			Name:   line.Name,
			Amount: line.Amount,
			Note:   line.Note,
		}
	}
	return resp
}
