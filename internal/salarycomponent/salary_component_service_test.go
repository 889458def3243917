package salarycomponent_test

import (
	"context"
	"database/sql"
	"testing"

	"go-payroll/internal/salarycomponent"
	salarycomponenterrors "go-payroll/internal/salarycomponent/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeComponentRepository struct {
	createFn             func(ctx context.Context, component *salarycomponent.SalaryComponent) error
	findAllByCompanyFn   func(ctx context.Context, companyID string) ([]salarycomponent.SalaryComponent, error)
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*salarycomponent.SalaryComponent, error)

	updatedComponent *salarycomponent.SalaryComponent
}

func (f *fakeComponentRepository) WithTx(tx *sql.Tx) salarycomponent.Repository { return f }

func (f *fakeComponentRepository) Create(ctx context.Context, component *salarycomponent.SalaryComponent) error {
	if f.createFn != nil {
		return f.createFn(ctx, component)
	}
	return nil
}

func (f *fakeComponentRepository) FindAllByCompany(ctx context.Context, companyID string) ([]salarycomponent.SalaryComponent, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeComponentRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*salarycomponent.SalaryComponent, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeComponentRepository) FindByIDs(ctx context.Context, companyID string, ids []uuid.UUID) ([]salarycomponent.SalaryComponent, error) {
	return nil, nil
}

func (f *fakeComponentRepository) Update(ctx context.Context, component *salarycomponent.SalaryComponent) error {
	f.updatedComponent = component
	return nil
}

type componentServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service salarycomponent.Service
	repo    *fakeComponentRepository
}

func setupComponentServiceTest(t *testing.T) *componentServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	deps := &componentServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		repo:    &fakeComponentRepository{},
	}
	deps.service = salarycomponent.NewService(db, deps.repo, nil)
	return deps
}

func TestComponentService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		deps := setupComponentServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Create(ctx, companyID, salarycomponent.CreateSalaryComponentRequest{
			Code: "BASIC",
			Name: "Basic Salary",
			Kind: salarycomponent.KindEarning,
		})

		assert.NoError(t, err)
		assert.Equal(t, "BASIC", resp.Code)
		assert.True(t, resp.IsActive)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("duplicate code mapped from constraint", func(t *testing.T) {
		deps := setupComponentServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.repo.createFn = func(ctx context.Context, component *salarycomponent.SalaryComponent) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_salary_components_company_code"}
		}

		_, err := deps.service.Create(ctx, companyID, salarycomponent.CreateSalaryComponentRequest{
			Code: "BASIC",
			Name: "Basic Salary",
			Kind: salarycomponent.KindEarning,
		})

		assert.ErrorIs(t, err, salarycomponenterrors.ErrDuplicateCode)
	})
}

func TestComponentService_Deactivate(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("active flipped off", func(t *testing.T) {
		deps := setupComponentServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*salarycomponent.SalaryComponent, error) {
			return &salarycomponent.SalaryComponent{ID: uuid.New(), Code: "BONUS", IsActive: true}, nil
		}

		resp, err := deps.service.Deactivate(ctx, companyID, uuid.New().String())

		assert.NoError(t, err)
		assert.False(t, resp.IsActive)
		assert.NotNil(t, deps.repo.updatedComponent)
	})

	t.Run("already inactive is a no op", func(t *testing.T) {
		deps := setupComponentServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*salarycomponent.SalaryComponent, error) {
			return &salarycomponent.SalaryComponent{ID: uuid.New(), Code: "BONUS", IsActive: false}, nil
		}

		resp, err := deps.service.Deactivate(ctx, companyID, uuid.New().String())

		assert.NoError(t, err)
		assert.False(t, resp.IsActive)
		assert.Nil(t, deps.repo.updatedComponent)
	})

	t.Run("missing component", func(t *testing.T) {
		deps := setupComponentServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Deactivate(ctx, companyID, uuid.New().String())

		assert.ErrorIs(t, err, salarycomponenterrors.ErrComponentNotFound)
	})
}

func TestComponentService_GetAll_NoCache(t *testing.T) {
	deps := setupComponentServiceTest(t)
	defer deps.db.Close()

	deps.repo.findAllByCompanyFn = func(ctx context.Context, companyID string) ([]salarycomponent.SalaryComponent, error) {
		return []salarycomponent.SalaryComponent{
			{ID: uuid.New(), Code: "BASIC", Name: "Basic Salary", Kind: salarycomponent.KindEarning, IsActive: true},
		}, nil
	}

	resp, err := deps.service.GetAll(context.Background(), uuid.New().String())

	assert.NoError(t, err)
	assert.Len(t, resp, 1)
	assert.Equal(t, "BASIC", resp[0].Code)
}
