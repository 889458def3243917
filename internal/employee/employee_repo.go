package employee

import (
	"context"
	"database/sql"

	"go-payroll/internal/shared/gormtx"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, employee *Employee) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error)
	FindActiveByCompany(ctx context.Context, companyID string) ([]Employee, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error)
	Update(ctx context.Context, employee *Employee) error
	StructureBelongsToCompany(ctx context.Context, companyID, structureID string) (bool, error)
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

func (r *repository) Create(ctx context.Context, employee *Employee) error {
	return r.orm().WithContext(ctx).Create(employee).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var employees []Employee
	err := r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("full_name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindActiveByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var employees []Employee
	err := r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employment_status = ?", StatusActive).
		Order("full_name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error) {
	var employee Employee
	err := r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&employee, "id = ?", id).Error
	return &employee, err
}

func (r *repository) Update(ctx context.Context, employee *Employee) error {
	return r.orm().WithContext(ctx).Save(employee).Error
}

func (r *repository) StructureBelongsToCompany(ctx context.Context, companyID, structureID string) (bool, error) {
	var count int64
	err := r.orm().WithContext(ctx).
		Table("salary_structures").
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", structureID).
		Count(&count).Error
	return count > 0, err
}
