package salarystructure

import (
	"context"
	"database/sql"

	"go-payroll/internal/shared/gormtx"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, structure *SalaryStructure) error
	FindAllByCompany(ctx context.Context, companyID string) ([]SalaryStructure, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*SalaryStructure, error)
	Update(ctx context.Context, structure *SalaryStructure) error
	ReplaceLines(ctx context.Context, companyID, structureID string, lines []StructureLine) error
	Delete(ctx context.Context, companyID, id string) error
	CountEmployeesUsingStructure(ctx context.Context, companyID, structureID string) (int64, error)
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

func (r *repository) Create(ctx context.Context, structure *SalaryStructure) error {
	return r.orm().WithContext(ctx).Create(structure).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]SalaryStructure, error) {
	var structures []SalaryStructure
	err := r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("name ASC").
		Find(&structures).Error
	return structures, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*SalaryStructure, error) {
	var structure SalaryStructure
	err := r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&structure, "id = ?", id).Error
	return &structure, err
}

func (r *repository) Update(ctx context.Context, structure *SalaryStructure) error {
	return r.orm().WithContext(ctx).
		Omit("Lines").
		Save(structure).Error
}

func (r *repository) ReplaceLines(ctx context.Context, companyID, structureID string, lines []StructureLine) error {
	db := r.orm().WithContext(ctx)
	if err := db.
		Scopes(tenant.Scope(companyID)).
		Where("structure_id = ?", structureID).
		Delete(&StructureLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return db.Create(&lines).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	db := r.orm().WithContext(ctx)
	if err := db.
		Scopes(tenant.Scope(companyID)).
		Where("structure_id = ?", id).
		Delete(&StructureLine{}).Error; err != nil {
		return err
	}
	return db.
		Scopes(tenant.Scope(companyID)).
		Delete(&SalaryStructure{}, "id = ?", id).Error
}

func (r *repository) CountEmployeesUsingStructure(ctx context.Context, companyID, structureID string) (int64, error) {
	var count int64
	err := r.orm().WithContext(ctx).
		Table("employees").
		Scopes(tenant.Scope(companyID)).
		Where("current_structure_id = ?", structureID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count, err
}
