package payrollrun

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/shared/gormtx"
	"go-payroll/internal/tenant"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, run *PayrollRun) error
	FindAllByCompany(ctx context.Context, companyID string) ([]PayrollRun, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*PayrollRun, error)
	ExistsForPeriod(ctx context.Context, companyID string, month, year int) (bool, error)

	// MarkProcessing is the compare-and-swap DRAFT -> PROCESSING. It reports
	// whether the swap happened; false means the run was not in DRAFT (or
	// does not exist) and the caller must not process.
	MarkProcessing(ctx context.Context, companyID, id string) (bool, error)
	RevertToDraft(ctx context.Context, companyID, id string) error
	CompleteRun(ctx context.Context, companyID, id string, processedAt time.Time, totalGross, totalNet decimal.Decimal) error
	Delete(ctx context.Context, companyID, id string) error

	CreatePayslip(ctx context.Context, payslip *Payslip) error
	DeletePayslipsByRun(ctx context.Context, companyID, runID string) error
	FindPayslipsByRun(ctx context.Context, companyID, runID string) ([]Payslip, error)
	FindPayslipsByEmployee(ctx context.Context, companyID, employeeID string, year *int) ([]Payslip, error)
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

func (r *repository) Create(ctx context.Context, run *PayrollRun) error {
	return r.orm().WithContext(ctx).Create(run).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]PayrollRun, error) {
	var runs []PayrollRun
	err := r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("year DESC, month DESC").
		Find(&runs).Error
	return runs, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*PayrollRun, error) {
	var run PayrollRun
	err := r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&run, "id = ?", id).Error
	return &run, err
}

func (r *repository) ExistsForPeriod(ctx context.Context, companyID string, month, year int) (bool, error) {
	var count int64
	err := r.orm().WithContext(ctx).
		Model(&PayrollRun{}).
		Scopes(tenant.Scope(companyID)).
		Where("month = ?", month).
		Where("year = ?", year).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) MarkProcessing(ctx context.Context, companyID, id string) (bool, error) {
	res := r.orm().WithContext(ctx).
		Model(&PayrollRun{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Where("status = ?", StatusDraft).
		Update("status", StatusProcessing)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) RevertToDraft(ctx context.Context, companyID, id string) error {
	return r.orm().WithContext(ctx).
		Model(&PayrollRun{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Where("status = ?", StatusProcessing).
		Update("status", StatusDraft).Error
}

func (r *repository) CompleteRun(ctx context.Context, companyID, id string, processedAt time.Time, totalGross, totalNet decimal.Decimal) error {
	return r.orm().WithContext(ctx).
		Model(&PayrollRun{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Where("status = ?", StatusProcessing).
		Updates(map[string]any{
			"status":       StatusCompleted,
			"processed_at": processedAt,
			"total_gross":  totalGross,
			"total_net":    totalNet,
		}).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&PayrollRun{}, "id = ?", id).Error
}

func (r *repository) CreatePayslip(ctx context.Context, payslip *Payslip) error {
	return r.orm().WithContext(ctx).Create(payslip).Error
}

func (r *repository) DeletePayslipsByRun(ctx context.Context, companyID, runID string) error {
	if err := r.orm().WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("payslip_id IN (?)", r.orm().
			Model(&Payslip{}).
			Select("id").
			Where("company_id = ?", companyID).
			Where("run_id = ?", runID),
		).
		Delete(&PayslipLine{}).Error; err != nil {
		return err
	}
	return r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("run_id = ?", runID).
		Delete(&Payslip{}).Error
}

func (r *repository) FindPayslipsByRun(ctx context.Context, companyID, runID string) ([]Payslip, error) {
	var payslips []Payslip
	err := r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("run_id = ?", runID).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("payslip_lines.position ASC")
		}).
		Order("created_at ASC").
		Find(&payslips).Error
	return payslips, err
}

func (r *repository) FindPayslipsByEmployee(ctx context.Context, companyID, employeeID string, year *int) ([]Payslip, error) {
	db := r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("payslip_lines.position ASC")
		})

	if year != nil {
		db = db.Joins("JOIN payroll_runs ON payroll_runs.id = payslips.run_id").
			Where("payroll_runs.year = ?", *year)
	}

	var payslips []Payslip
	err := db.Order("created_at DESC").Find(&payslips).Error
	return payslips, err
}
