package attendance

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/shared/gormtx"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Attendance) error
	CreateBatch(ctx context.Context, rows []Attendance) error
	FindByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*Attendance, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]Attendance, error)
	FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]Attendance, error)
	Update(ctx context.Context, a *Attendance) error
	CountPresentDays(ctx context.Context, companyID, employeeID string, month, year int) (int64, error)
	HasAnyInMonth(ctx context.Context, companyID, employeeID string, month, year int) (bool, error)
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

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.orm().WithContext(ctx).Create(a).Error
}

func (r *repository) CreateBatch(ctx context.Context, rows []Attendance) error {
	if len(rows) == 0 {
		return nil
	}
	return r.orm().WithContext(ctx).Create(&rows).Error
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*Attendance, error) {
	var a Attendance
	err := r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("attendance_date = ?", date.Format("2006-01-02")).
		First(&a).Error
	return &a, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Attendance, error) {
	var rows []Attendance
	err := r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("attendance_date DESC, clock_in DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]Attendance, error) {
	var rows []Attendance
	err := r.orm().WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("attendance_date DESC, clock_in DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	return r.orm().WithContext(ctx).Save(a).Error
}

// CountPresentDays counts the days in a calendar month payroll treats as
// presence: PRESENT, HALF_DAY, LATE and ON_LEAVE (approved paid leave).
func (r *repository) CountPresentDays(ctx context.Context, companyID, employeeID string, month, year int) (int64, error) {
	var count int64
	err := r.monthQuery(ctx, companyID, employeeID, month, year).
		Where("status IN ?", []string{StatusPresent, StatusHalfDay, StatusLate, StatusOnLeave}).
		Count(&count).Error
	return count, err
}

// HasAnyInMonth reports whether the employee has any attendance rows at all
// for the month, regardless of status.
func (r *repository) HasAnyInMonth(ctx context.Context, companyID, employeeID string, month, year int) (bool, error) {
	var count int64
	err := r.monthQuery(ctx, companyID, employeeID, month, year).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) monthQuery(ctx context.Context, companyID, employeeID string, month, year int) *gorm.DB {
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	return r.orm().WithContext(ctx).
		Model(&Attendance{}).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("attendance_date >= ? AND attendance_date < ?",
			monthStart.Format("2006-01-02"), monthEnd.Format("2006-01-02"))
}
