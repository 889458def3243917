package payrollrun

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusDraft      = "DRAFT"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
)

const (
	LineKindEarning   = "EARNING"
	LineKindDeduction = "DEDUCTION"
)

// PayrollRun covers one company-month. One run per (company, month, year);
// the unique index backs the duplicate check under concurrency. No soft
// delete: a deleted draft must free its period in the unique index.
type PayrollRun struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_runs_company_period;index:idx_payroll_runs_company_status"`
	Month     int       `gorm:"type:int;not null;uniqueIndex:uq_payroll_runs_company_period"`
	Year      int       `gorm:"type:int;not null;uniqueIndex:uq_payroll_runs_company_period"`

	Status      string     `gorm:"type:varchar(20);not null;default:'DRAFT';index:idx_payroll_runs_company_status"`
	ProcessedAt *time.Time `gorm:"type:timestamptz"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null"`

	TotalGross decimal.Decimal `gorm:"type:numeric(16,2);not null;default:0"`
	TotalNet   decimal.Decimal `gorm:"type:numeric(16,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PayrollRun) TableName() string {
	return "payroll_runs"
}

// Payslip rows are written once during Process and never updated.
type Payslip struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	RunID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payslips_run_employee"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payslips_run_employee;index"`

	WorkingDays int `gorm:"type:int;not null"`
	PresentDays int `gorm:"type:int;not null"`

	GrossEarnings   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TotalDeductions decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	NetPay          decimal.Decimal `gorm:"type:numeric(14,2);not null"`

	Lines []PayslipLine `gorm:"foreignKey:PayslipID"`

	CreatedAt time.Time
}

func (Payslip) TableName() string {
	return "payslips"
}

type PayslipLine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PayslipID uuid.UUID `gorm:"type:uuid;not null;index"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`

	Kind     string          `gorm:"type:varchar(20);not null"`
	Code     string          `gorm:"type:varchar(50);not null"`
	Name     string          `gorm:"type:varchar(120);not null"`
	Amount   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Note     string          `gorm:"type:text"`
	Position int             `gorm:"type:int;not null"`

	CreatedAt time.Time
}

func (PayslipLine) TableName() string {
	return "payslip_lines"
}
