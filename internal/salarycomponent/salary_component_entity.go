package salarycomponent

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindEarning   = "EARNING"
	KindDeduction = "DEDUCTION"
)

// SalaryComponent is the canonical pay component a structure line points at.
// Components are never hard-deleted once referenced; deactivation is a state
// flag checked at structure-save time.
type SalaryComponent struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;index:uq_salary_components_company_code,unique"`
	Code      string    `gorm:"column:code;type:varchar(40);not null;index:uq_salary_components_company_code,unique"`
	Name      string    `gorm:"column:name;type:varchar(120);not null"`
	Kind      string    `gorm:"column:kind;type:varchar(20);not null"`
	Taxable   bool      `gorm:"column:taxable;not null;default:false"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SalaryComponent) TableName() string {
	return "salary_components"
}
