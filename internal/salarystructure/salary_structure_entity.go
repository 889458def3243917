package salarystructure

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CalcKindFixed      = "FIXED"
	CalcKindPercentage = "PERCENTAGE"
)

type SalaryStructure struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;type:varchar(120);not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	Lines []StructureLine `gorm:"foreignKey:StructureID"`
}

func (SalaryStructure) TableName() string {
	return "salary_structures"
}

// StructureLine is a first-class ordered row, not a JSON blob. Percentage
// amounts are percentages of the structure's fixed-earnings base.
type StructureLine struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	StructureID uuid.UUID       `gorm:"column:structure_id;type:uuid;not null;index"`
	CompanyID   uuid.UUID       `gorm:"column:company_id;type:uuid;not null;index"`
	ComponentID uuid.UUID       `gorm:"column:component_id;type:uuid;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	CalcKind    string          `gorm:"column:calc_kind;type:varchar(20);not null;default:'FIXED'"`
	Position    int             `gorm:"column:position;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (StructureLine) TableName() string {
	return "structure_lines"
}
