package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

type Employee struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID          uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	FullName           string         `gorm:"column:full_name;type:varchar(120);not null"`
	Email              string         `gorm:"column:email;type:varchar(120);not null"`
	HireDate           time.Time      `gorm:"column:hire_date;type:date;not null"`
	EmploymentStatus   string         `gorm:"column:employment_status;type:varchar(20);not null;default:'ACTIVE'"`
	CurrentStructureID *uuid.UUID     `gorm:"column:current_structure_id;type:uuid;index"`
	CreatedAt          time.Time      `gorm:"column:created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Employee) TableName() string {
	return "employees"
}
