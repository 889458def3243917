package rbac

import (
	"context"

	"gorm.io/gorm"
)

type EmployeeRoleRow struct {
	EmployeeID string `gorm:"column:employee_id;type:uuid"`
	RoleID     string `gorm:"column:role_id;type:uuid"`
	CompanyID  string `gorm:"column:company_id;type:uuid"`
}

func (EmployeeRoleRow) TableName() string {
	return "employee_roles"
}

type RolePermissionRow struct {
	RoleID    string `gorm:"column:role_id;type:uuid"`
	CompanyID string `gorm:"column:company_id;type:uuid"`
	Resource  string `gorm:"column:resource"`
	Action    string `gorm:"column:action"`
}

func (RolePermissionRow) TableName() string {
	return "role_permissions"
}

type Repository interface {
	GetEmployeeRoles(ctx context.Context, companyID string) ([]EmployeeRoleRow, error)
	GetRolePermissions(ctx context.Context, companyID string) ([]RolePermissionRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetEmployeeRoles(ctx context.Context, companyID string) ([]EmployeeRoleRow, error) {
	var rows []EmployeeRoleRow
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Find(&rows).Error
	return rows, err
}

func (r *repository) GetRolePermissions(ctx context.Context, companyID string) ([]RolePermissionRow, error) {
	var rows []RolePermissionRow
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Find(&rows).Error
	return rows, err
}
