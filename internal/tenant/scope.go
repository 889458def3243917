package tenant

import "gorm.io/gorm"

// Scope filters any tenant-owned table by company id. Every repository query
// that touches tenant data goes through this; there is no ambient current
// tenant anywhere.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}
