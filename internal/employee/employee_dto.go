package employee

type CreateEmployeeRequest struct {
	FullName string `json:"full_name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	HireDate string `json:"hire_date" binding:"required"`
}

type AssignStructureRequest struct {
	StructureID string `json:"structure_id" binding:"required,uuid"`
}

type EmployeeResponse struct {
	ID                 string  `json:"id"`
	CompanyID          string  `json:"company_id"`
	FullName           string  `json:"full_name"`
	Email              string  `json:"email"`
	HireDate           string  `json:"hire_date"`
	EmploymentStatus   string  `json:"employment_status"`
	CurrentStructureID *string `json:"current_structure_id,omitempty"`
}
