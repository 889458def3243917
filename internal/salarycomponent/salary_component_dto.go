package salarycomponent

type CreateSalaryComponentRequest struct {
	Code    string `json:"code" binding:"required,max=40"`
	Name    string `json:"name" binding:"required,max=120"`
	Kind    string `json:"kind" binding:"required,oneof=EARNING DEDUCTION"`
	Taxable bool   `json:"taxable"`
}

type UpdateSalaryComponentRequest struct {
	Name    string `json:"name" binding:"required,max=120"`
	Taxable bool   `json:"taxable"`
}

type SalaryComponentResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Taxable   bool   `json:"taxable"`
	IsActive  bool   `json:"is_active"`
}
