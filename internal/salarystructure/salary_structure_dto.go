package salarystructure

import "github.com/shopspring/decimal"

type StructureLineInput struct {
	ComponentID string          `json:"component_id" binding:"required,uuid"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	CalcKind    string          `json:"calc_kind" binding:"omitempty,oneof=FIXED PERCENTAGE"`
}

type CreateSalaryStructureRequest struct {
	Name  string               `json:"name" binding:"required,max=120"`
	Lines []StructureLineInput `json:"lines" binding:"required"`
}

type UpdateSalaryStructureRequest struct {
	Name  string               `json:"name" binding:"required,max=120"`
	Lines []StructureLineInput `json:"lines" binding:"required"`
}

type StructureLineResponse struct {
	ComponentID   string          `json:"component_id"`
	ComponentCode string          `json:"component_code"`
	ComponentName string          `json:"component_name"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	CalcKind      string          `json:"calc_kind"`
}

type SalaryStructureResponse struct {
	ID        string                  `json:"id"`
	CompanyID string                  `json:"company_id"`
	Name      string                  `json:"name"`
	Lines     []StructureLineResponse `json:"lines"`
}

type ResolvedLineResponse struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

type CalculateGrossResponse struct {
	StructureID     string                 `json:"structure_id"`
	WorkingDays     int                    `json:"working_days"`
	PresentDays     int                    `json:"present_days"`
	GrossMonthly    decimal.Decimal        `json:"gross_monthly"`
	GrossProRated   decimal.Decimal        `json:"gross_pro_rated"`
	TotalDeductions decimal.Decimal        `json:"total_deductions"`
	Earnings        []ResolvedLineResponse `json:"earnings"`
	Deductions      []ResolvedLineResponse `json:"deductions"`
}
