package payrollrun

type CreateRunRequest struct {
	Month int `json:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" binding:"required,min=2000,max=2100"`
}

type RunResponse struct {
	ID          string  `json:"id"`
	CompanyID   string  `json:"company_id"`
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	Status      string  `json:"status"`
	ProcessedAt *string `json:"processed_at,omitempty"`
	CreatedBy   string  `json:"created_by"`
	TotalGross  string  `json:"total_gross"`
	TotalNet    string  `json:"total_net"`
}

// RunSummary is what Process reports back: how many payslips were written,
// how many employees were skipped for lack of a structure, and the totals.
type RunSummary struct {
	RunID      string `json:"run_id"`
	Processed  int    `json:"processed"`
	Skipped    int    `json:"skipped"`
	TotalGross string `json:"total_gross"`
	TotalNet   string `json:"total_net"`
}

type PayslipLineResponse struct {
	Kind     string `json:"kind"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Note     string `json:"note,omitempty"`
	Position int    `json:"position"`
}

type PayslipResponse struct {
	ID              string                `json:"id"`
	RunID           string                `json:"run_id"`
	EmployeeID      string                `json:"employee_id"`
	WorkingDays     int                   `json:"working_days"`
	PresentDays     int                   `json:"present_days"`
	GrossEarnings   string                `json:"gross_earnings"`
	TotalDeductions string                `json:"total_deductions"`
	NetPay          string                `json:"net_pay"`
	Lines           []PayslipLineResponse `json:"lines"`
}
