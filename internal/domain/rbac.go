package domain

// EnforceRequest is the question asked of the RBAC layer: may this employee
// of this company perform action on resource.
type EnforceRequest struct {
	EmployeeID string
	CompanyID  string
	Resource   string
	Action     string
}
