package payrollrunerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"month must be 1-12 and year must be a 4-digit year",
		http.StatusBadRequest,
	)
	ErrDuplicateRun = apperror.New(
		apperror.CodeConflict,
		"payroll run already exists for this period",
		http.StatusConflict,
	)
	ErrRunNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll run not found",
		http.StatusNotFound,
	)
	ErrProcessOnlyDraft = apperror.New(
		apperror.CodeInvalidState,
		"payroll run can only be processed while status is DRAFT",
		http.StatusBadRequest,
	)
	ErrDeleteOnlyDraft = apperror.New(
		apperror.CodeInvalidState,
		"payroll run can only be deleted while status is DRAFT",
		http.StatusBadRequest,
	)
	ErrPayslipNotFound = apperror.New(
		apperror.CodeNotFound,
		"payslip not found",
		http.StatusNotFound,
	)
)

// ProcessingFailed wraps an infra or compute error that aborted a run. The
// run is reverted to DRAFT before this is returned, so a retry starts clean.
func ProcessingFailed(err error) error {
	return apperror.Wrap(
		err,
		apperror.CodeInternalError,
		"payroll run processing failed",
		http.StatusInternalServerError,
	)
}
