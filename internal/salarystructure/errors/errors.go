package salarystructureerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrStructureNotFound = apperror.New(
		apperror.CodeNotFound,
		"salary structure not found",
		http.StatusNotFound,
	)
	ErrEmptyStructure = apperror.New(
		apperror.CodeInvalidInput,
		"a salary structure must contain at least one line",
		http.StatusBadRequest,
	)
	ErrStructureInUse = apperror.New(
		apperror.CodeConflict,
		"salary structure is assigned to one or more employees and cannot be deleted",
		http.StatusConflict,
	)
	ErrWorkingDaysNotPositive = apperror.New(
		apperror.CodeInvalidInput,
		"working days must be greater than zero",
		http.StatusBadRequest,
	)
	ErrPresentExceedsWorking = apperror.New(
		apperror.CodeInvalidInput,
		"present days exceed working days",
		http.StatusBadRequest,
	)
)

// InvalidComponentReference reports a structure line pointing at a component
// id that does not exist in the company catalog.
func InvalidComponentReference(componentID string) *apperror.AppError {
	return apperror.Newf(
		apperror.CodeInvalidInput,
		http.StatusBadRequest,
		"structure references unknown salary component %s", componentID,
	)
}

// InactiveComponent reports a structure line pointing at a deactivated
// component, identified by its code.
func InactiveComponent(code string) *apperror.AppError {
	return apperror.Newf(
		apperror.CodeInvalidInput,
		http.StatusBadRequest,
		"salary component %s is inactive and cannot be used in a structure", code,
	)
}
