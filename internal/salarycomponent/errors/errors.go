package salarycomponenterrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrComponentNotFound = apperror.New(
		apperror.CodeNotFound,
		"salary component not found",
		http.StatusNotFound,
	)
	ErrDuplicateCode = apperror.New(
		apperror.CodeConflict,
		"a salary component with this code already exists",
		http.StatusConflict,
	)
)
