package salarycomponent

import (
	"errors"
	"strings"

	salarycomponenterrors "go-payroll/internal/salarycomponent/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_salary_components_company_code" {
			return salarycomponenterrors.ErrDuplicateCode
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_salary_components_company_code") {
		return salarycomponenterrors.ErrDuplicateCode
	}

	return err
}
