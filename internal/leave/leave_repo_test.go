package leave_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"go-payroll/internal/leave"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestRepository_BalanceLockAndSaveShareTransaction(t *testing.T) {
	poolDB, poolMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer poolDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: poolDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	assert.NoError(t, err)
	repo := leave.NewRepository(gdb)

	txDB, txMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer txDB.Close()

	txMock.ExpectBegin()
	tx, err := txDB.Begin()
	assert.NoError(t, err)

	companyID := uuid.New()
	employeeID := uuid.New()
	balanceID := uuid.New()
	now := time.Now()

	// Both the FOR UPDATE read and the save must ride the same transaction,
	// or the row lock is released before the balance is debited.
	txMock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(companyID.String(), employeeID.String(), 2026, 1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "company_id", "employee_id", "year", "total_days", "used_days", "created_at", "updated_at",
		}).AddRow(balanceID.String(), companyID.String(), employeeID.String(), 2026, 12, 3, now, now))

	qtx := repo.WithTx(tx)
	balance, err := qtx.FindBalanceForUpdate(context.Background(), companyID.String(), employeeID.String(), 2026)
	assert.NoError(t, err)
	assert.Equal(t, 3, balance.UsedDays)

	balance.UsedDays = 5
	txMock.ExpectExec(regexp.QuoteMeta(`UPDATE "leave_balances"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, qtx.SaveBalance(context.Background(), balance))

	txMock.ExpectCommit()
	assert.NoError(t, tx.Commit())

	assert.NoError(t, txMock.ExpectationsWereMet())
	// Nothing leaked onto the pool connection.
	assert.NoError(t, poolMock.ExpectationsWereMet())
}
