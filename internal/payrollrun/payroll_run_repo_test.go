package payrollrun_test

import (
	"context"
	"regexp"
	"testing"

	"go-payroll/internal/payrollrun"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupRunRepoTest(t *testing.T) (payrollrun.Repository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	assert.NoError(t, err)

	return payrollrun.NewRepository(gdb), mock, func() { db.Close() }
}

func TestRepository_Delete_IsHardDelete(t *testing.T) {
	repo, mock, cleanup := setupRunRepoTest(t)
	defer cleanup()

	companyID := uuid.New().String()
	runID := uuid.New().String()

	// A real DELETE, not a soft-delete UPDATE, so the period's unique index
	// slot frees up for the next draft.
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "payroll_runs"`)).
		WithArgs(companyID, runID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), companyID, runID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_WithTx_RunsOnTransaction(t *testing.T) {
	repo, mock, cleanup := setupRunRepoTest(t)
	defer cleanup()

	db, txMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	txMock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	companyID := uuid.New().String()
	runID := uuid.New().String()

	// The status update has to land on the transaction's connection, not the
	// pool, or it commits independently of the outbox write.
	txMock.ExpectExec(regexp.QuoteMeta(`UPDATE "payroll_runs" SET "status"=$1`)).
		WithArgs(payrollrun.StatusDraft, sqlmock.AnyArg(), companyID, runID, payrollrun.StatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.WithTx(tx).RevertToDraft(context.Background(), companyID, runID)
	assert.NoError(t, err)

	txMock.ExpectCommit()
	assert.NoError(t, tx.Commit())

	assert.NoError(t, txMock.ExpectationsWereMet())
	// The pool connection saw no traffic at all.
	assert.NoError(t, mock.ExpectationsWereMet())
}
