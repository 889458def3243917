package gormtx_test

import (
	"testing"

	"go-payroll/internal/shared/gormtx"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestBind(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	assert.NoError(t, err)

	t.Run("nil tx returns the pool session", func(t *testing.T) {
		assert.Same(t, gdb, gormtx.Bind(gdb, nil))
	})

	t.Run("statements bind to the transaction", func(t *testing.T) {
		mock.ExpectBegin()
		tx, err := db.Begin()
		assert.NoError(t, err)

		bound := gormtx.Bind(gdb, tx)

		assert.Equal(t, gorm.ConnPool(tx), bound.Statement.ConnPool)
		assert.NotEqual(t, gdb.Statement.ConnPool, bound.Statement.ConnPool)

		mock.ExpectRollback()
		assert.NoError(t, tx.Rollback())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
