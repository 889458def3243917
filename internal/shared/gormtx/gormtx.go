package gormtx

import (
	"database/sql"

	"gorm.io/gorm"
)

// Bind returns a session whose statements execute on tx instead of the
// connection pool, so repository calls made through WithTx share the
// service's transaction. A nil tx returns db unchanged.
func Bind(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db
	}
	session := db.Session(&gorm.Session{NewDB: true})
	session.Statement.ConnPool = tx
	return session
}
