// Package dbstore holds the SQL for the approval store and the row types it
// scans into. Statements are written with ? or :name placeholders; sqlx
// rebinds them for the pool's driver.
package dbstore

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DBTX is satisfied by *sqlx.DB and *sqlx.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}

// Dialect names a SQL dialect. Values double as goose dialect names and as
// sqlx driver names, which pick the bind style.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// Queries runs the store's statements against a pool or a transaction.
type Queries struct {
	db      DBTX
	dialect Dialect
	inTx    bool
}

// New returns Queries bound to the pool db.
func New(db *sql.DB, dialect Dialect) *Queries {
	return &Queries{db: Wrap(db, dialect), dialect: dialect}
}

// Wrap returns db as a *sqlx.DB that binds for dialect.
func Wrap(db *sql.DB, dialect Dialect) *sqlx.DB {
	return sqlx.NewDb(db, string(dialect))
}

// WithTx returns a copy of q bound to tx. Row reads made through it take
// row locks where the dialect supports them.
func (q *Queries) WithTx(tx *sqlx.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect, inTx: true}
}

// Dialect returns the dialect q was built for.
func (q *Queries) Dialect() Dialect {
	return q.dialect
}

// lockClause is appended to single-row reads that precede an update in the
// same transaction. SQLite needs none: the write pool's BEGIN IMMEDIATE
// already holds the database lock.
func (q *Queries) lockClause() string {
	if q.inTx && q.dialect == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

func (q *Queries) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.db.Rebind(query), args...)
}

func (q *Queries) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return q.db.GetContext(ctx, dest, q.db.Rebind(query), args...)
}

func (q *Queries) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return q.db.SelectContext(ctx, dest, q.db.Rebind(query), args...)
}

// rowsAffected unwraps an exec result for the update statements, which
// report how many rows they matched.
func rowsAffected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
