package database

import (
	"context"
	"database/sql"
)

// Row is satisfied by pgx.Row and *sql.Row.
type Row interface {
	Scan(dest ...any) error
}

// Rows is satisfied by the wrapped pgx.Rows and *sql.Rows.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// Result reports how many rows a statement touched.
type Result interface {
	RowsAffected() (int64, error)
}

// Executor runs SQL against either a connection or an open transaction.
// Repositories only depend on this.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// Transaction is an Executor that can be finished.
type Transaction interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Connection is a pooled handle to a backend.
type Connection interface {
	Executor
	BeginTx(ctx context.Context) (Transaction, error)
	Ping(ctx context.Context) error
	Close() error
	Driver() Driver
}

type sqlRows struct{ *sql.Rows }

// WrapSQLRows adapts *sql.Rows to Rows.
func WrapSQLRows(r *sql.Rows) Rows { return sqlRows{r} }

// WrapSQLResult adapts sql.Result to Result.
func WrapSQLResult(r sql.Result) Result { return r }
