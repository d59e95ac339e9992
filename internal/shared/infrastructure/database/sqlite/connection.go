// Package sqlite registers the pure-Go SQLite driver used by the CLI and
// by tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/security"
)

const pragmas = "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_time_format=sqlite"

func init() {
	database.RegisterDriver(database.DriverSQLite, Open)
}

// Connection adapts *sql.DB to database.Connection.
type Connection struct {
	db *sql.DB
}

// Open opens (and creates if needed) the database file at cfg.SQLitePath.
func Open(ctx context.Context, cfg database.Config) (database.Connection, error) {
	path := cfg.SQLitePath
	if path == "" {
		path = database.DefaultSQLitePath()
	}
	if path != ":memory:" {
		file, query, _ := strings.Cut(path, "?")
		clean, err := security.ValidateFilePath(file)
		if err != nil {
			return nil, fmt.Errorf("invalid sqlite path: %w", err)
		}
		path = clean
		if query != "" {
			path += "?" + query
		}
		if err := database.EnsureDirectory(clean); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	db, err := sql.Open("sqlite", path+sep+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One writer at a time; this also keeps :memory: databases on a single
	// connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Connection{db: db}, nil
}

// Driver reports DriverSQLite.
func (c *Connection) Driver() database.Driver { return database.DriverSQLite }

// Close closes the underlying database.
func (c *Connection) Close() error { return c.db.Close() }

// Ping checks the database is reachable.
func (c *Connection) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

// BeginTx begins a transaction.
func (c *Connection) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Transaction{tx: tx}, nil
}

// Exec executes a statement outside any transaction.
func (c *Connection) Exec(ctx context.Context, query string, args ...any) (database.Result, error) {
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return database.WrapSQLResult(res), nil
}

// QueryRow executes a query that returns at most one row.
func (c *Connection) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return c.db.QueryRowContext(ctx, query, args...)
}

// Query executes a query that returns rows.
func (c *Connection) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return database.WrapSQLRows(rows), nil
}

// Transaction adapts *sql.Tx to database.Transaction.
type Transaction struct {
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *Transaction) Commit(context.Context) error { return t.tx.Commit() }

// Rollback rolls back the transaction.
func (t *Transaction) Rollback(context.Context) error { return t.tx.Rollback() }

// Exec executes a statement within the transaction.
func (t *Transaction) Exec(ctx context.Context, query string, args ...any) (database.Result, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return database.WrapSQLResult(res), nil
}

func (t *Transaction) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t *Transaction) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return database.WrapSQLRows(rows), nil
}
