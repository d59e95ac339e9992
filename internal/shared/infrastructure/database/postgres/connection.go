// Package postgres registers the pgx-backed Postgres driver.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database"
)

func init() {
	database.RegisterDriver(database.DriverPostgres, Open)
}

// Connection adapts a pgx pool to database.Connection.
type Connection struct {
	pool *pgxpool.Pool
}

// Open connects to cfg.URL.
func Open(ctx context.Context, cfg database.Config) (database.Connection, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("postgres requires DATABASE_URL")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = convert.IntToInt32Clamped(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return &Connection{pool: pool}, nil
}

// Driver reports DriverPostgres.
func (c *Connection) Driver() database.Driver { return database.DriverPostgres }

// Close closes the pool.
func (c *Connection) Close() error {
	c.pool.Close()
	return nil
}

// Ping checks a pooled connection.
func (c *Connection) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }

// BeginTx begins a transaction on a pooled connection.
func (c *Connection) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Transaction{tx: tx}, nil
}

// Exec executes a statement outside any transaction.
func (c *Connection) Exec(ctx context.Context, query string, args ...any) (database.Result, error) {
	tag, err := c.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return commandTag{tag}, nil
}

// QueryRow executes a query that returns at most one row.
func (c *Connection) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return c.pool.QueryRow(ctx, query, args...)
}

// Query executes a query that returns rows.
func (c *Connection) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgxRows{rows}, nil
}

// Transaction adapts pgx.Tx to database.Transaction.
type Transaction struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Transaction) Commit(ctx context.Context) error { return t.tx.Commit(ctx) }

// Rollback rolls back the transaction.
func (t *Transaction) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// Exec executes a statement within the transaction.
func (t *Transaction) Exec(ctx context.Context, query string, args ...any) (database.Result, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return commandTag{tag}, nil
}

// QueryRow executes a single-row query within the transaction.
func (t *Transaction) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return t.tx.QueryRow(ctx, query, args...)
}

// Query executes a query within the transaction.
func (t *Transaction) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgxRows{rows}, nil
}

type commandTag struct{ tag pgconn.CommandTag }

func (c commandTag) RowsAffected() (int64, error) { return c.tag.RowsAffected(), nil }

type pgxRows struct{ rows pgx.Rows }

func (r pgxRows) Next() bool             { return r.rows.Next() }
func (r pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r pgxRows) Err() error             { return r.rows.Err() }

func (r pgxRows) Close() error {
	r.rows.Close()
	return nil
}
