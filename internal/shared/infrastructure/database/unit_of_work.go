package database

import (
	"context"
	"errors"
)

// ErrNoTransaction is returned by Commit and Rollback outside Begin.
var ErrNoTransaction = errors.New("no transaction in context")

// UnitOfWork implements application.UnitOfWork on top of a Connection.
// Nested Begin calls join the outer transaction.
type UnitOfWork struct {
	conn Connection
}

// NewUnitOfWork creates a unit of work bound to conn.
func NewUnitOfWork(conn Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

// Begin joins the transaction already on ctx or starts one it owns.
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if info, ok := TxInfoFromContext(ctx); ok {
		return WithTx(ctx, info.Tx, false), nil
	}
	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return WithTx(ctx, tx, true), nil
}

// Commit commits an owned transaction. Joined transactions are left to
// their owner.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	info, ok := TxInfoFromContext(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !info.Owned {
		return nil
	}
	return info.Tx.Commit(ctx)
}

// Rollback rolls back an owned transaction.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	info, ok := TxInfoFromContext(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !info.Owned {
		return nil
	}
	return info.Tx.Rollback(ctx)
}
