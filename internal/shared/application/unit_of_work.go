package application

import "context"

// UnitOfWork scopes a set of repository calls to one transaction. Begin
// returns a context that repositories use to find the open transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFunc runs inside an open unit of work.
type UnitOfWorkFunc func(ctx context.Context) error

// WithUnitOfWork runs fn in a transaction, committing on success and
// rolling back on error or panic. The rollback error is discarded so the
// caller sees the original failure.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork, fn UnitOfWorkFunc) (err error) {
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = uow.Rollback(txCtx)
			panic(r)
		}
	}()

	if err := fn(txCtx); err != nil {
		_ = uow.Rollback(txCtx)
		return err
	}

	return uow.Commit(txCtx)
}
