package database

import "context"

type txKey struct{}

// TxInfo is the transaction carried in a context. Owned is false when an
// outer unit of work opened it, so only the owner commits.
type TxInfo struct {
	Tx    Transaction
	Owned bool
}

// WithTx returns a context carrying tx.
func WithTx(ctx context.Context, tx Transaction, owned bool) context.Context {
	return context.WithValue(ctx, txKey{}, TxInfo{Tx: tx, Owned: owned})
}

// TxInfoFromContext returns the open transaction, if any.
func TxInfoFromContext(ctx context.Context) (TxInfo, bool) {
	info, ok := ctx.Value(txKey{}).(TxInfo)
	if !ok || info.Tx == nil {
		return TxInfo{}, false
	}
	return info, true
}

// ExecutorFromContext returns the open transaction or, outside a unit of
// work, the connection itself.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if info, ok := TxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return conn
}
