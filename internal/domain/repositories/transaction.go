package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx executes a function within a read-write transaction.
	// Nothing written by fn is visible to other readers unless fn returns nil.
	ExecTx(ctx context.Context, fn TxFn) error

	// ExecReadTx executes a function within a read-only transaction that sees
	// one consistent snapshot across all of its queries.
	ExecReadTx(ctx context.Context, fn TxFn) error
}
