package shared

import "context"

// TransactionManager runs a function within a single storage transaction.
// Repositories participating in the transaction resolve the transactional
// handle from the context passed to fn.
type TransactionManager interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
