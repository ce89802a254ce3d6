package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/integration"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrTransactionNotFound is returned when a transaction does not exist locally
var ErrTransactionNotFound = shared.NewDomainError("TRANSACTION_NOT_FOUND", "Transaction not found")

// Transaction is a completed POS sale. Only the fields the integration layer
// reads or denormalizes onto are modeled here; till arithmetic lives outside
// this service.
type Transaction struct {
	ID                uuid.UUID
	BusinessID        uuid.UUID
	CustomerID        *uuid.UUID
	TransactionNumber string
	Total             decimal.Decimal
	// ExternalID mirrors the crmId of this transaction's TRANSACTION mapping
	ExternalID string
	SyncStatus integration.SyncStatus
	SyncedAt   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LinkExternal records the CRM correspondence on the transaction row
func (t *Transaction) LinkExternal(crmID string) {
	now := time.Now()
	t.ExternalID = crmID
	t.SyncStatus = integration.SyncStatusActive
	t.SyncedAt = &now
	t.UpdatedAt = now
}

// TransactionRepository defines persistence for transactions
type TransactionRepository interface {
	// FindByID finds a transaction by ID regardless of business, returning
	// ErrTransactionNotFound on miss
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// Exists reports whether a transaction with the given ID exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// Update persists changes to an existing transaction
	Update(ctx context.Context, transaction *Transaction) error
}
