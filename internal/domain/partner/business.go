package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/integration"
	"github.com/pos/backend/internal/domain/shared"
)

// ErrBusinessNotFound is returned when a business does not exist locally
var ErrBusinessNotFound = shared.NewDomainError("BUSINESS_NOT_FOUND", "Business not found")

// Business is a local tenant of the POS system. Its CRM-side identity is the
// tenant UUID held by the BUSINESS-type system mapping; ExternalTenantID is a
// denormalized copy of that value for fast lookup.
type Business struct {
	ID           uuid.UUID
	BusinessName string
	Email        string
	Phone        string
	// ExternalTenantID mirrors the crmId of this business's BUSINESS mapping
	ExternalTenantID string
	SyncStatus       integration.SyncStatus
	LastSyncedAt     *time.Time
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LinkTenant records the CRM tenant correspondence on the business row
func (b *Business) LinkTenant(tenantUUID string) {
	now := time.Now()
	b.ExternalTenantID = tenantUUID
	b.SyncStatus = integration.SyncStatusActive
	b.LastSyncedAt = &now
	b.UpdatedAt = now
}

// BusinessRepository defines persistence for businesses
type BusinessRepository interface {
	// FindByID finds a business by ID, returning ErrBusinessNotFound on miss
	FindByID(ctx context.Context, id uuid.UUID) (*Business, error)

	// Exists reports whether a business with the given ID exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// Update persists changes to an existing business
	Update(ctx context.Context, business *Business) error
}
