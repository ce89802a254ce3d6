package partner

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Enums
// ---------------------------------------------------------------------------

// LoyaltyTier is the customer's loyalty program tier, owned by the CRM
type LoyaltyTier string

const (
	LoyaltyTierBronze   LoyaltyTier = "BRONZE"
	LoyaltyTierSilver   LoyaltyTier = "SILVER"
	LoyaltyTierGold     LoyaltyTier = "GOLD"
	LoyaltyTierPlatinum LoyaltyTier = "PLATINUM"
)

// SyncState tracks whether the local customer row reflects the latest known
// CRM state
type SyncState string

const (
	SyncStateSynced  SyncState = "SYNCED"
	SyncStatePending SyncState = "PENDING"
	SyncStateError   SyncState = "ERROR"
)

// CustomerSource records which system originally created the customer
type CustomerSource string

const (
	CustomerSourcePOS CustomerSource = "POS"
	CustomerSourceCRM CustomerSource = "CRM"
)

// ErrCustomerNotFound is returned when a customer does not exist locally
var ErrCustomerNotFound = shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")

// ---------------------------------------------------------------------------
// Customer Entity
// ---------------------------------------------------------------------------

// Customer is a local POS customer. The sync path mutates it as a side
// effect of CRM webhook deliveries; loyalty fields follow the CRM
// authoritatively while LoyaltyPointsLocal accumulates POS-side activity
// between syncs.
type Customer struct {
	ID         uuid.UUID
	BusinessID uuid.UUID

	FirstName   string
	LastName    string
	Email       string
	Phone       string
	DateOfBirth *time.Time
	Address     string
	City        string
	State       string
	ZipCode     string

	LoyaltyPoints int
	LoyaltyTier   LoyaltyTier
	TotalSpent    decimal.Decimal
	VisitCount    int

	// LoyaltyPointsCRM is the last point balance reported by the CRM;
	// LoyaltyPointsLocal is the balance as accrued locally. Divergence
	// between the two beyond tolerance triggers a reconciliation record.
	LoyaltyPointsCRM    int
	LoyaltyPointsLocal  int
	LoyaltyLastSyncedAt *time.Time

	MarketingOptIn bool
	IsActive       bool
	Notes          string

	CustomerSource  CustomerSource
	SyncState       SyncState
	ExternalID      string
	LastSyncedAt    *time.Time
	LastRefreshedAt *time.Time
	SyncRetryCount  int
	SyncError       string

	// IsAnonymous marks the per-business walk-in pseudo-record. Anonymous
	// customers are never candidates for duplicate matching.
	IsAnonymous     bool
	NeedsEnrichment bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns the customer's display name
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// LinkExternal records the CRM correspondence on the customer row
func (c *Customer) LinkExternal(crmID string) {
	now := time.Now()
	c.ExternalID = crmID
	c.SyncState = SyncStateSynced
	c.LastSyncedAt = &now
	c.UpdatedAt = now
}

// Deactivate soft-deletes the customer, preserving transaction history
func (c *Customer) Deactivate(reason string) {
	now := time.Now()
	c.IsActive = false
	c.SyncState = SyncStateSynced
	c.LastSyncedAt = &now
	c.Notes = reason
	c.UpdatedAt = now
}

// NormalizePhone strips a phone number down to its digits. Duplicate
// detection compares numbers in this normalized form so that formatting
// variants ("+1-555-0100" vs "5550100") still match.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Repository interface
// ---------------------------------------------------------------------------

// SyncStateCounts aggregates customers by sync state for one business
type SyncStateCounts struct {
	Total    int64
	ByState  map[SyncState]int64
	LastSync *time.Time
}

// CustomerRepository defines persistence for customers
type CustomerRepository interface {
	// FindByID finds a customer by ID regardless of business, returning
	// ErrCustomerNotFound on miss. Callers enforcing tenant isolation
	// compare BusinessID themselves to distinguish mismatch from absence.
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByNormalizedPhone finds a non-anonymous customer in the business
	// whose phone, reduced to digits, contains the given digit string
	FindByNormalizedPhone(ctx context.Context, businessID uuid.UUID, digits string) (*Customer, error)

	// FindByEmail finds a non-anonymous customer in the business by exact
	// email match
	FindByEmail(ctx context.Context, businessID uuid.UUID, email string) (*Customer, error)

	// Create inserts a new customer row
	Create(ctx context.Context, customer *Customer) error

	// Update persists changes to an existing customer scoped by
	// (id, businessID); a business mismatch behaves as not-found
	Update(ctx context.Context, customer *Customer) error

	// Exists reports whether a customer with the given ID exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// CountSyncStates tallies CRM-sourced customers by sync state
	CountSyncStates(ctx context.Context, businessID uuid.UUID) (*SyncStateCounts, error)
}
