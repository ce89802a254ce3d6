package integration

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/integration"
	"github.com/pos/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// CRM payloads
// ---------------------------------------------------------------------------

// CRMCustomer is the customer representation carried by CRM webhook
// payloads. Field names follow the CRM's snake_case wire format.
type CRMCustomer struct {
	ID             string          `json:"id"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	DateOfBirth    string          `json:"date_of_birth"`
	Address        string          `json:"address"`
	City           string          `json:"city"`
	State          string          `json:"state"`
	ZipCode        string          `json:"zip_code"`
	LoyaltyPoints  int             `json:"loyalty_points"`
	LoyaltyTier    string          `json:"loyalty_tier"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	VisitCount     int             `json:"visit_count"`
	MarketingOptIn bool            `json:"marketing_opt_in"`
	// IsActive defaults to true unless the CRM explicitly sends false
	IsActive *bool  `json:"is_active"`
	Notes    string `json:"notes"`
}

// BirthDate parses the CRM's date_of_birth into a time, accepting a bare
// date or a full RFC 3339 timestamp. Unparseable values map to nil.
func (c *CRMCustomer) BirthDate() *time.Time {
	if c.DateOfBirth == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, c.DateOfBirth); err == nil {
			return &t
		}
	}
	return nil
}

// Active resolves the is_active default
func (c *CRMCustomer) Active() bool {
	return c.IsActive == nil || *c.IsActive
}

// Tier resolves the loyalty tier default
func (c *CRMCustomer) Tier() partner.LoyaltyTier {
	if c.LoyaltyTier == "" {
		return partner.LoyaltyTierBronze
	}
	return partner.LoyaltyTier(c.LoyaltyTier)
}

// SyncOperation names the webhook event being applied
type SyncOperation string

const (
	OperationCreated SyncOperation = "created"
	OperationUpdated SyncOperation = "updated"
	OperationDeleted SyncOperation = "deleted"
)

// SyncResult is the structured outcome of one sync invocation. The sync
// service never lets an error escape; failures arrive here instead so the
// HTTP layer can always shape a response.
type SyncResult struct {
	Success    bool          `json:"success"`
	CustomerID uuid.UUID     `json:"customer_id,omitempty"`
	Operation  SyncOperation `json:"operation,omitempty"`
	Message    string        `json:"message,omitempty"`
	Error      string        `json:"error,omitempty"`
}

func successResult(customerID uuid.UUID, operation SyncOperation) SyncResult {
	return SyncResult{Success: true, CustomerID: customerID, Operation: operation}
}

func failureResult(operation SyncOperation, err error) SyncResult {
	return SyncResult{Success: false, Operation: operation, Error: err.Error()}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// ---------------------------------------------------------------------------
// Mapping parameters and reports
// ---------------------------------------------------------------------------

// CreateMappingParams carries the inputs of the generic mapping upsert
type CreateMappingParams struct {
	EntityType integration.EntityType
	PosID      string
	CrmID      string
	BusinessID uuid.UUID
	Metadata   integration.Metadata
}

// MappingTypeCounts breaks mapping totals down by entity type
type MappingTypeCounts struct {
	Business    int64 `json:"business"`
	Customer    int64 `json:"customer"`
	Transaction int64 `json:"transaction"`
}

// MappingStatusCounts breaks mapping totals down by sync status
type MappingStatusCounts struct {
	Active int64 `json:"active"`
	Failed int64 `json:"failed"`
}

// MappingStats is the dashboard-grade aggregate over a business's mappings.
// The underlying counts run as independent queries with no transactional
// consistency between them.
type MappingStats struct {
	Total    int64               `json:"total"`
	ByType   MappingTypeCounts   `json:"by_type"`
	ByStatus MappingStatusCounts `json:"by_status"`
}

// ValidationIssue describes one orphaned mapping found by validation
type ValidationIssue struct {
	MappingID  uuid.UUID              `json:"mapping_id"`
	EntityType integration.EntityType `json:"entity_type"`
	PosID      string                 `json:"pos_id"`
	CrmID      string                 `json:"crm_id"`
	Reason     string                 `json:"reason"`
}

// ValidationReport summarizes a mapping integrity sweep for one business
type ValidationReport struct {
	Total   int               `json:"total"`
	Valid   int               `json:"valid"`
	Invalid []ValidationIssue `json:"invalid"`
}

// SyncStats summarizes customer sync health for one business
type SyncStats struct {
	Total      int64                       `json:"total"`
	Mappings   int                         `json:"mappings"`
	SyncStates map[partner.SyncState]int64 `json:"sync_states"`
	LastSync   *time.Time                  `json:"last_sync"`
}
