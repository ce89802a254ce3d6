package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Enums
// ---------------------------------------------------------------------------

// EntityType identifies which kind of entity a mapping row correlates
// across the two systems. The set is closed; extending it requires a new
// constant plus an entity resolver registration (see EntityResolverRegistry).
type EntityType string

const (
	EntityTypeBusiness    EntityType = "BUSINESS"
	EntityTypeCustomer    EntityType = "CUSTOMER"
	EntityTypeTransaction EntityType = "TRANSACTION"
)

// IsValid reports whether the entity type is one of the known values
func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeBusiness, EntityTypeCustomer, EntityTypeTransaction:
		return true
	}
	return false
}

// SyncStatus represents the synchronization state of a mapping
type SyncStatus string

const (
	SyncStatusActive   SyncStatus = "ACTIVE"
	SyncStatusPending  SyncStatus = "PENDING"
	SyncStatusFailed   SyncStatus = "FAILED"
	SyncStatusArchived SyncStatus = "ARCHIVED"
)

// IsValid reports whether the sync status is one of the known values
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusActive, SyncStatusPending, SyncStatusFailed, SyncStatusArchived:
		return true
	}
	return false
}

// Metadata is a free-form provenance payload attached to a mapping at
// creation time. It is stored verbatim and never parsed for control flow.
type Metadata map[string]any

// ---------------------------------------------------------------------------
// Domain errors
// ---------------------------------------------------------------------------

var (
	ErrMappingNotFound         = shared.NewDomainError("MAPPING_NOT_FOUND", "System mapping not found")
	ErrMappingAlreadyExists    = shared.NewDomainError("MAPPING_ALREADY_EXISTS", "System mapping already exists")
	ErrMappingInvalidType      = shared.NewDomainError("MAPPING_INVALID_TYPE", "Invalid mapping entity type")
	ErrMappingInvalidPosID     = shared.NewDomainError("MAPPING_INVALID_POS_ID", "Mapping POS ID must not be empty")
	ErrMappingInvalidCrmID     = shared.NewDomainError("MAPPING_INVALID_CRM_ID", "Mapping CRM ID must not be empty")
	ErrMappingInvalidStatus    = shared.NewDomainError("MAPPING_INVALID_STATUS", "Invalid mapping sync status")
	ErrMappingInvalidBusiness  = shared.NewDomainError("MAPPING_INVALID_BUSINESS", "Mapping business ID must not be empty")
	ErrUnresolvableEntityType  = shared.NewDomainError("MAPPING_UNRESOLVABLE_TYPE", "No entity resolver registered for entity type")
)

// ---------------------------------------------------------------------------
// SystemMapping Entity
// ---------------------------------------------------------------------------

// SystemMapping is one cross-system identity correspondence: the entity known
// as PosID in the local POS system is the entity known as CrmID in the CRM.
//
// Invariant (enforced by unique indexes in the store, not application logic):
// for a given EntityType, PosID and CrmID each resolve to at most one row.
type SystemMapping struct {
	ID         uuid.UUID
	EntityType EntityType
	// PosID is the entity's identifier in the local system's namespace
	PosID string
	// CrmID is the entity's identifier in the external CRM's namespace
	CrmID string
	// BusinessID scopes the mapping to one local business/tenant
	BusinessID uuid.UUID
	SyncStatus SyncStatus
	Metadata   Metadata
	// BusinessName is a read-only summary joined from the business row;
	// populated only by lookups that request it
	BusinessName string
	LastSyncedAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSystemMapping creates a new mapping with a fresh identity and an ACTIVE
// status stamped with the current time.
func NewSystemMapping(entityType EntityType, posID, crmID string, businessID uuid.UUID, metadata Metadata) (*SystemMapping, error) {
	if !entityType.IsValid() {
		return nil, ErrMappingInvalidType
	}
	if posID == "" {
		return nil, ErrMappingInvalidPosID
	}
	if crmID == "" {
		return nil, ErrMappingInvalidCrmID
	}
	if businessID == uuid.Nil {
		return nil, ErrMappingInvalidBusiness
	}

	now := time.Now()
	return &SystemMapping{
		ID:           uuid.New(),
		EntityType:   entityType,
		PosID:        posID,
		CrmID:        crmID,
		BusinessID:   businessID,
		SyncStatus:   SyncStatusActive,
		Metadata:     metadata,
		LastSyncedAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Refresh re-applies the latest CRM correspondence onto an existing mapping.
// Used when a retried or re-delivered sync touches an already-mapped PosID:
// the mapping converges to the newest CrmID with its status reset to ACTIVE.
func (m *SystemMapping) Refresh(crmID string, metadata Metadata) {
	now := time.Now()
	m.CrmID = crmID
	m.SyncStatus = SyncStatusActive
	if metadata != nil {
		m.Metadata = metadata
	}
	m.LastSyncedAt = now
	m.UpdatedAt = now
}

// SetStatus transitions the mapping to the given sync status
func (m *SystemMapping) SetStatus(status SyncStatus) error {
	if !status.IsValid() {
		return ErrMappingInvalidStatus
	}
	now := time.Now()
	m.SyncStatus = status
	m.LastSyncedAt = now
	m.UpdatedAt = now
	return nil
}

// Archive marks the mapping as soft-deleted. Mappings are never physically
// removed by the sync path; only the administrative delete operation does.
func (m *SystemMapping) Archive() {
	_ = m.SetStatus(SyncStatusArchived)
}

// ---------------------------------------------------------------------------
// Repository interfaces
// ---------------------------------------------------------------------------

// InsertOutcome is the tagged result of a low-level mapping insert. A losing
// writer in a concurrent first-sync race observes Created == false together
// with the row the winner created, instead of a surfaced constraint error.
type InsertOutcome struct {
	Created  bool
	Existing *SystemMapping
}

// MappingReader defines lookups over the mapping store
type MappingReader interface {
	// FindByPosID finds a mapping by its unique (entityType, posID) key
	FindByPosID(ctx context.Context, entityType EntityType, posID string) (*SystemMapping, error)

	// FindByCrmID finds a mapping by its unique (entityType, crmID) key
	FindByCrmID(ctx context.Context, entityType EntityType, crmID string) (*SystemMapping, error)

	// FindByPosIDWithBusiness is FindByPosID with the business summary joined
	FindByPosIDWithBusiness(ctx context.Context, entityType EntityType, posID string) (*SystemMapping, error)

	// FindByBusiness lists a business's mappings newest-first, optionally
	// filtered by entity type
	FindByBusiness(ctx context.Context, businessID uuid.UUID, entityType *EntityType) ([]SystemMapping, error)
}

// MappingWriter defines mutations of the mapping store
type MappingWriter interface {
	// Insert adds a new mapping row. A unique-key violation on
	// (entityType, posID) or (entityType, crmID) is not an error: the
	// outcome carries the already-existing row instead.
	Insert(ctx context.Context, mapping *SystemMapping) (InsertOutcome, error)

	// Update persists changes to an existing mapping row
	Update(ctx context.Context, mapping *SystemMapping) error

	// Delete hard-deletes a mapping, reporting whether a row was removed
	Delete(ctx context.Context, entityType EntityType, posID string) (bool, error)
}

// MappingCounter defines the aggregate count queries behind mapping stats
type MappingCounter interface {
	CountByBusiness(ctx context.Context, businessID uuid.UUID) (int64, error)
	CountByBusinessAndType(ctx context.Context, businessID uuid.UUID, entityType EntityType) (int64, error)
	CountByBusinessAndStatus(ctx context.Context, businessID uuid.UUID, status SyncStatus) (int64, error)
}

// MappingRepository defines the full interface for mapping persistence
type MappingRepository interface {
	MappingReader
	MappingWriter
	MappingCounter
}
