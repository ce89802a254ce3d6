package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/integration"
)

// SystemMappingModel is the persistence model for the SystemMapping domain
// entity. The two composite unique indexes are the authority for the
// one-to-one invariant between POS and CRM identifiers; application code
// relies on the constraint, never re-checks it.
type SystemMappingModel struct {
	ID         uuid.UUID              `gorm:"type:uuid;primary_key"`
	EntityType integration.EntityType `gorm:"type:varchar(20);not null;uniqueIndex:idx_mapping_entity_pos,priority:1;uniqueIndex:idx_mapping_entity_crm,priority:1"`
	PosID      string                 `gorm:"type:varchar(100);not null;uniqueIndex:idx_mapping_entity_pos,priority:2"`
	CrmID      string                 `gorm:"type:varchar(100);not null;uniqueIndex:idx_mapping_entity_crm,priority:2"`
	BusinessID uuid.UUID              `gorm:"type:uuid;not null;index:idx_mapping_business"`
	SyncStatus integration.SyncStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	Metadata   string                 `gorm:"type:jsonb"`
	// BusinessName is populated by lookups that join the business row; it
	// has no column of its own
	BusinessName string    `gorm:"-"`
	LastSyncedAt time.Time `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SystemMappingModel) TableName() string {
	return "system_mappings"
}

// ToDomain converts the persistence model to a domain SystemMapping entity.
func (m *SystemMappingModel) ToDomain() *integration.SystemMapping {
	mapping := &integration.SystemMapping{
		ID:           m.ID,
		EntityType:   m.EntityType,
		PosID:        m.PosID,
		CrmID:        m.CrmID,
		BusinessID:   m.BusinessID,
		SyncStatus:   m.SyncStatus,
		BusinessName: m.BusinessName,
		LastSyncedAt: m.LastSyncedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}

	if m.Metadata != "" {
		var metadata integration.Metadata
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err == nil {
			mapping.Metadata = metadata
		}
	}

	return mapping
}

// FromDomain populates the persistence model from a domain SystemMapping entity.
func (m *SystemMappingModel) FromDomain(mapping *integration.SystemMapping) error {
	m.ID = mapping.ID
	m.EntityType = mapping.EntityType
	m.PosID = mapping.PosID
	m.CrmID = mapping.CrmID
	m.BusinessID = mapping.BusinessID
	m.SyncStatus = mapping.SyncStatus
	m.LastSyncedAt = mapping.LastSyncedAt
	m.CreatedAt = mapping.CreatedAt
	m.UpdatedAt = mapping.UpdatedAt

	m.Metadata = ""
	if mapping.Metadata != nil {
		data, err := json.Marshal(mapping.Metadata)
		if err != nil {
			return err
		}
		m.Metadata = string(data)
	}

	return nil
}
