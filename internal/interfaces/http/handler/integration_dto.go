package handler

import (
	"time"

	"github.com/pos/backend/internal/domain/integration"
)

// CreateBusinessMappingRequest is the body of the business-mapping endpoint
type CreateBusinessMappingRequest struct {
	BusinessID string               `json:"business_id" binding:"required,uuid"`
	TenantUUID string               `json:"tenant_uuid" binding:"required"`
	Metadata   integration.Metadata `json:"metadata"`
}

// MappingResponse is the wire representation of a system mapping
type MappingResponse struct {
	ID           string               `json:"id"`
	EntityType   string               `json:"entity_type"`
	PosID        string               `json:"pos_id"`
	CrmID        string               `json:"crm_id"`
	BusinessID   string               `json:"business_id"`
	SyncStatus   string               `json:"sync_status"`
	Metadata     integration.Metadata `json:"metadata,omitempty"`
	BusinessName string               `json:"business_name,omitempty"`
	LastSyncedAt time.Time            `json:"last_synced_at"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// toMappingResponse converts a domain mapping to its wire form
func toMappingResponse(m *integration.SystemMapping) MappingResponse {
	return MappingResponse{
		ID:           m.ID.String(),
		EntityType:   string(m.EntityType),
		PosID:        m.PosID,
		CrmID:        m.CrmID,
		BusinessID:   m.BusinessID.String(),
		SyncStatus:   string(m.SyncStatus),
		Metadata:     m.Metadata,
		BusinessName: m.BusinessName,
		LastSyncedAt: m.LastSyncedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// toMappingResponses converts a list of domain mappings
func toMappingResponses(mappings []integration.SystemMapping) []MappingResponse {
	out := make([]MappingResponse, len(mappings))
	for i := range mappings {
		out[i] = toMappingResponse(&mappings[i])
	}
	return out
}
