package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appintegration "github.com/pos/backend/internal/application/integration"
	"github.com/pos/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// MappingHandler exposes the integration administrative API: establishing the
// business↔tenant root mapping, inspecting mappings, and maintenance sweeps.
// All routes sit behind the integration bearer-token middleware.
type MappingHandler struct {
	BaseHandler
	mappings *appintegration.MappingService
	sync     *appintegration.CustomerSyncService
	log      *zap.Logger
}

// NewMappingHandler creates a new MappingHandler
func NewMappingHandler(mappings *appintegration.MappingService, sync *appintegration.CustomerSyncService, log *zap.Logger) *MappingHandler {
	return &MappingHandler{
		mappings: mappings,
		sync:     sync,
		log:      log.Named("mapping_api"),
	}
}

// CreateBusinessMapping handles POST /api/integration/mappings/business.
// This is the root correspondence every customer and transaction mapping
// hangs off, so it is the first call a new CRM tenant makes.
func (h *MappingHandler) CreateBusinessMapping(c *gin.Context) {
	var req CreateBusinessMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "business_id (UUID) and tenant_uuid are required")
		return
	}
	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		h.BadRequest(c, "Field business_id must be a UUID")
		return
	}

	mapping, err := h.mappings.CreateBusinessMapping(c.Request.Context(), businessID, req.TenantUUID, req.Metadata)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toMappingResponse(mapping))
}

// ListMappings handles GET /api/integration/mappings. Scoped to one business
// via the business_id query parameter; entity_type optionally narrows the
// list.
func (h *MappingHandler) ListMappings(c *gin.Context) {
	businessID, ok := h.businessIDQuery(c)
	if !ok {
		return
	}

	var entityType *integration.EntityType
	if raw := c.Query("entity_type"); raw != "" {
		et := integration.EntityType(raw)
		if !et.IsValid() {
			h.BadRequest(c, "Unknown entity_type: "+raw)
			return
		}
		entityType = &et
	}

	mappings := h.mappings.GetBusinessMappings(c.Request.Context(), businessID, entityType)
	h.Success(c, toMappingResponses(mappings))
}

// GetMapping handles GET /api/integration/mappings/:entityType/:posId
func (h *MappingHandler) GetMapping(c *gin.Context) {
	entityType, ok := h.entityTypeParam(c)
	if !ok {
		return
	}

	mapping := h.mappings.GetMapping(c.Request.Context(), entityType, c.Param("posId"))
	if mapping == nil {
		h.NotFound(c, "Mapping not found")
		return
	}
	h.Success(c, toMappingResponse(mapping))
}

// DeleteMapping handles DELETE /api/integration/mappings/:entityType/:posId.
// Hard delete, for administrative cleanup; the sync path only ever archives.
func (h *MappingHandler) DeleteMapping(c *gin.Context) {
	entityType, ok := h.entityTypeParam(c)
	if !ok {
		return
	}

	posID := c.Param("posId")
	if !h.mappings.DeleteMapping(c.Request.Context(), entityType, posID) {
		h.NotFound(c, "Mapping not found")
		return
	}

	h.log.Info("mapping deleted",
		zap.String("entity_type", string(entityType)),
		zap.String("pos_id", posID),
		zap.String("deleted_by", "integration"),
	)
	h.Success(c, gin.H{"deleted": true})
}

// GetMappingStats handles GET /api/integration/mappings/stats
func (h *MappingHandler) GetMappingStats(c *gin.Context) {
	businessID, ok := h.businessIDQuery(c)
	if !ok {
		return
	}

	stats, err := h.mappings.GetMappingStats(c.Request.Context(), businessID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ValidateMappings handles GET /api/integration/mappings/validate. Runs the
// orphan sweep synchronously; intended for operators, not the request path.
func (h *MappingHandler) ValidateMappings(c *gin.Context) {
	businessID, ok := h.businessIDQuery(c)
	if !ok {
		return
	}

	report, err := h.mappings.ValidateMappings(c.Request.Context(), businessID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// GetSyncStats handles GET /api/integration/sync/stats
func (h *MappingHandler) GetSyncStats(c *gin.Context) {
	businessID, ok := h.businessIDQuery(c)
	if !ok {
		return
	}

	stats, err := h.sync.GetSyncStats(c.Request.Context(), businessID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

func (h *MappingHandler) businessIDQuery(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Query("business_id")
	if raw == "" {
		h.BadRequest(c, "Query parameter business_id is required")
		return uuid.Nil, false
	}
	businessID, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Query parameter business_id must be a UUID")
		return uuid.Nil, false
	}
	return businessID, true
}

func (h *MappingHandler) entityTypeParam(c *gin.Context) (integration.EntityType, bool) {
	entityType := integration.EntityType(c.Param("entityType"))
	if !entityType.IsValid() {
		h.BadRequest(c, "Unknown entity type: "+c.Param("entityType"))
		return "", false
	}
	return entityType, true
}
