package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appintegration "github.com/pos/backend/internal/application/integration"
	"go.uber.org/zap"
)

// TenantIDHeader identifies the CRM tenant a webhook delivery belongs to
const TenantIDHeader = "X-Tenant-Id"

// WebhookHandler receives CRM customer webhooks. Signature verification has
// already happened in middleware by the time these handlers run; they only
// validate the payload and dispatch to the sync service.
type WebhookHandler struct {
	BaseHandler
	sync *appintegration.CustomerSyncService
	log  *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(sync *appintegration.CustomerSyncService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		sync: sync,
		log:  log.Named("webhook"),
	}
}

// customerEventPayload is the body of customer-created and customer-updated
// deliveries
type customerEventPayload struct {
	Customer      *appintegration.CRMCustomer `json:"customer"`
	TenantID      string                      `json:"tenant_id"`
	PosBusinessID string                      `json:"pos_business_id"`
}

// customerDeletedPayload is the body of customer-deleted deliveries
type customerDeletedPayload struct {
	CustomerID    string `json:"customer_id"`
	TenantID      string `json:"tenant_id"`
	PosBusinessID string `json:"pos_business_id"`
}

// CustomerCreated handles POST /api/integration/webhook/customer-created
func (h *WebhookHandler) CustomerCreated(c *gin.Context) {
	h.handleCustomerEvent(c, appintegration.OperationCreated)
}

// CustomerUpdated handles POST /api/integration/webhook/customer-updated
func (h *WebhookHandler) CustomerUpdated(c *gin.Context) {
	h.handleCustomerEvent(c, appintegration.OperationUpdated)
}

// CustomerDeleted handles POST /api/integration/webhook/customer-deleted
func (h *WebhookHandler) CustomerDeleted(c *gin.Context) {
	if !h.requireTenantHeader(c) {
		return
	}

	var payload customerDeletedPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.BadRequest(c, "Malformed JSON payload")
		return
	}
	if payload.CustomerID == "" {
		h.BadRequest(c, "Missing required field: customer_id")
		return
	}
	businessID, ok := h.parseBusinessID(c, payload.PosBusinessID)
	if !ok {
		return
	}

	crmCustomer := &appintegration.CRMCustomer{ID: payload.CustomerID}
	result := h.sync.SyncCustomerFromCRM(c.Request.Context(), crmCustomer, businessID, appintegration.OperationDeleted)
	h.respondSyncResult(c, result)
}

// handleCustomerEvent is the shared body of the created and updated endpoints.
// The operation names the CRM event; the sync service decides the actual local
// action, so a re-delivered "created" converges instead of erroring.
func (h *WebhookHandler) handleCustomerEvent(c *gin.Context, operation appintegration.SyncOperation) {
	if !h.requireTenantHeader(c) {
		return
	}

	var payload customerEventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.BadRequest(c, "Malformed JSON payload")
		return
	}
	if payload.Customer == nil || payload.Customer.ID == "" {
		h.BadRequest(c, "Missing required field: customer.id")
		return
	}
	businessID, ok := h.parseBusinessID(c, payload.PosBusinessID)
	if !ok {
		return
	}

	result := h.sync.SyncCustomerFromCRM(c.Request.Context(), payload.Customer, businessID, operation)
	h.respondSyncResult(c, result)
}

func (h *WebhookHandler) requireTenantHeader(c *gin.Context) bool {
	if c.GetHeader(TenantIDHeader) == "" {
		h.BadRequest(c, "Missing "+TenantIDHeader+" header")
		return false
	}
	return true
}

func (h *WebhookHandler) parseBusinessID(c *gin.Context, raw string) (uuid.UUID, bool) {
	if raw == "" {
		h.BadRequest(c, "Missing required field: pos_business_id")
		return uuid.Nil, false
	}
	businessID, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Field pos_business_id must be a UUID")
		return uuid.Nil, false
	}
	return businessID, true
}

// respondSyncResult shapes the webhook acknowledgement. The sender retries on
// 5xx only, so business-logic failures answer 500 and a successful first
// creation answers 201.
func (h *WebhookHandler) respondSyncResult(c *gin.Context, result appintegration.SyncResult) {
	if !result.Success {
		h.log.Warn("webhook sync failed",
			zap.String("operation", string(result.Operation)),
			zap.String("error", result.Error),
		)
		c.JSON(http.StatusInternalServerError, result)
		return
	}

	status := http.StatusOK
	if result.Operation == appintegration.OperationCreated {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}
