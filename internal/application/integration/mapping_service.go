package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/integration"
	"github.com/pos/backend/internal/domain/partner"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/trade"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MappingService owns all reads and writes of the cross-system mapping
// store. It is the only component allowed to create or update mapping rows.
//
// Every create operation is upsert-shaped: CRM webhook delivery is
// at-least-once, so applying the same inputs twice must converge to the
// same state.
type MappingService struct {
	mappings     integration.MappingRepository
	businesses   partner.BusinessRepository
	customers    partner.CustomerRepository
	transactions trade.TransactionRepository
	resolvers    *integration.EntityResolverRegistry
	log          *zap.Logger
}

// NewMappingService creates a MappingService and registers the entity
// resolvers used by mapping validation.
func NewMappingService(
	mappings integration.MappingRepository,
	businesses partner.BusinessRepository,
	customers partner.CustomerRepository,
	transactions trade.TransactionRepository,
	log *zap.Logger,
) *MappingService {
	registry := integration.NewEntityResolverRegistry()
	registry.Register(integration.EntityTypeBusiness, uuidResolver(businesses.Exists))
	registry.Register(integration.EntityTypeCustomer, uuidResolver(customers.Exists))
	registry.Register(integration.EntityTypeTransaction, uuidResolver(transactions.Exists))

	return &MappingService{
		mappings:     mappings,
		businesses:   businesses,
		customers:    customers,
		transactions: transactions,
		resolvers:    registry,
		log:          log.Named("mapping"),
	}
}

// uuidResolver adapts a UUID-keyed existence check to the string-keyed
// resolver signature. A posID that is not a UUID cannot reference a local
// entity, so it resolves to not-found rather than an error.
func uuidResolver(exists func(ctx context.Context, id uuid.UUID) (bool, error)) integration.EntityResolver {
	return func(ctx context.Context, posID string) (bool, error) {
		id, err := uuid.Parse(posID)
		if err != nil {
			return false, nil
		}
		return exists(ctx, id)
	}
}

// ---------------------------------------------------------------------------
// Core mapping operations
// ---------------------------------------------------------------------------

// CreateMapping creates or refreshes the mapping for (entityType, posID).
// An existing row is updated in place with the new crmID and an ACTIVE
// status rather than treated as a conflict, which makes retried webhook
// deliveries idempotent. A concurrent first-insert race is resolved by
// converging onto whichever row won the unique-constraint check.
func (s *MappingService) CreateMapping(ctx context.Context, params CreateMappingParams) (*integration.SystemMapping, error) {
	existing, err := s.mappings.FindByPosID(ctx, params.EntityType, params.PosID)
	if err != nil && !errors.Is(err, integration.ErrMappingNotFound) {
		return nil, err
	}
	if existing != nil {
		existing.Refresh(params.CrmID, params.Metadata)
		if err := s.mappings.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	mapping, err := integration.NewSystemMapping(params.EntityType, params.PosID, params.CrmID, params.BusinessID, params.Metadata)
	if err != nil {
		return nil, err
	}

	outcome, err := s.mappings.Insert(ctx, mapping)
	if err != nil {
		return nil, err
	}
	if outcome.Created {
		s.log.Info("mapping created",
			zap.String("entity_type", string(params.EntityType)),
			zap.String("pos_id", params.PosID),
			zap.String("crm_id", params.CrmID),
		)
		return mapping, nil
	}

	// Lost the race against a concurrent delivery; re-apply onto the winner.
	winner := outcome.Existing
	winner.Refresh(params.CrmID, params.Metadata)
	if err := s.mappings.Update(ctx, winner); err != nil {
		return nil, err
	}
	return winner, nil
}

// GetCrmID returns the CRM identifier mapped to (entityType, posID), or ""
// when no mapping exists. Absence is expected data, not a failure; store
// errors are logged and also reported as absence.
func (s *MappingService) GetCrmID(ctx context.Context, entityType integration.EntityType, posID string) string {
	mapping, err := s.mappings.FindByPosID(ctx, entityType, posID)
	if err != nil {
		if !errors.Is(err, integration.ErrMappingNotFound) {
			s.log.Error("crm id lookup failed", zap.String("pos_id", posID), zap.Error(err))
		}
		return ""
	}
	return mapping.CrmID
}

// GetPosID returns the POS identifier mapped to (entityType, crmID), or ""
// when no mapping exists.
func (s *MappingService) GetPosID(ctx context.Context, entityType integration.EntityType, crmID string) string {
	mapping, err := s.mappings.FindByCrmID(ctx, entityType, crmID)
	if err != nil {
		if !errors.Is(err, integration.ErrMappingNotFound) {
			s.log.Error("pos id lookup failed", zap.String("crm_id", crmID), zap.Error(err))
		}
		return ""
	}
	return mapping.PosID
}

// GetMapping returns the complete mapping record with its business summary
// joined, or nil when absent or unreadable.
func (s *MappingService) GetMapping(ctx context.Context, entityType integration.EntityType, posID string) *integration.SystemMapping {
	mapping, err := s.mappings.FindByPosIDWithBusiness(ctx, entityType, posID)
	if err != nil {
		if !errors.Is(err, integration.ErrMappingNotFound) {
			s.log.Error("mapping lookup failed", zap.String("pos_id", posID), zap.Error(err))
		}
		return nil
	}
	return mapping
}

// GetBusinessMappings lists a business's mappings newest-first, optionally
// filtered by entity type. Store errors degrade to an empty list.
func (s *MappingService) GetBusinessMappings(ctx context.Context, businessID uuid.UUID, entityType *integration.EntityType) []integration.SystemMapping {
	mappings, err := s.mappings.FindByBusiness(ctx, businessID, entityType)
	if err != nil {
		s.log.Error("business mappings lookup failed", zap.String("business_id", businessID.String()), zap.Error(err))
		return []integration.SystemMapping{}
	}
	return mappings
}

// DeleteMapping hard-deletes a mapping, for administrative cleanup only.
// Reports false instead of erroring on not-found so cleanup loops stay
// simple.
func (s *MappingService) DeleteMapping(ctx context.Context, entityType integration.EntityType, posID string) bool {
	deleted, err := s.mappings.Delete(ctx, entityType, posID)
	if err != nil {
		s.log.Error("mapping delete failed", zap.String("pos_id", posID), zap.Error(err))
		return false
	}
	return deleted
}

// UpdateMappingStatus transitions a mapping to the given status, returning
// the updated row, or nil when no mapping exists for the key.
func (s *MappingService) UpdateMappingStatus(ctx context.Context, entityType integration.EntityType, posID string, status integration.SyncStatus) (*integration.SystemMapping, error) {
	mapping, err := s.mappings.FindByPosID(ctx, entityType, posID)
	if err != nil {
		if errors.Is(err, integration.ErrMappingNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := mapping.SetStatus(status); err != nil {
		return nil, err
	}
	if err := s.mappings.Update(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// ---------------------------------------------------------------------------
// Entity-specific mapping creation
// ---------------------------------------------------------------------------

// CreateBusinessMapping establishes the root BUSINESS correspondence between
// a local business and a CRM tenant. The resolved tenant UUID is also
// denormalized onto the business row for fast lookup. Must exist before any
// CUSTOMER or TRANSACTION mapping under the same business is valid.
func (s *MappingService) CreateBusinessMapping(ctx context.Context, businessID uuid.UUID, tenantUUID string, metadata integration.Metadata) (*integration.SystemMapping, error) {
	business, err := s.businesses.FindByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("business %s: %w", businessID, err)
	}

	mapping, err := s.CreateMapping(ctx, CreateMappingParams{
		EntityType: integration.EntityTypeBusiness,
		PosID:      businessID.String(),
		CrmID:      tenantUUID,
		BusinessID: businessID,
		Metadata: withProvenance(metadata, integration.Metadata{
			"businessName": business.BusinessName,
		}),
	})
	if err != nil {
		return nil, err
	}

	business.LinkTenant(tenantUUID)
	if err := s.businesses.Update(ctx, business); err != nil {
		return nil, err
	}

	s.log.Info("business mapping created",
		zap.String("business_id", businessID.String()),
		zap.String("tenant_uuid", tenantUUID),
	)
	return mapping, nil
}

// CreateCustomerMapping links a local customer to a CRM customer after
// verifying the customer exists and belongs to the claimed business. The
// CRM id is denormalized onto the customer row.
func (s *MappingService) CreateCustomerMapping(ctx context.Context, customerID uuid.UUID, crmID string, businessID uuid.UUID, metadata integration.Metadata) (*integration.SystemMapping, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("customer %s: %w", customerID, err)
	}
	if customer.BusinessID != businessID {
		// Security-relevant: the caller claimed a business it does not own.
		s.log.Warn("tenant isolation violation on customer mapping",
			zap.String("customer_id", customerID.String()),
			zap.String("claimed_business_id", businessID.String()),
			zap.String("actual_business_id", customer.BusinessID.String()),
		)
		return nil, fmt.Errorf("customer %s claimed by business %s: %w", customerID, businessID, shared.ErrTenantMismatch)
	}

	mapping, err := s.CreateMapping(ctx, CreateMappingParams{
		EntityType: integration.EntityTypeCustomer,
		PosID:      customerID.String(),
		CrmID:      crmID,
		BusinessID: businessID,
		Metadata: withProvenance(metadata, integration.Metadata{
			"customerName": customer.FullName(),
			"email":        customer.Email,
		}),
	})
	if err != nil {
		return nil, err
	}

	customer.LinkExternal(crmID)
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return mapping, nil
}

// CreateTransactionMapping links a local transaction to a CRM transaction,
// symmetric to CreateCustomerMapping.
func (s *MappingService) CreateTransactionMapping(ctx context.Context, transactionID uuid.UUID, crmID string, businessID uuid.UUID, metadata integration.Metadata) (*integration.SystemMapping, error) {
	transaction, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, err)
	}
	if transaction.BusinessID != businessID {
		s.log.Warn("tenant isolation violation on transaction mapping",
			zap.String("transaction_id", transactionID.String()),
			zap.String("claimed_business_id", businessID.String()),
			zap.String("actual_business_id", transaction.BusinessID.String()),
		)
		return nil, fmt.Errorf("transaction %s claimed by business %s: %w", transactionID, businessID, shared.ErrTenantMismatch)
	}

	mapping, err := s.CreateMapping(ctx, CreateMappingParams{
		EntityType: integration.EntityTypeTransaction,
		PosID:      transactionID.String(),
		CrmID:      crmID,
		BusinessID: businessID,
		Metadata: withProvenance(metadata, integration.Metadata{
			"transactionNumber": transaction.TransactionNumber,
		}),
	})
	if err != nil {
		return nil, err
	}

	transaction.LinkExternal(crmID)
	if err := s.transactions.Update(ctx, transaction); err != nil {
		return nil, err
	}
	return mapping, nil
}

// GetTenantUUID returns the CRM tenant UUID for a business, or ""
func (s *MappingService) GetTenantUUID(ctx context.Context, businessID uuid.UUID) string {
	return s.GetCrmID(ctx, integration.EntityTypeBusiness, businessID.String())
}

// GetBusinessID returns the local business id for a CRM tenant UUID, or ""
func (s *MappingService) GetBusinessID(ctx context.Context, tenantUUID string) string {
	return s.GetPosID(ctx, integration.EntityTypeBusiness, tenantUUID)
}

// ---------------------------------------------------------------------------
// Maintenance operations
// ---------------------------------------------------------------------------

// GetMappingStats aggregates mapping counts for a business. The six count
// queries run concurrently; the result is a point-in-time statistic with no
// cross-count consistency guarantee.
func (s *MappingService) GetMappingStats(ctx context.Context, businessID uuid.UUID) (*MappingStats, error) {
	var stats MappingStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Total, err = s.mappings.CountByBusiness(gctx, businessID)
		return err
	})
	g.Go(func() (err error) {
		stats.ByType.Business, err = s.mappings.CountByBusinessAndType(gctx, businessID, integration.EntityTypeBusiness)
		return err
	})
	g.Go(func() (err error) {
		stats.ByType.Customer, err = s.mappings.CountByBusinessAndType(gctx, businessID, integration.EntityTypeCustomer)
		return err
	})
	g.Go(func() (err error) {
		stats.ByType.Transaction, err = s.mappings.CountByBusinessAndType(gctx, businessID, integration.EntityTypeTransaction)
		return err
	})
	g.Go(func() (err error) {
		stats.ByStatus.Active, err = s.mappings.CountByBusinessAndStatus(gctx, businessID, integration.SyncStatusActive)
		return err
	})
	g.Go(func() (err error) {
		stats.ByStatus.Failed, err = s.mappings.CountByBusinessAndStatus(gctx, businessID, integration.SyncStatusFailed)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ValidateMappings sweeps every mapping belonging to a business and checks
// that the referenced local entity still exists, dispatching the existence
// check through the entity resolver registry. O(n) lookups; intended for
// periodic batch execution, not the request path.
func (s *MappingService) ValidateMappings(ctx context.Context, businessID uuid.UUID) (*ValidationReport, error) {
	mappings, err := s.mappings.FindByBusiness(ctx, businessID, nil)
	if err != nil {
		return nil, err
	}

	report := &ValidationReport{
		Total:   len(mappings),
		Invalid: make([]ValidationIssue, 0),
	}

	for i := range mappings {
		mapping := &mappings[i]

		exists, err := s.resolvers.Resolve(ctx, mapping.EntityType, mapping.PosID)
		if err != nil {
			if errors.Is(err, integration.ErrUnresolvableEntityType) {
				report.Invalid = append(report.Invalid, validationIssue(mapping, "No resolver registered for entity type"))
				continue
			}
			return nil, err
		}

		if exists {
			report.Valid++
			continue
		}
		report.Invalid = append(report.Invalid, validationIssue(mapping, "Entity not found in POS system"))
	}
	return report, nil
}

func validationIssue(mapping *integration.SystemMapping, reason string) ValidationIssue {
	return ValidationIssue{
		MappingID:  mapping.ID,
		EntityType: mapping.EntityType,
		PosID:      mapping.PosID,
		CrmID:      mapping.CrmID,
		Reason:     reason,
	}
}

// withProvenance merges caller metadata with snapshot fields captured at
// creation time. Caller keys win on collision.
func withProvenance(metadata, snapshot integration.Metadata) integration.Metadata {
	merged := integration.Metadata{
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range snapshot {
		merged[k] = v
	}
	for k, v := range metadata {
		merged[k] = v
	}
	return merged
}
