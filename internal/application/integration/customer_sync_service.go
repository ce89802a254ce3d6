package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/integration"
	"github.com/pos/backend/internal/domain/loyalty"
	"github.com/pos/backend/internal/domain/partner"
	"github.com/pos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// errSyncRaceLost signals that a concurrent delivery created the customer
// first; the losing transaction rolls back its duplicate row and re-applies
// the update onto the winner's record.
var errSyncRaceLost = errors.New("lost customer creation race")

// CustomerSyncService applies CRM-originated customer changes to the local
// store. The CRM is authoritative for customer profile and loyalty fields;
// the local system only accrues loyalty points between syncs.
//
// SyncCustomerFromCRM never returns an error to its caller: every failure is
// folded into the SyncResult so the webhook endpoint can always acknowledge
// the delivery with a well-formed body.
type CustomerSyncService struct {
	mappings        *MappingService
	customers       partner.CustomerRepository
	reconciliations loyalty.ReconciliationRepository
	tx              shared.TransactionManager
	log             *zap.Logger
}

// NewCustomerSyncService creates a CustomerSyncService
func NewCustomerSyncService(
	mappings *MappingService,
	customers partner.CustomerRepository,
	reconciliations loyalty.ReconciliationRepository,
	tx shared.TransactionManager,
	log *zap.Logger,
) *CustomerSyncService {
	return &CustomerSyncService{
		mappings:        mappings,
		customers:       customers,
		reconciliations: reconciliations,
		tx:              tx,
		log:             log.Named("customer_sync"),
	}
}

// SyncCustomerFromCRM applies one webhook-delivered customer change. The
// operation names the CRM-side event; the local action is chosen by what
// already exists here, so a re-delivered "created" converges to an update.
func (s *CustomerSyncService) SyncCustomerFromCRM(ctx context.Context, crmCustomer *CRMCustomer, businessID uuid.UUID, operation SyncOperation) SyncResult {
	s.log.Info("customer sync started",
		zap.String("crm_id", crmCustomer.ID),
		zap.String("business_id", businessID.String()),
		zap.String("operation", string(operation)),
	)

	if operation == OperationDeleted {
		return s.handleDeletion(ctx, crmCustomer.ID, businessID)
	}

	posID := s.mappings.GetPosID(ctx, integration.EntityTypeCustomer, crmCustomer.ID)
	if posID != "" {
		customerID, err := uuid.Parse(posID)
		if err != nil {
			return failureResult(operation, fmt.Errorf("mapped pos id %q is not a customer id: %w", posID, err))
		}
		return s.updateExistingCustomer(ctx, customerID, crmCustomer, businessID, operation)
	}

	if duplicate := s.findDuplicate(ctx, crmCustomer, businessID); duplicate != nil {
		return s.adoptDuplicate(ctx, duplicate, crmCustomer, businessID, operation)
	}

	return s.createNewCustomer(ctx, crmCustomer, businessID, operation)
}

// ---------------------------------------------------------------------------
// Deletion
// ---------------------------------------------------------------------------

// handleDeletion soft-deletes the local customer and archives the mapping.
// Transaction rows referencing the customer are untouched. A deletion for a
// customer that was never synced here is acknowledged as a no-op.
func (s *CustomerSyncService) handleDeletion(ctx context.Context, crmID string, businessID uuid.UUID) SyncResult {
	posID := s.mappings.GetPosID(ctx, integration.EntityTypeCustomer, crmID)
	if posID == "" {
		return SyncResult{Success: true, Operation: OperationDeleted, Message: "Customer not found in POS"}
	}

	customerID, err := uuid.Parse(posID)
	if err != nil {
		return failureResult(OperationDeleted, fmt.Errorf("mapped pos id %q is not a customer id: %w", posID, err))
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		customer, err := s.customers.FindByID(ctx, customerID)
		if err != nil {
			return err
		}
		if customer.BusinessID != businessID {
			return fmt.Errorf("customer %s belongs to another business: %w", customerID, shared.ErrTenantMismatch)
		}

		customer.Deactivate("Deleted in CRM")
		if err := s.customers.Update(ctx, customer); err != nil {
			return err
		}

		_, err = s.mappings.UpdateMappingStatus(ctx, integration.EntityTypeCustomer, posID, integration.SyncStatusArchived)
		return err
	})
	if err != nil {
		s.log.Error("customer deletion sync failed", zap.String("crm_id", crmID), zap.Error(err))
		return failureResult(OperationDeleted, err)
	}

	return successResult(customerID, OperationDeleted)
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (s *CustomerSyncService) updateExistingCustomer(ctx context.Context, customerID uuid.UUID, crmCustomer *CRMCustomer, businessID uuid.UUID, operation SyncOperation) SyncResult {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return failureResult(operation, err)
	}
	if customer.BusinessID != businessID {
		return failureResult(operation, fmt.Errorf("customer %s belongs to another business: %w", customerID, shared.ErrTenantMismatch))
	}

	// Capture the locally accrued balance before the CRM overwrite; drift is
	// judged against what this system believed, not what it was just told.
	localPoints := customer.LoyaltyPointsLocal

	applyCRMFields(customer, crmCustomer)
	if err := s.customers.Update(ctx, customer); err != nil {
		return failureResult(operation, err)
	}

	s.checkLoyaltyDrift(ctx, customer, localPoints, crmCustomer.LoyaltyPoints)

	return successResult(customer.ID, OperationUpdated)
}

// ---------------------------------------------------------------------------
// Duplicate adoption
// ---------------------------------------------------------------------------

// findDuplicate looks for an unmapped local customer that is plausibly the
// same person: first by normalized phone digits, then by exact email.
// Anonymous walk-in records never match. Lookup errors degrade to "no
// duplicate" so a flaky read can at worst create a redundant customer row,
// never block the sync.
func (s *CustomerSyncService) findDuplicate(ctx context.Context, crmCustomer *CRMCustomer, businessID uuid.UUID) *partner.Customer {
	if digits := partner.NormalizePhone(crmCustomer.Phone); digits != "" {
		match, err := s.customers.FindByNormalizedPhone(ctx, businessID, digits)
		if err != nil && !errors.Is(err, partner.ErrCustomerNotFound) {
			s.log.Warn("duplicate phone lookup failed", zap.String("crm_id", crmCustomer.ID), zap.Error(err))
		}
		if match != nil {
			return match
		}
	}

	if crmCustomer.Email != "" {
		match, err := s.customers.FindByEmail(ctx, businessID, crmCustomer.Email)
		if err != nil && !errors.Is(err, partner.ErrCustomerNotFound) {
			s.log.Warn("duplicate email lookup failed", zap.String("crm_id", crmCustomer.ID), zap.Error(err))
		}
		if match != nil {
			return match
		}
	}

	return nil
}

// adoptDuplicate links an existing unmapped local customer to the CRM record
// instead of creating a second row for the same person. Mapping creation and
// the field overwrite commit together.
func (s *CustomerSyncService) adoptDuplicate(ctx context.Context, customer *partner.Customer, crmCustomer *CRMCustomer, businessID uuid.UUID, operation SyncOperation) SyncResult {
	s.log.Info("adopting duplicate customer",
		zap.String("customer_id", customer.ID.String()),
		zap.String("crm_id", crmCustomer.ID),
	)

	localPoints := customer.LoyaltyPointsLocal

	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.mappings.CreateCustomerMapping(ctx, customer.ID, crmCustomer.ID, businessID, nil); err != nil {
			return err
		}
		applyCRMFields(customer, crmCustomer)
		return s.customers.Update(ctx, customer)
	})
	if err != nil {
		return failureResult(operation, err)
	}

	s.checkLoyaltyDrift(ctx, customer, localPoints, crmCustomer.LoyaltyPoints)

	return successResult(customer.ID, OperationUpdated)
}

// ---------------------------------------------------------------------------
// Creation
// ---------------------------------------------------------------------------

// createNewCustomer inserts a local customer for a CRM record seen for the
// first time. The customer insert and its mapping commit atomically: a
// mapping without its customer (or vice versa) must never be observable.
//
// Two concurrent first deliveries both reach this path; the mapping store's
// unique key picks a single winner. The loser detects that the mapping it
// got back points at someone else's row, rolls its own row back, and
// re-applies the payload onto the winner's customer.
func (s *CustomerSyncService) createNewCustomer(ctx context.Context, crmCustomer *CRMCustomer, businessID uuid.UUID, operation SyncOperation) SyncResult {
	customer := newCustomerFromCRM(crmCustomer, businessID)

	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.customers.Create(ctx, customer); err != nil {
			return err
		}
		mapping, err := s.mappings.CreateCustomerMapping(ctx, customer.ID, crmCustomer.ID, businessID, nil)
		if err != nil {
			return err
		}
		if mapping.PosID != customer.ID.String() {
			return errSyncRaceLost
		}
		return nil
	})
	if err == nil {
		return successResult(customer.ID, OperationCreated)
	}
	if !errors.Is(err, errSyncRaceLost) {
		s.log.Error("customer creation sync failed", zap.String("crm_id", crmCustomer.ID), zap.Error(err))
		return failureResult(operation, err)
	}

	winnerPosID := s.mappings.GetPosID(ctx, integration.EntityTypeCustomer, crmCustomer.ID)
	winnerID, parseErr := uuid.Parse(winnerPosID)
	if parseErr != nil {
		return failureResult(operation, fmt.Errorf("mapped pos id %q is not a customer id: %w", winnerPosID, parseErr))
	}
	s.log.Info("converging on concurrently created customer",
		zap.String("crm_id", crmCustomer.ID),
		zap.String("customer_id", winnerID.String()),
	)
	return s.updateExistingCustomer(ctx, winnerID, crmCustomer, businessID, operation)
}

// ---------------------------------------------------------------------------
// Field mapping
// ---------------------------------------------------------------------------

// applyCRMFields overwrites the CRM-owned fields on a local customer. Both
// loyalty balances are reset to the CRM value: the CRM figure subsumes any
// locally accrued points as of this sync.
func applyCRMFields(customer *partner.Customer, crm *CRMCustomer) {
	customer.FirstName = crm.FirstName
	customer.LastName = crm.LastName
	customer.Email = crm.Email
	customer.Phone = crm.Phone
	customer.DateOfBirth = crm.BirthDate()
	customer.Address = crm.Address
	customer.City = crm.City
	customer.State = crm.State
	customer.ZipCode = crm.ZipCode

	customer.LoyaltyPoints = crm.LoyaltyPoints
	customer.LoyaltyTier = crm.Tier()
	customer.TotalSpent = crm.TotalSpent
	customer.VisitCount = crm.VisitCount
	customer.LoyaltyPointsCRM = crm.LoyaltyPoints
	customer.LoyaltyPointsLocal = crm.LoyaltyPoints

	customer.MarketingOptIn = crm.MarketingOptIn
	customer.IsActive = crm.Active()
	customer.Notes = crm.Notes

	customer.ExternalID = crm.ID
	customer.CustomerSource = partner.CustomerSourceCRM
	customer.SyncState = partner.SyncStateSynced
	customer.SyncRetryCount = 0
	customer.SyncError = ""
	customer.IsAnonymous = false
	customer.NeedsEnrichment = false

	now := nowUTC()
	customer.LastSyncedAt = &now
	customer.LoyaltyLastSyncedAt = &now
	customer.UpdatedAt = now
}

// newCustomerFromCRM builds a fresh local customer from a CRM payload
func newCustomerFromCRM(crm *CRMCustomer, businessID uuid.UUID) *partner.Customer {
	customer := &partner.Customer{
		ID:         uuid.New(),
		BusinessID: businessID,
		CreatedAt:  nowUTC(),
	}
	applyCRMFields(customer, crm)
	return customer
}

// ---------------------------------------------------------------------------
// Loyalty drift
// ---------------------------------------------------------------------------

// checkLoyaltyDrift records a reconciliation entry when the pre-sync local
// balance diverged from the CRM balance beyond tolerance. Detection is
// best-effort bookkeeping: a write failure is logged and never fails the
// sync that triggered it.
func (s *CustomerSyncService) checkLoyaltyDrift(ctx context.Context, customer *partner.Customer, localPoints, crmPoints int) {
	if !loyalty.ExceedsTolerance(localPoints, crmPoints) {
		return
	}

	record := loyalty.NewReconciliation(customer.ID, customer.BusinessID, localPoints, crmPoints)
	if err := s.reconciliations.Create(ctx, record); err != nil {
		s.log.Error("loyalty reconciliation record failed",
			zap.String("customer_id", customer.ID.String()),
			zap.Error(err),
		)
		return
	}

	s.log.Warn("loyalty point drift detected",
		zap.String("customer_id", customer.ID.String()),
		zap.Int("points_local", localPoints),
		zap.Int("points_crm", crmPoints),
		zap.Int("difference", localPoints-crmPoints),
	)
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// GetSyncStats summarizes customer sync health for a business
func (s *CustomerSyncService) GetSyncStats(ctx context.Context, businessID uuid.UUID) (*SyncStats, error) {
	entityType := integration.EntityTypeCustomer
	mappings := s.mappings.GetBusinessMappings(ctx, businessID, &entityType)

	counts, err := s.customers.CountSyncStates(ctx, businessID)
	if err != nil {
		return nil, err
	}

	return &SyncStats{
		Total:      counts.Total,
		Mappings:   len(mappings),
		SyncStates: counts.ByState,
		LastSync:   counts.LastSync,
	}, nil
}
