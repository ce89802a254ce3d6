// Package loyalty holds the audit trail for loyalty-point balance drift
// detected during CRM synchronization.
package loyalty

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReconciliationStatus is the review state of a drift record
type ReconciliationStatus string

const (
	ReconciliationStatusPending  ReconciliationStatus = "PENDING"
	ReconciliationStatusResolved ReconciliationStatus = "RESOLVED"
)

// DriftTolerance is the fraction of the CRM balance a divergence may reach
// before it is flagged for manual review.
const DriftTolerance = 0.1

// Reconciliation is one detected point-balance divergence between the local
// ledger and the CRM. Records are append-only; resolution is an external
// workflow that only ever flips Status.
type Reconciliation struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	BusinessID  uuid.UUID
	PointsLocal int
	PointsCRM   int
	// Difference is signed: positive when the local ledger is ahead of the CRM
	Difference int
	Status     ReconciliationStatus
	DetectedAt time.Time
}

// NewReconciliation creates a PENDING drift record for the given balances
func NewReconciliation(customerID, businessID uuid.UUID, pointsLocal, pointsCRM int) *Reconciliation {
	return &Reconciliation{
		ID:          uuid.New(),
		CustomerID:  customerID,
		BusinessID:  businessID,
		PointsLocal: pointsLocal,
		PointsCRM:   pointsCRM,
		Difference:  pointsLocal - pointsCRM,
		Status:      ReconciliationStatusPending,
		DetectedAt:  time.Now(),
	}
}

// ExceedsTolerance reports whether the divergence between the two balances
// is large enough to warrant a reconciliation record: non-zero and more than
// DriftTolerance of the CRM balance.
func ExceedsTolerance(pointsLocal, pointsCRM int) bool {
	difference := pointsLocal - pointsCRM
	if difference < 0 {
		difference = -difference
	}
	return difference > 0 && float64(difference) > float64(pointsCRM)*DriftTolerance
}

// ReconciliationRepository defines persistence for drift records
type ReconciliationRepository interface {
	// Create appends a new drift record
	Create(ctx context.Context, record *Reconciliation) error

	// FindPendingByBusiness lists unresolved drift records, newest first
	FindPendingByBusiness(ctx context.Context, businessID uuid.UUID) ([]Reconciliation, error)
}
