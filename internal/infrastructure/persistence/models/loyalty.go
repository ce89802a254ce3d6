package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/loyalty"
)

// LoyaltyReconciliationModel is the persistence model for the Reconciliation
// domain entity.
type LoyaltyReconciliationModel struct {
	ID          uuid.UUID                    `gorm:"type:uuid;primary_key"`
	CustomerID  uuid.UUID                    `gorm:"type:uuid;not null;index:idx_reconciliation_customer"`
	BusinessID  uuid.UUID                    `gorm:"type:uuid;not null;index:idx_reconciliation_business"`
	PointsLocal int                          `gorm:"not null"`
	PointsCRM   int                          `gorm:"not null"`
	Difference  int                          `gorm:"not null"`
	Status      loyalty.ReconciliationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_reconciliation_status"`
	DetectedAt  time.Time                    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LoyaltyReconciliationModel) TableName() string {
	return "loyalty_reconciliations"
}

// ToDomain converts the persistence model to a domain Reconciliation entity.
func (m *LoyaltyReconciliationModel) ToDomain() *loyalty.Reconciliation {
	return &loyalty.Reconciliation{
		ID:          m.ID,
		CustomerID:  m.CustomerID,
		BusinessID:  m.BusinessID,
		PointsLocal: m.PointsLocal,
		PointsCRM:   m.PointsCRM,
		Difference:  m.Difference,
		Status:      m.Status,
		DetectedAt:  m.DetectedAt,
	}
}

// FromDomain populates the persistence model from a domain Reconciliation entity.
func (m *LoyaltyReconciliationModel) FromDomain(record *loyalty.Reconciliation) {
	m.ID = record.ID
	m.CustomerID = record.CustomerID
	m.BusinessID = record.BusinessID
	m.PointsLocal = record.PointsLocal
	m.PointsCRM = record.PointsCRM
	m.Difference = record.Difference
	m.Status = record.Status
	m.DetectedAt = record.DetectedAt
}
