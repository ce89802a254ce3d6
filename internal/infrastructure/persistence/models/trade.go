package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/integration"
	"github.com/pos/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for the Transaction domain entity.
type TransactionModel struct {
	ID                uuid.UUID              `gorm:"type:uuid;primary_key"`
	BusinessID        uuid.UUID              `gorm:"type:uuid;not null;index:idx_transaction_business"`
	CustomerID        *uuid.UUID             `gorm:"type:uuid;index:idx_transaction_customer"`
	TransactionNumber string                 `gorm:"type:varchar(50);not null;index:idx_transaction_number"`
	Total             decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	ExternalID        string                 `gorm:"type:varchar(100);index:idx_transaction_external"`
	SyncStatus        integration.SyncStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	SyncedAt          *time.Time
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction entity.
func (m *TransactionModel) ToDomain() *trade.Transaction {
	return &trade.Transaction{
		ID:                m.ID,
		BusinessID:        m.BusinessID,
		CustomerID:        m.CustomerID,
		TransactionNumber: m.TransactionNumber,
		Total:             m.Total,
		ExternalID:        m.ExternalID,
		SyncStatus:        m.SyncStatus,
		SyncedAt:          m.SyncedAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Transaction entity.
func (m *TransactionModel) FromDomain(transaction *trade.Transaction) {
	m.ID = transaction.ID
	m.BusinessID = transaction.BusinessID
	m.CustomerID = transaction.CustomerID
	m.TransactionNumber = transaction.TransactionNumber
	m.Total = transaction.Total
	m.ExternalID = transaction.ExternalID
	m.SyncStatus = transaction.SyncStatus
	m.SyncedAt = transaction.SyncedAt
	m.CreatedAt = transaction.CreatedAt
	m.UpdatedAt = transaction.UpdatedAt
}
