package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/integration"
	"github.com/pos/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// BusinessModel is the persistence model for the Business domain entity.
type BusinessModel struct {
	ID               uuid.UUID              `gorm:"type:uuid;primary_key"`
	BusinessName     string                 `gorm:"type:varchar(200);not null"`
	Email            string                 `gorm:"type:varchar(200);index"`
	Phone            string                 `gorm:"type:varchar(50)"`
	ExternalTenantID string                 `gorm:"type:varchar(100);index"`
	SyncStatus       integration.SyncStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	LastSyncedAt     *time.Time
	IsActive         bool      `gorm:"not null;default:true"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BusinessModel) TableName() string {
	return "businesses"
}

// ToDomain converts the persistence model to a domain Business entity.
func (m *BusinessModel) ToDomain() *partner.Business {
	return &partner.Business{
		ID:               m.ID,
		BusinessName:     m.BusinessName,
		Email:            m.Email,
		Phone:            m.Phone,
		ExternalTenantID: m.ExternalTenantID,
		SyncStatus:       m.SyncStatus,
		LastSyncedAt:     m.LastSyncedAt,
		IsActive:         m.IsActive,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Business entity.
func (m *BusinessModel) FromDomain(business *partner.Business) {
	m.ID = business.ID
	m.BusinessName = business.BusinessName
	m.Email = business.Email
	m.Phone = business.Phone
	m.ExternalTenantID = business.ExternalTenantID
	m.SyncStatus = business.SyncStatus
	m.LastSyncedAt = business.LastSyncedAt
	m.IsActive = business.IsActive
	m.CreatedAt = business.CreatedAt
	m.UpdatedAt = business.UpdatedAt
}

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index:idx_customer_business"`

	FirstName   string `gorm:"type:varchar(100)"`
	LastName    string `gorm:"type:varchar(100)"`
	Email       string `gorm:"type:varchar(200);index:idx_customer_email"`
	Phone       string `gorm:"type:varchar(50);index:idx_customer_phone"`
	DateOfBirth *time.Time
	Address     string `gorm:"type:text"`
	City        string `gorm:"type:varchar(100)"`
	State       string `gorm:"type:varchar(100)"`
	ZipCode     string `gorm:"type:varchar(20)"`

	LoyaltyPoints int                 `gorm:"not null;default:0"`
	LoyaltyTier   partner.LoyaltyTier `gorm:"type:varchar(20);not null;default:'BRONZE'"`
	TotalSpent    decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	VisitCount    int                 `gorm:"not null;default:0"`

	LoyaltyPointsCRM    int `gorm:"not null;default:0"`
	LoyaltyPointsLocal  int `gorm:"not null;default:0"`
	LoyaltyLastSyncedAt *time.Time

	MarketingOptIn bool   `gorm:"not null;default:false"`
	IsActive       bool   `gorm:"not null;default:true"`
	Notes          string `gorm:"type:text"`

	CustomerSource  partner.CustomerSource `gorm:"type:varchar(10);not null;default:'POS'"`
	SyncState       partner.SyncState      `gorm:"type:varchar(10);not null;default:'PENDING'"`
	ExternalID      string                 `gorm:"type:varchar(100);index:idx_customer_external"`
	LastSyncedAt    *time.Time
	LastRefreshedAt *time.Time
	SyncRetryCount  int    `gorm:"not null;default:0"`
	SyncError       string `gorm:"type:text"`

	IsAnonymous     bool `gorm:"not null;default:false"`
	NeedsEnrichment bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		ID:                  m.ID,
		BusinessID:          m.BusinessID,
		FirstName:           m.FirstName,
		LastName:            m.LastName,
		Email:               m.Email,
		Phone:               m.Phone,
		DateOfBirth:         m.DateOfBirth,
		Address:             m.Address,
		City:                m.City,
		State:               m.State,
		ZipCode:             m.ZipCode,
		LoyaltyPoints:       m.LoyaltyPoints,
		LoyaltyTier:         m.LoyaltyTier,
		TotalSpent:          m.TotalSpent,
		VisitCount:          m.VisitCount,
		LoyaltyPointsCRM:    m.LoyaltyPointsCRM,
		LoyaltyPointsLocal:  m.LoyaltyPointsLocal,
		LoyaltyLastSyncedAt: m.LoyaltyLastSyncedAt,
		MarketingOptIn:      m.MarketingOptIn,
		IsActive:            m.IsActive,
		Notes:               m.Notes,
		CustomerSource:      m.CustomerSource,
		SyncState:           m.SyncState,
		ExternalID:          m.ExternalID,
		LastSyncedAt:        m.LastSyncedAt,
		LastRefreshedAt:     m.LastRefreshedAt,
		SyncRetryCount:      m.SyncRetryCount,
		SyncError:           m.SyncError,
		IsAnonymous:         m.IsAnonymous,
		NeedsEnrichment:     m.NeedsEnrichment,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(customer *partner.Customer) {
	m.ID = customer.ID
	m.BusinessID = customer.BusinessID
	m.FirstName = customer.FirstName
	m.LastName = customer.LastName
	m.Email = customer.Email
	m.Phone = customer.Phone
	m.DateOfBirth = customer.DateOfBirth
	m.Address = customer.Address
	m.City = customer.City
	m.State = customer.State
	m.ZipCode = customer.ZipCode
	m.LoyaltyPoints = customer.LoyaltyPoints
	m.LoyaltyTier = customer.LoyaltyTier
	m.TotalSpent = customer.TotalSpent
	m.VisitCount = customer.VisitCount
	m.LoyaltyPointsCRM = customer.LoyaltyPointsCRM
	m.LoyaltyPointsLocal = customer.LoyaltyPointsLocal
	m.LoyaltyLastSyncedAt = customer.LoyaltyLastSyncedAt
	m.MarketingOptIn = customer.MarketingOptIn
	m.IsActive = customer.IsActive
	m.Notes = customer.Notes
	m.CustomerSource = customer.CustomerSource
	m.SyncState = customer.SyncState
	m.ExternalID = customer.ExternalID
	m.LastSyncedAt = customer.LastSyncedAt
	m.LastRefreshedAt = customer.LastRefreshedAt
	m.SyncRetryCount = customer.SyncRetryCount
	m.SyncError = customer.SyncError
	m.IsAnonymous = customer.IsAnonymous
	m.NeedsEnrichment = customer.NeedsEnrichment
	m.CreatedAt = customer.CreatedAt
	m.UpdatedAt = customer.UpdatedAt
}
