package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/loyalty"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReconciliationRepository implements ReconciliationRepository using GORM
type GormReconciliationRepository struct {
	db *gorm.DB
}

var _ loyalty.ReconciliationRepository = (*GormReconciliationRepository)(nil)

// NewGormReconciliationRepository creates a new GormReconciliationRepository
func NewGormReconciliationRepository(db *gorm.DB) *GormReconciliationRepository {
	return &GormReconciliationRepository{db: db}
}

// Create appends a new drift record
func (r *GormReconciliationRepository) Create(ctx context.Context, record *loyalty.Reconciliation) error {
	var model models.LoyaltyReconciliationModel
	model.FromDomain(record)
	return Conn(ctx, r.db).Create(&model).Error
}

// FindPendingByBusiness lists unresolved drift records, newest first
func (r *GormReconciliationRepository) FindPendingByBusiness(ctx context.Context, businessID uuid.UUID) ([]loyalty.Reconciliation, error) {
	var recordModels []models.LoyaltyReconciliationModel
	err := Conn(ctx, r.db).
		Where("business_id = ? AND status = ?", businessID, loyalty.ReconciliationStatusPending).
		Order("detected_at DESC").
		Find(&recordModels).Error
	if err != nil {
		return nil, err
	}

	records := make([]loyalty.Reconciliation, len(recordModels))
	for i := range recordModels {
		records[i] = *recordModels[i].ToDomain()
	}
	return records, nil
}
