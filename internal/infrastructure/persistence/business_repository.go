package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/partner"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBusinessRepository implements BusinessRepository using GORM
type GormBusinessRepository struct {
	db *gorm.DB
}

var _ partner.BusinessRepository = (*GormBusinessRepository)(nil)

// NewGormBusinessRepository creates a new GormBusinessRepository
func NewGormBusinessRepository(db *gorm.DB) *GormBusinessRepository {
	return &GormBusinessRepository{db: db}
}

// FindByID finds a business by ID
func (r *GormBusinessRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Business, error) {
	var model models.BusinessModel
	if err := Conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, partner.ErrBusinessNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Exists reports whether a business with the given ID exists
func (r *GormBusinessRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := Conn(ctx, r.db).
		Model(&models.BusinessModel{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// Update persists changes to an existing business
func (r *GormBusinessRepository) Update(ctx context.Context, business *partner.Business) error {
	var model models.BusinessModel
	model.FromDomain(business)
	return Conn(ctx, r.db).Save(&model).Error
}
