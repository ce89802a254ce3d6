package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/integration"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMappingRepository implements MappingRepository using GORM
type GormMappingRepository struct {
	db *gorm.DB
}

var _ integration.MappingRepository = (*GormMappingRepository)(nil)

// NewGormMappingRepository creates a new GormMappingRepository
func NewGormMappingRepository(db *gorm.DB) *GormMappingRepository {
	return &GormMappingRepository{db: db}
}

// ---------------------------------------------------------------------------
// MappingReader implementation
// ---------------------------------------------------------------------------

// FindByPosID finds a mapping by its unique (entityType, posID) key
func (r *GormMappingRepository) FindByPosID(ctx context.Context, entityType integration.EntityType, posID string) (*integration.SystemMapping, error) {
	var model models.SystemMappingModel
	if err := Conn(ctx, r.db).
		Where("entity_type = ? AND pos_id = ?", entityType, posID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCrmID finds a mapping by its unique (entityType, crmID) key
func (r *GormMappingRepository) FindByCrmID(ctx context.Context, entityType integration.EntityType, crmID string) (*integration.SystemMapping, error) {
	var model models.SystemMappingModel
	if err := Conn(ctx, r.db).
		Where("entity_type = ? AND crm_id = ?", entityType, crmID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPosIDWithBusiness is FindByPosID with the business summary joined
func (r *GormMappingRepository) FindByPosIDWithBusiness(ctx context.Context, entityType integration.EntityType, posID string) (*integration.SystemMapping, error) {
	mapping, err := r.FindByPosID(ctx, entityType, posID)
	if err != nil {
		return nil, err
	}

	var businessName string
	err = Conn(ctx, r.db).
		Model(&models.BusinessModel{}).
		Select("business_name").
		Where("id = ?", mapping.BusinessID).
		Take(&businessName).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	mapping.BusinessName = businessName

	return mapping, nil
}

// FindByBusiness lists a business's mappings newest-first, optionally
// filtered by entity type
func (r *GormMappingRepository) FindByBusiness(ctx context.Context, businessID uuid.UUID, entityType *integration.EntityType) ([]integration.SystemMapping, error) {
	query := Conn(ctx, r.db).Where("business_id = ?", businessID)
	if entityType != nil {
		query = query.Where("entity_type = ?", *entityType)
	}

	var mappingModels []models.SystemMappingModel
	if err := query.Order("created_at DESC").Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]integration.SystemMapping, len(mappingModels))
	for i := range mappingModels {
		mappings[i] = *mappingModels[i].ToDomain()
	}
	return mappings, nil
}

// ---------------------------------------------------------------------------
// MappingWriter implementation
// ---------------------------------------------------------------------------

// Insert adds a new mapping row. ON CONFLICT DO NOTHING keeps a losing
// concurrent insert from aborting the surrounding transaction; zero rows
// affected means some other writer owns the key, and the outcome carries
// that row instead.
func (r *GormMappingRepository) Insert(ctx context.Context, mapping *integration.SystemMapping) (integration.InsertOutcome, error) {
	var model models.SystemMappingModel
	if err := model.FromDomain(mapping); err != nil {
		return integration.InsertOutcome{}, err
	}

	result := Conn(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		return integration.InsertOutcome{}, result.Error
	}
	if result.RowsAffected > 0 {
		return integration.InsertOutcome{Created: true}, nil
	}

	// The conflicting row may hold either key; posID first, then crmID.
	existing, err := r.FindByPosID(ctx, mapping.EntityType, mapping.PosID)
	if errors.Is(err, integration.ErrMappingNotFound) {
		existing, err = r.FindByCrmID(ctx, mapping.EntityType, mapping.CrmID)
	}
	if err != nil {
		return integration.InsertOutcome{}, err
	}
	return integration.InsertOutcome{Created: false, Existing: existing}, nil
}

// Update persists changes to an existing mapping row
func (r *GormMappingRepository) Update(ctx context.Context, mapping *integration.SystemMapping) error {
	var model models.SystemMappingModel
	if err := model.FromDomain(mapping); err != nil {
		return err
	}
	return Conn(ctx, r.db).Save(&model).Error
}

// Delete hard-deletes a mapping, reporting whether a row was removed
func (r *GormMappingRepository) Delete(ctx context.Context, entityType integration.EntityType, posID string) (bool, error) {
	result := Conn(ctx, r.db).
		Where("entity_type = ? AND pos_id = ?", entityType, posID).
		Delete(&models.SystemMappingModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ---------------------------------------------------------------------------
// MappingCounter implementation
// ---------------------------------------------------------------------------

func (r *GormMappingRepository) CountByBusiness(ctx context.Context, businessID uuid.UUID) (int64, error) {
	var count int64
	err := Conn(ctx, r.db).
		Model(&models.SystemMappingModel{}).
		Where("business_id = ?", businessID).
		Count(&count).Error
	return count, err
}

func (r *GormMappingRepository) CountByBusinessAndType(ctx context.Context, businessID uuid.UUID, entityType integration.EntityType) (int64, error) {
	var count int64
	err := Conn(ctx, r.db).
		Model(&models.SystemMappingModel{}).
		Where("business_id = ? AND entity_type = ?", businessID, entityType).
		Count(&count).Error
	return count, err
}

func (r *GormMappingRepository) CountByBusinessAndStatus(ctx context.Context, businessID uuid.UUID, status integration.SyncStatus) (int64, error) {
	var count int64
	err := Conn(ctx, r.db).
		Model(&models.SystemMappingModel{}).
		Where("business_id = ? AND sync_status = ?", businessID, status).
		Count(&count).Error
	return count, err
}
