package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/partner"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID regardless of business
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := Conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, partner.ErrCustomerNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNormalizedPhone finds a non-anonymous customer in the business whose
// phone, reduced to digits, contains the given digit string. The digit
// reduction happens in SQL so the formatting stored in the phone column does
// not matter.
func (r *GormCustomerRepository) FindByNormalizedPhone(ctx context.Context, businessID uuid.UUID, digits string) (*partner.Customer, error) {
	var model models.CustomerModel
	err := Conn(ctx, r.db).
		Where("business_id = ? AND is_anonymous = ?", businessID, false).
		Where("regexp_replace(phone, '[^0-9]', '', 'g') LIKE ?", "%"+digits+"%").
		Order("created_at ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, partner.ErrCustomerNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a non-anonymous customer in the business by exact email match
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, businessID uuid.UUID, email string) (*partner.Customer, error) {
	var model models.CustomerModel
	err := Conn(ctx, r.db).
		Where("business_id = ? AND is_anonymous = ? AND email = ?", businessID, false, email).
		Order("created_at ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, partner.ErrCustomerNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new customer row
func (r *GormCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	var model models.CustomerModel
	model.FromDomain(customer)
	return Conn(ctx, r.db).Create(&model).Error
}

// Update persists changes to an existing customer scoped by (id, businessID).
// Updating a customer under the wrong business matches zero rows and reports
// not-found instead of silently writing across tenants.
func (r *GormCustomerRepository) Update(ctx context.Context, customer *partner.Customer) error {
	var model models.CustomerModel
	model.FromDomain(customer)

	result := Conn(ctx, r.db).
		Model(&models.CustomerModel{}).
		Where("id = ? AND business_id = ?", customer.ID, customer.BusinessID).
		Select("*").
		Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return partner.ErrCustomerNotFound
	}
	return nil
}

// Exists reports whether a customer with the given ID exists
func (r *GormCustomerRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := Conn(ctx, r.db).
		Model(&models.CustomerModel{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// CountSyncStates tallies CRM-sourced customers by sync state
func (r *GormCustomerRepository) CountSyncStates(ctx context.Context, businessID uuid.UUID) (*partner.SyncStateCounts, error) {
	type stateRow struct {
		SyncState partner.SyncState
		Count     int64
	}

	var rows []stateRow
	err := Conn(ctx, r.db).
		Model(&models.CustomerModel{}).
		Select("sync_state, COUNT(*) AS count").
		Where("business_id = ? AND customer_source = ?", businessID, partner.CustomerSourceCRM).
		Group("sync_state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := &partner.SyncStateCounts{
		ByState: make(map[partner.SyncState]int64, len(rows)),
	}
	for _, row := range rows {
		counts.ByState[row.SyncState] = row.Count
		counts.Total += row.Count
	}

	var lastSync *time.Time
	err = Conn(ctx, r.db).
		Model(&models.CustomerModel{}).
		Select("MAX(last_synced_at)").
		Where("business_id = ? AND customer_source = ?", businessID, partner.CustomerSourceCRM).
		Scan(&lastSync).Error
	if err != nil {
		return nil, err
	}
	counts.LastSync = lastSync

	return counts, nil
}
