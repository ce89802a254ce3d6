package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/trade"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

var _ trade.TransactionRepository = (*GormTransactionRepository)(nil)

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Transaction, error) {
	var model models.TransactionModel
	if err := Conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trade.ErrTransactionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Exists reports whether a transaction with the given ID exists
func (r *GormTransactionRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := Conn(ctx, r.db).
		Model(&models.TransactionModel{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// Update persists changes to an existing transaction
func (r *GormTransactionRepository) Update(ctx context.Context, transaction *trade.Transaction) error {
	var model models.TransactionModel
	model.FromDomain(transaction)
	return Conn(ctx, r.db).Save(&model).Error
}
