package integration

import (
	"context"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/integration"
	"github.com/pos/backend/internal/domain/loyalty"
	"github.com/pos/backend/internal/domain/partner"
	"github.com/pos/backend/internal/domain/trade"
	"github.com/stretchr/testify/mock"
)

// MockMappingRepository is a mock implementation of MappingRepository
type MockMappingRepository struct {
	mock.Mock
}

func (m *MockMappingRepository) FindByPosID(ctx context.Context, entityType integration.EntityType, posID string) (*integration.SystemMapping, error) {
	args := m.Called(ctx, entityType, posID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.SystemMapping), args.Error(1)
}

func (m *MockMappingRepository) FindByCrmID(ctx context.Context, entityType integration.EntityType, crmID string) (*integration.SystemMapping, error) {
	args := m.Called(ctx, entityType, crmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.SystemMapping), args.Error(1)
}

func (m *MockMappingRepository) FindByPosIDWithBusiness(ctx context.Context, entityType integration.EntityType, posID string) (*integration.SystemMapping, error) {
	args := m.Called(ctx, entityType, posID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.SystemMapping), args.Error(1)
}

func (m *MockMappingRepository) FindByBusiness(ctx context.Context, businessID uuid.UUID, entityType *integration.EntityType) ([]integration.SystemMapping, error) {
	args := m.Called(ctx, businessID, entityType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.SystemMapping), args.Error(1)
}

func (m *MockMappingRepository) Insert(ctx context.Context, mapping *integration.SystemMapping) (integration.InsertOutcome, error) {
	args := m.Called(ctx, mapping)
	return args.Get(0).(integration.InsertOutcome), args.Error(1)
}

func (m *MockMappingRepository) Update(ctx context.Context, mapping *integration.SystemMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockMappingRepository) Delete(ctx context.Context, entityType integration.EntityType, posID string) (bool, error) {
	args := m.Called(ctx, entityType, posID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMappingRepository) CountByBusiness(ctx context.Context, businessID uuid.UUID) (int64, error) {
	args := m.Called(ctx, businessID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMappingRepository) CountByBusinessAndType(ctx context.Context, businessID uuid.UUID, entityType integration.EntityType) (int64, error) {
	args := m.Called(ctx, businessID, entityType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMappingRepository) CountByBusinessAndStatus(ctx context.Context, businessID uuid.UUID, status integration.SyncStatus) (int64, error) {
	args := m.Called(ctx, businessID, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockBusinessRepository is a mock implementation of partner.BusinessRepository
type MockBusinessRepository struct {
	mock.Mock
}

func (m *MockBusinessRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Business), args.Error(1)
}

func (m *MockBusinessRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBusinessRepository) Update(ctx context.Context, business *partner.Business) error {
	args := m.Called(ctx, business)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByNormalizedPhone(ctx context.Context, businessID uuid.UUID, digits string) (*partner.Customer, error) {
	args := m.Called(ctx, businessID, digits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, businessID uuid.UUID, email string) (*partner.Customer, error) {
	args := m.Called(ctx, businessID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) CountSyncStates(ctx context.Context, businessID uuid.UUID) (*partner.SyncStateCounts, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.SyncStateCounts), args.Error(1)
}

// MockTransactionRepository is a mock implementation of trade.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, transaction *trade.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

// MockReconciliationRepository is a mock implementation of loyalty.ReconciliationRepository
type MockReconciliationRepository struct {
	mock.Mock
}

func (m *MockReconciliationRepository) Create(ctx context.Context, record *loyalty.Reconciliation) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockReconciliationRepository) FindPendingByBusiness(ctx context.Context, businessID uuid.UUID) ([]loyalty.Reconciliation, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]loyalty.Reconciliation), args.Error(1)
}

// passthroughTxManager runs transactional closures directly, without a store
type passthroughTxManager struct{}

func (passthroughTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
