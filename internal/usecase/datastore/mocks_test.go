package datastore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockTransactionRepository is a mock implementation of TransactionRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Transaction, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Create(ctx context.Context, ownerID uuid.UUID, tx *domain.Transaction) error {
	args := m.Called(ctx, ownerID, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteAll(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

// MockAssetRepository is a mock implementation of AssetRepository for testing
type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.AssetRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AssetRecord), args.Error(1)
}

func (m *MockAssetRepository) Create(ctx context.Context, record *domain.AssetRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAssetRepository) Update(ctx context.Context, record *domain.AssetRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAssetRepository) UpdatePrice(ctx context.Context, ownerID, id uuid.UUID, price decimal.Decimal, at time.Time) error {
	args := m.Called(ctx, ownerID, id, price, at)
	return args.Error(0)
}

func (m *MockAssetRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockAssetRepository) DeleteAll(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

// MockLiabilityRepository is a mock implementation of LiabilityRepository for testing
type MockLiabilityRepository struct {
	mock.Mock
}

func (m *MockLiabilityRepository) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Liability, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Liability), args.Error(1)
}

func (m *MockLiabilityRepository) Create(ctx context.Context, ownerID uuid.UUID, liability *domain.Liability) error {
	args := m.Called(ctx, ownerID, liability)
	return args.Error(0)
}

func (m *MockLiabilityRepository) Update(ctx context.Context, ownerID uuid.UUID, liability *domain.Liability) error {
	args := m.Called(ctx, ownerID, liability)
	return args.Error(0)
}

func (m *MockLiabilityRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockLiabilityRepository) DeleteAll(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

// MockSnapshotRepository is a mock implementation of SnapshotRepository for testing
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Snapshot, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepository) Add(ctx context.Context, ownerID uuid.UUID, snapshot *domain.Snapshot) error {
	args := m.Called(ctx, ownerID, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) DeleteAll(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

// memoryCache is an in-memory LocalCache
type memoryCache struct {
	mu      sync.Mutex
	data    *domain.FinancialData
	saves   int
	failErr error
}

func (c *memoryCache) Load(_ context.Context) (*domain.FinancialData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failErr != nil {
		return nil, c.failErr
	}
	if c.data == nil {
		return nil, nil
	}
	return c.data.Clone(), nil
}

func (c *memoryCache) Save(_ context.Context, data *domain.FinancialData) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failErr != nil {
		return c.failErr
	}
	c.data = data.Clone()
	c.saves++
	return nil
}

func (c *memoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failErr != nil {
		return c.failErr
	}
	c.data = nil
	return nil
}

type mockBackends struct {
	transactions *MockTransactionRepository
	assets       *MockAssetRepository
	liabilities  *MockLiabilityRepository
	snapshots    *MockSnapshotRepository
}

func newMockBackends() *mockBackends {
	return &mockBackends{
		transactions: new(MockTransactionRepository),
		assets:       new(MockAssetRepository),
		liabilities:  new(MockLiabilityRepository),
		snapshots:    new(MockSnapshotRepository),
	}
}

func (m *mockBackends) Backends() Backends {
	return Backends{
		Transactions: m.transactions,
		Assets:       m.assets,
		Liabilities:  m.liabilities,
		Snapshots:    m.snapshots,
	}
}
