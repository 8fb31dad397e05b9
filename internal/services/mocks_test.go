package services

import (
	"context"
	"sync"

	"kudipay/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockWalletStore implements WalletStore
type MockWalletStore struct {
	mock.Mock
}

func (m *MockWalletStore) Balance(ctx context.Context, userID int) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletStore) Credit(ctx context.Context, userID int, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletStore) Debit(ctx context.Context, userID int, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletStore) TransferBalance(ctx context.Context, fromID, toID int, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, fromID, toID, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockLedger implements TransactionLedger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Append(ctx context.Context, t models.Transaction) (int, error) {
	args := m.Called(ctx, t)
	return args.Int(0), args.Error(1)
}

func (m *MockLedger) AppendPair(ctx context.Context, a, b models.Transaction) error {
	args := m.Called(ctx, a, b)
	return args.Error(0)
}

func (m *MockLedger) AdvanceStatus(ctx context.Context, gatewayRef string, status models.TransactionStatus) (models.AdvanceResult, error) {
	args := m.Called(ctx, gatewayRef, status)
	return args.Get(0).(models.AdvanceResult), args.Error(1)
}

func (m *MockLedger) ListByUser(ctx context.Context, userID, page, limit int) ([]models.Transaction, error) {
	args := m.Called(ctx, userID, page, limit)
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockLedger) GetByID(ctx context.Context, id, userID int) (models.Transaction, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(models.Transaction), args.Error(1)
}

func (m *MockLedger) GetByGatewayRef(ctx context.Context, gatewayRef string) (models.Transaction, error) {
	args := m.Called(ctx, gatewayRef)
	return args.Get(0).(models.Transaction), args.Error(1)
}

func (m *MockLedger) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	args := m.Called(ctx, reference)
	return args.Bool(0), args.Error(1)
}

// MockUsers implements UserDirectory
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) FindByAccountNumber(ctx context.Context, accountNumber string) (models.User, error) {
	args := m.Called(ctx, accountNumber)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUsers) FindByID(ctx context.Context, id int) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

// MockGateway implements Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateTransferRecipient(ctx context.Context, accountNumber, bankCode, name string) (string, error) {
	args := m.Called(ctx, accountNumber, bankCode, name)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) InitiateTransfer(ctx context.Context, recipientCode string, amount decimal.Decimal, reason string) (string, error) {
	args := m.Called(ctx, recipientCode, amount, reason)
	return args.String(0), args.Error(1)
}

// fakeWalletStore is a concurrency-safe in-memory store used by the racing
// debit tests, where a mock's canned returns cannot express the
// balance-dependent outcome.
type fakeWalletStore struct {
	mu       sync.Mutex
	balances map[int]decimal.Decimal
}

func newFakeWalletStore() *fakeWalletStore {
	return &fakeWalletStore{balances: make(map[int]decimal.Decimal)}
}

func (f *fakeWalletStore) Balance(ctx context.Context, userID int) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[userID], nil
}

func (f *fakeWalletStore) Credit(ctx context.Context, userID int, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, models.ErrInvalidAmount
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[userID] = f.balances[userID].Add(amount)
	return f.balances[userID], nil
}

func (f *fakeWalletStore) Debit(ctx context.Context, userID int, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, models.ErrInvalidAmount
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balances[userID].LessThan(amount) {
		return decimal.Zero, models.ErrInsufficientFunds
	}
	f.balances[userID] = f.balances[userID].Sub(amount)
	return f.balances[userID], nil
}

func (f *fakeWalletStore) TransferBalance(ctx context.Context, fromID, toID int, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, models.ErrInvalidAmount
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balances[fromID].LessThan(amount) {
		return decimal.Zero, models.ErrInsufficientFunds
	}
	f.balances[fromID] = f.balances[fromID].Sub(amount)
	f.balances[toID] = f.balances[toID].Add(amount)
	return f.balances[fromID], nil
}
