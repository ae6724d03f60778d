package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"cargoride/internal/domain"
	"cargoride/internal/redis"
	"cargoride/internal/repository"
	"cargoride/internal/service"
)

// ──────────────────────────────────────────────
// MOCK ACCOUNT REPOSITORY
// ──────────────────────────────────────────────

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	// Counters for verification
	CreateCallCount         int32
	UpdateBalancesCallCount int32

	// Error injection
	CreateError         error
	GetError            error
	UpdateBalancesError error
}

// NewMockAccountRepository creates a new mock account repository.
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// AddAccount adds an account to the mock repository.
func (m *MockAccountRepository) AddAccount(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *account
	return &copy, nil
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Account, error) {
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateBalances(ctx context.Context, id string, available, reserved int64) error {
	atomic.AddInt32(&m.UpdateBalancesCallCount, 1)
	if m.UpdateBalancesError != nil {
		return m.UpdateBalancesError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.AvailableBalance = available
	account.ReservedBalance = reserved
	return nil
}

func (m *MockAccountRepository) Deactivate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.Active = false
	return nil
}

func (m *MockAccountRepository) GetAll(ctx context.Context) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		copy := *a
		result = append(result, &copy)
	}
	return result, nil
}

// GetAccount returns the account by ID (for test assertions).
func (m *MockAccountRepository) GetAccount(id string) *domain.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accounts[id]
}

// ──────────────────────────────────────────────
// MOCK MEMBER REPOSITORY
// ──────────────────────────────────────────────

// MockMemberRepository is a mock implementation of MemberRepository.
type MockMemberRepository struct {
	mu      sync.RWMutex
	members map[string]*domain.Member

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockMemberRepository creates a new mock member repository.
func NewMockMemberRepository() *MockMemberRepository {
	return &MockMemberRepository{
		members: make(map[string]*domain.Member),
	}
}

// AddMember adds a member to the mock repository.
func (m *MockMemberRepository) AddMember(member *domain.Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[member.ID] = member
}

func (m *MockMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[member.ID] = member
	return nil
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	member, ok := m.members[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *member
	return &copy, nil
}

func (m *MockMemberRepository) GetByAccountID(ctx context.Context, accountID string) ([]*domain.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Member, 0)
	for _, mem := range m.members {
		if mem.AccountID == accountID {
			copy := *mem
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockMemberRepository) UpdateDailyLimit(ctx context.Context, id string, limit *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[id]
	if !ok {
		return repository.ErrNotFound
	}
	member.DailySpendLimit = limit
	return nil
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
	SumError    error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0, len(m.trips))
	for _, t := range m.trips {
		copy := *t
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) SumMemberSpendSince(ctx context.Context, memberID string, since time.Time) (int64, error) {
	if m.SumError != nil {
		return 0, m.SumError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, t := range m.trips {
		if t.MemberID != memberID || t.Status == domain.TripStatusCancelled || t.CreatedAt.Before(since) {
			continue
		}
		total += t.SettlementAmount()
	}
	return total, nil
}

// GetTrip returns trip for assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// CountTrips returns the number of trips.
func (m *MockTripRepository) CountTrips() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK WALLET REPOSITORY
// ──────────────────────────────────────────────

// MockWalletRepository is a mock implementation of WalletRepository.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]int64

	// Counters
	CreditCallCount int32

	// Error injection
	CreditError error
}

// NewMockWalletRepository creates a new mock wallet repository.
func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[string]int64),
	}
}

func (m *MockWalletRepository) Credit(ctx context.Context, driverID string, amount int64) error {
	atomic.AddInt32(&m.CreditCallCount, 1)
	if m.CreditError != nil {
		return m.CreditError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[driverID] += amount
	return nil
}

func (m *MockWalletRepository) GetByDriverID(ctx context.Context, driverID string) (*domain.DriverWallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &domain.DriverWallet{
		DriverID: driverID,
		Balance:  m.wallets[driverID],
	}, nil
}

// Balance returns the wallet balance for assertions.
func (m *MockWalletRepository) Balance(driverID string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wallets[driverID]
}

// ──────────────────────────────────────────────
// MOCK PRICING RULE REPOSITORY
// ──────────────────────────────────────────────

// MockPricingRuleRepository is a mock implementation of PricingRuleRepository.
type MockPricingRuleRepository struct {
	mu    sync.RWMutex
	rules map[domain.VehicleClass]*domain.PricingRule

	// Error injection
	UpsertError error
	GetError    error
}

// NewMockPricingRuleRepository creates a new mock pricing rule repository.
func NewMockPricingRuleRepository() *MockPricingRuleRepository {
	return &MockPricingRuleRepository{
		rules: make(map[domain.VehicleClass]*domain.PricingRule),
	}
}

// AddRule adds a rule to the mock repository.
func (m *MockPricingRuleRepository) AddRule(rule *domain.PricingRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[rule.VehicleClass] = rule
}

func (m *MockPricingRuleRepository) Upsert(ctx context.Context, rule *domain.PricingRule) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[rule.VehicleClass] = rule
	return nil
}

func (m *MockPricingRuleRepository) GetByVehicleClass(ctx context.Context, class domain.VehicleClass) (*domain.PricingRule, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rule, ok := m.rules[class]
	if !ok || !rule.Active {
		return nil, repository.ErrNotFound
	}
	copy := *rule
	return &copy, nil
}

func (m *MockPricingRuleRepository) GetAll(ctx context.Context) ([]*domain.PricingRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.PricingRule, 0, len(m.rules))
	for _, r := range m.rules {
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK COMMODITY PRICE REPOSITORY
// ──────────────────────────────────────────────

// MockCommodityPriceRepository is a mock implementation of CommodityPriceRepository.
type MockCommodityPriceRepository struct {
	mu     sync.RWMutex
	prices map[string]*domain.CommodityPrice

	// Error injection
	GetError error
}

// NewMockCommodityPriceRepository creates a new mock commodity price repository.
func NewMockCommodityPriceRepository() *MockCommodityPriceRepository {
	return &MockCommodityPriceRepository{
		prices: make(map[string]*domain.CommodityPrice),
	}
}

// SetPrice sets a commodity price in the mock repository.
func (m *MockCommodityPriceRepository) SetPrice(key string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[key] = &domain.CommodityPrice{Key: key, Value: value}
}

func (m *MockCommodityPriceRepository) Upsert(ctx context.Context, price *domain.CommodityPrice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[price.Key] = price
	return nil
}

func (m *MockCommodityPriceRepository) GetByKey(ctx context.Context, key string) (*domain.CommodityPrice, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	price, ok := m.prices[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *price
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK LEDGER SERVICE
// ──────────────────────────────────────────────

// MockLedgerService is an in-memory ledger applying the same balance
// transitions as the real one, one account lock instead of a database row
// lock. Wallet credits are recorded per driver for assertions.
type MockLedgerService struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	payouts  map[string]int64

	// Counters
	ReserveCallCount int32
	SettleCallCount  int32
	RefundCallCount  int32

	// Error injection
	ReserveError error
	SettleError  error
	RefundError  error
}

// NewMockLedgerService creates a new mock ledger service.
func NewMockLedgerService() *MockLedgerService {
	return &MockLedgerService{
		accounts: make(map[string]*domain.Account),
		payouts:  make(map[string]int64),
	}
}

// SetAccount seeds an account into the mock ledger.
func (m *MockLedgerService) SetAccount(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockLedgerService) Reserve(ctx context.Context, accountID string, amount int64) (*domain.Account, error) {
	atomic.AddInt32(&m.ReserveCallCount, 1)
	if m.ReserveError != nil {
		return nil, m.ReserveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[accountID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !account.Active {
		return nil, service.ErrAccountInactive
	}
	if err := account.Reserve(amount); err != nil {
		return nil, err
	}
	copy := *account
	return &copy, nil
}

func (m *MockLedgerService) Settle(ctx context.Context, accountID string, reservedAmount, finalAmount int64, driverID string) (*domain.Account, error) {
	atomic.AddInt32(&m.SettleCallCount, 1)
	if m.SettleError != nil {
		return nil, m.SettleError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[accountID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := account.Settle(reservedAmount, finalAmount); err != nil {
		return nil, err
	}
	if driverID != "" {
		m.payouts[driverID] += account.DriverCredit(finalAmount)
	}
	copy := *account
	return &copy, nil
}

func (m *MockLedgerService) Refund(ctx context.Context, accountID string, amount int64) (*domain.Account, error) {
	atomic.AddInt32(&m.RefundCallCount, 1)
	if m.RefundError != nil {
		return nil, m.RefundError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[accountID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := account.Refund(amount); err != nil {
		return nil, err
	}
	copy := *account
	return &copy, nil
}

// Account returns the account by ID (for test assertions).
func (m *MockLedgerService) Account(id string) *domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[id]
}

// Payout returns the accumulated driver payout (for test assertions).
func (m *MockLedgerService) Payout(driverID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payouts[driverID]
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireAccountLock(ctx context.Context, accountID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:account:" + accountID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseAccountLock(ctx context.Context, accountID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:account:"+accountID)
	return nil
}

// IsLocked checks if an account is locked (for test assertions).
func (m *MockLockStore) IsLocked(accountID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:account:"+accountID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK FARE SERVICE
// ──────────────────────────────────────────────

// MockFareService returns a fixed fare for every quote.
type MockFareService struct {
	Fare       int64
	QuoteError error

	// Counters
	QuoteCallCount int32
}

// NewMockFareService creates a new mock fare service quoting the given fare.
func NewMockFareService(fare int64) *MockFareService {
	return &MockFareService{Fare: fare}
}

func (m *MockFareService) Quote(ctx context.Context, req service.QuoteRequest) (*domain.FareQuote, error) {
	atomic.AddInt32(&m.QuoteCallCount, 1)
	if m.QuoteError != nil {
		return nil, m.QuoteError
	}
	return &domain.FareQuote{
		DistanceKm:   req.DistanceKm,
		VehicleClass: req.VehicleClass,
		Fare:         m.Fare,
		Currency:     domain.Currency,
		Breakdown:    domain.FareBreakdown{BusinessMargin: req.BusinessTrip},
	}, nil
}

// Ensure mocks satisfy the interfaces they stand in for.
var (
	_ repository.AccountRepository        = (*MockAccountRepository)(nil)
	_ repository.MemberRepository        = (*MockMemberRepository)(nil)
	_ repository.TripRepository          = (*MockTripRepository)(nil)
	_ repository.DriverRepository        = (*MockDriverRepository)(nil)
	_ repository.WalletRepository        = (*MockWalletRepository)(nil)
	_ repository.PricingRuleRepository   = (*MockPricingRuleRepository)(nil)
	_ repository.CommodityPriceRepository = (*MockCommodityPriceRepository)(nil)
	_ service.LedgerServiceInterface     = (*MockLedgerService)(nil)
	_ service.FareServiceInterface       = (*MockFareService)(nil)
	_ redis.LockStoreInterface           = (*MockLockStore)(nil)
)

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)
