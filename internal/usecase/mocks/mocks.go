package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/usecase"
)

// MockTransaction is a mock implementation of usecase.Transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.RolledBack = true
	return nil
}

// MockTransactionManager is a mock implementation of
// usecase.TransactionManager.
type MockTransactionManager struct {
	mu    sync.Mutex
	Begun []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Begun = append(m.Begun, tx)
	return tx, nil
}

// MockRetrier runs the operation once with no retries.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockIDGenerator generates sequential IDs.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return fmt.Sprintf("id-%d", m.next)
}

// MockPropertyRepository is a mock implementation of
// usecase.PropertyRepository. The default behavior mirrors the real
// reservation semantics against an in-memory map.
type MockPropertyRepository struct {
	mu         sync.RWMutex
	properties map[string]*domain.Property

	CreateFunc           func(ctx context.Context, property *domain.Property) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Property, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Property, error)
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Property, error)
	ReserveFunc          func(ctx context.Context, tx usecase.Transaction, propertyID string, quantity int64) (*domain.Reservation, error)
	ReleaseFunc          func(ctx context.Context, tx usecase.Transaction, reservation *domain.Reservation) error
}

func NewMockPropertyRepository() *MockPropertyRepository {
	return &MockPropertyRepository{
		properties: make(map[string]*domain.Property),
	}
}

// Seed stores a property directly.
func (m *MockPropertyRepository) Seed(property *domain.Property) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.properties[property.ID] = property
}

func (m *MockPropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, property)
	}
	m.Seed(property)
	return nil
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.properties[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, domain.ErrPropertyNotFound
}

func (m *MockPropertyRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Property, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockPropertyRepository) List(ctx context.Context, limit, offset int) ([]*domain.Property, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var properties []*domain.Property
	for _, p := range m.properties {
		copied := *p
		properties = append(properties, &copied)
	}
	return properties, nil
}

func (m *MockPropertyRepository) Reserve(ctx context.Context, tx usecase.Transaction, propertyID string, quantity int64) (*domain.Reservation, error) {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, tx, propertyID, quantity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[propertyID]
	if !ok {
		return nil, domain.ErrPropertyNotFound
	}
	if p.Status != domain.PropertyStatusAvailable {
		return nil, domain.ErrPropertyNotOpen
	}
	if p.AvailableShares < quantity {
		return nil, domain.ErrInsufficientShares
	}
	p.AvailableShares -= quantity
	if p.AvailableShares == 0 {
		p.Status = domain.PropertyStatusFunded
	}
	return &domain.Reservation{
		PropertyID: propertyID,
		Quantity:   quantity,
		Funded:     p.AvailableShares == 0,
	}, nil
}

func (m *MockPropertyRepository) Release(ctx context.Context, tx usecase.Transaction, reservation *domain.Reservation) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, tx, reservation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[reservation.PropertyID]
	if !ok {
		return domain.ErrPropertyNotFound
	}
	p.AvailableShares += reservation.Quantity
	if p.Status == domain.PropertyStatusFunded {
		p.Status = domain.PropertyStatusAvailable
	}
	return nil
}

// MockInvestmentRepository is a mock implementation of
// usecase.InvestmentRepository.
type MockInvestmentRepository struct {
	mu          sync.RWMutex
	investments map[string]*domain.Investment

	CreateFunc             func(ctx context.Context, tx usecase.Transaction, investment *domain.Investment) error
	GetByIDFunc            func(ctx context.Context, id string) (*domain.Investment, error)
	GetByIDForUpdateFunc   func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Investment, error)
	UpdateStatusFunc       func(ctx context.Context, tx usecase.Transaction, id string, status domain.InvestmentStatus, updatedAt time.Time) error
	ListByUserFunc         func(ctx context.Context, userID string, limit, offset int) ([]*domain.Investment, error)
	ListActiveByPropFunc   func(ctx context.Context, propertyID string) ([]*domain.Investment, error)
	ListExpiredPendingFunc func(ctx context.Context, now time.Time, limit int) ([]*domain.Investment, error)
}

func NewMockInvestmentRepository() *MockInvestmentRepository {
	return &MockInvestmentRepository{
		investments: make(map[string]*domain.Investment),
	}
}

// Seed stores an investment directly.
func (m *MockInvestmentRepository) Seed(investment *domain.Investment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.investments[investment.ID] = investment
}

func (m *MockInvestmentRepository) Create(ctx context.Context, tx usecase.Transaction, investment *domain.Investment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, investment)
	}
	m.Seed(investment)
	return nil
}

func (m *MockInvestmentRepository) GetByID(ctx context.Context, id string) (*domain.Investment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i, ok := m.investments[id]; ok {
		copied := *i
		return &copied, nil
	}
	return nil, domain.ErrInvestmentNotFound
}

func (m *MockInvestmentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Investment, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockInvestmentRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.InvestmentStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.investments[id]
	if !ok {
		return domain.ErrInvestmentNotFound
	}
	i.Status = status
	i.UpdatedAt = updatedAt
	return nil
}

func (m *MockInvestmentRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Investment, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var investments []*domain.Investment
	for _, i := range m.investments {
		if i.UserID == userID {
			copied := *i
			investments = append(investments, &copied)
		}
	}
	return investments, nil
}

func (m *MockInvestmentRepository) ListActiveByProperty(ctx context.Context, propertyID string) ([]*domain.Investment, error) {
	if m.ListActiveByPropFunc != nil {
		return m.ListActiveByPropFunc(ctx, propertyID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var investments []*domain.Investment
	for _, i := range m.investments {
		if i.PropertyID == propertyID && i.Status == domain.InvestmentStatusActive {
			copied := *i
			investments = append(investments, &copied)
		}
	}
	return investments, nil
}

func (m *MockInvestmentRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*domain.Investment, error) {
	if m.ListExpiredPendingFunc != nil {
		return m.ListExpiredPendingFunc(ctx, now, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var investments []*domain.Investment
	for _, i := range m.investments {
		if i.Expired(now) {
			copied := *i
			investments = append(investments, &copied)
		}
		if len(investments) == limit {
			break
		}
	}
	return investments, nil
}

// MockWalletRepository is a mock implementation of
// usecase.WalletRepository backed by in-memory maps.
type MockWalletRepository struct {
	mu           sync.RWMutex
	accounts     map[string]*domain.WalletAccount
	transactions map[string]*domain.WalletTransaction

	CreateAccountFunc           func(ctx context.Context, account *domain.WalletAccount) error
	GetAccountByIDFunc          func(ctx context.Context, id string) (*domain.WalletAccount, error)
	GetAccountByUserIDFunc      func(ctx context.Context, userID string) (*domain.WalletAccount, error)
	GetAccountByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.WalletAccount, error)
	UpdateBalanceFunc           func(ctx context.Context, tx usecase.Transaction, accountID string, balance int64, updatedAt time.Time) error
	SetFrozenFunc               func(ctx context.Context, accountID string, frozen bool) error
	ListAccountsFunc            func(ctx context.Context, limit, offset int) ([]*domain.WalletAccount, error)
	CreateTransactionFunc       func(ctx context.Context, tx usecase.Transaction, txn *domain.WalletTransaction) error
	UpdateTransactionStatusFunc func(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, balanceAfter *int64, settledAt time.Time) error
	SumCompletedFunc            func(ctx context.Context, accountID string) (int64, error)
}

func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		accounts:     make(map[string]*domain.WalletAccount),
		transactions: make(map[string]*domain.WalletTransaction),
	}
}

// SeedAccount stores an account directly.
func (m *MockWalletRepository) SeedAccount(account *domain.WalletAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

// SeedTransaction stores a transaction directly.
func (m *MockWalletRepository) SeedTransaction(txn *domain.WalletTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.ID] = txn
}

// Transactions returns a snapshot of all stored transactions.
func (m *MockWalletRepository) Transactions() []*domain.WalletTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txns []*domain.WalletTransaction
	for _, t := range m.transactions {
		copied := *t
		txns = append(txns, &copied)
	}
	return txns
}

func (m *MockWalletRepository) CreateAccount(ctx context.Context, account *domain.WalletAccount) error {
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, account)
	}
	m.SeedAccount(account)
	return nil
}

func (m *MockWalletRepository) GetAccountByID(ctx context.Context, id string) (*domain.WalletAccount, error) {
	if m.GetAccountByIDFunc != nil {
		return m.GetAccountByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockWalletRepository) GetAccountByUserID(ctx context.Context, userID string) (*domain.WalletAccount, error) {
	if m.GetAccountByUserIDFunc != nil {
		return m.GetAccountByUserIDFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.UserID == userID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockWalletRepository) GetAccountByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.WalletAccount, error) {
	if m.GetAccountByIDForUpdateFunc != nil {
		return m.GetAccountByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetAccountByID(ctx, id)
}

func (m *MockWalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, accountID string, balance int64, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, accountID, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Balance = balance
	a.Version++
	a.UpdatedAt = updatedAt
	return nil
}

func (m *MockWalletRepository) SetFrozen(ctx context.Context, accountID string, frozen bool) error {
	if m.SetFrozenFunc != nil {
		return m.SetFrozenFunc(ctx, accountID, frozen)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Frozen = frozen
	return nil
}

func (m *MockWalletRepository) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.WalletAccount, error) {
	if m.ListAccountsFunc != nil {
		return m.ListAccountsFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.WalletAccount
	for _, a := range m.accounts {
		copied := *a
		accounts = append(accounts, &copied)
	}
	if offset >= len(accounts) {
		return nil, nil
	}
	end := offset + limit
	if end > len(accounts) {
		end = len(accounts)
	}
	return accounts[offset:end], nil
}

func (m *MockWalletRepository) CreateTransaction(ctx context.Context, tx usecase.Transaction, txn *domain.WalletTransaction) error {
	if m.CreateTransactionFunc != nil {
		return m.CreateTransactionFunc(ctx, tx, txn)
	}
	m.SeedTransaction(txn)
	return nil
}

func (m *MockWalletRepository) GetTransactionByID(ctx context.Context, id string) (*domain.WalletTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockWalletRepository) GetTransactionByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.WalletTransaction, error) {
	return m.GetTransactionByID(ctx, id)
}

func (m *MockWalletRepository) GetCompletedByReference(ctx context.Context, tx usecase.Transaction, txnType domain.TransactionType, referenceID string) (*domain.WalletTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.transactions {
		if t.Type == txnType && t.ReferenceID == referenceID && t.Status == domain.TransactionStatusCompleted {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockWalletRepository) UpdateTransactionStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, balanceAfter *int64, settledAt time.Time) error {
	if m.UpdateTransactionStatusFunc != nil {
		return m.UpdateTransactionStatusFunc(ctx, tx, id, status, balanceAfter, settledAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if t.Status != domain.TransactionStatusPending {
		return domain.ErrAlreadySettled
	}
	t.Status = status
	t.BalanceAfter = balanceAfter
	t.SettledAt = &settledAt
	return nil
}

func (m *MockWalletRepository) ListTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.WalletTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txns []*domain.WalletTransaction
	for _, t := range m.transactions {
		if t.AccountID == accountID {
			copied := *t
			txns = append(txns, &copied)
		}
	}
	return txns, nil
}

func (m *MockWalletRepository) SumCompleted(ctx context.Context, accountID string) (int64, error) {
	if m.SumCompletedFunc != nil {
		return m.SumCompletedFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, t := range m.transactions {
		if t.AccountID == accountID && t.Status == domain.TransactionStatusCompleted {
			sum += t.Type.BalanceDirection() * t.Amount
		}
	}
	return sum, nil
}

// MockBankAccountRepository is a mock implementation of
// usecase.BankAccountRepository.
type MockBankAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.BankAccount

	CreateFunc  func(ctx context.Context, account *domain.BankAccount) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.BankAccount, error)
}

func NewMockBankAccountRepository() *MockBankAccountRepository {
	return &MockBankAccountRepository{
		accounts: make(map[string]*domain.BankAccount),
	}
}

// Seed stores a bank account directly.
func (m *MockBankAccountRepository) Seed(account *domain.BankAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockBankAccountRepository) Create(ctx context.Context, account *domain.BankAccount) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.Seed(account)
	return nil
}

func (m *MockBankAccountRepository) GetByID(ctx context.Context, id string) (*domain.BankAccount, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, domain.ErrBankAccountNotFound
}

func (m *MockBankAccountRepository) ListByUser(ctx context.Context, userID string) ([]*domain.BankAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.BankAccount
	for _, a := range m.accounts {
		if a.UserID == userID {
			copied := *a
			accounts = append(accounts, &copied)
		}
	}
	return accounts, nil
}

// MockDistributionRepository is a mock implementation of
// usecase.DistributionRepository.
type MockDistributionRepository struct {
	mu   sync.RWMutex
	runs map[string]*domain.DistributionRun

	CreateFunc                 func(ctx context.Context, tx usecase.Transaction, run *domain.DistributionRun) error
	GetByPropertyAndPeriodFunc func(ctx context.Context, propertyID, periodID string) (*domain.DistributionRun, error)
}

func NewMockDistributionRepository() *MockDistributionRepository {
	return &MockDistributionRepository{
		runs: make(map[string]*domain.DistributionRun),
	}
}

func runKey(propertyID, periodID string) string {
	return propertyID + ":" + periodID
}

func (m *MockDistributionRepository) Create(ctx context.Context, tx usecase.Transaction, run *domain.DistributionRun) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, run)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[runKey(run.PropertyID, run.PeriodID)] = run
	return nil
}

func (m *MockDistributionRepository) GetByPropertyAndPeriod(ctx context.Context, propertyID, periodID string) (*domain.DistributionRun, error) {
	if m.GetByPropertyAndPeriodFunc != nil {
		return m.GetByPropertyAndPeriodFunc(ctx, propertyID, periodID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.runs[runKey(propertyID, periodID)]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, domain.ErrDistributionNotFound
}

func (m *MockDistributionRepository) ListByProperty(ctx context.Context, propertyID string, limit, offset int) ([]*domain.DistributionRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var runs []*domain.DistributionRun
	for _, r := range m.runs {
		if r.PropertyID == propertyID {
			copied := *r
			runs = append(runs, &copied)
		}
	}
	return runs, nil
}

// MockOutboxRepository collects events in memory.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Events returns a snapshot of the collected events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			events = append(events, e)
		}
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published || !e.CreatedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// MockAuditRepository collects audit logs in memory.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

// Logs returns a snapshot of the collected logs.
func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditLog(nil), m.logs...)
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var logs []*domain.AuditLog
	for _, l := range m.logs {
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		if filter.ResourceID != "" && l.ResourceID != filter.ResourceID {
			continue
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// MockEligibilityService returns a fixed verdict.
type MockEligibilityService struct {
	CanInvest     bool
	EmailVerified bool

	GetEligibilityFunc func(ctx context.Context, userID string) (*domain.Eligibility, error)
}

func NewMockEligibilityService() *MockEligibilityService {
	return &MockEligibilityService{CanInvest: true, EmailVerified: true}
}

func (m *MockEligibilityService) GetEligibility(ctx context.Context, userID string) (*domain.Eligibility, error) {
	if m.GetEligibilityFunc != nil {
		return m.GetEligibilityFunc(ctx, userID)
	}
	return &domain.Eligibility{
		UserID:        userID,
		CanInvest:     m.CanInvest,
		EmailVerified: m.EmailVerified,
	}, nil
}

// MockCache is an in-memory cache without TTL handling.
type MockCache struct {
	mu     sync.RWMutex
	values map[string]string

	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, key, value string, ttl time.Duration) error
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("cache miss: %s", key)
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
