package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sahmly/engine/internal/adapter/http/handler"
	apimiddleware "github.com/sahmly/engine/internal/adapter/http/middleware"
	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_MissingIdentityRejected(t *testing.T) {
	router := NewRouter(newRouterConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/balance", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected request without identity to return 401, got %d", rec.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"property_id":"prop-1","number_of_shares":5,"funding_source":"wallet"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/investments/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.UserIDHeader, "user-1")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /api/v1/properties/",
		"GET /api/v1/properties/{id}/quote",
		"POST /api/v1/investments/",
		"GET /api/v1/investments/{id}",
		"GET /api/v1/wallet/balance",
		"POST /api/v1/wallet/deposits",
		"POST /api/v1/wallet/withdrawals",
		"POST /api/v1/admin/transactions/{id}/settle",
		"POST /api/v1/admin/investments/{id}/settle",
		"POST /api/v1/admin/distributions",
		"POST /api/v1/admin/reconcile",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	propertyHandler := handler.NewPropertyHandler(&stubPropertyCatalog{}, &stubQuoteService{})
	investmentHandler := handler.NewInvestmentHandler(&stubInvestmentService{})
	walletHandler := handler.NewWalletHandler(&stubWalletService{}, &stubIntakeService{})
	adminHandler := handler.NewAdminHandler(&stubSettlementService{}, &stubDistributionService{}, &stubReconciliationService{})

	cfg := RouterConfig{
		PropertyHandler:   propertyHandler,
		InvestmentHandler: investmentHandler,
		WalletHandler:     walletHandler,
		AdminHandler:      adminHandler,
		HealthHandler:     &handler.HealthHandler{},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubPropertyCatalog struct{}

func (stubPropertyCatalog) Create(ctx context.Context, property *domain.Property) error {
	return nil
}

func (stubPropertyCatalog) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	return &domain.Property{ID: id}, nil
}

func (stubPropertyCatalog) List(ctx context.Context, limit, offset int) ([]*domain.Property, error) {
	return []*domain.Property{}, nil
}

type stubQuoteService struct{}

func (stubQuoteService) Calculate(ctx context.Context, propertyID string, numberOfShares int64) (*domain.Quote, error) {
	return &domain.Quote{PropertyID: propertyID, NumberOfShares: numberOfShares}, nil
}

type stubInvestmentService struct{}

func (stubInvestmentService) Invest(ctx context.Context, input usecase.InvestInput) (*domain.Investment, error) {
	return &domain.Investment{ID: "inv", UserID: input.UserID}, nil
}

func (stubInvestmentService) Settle(ctx context.Context, input usecase.SettleInput) (*domain.Investment, error) {
	return &domain.Investment{ID: input.InvestmentID}, nil
}

func (stubInvestmentService) GetInvestment(ctx context.Context, id string) (*domain.Investment, error) {
	return &domain.Investment{ID: id}, nil
}

func (stubInvestmentService) ListInvestments(ctx context.Context, input usecase.ListInvestmentsInput) ([]*domain.Investment, error) {
	return []*domain.Investment{}, nil
}

type stubWalletService struct{}

func (stubWalletService) OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.WalletAccount, error) {
	return &domain.WalletAccount{ID: "acc", UserID: input.UserID}, nil
}

func (stubWalletService) GetBalance(ctx context.Context, userID string) (*domain.WalletAccount, error) {
	return &domain.WalletAccount{ID: "acc", UserID: userID}, nil
}

func (stubWalletService) ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.WalletTransaction, error) {
	return []*domain.WalletTransaction{}, nil
}

type stubIntakeService struct{}

func (stubIntakeService) RequestDeposit(ctx context.Context, input usecase.RequestDepositInput) (*domain.WalletTransaction, error) {
	return &domain.WalletTransaction{ID: "txn"}, nil
}

func (stubIntakeService) RequestWithdrawal(ctx context.Context, input usecase.RequestWithdrawalInput) (*domain.WalletTransaction, error) {
	return &domain.WalletTransaction{ID: "txn"}, nil
}

func (stubIntakeService) AddBankAccount(ctx context.Context, input usecase.AddBankAccountInput) (*domain.BankAccount, error) {
	return &domain.BankAccount{ID: "bank"}, nil
}

func (stubIntakeService) ListBankAccounts(ctx context.Context, userID string) ([]*domain.BankAccount, error) {
	return []*domain.BankAccount{}, nil
}

type stubSettlementService struct{}

func (stubSettlementService) SettlePending(ctx context.Context, input usecase.SettlePendingInput) (*domain.WalletTransaction, error) {
	return &domain.WalletTransaction{ID: input.TransactionID}, nil
}

type stubDistributionService struct{}

func (stubDistributionService) RunDistribution(ctx context.Context, input usecase.RunDistributionInput) (*domain.DistributionRun, error) {
	return &domain.DistributionRun{PropertyID: input.PropertyID, PeriodID: input.PeriodID}, nil
}

func (stubDistributionService) GetRun(ctx context.Context, propertyID, periodID string) (*domain.DistributionRun, error) {
	return &domain.DistributionRun{PropertyID: propertyID, PeriodID: periodID}, nil
}

func (stubDistributionService) ListRuns(ctx context.Context, propertyID string, limit, offset int) ([]*domain.DistributionRun, error) {
	return []*domain.DistributionRun{}, nil
}

type stubReconciliationService struct{}

func (stubReconciliationService) ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error) {
	return &usecase.ReconciliationResult{AccountID: accountID, IsReconciled: true}, nil
}

func (stubReconciliationService) ReconcileAll(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return &usecase.ReconciliationReport{CheckedAt: time.Now()}, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
