package flow

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/internal/infrastructure/clients"
)

type mockGateway struct {
	CreateDepositAddressFunc func(ctx context.Context, req domain.PledgeRequest) (*domain.DepositAddress, error)
	CreateFiatPledgeFunc     func(ctx context.Context, req domain.PledgeRequest) (*domain.FiatPledge, error)
	ChargeFiatPledgeFunc     func(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error)
	CreateStockPledgeFunc    func(ctx context.Context, req domain.StockPledgeRequest) (*domain.StockPledge, error)
	SubmitStockDonationFunc  func(ctx context.Context, req domain.BrokerSubmission) (json.RawMessage, error)
	SignStockDonationFunc    func(ctx context.Context, req domain.SignatureRequest) (*clients.SignResult, error)
	TickerCostFunc           func(ctx context.Context, ticker string) (*clients.RateResult, error)
	CryptoRateFunc           func(ctx context.Context, currency string) (*clients.RateResult, error)
	CurrenciesFunc           func(ctx context.Context) (json.RawMessage, error)
	TickersFunc              func(ctx context.Context, query domain.TickerQuery) (*domain.TickerPage, error)
}

func (m *mockGateway) CreateDepositAddress(ctx context.Context, req domain.PledgeRequest) (*domain.DepositAddress, error) {
	return m.CreateDepositAddressFunc(ctx, req)
}

func (m *mockGateway) CreateFiatPledge(ctx context.Context, req domain.PledgeRequest) (*domain.FiatPledge, error) {
	return m.CreateFiatPledgeFunc(ctx, req)
}

func (m *mockGateway) ChargeFiatPledge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	return m.ChargeFiatPledgeFunc(ctx, req)
}

func (m *mockGateway) CreateStockPledge(ctx context.Context, req domain.StockPledgeRequest) (*domain.StockPledge, error) {
	return m.CreateStockPledgeFunc(ctx, req)
}

func (m *mockGateway) SubmitStockDonation(ctx context.Context, req domain.BrokerSubmission) (json.RawMessage, error) {
	return m.SubmitStockDonationFunc(ctx, req)
}

func (m *mockGateway) SignStockDonation(ctx context.Context, req domain.SignatureRequest) (*clients.SignResult, error) {
	return m.SignStockDonationFunc(ctx, req)
}

func (m *mockGateway) TickerCost(ctx context.Context, ticker string) (*clients.RateResult, error) {
	return m.TickerCostFunc(ctx, ticker)
}

func (m *mockGateway) CryptoRate(ctx context.Context, currency string) (*clients.RateResult, error) {
	return m.CryptoRateFunc(ctx, currency)
}

func (m *mockGateway) Currencies(ctx context.Context) (json.RawMessage, error) {
	return m.CurrenciesFunc(ctx)
}

func (m *mockGateway) Tickers(ctx context.Context, query domain.TickerQuery) (*domain.TickerPage, error) {
	return m.TickersFunc(ctx, query)
}

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]State
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[string]State)}
}

func (m *memoryStore) Load(_ context.Context, session string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[session]
	if !ok {
		return State{}, ErrSessionNotFound
	}
	return s.clone(), nil
}

func (m *memoryStore) Save(_ context.Context, session string, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session] = s.clone()
	return nil
}

func (m *memoryStore) Delete(_ context.Context, session string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, session)
	return nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	published []State
}

func (r *recordingNotifier) Publish(_ string, s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, s)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.published)
}
