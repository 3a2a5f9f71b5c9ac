package pledgeservice

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/internal/infrastructure/cache"
	"github.com/fundbridge/donate/internal/infrastructure/clients"
	"github.com/fundbridge/donate/internal/repositories/donationrepo"
)

type mockPaymentAPI struct {
	CreateDepositAddressFunc func(ctx context.Context, payload clients.DepositAddressPayload) (*domain.DepositAddress, error)
	CreateFiatPledgeFunc     func(ctx context.Context, payload clients.FiatPledgePayload) (*domain.FiatPledge, error)
	ChargeFiatPledgeFunc     func(ctx context.Context, pledgeID, cardToken string) (*domain.ChargeResult, error)
	CreateStockPledgeFunc    func(ctx context.Context, payload clients.StockPledgePayload) (*domain.StockPledge, error)
	SubmitStockDonationFunc  func(ctx context.Context, sub domain.BrokerSubmission) ([]byte, error)
	SignStockDonationFunc    func(ctx context.Context, sig domain.SignatureRequest) (*clients.SignResult, error)
	GetBrokersFunc           func(ctx context.Context) ([]byte, error)
	ListTickersFunc          func(ctx context.Context, filters domain.TickerFilters, page domain.Pagination) (*domain.TickerPage, error)
	GetTickerCostFunc        func(ctx context.Context, ticker string) (*clients.RateResult, error)
	GetCryptoRateFunc        func(ctx context.Context, code string) (*clients.RateResult, error)
	ListCurrenciesFunc       func(ctx context.Context) (json.RawMessage, error)
	GetWidgetSnippetFunc     func(ctx context.Context, organizationID string, req domain.WidgetSnippetRequest) (json.RawMessage, error)
}

func (m *mockPaymentAPI) CreateDepositAddress(ctx context.Context, p clients.DepositAddressPayload) (*domain.DepositAddress, error) {
	return m.CreateDepositAddressFunc(ctx, p)
}

func (m *mockPaymentAPI) CreateFiatPledge(ctx context.Context, p clients.FiatPledgePayload) (*domain.FiatPledge, error) {
	return m.CreateFiatPledgeFunc(ctx, p)
}

func (m *mockPaymentAPI) ChargeFiatPledge(ctx context.Context, pledgeID, cardToken string) (*domain.ChargeResult, error) {
	return m.ChargeFiatPledgeFunc(ctx, pledgeID, cardToken)
}

func (m *mockPaymentAPI) CreateStockPledge(ctx context.Context, p clients.StockPledgePayload) (*domain.StockPledge, error) {
	return m.CreateStockPledgeFunc(ctx, p)
}

func (m *mockPaymentAPI) SubmitStockDonation(ctx context.Context, sub domain.BrokerSubmission) ([]byte, error) {
	return m.SubmitStockDonationFunc(ctx, sub)
}

func (m *mockPaymentAPI) SignStockDonation(ctx context.Context, sig domain.SignatureRequest) (*clients.SignResult, error) {
	return m.SignStockDonationFunc(ctx, sig)
}

func (m *mockPaymentAPI) GetBrokers(ctx context.Context) ([]byte, error) {
	return m.GetBrokersFunc(ctx)
}

func (m *mockPaymentAPI) ListTickers(ctx context.Context, f domain.TickerFilters, p domain.Pagination) (*domain.TickerPage, error) {
	return m.ListTickersFunc(ctx, f, p)
}

func (m *mockPaymentAPI) GetTickerCost(ctx context.Context, ticker string) (*clients.RateResult, error) {
	return m.GetTickerCostFunc(ctx, ticker)
}

func (m *mockPaymentAPI) GetCryptoRate(ctx context.Context, code string) (*clients.RateResult, error) {
	return m.GetCryptoRateFunc(ctx, code)
}

func (m *mockPaymentAPI) ListCurrencies(ctx context.Context) (json.RawMessage, error) {
	return m.ListCurrenciesFunc(ctx)
}

func (m *mockPaymentAPI) GetWidgetSnippet(ctx context.Context, orgID string, req domain.WidgetSnippetRequest) (json.RawMessage, error) {
	return m.GetWidgetSnippetFunc(ctx, orgID, req)
}

// memoryLedger records every write so tests can assert ledger side effects.
type memoryLedger struct {
	mu           sync.Mutex
	rows         map[uuid.UUID]*domain.Donation
	failed       []uuid.UUID
	successByPID map[string]bool
	successByDU  map[string]bool
	commits      int
	rollbacks    int

	CreateErr     error
	SetSuccessErr error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		rows:         make(map[uuid.UUID]*domain.Donation),
		successByPID: make(map[string]bool),
		successByDU:  make(map[string]bool),
	}
}

func (m *memoryLedger) Create(_ context.Context, d *domain.Donation) (*domain.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	cp := *d
	cp.ID = uuid.New()
	m.rows[cp.ID] = &cp
	return &cp, nil
}

func (m *memoryLedger) SetPledgeIdentifiers(_ context.Context, id uuid.UUID, pledgeID, depositAddress string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	row.PledgeID = pledgeID
	row.DepositAddress = depositAddress
	return nil
}

func (m *memoryLedger) SetSuccessByPledgeID(_ context.Context, pledgeID string, success bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetSuccessErr != nil {
		return m.SetSuccessErr
	}
	m.successByPID[pledgeID] = success
	return nil
}

func (m *memoryLedger) SetSuccessByDonationUUID(_ context.Context, donationUUID string, success bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.successByDU[donationUUID] = success
	return nil
}

func (m *memoryLedger) MarkFailed(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, id)
	return nil
}

func (m *memoryLedger) GetByPledgeID(_ context.Context, pledgeID string) (*domain.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.PledgeID == pledgeID {
			return row, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryLedger) ListByProjectAndStatuses(context.Context, string, []string) ([]*domain.Donation, error) {
	return nil, nil
}

func (m *memoryLedger) SumSuccessfulUSD(context.Context) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (m *memoryLedger) CountDistinctProjects(context.Context) (int64, error) {
	return 0, nil
}

// WithinTx stages writes and applies them only when fn succeeds.
func (m *memoryLedger) WithinTx(ctx context.Context, fn func(tx donationrepo.IDonationTx) error) error {
	tx := &memoryTx{staged: make(map[uuid.UUID]*domain.Donation)}
	if err := fn(tx); err != nil {
		m.mu.Lock()
		m.rollbacks++
		m.mu.Unlock()
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, row := range tx.staged {
		m.rows[id] = row
	}
	m.commits++
	return nil
}

func (m *memoryLedger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memoryLedger) only() *domain.Donation {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		return row
	}
	return nil
}

type memoryTx struct {
	staged map[uuid.UUID]*domain.Donation
}

func (t *memoryTx) Create(_ context.Context, d *domain.Donation) (*domain.Donation, error) {
	cp := *d
	cp.ID = uuid.New()
	t.staged[cp.ID] = &cp
	return &cp, nil
}

func (t *memoryTx) SetDonationUUID(_ context.Context, id uuid.UUID, donationUUID string) error {
	row, ok := t.staged[id]
	if !ok {
		return domain.ErrNotFound
	}
	row.DonationUUID = donationUUID
	return nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(data, out)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.entries[key] = data
	c.sets++
	return nil
}
