package handlers

import (
	"context"
	"encoding/json"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/internal/flow"
	"github.com/fundbridge/donate/internal/infrastructure/clients"
)

type mockPledgeService struct {
	CreateDepositAddressFunc func(ctx context.Context, req domain.PledgeRequest) (*domain.DepositAddress, error)
	CreateFiatPledgeFunc     func(ctx context.Context, req domain.PledgeRequest) (*domain.FiatPledge, error)
	ChargeFiatPledgeFunc     func(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error)
	CreateStockPledgeFunc    func(ctx context.Context, req domain.StockPledgeRequest) (*domain.StockPledge, error)
	SubmitStockDonationFunc  func(ctx context.Context, req domain.BrokerSubmission) (json.RawMessage, error)
	SignStockDonationFunc    func(ctx context.Context, req domain.SignatureRequest) (*clients.SignResult, error)
	BrokersFunc              func(ctx context.Context) (json.RawMessage, error)
	TickersFunc              func(ctx context.Context, query domain.TickerQuery) (*domain.TickerPage, error)
	TickerCostFunc           func(ctx context.Context, ticker string) (*clients.RateResult, error)
	CryptoRateFunc           func(ctx context.Context, currency string) (*clients.RateResult, error)
	CurrenciesFunc           func(ctx context.Context) (json.RawMessage, error)
	WidgetSnippetFunc        func(ctx context.Context) (json.RawMessage, error)
}

func (m *mockPledgeService) CreateDepositAddress(ctx context.Context, req domain.PledgeRequest) (*domain.DepositAddress, error) {
	return m.CreateDepositAddressFunc(ctx, req)
}

func (m *mockPledgeService) CreateFiatPledge(ctx context.Context, req domain.PledgeRequest) (*domain.FiatPledge, error) {
	return m.CreateFiatPledgeFunc(ctx, req)
}

func (m *mockPledgeService) ChargeFiatPledge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	return m.ChargeFiatPledgeFunc(ctx, req)
}

func (m *mockPledgeService) CreateStockPledge(ctx context.Context, req domain.StockPledgeRequest) (*domain.StockPledge, error) {
	return m.CreateStockPledgeFunc(ctx, req)
}

func (m *mockPledgeService) SubmitStockDonation(ctx context.Context, req domain.BrokerSubmission) (json.RawMessage, error) {
	return m.SubmitStockDonationFunc(ctx, req)
}

func (m *mockPledgeService) SignStockDonation(ctx context.Context, req domain.SignatureRequest) (*clients.SignResult, error) {
	return m.SignStockDonationFunc(ctx, req)
}

func (m *mockPledgeService) Brokers(ctx context.Context) (json.RawMessage, error) {
	return m.BrokersFunc(ctx)
}

func (m *mockPledgeService) Tickers(ctx context.Context, query domain.TickerQuery) (*domain.TickerPage, error) {
	return m.TickersFunc(ctx, query)
}

func (m *mockPledgeService) TickerCost(ctx context.Context, ticker string) (*clients.RateResult, error) {
	return m.TickerCostFunc(ctx, ticker)
}

func (m *mockPledgeService) CryptoRate(ctx context.Context, currency string) (*clients.RateResult, error) {
	return m.CryptoRateFunc(ctx, currency)
}

func (m *mockPledgeService) Currencies(ctx context.Context) (json.RawMessage, error) {
	return m.CurrenciesFunc(ctx)
}

func (m *mockPledgeService) WidgetSnippet(ctx context.Context) (json.RawMessage, error) {
	return m.WidgetSnippetFunc(ctx)
}

type mockStatsService struct {
	ProjectFundingFunc func(ctx context.Context, slug string) (*domain.ProjectFunding, error)
	StatsFunc          func(ctx context.Context) (*domain.Stats, error)
	MatchingDonorsFunc func(ctx context.Context, slug string) ([]domain.MatchingDonorTotal, error)
}

func (m *mockStatsService) ProjectFunding(ctx context.Context, slug string) (*domain.ProjectFunding, error) {
	return m.ProjectFundingFunc(ctx, slug)
}

func (m *mockStatsService) Stats(ctx context.Context) (*domain.Stats, error) {
	return m.StatsFunc(ctx)
}

func (m *mockStatsService) MatchingDonors(ctx context.Context, slug string) ([]domain.MatchingDonorTotal, error) {
	return m.MatchingDonorsFunc(ctx, slug)
}

type mockFlowDriver struct {
	StartFunc    func(ctx context.Context, claims *domain.DonorClaims) (string, flow.State, error)
	GetFunc      func(ctx context.Context, session string) (flow.State, error)
	DispatchFunc func(ctx context.Context, session string, ev flow.Event) (flow.State, error)
	SubmitFunc   func(ctx context.Context, session string) (flow.State, error)
	CloseFunc    func(ctx context.Context, session string) error
}

func (m *mockFlowDriver) Start(ctx context.Context, claims *domain.DonorClaims) (string, flow.State, error) {
	return m.StartFunc(ctx, claims)
}

func (m *mockFlowDriver) Get(ctx context.Context, session string) (flow.State, error) {
	return m.GetFunc(ctx, session)
}

func (m *mockFlowDriver) Dispatch(ctx context.Context, session string, ev flow.Event) (flow.State, error) {
	return m.DispatchFunc(ctx, session, ev)
}

func (m *mockFlowDriver) Submit(ctx context.Context, session string) (flow.State, error) {
	return m.SubmitFunc(ctx, session)
}

func (m *mockFlowDriver) Close(ctx context.Context, session string) error {
	return m.CloseFunc(ctx, session)
}

type mockSearcher struct {
	SearchFunc func(ctx context.Context, session, query string) ([]domain.Ticker, error)
}

func (m *mockSearcher) Search(ctx context.Context, session, query string) ([]domain.Ticker, error) {
	return m.SearchFunc(ctx, session, query)
}

type mockClearer struct {
	ClearFunc func(ctx context.Context) (int, error)
}

func (m *mockClearer) Clear(ctx context.Context) (int, error) {
	return m.ClearFunc(ctx)
}

type mockAuthService struct {
	VerifyTokenFunc func(ctx context.Context, token string) (*domain.DonorClaims, error)
}

func (m *mockAuthService) VerifyToken(ctx context.Context, token string) (*domain.DonorClaims, error) {
	return m.VerifyTokenFunc(ctx, token)
}
