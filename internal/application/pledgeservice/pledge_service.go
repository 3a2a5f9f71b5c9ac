package pledgeservice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/internal/infrastructure/clients"
)

// IPledgeService wraps each payment API operation the donation flow needs
// and keeps the donation ledger in step with it.
type IPledgeService interface {
	CreateDepositAddress(ctx context.Context, req domain.PledgeRequest) (*domain.DepositAddress, error)
	CreateFiatPledge(ctx context.Context, req domain.PledgeRequest) (*domain.FiatPledge, error)
	ChargeFiatPledge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error)
	CreateStockPledge(ctx context.Context, req domain.StockPledgeRequest) (*domain.StockPledge, error)
	SubmitStockDonation(ctx context.Context, req domain.BrokerSubmission) (json.RawMessage, error)
	SignStockDonation(ctx context.Context, req domain.SignatureRequest) (*clients.SignResult, error)
	Brokers(ctx context.Context) (json.RawMessage, error)
	Tickers(ctx context.Context, query domain.TickerQuery) (*domain.TickerPage, error)
	TickerCost(ctx context.Context, ticker string) (*clients.RateResult, error)
	CryptoRate(ctx context.Context, currency string) (*clients.RateResult, error)
	Currencies(ctx context.Context) (json.RawMessage, error)
	WidgetSnippet(ctx context.Context) (json.RawMessage, error)
}

// PaymentAPI is the payment API surface used here. *clients.PaymentClient
// implements it.
type PaymentAPI interface {
	CreateDepositAddress(ctx context.Context, payload clients.DepositAddressPayload) (*domain.DepositAddress, error)
	CreateFiatPledge(ctx context.Context, payload clients.FiatPledgePayload) (*domain.FiatPledge, error)
	ChargeFiatPledge(ctx context.Context, pledgeID, cardToken string) (*domain.ChargeResult, error)
	CreateStockPledge(ctx context.Context, payload clients.StockPledgePayload) (*domain.StockPledge, error)
	SubmitStockDonation(ctx context.Context, sub domain.BrokerSubmission) ([]byte, error)
	SignStockDonation(ctx context.Context, sig domain.SignatureRequest) (*clients.SignResult, error)
	GetBrokers(ctx context.Context) ([]byte, error)
	ListTickers(ctx context.Context, filters domain.TickerFilters, page domain.Pagination) (*domain.TickerPage, error)
	GetTickerCost(ctx context.Context, ticker string) (*clients.RateResult, error)
	GetCryptoRate(ctx context.Context, code string) (*clients.RateResult, error)
	ListCurrencies(ctx context.Context) (json.RawMessage, error)
	GetWidgetSnippet(ctx context.Context, organizationID string, req domain.WidgetSnippetRequest) (json.RawMessage, error)
}

// Cache is the JSON cache placed in front of slow reference data.
type Cache interface {
	GetJSON(ctx context.Context, key string, out interface{}) error
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
}
