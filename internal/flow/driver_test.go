package flow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/internal/infrastructure/clients"
	"github.com/fundbridge/donate/pkg/config"
)

var testFlowConfig = config.FlowConfig{
	DefaultCurrency:     "LTC",
	DefaultCurrencyName: "Litecoin",
	SearchCooldown:      20 * time.Millisecond,
	SearchMinLength:     2,
	SearchPageSize:      50,
}

func rateOf(v int64) func(context.Context, string) (*clients.RateResult, error) {
	return func(context.Context, string) (*clients.RateResult, error) {
		return &clients.RateResult{Rate: decimal.NewFromInt(v)}, nil
	}
}

func newTestDriver(gw *mockGateway) (*Driver, *memoryStore, *recordingNotifier) {
	store := newMemoryStore()
	notifier := &recordingNotifier{}
	d := NewDriver(gw, store, notifier, config.OrganizationConfig{ID: "1189134331"}, testFlowConfig, zerolog.Nop())
	return d, store, notifier
}

func seed(t *testing.T, store *memoryStore, s State) string {
	t.Helper()
	if err := store.Save(context.Background(), "session-1", s); err != nil {
		t.Fatal(err)
	}
	return "session-1"
}

func TestStartPrefillsAndLoadsPrices(t *testing.T) {
	gw := &mockGateway{
		CurrenciesFunc: func(context.Context) (json.RawMessage, error) {
			return json.RawMessage(`[{"code":"LTC","name":"Litecoin"},{"code":"BTC","name":"Bitcoin"}]`), nil
		},
		CryptoRateFunc: rateOf(80),
	}
	d, store, _ := newTestDriver(gw)

	session, s, err := d.Start(context.Background(), &domain.DonorClaims{Username: "ada", Picture: "https://x/a.png"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if len(s.CurrencyList) != 2 {
		t.Errorf("CurrencyList = %v", s.CurrencyList)
	}
	if rate, ok := s.Rate(); !ok || !rate.Equal(decimal.NewFromInt(80)) {
		t.Errorf("Rate() = %s, %v", rate, ok)
	}
	if s.FormData.SocialX != "ada" || s.FormData.SocialXImageSrc != "https://x/a.png" {
		t.Errorf("social prefill = %q %q", s.FormData.SocialX, s.FormData.SocialXImageSrc)
	}
	if _, err := store.Load(context.Background(), session); err != nil {
		t.Errorf("session not persisted: %v", err)
	}
}

func TestStartToleratesPriceFailures(t *testing.T) {
	down := errors.New("down")
	gw := &mockGateway{
		CurrenciesFunc: func(context.Context) (json.RawMessage, error) { return nil, down },
		CryptoRateFunc: func(context.Context, string) (*clients.RateResult, error) { return nil, down },
	}
	d, _, _ := newTestDriver(gw)

	_, s, err := d.Start(context.Background(), nil)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if len(s.CurrencyList) != 0 || s.CurrentStep != StepPayment {
		t.Errorf("state = %+v", s)
	}
}

func TestDispatchFetchesRateForSelectedCurrency(t *testing.T) {
	var asked string
	gw := &mockGateway{
		CryptoRateFunc: func(_ context.Context, code string) (*clients.RateResult, error) {
			asked = code
			return &clients.RateResult{Rate: decimal.NewFromInt(60000)}, nil
		},
	}
	d, store, notifier := newTestDriver(gw)
	session := seed(t, store, Reduce(Initial(), USDInputChanged{Value: "120"}))

	s, err := d.Dispatch(context.Background(), session, CurrencySelected{Code: "BTC", Name: "Bitcoin"})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if asked != "BTC" {
		t.Errorf("rate requested for %q", asked)
	}
	if s.CryptoInput != "0.002" {
		t.Errorf("CryptoInput = %q, want 0.002", s.CryptoInput)
	}
	if notifier.count() != 2 {
		t.Errorf("published %d states, want 2", notifier.count())
	}
}

func TestDispatchReportsPriceFailure(t *testing.T) {
	gw := &mockGateway{
		TickerCostFunc: func(context.Context, string) (*clients.RateResult, error) {
			return nil, &clients.APIError{StatusCode: 502}
		},
	}
	d, store, _ := newTestDriver(gw)
	session := seed(t, store, Reduce(Initial(), OptionSelected{Option: OptionStock}))

	s, err := d.Dispatch(context.Background(), session, StockSelected{Ticker: domain.Ticker{Ticker: "AAPL"}})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if s.Error == "" || s.FormData.AssetSymbol != "AAPL" {
		t.Errorf("error = %q symbol = %q", s.Error, s.FormData.AssetSymbol)
	}
}

func TestDispatchUnknownSession(t *testing.T) {
	d, _, _ := newTestDriver(&mockGateway{})
	if _, err := d.Dispatch(context.Background(), "missing", Continue{}); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Dispatch() error = %v", err)
	}
}

func personalInfoReady() State {
	s := run(cryptoReady(), Continue{}, donorDetails(), ProjectSelected{Slug: "core-dev"})
	s.FormData.SocialX = "ada"
	return s
}

func TestSubmitCreatesDepositAddress(t *testing.T) {
	var got domain.PledgeRequest
	gw := &mockGateway{
		CreateDepositAddressFunc: func(_ context.Context, req domain.PledgeRequest) (*domain.DepositAddress, error) {
			got = req
			return &domain.DepositAddress{PledgeID: "p-1", DepositAddress: "ltc1q", QRCode: "qr"}, nil
		},
	}
	d, store, _ := newTestDriver(gw)
	session := seed(t, store, personalInfoReady())

	s, err := d.Submit(context.Background(), session)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if s.CurrentStep != StepCryptoDonate || s.DonationData.DepositAddress != "ltc1q" {
		t.Errorf("state = %s %+v", s.CurrentStep, s.DonationData)
	}
	if got.OrganizationID != "1189134331" || got.PledgeCurrency != "LTC" || got.PledgeAmount != "1.25" {
		t.Errorf("request = %+v", got)
	}
	if got.ProjectSlug != "core-dev" || got.SocialX != "ada" || got.FirstName != "Ada" {
		t.Errorf("donor fields = %+v", got)
	}
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	gw := &mockGateway{
		CreateDepositAddressFunc: func(context.Context, domain.PledgeRequest) (*domain.DepositAddress, error) {
			close(entered)
			<-release
			return &domain.DepositAddress{PledgeID: "p-1", DepositAddress: "ltc1q"}, nil
		},
	}
	d, store, _ := newTestDriver(gw)
	session := seed(t, store, personalInfoReady())

	done := make(chan State)
	go func() {
		s, _ := d.Submit(context.Background(), session)
		done <- s
	}()
	<-entered

	if _, err := d.Submit(context.Background(), session); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("second Submit() error = %v, want ErrSubmitInFlight", err)
	}
	close(release)

	if s := <-done; s.CurrentStep != StepCryptoDonate {
		t.Errorf("step = %s", s.CurrentStep)
	}
}

func TestSubmitFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"upstream client error", &clients.APIError{StatusCode: 400, Message: "Unsupported currency"}, "Unsupported currency"},
		{"upstream server error", &clients.APIError{StatusCode: 503, Message: "maintenance"}, msgGatewayFailed},
		{"validation", domain.Invalid("Invalid pledgeAmount."), "Invalid pledgeAmount."},
		{"network", errors.New("connection reset"), msgGatewayFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockGateway{
				CreateDepositAddressFunc: func(context.Context, domain.PledgeRequest) (*domain.DepositAddress, error) {
					return nil, tt.err
				},
			}
			d, store, _ := newTestDriver(gw)
			session := seed(t, store, personalInfoReady())

			s, err := d.Submit(context.Background(), session)
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if s.Error != tt.want {
				t.Errorf("Error = %q, want %q", s.Error, tt.want)
			}
			if s.Pending || s.CurrentStep != StepPersonalInfo {
				t.Errorf("pending = %v step = %s", s.Pending, s.CurrentStep)
			}
		})
	}
}

func TestSubmitChargeAndSign(t *testing.T) {
	gw := &mockGateway{
		ChargeFiatPledgeFunc: func(_ context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
			if req.PledgeID != "p-9" || req.CardToken != "tok" {
				t.Errorf("charge request = %+v", req)
			}
			return &domain.ChargeResult{Success: true}, nil
		},
		SignStockDonationFunc: func(_ context.Context, req domain.SignatureRequest) (*clients.SignResult, error) {
			if req.DonationUUID != "d-1" || req.Signature != "data:image/png;base64,AAAA" {
				t.Errorf("sign request = %+v", req)
			}
			return &clients.SignResult{IsSuccess: true}, nil
		},
	}
	d, store, _ := newTestDriver(gw)
	ctx := context.Background()

	card := Initial()
	card.SelectedOption = OptionFiat
	card.CurrentStep = StepFiatDonate
	card.DonationData.PledgeID = "p-9"
	card.FormData.CardToken = "tok"
	_ = store.Save(ctx, "card", card)
	if s, err := d.Submit(ctx, "card"); err != nil || s.CurrentStep != StepComplete {
		t.Errorf("charge: step = %s err = %v", s.CurrentStep, err)
	}

	sign := Initial()
	sign.SelectedOption = OptionStock
	sign.CurrentStep = StepSign
	sign.DonationData.DonationUUID = "d-1"
	sign.FormData.SignatureDate = "2026-10-17T10:00:00Z"
	sign.FormData.SignatureImage = "data:image/png;base64,AAAA"
	_ = store.Save(ctx, "sign", sign)
	if s, err := d.Submit(ctx, "sign"); err != nil || s.CurrentStep != StepThankYou {
		t.Errorf("sign: step = %s err = %v", s.CurrentStep, err)
	}
}

func TestSubmitNotReady(t *testing.T) {
	d, store, _ := newTestDriver(&mockGateway{})
	session := seed(t, store, Initial())
	if _, err := d.Submit(context.Background(), session); !errors.Is(err, ErrStepNotReady) {
		t.Errorf("Submit() error = %v", err)
	}
}

func TestCloseDeletesSession(t *testing.T) {
	d, store, _ := newTestDriver(&mockGateway{})
	session := seed(t, store, Initial())
	if err := d.Close(context.Background(), session); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := d.Get(context.Background(), session); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() error = %v", err)
	}
}

func TestResetEventRemovesStoredState(t *testing.T) {
	d, store, notifier := newTestDriver(&mockGateway{})
	session := seed(t, store, run(cryptoReady(), Continue{}, donorDetails()))

	s, err := d.Dispatch(context.Background(), session, Reset{})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if s.CurrentStep != StepPayment || s.FormData.FirstName != "" {
		t.Errorf("returned state not reset: %s %q", s.CurrentStep, s.FormData.FirstName)
	}
	if _, err := d.Get(context.Background(), session); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() error = %v, want ErrSessionNotFound", err)
	}
	if notifier.count() != 1 {
		t.Errorf("published %d states, want 1", notifier.count())
	}
}
