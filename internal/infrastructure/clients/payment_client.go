package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/pkg/config"
)

// TokenProvider hands out a valid bearer token for each call.
type TokenProvider interface {
	AccessToken(ctx context.Context) (*oauth2.Token, error)
}

// PaymentClient wraps the authenticated endpoints of the payment API.
type PaymentClient struct {
	t      *transport
	tokens TokenProvider
}

func NewPaymentClient(cfg config.PaymentAPIConfig, tokens TokenProvider, logger zerolog.Logger) *PaymentClient {
	return &PaymentClient{
		t:      newTransport(cfg, logger.With().Str("component", "payment_client").Logger()),
		tokens: tokens,
	}
}

func (c *PaymentClient) call(ctx context.Context, method, endpoint string, body interface{}, opts requestOptions) ([]byte, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	opts.token = token
	return c.t.do(ctx, method, endpoint, body, opts)
}

// CreateDepositAddress opens a crypto pledge and returns where to send funds.
func (c *PaymentClient) CreateDepositAddress(ctx context.Context, payload DepositAddressPayload) (*domain.DepositAddress, error) {
	body, err := c.call(ctx, http.MethodPost, "/deposit-address", payload, requestOptions{})
	if err != nil {
		return nil, err
	}
	var out domain.DepositAddress
	if err := decodeData(body, &out); err != nil {
		return nil, err
	}
	if out.DepositAddress == "" || out.PledgeID == "" || out.QRCode == "" {
		return nil, fmt.Errorf("%w: incomplete deposit address", domain.ErrInvalidUpstreamResponse)
	}
	return &out, nil
}

func (c *PaymentClient) CreateFiatPledge(ctx context.Context, payload FiatPledgePayload) (*domain.FiatPledge, error) {
	body, err := c.call(ctx, http.MethodPost, "/donation/fiat", payload, requestOptions{})
	if err != nil {
		return nil, err
	}
	var out domain.FiatPledge
	if err := decodeData(body, &out); err != nil {
		return nil, err
	}
	if out.PledgeID == "" {
		return nil, fmt.Errorf("%w: missing pledgeId", domain.ErrInvalidUpstreamResponse)
	}
	return &out, nil
}

// ChargeFiatPledge charges a tokenized card. A missing success flag reads
// as false.
func (c *PaymentClient) ChargeFiatPledge(ctx context.Context, pledgeID, cardToken string) (*domain.ChargeResult, error) {
	body, err := c.call(ctx, http.MethodPost, "/donation/fiat/charge", chargePayload{PledgeID: pledgeID, CardToken: cardToken}, requestOptions{})
	if err != nil {
		return nil, err
	}
	var out domain.ChargeResult
	if err := decodeData(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *PaymentClient) CreateStockPledge(ctx context.Context, payload StockPledgePayload) (*domain.StockPledge, error) {
	body, err := c.call(ctx, http.MethodPost, "/donation/stocks", payload, requestOptions{})
	if err != nil {
		return nil, err
	}
	var out domain.StockPledge
	if err := decodeData(body, &out); err != nil {
		return nil, err
	}
	if out.DonationUUID == "" {
		return nil, fmt.Errorf("%w: missing donationUuid", domain.ErrInvalidUpstreamResponse)
	}
	return &out, nil
}

// SubmitStockDonation attaches brokerage details to a stock pledge and
// returns the upstream body unchanged.
func (c *PaymentClient) SubmitStockDonation(ctx context.Context, sub domain.BrokerSubmission) ([]byte, error) {
	return c.call(ctx, http.MethodPost, "/stocks/submit", sub, requestOptions{})
}

func (c *PaymentClient) SignStockDonation(ctx context.Context, sig domain.SignatureRequest) (*SignResult, error) {
	body, err := c.call(ctx, http.MethodPost, "/stocks/sign", sig, requestOptions{})
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Data struct {
			IsSuccess bool `json:"isSuccess"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.t.logger.Warn().Err(err).Str("donation_uuid", sig.DonationUUID).Int("body_bytes", len(body)).Msg("Malformed sign response, treating as not accepted")
	}
	return &SignResult{Raw: body, IsSuccess: parsed.Data.IsSuccess}, nil
}

func (c *PaymentClient) GetBrokers(ctx context.Context) ([]byte, error) {
	return c.call(ctx, http.MethodGet, "/stocks/brokers", nil, requestOptions{idempotent: true})
}

// ListTickers runs one filtered page of the ticker search.
func (c *PaymentClient) ListTickers(ctx context.Context, filters domain.TickerFilters, page domain.Pagination) (*domain.TickerPage, error) {
	query := domain.TickerQuery{Filters: &filters, Pagination: &page}
	body, err := c.call(ctx, http.MethodPost, "/stocks/tickers", query, requestOptions{idempotent: true})
	if err != nil {
		return nil, err
	}
	var out domain.TickerPage
	if err := decodeData(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *PaymentClient) GetTickerCost(ctx context.Context, ticker string) (*RateResult, error) {
	return c.rate(ctx, "/stocks/ticker-cost", url.Values{"ticker": {ticker}})
}

// GetCryptoRate quotes one unit of a currency in USD. Codes are sent
// lowercase.
func (c *PaymentClient) GetCryptoRate(ctx context.Context, code string) (*RateResult, error) {
	return c.rate(ctx, "/crypto-to-usd-rate", url.Values{"currency": {strings.ToLower(code)}})
}

func (c *PaymentClient) rate(ctx context.Context, endpoint string, query url.Values) (*RateResult, error) {
	body, err := c.call(ctx, http.MethodGet, endpoint, nil, requestOptions{idempotent: true, query: query})
	if err != nil {
		return nil, err
	}
	var rate domain.Rate
	if err := decodeData(body, &rate); err != nil {
		return nil, err
	}
	return &RateResult{Raw: body, Rate: rate.Rate}, nil
}

// ListCurrencies returns the data array of the currency list. Any other
// shape is an invalid response.
func (c *PaymentClient) ListCurrencies(ctx context.Context) (json.RawMessage, error) {
	body, err := c.call(ctx, http.MethodPost, "/currencies/list", struct{}{}, requestOptions{idempotent: true})
	if err != nil {
		return nil, err
	}
	var data json.RawMessage
	if err := decodeData(body, &data); err != nil {
		return nil, err
	}
	if trimmed := strings.TrimSpace(string(data)); !strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("%w: currencies are not a list", domain.ErrInvalidUpstreamResponse)
	}
	return data, nil
}

func (c *PaymentClient) GetWidgetSnippet(ctx context.Context, organizationID string, req domain.WidgetSnippetRequest) (json.RawMessage, error) {
	endpoint := "/organization/" + url.PathEscape(organizationID) + "/widget-snippet"
	body, err := c.call(ctx, http.MethodPost, endpoint, req, requestOptions{idempotent: true})
	if err != nil {
		return nil, err
	}
	var data json.RawMessage
	if err := decodeData(body, &data); err != nil {
		return nil, err
	}
	return data, nil
}
