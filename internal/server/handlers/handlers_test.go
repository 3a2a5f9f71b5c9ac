package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/internal/flow"
	"github.com/fundbridge/donate/internal/infrastructure/clients"
	"github.com/fundbridge/donate/internal/server/middleware"
	"github.com/fundbridge/donate/internal/server/websocket"
	"github.com/fundbridge/donate/pkg/config"
)

type testDeps struct {
	pledge *mockPledgeService
	stats  *mockStatsService
	flow   *mockFlowDriver
	search *mockSearcher
	cache  *mockClearer
	auth   *mockAuthService
	hub    *websocket.WsHub
	checks map[string]Check
}

func newDeps() *testDeps {
	return &testDeps{
		pledge: &mockPledgeService{},
		stats:  &mockStatsService{},
		flow:   &mockFlowDriver{},
		search: &mockSearcher{},
		cache:  &mockClearer{},
		auth:   &mockAuthService{},
		hub:    websocket.NewWsHub(zerolog.Nop()),
		checks: map[string]Check{},
	}
}

func (d *testDeps) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	cfg := &config.Config{Security: config.SecurityConfig{CronSecret: "s3cret"}}
	mw := middleware.NewMiddleware(d.auth, nil, zerolog.Nop())
	mw.SetupMiddleware(router)

	h := &Handlers{
		PledgeSvc: d.pledge,
		StatsSvc:  d.stats,
		Flow:      d.flow,
		Search:    d.search,
		Cache:     d.cache,
		WsHub:     d.hub,
		Checks:    d.checks,
		Version:   "test",
		Logger:    zerolog.Nop(),
		Config:    cfg,
	}
	h.SetupHandlers(router, mw)
	return router
}

func do(t *testing.T, router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not a JSON object: %v (%s)", err, w.Body.String())
	}
	return out
}

func TestCreateDepositAddress(t *testing.T) {
	deps := newDeps()
	deps.pledge.CreateDepositAddressFunc = func(_ context.Context, req domain.PledgeRequest) (*domain.DepositAddress, error) {
		if req.OrganizationID != "1189134331" || req.PledgeAmount != "0.5" || req.FirstName != "Ada" {
			t.Errorf("request = %+v", req)
		}
		return &domain.DepositAddress{DepositAddress: "ltc1q", PledgeID: "p-1", QRCode: "qr"}, nil
	}

	w := do(t, deps.router(), http.MethodPost, "/api/createDepositAddress",
		`{"organizationId":1189134331,"pledgeAmount":0.5,"pledgeCurrency":"LTC","projectSlug":"core","firstName":"Ada"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	got := decode(t, w)
	if got["depositAddress"] != "ltc1q" || got["pledgeId"] != "p-1" || got["qrCode"] != "qr" {
		t.Errorf("body = %v", got)
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("responses should carry a request id")
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", domain.MissingFields("pledgeId", "cardToken"), http.StatusBadRequest, "Missing required fields: pledgeId, cardToken"},
		{"upstream 4xx", &clients.APIError{StatusCode: 422, Message: "Card declined"}, http.StatusBadRequest, "Card declined"},
		{"upstream 5xx", &clients.APIError{StatusCode: 502, Message: "Bad gateway"}, http.StatusInternalServerError, "Bad gateway"},
		{"token", fmt.Errorf("%w: login failed", domain.ErrUnableToObtainToken), http.StatusInternalServerError, "Unable to obtain access token"},
		{"envelope", domain.ErrInvalidUpstreamResponse, http.StatusInternalServerError, "Invalid response from external API"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newDeps()
			deps.pledge.ChargeFiatPledgeFunc = func(context.Context, domain.ChargeRequest) (*domain.ChargeResult, error) {
				return nil, tt.err
			}
			w := do(t, deps.router(), http.MethodPost, "/api/chargeFiatDonationPledge", `{"pledgeId":"p"}`)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := decode(t, w)["error"]; got != tt.wantMsg {
				t.Errorf("error = %v, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestInvalidBody(t *testing.T) {
	deps := newDeps()
	w := do(t, deps.router(), http.MethodPost, "/api/createFiatDonationPledge", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestCryptoRateUsesMessageKey(t *testing.T) {
	deps := newDeps()
	deps.pledge.CryptoRateFunc = func(_ context.Context, currency string) (*clients.RateResult, error) {
		if currency == "" {
			return nil, domain.Invalid("Currency code is required")
		}
		return &clients.RateResult{Raw: []byte(`{"data":{"rate":80}}`), Rate: decimal.NewFromInt(80)}, nil
	}
	router := deps.router()

	w := do(t, router, http.MethodGet, "/api/getCryptoRate", "")
	if w.Code != http.StatusBadRequest || decode(t, w)["message"] != "Currency code is required" {
		t.Errorf("missing currency: %d %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/api/getCryptoRate?currency=LTC", "")
	if w.Code != http.StatusOK || w.Body.String() != `{"data":{"rate":80}}` {
		t.Errorf("passthrough: %d %s", w.Code, w.Body.String())
	}
}

func TestTickerListWrapsData(t *testing.T) {
	deps := newDeps()
	deps.pledge.TickersFunc = func(_ context.Context, q domain.TickerQuery) (*domain.TickerPage, error) {
		if q.Filters == nil || q.Filters.Name != "apple" {
			t.Errorf("query = %+v", q)
		}
		return &domain.TickerPage{
			Tickers:    []domain.Ticker{{Name: "Apple Inc", Ticker: "AAPL"}},
			Pagination: domain.TickerPagination{Count: 1, Page: 1, ItemsPerPage: 50},
		}, nil
	}

	w := do(t, deps.router(), http.MethodPost, "/api/getTickerList",
		`{"filters":{"name":"apple"},"pagination":{"page":1,"itemsPerPage":50}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data, ok := decode(t, w)["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("body = %s", w.Body.String())
	}
	if tickers := data["tickers"].([]interface{}); len(tickers) != 1 {
		t.Errorf("tickers = %v", tickers)
	}
}

func TestSignStockDonationPassesThrough(t *testing.T) {
	deps := newDeps()
	raw := `{"data":{"isSuccess":true}}`
	deps.pledge.SignStockDonationFunc = func(context.Context, domain.SignatureRequest) (*clients.SignResult, error) {
		return &clients.SignResult{Raw: []byte(raw), IsSuccess: true}, nil
	}
	w := do(t, deps.router(), http.MethodPost, "/api/signStockDonation", `{"donationUuid":"d","date":"x","signature":"AAAA"}`)
	if w.Code != http.StatusOK || w.Body.String() != raw {
		t.Errorf("%d %s", w.Code, w.Body.String())
	}
}

func TestProjectFunding(t *testing.T) {
	deps := newDeps()
	deps.stats.ProjectFundingFunc = func(_ context.Context, slug string) (*domain.ProjectFunding, error) {
		switch slug {
		case "":
			return nil, domain.Invalid("Slug is required")
		case "broken":
			return nil, errors.New("connection refused")
		}
		return &domain.ProjectFunding{FundedTxoSum: 12.5, TxCount: 2, Supporters: []string{"ada"}, DonatedCreatedTime: []domain.DonationMoment{}}, nil
	}
	router := deps.router()

	w := do(t, router, http.MethodGet, "/api/getInfoTGB", "")
	if w.Code != http.StatusBadRequest || decode(t, w)["message"] != "Slug is required" {
		t.Errorf("missing slug: %d %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/api/getInfoTGB?slug=broken", "")
	if w.Code != http.StatusInternalServerError || decode(t, w)["message"] != "connection refused" {
		t.Errorf("failure: %d %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/api/getInfoTGB?slug=core", "")
	got := decode(t, w)
	if got["funded_txo_sum"] != 12.5 || got["tx_count"] != float64(2) {
		t.Errorf("body = %v", got)
	}
}

func TestMatchingDonorsRenderNumbers(t *testing.T) {
	deps := newDeps()
	deps.stats.MatchingDonorsFunc = func(context.Context, string) ([]domain.MatchingDonorTotal, error) {
		return []domain.MatchingDonorTotal{{MatchingDonorID: "m1", Name: "Fund", TotalMatched: decimal.RequireFromString("150.25")}}, nil
	}
	w := do(t, deps.router(), http.MethodGet, "/api/matching-donors-by-project?slug=core", "")
	var got []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0]["totalMatched"] != 150.25 {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestClearKV(t *testing.T) {
	tests := []struct {
		name       string
		auth       string
		deleted    int
		err        error
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{"no header", "", 0, nil, http.StatusUnauthorized, "error", "Unauthorized"},
		{"wrong secret", "Bearer nope", 0, nil, http.StatusUnauthorized, "error", "Unauthorized"},
		{"empty store", "Bearer s3cret", 0, nil, http.StatusOK, "message", "KV store is already empty."},
		{"cleared", "Bearer s3cret", 250, nil, http.StatusOK, "message", "All KV data cleared successfully."},
		{"failure", "Bearer s3cret", 0, errors.New("redis down"), http.StatusInternalServerError, "details", "redis down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newDeps()
			called := false
			deps.cache.ClearFunc = func(context.Context) (int, error) {
				called = true
				return tt.deleted, tt.err
			}
			w := do(t, deps.router(), http.MethodPost, "/api/clearKV", "", "Authorization", tt.auth)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := decode(t, w)[tt.wantKey]; got != tt.wantValue {
				t.Errorf("%s = %v, want %q", tt.wantKey, got, tt.wantValue)
			}
			if tt.wantStatus == http.StatusUnauthorized && called {
				t.Error("cache cleared without authorization")
			}
		})
	}
}

func TestFlowStartWithIdentity(t *testing.T) {
	deps := newDeps()
	deps.auth.VerifyTokenFunc = func(_ context.Context, token string) (*domain.DonorClaims, error) {
		if token != "good" {
			return nil, errors.New("invalid token")
		}
		return &domain.DonorClaims{Username: "ada"}, nil
	}
	deps.flow.StartFunc = func(_ context.Context, claims *domain.DonorClaims) (string, flow.State, error) {
		s := flow.Initial()
		if claims != nil {
			s.FormData.SocialX = claims.Username
		}
		return "sess-1", s, nil
	}
	router := deps.router()

	w := do(t, router, http.MethodPost, "/v1/flow", "", "Authorization", "Bearer good")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var resp flowResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Session != "sess-1" || resp.State.FormData.SocialX != "ada" {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Errors) == 0 {
		t.Error("a fresh session should list what blocks the payment step")
	}

	if w := do(t, router, http.MethodPost, "/v1/flow", "", "Authorization", "Bearer bad"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/v1/flow", ""); w.Code != http.StatusCreated {
		t.Errorf("anonymous start status = %d", w.Code)
	}
}

func TestFlowEvent(t *testing.T) {
	deps := newDeps()
	deps.flow.DispatchFunc = func(_ context.Context, session string, ev flow.Event) (flow.State, error) {
		if session == "missing" {
			return flow.State{}, flow.ErrSessionNotFound
		}
		usd, ok := ev.(flow.USDInputChanged)
		if !ok {
			t.Errorf("event = %T", ev)
		}
		s := flow.Initial()
		s.USDInput = usd.Value
		return s, nil
	}
	router := deps.router()
	body := `{"type":"usdInputChanged","payload":{"value":"25"}}`

	w := do(t, router, http.MethodPost, "/v1/flow/sess-1/events", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp flowResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.State.USDInput != "25" {
		t.Errorf("USDInput = %q", resp.State.USDInput)
	}

	if w := do(t, router, http.MethodPost, "/v1/flow/missing/events", body); w.Code != http.StatusNotFound {
		t.Errorf("missing session status = %d", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/v1/flow/sess-1/events", `{"type":"pledgeCreated"}`); w.Code != http.StatusBadRequest {
		t.Errorf("server-only event status = %d", w.Code)
	}
}

func TestFlowSubmitStatuses(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{flow.ErrSubmitInFlight, http.StatusConflict},
		{flow.ErrStepNotReady, http.StatusBadRequest},
		{flow.ErrSessionNotFound, http.StatusNotFound},
		{errors.New("redis down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		deps := newDeps()
		deps.flow.SubmitFunc = func(context.Context, string) (flow.State, error) {
			return flow.Initial(), tt.err
		}
		if w := do(t, deps.router(), http.MethodPost, "/v1/flow/sess-1/submit", ""); w.Code != tt.want {
			t.Errorf("Submit error %v: status = %d, want %d", tt.err, w.Code, tt.want)
		}
	}
}

func TestFlowTickers(t *testing.T) {
	deps := newDeps()
	deps.flow.GetFunc = func(context.Context, string) (flow.State, error) { return flow.Initial(), nil }
	deps.search.SearchFunc = func(_ context.Context, _ string, q string) ([]domain.Ticker, error) {
		if q == "ap" {
			return nil, flow.ErrSuperseded
		}
		return []domain.Ticker{{Name: "Apple Inc", Ticker: "AAPL"}}, nil
	}
	router := deps.router()

	got := decode(t, do(t, router, http.MethodGet, "/v1/flow/s/tickers?q=ap", ""))
	if got["superseded"] != true {
		t.Errorf("body = %v", got)
	}
	got = decode(t, do(t, router, http.MethodGet, "/v1/flow/s/tickers?q=apple", ""))
	if tickers, _ := got["tickers"].([]interface{}); len(tickers) != 1 {
		t.Errorf("body = %v", got)
	}
}

func TestFlowClose(t *testing.T) {
	deps := newDeps()
	deps.flow.CloseFunc = func(context.Context, string) error { return nil }
	if w := do(t, deps.router(), http.MethodDelete, "/v1/flow/sess-1", ""); w.Code != http.StatusNoContent {
		t.Errorf("status = %d", w.Code)
	}
}

func TestReadiness(t *testing.T) {
	deps := newDeps()
	deps.checks["database"] = func(context.Context) error { return nil }
	deps.checks["cache"] = func(context.Context) error { return errors.New("connection refused") }
	router := deps.router()

	if w := do(t, router, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
	w := do(t, router, http.MethodGet, "/ready", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d", w.Code)
	}
	checks := decode(t, w)["checks"].(map[string]interface{})
	if checks["database"] != "ok" || checks["cache"] != "connection refused" {
		t.Errorf("checks = %v", checks)
	}
}

func TestCORSPreflight(t *testing.T) {
	deps := newDeps()
	w := do(t, deps.router(), http.MethodOptions, "/api/createDepositAddress", "")
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight: %d %v", w.Code, w.Header())
	}
}
