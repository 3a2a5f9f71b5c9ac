package flow

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fundbridge/donate/internal/domain"
)

// Event is one transition input. The set is closed: only types in this
// package implement it.
type Event interface {
	eventType() string
}

type OptionSelected struct {
	Option Option `json:"option"`
}

type CurrencyListLoaded struct {
	Currencies []domain.Currency `json:"currencies"`
}

type CurrencySelected struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type RateLoaded struct {
	Code string          `json:"code"`
	Rate decimal.Decimal `json:"rate"`
}

type USDInputChanged struct {
	Value string `json:"value"`
}

type CryptoInputChanged struct {
	Value string `json:"value"`
}

type FiatAmountChanged struct {
	Value string `json:"value"`
}

type StockSelected struct {
	Ticker domain.Ticker `json:"ticker"`
}

type TickerCostLoaded struct {
	Ticker string          `json:"ticker"`
	Price  decimal.Decimal `json:"price"`
}

type StockQuantityChanged struct {
	Value string `json:"value"`
}

// FormChanged overwrites named form fields. Strings and flags are kept apart
// so the payload stays typed.
type FormChanged struct {
	Fields map[string]string `json:"fields,omitempty"`
	Flags  map[string]bool   `json:"flags,omitempty"`
}

type ProjectSelected struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Image string `json:"image"`
}

type Continue struct{}

type Back struct{}

// SubmitStarted marks a gateway call in flight for Step.
type SubmitStarted struct {
	Step Step `json:"step"`
}

type PledgeCreated struct {
	Step           Step   `json:"step"`
	PledgeID       string `json:"pledgeId,omitempty"`
	DepositAddress string `json:"depositAddress,omitempty"`
	QRCode         string `json:"qrCode,omitempty"`
	DonationUUID   string `json:"donationUuid,omitempty"`
}

type ChargeCompleted struct {
	Success bool `json:"success"`
}

type BrokerSubmitted struct{}

type SignatureAccepted struct {
	IsSuccess bool `json:"isSuccess"`
}

type SubmitFailed struct {
	Step    Step   `json:"step"`
	Message string `json:"message"`
}

type Reset struct{}

func (OptionSelected) eventType() string       { return "optionSelected" }
func (CurrencyListLoaded) eventType() string   { return "currencyListLoaded" }
func (CurrencySelected) eventType() string     { return "currencySelected" }
func (RateLoaded) eventType() string           { return "rateLoaded" }
func (USDInputChanged) eventType() string      { return "usdInputChanged" }
func (CryptoInputChanged) eventType() string   { return "cryptoInputChanged" }
func (FiatAmountChanged) eventType() string    { return "fiatAmountChanged" }
func (StockSelected) eventType() string        { return "stockSelected" }
func (TickerCostLoaded) eventType() string     { return "tickerCostLoaded" }
func (StockQuantityChanged) eventType() string { return "stockQuantityChanged" }
func (FormChanged) eventType() string          { return "formChanged" }
func (ProjectSelected) eventType() string      { return "projectSelected" }
func (Continue) eventType() string             { return "continue" }
func (Back) eventType() string                 { return "back" }
func (SubmitStarted) eventType() string        { return "submitStarted" }
func (PledgeCreated) eventType() string        { return "pledgeCreated" }
func (ChargeCompleted) eventType() string      { return "chargeCompleted" }
func (BrokerSubmitted) eventType() string      { return "brokerSubmitted" }
func (SignatureAccepted) eventType() string    { return "signatureAccepted" }
func (SubmitFailed) eventType() string         { return "submitFailed" }
func (Reset) eventType() string                { return "reset" }

// clientEvents are the events a browser may send. Gateway outcomes are
// produced by the driver only.
var clientEvents = map[string]func() Event{
	"optionSelected":       func() Event { return &OptionSelected{} },
	"currencySelected":     func() Event { return &CurrencySelected{} },
	"usdInputChanged":      func() Event { return &USDInputChanged{} },
	"cryptoInputChanged":   func() Event { return &CryptoInputChanged{} },
	"fiatAmountChanged":    func() Event { return &FiatAmountChanged{} },
	"stockSelected":        func() Event { return &StockSelected{} },
	"stockQuantityChanged": func() Event { return &StockQuantityChanged{} },
	"formChanged":          func() Event { return &FormChanged{} },
	"projectSelected":      func() Event { return &ProjectSelected{} },
	"continue":             func() Event { return &Continue{} },
	"back":                 func() Event { return &Back{} },
	"reset":                func() Event { return &Reset{} },
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DecodeEvent parses {"type": ..., "payload": {...}} into a client event.
func DecodeEvent(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	build, ok := clientEvents[env.Type]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	ev := build()
	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		if err := json.Unmarshal(env.Payload, ev); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", env.Type, err)
		}
	}
	return deref(ev), nil
}

// EncodeEvent is the inverse of DecodeEvent, for any event.
func EncodeEvent(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: ev.eventType(), Payload: payload})
}

func deref(ev Event) Event {
	switch e := ev.(type) {
	case *OptionSelected:
		return *e
	case *CurrencySelected:
		return *e
	case *USDInputChanged:
		return *e
	case *CryptoInputChanged:
		return *e
	case *FiatAmountChanged:
		return *e
	case *StockSelected:
		return *e
	case *StockQuantityChanged:
		return *e
	case *FormChanged:
		return *e
	case *ProjectSelected:
		return *e
	case *Continue:
		return *e
	case *Back:
		return *e
	case *Reset:
		return *e
	}
	return ev
}
