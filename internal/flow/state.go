// Package flow holds the donation state machine: a serialisable State, the
// events that move it, a pure Reduce, and the driver that runs gateway calls
// between events.
package flow

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fundbridge/donate/internal/domain"
)

// Option is the payment rail.
type Option string

const (
	OptionCrypto Option = "crypto"
	OptionFiat   Option = "fiat"
	OptionStock  Option = "stock"
)

func (o Option) Valid() bool {
	switch o {
	case OptionCrypto, OptionFiat, OptionStock:
		return true
	}
	return false
}

// Step is a position in the state machine.
type Step string

const (
	StepPayment         Step = "payment"
	StepPersonalInfo    Step = "personalInfo"
	StepCryptoDonate    Step = "cryptoDonate"
	StepFiatDonate      Step = "fiatDonate"
	StepComplete        Step = "complete"
	StepStockBrokerInfo Step = "stockBrokerInfo"
	StepSign            Step = "sign"
	StepThankYou        Step = "thankYou"
)

const (
	DefaultCurrencyCode = "LTC"
	DefaultCurrencyName = "Litecoin"
)

// FormData is the single accumulating record of donor input.
type FormData struct {
	FirstName              string `json:"firstName"`
	LastName               string `json:"lastName"`
	ReceiptEmail           string `json:"receiptEmail"`
	AddressLine1           string `json:"addressLine1"`
	AddressLine2           string `json:"addressLine2"`
	Country                string `json:"country"`
	State                  string `json:"state"`
	City                   string `json:"city"`
	Zipcode                string `json:"zipcode"`
	PhoneNumber            string `json:"phoneNumber"`
	AssetName              string `json:"assetName"`
	AssetSymbol            string `json:"assetSymbol"`
	PledgeAmount           string `json:"pledgeAmount"`
	PledgeCurrency         string `json:"pledgeCurrency"`
	IsAnonymous            bool   `json:"isAnonymous"`
	TaxReceipt             bool   `json:"taxReceipt"`
	PledgeID               string `json:"pledgeId"`
	CardToken              string `json:"cardToken"`
	DonationUUID           string `json:"donationUuid"`
	BrokerName             string `json:"brokerName"`
	BrokerLabelName        string `json:"brokerLabelName"`
	BrokerageAccountNumber string `json:"brokerageAccountNumber"`
	BrokerContactName      string `json:"brokerContactName"`
	BrokerEmail            string `json:"brokerEmail"`
	BrokerPhone            string `json:"brokerPhone"`
	SignatureDate          string `json:"signatureDate"`
	SignatureImage         string `json:"signatureImage"`
	JoinMailingList        bool   `json:"joinMailingList"`
	SocialXUseSession      bool   `json:"socialXUseSession"`
	SocialX                string `json:"socialX"`
	SocialXImageSrc        string `json:"socialXimageSrc"`
	SocialFacebook         string `json:"socialFacebook"`
	SocialLinkedIn         string `json:"socialLinkedIn"`
}

func defaultFormData() FormData {
	return FormData{
		TaxReceipt:        true,
		SocialXUseSession: true,
		PledgeCurrency:    DefaultCurrencyCode,
	}
}

// DonationData holds identifiers handed back by the payment gateway.
type DonationData struct {
	PledgeID       string `json:"pledgeId,omitempty"`
	DepositAddress string `json:"depositAddress,omitempty"`
	QRCode         string `json:"qrCode,omitempty"`
	DonationUUID   string `json:"donationUuid,omitempty"`
}

// State is the whole in-progress donation. It round-trips through JSON so a
// donor can resume after a reload.
type State struct {
	SelectedOption         Option                     `json:"selectedOption"`
	CurrentStep            Step                       `json:"currentStep"`
	FormData               FormData                   `json:"formData"`
	DonationData           DonationData               `json:"donationData"`
	ProjectSlug            string                     `json:"projectSlug"`
	ProjectTitle           string                     `json:"projectTitle"`
	Image                  string                     `json:"image"`
	CurrencyList           []domain.Currency          `json:"currencyList"`
	CurrencyRates          map[string]decimal.Decimal `json:"currencyRates"`
	SelectedCurrencyCode   string                     `json:"selectedCurrencyCode"`
	SelectedCurrencyName   string                     `json:"selectedCurrencyName"`
	USDInput               string                     `json:"usdInput"`
	CryptoInput            string                     `json:"cryptoInput"`
	StockPrice             decimal.Decimal            `json:"stockPrice"`
	IsDonateButtonDisabled bool                       `json:"isDonateButtonDisabled"`
	Pending                bool                       `json:"pending"`
	Error                  string                     `json:"error,omitempty"`
}

// Initial is the state a new donation starts in.
func Initial() State {
	return State{
		SelectedOption:         OptionCrypto,
		CurrentStep:            StepPayment,
		FormData:               defaultFormData(),
		CurrencyList:           []domain.Currency{},
		CurrencyRates:          map[string]decimal.Decimal{},
		SelectedCurrencyCode:   DefaultCurrencyCode,
		SelectedCurrencyName:   DefaultCurrencyName,
		USDInput:               "0",
		CryptoInput:            "0",
		StockPrice:             decimal.Zero,
		IsDonateButtonDisabled: true,
	}
}

// InitialWith starts a donation with a configured default currency.
func InitialWith(code, name string) State {
	s := Initial()
	if code != "" {
		s.SelectedCurrencyCode = code
		s.SelectedCurrencyName = name
		s.FormData.PledgeCurrency = code
	}
	return s
}

// Rate returns the known USD rate of the selected currency.
func (s State) Rate() (decimal.Decimal, bool) {
	r, ok := s.CurrencyRates[strings.ToUpper(s.SelectedCurrencyCode)]
	return r, ok && r.IsPositive()
}

// Terminal reports whether the donation has reached a final step.
func (s State) Terminal() bool {
	switch s.CurrentStep {
	case StepCryptoDonate, StepComplete, StepThankYou:
		return true
	}
	return false
}

// clone copies the reference-typed members so reducers never alias the
// caller's state.
func (s State) clone() State {
	out := s
	out.CurrencyList = append([]domain.Currency(nil), s.CurrencyList...)
	if out.CurrencyList == nil {
		out.CurrencyList = []domain.Currency{}
	}
	out.CurrencyRates = make(map[string]decimal.Decimal, len(s.CurrencyRates))
	for k, v := range s.CurrencyRates {
		out.CurrencyRates[k] = v
	}
	return out
}
