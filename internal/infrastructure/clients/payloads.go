package clients

import "github.com/shopspring/decimal"

// DepositAddressPayload is the body of POST /deposit-address. Identity
// fields are sent only for donors who are not anonymous.
type DepositAddressPayload struct {
	OrganizationID int64  `json:"organizationId"`
	IsAnonymous    bool   `json:"isAnonymous"`
	PledgeCurrency string `json:"pledgeCurrency"`
	PledgeAmount   string `json:"pledgeAmount"`
	ReceiptEmail   string `json:"receiptEmail,omitempty"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	AddressLine1   string `json:"addressLine1,omitempty"`
	AddressLine2   string `json:"addressLine2,omitempty"`
	Country        string `json:"country,omitempty"`
	State          string `json:"state,omitempty"`
	City           string `json:"city,omitempty"`
	Zipcode        string `json:"zipcode,omitempty"`
}

// FiatPledgePayload is the body of POST /donation/fiat. The upstream
// rejects empty strings, so blank fields go out as a single space.
type FiatPledgePayload struct {
	OrganizationID string `json:"organizationId"`
	IsAnonymous    bool   `json:"isAnonymous"`
	PledgeAmount   string `json:"pledgeAmount"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	ReceiptEmail   string `json:"receiptEmail"`
	AddressLine1   string `json:"addressLine1"`
	AddressLine2   string `json:"addressLine2"`
	Country        string `json:"country"`
	State          string `json:"state"`
	City           string `json:"city"`
	Zipcode        string `json:"zipcode"`
}

type StockPledgePayload struct {
	OrganizationID   string `json:"organizationId"`
	AssetSymbol      string `json:"assetSymbol"`
	AssetDescription string `json:"assetDescription"`
	PledgeAmount     string `json:"pledgeAmount"`
	ReceiptEmail     string `json:"receiptEmail"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	AddressLine1     string `json:"addressLine1"`
	AddressLine2     string `json:"addressLine2"`
	Country          string `json:"country"`
	State            string `json:"state"`
	City             string `json:"city"`
	Zipcode          string `json:"zipcode"`
	PhoneNumber      string `json:"phoneNumber"`
}

type chargePayload struct {
	PledgeID  string `json:"pledgeId"`
	CardToken string `json:"cardToken"`
}

type credentialsPayload struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshPayload struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RateResult keeps the upstream body for passthrough alongside the parsed
// rate.
type RateResult struct {
	Raw  []byte
	Rate decimal.Decimal
}

// SignResult keeps the upstream body for passthrough alongside its
// isSuccess flag.
type SignResult struct {
	Raw       []byte
	IsSuccess bool
}

// Blank substitutes a single space for an empty value.
func Blank(s string) string {
	if s == "" {
		return " "
	}
	return s
}
