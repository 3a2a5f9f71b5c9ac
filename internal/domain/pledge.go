package domain

// Donor carries the personal fields shared by every rail.
type Donor struct {
	ReceiptEmail    string `json:"receiptEmail"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	AddressLine1    string `json:"addressLine1"`
	AddressLine2    string `json:"addressLine2"`
	Country         string `json:"country"`
	State           string `json:"state"`
	City            string `json:"city"`
	Zipcode         string `json:"zipcode"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	TaxReceipt      bool   `json:"taxReceipt"`
	IsAnonymous     bool   `json:"isAnonymous"`
	JoinMailingList bool   `json:"joinMailingList"`
	SocialX         string `json:"socialX,omitempty"`
	SocialFacebook  string `json:"socialFacebook,omitempty"`
	SocialLinkedIn  string `json:"socialLinkedIn,omitempty"`
}

// MissingIdentity lists the identity and address fields required from a
// donor who is not anonymous.
func (d Donor) MissingIdentity() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"firstName", d.FirstName},
		{"lastName", d.LastName},
		{"addressLine1", d.AddressLine1},
		{"country", d.Country},
		{"state", d.State},
		{"city", d.City},
		{"zipcode", d.Zipcode},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// PledgeRequest is the browser payload for crypto and card pledges.
type PledgeRequest struct {
	OrganizationID FlexString `json:"organizationId"`
	ProjectSlug    string     `json:"projectSlug"`
	PledgeCurrency string     `json:"pledgeCurrency"`
	PledgeAmount   FlexString `json:"pledgeAmount"`
	Donor
}

// StockPledgeRequest is the browser payload for a share transfer pledge.
type StockPledgeRequest struct {
	OrganizationID   FlexString `json:"organizationId"`
	ProjectSlug      string     `json:"projectSlug"`
	AssetSymbol      string     `json:"assetSymbol"`
	AssetDescription string     `json:"assetDescription"`
	PledgeAmount     FlexString `json:"pledgeAmount"`
	Donor
}

type ChargeRequest struct {
	PledgeID  string `json:"pledgeId"`
	CardToken string `json:"cardToken"`
}

type BrokerSubmission struct {
	DonationUUID           string `json:"donationUuid"`
	BrokerName             string `json:"brokerName"`
	BrokerageAccountNumber string `json:"brokerageAccountNumber"`
	BrokerContactName      string `json:"brokerContactName"`
	BrokerEmail            string `json:"brokerEmail"`
	BrokerPhone            string `json:"brokerPhone"`
}

// SignatureRequest carries a base64 image of the donor signature and the
// ISO timestamp of signing.
type SignatureRequest struct {
	DonationUUID string `json:"donationUuid"`
	Date         string `json:"date"`
	Signature    string `json:"signature"`
}

type DepositAddress struct {
	DepositAddress string `json:"depositAddress"`
	PledgeID       string `json:"pledgeId"`
	QRCode         string `json:"qrCode"`
}

type FiatPledge struct {
	PledgeID string `json:"pledgeId"`
}

type ChargeResult struct {
	Success bool `json:"success"`
}

type StockPledge struct {
	DonationUUID string `json:"donationUuid"`
}
