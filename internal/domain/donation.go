package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DonationType string

const (
	DonationTypeCrypto DonationType = "crypto"
	DonationTypeFiat   DonationType = "fiat"
	DonationTypeStock  DonationType = "stock"
)

func (t DonationType) Valid() bool {
	switch t {
	case DonationTypeCrypto, DonationTypeFiat, DonationTypeStock:
		return true
	}
	return false
}

// Statuses counted by the project aggregation.
const (
	DonationStatusComplete = "Complete"
	DonationStatusAdvanced = "Advanced"
)

// Donation is one ledger row per donation attempt. Success stays nil until
// the charge or sign outcome is known.
type Donation struct {
	ID                     uuid.UUID           `json:"id"`
	ProjectSlug            string              `json:"projectSlug"`
	OrganizationID         int64               `json:"organizationId"`
	DonationType           DonationType        `json:"donationType"`
	AssetSymbol            string              `json:"assetSymbol"`
	AssetDescription       string              `json:"assetDescription,omitempty"`
	PledgeAmount           decimal.Decimal     `json:"pledgeAmount"`
	ValueAtDonationTimeUSD decimal.NullDecimal `json:"valueAtDonationTimeUSD"`
	FirstName              string              `json:"firstName,omitempty"`
	LastName               string              `json:"lastName,omitempty"`
	DonorEmail             string              `json:"donorEmail,omitempty"`
	SocialX                string              `json:"socialX,omitempty"`
	SocialFacebook         string              `json:"socialFacebook,omitempty"`
	SocialLinkedIn         string              `json:"socialLinkedIn,omitempty"`
	IsAnonymous            bool                `json:"isAnonymous"`
	TaxReceipt             bool                `json:"taxReceipt"`
	JoinMailingList        bool                `json:"joinMailingList"`
	PledgeID               string              `json:"pledgeId,omitempty"`
	DepositAddress         string              `json:"depositAddress,omitempty"`
	DonationUUID           string              `json:"donationUuid,omitempty"`
	Success                *bool               `json:"success"`
	Status                 string              `json:"status,omitempty"`
	Processed              bool                `json:"processed"`
	CreatedAt              time.Time           `json:"createdAt"`
	UpdatedAt              time.Time           `json:"updatedAt"`
}

// MatchingDonationLog records an amount a matching donor added on top of a
// direct donation.
type MatchingDonationLog struct {
	ID              uuid.UUID       `json:"id"`
	MatchingDonorID string          `json:"matchingDonorId"`
	DonationID      uuid.UUID       `json:"donationId"`
	ProjectSlug     string          `json:"projectSlug"`
	MatchedAmount   decimal.Decimal `json:"matchedAmount"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// MatchingDonorTotal is the sum matched by one donor on one project.
type MatchingDonorTotal struct {
	MatchingDonorID string          `json:"matchingDonorId"`
	Name            string          `json:"name"`
	TotalMatched    decimal.Decimal `json:"totalMatched"`
}
