package domain

import "time"

// ProjectFunding is the per-project aggregation shown on project pages.
type ProjectFunding struct {
	FundedTxoSum       float64          `json:"funded_txo_sum"`
	TxCount            int              `json:"tx_count"`
	Supporters         []string         `json:"supporters"`
	DonatedCreatedTime []DonationMoment `json:"donatedCreatedTime"`
}

type DonationMoment struct {
	ValueAtDonationTimeUSD float64   `json:"valueAtDonationTimeUSD"`
	CreatedTime            time.Time `json:"createdTime"`
}

type Stats struct {
	ProjectsSupported int     `json:"projectsSupported"`
	DonationsRaised   float64 `json:"donationsRaised"`
	DonationsMatched  float64 `json:"donationsMatched"`
}
