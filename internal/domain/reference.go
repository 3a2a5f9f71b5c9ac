package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Currency is one supported cryptocurrency.
type Currency struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Code        string          `json:"code"`
	ImageURL    string          `json:"imageUrl"`
	IsErc20     bool            `json:"isErc20"`
	Network     string          `json:"network"`
	MinDonation decimal.Decimal `json:"minDonation"`
}

type Ticker struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}

// Key identifies a ticker across filtered queries.
func (t Ticker) Key() string {
	return t.Name + "-" + t.Ticker
}

type TickerFilters struct {
	Name   string `json:"name,omitempty"`
	Ticker string `json:"ticker,omitempty"`
}

type Pagination struct {
	Page         int `json:"page"`
	ItemsPerPage int `json:"itemsPerPage"`
}

type TickerQuery struct {
	Filters    *TickerFilters `json:"filters"`
	Pagination *Pagination    `json:"pagination"`
}

type TickerPagination struct {
	Count        int `json:"count"`
	Page         int `json:"page"`
	ItemsPerPage int `json:"itemsPerPage"`
}

type TickerPage struct {
	Tickers    []Ticker         `json:"tickers"`
	Pagination TickerPagination `json:"pagination"`
}

// Rate is a USD price for one unit of an asset.
type Rate struct {
	Rate decimal.Decimal `json:"rate"`
}

// Passthrough is an upstream envelope returned to the browser verbatim.
type Passthrough = json.RawMessage

type WidgetButton struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Style string `json:"style,omitempty"`
}

type WidgetSnippetRequest struct {
	UIVersion    int          `json:"uiVersion"`
	DonationFlow []string     `json:"donationFlow"`
	Button       WidgetButton `json:"button"`
	ScriptID     string       `json:"scriptId"`
	CampaignID   string       `json:"campaignId,omitempty"`
}
