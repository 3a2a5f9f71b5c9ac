package domain

import "time"

// TokenRecordID is the fixed key of the single shared token row.
const TokenRecordID = 1

// Token is the persisted bearer token pair for the payment API.
type Token struct {
	ID           int
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	RefreshedAt  time.Time
}

// Valid reports whether the access token can still be used at now.
func (t *Token) Valid(now time.Time) bool {
	return t != nil && t.AccessToken != "" && now.Before(t.ExpiresAt)
}
