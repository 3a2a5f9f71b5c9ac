package currency

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	CryptoDecimals = 8
	USDDecimals    = 2
)

var (
	// CryptoMinimumUSD is the USD floor applied to crypto donations.
	CryptoMinimumUSD = decimal.RequireFromString("2.50")
	// FiatMinimumUSD is the floor for card donations entered on the amount step.
	FiatMinimumUSD = decimal.RequireFromString("10")
	// GeneralFiatMinimumUSD is the floor for USD amounts typed next to a crypto quote.
	GeneralFiatMinimumUSD = decimal.RequireFromString("2.50")
	// StockMinimumUSD is the minimum value of a share transfer.
	StockMinimumUSD = decimal.RequireFromString("500")
	// FeeCoverFactor grosses up a card amount so the net equals the base amount.
	FeeCoverFactor = decimal.RequireFromString("1.030928")
)

var (
	usdInputPattern    = regexp.MustCompile(`^\d{0,10}(\.\d{0,2})?$`)
	cryptoInputPattern = regexp.MustCompile(`^(\d+)?(\.\d{0,9})?$`)
	fiatInputPattern   = regexp.MustCompile(`^\d*\.?\d{0,2}$`)
)

// Parse returns the decimal value of a user entered amount. Empty and
// malformed input report ok=false.
func Parse(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ValidUSDInput accepts up to ten integer digits and two decimals.
func ValidUSDInput(s string) bool {
	return s == "" || usdInputPattern.MatchString(s)
}

// ValidCryptoInput accepts up to nine decimals.
func ValidCryptoInput(s string) bool {
	return s == "" || cryptoInputPattern.MatchString(s)
}

// ValidFiatInput accepts a card amount with at most two decimals.
func ValidFiatInput(s string) bool {
	return s == "" || fiatInputPattern.MatchString(s)
}

// CryptoFromUSD converts a USD amount to the native asset at rate (USD per
// unit), rounded to 8 places with trailing zeros trimmed. It returns "" when
// either side is unusable.
func CryptoFromUSD(usd, rate decimal.Decimal) string {
	if !rate.IsPositive() {
		return ""
	}
	return usd.DivRound(rate, CryptoDecimals+4).Round(CryptoDecimals).String()
}

// USDFromCrypto converts a native quantity to USD rounded to the cent with
// trailing zeros trimmed.
func USDFromCrypto(crypto, rate decimal.Decimal) string {
	if !rate.IsPositive() {
		return ""
	}
	return crypto.Mul(rate).Round(USDDecimals).String()
}

// CryptoFromUSDString is CryptoFromUSD over raw input.
func CryptoFromUSDString(usd string, rate decimal.Decimal) string {
	d, ok := Parse(usd)
	if !ok {
		return ""
	}
	return CryptoFromUSD(d, rate)
}

// USDFromCryptoString is USDFromCrypto over raw input.
func USDFromCryptoString(crypto string, rate decimal.Decimal) string {
	d, ok := Parse(crypto)
	if !ok {
		return ""
	}
	return USDFromCrypto(d, rate)
}

// CryptoMinimum is the smallest accepted native quantity at rate.
func CryptoMinimum(rate decimal.Decimal) decimal.Decimal {
	if !rate.IsPositive() {
		return decimal.Zero
	}
	return CryptoMinimumUSD.DivRound(rate, 16)
}

// FormatCrypto renders a native quantity with exactly 8 decimals.
func FormatCrypto(d decimal.Decimal) string {
	return d.StringFixed(CryptoDecimals)
}

// FormatUSD renders a USD amount as $0.00.
func FormatUSD(d decimal.Decimal) string {
	return "$" + d.StringFixed(USDDecimals)
}

// BelowCryptoMinimum reports whether a typed native quantity is under the
// floor. Empty or malformed input is not considered below the minimum.
func BelowCryptoMinimum(crypto string, rate decimal.Decimal) bool {
	d, ok := Parse(crypto)
	if !ok || !rate.IsPositive() {
		return false
	}
	return d.LessThan(CryptoMinimum(rate))
}

// BelowUSDMinimum reports whether a typed USD amount is under floor.
func BelowUSDMinimum(usd string, floor decimal.Decimal) bool {
	d, ok := Parse(usd)
	if !ok {
		return false
	}
	return d.LessThan(floor)
}

// CoverFees grosses a card amount up by FeeCoverFactor.
func CoverFees(base decimal.Decimal) decimal.Decimal {
	return base.Mul(FeeCoverFactor).Round(USDDecimals)
}

// UncoverFees reverses CoverFees.
func UncoverFees(total decimal.Decimal) decimal.Decimal {
	return total.DivRound(FeeCoverFactor, 8).Round(USDDecimals)
}
