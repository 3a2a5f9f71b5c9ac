package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// StockMinimumShares is ceil(500 / price).
func StockMinimumShares(price decimal.Decimal) int64 {
	if !price.IsPositive() {
		return 0
	}
	return StockMinimumUSD.DivRound(price, 16).Ceil().IntPart()
}

// StockValue is quantity * price rounded up to the next cent so the stated
// share count never under-funds the USD figure.
func StockValue(quantity int64, price decimal.Decimal) decimal.Decimal {
	if quantity <= 0 || !price.IsPositive() {
		return decimal.Zero
	}
	cents := decimal.NewFromInt(quantity).Mul(price).Mul(hundred).Ceil()
	return cents.Div(hundred)
}

// ParseShares floors a typed quantity to whole shares. Non-numeric input
// reports ok=false.
func ParseShares(s string) (int64, bool) {
	d, ok := Parse(strings.TrimSpace(s))
	if !ok {
		return 0, false
	}
	return d.Floor().IntPart(), true
}

// MeetsStockMinimum reports whether quantity reaches StockMinimumShares. The
// unrounded value decides, so 3 shares at 166.666 fall short even though
// they display as $500.00.
func MeetsStockMinimum(quantity int64, price decimal.Decimal) bool {
	if quantity <= 0 || !price.IsPositive() {
		return false
	}
	return quantity >= StockMinimumShares(price)
}
