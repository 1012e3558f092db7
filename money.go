package papertrading

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount with the conventions of the currency (grapheme,
// separators, fraction digits). Amounts are rounded to the currency fraction.
func FormatMoney(value decimal.Decimal, currency string) string {
	// to get a never nil currency I need to call the Money constructor
	cur := *money.New(0, currency).Currency()
	dec := value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// FormatSignedMoney is FormatMoney with an explicit "+" on positive amounts.
func FormatSignedMoney(value decimal.Decimal, currency string) string {
	if value.IsPositive() {
		return "+" + FormatMoney(value, currency)
	}
	return FormatMoney(value, currency)
}
