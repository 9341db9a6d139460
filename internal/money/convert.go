package money

import "github.com/shopspring/decimal"

// ConvertAmount converts a ledger amount into currency using table.
func ConvertAmount(table Table, amountLedger decimal.Decimal, currency string) decimal.Decimal {
	return table.Convert(amountLedger, currency)
}

// FormatMoney converts a ledger amount and renders it for locale.
func FormatMoney(table Table, amountLedger decimal.Decimal, currency, locale string) string {
	return table.Format(amountLedger, currency, locale)
}

// RoundUnit rounds half away from zero to a whole currency unit.
func RoundUnit(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// Percent returns amount × pct / 100.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(decimal.NewFromInt(100))
}
