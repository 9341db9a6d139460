package money

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testTable() Table {
	return NewTable([]CurrencyConfig{
		{Code: "SAR", RateToLedger: decimal.NewFromInt(1), RateFromLedger: decimal.NewFromInt(1), Enabled: true},
		{Code: "usd", Symbol: "$", RateToLedger: decimal.RequireFromString("3.75"), RateFromLedger: decimal.RequireFromString("0.266"), Enabled: true},
		{Code: "KWD", RateToLedger: decimal.RequireFromString("12.20"), RateFromLedger: decimal.RequireFromString("0.082"), Enabled: true},
	})
}

func TestConvert(t *testing.T) {
	table := testTable()

	require.True(t, table.Convert(decimal.NewFromInt(1000), "SAR").Equal(decimal.NewFromInt(1000)))
	require.True(t, table.Convert(decimal.NewFromInt(1000), "USD").Equal(decimal.NewFromInt(266)))
	require.True(t, table.Convert(decimal.NewFromInt(1000), "kwd").Equal(decimal.NewFromInt(82)))
}

func TestConvertUnknownCurrencyPassesThrough(t *testing.T) {
	table := testTable()
	require.True(t, table.Convert(decimal.NewFromInt(420), "XYZ").Equal(decimal.NewFromInt(420)))
	require.True(t, table.ToLedger(decimal.NewFromInt(420), "XYZ").Equal(decimal.NewFromInt(420)))
}

func TestToLedger(t *testing.T) {
	table := testTable()
	require.True(t, table.ToLedger(decimal.NewFromInt(100), "USD").Equal(decimal.NewFromInt(375)))
	require.True(t, table.ToLedger(decimal.NewFromInt(100), "SAR").Equal(decimal.NewFromInt(100)))
}

func TestFormat(t *testing.T) {
	table := testTable()

	usd := table.Format(decimal.NewFromInt(3750), "USD", "en")
	require.Contains(t, usd, "997.50")

	sar := table.Format(decimal.NewFromInt(1234567), "SAR", "en")
	require.Contains(t, sar, "1,234,567.00")

	kwd := table.Format(decimal.NewFromInt(1000), "KWD", "en")
	require.Contains(t, kwd, "82.000")

	unknown := table.Format(decimal.NewFromInt(10), "XYZ", "en")
	require.True(t, strings.HasPrefix(unknown, "XYZ"), unknown)

	arabic := table.Format(decimal.NewFromInt(1000), "SAR", "ar")
	require.NotEmpty(t, arabic)
	require.NotEqual(t, sar, arabic)
}

func TestFormatPlacesSymbolByLocale(t *testing.T) {
	table := NewTable([]CurrencyConfig{
		{Code: "EUR", RateToLedger: decimal.RequireFromString("4.05"), RateFromLedger: decimal.RequireFromString("0.25"), Enabled: true},
	})
	amount := decimal.RequireFromString("4938.26")

	cases := []struct {
		locale      string
		symbolFirst bool
		digits      string
	}{
		{locale: "en", symbolFirst: true, digits: "1,234.57"},
		{locale: "de-DE", symbolFirst: false, digits: "1.234,57"},
		{locale: "fr", symbolFirst: false, digits: "234,57"},
	}
	for _, tc := range cases {
		got := table.Format(amount, "EUR", tc.locale)
		require.Contains(t, got, tc.digits, tc.locale)
		symbol := strings.Index(got, "€")
		require.GreaterOrEqual(t, symbol, 0, got)
		require.Equal(t, tc.symbolFirst, symbol < strings.IndexAny(got, "0123456789"), got)
	}

	arabic := table.Format(amount, "EUR", "ar")
	require.NotEmpty(t, arabic)
	require.NotEqual(t, table.Format(amount, "EUR", "en"), arabic)
}

func TestFormatKeepsDecimalPrecision(t *testing.T) {
	table := testTable()

	got := table.Format(decimal.RequireFromString("12345678901234567.89"), "SAR", "en")
	require.Contains(t, got, "12,345,678,901,234,567.89")
}

func TestValidateFlagsBrokenRoundTrip(t *testing.T) {
	table := NewTable([]CurrencyConfig{
		{Code: "SAR", RateToLedger: decimal.NewFromInt(1), RateFromLedger: decimal.NewFromInt(1)},
		{Code: "EUR", RateToLedger: decimal.RequireFromString("4.05"), RateFromLedger: decimal.RequireFromString("0.247")},
		{Code: "GBP", RateToLedger: decimal.RequireFromString("4.75"), RateFromLedger: decimal.RequireFromString("0.5")},
		{Code: "OMR"},
	})
	errs := table.Validate()
	require.Len(t, errs, 2)
	require.Contains(t, errs[0].Error(), "GBP")
	require.Contains(t, errs[1].Error(), "OMR")
}
