package money

import (
	"fmt"
	"strings"

	"github.com/bojanz/currency"
	"github.com/shopspring/decimal"
)

// Ledger is the canonical currency for all stored costs, prices and thresholds.
const Ledger = "SAR"

// roundTripTolerance bounds how far RateToLedger × RateFromLedger may drift from 1.
var roundTripTolerance = decimal.RequireFromString("0.05")

// Money is an amount tagged with its currency code.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// CurrencyConfig describes how a customer-facing currency relates to the ledger.
type CurrencyConfig struct {
	Code           string          `yaml:"code" json:"code" validate:"required,len=3"`
	Symbol         string          `yaml:"symbol" json:"symbol"`
	RateToLedger   decimal.Decimal `yaml:"rate_to_ledger" json:"rateToLedger"`
	RateFromLedger decimal.Decimal `yaml:"rate_from_ledger" json:"rateFromLedger"`
	Enabled        bool            `yaml:"enabled" json:"enabled"`
}

// Table is a read-only lookup of currency configs keyed by ISO code.
type Table struct {
	byCode map[string]CurrencyConfig
	order  []string
}

// NewTable indexes configs by upper-cased code. Later duplicates win.
func NewTable(configs []CurrencyConfig) Table {
	t := Table{byCode: make(map[string]CurrencyConfig, len(configs))}
	for _, cfg := range configs {
		code := normalizeCode(cfg.Code)
		if code == "" {
			continue
		}
		cfg.Code = code
		if _, exists := t.byCode[code]; !exists {
			t.order = append(t.order, code)
		}
		t.byCode[code] = cfg
	}
	return t
}

// Lookup returns the config for code when present.
func (t Table) Lookup(code string) (CurrencyConfig, bool) {
	cfg, ok := t.byCode[normalizeCode(code)]
	return cfg, ok
}

// Codes lists configured currency codes in definition order.
func (t Table) Codes() []string {
	return append([]string(nil), t.order...)
}

// Convert turns a ledger amount into the target currency. Unknown codes pass
// the amount through unchanged.
func (t Table) Convert(amountLedger decimal.Decimal, target string) decimal.Decimal {
	code := normalizeCode(target)
	if code == Ledger || code == "" {
		return amountLedger
	}
	cfg, ok := t.byCode[code]
	if !ok || cfg.RateFromLedger.IsZero() {
		return amountLedger
	}
	return amountLedger.Mul(cfg.RateFromLedger)
}

// ToLedger turns an amount in source currency into the ledger currency using
// RateToLedger. Unknown codes pass the amount through unchanged.
func (t Table) ToLedger(amount decimal.Decimal, source string) decimal.Decimal {
	code := normalizeCode(source)
	if code == Ledger || code == "" {
		return amount
	}
	cfg, ok := t.byCode[code]
	if !ok || cfg.RateToLedger.IsZero() {
		return amount
	}
	return amount.Mul(cfg.RateToLedger)
}

// Format converts amountLedger and renders it for the locale with CLDR
// symbol placement, rounded to the currency's own minor-unit scale.
func (t Table) Format(amountLedger decimal.Decimal, target, locale string) string {
	code := normalizeCode(target)
	if code == "" {
		code = Ledger
	}
	converted := t.Convert(amountLedger, code)
	amount, err := currency.NewAmount(converted.String(), code)
	if err != nil {
		return fmt.Sprintf("%s %s", code, converted.StringFixed(2))
	}
	return currency.NewFormatter(parseLocale(locale)).Format(amount.Round())
}

// Validate reports configs whose forward and reverse rates do not round-trip.
func (t Table) Validate() []error {
	var errs []error
	one := decimal.NewFromInt(1)
	for _, code := range t.order {
		cfg := t.byCode[code]
		if code == Ledger {
			continue
		}
		if cfg.RateToLedger.Sign() <= 0 || cfg.RateFromLedger.Sign() <= 0 {
			errs = append(errs, fmt.Errorf("currency %s: rates must be positive", code))
			continue
		}
		product := cfg.RateToLedger.Mul(cfg.RateFromLedger)
		if product.Sub(one).Abs().GreaterThan(roundTripTolerance) {
			errs = append(errs, fmt.Errorf("currency %s: rate round trip %s deviates from 1", code, product.StringFixed(4)))
		}
	}
	return errs
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func parseLocale(locale string) currency.Locale {
	trimmed := strings.TrimSpace(locale)
	switch strings.ToLower(trimmed) {
	case "":
		return currency.NewLocale("en")
	case "ar":
		return currency.NewLocale("ar-SA")
	case "en":
		return currency.NewLocale("en-US")
	}
	return currency.NewLocale(trimmed)
}
