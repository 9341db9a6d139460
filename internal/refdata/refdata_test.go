package refdata_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ishtar-commerce/internal/refdata"
)

func TestDefaultTablesLoadCleanly(t *testing.T) {
	t.Parallel()

	tables, err := refdata.Default()
	require.NoError(t, err)
	require.Empty(t, tables.Warnings())

	require.Len(t, tables.Currencies, 9)
	require.Len(t, tables.Zones, 4)
	require.Len(t, tables.Carriers, 4)
	require.Len(t, tables.ShippingMethods, 4)
	require.Len(t, tables.ZoneRules, 7)
	require.Len(t, tables.Gateways, 6)
	require.Len(t, tables.PaymentMethods, 10)
	require.Len(t, tables.Promotions, 2)
	require.NotEmpty(t, tables.Products)

	rule := tables.ZoneRules[0]
	require.Equal(t, "SA_MAIN", rule.ZoneCode)
	require.NotNil(t, rule.FreeShippingThreshold)
	require.Equal(t, "500", rule.FreeShippingThreshold.String())

	promo := tables.Promotions[0]
	require.Equal(t, 2024, promo.StartsAt.Year())
	amount, ok := promo.Amount()
	require.True(t, ok)
	require.Equal(t, "15", amount.String())

	usd, ok := tables.CurrencyTable().Lookup("USD")
	require.True(t, ok)
	require.Equal(t, "3.75", usd.RateToLedger.String())
}

func TestLoadReportsReferentialGapsAsWarnings(t *testing.T) {
	t.Parallel()

	doc := `
currencies:
  - { code: SAR, rate_to_ledger: 1, rate_from_ledger: 1, enabled: true }
  - { code: GBP, rate_to_ledger: 4.75, rate_from_ledger: 0.5, enabled: true }
carriers:
  - { id: cr_a, name: A, tracking_url_pattern: "https://a.example/track", active: true }
shipping_methods:
  - { id: sm_a, carrier_id: cr_missing, type: standard, est_min_days: 1, est_max_days: 2 }
zone_rules:
  - { zone_code: SA_MAIN, method_id: sm_missing, base_fee: 10, per_kg_fee: 1, active: true }
payment_methods:
  - { id: pm_x, code: card, gateway_id: gw_missing, active: true }
`
	tables, err := refdata.Load(strings.NewReader(doc))
	require.NoError(t, err)

	warnings := strings.Join(tables.Warnings(), "\n")
	require.Contains(t, warnings, "GBP")
	require.Contains(t, warnings, "cr_a tracking pattern")
	require.Contains(t, warnings, "unknown carrier cr_missing")
	require.Contains(t, warnings, "sm_missing")
	require.Contains(t, warnings, "unknown zone")
	require.Contains(t, warnings, "unknown gateway gw_missing")
}

func TestLoadRejectsInvalidTables(t *testing.T) {
	t.Parallel()

	_, err := refdata.Load(strings.NewReader("shipping_methods:\n  - { id: sm_a, carrier_id: cr_a, type: teleport }\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "validate")

	_, err = refdata.Load(strings.NewReader("gateways:\n  - { id: gw, surprise: true }\n"))
	require.Error(t, err)

	_, err = refdata.Load(strings.NewReader(""))
	require.ErrorIs(t, err, refdata.ErrEmpty)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zones:\n  - { code: ZZ, countries: [ZZ] }\n"), 0o600))

	tables, err := refdata.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, tables.Zones, 1)

	_, err = refdata.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
