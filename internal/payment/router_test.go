package payment_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ishtar-commerce/internal/payment"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func gatewayIDs(gws []payment.Gateway) []string {
	return ids(gws, func(g payment.Gateway) string { return g.ID })
}

func methodCodes(ms []payment.Method) []string {
	return ids(ms, func(m payment.Method) string { return m.Code })
}

func methodIDs(ms []payment.Method) []string {
	return ids(ms, func(m payment.Method) string { return m.ID })
}

func surcharge(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func storefrontRouter() *payment.Router {
	return payment.NewRouter(payment.Config{
		Gateways: []payment.Gateway{
			{ID: "gw_sa_moyasar", SupportedCurrencies: []string{"SAR"}, SupportedCountries: []string{"SA"}, SupportedChannels: []string{"native", "shopify"}, MinAmount: dec("1"), MaxAmount: dec("100000"), Active: true, Priority: 1, FeeFixed: dec("1"), FeePercent: dec("1.5")},
			{ID: "gw_ae_checkout", SupportedCurrencies: []string{"AED", "USD"}, SupportedCountries: []string{"AE"}, SupportedChannels: []string{"native"}, MinAmount: dec("50"), MaxAmount: dec("500000"), Active: true, Priority: 1, FeeFixed: dec("1.5"), FeePercent: dec("2.9")},
			{ID: "gw_kw_tap", SupportedCurrencies: []string{"KWD", "SAR", "BHD"}, SupportedCountries: []string{"KW", "BH"}, SupportedChannels: []string{"native"}, MinAmount: dec("50"), MaxAmount: dec("50000"), Active: true, Priority: 1, FeeFixed: dec("2"), FeePercent: dec("2.5")},
			{ID: "gw_regional_tabby", SupportedCurrencies: []string{"SAR", "AED", "KWD", "BHD"}, SupportedCountries: []string{"SA", "AE", "KW", "BH"}, SupportedChannels: []string{"native", "shopify"}, MinAmount: dec("300"), MaxAmount: dec("5000"), AllowBNPL: true, Active: true, Priority: 2, FeeFixed: dec("1"), FeePercent: dec("6.5")},
			{ID: "gw_global_stripe", SupportedCurrencies: []string{"USD", "EUR", "GBP", "QAR", "OMR"}, SupportedCountries: []string{"Global", "QA", "OM", "USA"}, SupportedChannels: []string{"native"}, MinAmount: dec("50"), MaxAmount: dec("500000"), Active: true, Priority: 10, FeeFixed: dec("1.5"), FeePercent: dec("3.5")},
			{ID: "gw_internal_cod", SupportedCurrencies: []string{"SAR", "AED", "KWD"}, SupportedCountries: []string{"SA", "AE", "KW"}, SupportedChannels: []string{"native"}, MinAmount: dec("0"), MaxAmount: dec("2000"), AllowCOD: true, Active: true, Priority: 5, FeeFixed: dec("25"), FeePercent: dec("0")},
		},
		Methods: []payment.Method{
			{ID: "pm_mada", Code: "mada", GatewayID: "gw_sa_moyasar", Active: true},
			{ID: "pm_card_sa", Code: "card", GatewayID: "gw_sa_moyasar", Active: true},
			{ID: "pm_applepay_sa", Code: "applepay", GatewayID: "gw_sa_moyasar", Active: true},
			{ID: "pm_card_ae", Code: "card", GatewayID: "gw_ae_checkout", Active: true},
			{ID: "pm_applepay_ae", Code: "applepay", GatewayID: "gw_ae_checkout", Active: true},
			{ID: "pm_knet", Code: "knet", GatewayID: "gw_kw_tap", Active: true},
			{ID: "pm_card_kw", Code: "card", GatewayID: "gw_kw_tap", Active: true},
			{ID: "pm_tabby_4", Code: "bnpl", GatewayID: "gw_regional_tabby", Active: true},
			{ID: "pm_cod_cash", Code: "cod", GatewayID: "gw_internal_cod", Active: true, Surcharge: surcharge("25")},
			{ID: "pm_card_global", Code: "card", GatewayID: "gw_global_stripe", Active: true},
		},
	})
}

func TestSelectGatewaysAmountBoundsInclusive(t *testing.T) {
	t.Parallel()

	router := payment.NewRouter(payment.Config{
		Gateways: []payment.Gateway{{
			ID: "gw_bounded", SupportedCurrencies: []string{"SAR"}, SupportedCountries: []string{"SA"},
			MinAmount: dec("50"), MaxAmount: dec("500"), Active: true, Priority: 1,
		}},
	})

	cases := map[string]bool{"49": false, "50": true, "500": true, "501": false}
	for amount, want := range cases {
		got := router.SelectGateways(payment.RoutingContext{Country: "SA", Currency: "SAR", OrderAmount: dec(amount), RiskLevel: payment.RiskLow})
		require.Equal(t, want, len(got) == 1, "amount %s", amount)
	}
}

func TestSelectGatewaysHighRiskExcludesCODCapable(t *testing.T) {
	t.Parallel()

	router := storefrontRouter()
	ctx := payment.RoutingContext{Country: "SA", Currency: "SAR", OrderAmount: dec("1000"), RiskLevel: payment.RiskLow}
	require.Contains(t, gatewayIDs(router.SelectGateways(ctx)), "gw_internal_cod")

	ctx.RiskLevel = payment.RiskHigh
	selected := router.SelectGateways(ctx)
	require.NotContains(t, gatewayIDs(selected), "gw_internal_cod")
	for _, gw := range selected {
		require.False(t, gw.AllowCOD)
	}
}

func TestSelectGatewaysSortedByPriority(t *testing.T) {
	t.Parallel()

	router := storefrontRouter()
	got := router.SelectGateways(payment.RoutingContext{Country: "Saudi Arabia", Currency: "SAR", OrderAmount: dec("1000"), RiskLevel: payment.RiskLow})
	require.Equal(t, []string{"gw_sa_moyasar", "gw_regional_tabby", "gw_internal_cod"}, gatewayIDs(got))
}

func TestSelectGatewaysChannelAndGlobalWildcard(t *testing.T) {
	t.Parallel()

	router := storefrontRouter()
	got := router.SelectGateways(payment.RoutingContext{Country: "Germany", Currency: "EUR", OrderAmount: dec("800"), Channel: "native"})
	require.Equal(t, []string{"gw_global_stripe"}, gatewayIDs(got))

	got = router.SelectGateways(payment.RoutingContext{Country: "Germany", Currency: "EUR", OrderAmount: dec("800"), Channel: "shopify"})
	require.Empty(t, got)
}

func TestMethodsKNETOnlyInKuwait(t *testing.T) {
	t.Parallel()

	router := storefrontRouter()
	kuwait := payment.RoutingContext{Country: "Kuwait", Currency: "KWD", OrderAmount: dec("1000"), RiskLevel: payment.RiskLow}
	require.Contains(t, methodCodes(router.Methods(kuwait)), "knet")

	saudi := kuwait
	saudi.Country = "Saudi Arabia"
	require.NotContains(t, methodCodes(router.Methods(saudi)), "knet")
}

func TestMethodsGenericCodesDedupByPriority(t *testing.T) {
	t.Parallel()

	router := storefrontRouter()
	methods := router.Methods(payment.RoutingContext{Country: "AE", Currency: "USD", OrderAmount: dec("1000"), RiskLevel: payment.RiskLow})
	got := methodIDs(methods)
	require.Contains(t, got, "pm_card_ae")
	require.NotContains(t, got, "pm_card_global")

	cards := 0
	for _, m := range methods {
		if m.Code == payment.CodeCard {
			cards++
		}
	}
	require.Equal(t, 1, cards)
}

func TestMethodsCODRules(t *testing.T) {
	t.Parallel()

	router := storefrontRouter()
	ctx := payment.RoutingContext{Country: "SA", Currency: "SAR", OrderAmount: dec("2000"), RiskLevel: payment.RiskMedium}
	require.Contains(t, methodIDs(router.Methods(ctx)), "pm_cod_cash")

	ctx.OrderAmount = dec("2000.01")
	require.NotContains(t, methodIDs(router.Methods(ctx)), "pm_cod_cash")

	ctx.OrderAmount = dec("100")
	ctx.RiskLevel = payment.RiskHigh
	require.NotContains(t, methodIDs(router.Methods(ctx)), "pm_cod_cash")
}

func TestMethodsBNPLBand(t *testing.T) {
	t.Parallel()

	router := storefrontRouter()
	base := payment.RoutingContext{Country: "SA", Currency: "SAR", RiskLevel: payment.RiskLow}

	for amount, want := range map[string]bool{"299": false, "300": true, "5000": true, "5001": false} {
		ctx := base
		ctx.OrderAmount = dec(amount)
		require.Equal(t, want, contains(methodCodes(router.Methods(ctx)), "bnpl"), "amount %s", amount)
	}
}

func TestMethodsApplePayNeedsCapableClient(t *testing.T) {
	t.Parallel()

	router := storefrontRouter()
	ctx := payment.RoutingContext{Country: "SA", Currency: "SAR", OrderAmount: dec("400"), RiskLevel: payment.RiskLow}
	require.NotContains(t, methodCodes(router.Methods(ctx)), "applepay")

	ctx.Client.UserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"
	require.Contains(t, methodCodes(router.Methods(ctx)), "applepay")

	disabled := false
	ctx.Client.ApplePayCapable = &disabled
	require.NotContains(t, methodCodes(router.Methods(ctx)), "applepay")
}

func TestMethodsPolicyOverride(t *testing.T) {
	t.Parallel()

	policy := payment.DefaultPolicy()
	policy.CODMaxAmount = dec("500")
	base := storefrontRouter()
	gw, ok := base.Gateway("gw_internal_cod")
	require.True(t, ok)

	router := payment.NewRouter(payment.Config{
		Gateways: []payment.Gateway{gw},
		Methods:  []payment.Method{{ID: "pm_cod_cash", Code: "cod", GatewayID: "gw_internal_cod", Active: true}},
		Policy:   &policy,
	})
	ctx := payment.RoutingContext{Country: "SA", Currency: "SAR", OrderAmount: dec("600"), RiskLevel: payment.RiskLow}
	require.Empty(t, router.Methods(ctx))
}

func TestFee(t *testing.T) {
	t.Parallel()

	router := storefrontRouter()
	gw, ok := router.Gateway("gw_sa_moyasar")
	require.True(t, ok)
	require.True(t, payment.Fee(gw, dec("1000")).Equal(dec("16")))
}

func TestThresholdRiskAssessor(t *testing.T) {
	t.Parallel()

	assessor := payment.DefaultRiskAssessor()
	cases := []struct {
		country string
		amount  string
		want    payment.RiskLevel
	}{
		{"SA", "100", payment.RiskLow},
		{"SA", "5000", payment.RiskLow},
		{"SA", "6000", payment.RiskMedium},
		{"Saudi Arabia", "20000", payment.RiskMedium},
		{"AE", "10001", payment.RiskHigh},
		{"AE", "10000", payment.RiskMedium},
	}
	for _, tc := range cases {
		got, err := assessor.Assess(context.Background(), payment.RoutingContext{Country: tc.country, OrderAmount: dec(tc.amount)})
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "%s %s", tc.country, tc.amount)
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
