package finance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ishtar-commerce/internal/finance"
	"github.com/noah-isme/ishtar-commerce/internal/money"
	"github.com/noah-isme/ishtar-commerce/internal/payment"
	"github.com/noah-isme/ishtar-commerce/internal/shipping"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

var clock = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

func newCalculator() *finance.Calculator {
	currencies := money.NewTable([]money.CurrencyConfig{
		{Code: "SAR", RateToLedger: dec("1"), RateFromLedger: dec("1")},
		{Code: "KWD", RateToLedger: dec("12.20"), RateFromLedger: dec("0.082")},
	})
	router := payment.NewRouter(payment.Config{Gateways: []payment.Gateway{
		{ID: "gw_sa_moyasar", FeeFixed: dec("1"), FeePercent: dec("1.5"), Active: true},
	}})
	return finance.NewCalculator(finance.Config{
		Products: []finance.Product{
			{ID: "p1", SKU: "CH-N5-30", Name: "N°5 Parfum", Price: dec("506"), SupplierCurrency: "KWD", SupplierBaseCost: dec("25")},
			{ID: "p2", SKU: "LL-S33-100", Name: "Santal 33", Price: dec("1050"), SupplierCurrency: "SAR", SupplierBaseCost: dec("650"), TotalCostLedger: decPtr("650")},
		},
		Currencies: currencies,
		Gateways:   router,
		Now:        clock,
	})
}

func TestLandedCost(t *testing.T) {
	t.Parallel()

	calc := newCalculator()
	computed := calc.LandedCost(finance.Product{SupplierCurrency: "KWD", SupplierBaseCost: dec("20"), SupplierShipping: dec("3"), SupplierCustoms: dec("2")})
	require.True(t, computed.Equal(dec("305")), computed.String())

	precomputed := calc.LandedCost(finance.Product{SupplierCurrency: "KWD", SupplierBaseCost: dec("20"), TotalCostLedger: decPtr("999")})
	require.True(t, precomputed.Equal(dec("999")))
}

func TestOrderProfit(t *testing.T) {
	t.Parallel()

	calc := newCalculator()
	order := finance.Order{
		ID:    "ORD-1",
		Total: dec("2000"),
		Items: []finance.OrderItem{
			{SKU: "CH-N5-30", Quantity: 2, UnitPrice: dec("506")},
			{ProductName: "santal 33", Quantity: 1, UnitPrice: dec("1050")},
			{SKU: "unknown", ProductName: "Mystery", Quantity: 1, UnitPrice: dec("100")},
		},
		PaymentGatewayID: "gw_sa_moyasar",
		ShippingMethod:   shipping.MethodExpress,
		ShippingCharged:  dec("45"),
	}
	itemsBefore := append([]finance.OrderItem(nil), order.Items...)

	profit := calc.OrderProfit(order)

	// 2*305 + 650 + 0.7*100
	require.True(t, profit.Breakdown.ProductCost.Equal(dec("1330")), profit.Breakdown.ProductCost.String())
	// 1 + 2000*1.5%
	require.True(t, profit.Breakdown.PaymentFees.Equal(dec("31")))
	// 45 + 4 units * 2
	require.True(t, profit.Breakdown.ShippingCostActual.Equal(dec("53")))
	require.True(t, profit.Breakdown.ShippingRevenue.Equal(dec("45")))
	require.True(t, profit.Cost.Equal(dec("1414")))
	require.True(t, profit.NetProfit.Equal(dec("586")))
	require.True(t, profit.MarginPercent.Equal(dec("29.3")), profit.MarginPercent.String())
	require.Equal(t, "ORD-1", profit.OrderID)
	require.Equal(t, clock(), profit.CalculatedAt)
	require.Equal(t, itemsBefore, order.Items)
}

func TestOrderProfitFallbackFeeAndZeroRevenue(t *testing.T) {
	t.Parallel()

	calc := newCalculator()
	profit := calc.OrderProfit(finance.Order{ID: "ORD-0", Total: decimal.Zero, PaymentGatewayID: "gw_retired"})
	require.True(t, profit.Breakdown.PaymentFees.Equal(dec("1")))
	require.True(t, profit.Breakdown.ShippingCostActual.Equal(dec("25")))
	require.True(t, profit.MarginPercent.IsZero())
	require.True(t, profit.NetProfit.Equal(dec("-26")))
}

func TestActualShippingCostTiers(t *testing.T) {
	t.Parallel()

	require.True(t, finance.ActualShippingCost(shipping.MethodStandard, 1).Equal(dec("27")))
	require.True(t, finance.ActualShippingCost(shipping.MethodExpress, 0).Equal(dec("45")))
	require.True(t, finance.ActualShippingCost(shipping.MethodVIP, 3).Equal(dec("126")))
	require.True(t, finance.ActualShippingCost("drone", 1).Equal(dec("27")))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	calc := newCalculator()
	report, profits := calc.Summarize([]finance.Order{
		{ID: "A", Total: dec("1000"), Items: []finance.OrderItem{{SKU: "LL-S33-100", Quantity: 1}}, PaymentGatewayID: "gw_sa_moyasar"},
		{ID: "B", Total: dec("100"), Items: []finance.OrderItem{{SKU: "LL-S33-100", Quantity: 1}}, PaymentGatewayID: "gw_sa_moyasar"},
	})
	require.Len(t, profits, 2)
	require.Equal(t, 2, report.Orders)
	require.True(t, report.Revenue.Equal(dec("1100")))
	require.Equal(t, []string{"B"}, report.LossMaking)
	require.True(t, report.NetProfit.Equal(profits[0].NetProfit.Add(profits[1].NetProfit)))
}
