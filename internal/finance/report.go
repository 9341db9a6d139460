package finance

import "github.com/shopspring/decimal"

// Report aggregates profit across a set of orders.
type Report struct {
	Orders             int             `json:"orders"`
	Revenue            decimal.Decimal `json:"revenue"`
	Cost               decimal.Decimal `json:"cost"`
	NetProfit          decimal.Decimal `json:"netProfit"`
	MarginPercent      decimal.Decimal `json:"marginPercent"`
	AverageOrderProfit decimal.Decimal `json:"averageOrderProfit"`
	Breakdown          Breakdown       `json:"breakdown"`
	LossMaking         []string        `json:"lossMaking,omitempty"`
}

// Summarize computes per-order profit and totals it.
func (c *Calculator) Summarize(orders []Order) (Report, []Profit) {
	report := Report{
		Revenue:            decimal.Zero,
		Cost:               decimal.Zero,
		NetProfit:          decimal.Zero,
		MarginPercent:      decimal.Zero,
		AverageOrderProfit: decimal.Zero,
		Breakdown: Breakdown{
			ProductCost:        decimal.Zero,
			PaymentFees:        decimal.Zero,
			ShippingCostActual: decimal.Zero,
			ShippingRevenue:    decimal.Zero,
		},
	}
	profits := make([]Profit, 0, len(orders))
	for _, o := range orders {
		p := c.OrderProfit(o)
		profits = append(profits, p)

		report.Orders++
		report.Revenue = report.Revenue.Add(p.Revenue)
		report.Cost = report.Cost.Add(p.Cost)
		report.NetProfit = report.NetProfit.Add(p.NetProfit)
		report.Breakdown.ProductCost = report.Breakdown.ProductCost.Add(p.Breakdown.ProductCost)
		report.Breakdown.PaymentFees = report.Breakdown.PaymentFees.Add(p.Breakdown.PaymentFees)
		report.Breakdown.ShippingCostActual = report.Breakdown.ShippingCostActual.Add(p.Breakdown.ShippingCostActual)
		report.Breakdown.ShippingRevenue = report.Breakdown.ShippingRevenue.Add(p.Breakdown.ShippingRevenue)
		if p.NetProfit.Sign() < 0 {
			report.LossMaking = append(report.LossMaking, p.OrderID)
		}
	}
	if !report.Revenue.IsZero() {
		report.MarginPercent = report.NetProfit.Div(report.Revenue).Mul(hundred)
	}
	if report.Orders > 0 {
		report.AverageOrderProfit = report.NetProfit.Div(decimal.NewFromInt(int64(report.Orders)))
	}
	return report, profits
}
