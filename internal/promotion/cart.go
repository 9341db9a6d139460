package promotion

import "github.com/shopspring/decimal"

// Line is a cart line priced in the ledger currency.
type Line struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// PricedLine is a Line after item-level promotions.
type PricedLine struct {
	Line
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	PromotionID string          `json:"promotionId,omitempty"`
}

// CartSummary aggregates computed cart totals before shipping.
type CartSummary struct {
	Lines           []PricedLine    `json:"lines"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ItemSavings     decimal.Decimal `json:"itemSavings"`
	Discount        decimal.Decimal `json:"discount"`
	CartPromotionID string          `json:"cartPromotionId,omitempty"`
	Total           decimal.Decimal `json:"total"`
}

// PriceCart applies exactly one kind of promotion. A min_order promotion
// reached by the list-price subtotal discounts the whole cart and lines stay
// at list price. Otherwise each line gets its first matching item promotion.
func (e *Engine) PriceCart(lines []Line, promotions []Promotion) CartSummary {
	summary := CartSummary{
		Lines:       make([]PricedLine, 0, len(lines)),
		Subtotal:    decimal.Zero,
		ItemSavings: decimal.Zero,
		Discount:    decimal.Zero,
	}
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			continue
		}
		lineTotal := ln.Product.Price.Mul(decimal.NewFromInt(int64(ln.Quantity)))
		summary.Subtotal = summary.Subtotal.Add(lineTotal)
		summary.Lines = append(summary.Lines, PricedLine{Line: ln, UnitPrice: ln.Product.Price, LineTotal: lineTotal})
	}

	if discount, promo := e.CartDiscount(summary.Subtotal, promotions); promo != nil {
		summary.Discount = discount
		summary.CartPromotionID = promo.ID
		summary.Total = summary.Subtotal.Sub(discount)
		if summary.Total.Sign() < 0 {
			summary.Total = decimal.Zero
		}
		return summary
	}

	summary.Subtotal = decimal.Zero
	for i := range summary.Lines {
		priced := &summary.Lines[i]
		if promo, ok := e.Match(priced.Product, promotions); ok {
			qty := decimal.NewFromInt(int64(priced.Quantity))
			priced.UnitPrice = ApplyDiscount(priced.Product.Price, &promo)
			priced.PromotionID = promo.ID
			priced.LineTotal = priced.UnitPrice.Mul(qty)
			summary.ItemSavings = summary.ItemSavings.Add(priced.Product.Price.Sub(priced.UnitPrice).Mul(qty))
		}
		summary.Subtotal = summary.Subtotal.Add(priced.LineTotal)
	}
	summary.Total = summary.Subtotal
	return summary
}
