package promotion

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/ishtar-commerce/internal/money"
)

var (
	// ErrInactive is returned when the promotion is switched off.
	ErrInactive = errors.New("promotion not active")
	// ErrNotStarted is returned before the promotion window opens.
	ErrNotStarted = errors.New("promotion not started")
	// ErrExpired is returned once the promotion window has closed.
	ErrExpired = errors.New("promotion expired")
	// ErrMinimumSpendUnmet indicates the cart subtotal is below the promotion floor.
	ErrMinimumSpendUnmet = errors.New("promotion minimum spend not met")
)

// Scope decides which products or carts a promotion targets.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeCategory Scope = "category"
	ScopeBrand    Scope = "brand"
	ScopeMinOrder Scope = "min_order"
)

// Kind is the discount arithmetic.
type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"

	kindLegacyPercentage Kind = "percentage_discount"
	kindLegacyFixed      Kind = "fixed_amount_discount"
)

// Normalize folds legacy aliases onto the canonical kinds.
func (k Kind) Normalize() Kind {
	switch Kind(strings.ToLower(string(k))) {
	case KindPercentage, kindLegacyPercentage:
		return KindPercentage
	case KindFixed, kindLegacyFixed:
		return KindFixed
	}
	return k
}

// Promotion is a marketing discount rule.
type Promotion struct {
	ID             string           `yaml:"id" json:"id" validate:"required"`
	Name           string           `yaml:"name" json:"name"`
	Scope          Scope            `yaml:"scope" json:"scope" validate:"required,oneof=all category brand min_order"`
	TargetID       string           `yaml:"target_id,omitempty" json:"targetId,omitempty"`
	TargetIDs      []string         `yaml:"target_ids,omitempty" json:"targetIds,omitempty"`
	Type           Kind             `yaml:"type" json:"type" validate:"required,oneof=percentage fixed percentage_discount fixed_amount_discount"`
	Value          *decimal.Decimal `yaml:"value,omitempty" json:"value,omitempty"`
	DiscountValue  *decimal.Decimal `yaml:"discount_value,omitempty" json:"discountValue,omitempty"`
	MinOrderAmount *decimal.Decimal `yaml:"min_order_amount,omitempty" json:"minOrderAmount,omitempty"`
	Active         bool             `yaml:"active" json:"active"`
	StartsAt       time.Time        `yaml:"starts_at,omitempty" json:"startsAt,omitempty"`
	EndsAt         time.Time        `yaml:"ends_at,omitempty" json:"endsAt,omitempty"`
}

// Amount returns the configured discount value, preferring Value over the
// legacy DiscountValue field.
func (p Promotion) Amount() (decimal.Decimal, bool) {
	switch {
	case p.Value != nil:
		return *p.Value, true
	case p.DiscountValue != nil:
		return *p.DiscountValue, true
	}
	return decimal.Zero, false
}

// Validate checks the flag and schedule at now.
func (p Promotion) Validate(now time.Time) error {
	if !p.Active {
		return ErrInactive
	}
	if !p.StartsAt.IsZero() && now.Before(p.StartsAt) {
		return ErrNotStarted
	}
	if !p.EndsAt.IsZero() && now.After(endOfDay(p.EndsAt)) {
		return ErrExpired
	}
	return nil
}

// ValidateCart is Validate plus the minimum order floor.
func (p Promotion) ValidateCart(now time.Time, subtotal decimal.Decimal) error {
	if err := p.Validate(now); err != nil {
		return err
	}
	if p.MinOrderAmount == nil || subtotal.LessThan(*p.MinOrderAmount) {
		return ErrMinimumSpendUnmet
	}
	return nil
}

// ActiveAt reports whether the promotion applies at now. Zero bounds are open.
func (p Promotion) ActiveAt(now time.Time) bool {
	return p.Validate(now) == nil
}

// endOfDay treats a date-only end bound as covering that whole day.
func endOfDay(t time.Time) time.Time {
	h, m, s := t.Clock()
	if h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 {
		return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t
}

func (p Promotion) targets(value string) bool {
	if value == "" {
		return false
	}
	if strings.EqualFold(p.TargetID, value) {
		return true
	}
	for _, id := range p.TargetIDs {
		if strings.EqualFold(id, value) {
			return true
		}
	}
	return false
}

// Product is the subset of catalog data promotions match on.
type Product struct {
	ID       string          `json:"id"`
	Category string          `json:"category"`
	Brand    string          `json:"brand"`
	Price    decimal.Decimal `json:"price"`
}

// Engine matches and applies promotions. The zero value uses time.Now.
type Engine struct {
	Now func() time.Time
}

// NewEngine returns an Engine with the provided clock.
func NewEngine(now func() time.Time) *Engine {
	return &Engine{Now: now}
}

func (e *Engine) now() time.Time {
	if e == nil || e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Match returns the first active promotion in list order that targets the
// product. Cart-level promotions never match individual products.
func (e *Engine) Match(product Product, promotions []Promotion) (Promotion, bool) {
	now := e.now()
	for _, p := range promotions {
		if !p.ActiveAt(now) {
			continue
		}
		switch p.Scope {
		case ScopeAll:
			return p, true
		case ScopeCategory:
			if p.targets(product.Category) {
				return p, true
			}
		case ScopeBrand:
			if p.TargetID != "" && strings.EqualFold(p.TargetID, product.Brand) {
				return p, true
			}
		}
	}
	return Promotion{}, false
}

// ApplyDiscount returns price after promo. A nil promotion or one without a
// usable value leaves the price unchanged. The result is never negative.
func ApplyDiscount(price decimal.Decimal, promo *Promotion) decimal.Decimal {
	if promo == nil {
		return price
	}
	value, ok := promo.Amount()
	if !ok || value.Sign() < 0 {
		return price
	}
	var out decimal.Decimal
	switch promo.Type.Normalize() {
	case KindPercentage:
		out = price.Sub(money.Percent(price, value))
	case KindFixed:
		out = price.Sub(value)
	default:
		return price
	}
	if out.Sign() < 0 {
		return decimal.Zero
	}
	return out
}

// CartDiscount returns the discount from the first active min_order promotion
// whose floor the subtotal reaches. The discount is capped at subtotal.
func (e *Engine) CartDiscount(subtotal decimal.Decimal, promotions []Promotion) (decimal.Decimal, *Promotion) {
	now := e.now()
	for i := range promotions {
		p := promotions[i]
		if p.Scope != ScopeMinOrder || p.ValidateCart(now, subtotal) != nil {
			continue
		}
		value, ok := p.Amount()
		if !ok || value.Sign() <= 0 {
			continue
		}
		discount := value
		if p.Type.Normalize() == KindPercentage {
			discount = money.Percent(subtotal, value)
		}
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
		return discount, &p
	}
	return decimal.Zero, nil
}
