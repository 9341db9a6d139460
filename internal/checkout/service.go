package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/ishtar-commerce/internal/cache"
	"github.com/noah-isme/ishtar-commerce/internal/common"
	"github.com/noah-isme/ishtar-commerce/internal/money"
	"github.com/noah-isme/ishtar-commerce/internal/obs"
	"github.com/noah-isme/ishtar-commerce/internal/payment"
	"github.com/noah-isme/ishtar-commerce/internal/promotion"
	"github.com/noah-isme/ishtar-commerce/internal/resilience"
	"github.com/noah-isme/ishtar-commerce/internal/shipping"
)

var (
	// ErrNotConfigured is returned when a required collaborator is missing.
	ErrNotConfigured = errors.New("checkout service not configured")
	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("invalid checkout request")
	// ErrShippingMethodUnavailable is returned when the requested shipping
	// method does not serve the destination.
	ErrShippingMethodUnavailable = errors.New("shipping method unavailable for destination")
	// ErrPaymentMethodUnavailable is returned when a method outside the quote is selected.
	ErrPaymentMethodUnavailable = errors.New("payment method unavailable for quote")
)

// DefaultGiftWrapFee is charged when gift wrapping is requested.
var DefaultGiftWrapFee = decimal.NewFromInt(35)

// Block reasons reported on a quote that cannot be paid.
const (
	BlockNoShipping = "no_shipping_options"
	BlockNoPayment  = "no_payment_methods"
)

// Line is a cart line priced in the ledger currency.
type Line struct {
	ProductID string           `json:"productId" validate:"required"`
	Name      string           `json:"name"`
	Category  string           `json:"category"`
	Brand     string           `json:"brand"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	Quantity  int              `json:"quantity" validate:"gte=1"`
	WeightKg  *decimal.Decimal `json:"weightKg,omitempty"`
}

// Request is everything needed to quote a checkout.
type Request struct {
	Country          string             `json:"country" validate:"required"`
	City             string             `json:"city"`
	Currency         string             `json:"currency" validate:"required,len=3"`
	Channel          string             `json:"channel"`
	Locale           string             `json:"locale"`
	Items            []Line             `json:"items" validate:"required,min=1,dive"`
	ShippingMethodID string             `json:"shippingMethodId"`
	GiftWrap         bool               `json:"giftWrap"`
	RiskLevel        payment.RiskLevel  `json:"riskLevel" validate:"omitempty,oneof=low medium high"`
	Client           payment.ClientInfo `json:"client"`
}

// Quote is the priced result of a checkout request. Amounts are in the
// ledger currency; Display carries the customer-facing total.
type Quote struct {
	Zone             string                `json:"zone"`
	Cart             promotion.CartSummary `json:"cart"`
	ShippingOptions  []shipping.Option     `json:"shippingOptions"`
	SelectedShipping *shipping.Option      `json:"selectedShipping,omitempty"`
	ShippingCost     decimal.Decimal       `json:"shippingCost"`
	GiftWrapFee      decimal.Decimal       `json:"giftWrapFee"`
	Total            decimal.Decimal       `json:"total"`
	Display          money.Money           `json:"display"`
	DisplayFormatted string                `json:"displayFormatted"`
	RiskLevel        payment.RiskLevel     `json:"riskLevel"`
	Gateways         []payment.Gateway     `json:"gateways"`
	PaymentMethods   []payment.Method      `json:"paymentMethods"`
	PaymentBlocked   bool                  `json:"paymentBlocked"`
	BlockReason      string                `json:"blockReason,omitempty"`

	SelectedMethodID string          `json:"selectedMethodId,omitempty"`
	Surcharge        decimal.Decimal `json:"surcharge"`
	PayableTotal     decimal.Decimal `json:"payableTotal"`
}

// WithMethod selects a payment method from the quote and adds its surcharge
// to the payable total.
func (q Quote) WithMethod(id string) (Quote, error) {
	for _, m := range q.PaymentMethods {
		if m.ID != id {
			continue
		}
		q.SelectedMethodID = m.ID
		q.Surcharge = decimal.Zero
		if m.Surcharge != nil && m.Surcharge.Sign() > 0 {
			q.Surcharge = *m.Surcharge
		}
		q.PayableTotal = q.Total.Add(q.Surcharge)
		return q, nil
	}
	return q, fmt.Errorf("%w: %s", ErrPaymentMethodUnavailable, id)
}

// Service orchestrates promotions, shipping and payment routing into a quote.
type Service struct {
	Shipping    *shipping.Calculator
	Payments    *payment.Router
	Promotions  *promotion.Engine
	PromoList   []promotion.Promotion
	Currencies  money.Table
	Risk        payment.RiskAssessor
	Cache       *cache.JSON
	GiftWrapFee *decimal.Decimal
	Validate    *validator.Validate
	Logger      zerolog.Logger

	// CacheBreaker skips the cache after repeated Redis failures.
	CacheBreaker *resilience.Breaker
}

func (s *Service) giftWrapFee() decimal.Decimal {
	if s.GiftWrapFee != nil {
		return *s.GiftWrapFee
	}
	return DefaultGiftWrapFee
}

func (s *Service) validate(req Request) error {
	v := s.Validate
	if v == nil {
		v = common.Validator()
	}
	if err := v.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// Quote prices a checkout end to end. The total used for gateway amount
// bounds includes shipping and gift wrapping.
func (s *Service) Quote(ctx context.Context, req Request) (Quote, error) {
	ctx, span := otel.Tracer("checkout.Service").Start(ctx, "CheckoutService.Quote")
	defer span.End()

	start := time.Now()
	outcome := "error"
	zone := "unknown"
	defer func() {
		span.SetAttributes(
			attribute.String("checkout.zone", zone),
			attribute.String("checkout.outcome", outcome),
			attribute.Float64("checkout.duration_ms", obs.DurationMillis(time.Since(start))),
		)
		if obs.CheckoutQuoteTotal != nil {
			obs.CheckoutQuoteTotal.WithLabelValues(zone, outcome).Inc()
		}
		if obs.CheckoutQuoteLatency != nil {
			obs.CheckoutQuoteLatency.WithLabelValues(outcome).Observe(obs.DurationMillis(time.Since(start)))
		}
	}()

	if s == nil || s.Shipping == nil || s.Payments == nil {
		return Quote{}, ErrNotConfigured
	}
	if err := s.validate(req); err != nil {
		outcome = "invalid"
		span.SetStatus(codes.Error, "invalid request")
		return Quote{}, err
	}

	lines := make([]promotion.Line, 0, len(req.Items))
	items := make([]shipping.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, promotion.Line{
			Product: promotion.Product{
				ID:       it.ProductID,
				Category: it.Category,
				Brand:    it.Brand,
				Price:    it.UnitPrice,
			},
			Quantity: it.Quantity,
		})
		items = append(items, shipping.CartItem{Quantity: it.Quantity, WeightKg: it.WeightKg})
	}
	cart := s.Promotions.PriceCart(lines, s.PromoList)

	q := Quote{Cart: cart, GiftWrapFee: decimal.Zero, ShippingCost: decimal.Zero, Surcharge: decimal.Zero}
	q.Zone = s.Shipping.ResolveZone(req.Country, req.City)
	zone = q.Zone
	q.ShippingOptions = s.shippingOptions(ctx, q.Zone, cart.Total, items)

	if len(q.ShippingOptions) > 0 {
		selected, err := pickShipping(q.ShippingOptions, req.ShippingMethodID)
		if err != nil {
			outcome = "invalid"
			span.RecordError(err)
			return Quote{}, err
		}
		q.SelectedShipping = &selected
		q.ShippingCost = selected.Cost
	}
	if req.GiftWrap {
		q.GiftWrapFee = s.giftWrapFee()
	}
	q.Total = cart.Total.Add(q.ShippingCost).Add(q.GiftWrapFee)
	q.PayableTotal = q.Total

	rc := payment.RoutingContext{
		Country:     req.Country,
		Currency:    req.Currency,
		OrderAmount: q.Total,
		Channel:     req.Channel,
		RiskLevel:   req.RiskLevel,
		Client:      req.Client,
	}
	if rc.RiskLevel == "" {
		rc.RiskLevel = s.assessRisk(ctx, rc)
	}
	q.RiskLevel = rc.RiskLevel
	q.Gateways = s.Payments.SelectGateways(rc)
	q.PaymentMethods = s.Payments.Methods(rc)
	if obs.PaymentMethodsOffered != nil {
		obs.PaymentMethodsOffered.Observe(float64(len(q.PaymentMethods)))
	}

	switch {
	case len(q.ShippingOptions) == 0:
		q.PaymentBlocked = true
		q.BlockReason = BlockNoShipping
	case len(q.PaymentMethods) == 0:
		q.PaymentBlocked = true
		q.BlockReason = BlockNoPayment
	}

	q.Display = money.Money{Amount: s.Currencies.Convert(q.Total, req.Currency), Currency: req.Currency}
	q.DisplayFormatted = s.Currencies.Format(q.Total, req.Currency, req.Locale)

	outcome = "ok"
	if q.PaymentBlocked {
		outcome = "blocked"
		s.Logger.Info().Str("zone", q.Zone).Str("country", req.Country).Str("currency", req.Currency).Str("reason", q.BlockReason).Msg("checkout quote blocked")
	}
	span.SetAttributes(
		attribute.String("checkout.total", q.Total.String()),
		attribute.Int("checkout.payment_methods", len(q.PaymentMethods)),
		attribute.String("checkout.risk", string(q.RiskLevel)),
	)
	return q, nil
}

func (s *Service) assessRisk(ctx context.Context, rc payment.RoutingContext) payment.RiskLevel {
	if s.Risk == nil {
		return payment.RiskLow
	}
	level, err := s.Risk.Assess(ctx, rc)
	if err != nil || !level.Valid() {
		s.Logger.Warn().Err(err).Str("level", string(level)).Msg("risk assessment failed, assuming low")
		return payment.RiskLow
	}
	return level
}

func (s *Service) shippingOptions(ctx context.Context, zone string, subtotal decimal.Decimal, items []shipping.CartItem) []shipping.Option {
	if !s.Cache.Enabled() {
		return s.Shipping.OptionsForZone(zone, subtotal, items)
	}
	key := cache.KeyShippingOptions(zone, shipping.TotalWeight(items), subtotal)
	var cached []shipping.Option
	var found bool
	err := s.CacheBreaker.Do(ctx, func(ctx context.Context) error {
		var getErr error
		found, getErr = s.Cache.GetJSON(ctx, key, &cached)
		return getErr
	})
	switch {
	case errors.Is(err, resilience.ErrOpenCircuit):
		countCache("bypass")
		return s.Shipping.OptionsForZone(zone, subtotal, items)
	case err != nil:
		s.Logger.Warn().Err(err).Str("key", key).Msg("shipping options cache read failed")
		countCache("error")
		return s.Shipping.OptionsForZone(zone, subtotal, items)
	case found:
		countCache("hit")
		return cached
	}
	countCache("miss")
	options := s.Shipping.OptionsForZone(zone, subtotal, items)
	if err := s.Cache.SetJSON(ctx, key, options); err != nil {
		s.CacheBreaker.Report(ctx, false)
		s.Logger.Warn().Err(err).Str("key", key).Msg("shipping options cache write failed")
	}
	return options
}

func countCache(result string) {
	if obs.ShippingOptionsCacheTotal != nil {
		obs.ShippingOptionsCacheTotal.WithLabelValues(result).Inc()
	}
}

func pickShipping(options []shipping.Option, methodID string) (shipping.Option, error) {
	if methodID == "" {
		return options[0], nil
	}
	for _, opt := range options {
		if opt.ID == methodID {
			return opt, nil
		}
	}
	return shipping.Option{}, fmt.Errorf("%w: %s", ErrShippingMethodUnavailable, methodID)
}
