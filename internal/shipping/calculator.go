package shipping

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/ishtar-commerce/internal/money"
)

// MethodType is the service tier of a shipping method.
type MethodType string

const (
	MethodStandard MethodType = "standard"
	MethodExpress  MethodType = "express"
	MethodVIP      MethodType = "vip"
)

const trackingPlaceholder = "TRACKING_NUMBER"

var defaultItemWeight = decimal.NewFromInt(1)

// Carrier is a logistics company that fulfils shipping methods.
type Carrier struct {
	ID                 string `yaml:"id" json:"id" validate:"required"`
	Name               string `yaml:"name" json:"name" validate:"required"`
	TrackingURLPattern string `yaml:"tracking_url_pattern" json:"trackingUrlPattern"`
	Active             bool   `yaml:"active" json:"active"`
}

// Method is a carrier service offered to customers.
type Method struct {
	ID         string     `yaml:"id" json:"id" validate:"required"`
	CarrierID  string     `yaml:"carrier_id" json:"carrierId" validate:"required"`
	Name       string     `yaml:"name" json:"name"`
	Type       MethodType `yaml:"type" json:"type" validate:"required,oneof=standard express vip"`
	EstMinDays int        `yaml:"est_min_days" json:"estMinDays" validate:"gte=0"`
	EstMaxDays int        `yaml:"est_max_days" json:"estMaxDays" validate:"gtefield=EstMinDays"`
}

// ZoneRule prices a method inside a zone.
type ZoneRule struct {
	ZoneCode              string           `yaml:"zone_code" json:"zoneCode" validate:"required"`
	MethodID              string           `yaml:"method_id" json:"methodId" validate:"required"`
	BaseFee               decimal.Decimal  `yaml:"base_fee" json:"baseFee"`
	PerKgFee              decimal.Decimal  `yaml:"per_kg_fee" json:"perKgFee"`
	FreeShippingThreshold *decimal.Decimal `yaml:"free_shipping_threshold,omitempty" json:"freeShippingThreshold,omitempty"`
	Active                bool             `yaml:"active" json:"active"`
}

// CartItem is the part of a cart line that affects shipping.
type CartItem struct {
	Quantity int              `json:"quantity" validate:"gte=1"`
	WeightKg *decimal.Decimal `json:"weightKg,omitempty"`
}

// Option is a priced shipping choice produced per request.
type Option struct {
	Method
	Cost        decimal.Decimal `json:"cost"`
	IsFree      bool            `json:"isFree"`
	CarrierName string          `json:"carrierName"`
}

// Config supplies the reference tables used by a Calculator.
type Config struct {
	Zones    []Zone
	Carriers []Carrier
	Methods  []Method
	Rules    []ZoneRule
	Logger   *zerolog.Logger
}

// Calculator resolves zones and prices shipping options over static tables.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	zones    []Zone
	rules    []ZoneRule
	methods  map[string]Method
	carriers map[string]Carrier
	log      zerolog.Logger
}

// NewCalculator indexes the provided tables.
func NewCalculator(cfg Config) *Calculator {
	c := &Calculator{
		zones:    append([]Zone(nil), cfg.Zones...),
		rules:    append([]ZoneRule(nil), cfg.Rules...),
		methods:  make(map[string]Method, len(cfg.Methods)),
		carriers: make(map[string]Carrier, len(cfg.Carriers)),
		log:      zerolog.Nop(),
	}
	if cfg.Logger != nil {
		c.log = cfg.Logger.With().Str("component", "shipping").Logger()
	}
	for _, m := range cfg.Methods {
		c.methods[m.ID] = m
	}
	for _, cr := range cfg.Carriers {
		c.carriers[cr.ID] = cr
	}
	return c
}

// ResolveZone maps country and city onto a configured zone code.
func (c *Calculator) ResolveZone(country, city string) string {
	return ResolveZone(c.zones, country, city)
}

// TotalWeight sums weight × quantity, treating a missing or non-positive weight as 1kg.
func TotalWeight(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		weight := defaultItemWeight
		if it.WeightKg != nil && it.WeightKg.Sign() > 0 {
			weight = *it.WeightKg
		}
		total = total.Add(weight.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Options resolves the zone for the destination and prices every active rule.
// An empty result means no method ships to the destination.
func (c *Calculator) Options(country, city string, subtotal decimal.Decimal, items []CartItem) []Option {
	return c.OptionsForZone(c.ResolveZone(country, city), subtotal, items)
}

// OptionsForZone prices every active rule of zoneCode, sorted by ascending cost.
func (c *Calculator) OptionsForZone(zoneCode string, subtotal decimal.Decimal, items []CartItem) []Option {
	weight := TotalWeight(items)
	options := make([]Option, 0, 4)
	for _, rule := range c.rules {
		if !rule.Active || rule.ZoneCode != zoneCode {
			continue
		}
		method, ok := c.methods[rule.MethodID]
		if !ok {
			c.log.Debug().Str("zone", zoneCode).Str("method_id", rule.MethodID).Msg("shipping rule references unknown method")
			continue
		}
		carrier, ok := c.carriers[method.CarrierID]
		if !ok {
			c.log.Debug().Str("method_id", method.ID).Str("carrier_id", method.CarrierID).Msg("shipping method references unknown carrier")
			continue
		}
		options = append(options, priceRule(rule, method, carrier, weight, subtotal))
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Cost.LessThan(options[j].Cost)
	})
	return options
}

func priceRule(rule ZoneRule, method Method, carrier Carrier, weight, subtotal decimal.Decimal) Option {
	cost := money.RoundUnit(RuleCost(rule, weight))
	free := rule.FreeShippingThreshold != nil && subtotal.GreaterThanOrEqual(*rule.FreeShippingThreshold)
	if free {
		cost = decimal.Zero
	}
	return Option{Method: method, Cost: cost, IsFree: free, CarrierName: carrier.Name}
}

// RuleCost is base + weight × per-kg before rounding and free-shipping overrides.
func RuleCost(rule ZoneRule, weight decimal.Decimal) decimal.Decimal {
	return rule.BaseFee.Add(weight.Mul(rule.PerKgFee))
}

// Carrier returns the carrier with id.
func (c *Calculator) Carrier(id string) (Carrier, bool) {
	cr, ok := c.carriers[id]
	return cr, ok
}

// Method returns the shipping method with id.
func (c *Calculator) Method(id string) (Method, bool) {
	m, ok := c.methods[id]
	return m, ok
}

// TrackingURL builds the carrier tracking link, or "" when either input is
// missing or the carrier is unknown.
func (c *Calculator) TrackingURL(carrierID, trackingNumber string) string {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if carrierID == "" || trackingNumber == "" {
		return ""
	}
	carrier, ok := c.carriers[carrierID]
	if !ok || carrier.TrackingURLPattern == "" {
		return ""
	}
	return strings.ReplaceAll(carrier.TrackingURLPattern, trackingPlaceholder, trackingNumber)
}
