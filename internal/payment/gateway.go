package payment

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/ishtar-commerce/internal/geo"
	"github.com/noah-isme/ishtar-commerce/internal/money"
)

// RiskLevel is the coarse fraud classification attached to a checkout.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is one of the known levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Gateway is a payment processor integration with its own eligibility rules.
type Gateway struct {
	ID                  string          `yaml:"id" json:"id" validate:"required"`
	Name                string          `yaml:"name" json:"name"`
	Provider            string          `yaml:"provider" json:"provider"`
	SupportedCurrencies []string        `yaml:"supported_currencies" json:"supportedCurrencies" validate:"required,min=1"`
	SupportedCountries  []string        `yaml:"supported_countries" json:"supportedCountries" validate:"required,min=1"`
	SupportedChannels   []string        `yaml:"supported_channels" json:"supportedChannels"`
	MinAmount           decimal.Decimal `yaml:"min_amount" json:"minAmount"`
	MaxAmount           decimal.Decimal `yaml:"max_amount" json:"maxAmount"`
	AllowCOD            bool            `yaml:"allow_cod" json:"allowCod"`
	AllowBNPL           bool            `yaml:"allow_bnpl" json:"allowBnpl"`
	Active              bool            `yaml:"active" json:"active"`
	Priority            int             `yaml:"priority" json:"priority"`
	FeeFixed            decimal.Decimal `yaml:"fee_fixed" json:"feeFixed"`
	FeePercent          decimal.Decimal `yaml:"fee_percent" json:"feePercent"`
}

// RoutingContext is the request-scoped input to gateway and method selection.
// OrderAmount is expressed in the ledger currency.
type RoutingContext struct {
	Country     string
	Currency    string
	OrderAmount decimal.Decimal
	Channel     string
	RiskLevel   RiskLevel
	Client      ClientInfo
}

// Config wires the tables and policy for a Router.
type Config struct {
	Gateways []Gateway
	Methods  []Method
	Policy   *Policy
	Logger   *zerolog.Logger
}

// Router selects eligible gateways and payment methods. It is read-only after
// construction and safe for concurrent use.
type Router struct {
	gateways []Gateway
	byID     map[string]Gateway
	methods  map[string][]Method
	policy   Policy
	log      zerolog.Logger
}

// NewRouter builds a Router over the given tables.
func NewRouter(cfg Config) *Router {
	r := &Router{
		gateways: append([]Gateway(nil), cfg.Gateways...),
		byID:     make(map[string]Gateway, len(cfg.Gateways)),
		methods:  make(map[string][]Method),
		policy:   DefaultPolicy(),
		log:      zerolog.Nop(),
	}
	if cfg.Policy != nil {
		r.policy = *cfg.Policy
	}
	if cfg.Logger != nil {
		r.log = cfg.Logger.With().Str("component", "payment").Logger()
	}
	for _, gw := range r.gateways {
		r.byID[gw.ID] = gw
	}
	for _, m := range cfg.Methods {
		if _, ok := r.byID[m.GatewayID]; !ok {
			r.log.Debug().Str("method_id", m.ID).Str("gateway_id", m.GatewayID).Msg("payment method references unknown gateway")
		}
		r.methods[m.GatewayID] = append(r.methods[m.GatewayID], m)
	}
	return r
}

// Gateway returns the gateway with id.
func (r *Router) Gateway(id string) (Gateway, bool) {
	gw, ok := r.byID[id]
	return gw, ok
}

// Policy returns the router's business policy.
func (r *Router) Policy() Policy {
	return r.policy
}

// SelectGateways returns every gateway eligible for ctx, most preferred first.
// Gateways with equal priority keep their table order.
func (r *Router) SelectGateways(ctx RoutingContext) []Gateway {
	out := make([]Gateway, 0, len(r.gateways))
	for _, gw := range r.gateways {
		if r.gatewayEligible(gw, ctx) {
			out = append(out, gw)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

func (r *Router) gatewayEligible(gw Gateway, ctx RoutingContext) bool {
	if !gw.Active {
		return false
	}
	if !geo.SupportsCountry(gw.SupportedCountries, ctx.Country) {
		return false
	}
	if !containsFold(gw.SupportedCurrencies, ctx.Currency) {
		return false
	}
	if ctx.Channel != "" && !containsFold(gw.SupportedChannels, ctx.Channel) {
		return false
	}
	if ctx.OrderAmount.LessThan(gw.MinAmount) || ctx.OrderAmount.GreaterThan(gw.MaxAmount) {
		return false
	}
	// COD-capable gateways are withheld from high-risk checkouts as a whole,
	// including their non-COD methods.
	if gw.AllowCOD && ctx.RiskLevel == RiskHigh && r.policy.ExcludeCODGatewaysOnHighRisk {
		return false
	}
	return true
}

// Fee is the processing fee a gateway charges on revenue, in the ledger currency.
func Fee(gw Gateway, revenue decimal.Decimal) decimal.Decimal {
	return gw.FeeFixed.Add(money.Percent(revenue, gw.FeePercent))
}

func containsFold(list []string, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), value) {
			return true
		}
	}
	return false
}
