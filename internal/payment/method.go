package payment

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/ishtar-commerce/internal/geo"
)

// Method codes with dedicated eligibility rules.
const (
	CodeCard         = "card"
	CodeMada         = "mada"
	CodeApplePay     = "applepay"
	CodeKNET         = "knet"
	CodeCOD          = "cod"
	CodeBNPL         = "bnpl"
	CodeBankTransfer = "bank_transfer"
)

var appleUserAgent = regexp.MustCompile(`(?i)iphone|ipad|macintosh`)

// Method is a customer-visible payment option offered through a gateway.
type Method struct {
	ID        string           `yaml:"id" json:"id" validate:"required"`
	Code      string           `yaml:"code" json:"code" validate:"required"`
	GatewayID string           `yaml:"gateway_id" json:"gatewayId" validate:"required"`
	Name      string           `yaml:"name" json:"name"`
	Active    bool             `yaml:"active" json:"active"`
	Surcharge *decimal.Decimal `yaml:"surcharge,omitempty" json:"surcharge,omitempty"`
}

// ClientInfo carries the device hints used for wallet eligibility.
type ClientInfo struct {
	UserAgent       string `json:"userAgent,omitempty"`
	ApplePayCapable *bool  `json:"applePayCapable,omitempty"`
}

// SupportsApplePay prefers the explicit capability flag and falls back to
// sniffing the user agent.
func (c ClientInfo) SupportsApplePay() bool {
	if c.ApplePayCapable != nil {
		return *c.ApplePayCapable
	}
	return appleUserAgent.MatchString(c.UserAgent)
}

// Policy holds the business caps and allowlists applied on top of gateway
// eligibility. Amounts are in the ledger currency.
type Policy struct {
	CODMaxAmount                 decimal.Decimal
	CODCountries                 []string
	BNPLMinAmount                decimal.Decimal
	BNPLMaxAmount                decimal.Decimal
	KNETCountries                []string
	ApplePayCurrencies           []string
	GenericCodes                 []string
	ExcludeCODGatewaysOnHighRisk bool
}

// DefaultPolicy returns the storefront's standing payment policy.
func DefaultPolicy() Policy {
	return Policy{
		CODMaxAmount:                 decimal.NewFromInt(2000),
		CODCountries:                 []string{"SA", "AE", "KW"},
		BNPLMinAmount:                decimal.NewFromInt(300),
		BNPLMaxAmount:                decimal.NewFromInt(5000),
		KNETCountries:                []string{"KW"},
		ApplePayCurrencies:           []string{"SAR", "AED", "USD", "GBP", "EUR"},
		GenericCodes:                 []string{CodeCard, CodeApplePay, CodeMada, CodeKNET},
		ExcludeCODGatewaysOnHighRisk: true,
	}
}

func (p Policy) isGeneric(code string) bool {
	return containsFold(p.GenericCodes, code)
}

// Methods resolves the payment methods available for ctx. Gateways are walked
// in preference order; generic codes keep only their first instance and all
// other codes are deduplicated by method id.
func (r *Router) Methods(ctx RoutingContext) []Method {
	gateways := r.SelectGateways(ctx)
	seenCodes := make(map[string]struct{})
	seenIDs := make(map[string]struct{})
	out := make([]Method, 0, 8)

	for _, gw := range gateways {
		for _, m := range r.methods[gw.ID] {
			if !m.Active || !r.methodEligible(gw, m, ctx) {
				continue
			}
			code := strings.ToLower(m.Code)
			if r.policy.isGeneric(code) {
				if _, dup := seenCodes[code]; dup {
					continue
				}
				seenCodes[code] = struct{}{}
			} else {
				if _, dup := seenIDs[m.ID]; dup {
					continue
				}
				seenIDs[m.ID] = struct{}{}
			}
			out = append(out, m)
		}
	}
	return out
}

// Method looks up a payment method by id.
func (r *Router) Method(id string) (Method, bool) {
	for _, list := range r.methods {
		for _, m := range list {
			if m.ID == id {
				return m, true
			}
		}
	}
	return Method{}, false
}

func (r *Router) methodEligible(gw Gateway, m Method, ctx RoutingContext) bool {
	p := r.policy
	switch strings.ToLower(m.Code) {
	case CodeCOD:
		return gw.AllowCOD &&
			ctx.OrderAmount.LessThanOrEqual(p.CODMaxAmount) &&
			ctx.RiskLevel != RiskHigh &&
			geo.ContainsCountry(p.CODCountries, ctx.Country)
	case CodeBNPL:
		return gw.AllowBNPL &&
			ctx.OrderAmount.GreaterThanOrEqual(p.BNPLMinAmount) &&
			ctx.OrderAmount.LessThanOrEqual(p.BNPLMaxAmount)
	case CodeKNET:
		return geo.ContainsCountry(p.KNETCountries, ctx.Country)
	case CodeApplePay:
		return ctx.Client.SupportsApplePay() && containsFold(p.ApplePayCurrencies, ctx.Currency)
	}
	return true
}
