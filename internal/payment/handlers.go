package payment

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/ishtar-commerce/internal/common"
)

// Handler exposes gateway and method eligibility over HTTP.
type Handler struct {
	Router *Router
	Risk   RiskAssessor
}

type routingRequest struct {
	Country   string          `json:"country" validate:"required"`
	Currency  string          `json:"currency" validate:"required,len=3"`
	Amount    decimal.Decimal `json:"amount"`
	Channel   string          `json:"channel"`
	RiskLevel RiskLevel       `json:"riskLevel" validate:"omitempty,oneof=low medium high"`
	Client    ClientInfo      `json:"client"`
}

// Gateways handles POST /payments/gateways.
func (h Handler) Gateways(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.routing(w, r)
	if !ok {
		return
	}
	common.Data(w, http.StatusOK, map[string]any{
		"riskLevel": rc.RiskLevel,
		"gateways":  h.Router.SelectGateways(rc),
	})
}

// Methods handles POST /payments/methods.
func (h Handler) Methods(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.routing(w, r)
	if !ok {
		return
	}
	methods := h.Router.Methods(rc)
	common.Data(w, http.StatusOK, map[string]any{
		"riskLevel": rc.RiskLevel,
		"methods":   methods,
		"blocked":   len(methods) == 0,
	})
}

func (h Handler) routing(w http.ResponseWriter, r *http.Request) (RoutingContext, bool) {
	if h.Router == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "payment routing not configured", nil)
		return RoutingContext{}, false
	}
	var req routingRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.WriteError(w, err)
		return RoutingContext{}, false
	}
	if err := common.ValidateStruct(req); err != nil {
		common.WriteError(w, err)
		return RoutingContext{}, false
	}
	rc := RoutingContext{
		Country:     req.Country,
		Currency:    req.Currency,
		OrderAmount: req.Amount,
		Channel:     req.Channel,
		RiskLevel:   req.RiskLevel,
		Client:      req.Client,
	}
	if rc.Client.UserAgent == "" {
		rc.Client.UserAgent = r.UserAgent()
	}
	if rc.RiskLevel == "" {
		rc.RiskLevel = RiskLow
		if h.Risk != nil {
			if level, err := h.Risk.Assess(r.Context(), rc); err == nil && level.Valid() {
				rc.RiskLevel = level
			}
		}
	}
	return rc, true
}
