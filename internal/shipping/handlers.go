package shipping

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/ishtar-commerce/internal/common"
)

// Handler exposes zone resolution and shipping pricing over HTTP.
type Handler struct {
	Calc *Calculator
}

type zoneRequest struct {
	Country string `json:"country" validate:"required"`
	City    string `json:"city"`
}

type optionsRequest struct {
	Country  string          `json:"country" validate:"required"`
	City     string          `json:"city"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Items    []CartItem      `json:"items" validate:"dive"`
}

// Zone handles POST /shipping/zone.
func (h Handler) Zone(w http.ResponseWriter, r *http.Request) {
	var req zoneRequest
	if !h.decode(w, r, &req) {
		return
	}
	common.Data(w, http.StatusOK, map[string]string{"zone": h.Calc.ResolveZone(req.Country, req.City)})
}

// Options handles POST /shipping/options.
func (h Handler) Options(w http.ResponseWriter, r *http.Request) {
	var req optionsRequest
	if !h.decode(w, r, &req) {
		return
	}
	zone := h.Calc.ResolveZone(req.Country, req.City)
	options := h.Calc.OptionsForZone(zone, req.Subtotal, req.Items)
	common.Data(w, http.StatusOK, map[string]any{
		"zone":    zone,
		"weight":  TotalWeight(req.Items),
		"options": options,
	})
}

// Tracking handles GET /shipping/tracking/{carrierId}/{trackingNumber}.
func (h Handler) Tracking(w http.ResponseWriter, r *http.Request) {
	if h.Calc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "shipping not configured", nil)
		return
	}
	carrierID := chi.URLParam(r, "carrierId")
	if _, ok := h.Calc.Carrier(carrierID); !ok {
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "carrier not found", nil)
		return
	}
	url := h.Calc.TrackingURL(carrierID, chi.URLParam(r, "trackingNumber"))
	common.Data(w, http.StatusOK, map[string]string{"carrierId": carrierID, "url": url})
}

func (h Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if h.Calc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "shipping not configured", nil)
		return false
	}
	if err := common.DecodeJSON(w, r, dst); err != nil {
		common.WriteError(w, err)
		return false
	}
	if err := common.ValidateStruct(dst); err != nil {
		common.WriteError(w, err)
		return false
	}
	return true
}
