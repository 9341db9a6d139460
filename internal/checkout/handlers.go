package checkout

import (
	"errors"
	"net/http"

	"github.com/noah-isme/ishtar-commerce/internal/common"
)

// Handler exposes checkout quoting over HTTP.
type Handler struct {
	Svc *Service
}

type quoteRequest struct {
	Request
	PaymentMethodID string `json:"paymentMethodId"`
}

// Quote handles POST /checkout/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "checkout service not configured", nil)
		return
	}
	var payload quoteRequest
	if err := common.DecodeJSON(w, r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	quote, err := h.Svc.Quote(r.Context(), payload.Request)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if payload.PaymentMethodID != "" {
		quote, err = quote.WithMethod(payload.PaymentMethodID)
		if err != nil {
			h.writeError(w, err)
			return
		}
	}
	common.Data(w, http.StatusOK, quote)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		common.WriteError(w, common.ValidationError("invalid checkout request", err))
	case errors.Is(err, ErrShippingMethodUnavailable), errors.Is(err, ErrPaymentMethodUnavailable):
		common.WriteError(w, common.NewAppError(common.CodeValidation, err.Error(), http.StatusUnprocessableEntity, err))
	case errors.Is(err, ErrNotConfigured):
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, err.Error(), nil)
	default:
		common.WriteError(w, err)
	}
}
