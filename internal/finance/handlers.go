package finance

import (
	"net/http"

	"github.com/noah-isme/ishtar-commerce/internal/common"
)

// Handler exposes profitability reporting to finance staff.
type Handler struct {
	Calc *Calculator
}

type profitRequest struct {
	Orders []Order `json:"orders" validate:"required,min=1,dive"`
}

// Profit handles POST /admin/orders/profit.
func (h Handler) Profit(w http.ResponseWriter, r *http.Request) {
	if h.Calc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "finance not configured", nil)
		return
	}
	var req profitRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.ValidateStruct(req); err != nil {
		common.WriteError(w, err)
		return
	}
	report, profits := h.Calc.Summarize(req.Orders)
	common.Data(w, http.StatusOK, map[string]any{
		"report": report,
		"orders": profits,
	})
}
