package money

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/ishtar-commerce/internal/common"
)

// Handler exposes currency conversion and formatting over HTTP.
type Handler struct {
	Table Table
}

// Format handles GET /currency/format?amount=&currency=&locale=. The amount is
// read in the ledger currency.
func (h Handler) Format(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := decimal.NewFromString(strings.TrimSpace(q.Get("amount")))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "amount must be a decimal number", nil)
		return
	}
	code := strings.ToUpper(strings.TrimSpace(q.Get("currency")))
	if code == "" {
		code = Ledger
	}
	if _, ok := h.Table.Lookup(code); !ok && code != Ledger {
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "unknown currency", map[string]any{
			"currency":  code,
			"supported": h.Table.Codes(),
		})
		return
	}
	common.Data(w, http.StatusOK, map[string]any{
		"amount":    h.Table.Convert(amount, code),
		"currency":  code,
		"formatted": h.Table.Format(amount, code, q.Get("locale")),
	})
}

// Currencies handles GET /currency.
func (h Handler) Currencies(w http.ResponseWriter, _ *http.Request) {
	out := make([]CurrencyConfig, 0, len(h.Table.order))
	for _, code := range h.Table.order {
		out = append(out, h.Table.byCode[code])
	}
	common.Data(w, http.StatusOK, out)
}
