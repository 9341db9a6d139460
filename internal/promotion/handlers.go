package promotion

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/ishtar-commerce/internal/common"
)

// Handler exposes promotion matching over HTTP against a fixed promotion list.
type Handler struct {
	Engine     *Engine
	Promotions []Promotion
}

type matchRequest struct {
	Product Product `json:"product" validate:"required"`
}

type matchResponse struct {
	Promotion       *Promotion      `json:"promotion"`
	Price           decimal.Decimal `json:"price"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
}

type cartRequest struct {
	Lines []Line `json:"lines" validate:"required,min=1"`
}

// Match handles POST /promotions/match.
func (h Handler) Match(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if !decode(w, r, &req) {
		return
	}
	resp := matchResponse{Price: req.Product.Price, DiscountedPrice: req.Product.Price}
	if promo, ok := h.Engine.Match(req.Product, h.Promotions); ok {
		resp.Promotion = &promo
		resp.DiscountedPrice = ApplyDiscount(req.Product.Price, &promo)
	}
	common.Data(w, http.StatusOK, resp)
}

// Cart handles POST /promotions/cart.
func (h Handler) Cart(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if !decode(w, r, &req) {
		return
	}
	for _, l := range req.Lines {
		if l.Quantity < 1 {
			common.JSONError(w, http.StatusUnprocessableEntity, common.CodeValidation, "quantity must be at least 1", nil)
			return
		}
	}
	common.Data(w, http.StatusOK, h.Engine.PriceCart(req.Lines, h.Promotions))
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
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
