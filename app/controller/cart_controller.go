package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/logging"
	"storefront/models"
	"storefront/service"
)

// CartController handles the caller's cart
type CartController struct {
	carts *service.CartService
}

// NewCartController creates a new CartController
func NewCartController(carts *service.CartService) *CartController {
	return &CartController{carts: carts}
}

// GetCart handles GET /api/cart
func (c *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := c.carts.GetCart(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, "GetCart", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// GetSummary handles GET /api/cart/summary
func (c *CartController) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := c.carts.Summary(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, "GetSummary", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// AddItem handles POST /api/cart/items
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	var req models.AddToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "AddItem", err)
		return
	}

	line, err := c.carts.AddToCart(r.Context(), UserID(r.Context()), &req)
	if err != nil {
		writeError(w, "AddItem", err)
		return
	}
	logging.Sugar.Infof("✅ AddItem: line=%s, quantity=%d, total=%.2f", line.ID, line.Quantity, line.Total)
	writeJSON(w, http.StatusCreated, line)
}

// UpdateItem handles PATCH /api/cart/items/{id}
func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "UpdateCartItem", err)
		return
	}

	line, err := c.carts.UpdateCartItem(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, "UpdateCartItem", err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

// RemoveItem handles DELETE /api/cart/items/{id}
func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := c.carts.RemoveFromCart(r.Context(), UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, "RemoveCartItem", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearCart handles DELETE /api/cart
func (c *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := c.carts.ClearCart(r.Context(), UserID(r.Context())); err != nil {
		writeError(w, "ClearCart", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
