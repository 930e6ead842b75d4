package controller

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/logging"
	"storefront/service"
)

// OrderController handles checkout, order history and invoices
type OrderController struct {
	orders   *service.OrderService
	invoices *service.InvoiceService
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *service.OrderService, invoices *service.InvoiceService) *OrderController {
	return &OrderController{orders: orders, invoices: invoices}
}

// Checkout handles POST /api/orders
// Turns the caller's cart into an order; totals are computed server side.
func (c *OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	logging.Sugar.Infof("📥 Checkout: user=%s", userID)

	order, err := c.orders.Checkout(r.Context(), userID)
	if err != nil {
		writeError(w, "Checkout", err)
		return
	}
	logging.Sugar.Infof("✅ Checkout: order=%s, invoice=%s, total=%.2f", order.ID, order.InvoiceNumber, order.TotalPrice)
	writeJSON(w, http.StatusCreated, order)
}

// ListOrders handles GET /api/orders?cursor=&limit=
func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, "ListOrders", err)
		return
	}

	resp, err := c.orders.History(r.Context(), UserID(r.Context()), page)
	if err != nil {
		writeError(w, "ListOrders", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetOrder handles GET /api/orders/{id}
func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := c.orders.GetOrder(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()))
	if err != nil {
		writeError(w, "GetOrder", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// RenderInvoice handles GET /api/orders/{id}/invoice
func (c *OrderController) RenderInvoice(w http.ResponseWriter, r *http.Request) {
	html, err := c.invoices.RenderHTML(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()))
	if err != nil {
		writeError(w, "RenderInvoice", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		logging.Sugar.Errorf("❌ RenderInvoice: Error writing HTML response: %v", err)
	}
}

// DownloadInvoice handles GET /api/orders/{id}/invoice.pdf
func (c *OrderController) DownloadInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pdf, err := c.invoices.GeneratePDF(r.Context(), id, UserID(r.Context()))
	if err != nil {
		writeError(w, "DownloadInvoice", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, id))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		logging.Sugar.Errorf("❌ DownloadInvoice: Error writing PDF response: %v", err)
	}
}
