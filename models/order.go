package models

import "storefront/pricing"

// Order status values
const (
	OrderStatusPending   = 1
	OrderStatusPaid      = 2
	OrderStatusShipped   = 3
	OrderStatusCompleted = 4
	OrderStatusCanceled  = 5
)

// OrderStatusName returns a readable name for an order status
func OrderStatusName(status int) string {
	switch status {
	case OrderStatusPending:
		return "pending"
	case OrderStatusPaid:
		return "paid"
	case OrderStatusShipped:
		return "shipped"
	case OrderStatusCompleted:
		return "completed"
	case OrderStatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Order is a checked-out cart
type Order struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	InvoiceNumber string      `json:"invoiceNumber"`
	Status        int         `json:"status"`
	TotalQuantity int         `json:"totalQuantity"`
	TotalPrice    float64     `json:"totalPrice"`
	CreatedAt     string      `json:"createdAt"`
	Items         []OrderItem `json:"items"`
}

// OrderItem is a frozen order line. Totals are computed by the server at
// checkout from the cart snapshot and the item's base price.
type OrderItem struct {
	ID              string           `json:"id"`
	OrderID         string           `json:"orderId"`
	ItemID          string           `json:"itemId"`
	ItemName        string           `json:"itemName"`
	UnitPrice       float64          `json:"unitPrice"`
	Quantity        int              `json:"quantity"`
	OptionsPrice    float64          `json:"optionsPrice"`
	LineTotal       float64          `json:"lineTotal"`
	SelectedOptions pricing.Snapshot `json:"selectedOptions"`
}

// OptionsLabel renders the frozen selection for display
func (oi OrderItem) OptionsLabel() string {
	return oi.SelectedOptions.Label()
}

// OrderListResponse is a page of the user's order history
type OrderListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}
