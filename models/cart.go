package models

import "storefront/pricing"

// CartItem is a stored cart line. SelectedOptions is the snapshot captured
// when the line was added or last edited; it is never recomputed from the
// item's current tree.
type CartItem struct {
	ID              string              `json:"id"`
	UserID          string              `json:"userId"`
	ItemID          string              `json:"itemId"`
	Quantity        int                 `json:"quantity"`
	Selections      []pricing.Selection `json:"selections"`
	SelectedOptions pricing.Snapshot    `json:"selectedOptions"`
	CreatedAt       string              `json:"createdAt"`
	UpdatedAt       string              `json:"updatedAt"`
}

// CartItemView is a cart line joined with its item for display
type CartItemView struct {
	CartItem
	ItemName     string             `json:"itemName"`
	ItemSlug     string             `json:"itemSlug"`
	ItemPrice    float64            `json:"itemPrice"`
	CategoryName string             `json:"categoryName"`
	Constraint   pricing.Constraint `json:"constraint"`
	OptionsLabel string             `json:"optionsLabel"`
	Total        float64            `json:"total"`
}

// AddToCartRequest is the body for adding an item to the cart
// Example: {"itemId": "6f1c...", "quantity": 130, "selections": [{"field": 0, "path": [1]}]}
type AddToCartRequest struct {
	ItemID     string              `json:"itemId"`
	Quantity   int                 `json:"quantity"`
	Selections []pricing.Selection `json:"selections"`
}

// UpdateCartItemRequest changes quantity and/or selections of a cart line.
// Omitted fields are left unchanged.
type UpdateCartItemRequest struct {
	Quantity   *int                 `json:"quantity,omitempty"`
	Selections *[]pricing.Selection `json:"selections,omitempty"`
}

// CartResponse lists the user's cart with its summary
type CartResponse struct {
	Items   []CartItemView  `json:"items"`
	Summary pricing.Summary `json:"summary"`
}
