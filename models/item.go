package models

import "storefront/pricing"

// Item status values
const (
	ItemStatusInactive = 0
	ItemStatusActive   = 1
)

// Item is a sellable product with its quantity constraint and option tree.
// The constraint fields are flattened into the JSON object:
// {"minimumQuantity": 100, "maximumQuantity": 1000, "circulation": 50, ...}
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	pricing.Constraint
	Status            int               `json:"status"`
	ConditionalFields []pricing.RawNode `json:"conditionalFields"`
	CategoryID        string            `json:"categoryId"`
	CategoryName      string            `json:"categoryName,omitempty"`
	ImagePath         string            `json:"-"`
	HasImage          bool              `json:"hasImage"`
	CreatedBy         string            `json:"createdBy"`
	CreatedAt         string            `json:"createdAt"`
	UpdatedAt         string            `json:"updatedAt"`
}

// Tree ingests the item's conditional fields. An item without options
// yields an empty tree.
func (i *Item) Tree() *pricing.Tree {
	return pricing.Ingest(i.ConditionalFields)
}

// IsActive reports whether the item can be added to a cart.
func (i *Item) IsActive() bool {
	return i.Status == ItemStatusActive
}

// ItemRequest is the body for creating or updating an item
// Example:
// {
//   "name": "Business Cards",
//   "description": "Standard 85x55mm",
//   "price": 0.12,
//   "minimumQuantity": 100,
//   "maximumQuantity": 5000,
//   "circulation": 50,
//   "categoryId": "6f1c...",
//   "conditionalFields": [
//     {"text": "Paper", "children": [{"text": "Matte", "value": 0}, {"text": "Glossy", "value": 0.02}]}
//   ]
// }
type ItemRequest struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Price       float64 `json:"price" yaml:"price"`
	pricing.Constraint `yaml:",inline"`
	// Status defaults to active when omitted
	Status            *int              `json:"status,omitempty" yaml:"status,omitempty"`
	CategoryID        string            `json:"categoryId" yaml:"categoryId"`
	ConditionalFields []pricing.RawNode `json:"conditionalFields" yaml:"conditionalFields"`
}

// ItemListResponse is a page of items
type ItemListResponse struct {
	Items      []Item     `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// QuoteRequest asks for the price of an item configuration
// Example: {"quantity": 130, "selections": [{"field": 0, "path": [1]}]}
type QuoteRequest struct {
	Quantity   int                 `json:"quantity" yaml:"quantity"`
	Selections []pricing.Selection `json:"selections" yaml:"selections"`
}

// QuoteResponse is the evaluated configuration plus the formatted total
type QuoteResponse struct {
	ItemID string `json:"itemId"`
	pricing.Quote
	FormattedTotal string `json:"formattedTotal"`
}
