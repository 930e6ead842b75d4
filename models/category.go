package models

// Category groups items in the catalog
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ItemCount   int    `json:"itemCount"`
	CreatedBy   string `json:"createdBy"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// CategoryRequest is the body for creating or updating a category
// Example: {"name": "Business Cards", "description": "Printed on 350gsm stock"}
type CategoryRequest struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// CategoryListResponse is a page of categories
type CategoryListResponse struct {
	Categories []Category `json:"categories"`
	Pagination Pagination `json:"pagination"`
}
