package repository

import (
	"context"

	"storefront/models"
)

// CategoryRepositoryInterface defines the contract for category repository operations
type CategoryRepositoryInterface interface {
	Create(ctx context.Context, req *models.CategoryRequest, userID string) (*models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context, page models.PageRequest) ([]models.Category, models.Pagination, error)
	Search(ctx context.Context, query string, limit int) ([]models.Category, error)
	Update(ctx context.Context, id string, req *models.CategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

// ItemRepositoryInterface defines the contract for item repository operations
type ItemRepositoryInterface interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id string) (*models.Item, error)
	GetBySlug(ctx context.Context, slug string) (*models.Item, error)
	SlugExists(ctx context.Context, slug, exceptID string) (bool, error)
	List(ctx context.Context, filters ItemFilterParams, page models.PageRequest) ([]models.Item, models.Pagination, error)
	Search(ctx context.Context, query string, limit int) ([]models.Item, error)
	Latest(ctx context.Context, userID string) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	SetImage(ctx context.Context, id, path string) error
	Delete(ctx context.Context, id string) error
}

// CartRepositoryInterface defines the contract for cart repository operations
type CartRepositoryInterface interface {
	Add(ctx context.Context, line *models.CartItem) error
	Get(ctx context.Context, id string) (*models.CartItem, error)
	Update(ctx context.Context, line *models.CartItem) error
	Delete(ctx context.Context, id, userID string) error
	Clear(ctx context.Context, userID string) (int64, error)
	List(ctx context.Context, userID string) ([]models.CartItemView, error)
}

// OrderRepositoryInterface defines the contract for order repository operations
type OrderRepositoryInterface interface {
	Checkout(ctx context.Context, userID string, build BuildOrderFunc) (*models.Order, error)
	GetByID(ctx context.Context, id, userID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string, page models.PageRequest) ([]models.Order, models.Pagination, error)
}
