package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"storefront/apperrors"
	"storefront/cache"
	"storefront/logging"
	"storefront/metrics"
	"storefront/models"
	"storefront/pricing"
	"storefront/repository"
	"storefront/utils"
)

// Limits on list and search requests
const (
	defaultListLimit   = 50
	maxListLimit       = 100
	defaultSearchLimit = 20
	maxSearchLimit     = 50
	maxNameLength      = 100
)

// CatalogService handles categories, items and item quotes
type CatalogService struct {
	categories repository.CategoryRepositoryInterface
	items      repository.ItemRepositoryInterface
	cache      cache.ItemCache
	images     *ImageOptimizer
	money      utils.Money
	metrics    *metrics.Metrics
}

// NewCatalogService creates a new CatalogService. A nil cache disables
// caching; a nil metrics disables instrumentation.
func NewCatalogService(
	categories repository.CategoryRepositoryInterface,
	items repository.ItemRepositoryInterface,
	itemCache cache.ItemCache,
	images *ImageOptimizer,
	money utils.Money,
	m *metrics.Metrics,
) *CatalogService {
	if itemCache == nil {
		itemCache = cache.Noop{}
	}
	return &CatalogService{
		categories: categories,
		items:      items,
		cache:      itemCache,
		images:     images,
		money:      money,
		metrics:    m,
	}
}

func validateName(name string, fields []pricing.FieldError) []pricing.FieldError {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		fields = append(fields, pricing.FieldError{Field: "name", Message: "is required"})
	case utf8.RuneCountInString(name) > maxNameLength:
		fields = append(fields, pricing.FieldError{Field: "name", Message: "must be less than 100 characters"})
	}
	return fields
}

// collectFields appends the field errors of a pricing validation failure
func collectFields(err error, fields []pricing.FieldError) []pricing.FieldError {
	var verr *pricing.ValidationError
	if errors.As(err, &verr) {
		return append(fields, verr.Fields...)
	}
	return fields
}

// ---- Categories ----

// CreateCategory validates and stores a category owned by userID
func (s *CatalogService) CreateCategory(ctx context.Context, req *models.CategoryRequest, userID string) (*models.Category, error) {
	if err := apperrors.ValidationFields(validateName(req.Name, nil)); err != nil {
		return nil, err
	}
	return s.categories.Create(ctx, req, userID)
}

// GetCategory returns a category by id
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// ListCategories returns a page of categories
func (s *CatalogService) ListCategories(ctx context.Context, page models.PageRequest) (*models.CategoryListResponse, error) {
	cats, p, err := s.categories.List(ctx, page.Normalize(defaultListLimit, maxListLimit))
	if err != nil {
		return nil, err
	}
	return &models.CategoryListResponse{Categories: cats, Pagination: p}, nil
}

// SearchCategories finds categories by name
func (s *CatalogService) SearchCategories(ctx context.Context, query string, limit int) ([]models.Category, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.InvalidField("query", "is required")
	}
	page := models.PageRequest{Limit: limit}.Normalize(defaultSearchLimit, maxSearchLimit)
	return s.categories.Search(ctx, query, page.Limit)
}

// UpdateCategory changes a category owned by userID
func (s *CatalogService) UpdateCategory(ctx context.Context, id, userID string, req *models.CategoryRequest) (*models.Category, error) {
	if err := apperrors.ValidationFields(validateName(req.Name, nil)); err != nil {
		return nil, err
	}
	existing, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.CreatedBy != userID {
		return nil, apperrors.Forbidden("you don't have permission to update this category")
	}
	updated, err := s.categories.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if updated.Name != existing.Name {
		s.invalidateCategory(ctx, id)
	}
	return updated, nil
}

// DeleteCategory removes an empty category owned by userID
func (s *CatalogService) DeleteCategory(ctx context.Context, id, userID string) error {
	existing, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.CreatedBy != userID {
		return apperrors.Forbidden("you don't have permission to delete this category")
	}
	return s.categories.Delete(ctx, id)
}

// ---- Items ----

// validateItem checks a create/update request and returns the field errors
func (s *CatalogService) validateItem(ctx context.Context, req *models.ItemRequest) error {
	fields := validateName(req.Name, nil)
	if req.Price < 0 {
		fields = append(fields, pricing.FieldError{Field: "price", Message: "must be non-negative"})
	}
	if req.Status != nil && *req.Status < 0 {
		fields = append(fields, pricing.FieldError{Field: "status", Message: "must be non-negative"})
	}
	fields = collectFields(req.Constraint.Validate(), fields)
	fields = collectFields(pricing.Ingest(req.ConditionalFields).Validate(), fields)

	if strings.TrimSpace(req.CategoryID) == "" {
		fields = append(fields, pricing.FieldError{Field: "categoryId", Message: "category is required"})
	} else if _, err := s.categories.GetByID(ctx, req.CategoryID); err != nil {
		if !apperrors.IsType(err, apperrors.TypeNotFound) {
			return err
		}
		fields = append(fields, pricing.FieldError{Field: "categoryId", Message: "category does not exist"})
	}
	return apperrors.ValidationFields(fields)
}

// normalizeItemRequest applies defaults. A circulation of 0 means "any
// quantity" and is stored as 1.
func normalizeItemRequest(req *models.ItemRequest) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Circulation == 0 {
		req.Circulation = 1
	}
}

func (s *CatalogService) uniqueSlug(ctx context.Context, name, exceptID string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		base = "item"
	}
	slug := base
	for n := 2; ; n++ {
		taken, err := s.items.SlugExists(ctx, slug, exceptID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

// CreateItem validates and stores an item owned by userID
func (s *CatalogService) CreateItem(ctx context.Context, req *models.ItemRequest, userID string) (*models.Item, error) {
	normalizeItemRequest(req)
	if err := s.validateItem(ctx, req); err != nil {
		logging.Sugar.Warnf("❌ CreateItem: %v", err)
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, req.Name, "")
	if err != nil {
		return nil, err
	}

	status := models.ItemStatusActive
	if req.Status != nil {
		status = *req.Status
	}

	item := &models.Item{
		Name:              req.Name,
		Slug:              slug,
		Description:       req.Description,
		Price:             req.Price,
		Constraint:        req.Constraint,
		Status:            status,
		ConditionalFields: req.ConditionalFields,
		CategoryID:        req.CategoryID,
		CreatedBy:         userID,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return s.items.GetByID(ctx, item.ID)
}

// UpdateItem replaces the editable fields of an item owned by userID
func (s *CatalogService) UpdateItem(ctx context.Context, id, userID string, req *models.ItemRequest) (*models.Item, error) {
	existing, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.CreatedBy != userID {
		return nil, apperrors.Forbidden("you don't have permission to update this item")
	}

	normalizeItemRequest(req)
	if err := s.validateItem(ctx, req); err != nil {
		logging.Sugar.Warnf("❌ UpdateItem: %v", err)
		return nil, err
	}

	slug := existing.Slug
	if req.Name != existing.Name {
		if slug, err = s.uniqueSlug(ctx, req.Name, id); err != nil {
			return nil, err
		}
	}

	updated := *existing
	updated.Name = req.Name
	updated.Slug = slug
	updated.Description = req.Description
	updated.Price = req.Price
	updated.Constraint = req.Constraint
	updated.ConditionalFields = req.ConditionalFields
	updated.CategoryID = req.CategoryID
	if req.Status != nil {
		updated.Status = *req.Status
	}

	if err := s.items.Update(ctx, &updated); err != nil {
		return nil, err
	}
	s.invalidate(ctx, existing.ID, existing.Slug, slug)
	return s.items.GetByID(ctx, id)
}

// DeleteItem removes an item owned by userID together with its images
func (s *CatalogService) DeleteItem(ctx context.Context, id, userID string) error {
	existing, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.CreatedBy != userID {
		return apperrors.Forbidden("you don't have permission to delete this item")
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, existing.ID, existing.Slug)
	if s.images != nil {
		if err := s.images.Remove(id); err != nil {
			logging.Sugar.Warnf("⚠️  DeleteItem: %v", err)
		}
	}
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, id string, slugs ...string) {
	keys := []string{cache.IDKey(id)}
	for _, slug := range slugs {
		keys = append(keys, cache.SlugKey(slug))
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		logging.Sugar.Warnf("⚠️  cache invalidation failed: %v", err)
	}
}

// invalidateCategory drops the cached items of a category, which carry the
// category name.
func (s *CatalogService) invalidateCategory(ctx context.Context, categoryID string) {
	filters := repository.ItemFilterParams{CategoryID: &categoryID}
	page := models.PageRequest{Limit: maxListLimit}.Normalize(maxListLimit, maxListLimit)
	for {
		items, p, err := s.items.List(ctx, filters, page)
		if err != nil {
			logging.Sugar.Warnf("⚠️  cache invalidation for category %s failed: %v", categoryID, err)
			return
		}
		for _, it := range items {
			s.invalidate(ctx, it.ID, it.Slug)
		}
		if !p.HasNextPage {
			return
		}
		page.Page++
	}
}

// cached reads through the item cache. Cache failures fall back to the store.
func (s *CatalogService) cached(ctx context.Context, key string, load func() (*models.Item, error)) (*models.Item, error) {
	item, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		s.metrics.ObserveCache("hit")
		return item, nil
	case errors.Is(err, cache.ErrMiss):
		s.metrics.ObserveCache("miss")
	default:
		s.metrics.ObserveCache("error")
		logging.Sugar.Warnf("⚠️  item cache read failed: %v", err)
	}

	item, err = load()
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, item); err != nil {
		logging.Sugar.Warnf("⚠️  item cache write failed: %v", err)
	}
	return item, nil
}

// GetItem returns an item by id
func (s *CatalogService) GetItem(ctx context.Context, id string) (*models.Item, error) {
	return s.cached(ctx, cache.IDKey(id), func() (*models.Item, error) {
		return s.items.GetByID(ctx, id)
	})
}

// GetItemBySlug returns an item by slug
func (s *CatalogService) GetItemBySlug(ctx context.Context, slug string) (*models.Item, error) {
	return s.cached(ctx, cache.SlugKey(slug), func() (*models.Item, error) {
		return s.items.GetBySlug(ctx, slug)
	})
}

// ListItems returns a page of items, optionally within a category
func (s *CatalogService) ListItems(ctx context.Context, categoryID string, page models.PageRequest) (*models.ItemListResponse, error) {
	var filters repository.ItemFilterParams
	if categoryID != "" {
		filters.CategoryID = &categoryID
	}
	items, p, err := s.items.List(ctx, filters, page.Normalize(defaultListLimit, maxListLimit))
	if err != nil {
		return nil, err
	}
	return &models.ItemListResponse{Items: items, Pagination: p}, nil
}

// SearchItems finds items by name
func (s *CatalogService) SearchItems(ctx context.Context, query string, limit int) ([]models.Item, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.InvalidField("query", "is required")
	}
	page := models.PageRequest{Limit: limit}.Normalize(defaultSearchLimit, maxSearchLimit)
	return s.items.Search(ctx, query, page.Limit)
}

// LatestItem returns the newest item created by userID, or nil
func (s *CatalogService) LatestItem(ctx context.Context, userID string) (*models.Item, error) {
	return s.items.Latest(ctx, userID)
}

// Quote prices an item configuration the way the item detail view shows it
func (s *CatalogService) Quote(ctx context.Context, itemID string, req *models.QuoteRequest) (*models.QuoteResponse, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	q := pricing.Evaluate(pricing.QuoteInput{
		BasePrice:  item.Price,
		Constraint: item.Constraint,
		Tree:       item.Tree(),
		Requested:  req.Quantity,
		Selections: req.Selections,
	})
	s.metrics.ObserveQuote(q.Adjusted)

	return &models.QuoteResponse{
		ItemID:         item.ID,
		Quote:          q,
		FormattedTotal: s.money.Format(q.LineTotal),
	}, nil
}

// ---- Images ----

// UploadImage stores an image for an item owned by userID
func (s *CatalogService) UploadImage(ctx context.Context, itemID, userID string, data []byte) (*models.Item, error) {
	if s.images == nil {
		return nil, apperrors.New(apperrors.TypeInternal, "image storage is not configured")
	}
	existing, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if existing.CreatedBy != userID {
		return nil, apperrors.Forbidden("you don't have permission to update this item")
	}

	path, err := s.images.Store(itemID, data)
	if err != nil {
		return nil, err
	}
	if err := s.items.SetImage(ctx, itemID, path); err != nil {
		return nil, err
	}
	s.invalidate(ctx, existing.ID, existing.Slug)
	return s.items.GetByID(ctx, itemID)
}

// ItemImage returns the JPEG rendition of an item image
func (s *CatalogService) ItemImage(ctx context.Context, itemID, size string) ([]byte, error) {
	if s.images == nil {
		return nil, apperrors.NotFound("item image", itemID)
	}
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.HasImage {
		return nil, apperrors.NotFound("item image", itemID)
	}
	return s.images.Read(itemID, size)
}
