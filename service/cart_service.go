package service

import (
	"context"
	"fmt"

	"storefront/apperrors"
	"storefront/logging"
	"storefront/models"
	"storefront/pricing"
	"storefront/repository"
)

// CartService handles the authenticated user's cart
type CartService struct {
	carts   repository.CartRepositoryInterface
	catalog *CatalogService
}

// NewCartService creates a new CartService
func NewCartService(carts repository.CartRepositoryInterface, catalog *CatalogService) *CartService {
	return &CartService{carts: carts, catalog: catalog}
}

// resolveLine snaps the quantity through the item constraint and checks the
// selections. Every root field of the item's option tree needs a leaf.
func resolveLine(item *models.Item, quantity int, selections []pricing.Selection) (int, error) {
	if !item.IsActive() {
		return 0, apperrors.InvalidField("itemId", "item is not available")
	}
	if quantity < 1 {
		return 0, apperrors.InvalidField("quantity", "must be at least 1")
	}
	if !item.Constraint.Satisfiable() {
		return 0, apperrors.InvalidField("quantity", "item has no valid quantity")
	}

	resolved := item.Constraint.Resolve(quantity)
	if resolved < 1 {
		return 0, apperrors.InvalidField("quantity", "must resolve to at least 1")
	}

	missing := pricing.MissingFields(item.Tree(), selections)
	if len(missing) > 0 {
		fields := make([]pricing.FieldError, 0, len(missing))
		for _, name := range missing {
			fields = append(fields, pricing.FieldError{
				Field:   "selections",
				Message: fmt.Sprintf("select an option for %s", name),
			})
		}
		return 0, apperrors.ValidationFields(fields)
	}
	return resolved, nil
}

// AddToCart resolves quantity and selections against the item and stores
// a new cart line with a frozen snapshot of the selected options.
func (s *CartService) AddToCart(ctx context.Context, userID string, req *models.AddToCartRequest) (*models.CartItemView, error) {
	logging.Sugar.Infof("🛒 AddToCart: user=%s, item=%s, requested=%d", userID, req.ItemID, req.Quantity)

	item, err := s.catalog.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	qty, err := resolveLine(item, req.Quantity, req.Selections)
	if err != nil {
		return nil, err
	}
	if qty != req.Quantity {
		logging.Sugar.Infof("📏 AddToCart: quantity adjusted %d -> %d", req.Quantity, qty)
	}

	line := &models.CartItem{
		UserID:          userID,
		ItemID:          item.ID,
		Quantity:        qty,
		Selections:      req.Selections,
		SelectedOptions: pricing.Capture(item.Tree(), req.Selections),
	}
	if err := s.carts.Add(ctx, line); err != nil {
		return nil, err
	}
	return viewOf(line, item), nil
}

// UpdateCartItem changes quantity and/or selections of one of the user's
// cart lines. The stored quantity is re-snapped only when a new quantity is
// requested and the snapshot is recaptured only when selections change.
func (s *CartService) UpdateCartItem(ctx context.Context, userID, lineID string, req *models.UpdateCartItemRequest) (*models.CartItemView, error) {
	line, err := s.carts.Get(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line.UserID != userID {
		return nil, apperrors.NotFound("cart item", lineID)
	}

	item, err := s.catalog.GetItem(ctx, line.ItemID)
	if err != nil {
		return nil, err
	}

	quantity := line.Quantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	selections := line.Selections
	if req.Selections != nil {
		selections = *req.Selections
	}

	qty, err := resolveLine(item, quantity, selections)
	if err != nil {
		return nil, err
	}

	if req.Quantity != nil {
		line.Quantity = qty
	}
	if req.Selections != nil {
		line.Selections = selections
		line.SelectedOptions = pricing.Capture(item.Tree(), selections)
	}
	if err := s.carts.Update(ctx, line); err != nil {
		return nil, err
	}
	return viewOf(line, item), nil
}

// RemoveFromCart deletes one of the user's cart lines
func (s *CartService) RemoveFromCart(ctx context.Context, userID, lineID string) error {
	return s.carts.Delete(ctx, lineID, userID)
}

// ClearCart empties the user's cart
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	_, err := s.carts.Clear(ctx, userID)
	return err
}

// GetCart lists the user's cart with line totals and the summary
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.CartResponse, error) {
	lines, err := s.carts.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		fillView(&lines[i])
	}
	return &models.CartResponse{Items: lines, Summary: summarize(lines)}, nil
}

// Summary returns total quantity, total price and line count of the cart
func (s *CartService) Summary(ctx context.Context, userID string) (pricing.Summary, error) {
	lines, err := s.carts.List(ctx, userID)
	if err != nil {
		return pricing.Summary{}, err
	}
	return summarize(lines), nil
}

func summarize(lines []models.CartItemView) pricing.Summary {
	items := make([]pricing.LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, pricing.LineItem{BasePrice: l.ItemPrice, Quantity: l.Quantity, Options: l.SelectedOptions})
	}
	return pricing.Aggregate(items)
}

// fillView computes the display fields from the stored snapshot
func fillView(v *models.CartItemView) {
	v.OptionsLabel = v.SelectedOptions.Label()
	v.Total = pricing.LineTotal(v.ItemPrice, v.Quantity, v.SelectedOptions)
}

func viewOf(line *models.CartItem, item *models.Item) *models.CartItemView {
	v := &models.CartItemView{
		CartItem:     *line,
		ItemName:     item.Name,
		ItemSlug:     item.Slug,
		ItemPrice:    item.Price,
		CategoryName: item.CategoryName,
		Constraint:   item.Constraint,
	}
	fillView(v)
	return v
}
