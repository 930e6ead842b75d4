package service

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"storefront/apperrors"
	"storefront/logging"
	"storefront/metrics"
	"storefront/models"
	"storefront/pricing"
	"storefront/repository"
)

const (
	defaultOrderLimit = 10
	maxOrderLimit     = 100
)

// OrderService handles checkout and order history
type OrderService struct {
	orders  repository.OrderRepositoryInterface
	metrics *metrics.Metrics
	clock   func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(orders repository.OrderRepositoryInterface, m *metrics.Metrics) *OrderService {
	return &OrderService{orders: orders, metrics: m, clock: time.Now}
}

// InvoiceNumber builds "INV-<base36 unix millis>-<5 random base36>" in
// upper case.
func InvoiceNumber(now time.Time) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	return strings.ToUpper("INV-" + ts + "-" + string(suffix))
}

// Checkout turns the user's cart into an order. Line totals are recomputed
// from each line's snapshot and the item's current base price.
func (s *OrderService) Checkout(ctx context.Context, userID string) (*models.Order, error) {
	order, err := s.orders.Checkout(ctx, userID, func(lines []models.CartItemView) (*models.Order, error) {
		if len(lines) == 0 {
			return nil, apperrors.Validation("cart is empty")
		}
		return s.buildOrder(lines), nil
	})
	if err != nil {
		logging.Sugar.Errorf("❌ Checkout: user=%s: %v", userID, err)
		return nil, err
	}
	s.metrics.ObserveCheckout(order.TotalPrice)
	return order, nil
}

func (s *OrderService) buildOrder(lines []models.CartItemView) *models.Order {
	items := make([]models.OrderItem, 0, len(lines))
	priced := make([]pricing.LineItem, 0, len(lines))
	for _, l := range lines {
		li := pricing.LineItem{BasePrice: l.ItemPrice, Quantity: l.Quantity, Options: l.SelectedOptions}
		priced = append(priced, li)
		items = append(items, models.OrderItem{
			ItemID:          l.ItemID,
			ItemName:        l.ItemName,
			UnitPrice:       l.ItemPrice,
			Quantity:        l.Quantity,
			OptionsPrice:    l.SelectedOptions.OptionsPrice(),
			LineTotal:       li.Total(),
			SelectedOptions: l.SelectedOptions,
		})
	}
	summary := pricing.Aggregate(priced)

	return &models.Order{
		InvoiceNumber: InvoiceNumber(s.clock()),
		Status:        models.OrderStatusPending,
		TotalQuantity: summary.TotalQuantity,
		TotalPrice:    summary.TotalPrice,
		Items:         items,
	}
}

// History returns the user's orders newest first
func (s *OrderService) History(ctx context.Context, userID string, page models.PageRequest) (*models.OrderListResponse, error) {
	orders, p, err := s.orders.ListByUser(ctx, userID, page.Normalize(defaultOrderLimit, maxOrderLimit))
	if err != nil {
		return nil, err
	}
	return &models.OrderListResponse{Orders: orders, Pagination: p}, nil
}

// GetOrder returns one of the user's orders
func (s *OrderService) GetOrder(ctx context.Context, id, userID string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id, userID)
}
