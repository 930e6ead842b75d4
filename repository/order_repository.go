package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/apperrors"
	"storefront/db"
	"storefront/logging"
	"storefront/models"
)

// BuildOrderFunc turns the cart lines read inside the checkout transaction
// into an order. It must not touch the database.
type BuildOrderFunc func(lines []models.CartItemView) (*models.Order, error)

// OrderRepository handles database operations for orders
type OrderRepository struct {
	db *db.DB
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(d *db.DB) *OrderRepository {
	return &OrderRepository{db: d}
}

// Ensure OrderRepository implements OrderRepositoryInterface
var _ OrderRepositoryInterface = (*OrderRepository)(nil)

// Checkout reads the user's cart, builds the order from it, stores the order
// with its lines and clears the cart, all in one transaction.
func (r *OrderRepository) Checkout(ctx context.Context, userID string, build BuildOrderFunc) (*models.Order, error) {
	logging.Sugar.Infof("🧾 Checkout: user=%s", userID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logging.Sugar.Errorf("❌ Checkout: error starting transaction: %v", err)
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	lines, err := listCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	logging.Sugar.Infof("🛒 Checkout: %d cart lines", len(lines))

	order, err := build(lines)
	if err != nil {
		return nil, err
	}

	order.ID = newID()
	order.UserID = userID
	order.CreatedAt = now()

	queryOrder := `
		INSERT INTO orders (id, user_id, invoice_number, status, total_quantity, total_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, queryOrder,
		order.ID, order.UserID, order.InvoiceNumber, order.Status,
		order.TotalQuantity, order.TotalPrice, order.CreatedAt,
	)
	if err != nil {
		logging.Sugar.Errorf("❌ Checkout: error inserting order: %v", err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (id, order_id, item_id, item_name, unit_price, quantity,
			options_price, line_total, selected_options, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i := range order.Items {
		oi := &order.Items[i]
		oi.ID = newID()
		oi.OrderID = order.ID
		snap, err := encodeJSON(oi.SelectedOptions, "[]")
		if err != nil {
			return nil, fmt.Errorf("failed to encode selected options: %w", err)
		}
		_, err = tx.ExecContext(ctx, queryItem,
			oi.ID, oi.OrderID, oi.ItemID, oi.ItemName, oi.UnitPrice, oi.Quantity,
			oi.OptionsPrice, oi.LineTotal, snap, i,
		)
		if err != nil {
			logging.Sugar.Errorf("❌ Checkout: error inserting order item: %v", err)
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if _, err := clearCart(ctx, tx, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logging.Sugar.Errorf("❌ Checkout: error committing transaction: %v", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logging.Sugar.Infof("✓ Checkout: order=%s, invoice=%s, total=%.2f", order.ID, order.InvoiceNumber, order.TotalPrice)
	return order, nil
}

// GetByID returns an order of userID with its lines
func (r *OrderRepository) GetByID(ctx context.Context, id, userID string) (*models.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.invoice_number, o.status, o.total_quantity, o.total_price, o.created_at
		FROM orders o WHERE o.id = ? AND o.user_id = ?
	`
	var o models.Order
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&o.ID, &o.UserID, &o.InvoiceNumber, &o.Status, &o.TotalQuantity, &o.TotalPrice, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	orders := []models.Order{o}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListByUser returns the user's orders newest first with their lines
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, page models.PageRequest) ([]models.Order, models.Pagination, error) {
	logging.Sugar.Debugf("📋 ListOrders: user=%s, limit=%d, cursor=%q", userID, page.Limit, page.Cursor)

	where := ` WHERE o.user_id = ?`
	args := []any{userID}
	if page.Cursor != "" {
		clause, cargs, err := cursorClause(ctx, r.db, "orders", "o", page.Cursor)
		if err != nil {
			return nil, models.Pagination{}, err
		}
		where += ` AND ` + clause
		args = append(args, cargs...)
	}

	query := `
		SELECT o.id, o.user_id, o.invoice_number, o.status, o.total_quantity, o.total_price, o.created_at
		FROM orders o` + where + `
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, append(args, page.Limit+1)...)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("failed to query orders: %w", err)
	}
	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.InvoiceNumber, &o.Status, &o.TotalQuantity, &o.TotalPrice, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, models.Pagination{}, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, models.Pagination{}, fmt.Errorf("error iterating orders: %w", err)
	}
	rows.Close()

	orders, next := trimPage(orders, page.Limit, func(o models.Order) string { return o.ID })
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, models.Pagination{}, err
	}
	return orders, models.Pagination{Limit: page.Limit, NextCursor: next, HasNextPage: next != ""}, nil
}

// loadItems fills Items of every order with one query
func (r *OrderRepository) loadItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	index := make(map[string]int, len(orders))
	ids := make([]any, 0, len(orders))
	for i := range orders {
		index[orders[i].ID] = i
		orders[i].Items = []models.OrderItem{}
		ids = append(ids, orders[i].ID)
	}

	query := `
		SELECT id, order_id, item_id, item_name, unit_price, quantity, options_price, line_total, selected_options
		FROM order_items
		WHERE order_id IN (` + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + `)
		ORDER BY order_id, position
	`
	rows, err := r.db.QueryContext(ctx, query, ids...)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var oi models.OrderItem
		var snap string
		err := rows.Scan(&oi.ID, &oi.OrderID, &oi.ItemID, &oi.ItemName, &oi.UnitPrice, &oi.Quantity,
			&oi.OptionsPrice, &oi.LineTotal, &snap)
		if err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if oi.SelectedOptions, err = decodeSnapshot(snap); err != nil {
			return err
		}
		i := index[oi.OrderID]
		orders[i].Items = append(orders[i].Items, oi)
	}
	return rows.Err()
}
