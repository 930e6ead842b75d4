package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/apperrors"
	"storefront/db"
	"storefront/logging"
	"storefront/models"
	"storefront/pricing"
)

// CartRepository handles database operations for cart lines
type CartRepository struct {
	db *db.DB
}

// NewCartRepository creates a new CartRepository
func NewCartRepository(d *db.DB) *CartRepository {
	return &CartRepository{db: d}
}

// Ensure CartRepository implements CartRepositoryInterface
var _ CartRepositoryInterface = (*CartRepository)(nil)

func encodeJSON(v any, empty string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return empty, nil
	}
	return string(b), nil
}

func decodeSelections(s string) ([]pricing.Selection, error) {
	if s == "" || s == "null" {
		return nil, nil
	}
	var sels []pricing.Selection
	if err := json.Unmarshal([]byte(s), &sels); err != nil {
		return nil, fmt.Errorf("failed to decode selections: %w", err)
	}
	return sels, nil
}

func decodeSnapshot(s string) (pricing.Snapshot, error) {
	if s == "" || s == "null" {
		return nil, nil
	}
	var snap pricing.Snapshot
	if err := json.Unmarshal([]byte(s), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode selected options: %w", err)
	}
	if len(snap) == 0 {
		return nil, nil
	}
	return snap, nil
}

// Add inserts a cart line, assigning its id and timestamps
func (r *CartRepository) Add(ctx context.Context, line *models.CartItem) error {
	logging.Sugar.Infof("🛒 AddToCart: user=%s, item=%s, quantity=%d", line.UserID, line.ItemID, line.Quantity)

	sels, err := encodeJSON(line.Selections, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode selections: %w", err)
	}
	snap, err := encodeJSON(line.SelectedOptions, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode selected options: %w", err)
	}

	ts := now()
	line.ID = newID()
	line.CreatedAt = ts
	line.UpdatedAt = ts

	query := `
		INSERT INTO cart_items (id, user_id, item_id, quantity, selections, selected_options, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, line.ID, line.UserID, line.ItemID, line.Quantity, sels, snap, line.CreatedAt, line.UpdatedAt); err != nil {
		logging.Sugar.Errorf("❌ AddToCart: %v", err)
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	logging.Sugar.Infof("✓ AddToCart: id=%s", line.ID)
	return nil
}

// Get returns a cart line by id
func (r *CartRepository) Get(ctx context.Context, id string) (*models.CartItem, error) {
	query := `
		SELECT id, user_id, item_id, quantity, selections, selected_options, created_at, updated_at
		FROM cart_items WHERE id = ?
	`
	var line models.CartItem
	var sels, snap string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&line.ID, &line.UserID, &line.ItemID, &line.Quantity, &sels, &snap, &line.CreatedAt, &line.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("cart item", id)
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	if line.Selections, err = decodeSelections(sels); err != nil {
		return nil, err
	}
	if line.SelectedOptions, err = decodeSnapshot(snap); err != nil {
		return nil, err
	}
	return &line, nil
}

// Update stores quantity, selections and snapshot of a cart line
func (r *CartRepository) Update(ctx context.Context, line *models.CartItem) error {
	logging.Sugar.Infof("📝 UpdateCartItem: id=%s, quantity=%d", line.ID, line.Quantity)

	sels, err := encodeJSON(line.Selections, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode selections: %w", err)
	}
	snap, err := encodeJSON(line.SelectedOptions, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode selected options: %w", err)
	}
	line.UpdatedAt = now()

	query := `
		UPDATE cart_items SET quantity = ?, selections = ?, selected_options = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`
	res, err := r.db.ExecContext(ctx, query, line.Quantity, sels, snap, line.UpdatedAt, line.ID, line.UserID)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("cart item", line.ID)
	}
	return nil
}

// Delete removes a cart line of userID
func (r *CartRepository) Delete(ctx context.Context, id, userID string) error {
	logging.Sugar.Infof("🗑️  RemoveFromCart: id=%s, user=%s", id, userID)

	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("cart item", id)
	}
	return nil
}

// Clear removes every cart line of userID and returns how many were removed
func (r *CartRepository) Clear(ctx context.Context, userID string) (int64, error) {
	return clearCart(ctx, r.db, userID)
}

// List returns the user's cart lines joined with their items, newest first
func (r *CartRepository) List(ctx context.Context, userID string) ([]models.CartItemView, error) {
	return listCart(ctx, r.db, userID)
}

func clearCart(ctx context.Context, q db.Querier, userID string) (int64, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	n, _ := res.RowsAffected()
	logging.Sugar.Infof("🧹 ClearCart: user=%s, removed=%d", userID, n)
	return n, nil
}

func listCart(ctx context.Context, q db.Querier, userID string) ([]models.CartItemView, error) {
	query := `
		SELECT ci.id, ci.user_id, ci.item_id, ci.quantity, ci.selections, ci.selected_options,
		       ci.created_at, ci.updated_at,
		       i.name, i.slug, i.price, COALESCE(c.name, ''),
		       i.minimum_quantity, i.maximum_quantity, i.circulation
		FROM cart_items ci
		INNER JOIN items i ON i.id = ci.item_id
		LEFT JOIN categories c ON c.id = i.category_id
		WHERE ci.user_id = ?
		ORDER BY ci.created_at DESC, ci.id DESC
	`
	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		logging.Sugar.Errorf("❌ ListCart: %v", err)
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	lines := []models.CartItemView{}
	for rows.Next() {
		var v models.CartItemView
		var sels, snap string
		var maximum sql.NullInt64
		err := rows.Scan(
			&v.ID, &v.UserID, &v.ItemID, &v.Quantity, &sels, &snap,
			&v.CreatedAt, &v.UpdatedAt,
			&v.ItemName, &v.ItemSlug, &v.ItemPrice, &v.CategoryName,
			&v.Constraint.Minimum, &maximum, &v.Constraint.Circulation,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		v.Constraint.Maximum = intPtr(maximum)
		if v.Selections, err = decodeSelections(sels); err != nil {
			return nil, err
		}
		if v.SelectedOptions, err = decodeSnapshot(snap); err != nil {
			return nil, err
		}
		lines = append(lines, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart: %w", err)
	}
	return lines, nil
}
