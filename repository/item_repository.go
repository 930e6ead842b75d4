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
	"storefront/utils"
)

const itemColumns = `
	i.id, i.name, i.slug, i.description, i.price,
	i.minimum_quantity, i.maximum_quantity, i.circulation, i.status,
	i.conditional_fields, i.category_id, COALESCE(c.name, '') AS category_name,
	i.image_path, i.created_by, i.created_at, i.updated_at
`

const itemFrom = ` FROM items i LEFT JOIN categories c ON c.id = i.category_id`

// ItemFilterParams represents optional filter parameters for items
type ItemFilterParams struct {
	CategoryID *string
	CreatedBy  *string
}

// ItemRepository handles database operations for items
type ItemRepository struct {
	db *db.DB
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(d *db.DB) *ItemRepository {
	return &ItemRepository{db: d}
}

// Ensure ItemRepository implements ItemRepositoryInterface
var _ ItemRepositoryInterface = (*ItemRepository)(nil)

func scanItem(row interface{ Scan(...any) error }) (*models.Item, error) {
	var it models.Item
	var maximum sql.NullInt64
	var fields string
	err := row.Scan(
		&it.ID,
		&it.Name,
		&it.Slug,
		&it.Description,
		&it.Price,
		&it.Minimum,
		&maximum,
		&it.Circulation,
		&it.Status,
		&fields,
		&it.CategoryID,
		&it.CategoryName,
		&it.ImagePath,
		&it.CreatedBy,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Maximum = intPtr(maximum)
	it.HasImage = it.ImagePath != ""

	conditional, err := decodeTree(fields)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", it.ID, err)
	}
	it.ConditionalFields = conditional
	return &it, nil
}

func decodeTree(s string) ([]pricing.RawNode, error) {
	if s == "" || s == "null" {
		return nil, nil
	}
	var raw []pricing.RawNode
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode conditional fields: %w", err)
	}
	return raw, nil
}

func encodeTree(raw []pricing.RawNode) (string, error) {
	if len(raw) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("failed to encode conditional fields: %w", err)
	}
	return string(b), nil
}

// Create inserts item, assigning its id and timestamps
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	logging.Sugar.Infof("📦 CreateItem: name=%s, slug=%s, category=%s", item.Name, item.Slug, item.CategoryID)

	fields, err := encodeTree(item.ConditionalFields)
	if err != nil {
		return err
	}

	ts := now()
	item.ID = newID()
	item.CreatedAt = ts
	item.UpdatedAt = ts

	query := `
		INSERT INTO items (id, category_id, name, slug, search_key, description, price,
			minimum_quantity, maximum_quantity, circulation, status,
			conditional_fields, image_path, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		item.ID, item.CategoryID, item.Name, item.Slug, utils.SearchKey(item.Name), item.Description, item.Price,
		item.Minimum, nullInt(item.Maximum), item.Circulation, item.Status,
		fields, item.ImagePath, item.CreatedBy, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		logging.Sugar.Errorf("❌ CreateItem: %v", err)
		return fmt.Errorf("failed to create item: %w", err)
	}

	logging.Sugar.Infof("✓ CreateItem: id=%s", item.ID)
	return nil
}

// GetByID returns an item with its category name
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	return r.getOne(ctx, "i.id", id)
}

// GetBySlug returns an item by its URL slug
func (r *ItemRepository) GetBySlug(ctx context.Context, slug string) (*models.Item, error) {
	return r.getOne(ctx, "i.slug", slug)
}

func (r *ItemRepository) getOne(ctx context.Context, column, value string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + itemFrom + ` WHERE ` + column + ` = ?`
	it, err := scanItem(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("item", value)
		}
		logging.Sugar.Errorf("❌ GetItem: %s=%s: %v", column, value, err)
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

// SlugExists reports whether slug is taken by an item other than exceptID
func (r *ItemRepository) SlugExists(ctx context.Context, slug, exceptID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE slug = ? AND id <> ?`, slug, exceptID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return n > 0, nil
}

// List returns items newest first, by cursor or by page
func (r *ItemRepository) List(ctx context.Context, filters ItemFilterParams, page models.PageRequest) ([]models.Item, models.Pagination, error) {
	logging.Sugar.Debugf("📋 ListItems: category=%v, limit=%d, page=%d, cursor=%q", filters.CategoryID, page.Limit, page.Page, page.Cursor)

	where := " WHERE 1=1"
	var args []any
	if filters.CategoryID != nil {
		where += " AND i.category_id = ?"
		args = append(args, *filters.CategoryID)
	}
	if filters.CreatedBy != nil {
		where += " AND i.created_by = ?"
		args = append(args, *filters.CreatedBy)
	}

	if page.Cursor != "" {
		clause, cargs, err := cursorClause(ctx, r.db, "items", "i", page.Cursor)
		if err != nil {
			return nil, models.Pagination{}, err
		}
		query := `SELECT ` + itemColumns + itemFrom + where + ` AND ` + clause +
			` ORDER BY i.created_at DESC, i.id DESC LIMIT ?`
		args = append(append(args, cargs...), page.Limit+1)
		items, err := r.query(ctx, query, args...)
		if err != nil {
			return nil, models.Pagination{}, err
		}
		items, next := trimPage(items, page.Limit, func(it models.Item) string { return it.ID })
		return items, models.Pagination{Limit: page.Limit, NextCursor: next, HasNextPage: next != ""}, nil
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+itemFrom+where, args...).Scan(&total); err != nil {
		return nil, models.Pagination{}, fmt.Errorf("failed to count items: %w", err)
	}

	query := `SELECT ` + itemColumns + itemFrom + where + ` ORDER BY i.created_at DESC, i.id DESC LIMIT ? OFFSET ?`
	items, err := r.query(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return items, models.NewPagePagination(page, total), nil
}

// Search finds items whose name contains query, case-insensitively
func (r *ItemRepository) Search(ctx context.Context, query string, limit int) ([]models.Item, error) {
	logging.Sugar.Debugf("🔍 SearchItems: query=%q, limit=%d", query, limit)

	q := `SELECT ` + itemColumns + itemFrom + `
		WHERE i.search_key LIKE ?
		ORDER BY i.created_at DESC, i.id DESC LIMIT ?`
	return r.query(ctx, q, likePattern(query), limit)
}

// Latest returns the most recently created item of userID, or nil
func (r *ItemRepository) Latest(ctx context.Context, userID string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + itemFrom + `
		WHERE i.created_by = ?
		ORDER BY i.created_at DESC, i.id DESC LIMIT 1`
	it, err := scanItem(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest item: %w", err)
	}
	return it, nil
}

// Update stores every editable field of item
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	logging.Sugar.Infof("📝 UpdateItem: id=%s", item.ID)

	fields, err := encodeTree(item.ConditionalFields)
	if err != nil {
		return err
	}
	item.UpdatedAt = now()

	query := `
		UPDATE items SET
			category_id = ?, name = ?, slug = ?, search_key = ?, description = ?, price = ?,
			minimum_quantity = ?, maximum_quantity = ?, circulation = ?, status = ?,
			conditional_fields = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		item.CategoryID, item.Name, item.Slug, utils.SearchKey(item.Name), item.Description, item.Price,
		item.Minimum, nullInt(item.Maximum), item.Circulation, item.Status,
		fields, item.UpdatedAt, item.ID,
	)
	if err != nil {
		logging.Sugar.Errorf("❌ UpdateItem: %v", err)
		return fmt.Errorf("failed to update item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("item", item.ID)
	}
	logging.Sugar.Infof("✓ UpdateItem: id=%s", item.ID)
	return nil
}

// SetImage records the stored image path of an item
func (r *ItemRepository) SetImage(ctx context.Context, id, path string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE items SET image_path = ?, updated_at = ? WHERE id = ?`, path, now(), id)
	if err != nil {
		return fmt.Errorf("failed to set item image: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("item", id)
	}
	return nil
}

// Delete removes an item. Cart lines referencing it are removed with it;
// order lines keep their frozen copy.
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	logging.Sugar.Infof("🗑️  DeleteItem: id=%s", id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE item_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete cart lines: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("item", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *ItemRepository) query(ctx context.Context, query string, args ...any) ([]models.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logging.Sugar.Errorf("❌ Error querying items: %v", err)
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}
