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
	"storefront/utils"
)

const categoryColumns = `
	c.id, c.name, c.description, c.created_by, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM items i WHERE i.category_id = c.id) AS item_count
`

// CategoryRepository handles database operations for categories
type CategoryRepository struct {
	db *db.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(d *db.DB) *CategoryRepository {
	return &CategoryRepository{db: d}
}

// Ensure CategoryRepository implements CategoryRepositoryInterface
var _ CategoryRepositoryInterface = (*CategoryRepository)(nil)

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt, &c.ItemCount)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new category owned by userID
func (r *CategoryRepository) Create(ctx context.Context, req *models.CategoryRequest, userID string) (*models.Category, error) {
	logging.Sugar.Infof("📁 CreateCategory: name=%s, created_by=%s", req.Name, userID)

	ts := now()
	c := &models.Category{
		ID:          newID(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   userID,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	query := `
		INSERT INTO categories (id, name, search_key, description, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Name, utils.SearchKey(c.Name), c.Description, c.CreatedBy, c.CreatedAt, c.UpdatedAt); err != nil {
		logging.Sugar.Errorf("❌ CreateCategory: %v", err)
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	logging.Sugar.Infof("✓ CreateCategory: id=%s", c.ID)
	return c, nil
}

// GetByID returns a category with its item count
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories c WHERE c.id = ?`
	c, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("category", id)
		}
		logging.Sugar.Errorf("❌ GetCategory: %v", err)
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// List returns categories newest first, by cursor or by page
func (r *CategoryRepository) List(ctx context.Context, page models.PageRequest) ([]models.Category, models.Pagination, error) {
	logging.Sugar.Debugf("📋 ListCategories: limit=%d, page=%d, cursor=%q", page.Limit, page.Page, page.Cursor)

	if page.Cursor != "" {
		clause, args, err := cursorClause(ctx, r.db, "categories", "c", page.Cursor)
		if err != nil {
			return nil, models.Pagination{}, err
		}
		query := `SELECT ` + categoryColumns + ` FROM categories c WHERE ` + clause +
			` ORDER BY c.created_at DESC, c.id DESC LIMIT ?`
		cats, err := r.query(ctx, query, append(args, page.Limit+1)...)
		if err != nil {
			return nil, models.Pagination{}, err
		}
		cats, next := trimPage(cats, page.Limit, func(c models.Category) string { return c.ID })
		return cats, models.Pagination{Limit: page.Limit, NextCursor: next, HasNextPage: next != ""}, nil
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, models.Pagination{}, fmt.Errorf("failed to count categories: %w", err)
	}

	query := `SELECT ` + categoryColumns + ` FROM categories c
		ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?`
	cats, err := r.query(ctx, query, page.Limit, page.Offset())
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return cats, models.NewPagePagination(page, total), nil
}

// Search finds categories whose name contains query, case-insensitively
func (r *CategoryRepository) Search(ctx context.Context, query string, limit int) ([]models.Category, error) {
	logging.Sugar.Debugf("🔍 SearchCategories: query=%q, limit=%d", query, limit)

	q := `SELECT ` + categoryColumns + ` FROM categories c
		WHERE c.search_key LIKE ?
		ORDER BY c.created_at DESC, c.id DESC LIMIT ?`
	return r.query(ctx, q, likePattern(query), limit)
}

// Update changes name and description of a category
func (r *CategoryRepository) Update(ctx context.Context, id string, req *models.CategoryRequest) (*models.Category, error) {
	logging.Sugar.Infof("📝 UpdateCategory: id=%s", id)

	name := strings.TrimSpace(req.Name)
	query := `UPDATE categories SET name = ?, search_key = ?, description = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, name, utils.SearchKey(name), strings.TrimSpace(req.Description), now(), id)
	if err != nil {
		logging.Sugar.Errorf("❌ UpdateCategory: %v", err)
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperrors.NotFound("category", id)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a category. It refuses while the category still has items.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	logging.Sugar.Infof("🗑️  DeleteCategory: id=%s", id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE category_id = ?`, id).Scan(&count); err != nil {
		return fmt.Errorf("failed to count category items: %w", err)
	}
	if count > 0 {
		logging.Sugar.Warnf("❌ DeleteCategory: category %s still has %d items", id, count)
		return apperrors.Conflict("cannot delete category that has items; move or delete items first")
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("category", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	logging.Sugar.Infof("✓ DeleteCategory: id=%s", id)
	return nil
}

func (r *CategoryRepository) query(ctx context.Context, query string, args ...any) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logging.Sugar.Errorf("❌ Error querying categories: %v", err)
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	cats := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return cats, nil
}

// likePattern builds a case-folded substring pattern for search_key columns,
// escaping nothing; "%" and "_" in user input act as wildcards.
func likePattern(s string) string {
	return "%" + utils.SearchKey(s) + "%"
}
