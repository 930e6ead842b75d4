package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/apperrors"
	"storefront/db"
	"storefront/models"
	"storefront/pricing"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	d, err := db.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	orig := now
	var tick int64
	now = func() string {
		tick++
		return time.Unix(1_700_000_000+tick, 0).UTC().Format(db.TimeLayout)
	}
	t.Cleanup(func() { now = orig })
	return d
}

func floatPtr(v float64) *float64 { return &v }

func seedItem(t *testing.T, repo *ItemRepository, categoryID, name string) *models.Item {
	t.Helper()
	max := 1000
	item := &models.Item{
		Name:       name,
		Slug:       name,
		Price:      2,
		Constraint: pricing.Constraint{Minimum: 100, Maximum: &max, Circulation: 50},
		Status:     models.ItemStatusActive,
		ConditionalFields: []pricing.RawNode{
			{Text: "Paper", Children: &[]pricing.RawNode{
				{Text: "Matte", Value: floatPtr(0)},
				{Text: "Glossy", Value: floatPtr(0.5)},
			}},
		},
		CategoryID: categoryID,
		CreatedBy:  "admin",
	}
	require.NoError(t, repo.Create(context.Background(), item))
	return item
}

func TestCategoryRepository(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	cats := NewCategoryRepository(d)
	items := NewItemRepository(d)

	cards, err := cats.Create(ctx, &models.CategoryRequest{Name: " Business Cards ", Description: "350gsm"}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "Business Cards", cards.Name)
	assert.NotEmpty(t, cards.ID)

	flyers, err := cats.Create(ctx, &models.CategoryRequest{Name: "Flyers"}, "admin")
	require.NoError(t, err)

	seedItem(t, items, cards.ID, "standard-card")

	got, err := cats.GetByID(ctx, cards.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ItemCount)
	assert.Equal(t, "admin", got.CreatedBy)

	_, err = cats.GetByID(ctx, "missing")
	assert.True(t, apperrors.IsType(err, apperrors.TypeNotFound))

	found, err := cats.Search(ctx, "CARD", 20)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, cards.ID, found[0].ID)

	updated, err := cats.Update(ctx, flyers.ID, &models.CategoryRequest{Name: "Leaflets"})
	require.NoError(t, err)
	assert.Equal(t, "Leaflets", updated.Name)

	err = cats.Delete(ctx, cards.ID)
	assert.True(t, apperrors.IsType(err, apperrors.TypeConflict), "got %v", err)

	require.NoError(t, cats.Delete(ctx, flyers.ID))
	err = cats.Delete(ctx, flyers.ID)
	assert.True(t, apperrors.IsType(err, apperrors.TypeNotFound))
}

func TestSearchFoldsNonASCII(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	cats := NewCategoryRepository(d)
	items := NewItemRepository(d)

	school, err := cats.Create(ctx, &models.CategoryRequest{Name: "École Supplies"}, "admin")
	require.NoError(t, err)
	_, err = cats.Create(ctx, &models.CategoryRequest{Name: "Flyers"}, "admin")
	require.NoError(t, err)

	for _, q := range []string{"é", "ÉCOLE", "école"} {
		found, err := cats.Search(ctx, q, 20)
		require.NoError(t, err)
		require.Len(t, found, 1, "query %q", q)
		assert.Equal(t, school.ID, found[0].ID)
	}

	_, err = cats.Update(ctx, school.ID, &models.CategoryRequest{Name: "Über Labels"})
	require.NoError(t, err)
	found, err := cats.Search(ctx, "über", 20)
	require.NoError(t, err)
	assert.Len(t, found, 1)
	found, err = cats.Search(ctx, "école", 20)
	require.NoError(t, err)
	assert.Empty(t, found)

	label := seedItem(t, items, school.ID, "Étiquette Ronde")
	matched, err := items.Search(ctx, "ÉTIQ", 10)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, label.ID, matched[0].ID)
}

func TestCategoryPagination(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	cats := NewCategoryRepository(d)

	var ids []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		c, err := cats.Create(ctx, &models.CategoryRequest{Name: name}, "admin")
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	// page mode, newest first
	page, p, err := cats.List(ctx, models.PageRequest{Limit: 2, Page: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)
	assert.Equal(t, 5, p.TotalCount)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNextPage)
	assert.True(t, p.HasPreviousPage)

	// cursor mode walks every row exactly once
	var seen []string
	cursor := ""
	first := true
	for first || cursor != "" {
		first = false
		page, p, err := cats.List(ctx, models.PageRequest{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		for _, c := range page {
			seen = append(seen, c.ID)
		}
		cursor = p.NextCursor
	}
	assert.Equal(t, []string{ids[4], ids[3], ids[2], ids[1], ids[0]}, seen)

	_, _, err = cats.List(ctx, models.PageRequest{Limit: 2, Cursor: "nope"})
	assert.True(t, apperrors.IsType(err, apperrors.TypeValidation))
}

func TestItemRepository(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	cat, err := NewCategoryRepository(d).Create(ctx, &models.CategoryRequest{Name: "Cards"}, "admin")
	require.NoError(t, err)
	repo := NewItemRepository(d)

	item := seedItem(t, repo, cat.ID, "business-card")

	got, err := repo.GetBySlug(ctx, "business-card")
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, "Cards", got.CategoryName)
	assert.Equal(t, 100, got.Minimum)
	require.NotNil(t, got.Maximum)
	assert.Equal(t, 1000, *got.Maximum)
	assert.Equal(t, 50, got.Circulation)
	require.Len(t, got.ConditionalFields, 1)
	tree := got.Tree()
	assert.Equal(t, 0.5, tree.PriceOf(tree.Roots()[0]))

	exists, err := repo.SlugExists(ctx, "business-card", "")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.SlugExists(ctx, "business-card", item.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	got.Maximum = nil
	got.ConditionalFields = nil
	got.Name = "Premium Card"
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, again.Maximum)
	assert.Empty(t, again.ConditionalFields)
	assert.Equal(t, "Premium Card", again.Name)

	require.NoError(t, repo.SetImage(ctx, item.ID, "images/a.jpg"))
	again, err = repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, again.HasImage)

	other := seedItem(t, repo, cat.ID, "letterhead")
	latest, err := repo.Latest(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, other.ID, latest.ID)

	found, err := repo.Search(ctx, "premium", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)

	catID := cat.ID
	list, p, err := repo.List(ctx, ItemFilterParams{CategoryID: &catID}, models.PageRequest{Limit: 1, Page: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, other.ID, list[0].ID)
	assert.Equal(t, 2, p.TotalCount)

	list, p, err = repo.List(ctx, ItemFilterParams{}, models.PageRequest{Limit: 1, Cursor: other.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, item.ID, p.NextCursor)

	require.NoError(t, repo.Delete(ctx, other.ID))
	_, err = repo.GetByID(ctx, other.ID)
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.TypeNotFound, appErr.Type)
}

func TestCartAndCheckout(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	cat, err := NewCategoryRepository(d).Create(ctx, &models.CategoryRequest{Name: "Cards"}, "admin")
	require.NoError(t, err)
	item := seedItem(t, NewItemRepository(d), cat.ID, "business-card")

	carts := NewCartRepository(d)
	orders := NewOrderRepository(d)

	snap := pricing.Snapshot{{Field: "Paper", Path: []string{"Paper", "Glossy"}, Value: 0.5}}
	line := &models.CartItem{
		UserID:          "u1",
		ItemID:          item.ID,
		Quantity:        150,
		Selections:      []pricing.Selection{{Field: 0, Path: []int{1}}},
		SelectedOptions: snap,
	}
	require.NoError(t, carts.Add(ctx, line))
	require.NoError(t, carts.Add(ctx, &models.CartItem{UserID: "u2", ItemID: item.ID, Quantity: 100}))

	views, err := carts.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "business-card", views[0].ItemName)
	assert.Equal(t, "Cards", views[0].CategoryName)
	assert.Equal(t, 2.0, views[0].ItemPrice)
	assert.Equal(t, 50, views[0].Constraint.Circulation)
	assert.Equal(t, snap, views[0].SelectedOptions)

	err = carts.Delete(ctx, line.ID, "u2")
	assert.True(t, apperrors.IsType(err, apperrors.TypeNotFound))

	line.Quantity = 200
	require.NoError(t, carts.Update(ctx, line))
	stored, err := carts.Get(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, 200, stored.Quantity)
	assert.Equal(t, []pricing.Selection{{Field: 0, Path: []int{1}}}, stored.Selections)

	order, err := orders.Checkout(ctx, "u1", func(lines []models.CartItemView) (*models.Order, error) {
		require.Len(t, lines, 1)
		l := lines[0]
		total := pricing.LineTotal(l.ItemPrice, l.Quantity, l.SelectedOptions)
		return &models.Order{
			InvoiceNumber: "INV-TEST-00001",
			Status:        models.OrderStatusPending,
			TotalQuantity: l.Quantity,
			TotalPrice:    total,
			Items: []models.OrderItem{{
				ItemID:          l.ItemID,
				ItemName:        l.ItemName,
				UnitPrice:       l.ItemPrice,
				Quantity:        l.Quantity,
				OptionsPrice:    l.SelectedOptions.OptionsPrice(),
				LineTotal:       total,
				SelectedOptions: l.SelectedOptions,
			}},
		}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 500.0, order.TotalPrice)

	views, err = carts.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, views)
	views, err = carts.List(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, views, 1, "other users' carts are untouched")

	got, err := orders.GetByID(ctx, order.ID, "u1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Paper → Glossy", got.Items[0].OptionsLabel())
	assert.Equal(t, 500.0, got.Items[0].LineTotal)

	_, err = orders.GetByID(ctx, order.ID, "u2")
	assert.True(t, apperrors.IsType(err, apperrors.TypeNotFound))

	history, p, err := orders.ListByUser(ctx, "u1", models.PageRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Len(t, history[0].Items, 1)
	assert.False(t, p.HasNextPage)

	n, err := carts.Clear(ctx, "u2")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCheckoutRollsBackOnBuildError(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	cat, err := NewCategoryRepository(d).Create(ctx, &models.CategoryRequest{Name: "Cards"}, "admin")
	require.NoError(t, err)
	item := seedItem(t, NewItemRepository(d), cat.ID, "business-card")

	carts := NewCartRepository(d)
	require.NoError(t, carts.Add(ctx, &models.CartItem{UserID: "u1", ItemID: item.ID, Quantity: 100}))

	boom := errors.New("boom")
	_, err = NewOrderRepository(d).Checkout(ctx, "u1", func([]models.CartItemView) (*models.Order, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	views, err := carts.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", db.Rebind(db.DriverPostgres, "SELECT * FROM t WHERE a = ? AND b = ?"))
	assert.Equal(t, "SELECT ?", db.Rebind(db.DriverSQLite, "SELECT ?"))

	d, err := db.OpenMemory(context.Background())
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, "SELECT * FROM t WHERE a = ?", d.Rebind("SELECT * FROM t WHERE a = ?"))
}
