package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"storefront/models"
	"storefront/pricing"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestCache(t *testing.T, opts ...Option) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	c := NewFromClient(client, opts...)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func sampleItem() *models.Item {
	max := 500
	v := 1.5
	return &models.Item{
		ID:         "item-1",
		Name:       "Flyer",
		Slug:       "flyer",
		Price:      0.2,
		Constraint: pricing.Constraint{Minimum: 50, Maximum: &max, Circulation: 25},
		Status:     models.ItemStatusActive,
		ConditionalFields: []pricing.RawNode{
			{Text: "Fold", Children: &[]pricing.RawNode{{Text: "Tri-fold", Value: &v}}},
		},
		ImagePath: "cache/images/item-1.jpg",
		HasImage:  true,
	}
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, WithTTL(time.Minute), WithPrefix("test:"))

	_, err := c.Get(ctx, IDKey("item-1"))
	assert.ErrorIs(t, err, ErrMiss)

	item := sampleItem()
	require.NoError(t, c.Set(ctx, item))
	assert.True(t, mr.Exists("test:id:item-1"))
	assert.True(t, mr.Exists("test:slug:flyer"))
	assert.Equal(t, time.Minute, mr.TTL("test:id:item-1"))

	byID, err := c.Get(ctx, IDKey("item-1"))
	require.NoError(t, err)
	assert.Equal(t, item, byID)

	bySlug, err := c.Get(ctx, SlugKey("flyer"))
	require.NoError(t, err)
	assert.Equal(t, item.ID, bySlug.ID)
	assert.Equal(t, "cache/images/item-1.jpg", bySlug.ImagePath)

	require.NoError(t, c.Invalidate(ctx, IDKey("item-1"), SlugKey("flyer")))
	_, err = c.Get(ctx, SlugKey("flyer"))
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, WithTTL(time.Second))

	require.NoError(t, c.Set(ctx, sampleItem()))
	mr.FastForward(2 * time.Second)

	_, err := c.Get(ctx, IDKey("item-1"))
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisUnavailable(t *testing.T) {
	ctx := context.Background()
	c := NewRedis("127.0.0.1:1", "", 0)
	t.Cleanup(func() { c.Close() })

	_, err := c.Get(ctx, IDKey("item-1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c ItemCache = Noop{}
	require.NoError(t, c.Set(ctx, sampleItem()))
	_, err := c.Get(ctx, IDKey("item-1"))
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, c.Invalidate(ctx, "x"))
}
