package services_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vastra/app/catalog"
	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/pkg/event"
)

func names(items []catalog.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestFeedDiscardsStaleLoad(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32

	load := func(ctx context.Context) ([]catalog.Item, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return []catalog.Item{{Name: "stale"}}, nil
		}
		return []catalog.Item{{Name: "fresh"}}, nil
	}

	var mu sync.Mutex
	var published []any
	feed := services.NewCatalogFeed(load, services.WithPublisher(func(event string, data any) {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, data)
	}))
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() { slow <- feed.Refresh(ctx) }()
	<-started

	require.NoError(t, feed.Refresh(ctx))
	close(release)
	require.NoError(t, <-slow)

	items, err := feed.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, names(items), "the older load finished last and must be discarded")

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, published, 1)
}

func TestFeedSnapshotLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	feed := services.NewCatalogFeed(func(context.Context) ([]catalog.Item, error) {
		calls.Add(1)
		return []catalog.Item{{Name: "a"}}, nil
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		items, err := feed.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, feed.LoadedAt().IsZero())
}

func TestFeedDebounceCoalescesTriggers(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{}, 4)
	feed := services.NewCatalogFeed(func(context.Context) ([]catalog.Item, error) {
		calls.Add(1)
		done <- struct{}{}
		return nil, nil
	}, services.WithDebounce(30*time.Millisecond))

	bus := event.NewBus()
	feed.Listen(bus)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		bus.Fire(ctx, services.EventProductsChanged, nil)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced refresh never ran")
	}
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFeedWithoutDebounceReloadsEveryEvent(t *testing.T) {
	var calls atomic.Int32
	feed := services.NewCatalogFeed(func(context.Context) ([]catalog.Item, error) {
		calls.Add(1)
		return nil, nil
	})
	bus := event.NewBus()
	feed.Listen(bus)

	for i := 0; i < 3; i++ {
		bus.Fire(context.Background(), services.EventProductsChanged, nil)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestRepositoryLoaderJoinsRatingsAndNewArrivals(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	now := time.Now()
	_, sess := customer(t, r, "asha@example.com")

	brand := models.Brand{Name: "Anaya", Slug: "anaya"}
	require.NoError(t, r.Brands.Save(ctx, &brand))
	old := models.Product{Name: "Old Kurta", Slug: "old-kurta", Price: 900, IsActive: true, BrandID: &brand.ID, CreatedAt: now.AddDate(0, 0, -90)}
	require.NoError(t, r.Products.Create(ctx, &old))
	fresh := product(t, r, "fresh-saree", 4000, 3)
	require.NoError(t, r.Reviews.Upsert(ctx, &models.Review{UserID: sess.UserID, ProductID: old.ID, Rating: 4}))

	items, err := services.RepositoryLoader(r, 30, func() time.Time { return now })(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := map[uint]catalog.Item{}
	for _, it := range items {
		byID[it.ID] = it
	}
	assert.Equal(t, "Anaya", byID[old.ID].Brand)
	assert.Equal(t, 4.0, byID[old.ID].Rating)
	assert.Equal(t, 1, byID[old.ID].ReviewCount)
	assert.False(t, byID[old.ID].NewArrival)
	assert.True(t, byID[fresh.ID].NewArrival)
}
