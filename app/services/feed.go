package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shashiranjanraj/vastra/app/catalog"
	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/pkg/cache"
	"github.com/shashiranjanraj/vastra/pkg/event"
	"github.com/shashiranjanraj/vastra/pkg/logger"
	"github.com/shashiranjanraj/vastra/pkg/metrics"
)

// Event names shared by the services and their listeners.
const (
	EventProductsChanged  = "products.changed"
	EventOrderPlaced      = "order.placed"
	EventCatalogRefreshed = "catalog.refreshed"
)

const feedCacheKey = "catalog:items"

// CatalogLoader produces the full storefront product list.
type CatalogLoader func(ctx context.Context) ([]catalog.Item, error)

// Publisher pushes a named event to live clients.
type Publisher func(event string, data any)

// CatalogFeed holds the in-memory product list read by the catalog engine.
//
// Each load takes a sequence number when it starts; its result is applied
// only if no later load has been applied already, so a slow response can
// never overwrite a fresher one.
type CatalogFeed struct {
	load     CatalogLoader
	cache    *cache.Cache
	ttl      time.Duration
	debounce time.Duration
	publish  []Publisher

	seq atomic.Uint64

	mu      sync.RWMutex
	items   []catalog.Item
	applied uint64
	at      time.Time

	timerMu sync.Mutex
	timer   *time.Timer

	// storeMu orders cache writes; stored is the sequence last written.
	storeMu sync.Mutex
	stored  uint64
	persist func(ctx context.Context, items []catalog.Item) error
}

// FeedOption configures a CatalogFeed.
type FeedOption func(*CatalogFeed)

func WithFeedCache(c *cache.Cache, ttl time.Duration) FeedOption {
	return func(f *CatalogFeed) { f.cache, f.ttl = c, ttl }
}

// WithDebounce coalesces refresh triggers arriving within d into one load.
// Zero reloads on every trigger.
func WithDebounce(d time.Duration) FeedOption {
	return func(f *CatalogFeed) { f.debounce = d }
}

// WithPublisher adds a live channel told about every applied refresh.
func WithPublisher(p Publisher) FeedOption {
	return func(f *CatalogFeed) { f.publish = append(f.publish, p) }
}

// NewCatalogFeed creates a feed over load. Nothing is loaded until the
// first Refresh or Snapshot.
func NewCatalogFeed(load CatalogLoader, opts ...FeedOption) *CatalogFeed {
	f := &CatalogFeed{load: load, cache: cache.New(nil, ""), ttl: 5 * time.Minute}
	for _, o := range opts {
		o(f)
	}
	f.persist = func(ctx context.Context, items []catalog.Item) error {
		return f.cache.Set(ctx, feedCacheKey, items, f.ttl)
	}
	return f
}

// RepositoryLoader joins active products with their review aggregates.
// Products created within newArrivalDays of now are flagged new.
func RepositoryLoader(repos *repositories.Repos, newArrivalDays int, now func() time.Time) CatalogLoader {
	return func(ctx context.Context) ([]catalog.Item, error) {
		products, err := repos.Products.Active(ctx)
		if err != nil {
			return nil, err
		}
		ratings, err := repos.Reviews.Aggregates(ctx)
		if err != nil {
			return nil, err
		}
		t := now()
		items := make([]catalog.Item, len(products))
		for i, p := range products {
			items[i] = ToItem(p, ratings[p.ID], t, newArrivalDays)
		}
		return items, nil
	}
}

// ToItem converts a product row into the catalog's view of it.
func ToItem(p models.Product, agg repositories.Aggregate, now time.Time, newArrivalDays int) catalog.Item {
	it := catalog.Item{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Stock:          p.StockQuantity,
		Sizes:          p.Sizes,
		Colors:         p.Colors,
		ImageURLs:      p.ImageURLs,
		CreatedAt:      p.CreatedAt,
		Featured:       p.IsFeatured,
		Premium:        p.IsPremium,
		BestSeller:     p.IsBestSeller,
		NewArrival:     catalog.IsNewArrival(p.CreatedAt, now, newArrivalDays),
		Rating:         agg.Average,
		ReviewCount:    agg.Count,
	}
	if p.Brand != nil {
		it.Brand, it.BrandSlug = p.Brand.Name, p.Brand.Slug
	}
	if p.Category != nil {
		it.Category, it.CategorySlug = p.Category.Name, p.Category.Slug
	}
	return it
}

// Refresh loads the list from the database and applies it unless a newer
// load already landed. The fresh list replaces the cached copy.
func (f *CatalogFeed) Refresh(ctx context.Context) error {
	seq := f.seq.Add(1)
	items, err := f.load(ctx)
	if err != nil {
		metrics.CatalogRefreshes.WithLabelValues("failed").Inc()
		return fmt.Errorf("catalog feed: load: %w", err)
	}
	if f.apply(seq, items) {
		f.store(ctx, seq, items)
	}
	return nil
}

// store writes items to the shared cache unless a later sequence has
// already been written, so the cache never goes back to an older list.
func (f *CatalogFeed) store(ctx context.Context, seq uint64, items []catalog.Item) {
	f.storeMu.Lock()
	defer f.storeMu.Unlock()
	if seq <= f.stored {
		return
	}
	f.stored = seq
	if err := f.persist(ctx, items); err != nil {
		logger.WithCtx(ctx).Warn("catalog feed: cache write failed", "error", err)
	}
}

// Snapshot returns the current list. Before the first load it loads
// synchronously, preferring the cached copy.
func (f *CatalogFeed) Snapshot(ctx context.Context) ([]catalog.Item, error) {
	f.mu.RLock()
	items, ready := f.items, f.applied > 0
	f.mu.RUnlock()
	if ready {
		return items, nil
	}

	seq := f.seq.Add(1)
	items, err := cache.Remember(ctx, f.cache, feedCacheKey, f.ttl, f.load)
	if err != nil {
		metrics.CatalogRefreshes.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("catalog feed: load: %w", err)
	}
	f.apply(seq, items)

	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.items, nil
}

// LoadedAt is the time the current list was applied.
func (f *CatalogFeed) LoadedAt() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.at
}

func (f *CatalogFeed) apply(seq uint64, items []catalog.Item) bool {
	if items == nil {
		items = []catalog.Item{}
	}

	f.mu.Lock()
	if seq <= f.applied {
		f.mu.Unlock()
		metrics.CatalogRefreshes.WithLabelValues("stale").Inc()
		return false
	}
	f.items, f.applied, f.at = items, seq, time.Now()
	f.mu.Unlock()

	metrics.CatalogRefreshes.WithLabelValues("applied").Inc()
	metrics.CatalogProducts.Set(float64(len(items)))

	payload := map[string]any{"count": len(items), "sequence": seq}
	for _, p := range f.publish {
		p(EventCatalogRefreshed, payload)
	}
	return true
}

// Trigger schedules a refresh. With a debounce window, triggers inside the
// window share one load that starts when the window closes.
func (f *CatalogFeed) Trigger(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if f.debounce <= 0 {
		f.refreshLogged(ctx)
		return
	}

	f.timerMu.Lock()
	defer f.timerMu.Unlock()
	if f.timer != nil {
		f.timer.Reset(f.debounce)
		return
	}
	f.timer = time.AfterFunc(f.debounce, func() {
		f.timerMu.Lock()
		f.timer = nil
		f.timerMu.Unlock()
		f.refreshLogged(ctx)
	})
}

func (f *CatalogFeed) refreshLogged(ctx context.Context) {
	if err := f.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithCtx(ctx).Error("catalog feed: refresh failed", "error", err)
	}
}

// Listen refreshes the feed whenever products change.
func (f *CatalogFeed) Listen(bus *event.Bus) {
	bus.Listen(EventProductsChanged, func(ctx context.Context, _ any) {
		f.Trigger(ctx)
	})
}
