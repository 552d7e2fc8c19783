package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/pkg/orm"
	"github.com/shashiranjanraj/vastra/pkg/testkit"
)

func setup(t *testing.T) *repositories.Repos {
	t.Helper()
	return repositories.New(testkit.DB(t, models.All()...))
}

func product(t *testing.T, r *repositories.Repos, name string, stock int, mutate ...func(*models.Product)) models.Product {
	t.Helper()
	p := models.Product{Name: name, Slug: name, Price: 1000, StockQuantity: stock, IsActive: true}
	for _, m := range mutate {
		m(&p)
	}
	require.NoError(t, r.Products.Create(context.Background(), &p))
	return p
}

func TestActiveOrdersPremiumFirstThenNewest(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	product(t, r, "old-premium", 1, func(p *models.Product) { p.IsPremium = true; p.CreatedAt = base })
	product(t, r, "new", 1, func(p *models.Product) { p.CreatedAt = base.Add(30 * time.Minute) })
	product(t, r, "new-premium", 1, func(p *models.Product) { p.IsPremium = true; p.CreatedAt = base.Add(10 * time.Minute) })
	product(t, r, "hidden", 1, func(p *models.Product) { p.CreatedAt = base.Add(40 * time.Minute) })
	require.NoError(t, r.DB().Model(&models.Product{}).Where("slug = ?", "hidden").Update("is_active", false).Error)

	got, err := r.Products.Active(ctx)
	require.NoError(t, err)
	var slugs []string
	for _, p := range got {
		slugs = append(slugs, p.Slug)
	}
	assert.Equal(t, []string{"new-premium", "old-premium", "new"}, slugs)
}

func TestDecrementStockIsConditional(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	p := product(t, r, "kurta", 2)

	ok, err := r.Products.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Products.DecrementStock(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "stock never goes negative")

	got, err := r.Products.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)
}

func TestDuplicateSlugAndMissingRows(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	require.NoError(t, r.Brands.Save(ctx, &models.Brand{Name: "Anaya", Slug: "anaya"}))
	err := r.Brands.Save(ctx, &models.Brand{Name: "Anaya 2", Slug: "anaya"})
	assert.True(t, errors.Is(err, repositories.ErrDuplicate), "got %v", err)

	_, err = r.Brands.FindBySlug(ctx, "nope")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, r.Categories.Delete(ctx, 99), repositories.ErrNotFound)
}

func TestCollectionProductsKeepPosition(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	a := product(t, r, "a", 1)
	b := product(t, r, "b", 1)
	c := product(t, r, "c", 1)
	col := models.Collection{Name: "Festive", Slug: "festive", IsActive: true}
	require.NoError(t, r.Collections.Save(ctx, &col))

	require.NoError(t, r.Collections.SetProducts(ctx, col.ID, []uint{c.ID, a.ID, c.ID, b.ID}))
	got, err := r.Collections.Products(ctx, col.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uint{c.ID, a.ID, b.ID}, []uint{got[0].ID, got[1].ID, got[2].ID})

	require.NoError(t, r.Collections.SetProducts(ctx, col.ID, []uint{b.ID}))
	got, err = r.Collections.Products(ctx, col.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLiveCollectionsRespectWindow(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	now := time.Now()
	past, future := now.Add(-48*time.Hour), now.Add(48*time.Hour)

	for _, c := range []models.Collection{
		{Name: "Open", Slug: "open", IsActive: true, DisplayOrder: 2},
		{Name: "Running", Slug: "running", IsActive: true, StartsAt: &past, EndsAt: &future, DisplayOrder: 1, IsFeatured: true},
		{Name: "Ended", Slug: "ended", IsActive: true, EndsAt: &past},
		{Name: "Upcoming", Slug: "upcoming", IsActive: true, StartsAt: &future},
		{Name: "Off", Slug: "off", IsActive: false},
	} {
		c := c
		require.NoError(t, r.Collections.Save(ctx, &c))
	}
	require.NoError(t, r.DB().Model(&models.Collection{}).Where("slug = ?", "off").Update("is_active", false).Error)

	live, err := r.Collections.Live(ctx, now, false)
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.Equal(t, "running", live[0].Slug)
	assert.Equal(t, "open", live[1].Slug)

	featured, err := r.Collections.Live(ctx, now, true)
	require.NoError(t, err)
	assert.Len(t, featured, 1)
}

func TestReviewAggregatesAndUpsert(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	p := product(t, r, "saree", 1)

	require.NoError(t, r.Reviews.Upsert(ctx, &models.Review{UserID: 1, ProductID: p.ID, Rating: 5}))
	require.NoError(t, r.Reviews.Upsert(ctx, &models.Review{UserID: 2, ProductID: p.ID, Rating: 2}))
	require.NoError(t, r.Reviews.Upsert(ctx, &models.Review{UserID: 2, ProductID: p.ID, Rating: 4, Comment: "better"}))

	agg, err := r.Reviews.Aggregates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, agg[p.ID].Count)
	assert.InDelta(t, 4.5, agg[p.ID].Average, 0.001)
}

func TestOrdersRevenueAndCustomers(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	u := models.User{Email: "asha@example.in", Password: "x", Role: "customer"}
	require.NoError(t, r.Users.Create(ctx, &u))
	admin := models.User{Email: "ops@example.in", Password: "x", Role: "admin"}
	require.NoError(t, r.Users.Create(ctx, &admin))

	for i, total := range []float64{1200, 800.5} {
		o := models.Order{
			OrderNumber: []string{"VS-A", "VS-B"}[i], UserID: u.ID, Total: total,
			PaymentStatus: models.IntentPaid, Status: models.OrderProcessing,
			Items: []models.OrderItem{{ProductID: 1, ProductName: "x", Price: total, Quantity: 1, TotalPrice: total}},
		}
		require.NoError(t, r.Orders.Create(ctx, &o))
	}

	rev, err := r.Orders.Revenue(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 2000.5, rev, 0.001)

	rows, page, err := r.Users.Customers(ctx, "", orm.NewPagination(1, 10))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].OrderCount)
	assert.Equal(t, int64(1), page.Total)

	mine, err := r.Orders.FindForUser(ctx, u.ID, "VS-B")
	require.NoError(t, err)
	assert.Len(t, mine.Items, 1)
	_, err = r.Orders.FindForUser(ctx, admin.ID, "VS-B")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRemoveLinesTakesOnlyPaidQuantities(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	u := models.User{Email: "nila@example.com", Password: "x", FirstName: "Nila", Role: "customer"}
	require.NoError(t, r.Users.Create(ctx, &u))
	kurta := product(t, r, "kurta", 5)
	saree := product(t, r, "saree", 5)
	shawl := product(t, r, "shawl", 5)

	for _, it := range []models.CartItem{
		{UserID: u.ID, ProductID: kurta.ID, Quantity: 3, Price: 1000},
		{UserID: u.ID, ProductID: saree.ID, Quantity: 1, Price: 1000},
		{UserID: u.ID, ProductID: shawl.ID, Quantity: 2, Price: 1000},
	} {
		it := it
		require.NoError(t, r.Cart.Create(ctx, &it))
	}

	require.NoError(t, r.Cart.RemoveLines(ctx, u.ID, map[uint]int{kurta.ID: 2, saree.ID: 1}))

	items, err := r.Cart.ForUser(ctx, u.ID)
	require.NoError(t, err)
	left := map[uint]int{}
	for _, it := range items {
		left[it.ProductID] = it.Quantity
	}
	assert.Equal(t, map[uint]int{kurta.ID: 1, shawl.ID: 2}, left)
}
