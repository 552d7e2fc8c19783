package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/pkg/session"
)

func TestCartAddTwiceIncrementsQuantity(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	_, sess := customer(t, r, "asha@example.com")
	p := product(t, r, "silk-kurta", 1249.5, 10)
	cart := services.NewCartService(r)

	_, err := cart.Add(ctx, sess, p.ID)
	require.NoError(t, err)
	got, err := cart.Add(ctx, sess, p.ID)
	require.NoError(t, err)

	require.Len(t, got.Items, 1, "second add must not create a row")
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, 2499.0, got.Total)
	assert.Equal(t, "silk-kurta", got.Items[0].ProductName)
	assert.Equal(t, "https://cdn/silk-kurta.jpg", got.Items[0].ImageURL)
}

func TestCartQuantityZeroRemovesRow(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	_, sess := customer(t, r, "asha@example.com")
	a := product(t, r, "a", 100, 5)
	b := product(t, r, "b", 200, 5)
	cart := services.NewCartService(r)

	_, err := cart.Add(ctx, sess, a.ID)
	require.NoError(t, err)
	got, err := cart.Add(ctx, sess, b.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)

	var rowA models.CartItem
	for _, it := range got.Items {
		if it.ProductID == a.ID {
			rowA = it
		}
	}

	got, err = cart.UpdateQuantity(ctx, sess, rowA.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Count)
	assert.Equal(t, 500.0, got.Total)

	got, err = cart.UpdateQuantity(ctx, sess, rowA.ID, 0)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, b.ID, got.Items[0].ProductID)
}

func TestCartScopesByUserAndRejectsGuests(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	_, asha := customer(t, r, "asha@example.com")
	_, ravi := customer(t, r, "ravi@example.com")
	p := product(t, r, "dupatta", 300, 5)
	cart := services.NewCartService(r)

	got, err := cart.Add(ctx, asha, p.ID)
	require.NoError(t, err)
	itemID := got.Items[0].ID

	_, err = cart.Remove(ctx, ravi, itemID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = cart.Add(ctx, session.Guest(), p.ID)
	assert.ErrorIs(t, err, services.ErrSignInRequired)

	_, err = cart.Add(ctx, asha, 9999)
	assert.ErrorIs(t, err, services.ErrNotFound)

	require.NoError(t, cart.Clear(ctx, asha))
	got, err = cart.Items(ctx, asha)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.Zero(t, got.Total)
}

func TestTotals(t *testing.T) {
	count, total := services.Totals([]models.CartItem{
		{Price: 0.1, Quantity: 3},
		{Price: 199.99, Quantity: 2},
	})
	assert.Equal(t, 5, count)
	assert.Equal(t, 400.28, total)
}

func TestWishlistDuplicateDoesNotWrite(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	_, sess := customer(t, r, "asha@example.com")
	p := product(t, r, "saree", 4999, 2)
	wishlist := services.NewWishlistService(r)

	inserts := 0
	require.NoError(t, r.DB().Callback().Create().After("gorm:create").Register("test:count_wishlist", func(tx *gorm.DB) {
		if tx.Statement.Table == "wishlist_items" {
			inserts++
		}
	}))

	require.NoError(t, wishlist.Add(ctx, sess, p.ID))
	err := wishlist.Add(ctx, sess, p.ID)
	assert.ErrorIs(t, err, services.ErrAlreadyInWishlist)
	assert.Equal(t, 1, inserts, "duplicate add must not issue a second insert")

	items, err := wishlist.Items(ctx, sess)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "saree", items[0].Product.Name)

	ok, err := wishlist.Contains(ctx, sess, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, wishlist.Remove(ctx, sess, p.ID))
	ok, err = wishlist.Contains(ctx, sess, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
