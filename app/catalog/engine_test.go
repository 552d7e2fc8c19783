package catalog_test

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vastra/app/catalog"
)

func ptr(f float64) *float64 { return &f }

func names(items []catalog.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

var pair = []catalog.Item{
	{ID: 1, Name: "Red Dress", Brand: "A", Price: 500},
	{ID: 2, Name: "Blue Coat", Brand: "B", Price: 1500},
}

// generated builds a deterministic list with varied attributes.
func generated(n int) []catalog.Item {
	rng := rand.New(rand.NewSource(7))
	brands := []string{"Anaya", "Meera", "Kosha", "Tilak"}
	cats := []string{"Sarees", "Kurtas", "Dresses"}
	sizes := []string{"XS", "S", "M", "L", "XL"}
	colors := []string{"Red", "Indigo", "Ivory", "Black"}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	out := make([]catalog.Item, n)
	for i := range out {
		out[i] = catalog.Item{
			ID:         uint(i + 1),
			Name:       fmt.Sprintf("Item %03d", i+1),
			Brand:      brands[rng.Intn(len(brands))],
			Category:   cats[rng.Intn(len(cats))],
			Price:      float64(100 + rng.Intn(9000)),
			Sizes:      []string{sizes[rng.Intn(len(sizes))], sizes[rng.Intn(len(sizes))]},
			Colors:     []string{colors[rng.Intn(len(colors))]},
			CreatedAt:  base.Add(time.Duration(rng.Intn(1000)) * time.Hour),
			Rating:     float64(rng.Intn(6)),
			BestSeller: rng.Intn(4) == 0,
		}
		if rng.Intn(3) == 0 {
			out[i].CompareAtPrice = ptr(out[i].Price * 1.4)
		}
	}
	return out
}

func TestQueryScenario(t *testing.T) {
	res := catalog.Apply(pair, catalog.Selection{Query: "dress"})
	assert.Equal(t, []string{"Red Dress"}, names(res.Items))
	assert.Equal(t, 1, res.TotalPages)
}

func TestPriceRangeScenario(t *testing.T) {
	res := catalog.Apply(pair, catalog.Selection{MinPrice: ptr(0), MaxPrice: ptr(1000)})
	assert.Equal(t, []string{"Red Dress"}, names(res.Items))

	res = catalog.Apply(pair, catalog.Selection{MinPrice: ptr(0), MaxPrice: ptr(400)})
	assert.Empty(t, res.Items)
	assert.Equal(t, 0, res.TotalPages)
	assert.Equal(t, 1, res.Page)
}

func TestPriceRangeIsInclusiveAndInvertedRangeIsEmpty(t *testing.T) {
	res := catalog.Apply(pair, catalog.Selection{MinPrice: ptr(500), MaxPrice: ptr(1500)})
	assert.Len(t, res.Items, 2)

	res = catalog.Apply(pair, catalog.Selection{MinPrice: ptr(2000), MaxPrice: ptr(100)})
	assert.Empty(t, res.Items)
	assert.Equal(t, 0, res.TotalPages)
}

func TestNaNPriceBoundIsOpen(t *testing.T) {
	nan := math.NaN()
	res := catalog.Apply(pair, catalog.Selection{MinPrice: &nan, MaxPrice: ptr(1000)})
	assert.Equal(t, []string{"Red Dress"}, names(res.Items))

	res = catalog.Apply(pair, catalog.Selection{MinPrice: ptr(1000), MaxPrice: &nan})
	assert.Equal(t, []string{"Blue Coat"}, names(res.Items))
}

func TestThirdPageOfFortyFive(t *testing.T) {
	items := make([]catalog.Item, 45)
	for i := range items {
		items[i] = catalog.Item{ID: uint(i + 1), Name: fmt.Sprintf("P%d", i+1)}
	}
	res := catalog.Apply(items, catalog.Selection{Page: 3})
	require.Len(t, res.Items, 5)
	assert.Equal(t, []string{"P41", "P42", "P43", "P44", "P45"}, names(res.Items))
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, 45, res.Total)

	res = catalog.Apply(items, catalog.Selection{Page: 9})
	assert.Equal(t, 3, res.Page, "page is clamped")
	res = catalog.Apply(items, catalog.Selection{Page: -2})
	assert.Equal(t, 1, res.Page)
}

func TestCaseFoldedQuery(t *testing.T) {
	items := []catalog.Item{
		{Name: "ÉTÉ Linen Shirt"},
		{Name: "Silk Saree", Description: "Hand-woven in Varanasi"},
		{Name: "Wool Shawl", Category: "Winter"},
	}
	assert.Equal(t, []string{"ÉTÉ Linen Shirt"}, names(catalog.Filter(items, catalog.Selection{Query: "été"})))
	assert.Equal(t, []string{"Silk Saree"}, names(catalog.Filter(items, catalog.Selection{Query: "VARANASI"})))
	assert.Equal(t, []string{"Wool Shawl"}, names(catalog.Filter(items, catalog.Selection{Query: "winter"})))
	assert.Equal(t, catalog.Fold("K"), catalog.Fold("\u212A"), "kelvin sign folds with K")
}

func TestMultiValuedFiltersAreOrWithinAndAcross(t *testing.T) {
	items := []catalog.Item{
		{Name: "a", Brand: "Anaya", Category: "Kurtas", Sizes: []string{"M"}, Colors: []string{"Red"}},
		{Name: "b", Brand: "Meera", Category: "Kurtas", Sizes: []string{"L"}, Colors: []string{"Red"}},
		{Name: "c", Brand: "Kosha", Category: "Sarees", Sizes: []string{"M"}, Colors: []string{"Ivory"}},
	}
	sel := catalog.Selection{Brands: []string{"Anaya", "Kosha"}}
	assert.Equal(t, []string{"a", "c"}, names(catalog.Filter(items, sel)))

	sel.Sizes = []string{"M", "XL"}
	sel.Colors = []string{"Red"}
	assert.Equal(t, []string{"a"}, names(catalog.Filter(items, sel)))

	sel = catalog.Selection{Categories: []string{"Sarees"}}
	assert.Equal(t, []string{"c"}, names(catalog.Filter(items, sel)))
}

func TestFilterIsSubsequence(t *testing.T) {
	items := generated(120)
	selections := []catalog.Selection{
		{},
		{Query: "item 0"},
		{Brands: []string{"Anaya", "Tilak"}},
		{Sizes: []string{"M"}, Colors: []string{"Red", "Black"}},
		{Categories: []string{"Sarees"}, MinPrice: ptr(1000), MaxPrice: ptr(5000)},
	}
	for _, sel := range selections {
		got := catalog.Filter(items, sel)
		j := 0
		for _, it := range got {
			for j < len(items) && items[j].ID != it.ID {
				j++
			}
			require.Less(t, j, len(items), "result is not a subsequence for %+v", sel)
			j++
		}
	}
}

func TestEmptySelectionIsIdentity(t *testing.T) {
	items := make([]catalog.Item, 30)
	for i := range items {
		items[i] = catalog.Item{ID: uint(i + 1), Name: fmt.Sprintf("Same %d", 30-i), Price: 999}
	}
	got := catalog.Sort(catalog.Filter(items, catalog.Selection{}), catalog.SortRecommended)
	assert.Equal(t, items, got)

	res := catalog.Apply(items, catalog.Selection{})
	assert.Equal(t, items[:20], res.Items)
}

func TestPriceSortsAreReverses(t *testing.T) {
	items := make([]catalog.Item, 50)
	for i := range items {
		items[i] = catalog.Item{ID: uint(i + 1), Price: float64((i * 37) % 50)}
	}
	asc := catalog.Sort(items, catalog.SortPriceAsc)
	desc := catalog.Sort(items, catalog.SortPriceDesc)
	for i := range asc {
		assert.Equal(t, asc[i].ID, desc[len(desc)-1-i].ID)
	}
	assert.Equal(t, 0.0, asc[0].Price)
}

func TestSortKeys(t *testing.T) {
	now := time.Now()
	items := []catalog.Item{
		{ID: 1, Name: "banana", Rating: 3, CreatedAt: now.Add(-48 * time.Hour), Price: 100, CompareAtPrice: ptr(200)},
		{ID: 2, Name: "Apple", Rating: 5, CreatedAt: now.Add(-24 * time.Hour), Price: 100},
		{ID: 3, Name: "cherry", BestSeller: true, CreatedAt: now.Add(-72 * time.Hour), Price: 90, CompareAtPrice: ptr(100)},
		{ID: 4, Name: "date", NewArrival: true, Rating: 4, CreatedAt: now, Price: 50},
	}
	ids := func(key catalog.SortKey) []uint {
		var out []uint
		for _, it := range catalog.Sort(items, key) {
			out = append(out, it.ID)
		}
		return out
	}
	assert.Equal(t, []uint{3, 4, 2, 1}, ids(catalog.SortRecommended))
	assert.Equal(t, []uint{4, 2, 1, 3}, ids(catalog.SortNewest))
	assert.Equal(t, []uint{2, 4, 1, 3}, ids(catalog.SortRating))
	assert.Equal(t, []uint{1, 3, 2, 4}, ids(catalog.SortDiscount))
	assert.Equal(t, []uint{2, 1, 3, 4}, ids(catalog.SortName))
	assert.Equal(t, ids(catalog.SortRecommended), ids("bogus"))
	assert.Equal(t, catalog.SortRecommended, catalog.ParseSort(""))
	assert.Equal(t, catalog.SortPriceDesc, catalog.ParseSort("PRICE-DESC"))
}

func TestTotalPagesLaw(t *testing.T) {
	items := generated(97)
	for _, sel := range []catalog.Selection{
		{}, {Brands: []string{"Meera"}}, {Query: "nothing matches"}, {MinPrice: ptr(8000)},
	} {
		res := catalog.Apply(items, sel)
		if res.Total == 0 {
			assert.Equal(t, 0, res.TotalPages)
			continue
		}
		assert.Equal(t, (res.Total+catalog.PageSize-1)/catalog.PageSize, res.TotalPages)
	}
}

func TestDiscountPercent(t *testing.T) {
	assert.Equal(t, 25, catalog.DiscountPercent(75, ptr(100)))
	assert.Equal(t, 33, catalog.DiscountPercent(1999, ptr(2999)))
	assert.Equal(t, 0, catalog.DiscountPercent(100, ptr(100)))
	assert.Equal(t, 0, catalog.DiscountPercent(100, nil))
}

func TestIsNewArrival(t *testing.T) {
	now := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	assert.True(t, catalog.IsNewArrival(now.AddDate(0, 0, -30), now, 30))
	assert.False(t, catalog.IsNewArrival(now.AddDate(0, 0, -31), now, 30))
	assert.False(t, catalog.IsNewArrival(time.Time{}, now, 30))
}
