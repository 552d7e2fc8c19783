package collection_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/vastra/pkg/collection"
)

type item struct {
	name  string
	brand string
	sizes []string
	price float64
}

var items = []item{
	{"Kurta", "Anaya", []string{"M", "L"}, 1200},
	{"Saree", "Meera", []string{"Free"}, 4500},
	{"Dupatta", "Anaya", []string{"Free"}, 600},
	{"Blazer", "", []string{"L", "XL"}, 3500},
}

func TestFilterAndMap(t *testing.T) {
	cheap := collection.Filter(items, func(i item) bool { return i.price < 2000 })
	assert.Equal(t, []string{"Kurta", "Dupatta"}, collection.Map(cheap, func(i item) string { return i.name }))

	none := collection.Filter(items, func(item) bool { return false })
	assert.NotNil(t, none)
	assert.Empty(t, none)
	assert.True(t, collection.Any(items, func(i item) bool { return i.brand == "Meera" }))
}

func TestCountBySkipsEmptyKeys(t *testing.T) {
	got := collection.CountBy(items, func(i item) string { return i.brand })
	assert.Equal(t, map[string]int{"Anaya": 2, "Meera": 1}, got)
}

func TestSortedUnique(t *testing.T) {
	got := collection.SortedUnique(items, func(i item) []string { return i.sizes })
	assert.Equal(t, []string{"Free", "L", "M", "XL"}, got)
}

func TestSortStableKeepsTies(t *testing.T) {
	byBrand := collection.SortStable(items, func(a, b item) int { return strings.Compare(a.brand, b.brand) })
	names := collection.Map(byBrand, func(i item) string { return i.name })
	assert.Equal(t, []string{"Blazer", "Kurta", "Dupatta", "Saree"}, names)
	assert.Equal(t, "Kurta", items[0].name, "input must not be reordered")
}

func TestPaging(t *testing.T) {
	nums := make([]int, 45)
	for i := range nums {
		nums[i] = i
	}
	assert.Equal(t, 3, collection.TotalPages(45, 20))
	assert.Equal(t, 0, collection.TotalPages(0, 20))
	assert.Len(t, collection.Page(nums, 3, 20), 5)
	assert.Empty(t, collection.Page(nums, 4, 20))
	assert.Equal(t, 20, collection.Page(nums, 2, 20)[0])
	assert.InDelta(t, 990.0, collection.Sum(nums, func(n int) float64 { return float64(n) }), 0.001)
}
