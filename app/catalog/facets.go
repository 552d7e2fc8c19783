package catalog

import (
	"math"

	"github.com/shashiranjanraj/vastra/pkg/collection"
)

// DefaultMaxPrice is the price ceiling offered for an empty catalog.
const DefaultMaxPrice = 10000

// Facets annotates the filter controls. It is computed over the unfiltered
// list, so counts do not shrink as filters are applied.
type Facets struct {
	Brands        map[string]int `json:"brands"`
	Categories    map[string]int `json:"categories"`
	BrandNames    []string       `json:"brand_names"`
	CategoryNames []string       `json:"category_names"`
	Sizes         []string       `json:"sizes"`
	Colors        []string       `json:"colors"`
	MaxPrice      float64        `json:"max_price"`
	Total         int            `json:"total"`
}

// BuildFacets computes facet counts and filter values for items.
func BuildFacets(items []Item) Facets {
	return Facets{
		Brands:        collection.CountBy(items, func(it Item) string { return it.Brand }),
		Categories:    collection.CountBy(items, func(it Item) string { return it.Category }),
		BrandNames:    collection.SortedUnique(items, func(it Item) []string { return []string{it.Brand} }),
		CategoryNames: collection.SortedUnique(items, func(it Item) []string { return []string{it.Category} }),
		Sizes:         collection.SortedUnique(items, func(it Item) []string { return it.Sizes }),
		Colors:        collection.SortedUnique(items, func(it Item) []string { return it.Colors }),
		MaxPrice:      PriceCeiling(items),
		Total:         len(items),
	}
}

// PriceCeiling rounds the highest price up to the next thousand.
func PriceCeiling(items []Item) float64 {
	if len(items) == 0 {
		return DefaultMaxPrice
	}
	highest := 0.0
	for _, it := range items {
		highest = max(highest, it.Price)
	}
	if highest <= 0 {
		return DefaultMaxPrice
	}
	return math.Ceil(highest/1000) * 1000
}
