// Package catalog filters, sorts and pages the in-memory product list.
//
// Everything here is pure: Apply takes the full list and a Selection and
// returns the visible page without touching the network or the database.
//
//	res := catalog.Apply(feed.Snapshot(), catalog.Selection{Query: "dress", Sort: catalog.SortPriceAsc, Page: 1})
package catalog

import (
	"math"
	"time"
)

// PageSize is the number of products on one catalog page.
const PageSize = 20

// Item is one product as the storefront sees it: the product row joined with
// its brand and category names and its review aggregate.
type Item struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	Brand          string    `json:"brand"`
	BrandSlug      string    `json:"brand_slug"`
	Category       string    `json:"category"`
	CategorySlug   string    `json:"category_slug"`
	Price          float64   `json:"price"`
	CompareAtPrice *float64  `json:"compare_at_price,omitempty"`
	Stock          int       `json:"stock_quantity"`
	Sizes          []string  `json:"sizes"`
	Colors         []string  `json:"colors"`
	ImageURLs      []string  `json:"image_urls"`
	CreatedAt      time.Time `json:"created_at"`
	Featured       bool      `json:"is_featured"`
	Premium        bool      `json:"is_premium"`
	BestSeller     bool      `json:"is_best_seller"`
	NewArrival     bool      `json:"is_new_arrival"`
	Rating         float64   `json:"rating"`
	ReviewCount    int       `json:"review_count"`
}

// Discount returns the rounded percentage off the compare-at price, or 0
// when the product is not discounted.
func (i Item) Discount() int {
	return DiscountPercent(i.Price, i.CompareAtPrice)
}

// InStock reports whether at least one unit is available.
func (i Item) InStock() bool { return i.Stock > 0 }

// DiscountPercent is round((compare-price)/compare*100) when compare > price.
func DiscountPercent(price float64, compare *float64) int {
	if compare == nil || *compare <= price || *compare <= 0 {
		return 0
	}
	return int(math.Round((*compare - price) / *compare * 100))
}

// IsNewArrival reports whether created lies within days of now.
func IsNewArrival(created, now time.Time, days int) bool {
	return !created.IsZero() && now.Sub(created) <= time.Duration(days)*24*time.Hour
}
