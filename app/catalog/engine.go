package catalog

import (
	"cmp"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shashiranjanraj/vastra/pkg/collection"
)

// SortKey names a result order.
type SortKey string

const (
	SortRecommended SortKey = "recommended"
	SortNewest      SortKey = "newest"
	SortPriceAsc    SortKey = "price-asc"
	SortPriceDesc   SortKey = "price-desc"
	SortRating      SortKey = "rating"
	SortDiscount    SortKey = "discount"
	SortName        SortKey = "name"
)

// SortKeys lists the accepted keys, default first.
var SortKeys = []SortKey{SortRecommended, SortNewest, SortPriceAsc, SortPriceDesc, SortRating, SortDiscount, SortName}

// ParseSort maps a query value to a key; unknown values give recommended.
func ParseSort(s string) SortKey {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SortKeys {
		if k == known {
			return k
		}
	}
	return SortRecommended
}

// Selection is the filter, sort and page state for one catalog request.
// Zero values mean "no constraint".
type Selection struct {
	Query      string   `json:"q"`
	Categories []string `json:"category"`
	Brands     []string `json:"brand"`
	Sizes      []string `json:"size"`
	Colors     []string `json:"color"`
	MinPrice   *float64 `json:"min_price,omitempty"`
	MaxPrice   *float64 `json:"max_price,omitempty"`
	Sort       SortKey  `json:"sort"`
	Page       int      `json:"page"`
}

// Result is one page of a filtered, sorted list.
type Result struct {
	Items      []Item  `json:"items"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PerPage    int     `json:"per_page"`
	TotalPages int     `json:"total_pages"`
	Sort       SortKey `json:"sort"`
}

// Apply filters, sorts and pages items. It never modifies items.
func Apply(items []Item, sel Selection) Result {
	key := ParseSort(string(sel.Sort))
	matched := Sort(Filter(items, sel), key)

	pages := collection.TotalPages(len(matched), PageSize)
	page := clampPage(sel.Page, pages)

	return Result{
		Items:      collection.Page(matched, page, PageSize),
		Total:      len(matched),
		Page:       page,
		PerPage:    PageSize,
		TotalPages: pages,
		Sort:       key,
	}
}

func clampPage(page, pages int) int {
	if pages == 0 || page < 1 {
		return 1
	}
	return min(page, pages)
}

// Filter keeps the items that satisfy every active filter, in input order.
func Filter(items []Item, sel Selection) []Item {
	q := Fold(strings.TrimSpace(sel.Query))
	return collection.Filter(items, func(it Item) bool {
		return matchesQuery(it, q) &&
			oneOf(sel.Categories, it.Category, it.CategorySlug) &&
			oneOf(sel.Brands, it.Brand, it.BrandSlug) &&
			intersects(sel.Sizes, it.Sizes) &&
			intersects(sel.Colors, it.Colors) &&
			inRange(it.Price, sel.MinPrice, sel.MaxPrice)
	})
}

func matchesQuery(it Item, folded string) bool {
	if folded == "" {
		return true
	}
	for _, field := range []string{it.Name, it.Brand, it.Category, it.Description} {
		if strings.Contains(Fold(field), folded) {
			return true
		}
	}
	return false
}

// oneOf matches a selection of names against the item's name or slug.
func oneOf(selected []string, name, slug string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if s == name || (slug != "" && s == slug) {
			return true
		}
	}
	return false
}

func intersects(selected, have []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		for _, h := range have {
			if s == h {
				return true
			}
		}
	}
	return false
}

// inRange treats a nil or NaN bound as open.
func inRange(price float64, lo, hi *float64) bool {
	if lo != nil && !math.IsNaN(*lo) && price < *lo {
		return false
	}
	if hi != nil && !math.IsNaN(*hi) && price > *hi {
		return false
	}
	return true
}

// Sort returns a stably sorted copy of items.
func Sort(items []Item, key SortKey) []Item {
	var compare func(a, b Item) int
	switch key {
	case SortNewest:
		compare = func(a, b Item) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case SortPriceAsc:
		compare = func(a, b Item) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceDesc:
		compare = func(a, b Item) int { return cmp.Compare(b.Price, a.Price) }
	case SortRating:
		compare = func(a, b Item) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortDiscount:
		compare = func(a, b Item) int { return cmp.Compare(b.Discount(), a.Discount()) }
	case SortName:
		compare = func(a, b Item) int { return strings.Compare(Fold(a.Name), Fold(b.Name)) }
	default:
		compare = func(a, b Item) int { return cmp.Compare(Score(b), Score(a)) }
	}
	return collection.SortStable(items, compare)
}

// Score is the recommended-order weight of an item.
func Score(it Item) float64 {
	var s float64
	if it.BestSeller {
		s += 100
	}
	if it.NewArrival {
		s += 50
	}
	return s + 10*it.Rating
}

// Fold maps every rune of s to the smallest rune in its simple case-folding
// orbit, so two strings that differ only in case fold to the same bytes.
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteRune(foldRune(r))
	}
	return b.String()
}

func foldRune(r rune) rune {
	if r >= utf8.RuneSelf {
		lowest := r
		for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
			lowest = min(lowest, f)
		}
		r = lowest
	}
	if 'A' <= r && r <= 'Z' {
		return r + 'a' - 'A'
	}
	return r
}
