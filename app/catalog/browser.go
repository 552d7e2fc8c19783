package catalog

import "slices"

// Browser holds the selection of one browsing session. Any change to a
// filter, the query or the sort order moves back to page 1; SetPage is the
// only way to move between pages.
type Browser struct {
	sel Selection
}

// NewBrowser starts on page 1 with the recommended order.
func NewBrowser() Browser {
	return Browser{sel: Selection{Sort: SortRecommended, Page: 1}}
}

// Selection returns a copy of the current state.
func (b Browser) Selection() Selection {
	s := b.sel
	s.Categories = slices.Clone(s.Categories)
	s.Brands = slices.Clone(s.Brands)
	s.Sizes = slices.Clone(s.Sizes)
	s.Colors = slices.Clone(s.Colors)
	return s
}

// Page is the current page number.
func (b Browser) Page() int { return max(b.sel.Page, 1) }

// Apply runs the engine for the current state.
func (b Browser) Apply(items []Item) Result { return Apply(items, b.sel) }

func (b *Browser) changed() { b.sel.Page = 1 }

func (b *Browser) SetQuery(q string) {
	b.sel.Query = q
	b.changed()
}

func (b *Browser) SetCategories(names ...string) {
	b.sel.Categories = slices.Clone(names)
	b.changed()
}

func (b *Browser) SetBrands(names ...string) {
	b.sel.Brands = slices.Clone(names)
	b.changed()
}

func (b *Browser) SetSizes(sizes ...string) {
	b.sel.Sizes = slices.Clone(sizes)
	b.changed()
}

func (b *Browser) SetColors(colors ...string) {
	b.sel.Colors = slices.Clone(colors)
	b.changed()
}

// SetPriceRange sets the inclusive bounds; nil leaves a side open.
func (b *Browser) SetPriceRange(lo, hi *float64) {
	b.sel.MinPrice, b.sel.MaxPrice = lo, hi
	b.changed()
}

func (b *Browser) SetSort(key SortKey) {
	b.sel.Sort = ParseSort(string(key))
	b.changed()
}

// Toggle adds value to the named filter set or removes it when present.
// field is one of "category", "brand", "size" or "color".
func (b *Browser) Toggle(field, value string) {
	var set *[]string
	switch field {
	case "category":
		set = &b.sel.Categories
	case "brand":
		set = &b.sel.Brands
	case "size":
		set = &b.sel.Sizes
	case "color":
		set = &b.sel.Colors
	default:
		return
	}
	if i := slices.Index(*set, value); i >= 0 {
		*set = slices.Delete(slices.Clone(*set), i, i+1)
	} else {
		*set = append(slices.Clone(*set), value)
	}
	b.changed()
}

// Reset clears every filter and the query, keeping the sort order.
func (b *Browser) Reset() {
	b.sel = Selection{Sort: b.sel.Sort, Page: 1}
}

// SetPage moves to page p; Apply clamps it to the available pages.
func (b *Browser) SetPage(p int) { b.sel.Page = max(p, 1) }
