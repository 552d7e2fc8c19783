package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/vastra/app/catalog"
)

func TestEveryFilterChangeResetsPage(t *testing.T) {
	changes := map[string]func(b *catalog.Browser){
		"query":    func(b *catalog.Browser) { b.SetQuery("silk") },
		"category": func(b *catalog.Browser) { b.SetCategories("Sarees") },
		"brand":    func(b *catalog.Browser) { b.SetBrands("Anaya") },
		"size":     func(b *catalog.Browser) { b.SetSizes("M") },
		"color":    func(b *catalog.Browser) { b.SetColors("Red") },
		"price":    func(b *catalog.Browser) { b.SetPriceRange(ptr(0), ptr(2000)) },
		"sort":     func(b *catalog.Browser) { b.SetSort(catalog.SortNewest) },
		"toggle":   func(b *catalog.Browser) { b.Toggle("brand", "Meera") },
		"reset":    func(b *catalog.Browser) { b.Reset() },
	}
	for name, change := range changes {
		t.Run(name, func(t *testing.T) {
			b := catalog.NewBrowser()
			b.SetPage(4)
			assert.Equal(t, 4, b.Page())
			change(&b)
			assert.Equal(t, 1, b.Page())
		})
	}
}

func TestToggleAddsAndRemoves(t *testing.T) {
	b := catalog.NewBrowser()
	b.Toggle("size", "M")
	b.Toggle("size", "L")
	assert.Equal(t, []string{"M", "L"}, b.Selection().Sizes)
	b.Toggle("size", "M")
	assert.Equal(t, []string{"L"}, b.Selection().Sizes)

	b.SetPage(2)
	b.Toggle("unknown", "x")
	assert.Equal(t, 2, b.Page(), "unknown fields are ignored")
}

func TestBrowserApply(t *testing.T) {
	b := catalog.NewBrowser()
	b.SetQuery("coat")
	res := b.Apply(pair)
	assert.Equal(t, []string{"Blue Coat"}, names(res.Items))
	assert.Equal(t, catalog.SortRecommended, res.Sort)
}
