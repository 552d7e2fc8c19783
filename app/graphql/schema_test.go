package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vastra/app/catalog"
	"github.com/shashiranjanraj/vastra/app/models"
	gqlhttp "github.com/shashiranjanraj/vastra/pkg/graphql"
)

type staticFeed []catalog.Item

func (f staticFeed) Snapshot(context.Context) ([]catalog.Item, error) { return f, nil }

type taxonomy struct{}

func (taxonomy) Brands(context.Context) ([]models.Brand, error) {
	return []models.Brand{{ID: 1, Name: "Anaya", Slug: "anaya"}}, nil
}

func (taxonomy) Categories(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: 1, Name: "Dresses", Slug: "dresses"}}, nil
}

func compare(f float64) *float64 { return &f }

var items = staticFeed{
	{ID: 1, Name: "Red Dress", Brand: "Anaya", BrandSlug: "anaya", Category: "Dresses", Price: 1500, CompareAtPrice: compare(2000), Stock: 3},
	{ID: 2, Name: "Ivory Dress", Brand: "Meera", BrandSlug: "meera", Category: "Dresses", Price: 900},
	{ID: 3, Name: "Blue Kurta", Brand: "Anaya", BrandSlug: "anaya", Category: "Kurtas", Price: 700},
}

type result struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func post(t *testing.T, h http.Handler, query string) result {
	t.Helper()
	body, _ := json.Marshal(gqlhttp.Request{Query: query})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var res result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Empty(t, res.Errors)
	return res
}

func handler(t *testing.T) http.Handler {
	schema, err := NewSchema(items, taxonomy{})
	require.NoError(t, err)
	return gqlhttp.Handler(schema)
}

func TestCatalogQueryFiltersAndSorts(t *testing.T) {
	res := post(t, handler(t), `{ catalog(q: "dress", sort: "price-asc") { total page items { name price discount_percent in_stock } } }`)

	var page struct {
		Total int `json:"total"`
		Page  int `json:"page"`
		Items []struct {
			Name     string  `json:"name"`
			Price    float64 `json:"price"`
			Discount int     `json:"discount_percent"`
			InStock  bool    `json:"in_stock"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(res.Data["catalog"], &page))
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Ivory Dress", page.Items[0].Name)
	assert.Equal(t, "Red Dress", page.Items[1].Name)
	assert.Equal(t, 25, page.Items[1].Discount)
	assert.True(t, page.Items[1].InStock)
	assert.False(t, page.Items[0].InStock)
}

func TestCatalogQueryBrandSlugAndPriceRange(t *testing.T) {
	res := post(t, handler(t), `{ catalog(brand: ["anaya"], max_price: 1000) { items { name } } }`)

	var page struct {
		Items []struct{ Name string } `json:"items"`
	}
	require.NoError(t, json.Unmarshal(res.Data["catalog"], &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Blue Kurta", page.Items[0].Name)
}

func TestTaxonomyQueries(t *testing.T) {
	res := post(t, handler(t), `{ brands { name slug } categories { slug } facets { total brand_names } }`)

	assert.JSONEq(t, `[{"name":"Anaya","slug":"anaya"}]`, string(res.Data["brands"]))
	assert.JSONEq(t, `[{"slug":"dresses"}]`, string(res.Data["categories"]))
	assert.JSONEq(t, `{"total":3,"brand_names":["Anaya","Meera"]}`, string(res.Data["facets"]))
}

func TestMissingQueryIsRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	handler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
