package controllers

import (
	"github.com/shashiranjanraj/vastra/app/catalog"
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/pkg/ctx"
)

type CatalogController struct {
	feed  *services.CatalogFeed
	merch *services.MerchService
}

func NewCatalogController(feed *services.CatalogFeed, merch *services.MerchService) *CatalogController {
	return &CatalogController{feed: feed, merch: merch}
}

// selection reads the catalog query string. Repeated keys accumulate.
func selection(c *ctx.Context) catalog.Selection {
	return catalog.Selection{
		Query:      c.Query("q"),
		Categories: c.QueryAll("category"),
		Brands:     c.QueryAll("brand"),
		Sizes:      c.QueryAll("size"),
		Colors:     c.QueryAll("color"),
		MinPrice:   c.QueryFloat("min_price"),
		MaxPrice:   c.QueryFloat("max_price"),
		Sort:       catalog.ParseSort(c.Query("sort")),
		Page:       c.QueryInt("page", 1),
	}
}

// Index GET /api/catalog
func (cc *CatalogController) Index(c *ctx.Context) {
	items, err := cc.feed.Snapshot(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(catalog.Apply(items, selection(c)))
}

// Facets GET /api/catalog/facets
func (cc *CatalogController) Facets(c *ctx.Context) {
	items, err := cc.feed.Snapshot(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(catalog.BuildFacets(items))
}

func (cc *CatalogController) Featured(c *ctx.Context) {
	items, err := cc.merch.Featured(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(items)
}

// Product GET /api/products/{id}
func (cc *CatalogController) Product(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	detail, err := cc.merch.Product(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(detail)
}

func (cc *CatalogController) Brands(c *ctx.Context) {
	brands, err := cc.merch.Brands(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(brands)
}

func (cc *CatalogController) FeaturedBrands(c *ctx.Context) {
	brands, err := cc.merch.FeaturedBrands(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(brands)
}

func (cc *CatalogController) Brand(c *ctx.Context) {
	page, err := cc.merch.Brand(c.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(page)
}

func (cc *CatalogController) Categories(c *ctx.Context) {
	cats, err := cc.merch.Categories(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(cats)
}

func (cc *CatalogController) Category(c *ctx.Context) {
	page, err := cc.merch.Category(c.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(page)
}

func (cc *CatalogController) Collections(c *ctx.Context) {
	cols, err := cc.merch.Collections(c.Context(), false)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(cols)
}

func (cc *CatalogController) FeaturedCollections(c *ctx.Context) {
	cols, err := cc.merch.Collections(c.Context(), true)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(cols)
}

func (cc *CatalogController) Collection(c *ctx.Context) {
	page, err := cc.merch.Collection(c.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(page)
}

// ShippingMethods GET /api/shipping/methods
func (cc *CatalogController) ShippingMethods(c *ctx.Context) {
	methods, err := cc.merch.ShippingMethods(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(methods)
}

// ShippingQuote GET /api/shipping/quote?pincode=560001&weight=1.5
func (cc *CatalogController) ShippingQuote(c *ctx.Context) {
	weight := 0.5
	if w := c.QueryFloat("weight"); w != nil && *w > 0 {
		weight = *w
	}
	quote, err := cc.merch.Quote(c.Query("pincode"), weight)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(quote)
}
