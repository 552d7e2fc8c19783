// Package graphql exposes the storefront catalog as a GraphQL schema.
//
//	{ catalog(q: "kurta", brand: ["fabindia"], sort: "price-asc") { total items { name price } } }
package graphql

import (
	"context"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/vastra/app/catalog"
	"github.com/shashiranjanraj/vastra/app/models"
	gqlhttp "github.com/shashiranjanraj/vastra/pkg/graphql"
)

// Feed is satisfied by *services.CatalogFeed.
type Feed interface {
	Snapshot(ctx context.Context) ([]catalog.Item, error)
}

// Taxonomy is satisfied by *services.MerchService.
type Taxonomy interface {
	Brands(ctx context.Context) ([]models.Brand, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":               &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":             &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"slug":             &graphql.Field{Type: graphql.String},
		"description":      &graphql.Field{Type: graphql.String},
		"brand":            &graphql.Field{Type: graphql.String},
		"brand_slug":       &graphql.Field{Type: graphql.String},
		"category":         &graphql.Field{Type: graphql.String},
		"category_slug":    &graphql.Field{Type: graphql.String},
		"price":            &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"compare_at_price": &graphql.Field{Type: graphql.Float},
		"stock_quantity":   &graphql.Field{Type: graphql.Int},
		"sizes":            &graphql.Field{Type: graphql.NewList(graphql.String)},
		"colors":           &graphql.Field{Type: graphql.NewList(graphql.String)},
		"image_urls":       &graphql.Field{Type: graphql.NewList(graphql.String)},
		"created_at":       &graphql.Field{Type: graphql.DateTime},
		"is_featured":      &graphql.Field{Type: graphql.Boolean},
		"is_premium":       &graphql.Field{Type: graphql.Boolean},
		"is_best_seller":   &graphql.Field{Type: graphql.Boolean},
		"is_new_arrival":   &graphql.Field{Type: graphql.Boolean},
		"rating":           &graphql.Field{Type: graphql.Float},
		"review_count":     &graphql.Field{Type: graphql.Int},
		"discount_percent": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				it, _ := p.Source.(catalog.Item)
				return it.Discount(), nil
			},
		},
		"in_stock": &graphql.Field{
			Type: graphql.Boolean,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				it, _ := p.Source.(catalog.Item)
				return it.InStock(), nil
			},
		},
	},
})

var pageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CatalogPage",
	Fields: graphql.Fields{
		"items":       &graphql.Field{Type: graphql.NewList(productType)},
		"total":       &graphql.Field{Type: graphql.Int},
		"page":        &graphql.Field{Type: graphql.Int},
		"per_page":    &graphql.Field{Type: graphql.Int},
		"total_pages": &graphql.Field{Type: graphql.Int},
		"sort":        &graphql.Field{Type: graphql.String},
	},
})

var facetsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Facets",
	Fields: graphql.Fields{
		"brand_names":    &graphql.Field{Type: graphql.NewList(graphql.String)},
		"category_names": &graphql.Field{Type: graphql.NewList(graphql.String)},
		"sizes":          &graphql.Field{Type: graphql.NewList(graphql.String)},
		"colors":         &graphql.Field{Type: graphql.NewList(graphql.String)},
		"max_price":      &graphql.Field{Type: graphql.Float},
		"total":          &graphql.Field{Type: graphql.Int},
	},
})

var brandType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Brand",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":        &graphql.Field{Type: graphql.String},
		"slug":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"logo_url":    &graphql.Field{Type: graphql.String},
		"banner_url":  &graphql.Field{Type: graphql.String},
		"tagline":     &graphql.Field{Type: graphql.String},
		"is_featured": &graphql.Field{Type: graphql.Boolean},
	},
})

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":        &graphql.Field{Type: graphql.String},
		"slug":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"image_url":   &graphql.Field{Type: graphql.String},
		"is_featured": &graphql.Field{Type: graphql.Boolean},
	},
})

func listArg() *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)}
}

// NewSchema builds the catalog, facets, brands and categories queries.
func NewSchema(feed Feed, taxonomy Taxonomy) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"catalog": &graphql.Field{
				Type: pageType,
				Args: graphql.FieldConfigArgument{
					"q":         &graphql.ArgumentConfig{Type: graphql.String},
					"category":  listArg(),
					"brand":     listArg(),
					"size":      listArg(),
					"color":     listArg(),
					"min_price": &graphql.ArgumentConfig{Type: graphql.Float},
					"max_price": &graphql.ArgumentConfig{Type: graphql.Float},
					"sort":      &graphql.ArgumentConfig{Type: graphql.String},
					"page":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					items, err := feed.Snapshot(p.Context)
					if err != nil {
						return nil, err
					}
					return catalog.Apply(items, selection(p.Args)), nil
				},
			},
			"facets": &graphql.Field{
				Type: facetsType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					items, err := feed.Snapshot(p.Context)
					if err != nil {
						return nil, err
					}
					return catalog.BuildFacets(items), nil
				},
			},
			"brands": &graphql.Field{
				Type: graphql.NewList(brandType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return taxonomy.Brands(p.Context)
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return taxonomy.Categories(p.Context)
				},
			},
		},
	})
	return gqlhttp.NewSchema(query)
}

// selection turns resolver arguments into an engine Selection.
func selection(args map[string]any) catalog.Selection {
	sel := catalog.Selection{
		Categories: stringList(args["category"]),
		Brands:     stringList(args["brand"]),
		Sizes:      stringList(args["size"]),
		Colors:     stringList(args["color"]),
		MinPrice:   floatArg(args["min_price"]),
		MaxPrice:   floatArg(args["max_price"]),
		Page:       1,
	}
	if q, ok := args["q"].(string); ok {
		sel.Query = q
	}
	if s, ok := args["sort"].(string); ok {
		sel.Sort = catalog.ParseSort(s)
	}
	if page, ok := args["page"].(int); ok {
		sel.Page = page
	}
	return sel
}

func stringList(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, e := range list {
		if s, ok := e.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func floatArg(v any) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}
