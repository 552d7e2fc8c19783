package services

import (
	"context"
	"time"

	"github.com/shashiranjanraj/vastra/app/catalog"
	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
)

// FeaturedLimit caps the featured product strip on the home page.
const FeaturedLimit = 8

// MerchService serves the storefront's merchandising reads: featured
// products, product detail, brands, categories, collections and shipping
// methods. Product lists come back as catalog items so every page shows the
// same rating, discount and new-arrival badges.
type MerchService struct {
	repos          *repositories.Repos
	newArrivalDays int
	now            func() time.Time
}

func NewMerchService(repos *repositories.Repos, newArrivalDays int) *MerchService {
	return &MerchService{repos: repos, newArrivalDays: newArrivalDays, now: time.Now}
}

// ProductDetail is a product page: the catalog item plus its brand,
// category and reviews.
type ProductDetail struct {
	Product         catalog.Item     `json:"product"`
	DiscountPercent int              `json:"discount_percent"`
	WeightKg        float64          `json:"weight_kg"`
	Brand           *models.Brand    `json:"brand,omitempty"`
	Category        *models.Category `json:"category,omitempty"`
	Reviews         []models.Review  `json:"reviews"`
}

type BrandPage struct {
	Brand    models.Brand   `json:"brand"`
	Products []catalog.Item `json:"products"`
}

type CategoryPage struct {
	Category models.Category `json:"category"`
	Products []catalog.Item  `json:"products"`
}

type CollectionPage struct {
	Collection models.Collection `json:"collection"`
	Products   []catalog.Item    `json:"products"`
}

func (s *MerchService) items(ctx context.Context, products []models.Product) ([]catalog.Item, error) {
	ratings, err := s.repos.Reviews.Aggregates(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]catalog.Item, len(products))
	for i, p := range products {
		out[i] = ToItem(p, ratings[p.ID], now, s.newArrivalDays)
	}
	return out, nil
}

func (s *MerchService) Featured(ctx context.Context) ([]catalog.Item, error) {
	products, err := s.repos.Products.Featured(ctx, FeaturedLimit)
	if err != nil {
		return nil, err
	}
	return s.items(ctx, products)
}

// Product returns the detail page of an active product.
func (s *MerchService) Product(ctx context.Context, id uint) (ProductDetail, error) {
	p, err := s.repos.Products.Find(ctx, id)
	if err != nil {
		return ProductDetail{}, err
	}
	if !p.IsActive {
		return ProductDetail{}, ErrNotFound
	}

	agg := repositories.Aggregate{ProductID: p.ID, Count: len(p.Reviews)}
	if agg.Count > 0 {
		sum := 0
		for _, r := range p.Reviews {
			sum += r.Rating
		}
		agg.Average = float64(sum) / float64(agg.Count)
	}
	item := ToItem(p, agg, s.now(), s.newArrivalDays)

	reviews := p.Reviews
	if reviews == nil {
		reviews = []models.Review{}
	}
	return ProductDetail{
		Product:         item,
		DiscountPercent: item.Discount(),
		WeightKg:        p.WeightKg,
		Brand:           p.Brand,
		Category:        p.Category,
		Reviews:         reviews,
	}, nil
}

func (s *MerchService) Brands(ctx context.Context) ([]models.Brand, error) {
	return s.repos.Brands.All(ctx)
}

func (s *MerchService) FeaturedBrands(ctx context.Context) ([]models.Brand, error) {
	return s.repos.Brands.Featured(ctx)
}

func (s *MerchService) Brand(ctx context.Context, slug string) (BrandPage, error) {
	b, err := s.repos.Brands.FindBySlug(ctx, slug)
	if err != nil {
		return BrandPage{}, err
	}
	products, err := s.repos.Products.ByBrand(ctx, b.ID)
	if err != nil {
		return BrandPage{}, err
	}
	items, err := s.items(ctx, products)
	return BrandPage{Brand: b, Products: items}, err
}

func (s *MerchService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.repos.Categories.All(ctx)
}

func (s *MerchService) Category(ctx context.Context, slug string) (CategoryPage, error) {
	c, err := s.repos.Categories.FindBySlug(ctx, slug)
	if err != nil {
		return CategoryPage{}, err
	}
	products, err := s.repos.Products.ByCategory(ctx, c.ID)
	if err != nil {
		return CategoryPage{}, err
	}
	items, err := s.items(ctx, products)
	return CategoryPage{Category: c, Products: items}, err
}

// Collections returns the collections live right now.
func (s *MerchService) Collections(ctx context.Context, featuredOnly bool) ([]models.Collection, error) {
	return s.repos.Collections.Live(ctx, s.now(), featuredOnly)
}

// Collection returns a live collection with its products in curated order.
func (s *MerchService) Collection(ctx context.Context, slug string) (CollectionPage, error) {
	c, err := s.repos.Collections.FindBySlug(ctx, slug)
	if err != nil {
		return CollectionPage{}, err
	}
	if !c.Live(s.now()) {
		return CollectionPage{}, ErrNotFound
	}
	products, err := s.repos.Collections.Products(ctx, c.ID)
	if err != nil {
		return CollectionPage{}, err
	}
	items, err := s.items(ctx, products)
	return CollectionPage{Collection: c, Products: items}, err
}

func (s *MerchService) ShippingMethods(ctx context.Context) ([]models.ShippingMethod, error) {
	return s.repos.Shipping.Active(ctx)
}

// ShippingQuote is the pincode/weight estimate shown before checkout.
type ShippingQuote struct {
	Pincode string  `json:"pincode"`
	Metro   bool    `json:"metro"`
	Cost    float64 `json:"cost"`
}

func (s *MerchService) Quote(pincode string, weightKg float64) (ShippingQuote, error) {
	in := struct {
		Pincode string `json:"pincode" validate:"required,digits=6"`
	}{pincode}
	if err := check(in); err != nil {
		return ShippingQuote{}, err
	}
	return ShippingQuote{Pincode: pincode, Metro: IsMetro(pincode), Cost: Quote(pincode, weightKg)}, nil
}
