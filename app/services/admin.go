package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/pkg/event"
	"github.com/shashiranjanraj/vastra/pkg/logger"
	"github.com/shashiranjanraj/vastra/pkg/orm"
	"github.com/shashiranjanraj/vastra/pkg/rbac"
	"github.com/shashiranjanraj/vastra/pkg/slug"
)

// AdminService backs the back-office CRUD screens. Routes guard it with the
// admin role; the service itself trusts its caller.
type AdminService struct {
	repos *repositories.Repos
	bus   *event.Bus
}

func NewAdminService(repos *repositories.Repos, bus *event.Bus) *AdminService {
	return &AdminService{repos: repos, bus: bus}
}

// changed tells the catalog feed to reload.
func (s *AdminService) changed(ctx context.Context) {
	if s.bus != nil {
		s.bus.FireAsync(ctx, EventProductsChanged, nil)
	}
}

// saveErr maps a unique-index violation on the slug column to ErrSlugTaken.
func saveErr(err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return ErrSlugTaken
	}
	return err
}

func deriveSlug(explicit, name string) (string, error) {
	s := slug.Or(explicit, name)
	if s == "" {
		return "", invalid("slug", "The slug must contain at least one letter or digit.")
	}
	return s, nil
}

// ── Products ────────────────────────────────────────────────────────────────

type ProductInput struct {
	Name           string   `json:"name"             validate:"required,max=255"`
	Slug           string   `json:"slug"             validate:"max=255"`
	Description    string   `json:"description"      validate:"max=10000"`
	BrandID        *uint    `json:"brand_id"`
	CategoryID     *uint    `json:"category_id"`
	Price          float64  `json:"price"            validate:"gte=0"`
	CompareAtPrice *float64 `json:"compare_at_price" validate:"nullable,gte=0"`
	StockQuantity  int      `json:"stock_quantity"   validate:"gte=0"`
	Sizes          []string `json:"sizes"`
	Colors         []string `json:"colors"`
	ImageURLs      []string `json:"image_urls"`
	WeightKg       float64  `json:"weight_kg"        validate:"gte=0"`
	IsActive       bool     `json:"is_active"`
	IsFeatured     bool     `json:"is_featured"`
	IsPremium      bool     `json:"is_premium"`
	IsBestSeller   bool     `json:"is_best_seller"`
}

func (s *AdminService) Products(ctx context.Context, f repositories.ProductFilter, p orm.Pagination) ([]models.Product, orm.Pagination, error) {
	return s.repos.Products.List(ctx, f, p)
}

func (s *AdminService) Product(ctx context.Context, id uint) (models.Product, error) {
	return s.repos.Products.Find(ctx, id)
}

func (s *AdminService) CreateProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	var p models.Product
	if err := s.fillProduct(ctx, &p, in); err != nil {
		return models.Product{}, err
	}
	if err := s.repos.Products.Create(ctx, &p); err != nil {
		return models.Product{}, saveErr(err)
	}
	logger.WithCtx(ctx).Info("admin: product created", "product_id", p.ID, "slug", p.Slug)
	s.changed(ctx)
	return s.repos.Products.Find(ctx, p.ID)
}

func (s *AdminService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (models.Product, error) {
	p, err := s.repos.Products.Find(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if err := s.fillProduct(ctx, &p, in); err != nil {
		return models.Product{}, err
	}
	if err := s.repos.Products.Update(ctx, &p); err != nil {
		return models.Product{}, saveErr(err)
	}
	s.changed(ctx)
	return s.repos.Products.Find(ctx, id)
}

func (s *AdminService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repos.Products.Delete(ctx, id); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("admin: product deleted", "product_id", id)
	s.changed(ctx)
	return nil
}

func (s *AdminService) fillProduct(ctx context.Context, p *models.Product, in ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return err
	}
	sl, err := deriveSlug(in.Slug, in.Name)
	if err != nil {
		return err
	}
	if id := in.BrandID; id != nil && *id != 0 {
		if _, err := s.repos.Brands.Find(ctx, *id); errors.Is(err, repositories.ErrNotFound) {
			return invalid("brand_id", "The selected brand does not exist.")
		} else if err != nil {
			return err
		}
	} else {
		in.BrandID = nil
	}
	if id := in.CategoryID; id != nil && *id != 0 {
		if _, err := s.repos.Categories.Find(ctx, *id); errors.Is(err, repositories.ErrNotFound) {
			return invalid("category_id", "The selected category does not exist.")
		} else if err != nil {
			return err
		}
	} else {
		in.CategoryID = nil
	}

	p.Name = in.Name
	p.Slug = sl
	p.Description = strings.TrimSpace(in.Description)
	p.BrandID, p.Brand = in.BrandID, nil
	p.CategoryID, p.Category = in.CategoryID, nil
	p.Price = RoundMoney(in.Price)
	p.CompareAtPrice = in.CompareAtPrice
	p.StockQuantity = in.StockQuantity
	p.Sizes = tokens(in.Sizes)
	p.Colors = tokens(in.Colors)
	p.ImageURLs = tokens(in.ImageURLs)
	p.WeightKg = in.WeightKg
	if p.WeightKg == 0 {
		p.WeightKg = 0.5
	}
	p.IsActive = in.IsActive
	p.IsFeatured = in.IsFeatured
	p.IsPremium = in.IsPremium
	p.IsBestSeller = in.IsBestSeller
	return nil
}

// tokens trims entries, drops blanks and keeps the first of any duplicate.
func tokens(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// ── Brands ──────────────────────────────────────────────────────────────────

type BrandInput struct {
	Name         string `json:"name"          validate:"required,max=255"`
	Slug         string `json:"slug"          validate:"max=255"`
	Description  string `json:"description"   validate:"max=5000"`
	LogoURL      string `json:"logo_url"      validate:"nullable,url"`
	BannerURL    string `json:"banner_url"    validate:"nullable,url"`
	Tagline      string `json:"tagline"       validate:"max=255"`
	DisplayOrder int    `json:"display_order"`
	IsFeatured   bool   `json:"is_featured"`
}

func (s *AdminService) Brands(ctx context.Context) ([]models.Brand, error) {
	return s.repos.Brands.All(ctx)
}

func (s *AdminService) SaveBrand(ctx context.Context, id uint, in BrandInput) (models.Brand, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return models.Brand{}, err
	}
	sl, err := deriveSlug(in.Slug, in.Name)
	if err != nil {
		return models.Brand{}, err
	}

	var b models.Brand
	if id != 0 {
		if b, err = s.repos.Brands.Find(ctx, id); err != nil {
			return models.Brand{}, err
		}
	}
	b.Name, b.Slug = in.Name, sl
	b.Description = strings.TrimSpace(in.Description)
	b.LogoURL, b.BannerURL, b.Tagline = in.LogoURL, in.BannerURL, in.Tagline
	b.DisplayOrder, b.IsFeatured = in.DisplayOrder, in.IsFeatured

	if err := s.repos.Brands.Save(ctx, &b); err != nil {
		return models.Brand{}, saveErr(err)
	}
	s.changed(ctx)
	return b, nil
}

func (s *AdminService) DeleteBrand(ctx context.Context, id uint) error {
	if err := s.repos.Brands.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

// ── Categories ──────────────────────────────────────────────────────────────

type CategoryInput struct {
	Name         string `json:"name"          validate:"required,max=255"`
	Slug         string `json:"slug"          validate:"max=255"`
	Description  string `json:"description"   validate:"max=5000"`
	ImageURL     string `json:"image_url"     validate:"nullable,url"`
	DisplayOrder int    `json:"display_order"`
	IsFeatured   bool   `json:"is_featured"`
}

func (s *AdminService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.repos.Categories.All(ctx)
}

func (s *AdminService) SaveCategory(ctx context.Context, id uint, in CategoryInput) (models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return models.Category{}, err
	}
	sl, err := deriveSlug(in.Slug, in.Name)
	if err != nil {
		return models.Category{}, err
	}

	var c models.Category
	if id != 0 {
		if c, err = s.repos.Categories.Find(ctx, id); err != nil {
			return models.Category{}, err
		}
	}
	c.Name, c.Slug = in.Name, sl
	c.Description = strings.TrimSpace(in.Description)
	c.ImageURL, c.DisplayOrder, c.IsFeatured = in.ImageURL, in.DisplayOrder, in.IsFeatured

	if err := s.repos.Categories.Save(ctx, &c); err != nil {
		return models.Category{}, saveErr(err)
	}
	s.changed(ctx)
	return c, nil
}

func (s *AdminService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.repos.Categories.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

// ── Collections ─────────────────────────────────────────────────────────────

type CollectionInput struct {
	Name         string     `json:"name"          validate:"required,max=255"`
	Slug         string     `json:"slug"          validate:"max=255"`
	Description  string     `json:"description"   validate:"max=5000"`
	ImageURL     string     `json:"image_url"     validate:"nullable,url"`
	DisplayOrder int        `json:"display_order"`
	IsFeatured   bool       `json:"is_featured"`
	IsActive     bool       `json:"is_active"`
	StartsAt     *time.Time `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
}

func (s *AdminService) Collections(ctx context.Context) ([]models.Collection, error) {
	return s.repos.Collections.All(ctx)
}

// Collection returns a collection with every product in curated order.
func (s *AdminService) Collection(ctx context.Context, id uint) (models.Collection, error) {
	c, err := s.repos.Collections.Find(ctx, id)
	if err != nil {
		return models.Collection{}, err
	}
	c.Products, err = s.repos.Collections.Products(ctx, id)
	return c, err
}

func (s *AdminService) SaveCollection(ctx context.Context, id uint, in CollectionInput) (models.Collection, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return models.Collection{}, err
	}
	if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
		return models.Collection{}, invalid("ends_at", "The ends_at must be after starts_at.")
	}
	sl, err := deriveSlug(in.Slug, in.Name)
	if err != nil {
		return models.Collection{}, err
	}

	var c models.Collection
	if id != 0 {
		if c, err = s.repos.Collections.Find(ctx, id); err != nil {
			return models.Collection{}, err
		}
	}
	c.Name, c.Slug = in.Name, sl
	c.Description = strings.TrimSpace(in.Description)
	c.ImageURL, c.DisplayOrder = in.ImageURL, in.DisplayOrder
	c.IsFeatured, c.IsActive = in.IsFeatured, in.IsActive
	c.StartsAt, c.EndsAt = in.StartsAt, in.EndsAt

	if err := s.repos.Collections.Save(ctx, &c); err != nil {
		return models.Collection{}, saveErr(err)
	}
	return c, nil
}

func (s *AdminService) DeleteCollection(ctx context.Context, id uint) error {
	return s.repos.Collections.Delete(ctx, id)
}

// SetCollectionProducts replaces the collection's products; the order of
// productIDs becomes the display order.
func (s *AdminService) SetCollectionProducts(ctx context.Context, id uint, productIDs []uint) (models.Collection, error) {
	if _, err := s.repos.Collections.Find(ctx, id); err != nil {
		return models.Collection{}, err
	}
	known, err := s.repos.Products.ByIDs(ctx, productIDs)
	if err != nil {
		return models.Collection{}, err
	}
	for _, pid := range productIDs {
		if _, ok := known[pid]; !ok {
			return models.Collection{}, invalid("product_ids", "One or more selected products do not exist.")
		}
	}
	if err := s.repos.Collections.SetProducts(ctx, id, productIDs); err != nil {
		return models.Collection{}, err
	}
	return s.Collection(ctx, id)
}

// ── Customers & dashboard ───────────────────────────────────────────────────

func (s *AdminService) Customers(ctx context.Context, search string, p orm.Pagination) ([]repositories.CustomerRow, orm.Pagination, error) {
	return s.repos.Users.Customers(ctx, strings.TrimSpace(search), p)
}

type Dashboard struct {
	Products         int64            `json:"products"`
	Orders           int64            `json:"orders"`
	Customers        int64            `json:"customers"`
	Revenue          float64          `json:"revenue"`
	RecentOrders     []models.Order   `json:"recent_orders"`
	FeaturedProducts []models.Product `json:"featured_products"`
}

func (s *AdminService) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	var err error
	if d.Products, err = s.repos.Products.Count(ctx); err != nil {
		return d, err
	}
	if d.Orders, err = s.repos.Orders.Count(ctx); err != nil {
		return d, err
	}
	if d.Customers, err = s.repos.Users.CountByRole(ctx, rbac.RoleCustomer); err != nil {
		return d, err
	}
	if d.Revenue, err = s.repos.Orders.Revenue(ctx); err != nil {
		return d, err
	}
	d.Revenue = RoundMoney(d.Revenue)
	if d.RecentOrders, err = s.repos.Orders.Recent(ctx, 5); err != nil {
		return d, err
	}
	if d.FeaturedProducts, err = s.repos.Products.Featured(ctx, 5); err != nil {
		return d, err
	}
	return d, nil
}
