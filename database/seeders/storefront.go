package seeders

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/config"
	"github.com/shashiranjanraj/vastra/pkg/auth"
	"github.com/shashiranjanraj/vastra/pkg/rbac"
	"github.com/shashiranjanraj/vastra/pkg/slug"
)

func init() {
	Register("admin_user", seedAdmin)
	Register("shipping_methods", seedShipping)
	Register("brands", seedBrands)
	Register("categories", seedCategories)
	Register("products", seedProducts)
	Register("collections", seedCollections)
}

const defaultAdminEmail = "admin@vastra.local"

func seedAdmin(ctx context.Context, db *gorm.DB) error {
	email := config.StoreAdminEmail()
	if email == "" {
		email = defaultAdminEmail
	}
	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(config.Get("ADMIN_PASSWORD", "password"))
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(&models.User{
		Email:     email,
		Password:  hash,
		FirstName: "Store",
		LastName:  "Admin",
		Role:      rbac.RoleAdmin,
	}).Error
}

func seedShipping(ctx context.Context, db *gorm.DB) error {
	methods := []models.ShippingMethod{
		{Name: "Standard", Description: "Delivered by India Post or a partner courier", Price: 49, EstimatedDays: "5-7 days", IsActive: true},
		{Name: "Express", Description: "Priority courier with tracking", Price: 149, EstimatedDays: "2-3 days", IsActive: true},
		{Name: "Same Day", Description: "Metro cities only, order before noon", Price: 299, EstimatedDays: "Same day", IsActive: false},
	}
	for i := range methods {
		if err := db.WithContext(ctx).Where(models.ShippingMethod{Name: methods[i].Name}).FirstOrCreate(&methods[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

var brandSeeds = []models.Brand{
	{Name: "Anaya Weaves", Tagline: "Handloom from Varanasi", DisplayOrder: 1, IsFeatured: true},
	{Name: "Meera Studio", Tagline: "Everyday cotton, made slow", DisplayOrder: 2, IsFeatured: true},
	{Name: "Kosha", Tagline: "Silk for celebrations", DisplayOrder: 3, IsFeatured: true},
	{Name: "Tilak & Co.", Tagline: "Menswear, tailored", DisplayOrder: 4},
}

func seedBrands(ctx context.Context, db *gorm.DB) error {
	for _, b := range brandSeeds {
		b.Slug = slug.Make(b.Name)
		if err := db.WithContext(ctx).Where(models.Brand{Slug: b.Slug}).Attrs(b).FirstOrCreate(&models.Brand{}).Error; err != nil {
			return err
		}
	}
	return nil
}

var categorySeeds = []models.Category{
	{Name: "Sarees", DisplayOrder: 1, IsFeatured: true},
	{Name: "Kurtas", DisplayOrder: 2, IsFeatured: true},
	{Name: "Dresses", DisplayOrder: 3, IsFeatured: true},
	{Name: "Dupattas", DisplayOrder: 4},
	{Name: "Men's Wear", DisplayOrder: 5},
}

func seedCategories(ctx context.Context, db *gorm.DB) error {
	for _, c := range categorySeeds {
		c.Slug = slug.Make(c.Name)
		if err := db.WithContext(ctx).Where(models.Category{Slug: c.Slug}).Attrs(c).FirstOrCreate(&models.Category{}).Error; err != nil {
			return err
		}
	}
	return nil
}

type productSeed struct {
	name, brand, category string
	price                 float64
	compare               float64
	stock                 int
	sizes, colors         []string
	featured, premium     bool
	bestSeller            bool
}

var productSeeds = []productSeed{
	{"Banarasi Silk Saree", "Anaya Weaves", "Sarees", 8499, 9999, 6, []string{"Free Size"}, []string{"Red", "Gold"}, true, true, false},
	{"Chanderi Cotton Saree", "Anaya Weaves", "Sarees", 3299, 0, 12, []string{"Free Size"}, []string{"Ivory", "Indigo"}, false, false, true},
	{"Kanjeevaram Wedding Saree", "Kosha", "Sarees", 9999, 12499, 3, []string{"Free Size"}, []string{"Maroon"}, true, true, false},
	{"Linen A-Line Kurta", "Meera Studio", "Kurtas", 1299, 1599, 25, []string{"S", "M", "L", "XL"}, []string{"Sage", "Ivory"}, true, false, true},
	{"Block Print Straight Kurta", "Meera Studio", "Kurtas", 999, 0, 30, []string{"XS", "S", "M", "L"}, []string{"Indigo"}, false, false, false},
	{"Tiered Cotton Dress", "Meera Studio", "Dresses", 1799, 2199, 14, []string{"S", "M", "L"}, []string{"Mustard", "Black"}, true, false, false},
	{"Silk Wrap Dress", "Kosha", "Dresses", 4599, 0, 8, []string{"S", "M"}, []string{"Emerald"}, false, true, false},
	{"Bandhani Dupatta", "Anaya Weaves", "Dupattas", 699, 899, 40, []string{"Free Size"}, []string{"Red", "Pink"}, false, false, true},
	{"Nehru Jacket", "Tilak & Co.", "Men's Wear", 2499, 2999, 10, []string{"M", "L", "XL", "XXL"}, []string{"Navy", "Beige"}, true, false, false},
	{"Cotton Kurta Pyjama Set", "Tilak & Co.", "Men's Wear", 1899, 0, 0, []string{"M", "L", "XL"}, []string{"White"}, false, false, false},
}

func seedProducts(ctx context.Context, db *gorm.DB) error {
	for i, s := range productSeeds {
		var brand models.Brand
		if err := db.WithContext(ctx).Where("slug = ?", slug.Make(s.brand)).First(&brand).Error; err != nil {
			return err
		}
		var cat models.Category
		if err := db.WithContext(ctx).Where("slug = ?", slug.Make(s.category)).First(&cat).Error; err != nil {
			return err
		}

		p := models.Product{
			Name:          s.name,
			Slug:          slug.Make(s.name),
			Description:   s.name + " by " + s.brand + ".",
			BrandID:       &brand.ID,
			CategoryID:    &cat.ID,
			Price:         s.price,
			StockQuantity: s.stock,
			Sizes:         s.sizes,
			Colors:        s.colors,
			ImageURLs:     []string{},
			WeightKg:      0.5,
			IsActive:      true,
			IsFeatured:    s.featured,
			IsPremium:     s.premium,
			IsBestSeller:  s.bestSeller,
			// Spread creation dates so new-arrival and newest sorting have
			// something to show.
			CreatedAt: time.Now().AddDate(0, 0, -7*i),
		}
		if s.compare > 0 {
			compare := s.compare
			p.CompareAtPrice = &compare
		}
		if err := db.WithContext(ctx).Where(models.Product{Slug: p.Slug}).Attrs(p).FirstOrCreate(&models.Product{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedCollections(ctx context.Context, db *gorm.DB) error {
	col := models.Collection{
		Name:        "Festive Edit",
		Description: "Silks and handlooms for the season",
		IsActive:    true,
		IsFeatured:  true,
	}
	col.Slug = slug.Make(col.Name)
	if err := db.WithContext(ctx).Where(models.Collection{Slug: col.Slug}).FirstOrCreate(&col).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := db.WithContext(ctx).Where("is_premium = ?", true).Order("id").Find(&products).Error; err != nil {
		return err
	}
	for i, p := range products {
		key := models.CollectionProduct{CollectionID: col.ID, ProductID: p.ID}
		err := db.WithContext(ctx).Where(key).Attrs(models.CollectionProduct{Position: i}).FirstOrCreate(&models.CollectionProduct{}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
