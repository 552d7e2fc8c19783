package models

import "time"

// Product is a sellable item. Sizes, colors and image URLs are stored as
// JSON columns.
type Product struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null;index" json:"name"`
	Slug           string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Description    string    `gorm:"type:text" json:"description"`
	BrandID        *uint     `gorm:"index" json:"brand_id"`
	Brand          *Brand    `gorm:"constraint:OnDelete:SET NULL" json:"brand,omitempty"`
	CategoryID     *uint     `gorm:"index" json:"category_id"`
	Category       *Category `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Price          float64   `gorm:"not null;default:0" json:"price"`
	CompareAtPrice *float64  `json:"compare_at_price"`
	StockQuantity  int       `gorm:"not null;default:0" json:"stock_quantity"`
	Sizes          []string  `gorm:"serializer:json" json:"sizes"`
	Colors         []string  `gorm:"serializer:json" json:"colors"`
	ImageURLs      []string  `gorm:"serializer:json" json:"image_urls"`
	WeightKg       float64   `gorm:"not null;default:0.5" json:"weight_kg"`
	IsActive       bool      `gorm:"not null;index" json:"is_active"`
	IsFeatured     bool      `gorm:"not null;default:false" json:"is_featured"`
	IsPremium      bool      `gorm:"not null;default:false" json:"is_premium"`
	IsBestSeller   bool      `gorm:"not null;default:false" json:"is_best_seller"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Reviews []Review `gorm:"constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
}

// FirstImage is the thumbnail URL, "" when the product has no images.
func (p Product) FirstImage() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}

// BrandName is "" when the product has no (loaded) brand.
func (p Product) BrandName() string {
	if p.Brand == nil {
		return ""
	}
	return p.Brand.Name
}

type Brand struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Slug         string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Description  string    `gorm:"type:text" json:"description"`
	LogoURL      string    `gorm:"size:1024" json:"logo_url"`
	BannerURL    string    `gorm:"size:1024" json:"banner_url"`
	Tagline      string    `gorm:"size:255" json:"tagline"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	IsFeatured   bool      `gorm:"not null;default:false" json:"is_featured"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Products []Product `gorm:"-" json:"products,omitempty"`
}

type Category struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Slug         string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Description  string    `gorm:"type:text" json:"description"`
	ImageURL     string    `gorm:"size:1024" json:"image_url"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	IsFeatured   bool      `gorm:"not null;default:false" json:"is_featured"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Products []Product `gorm:"-" json:"products,omitempty"`
}

// Collection is a curated, optionally time-boxed product list.
type Collection struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Slug         string     `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Description  string     `gorm:"type:text" json:"description"`
	ImageURL     string     `gorm:"size:1024" json:"image_url"`
	DisplayOrder int        `gorm:"not null;default:0" json:"display_order"`
	IsFeatured   bool       `gorm:"not null;default:false" json:"is_featured"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	StartsAt     *time.Time `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Products []Product `gorm:"-" json:"products,omitempty"`
}

// Live reports whether now falls inside the collection's window.
func (c Collection) Live(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return false
	}
	return true
}

// CollectionProduct orders products inside a collection.
type CollectionProduct struct {
	CollectionID uint `gorm:"primaryKey" json:"collection_id"`
	ProductID    uint `gorm:"primaryKey;index" json:"product_id"`
	Position     int  `gorm:"not null;default:0" json:"position"`
}

// Review is one customer's rating of a product; a user reviews a product once.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_review_user_product;index" json:"product_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	Author    string    `gorm:"size:255" json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type ShippingMethod struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Description   string    `gorm:"size:512" json:"description"`
	Price         float64   `gorm:"not null;default:0" json:"price"`
	EstimatedDays string    `gorm:"size:64" json:"estimated_days"`
	IsActive      bool      `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}
