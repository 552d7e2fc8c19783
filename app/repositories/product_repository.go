package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/pkg/orm"
)

type ProductRepository struct {
	db *gorm.DB
}

// ProductFilter narrows the admin product listing.
type ProductFilter struct {
	Search     string
	BrandID    uint
	CategoryID uint
	Active     *bool
}

// Active returns every active product with brand and category loaded.
// Premium products come first, then the rest; both newest first.
func (r *ProductRepository) Active(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := r.db.WithContext(ctx).
		Preload("Brand").Preload("Category").
		Where("is_active = ?", true).
		Order("is_premium DESC").Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, translate("products: active", err)
}

// Find loads one product with brand, category and reviews (newest first).
func (r *ProductRepository) Find(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).
		Preload("Brand").Preload("Category").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&p, id).Error
	return p, translate("products: find", err)
}

// FindActive is Find restricted to active products, without reviews.
func (r *ProductRepository) FindActive(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Preload("Brand").
		Where("is_active = ?", true).First(&p, id).Error
	return p, translate("products: find active", err)
}

// Featured returns up to limit active featured products, newest first.
func (r *ProductRepository) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	var out []models.Product
	err := r.db.WithContext(ctx).Preload("Brand").Preload("Category").
		Where("is_active = ? AND is_featured = ?", true, true).
		Order("created_at DESC").Limit(limit).
		Find(&out).Error
	return out, translate("products: featured", err)
}

// ByBrand returns the active products of a brand.
func (r *ProductRepository) ByBrand(ctx context.Context, brandID uint) ([]models.Product, error) {
	var out []models.Product
	err := r.db.WithContext(ctx).Preload("Brand").Preload("Category").
		Where("is_active = ? AND brand_id = ?", true, brandID).
		Order("created_at DESC").Find(&out).Error
	return out, translate("products: by brand", err)
}

// ByCategory returns the active products of a category.
func (r *ProductRepository) ByCategory(ctx context.Context, categoryID uint) ([]models.Product, error) {
	var out []models.Product
	err := r.db.WithContext(ctx).Preload("Brand").Preload("Category").
		Where("is_active = ? AND category_id = ?", true, categoryID).
		Order("created_at DESC").Find(&out).Error
	return out, translate("products: by category", err)
}

// ByIDs loads products keyed by id.
func (r *ProductRepository) ByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	out := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Preload("Brand").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translate("products: by ids", err)
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// List pages through products for the admin screens.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter, p orm.Pagination) ([]models.Product, orm.Pagination, error) {
	q := r.db.Model(&models.Product{}).Preload("Brand").Preload("Category")
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR slug LIKE ?", like, like)
	}
	if f.BrandID != 0 {
		q = q.Where("brand_id = ?", f.BrandID)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}

	var out []models.Product
	page, err := orm.Paginate(ctx, q.Order("created_at DESC").Order("id DESC"), p, &out)
	return out, page, translate("products: list", err)
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return translate("products: create", r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	return translate("products: update", r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error)
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID[models.Product](ctx, r.db, id, "products: delete")
}

// DecrementStock removes qty units if at least qty are in stock. It reports
// false when the conditional update matched no row.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		UpdateColumns(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, translate("products: decrement stock", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, translate("products: count", err)
}
