package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/vastra/app/models"
)

// ── Brands ──────────────────────────────────────────────────────────────────

type BrandRepository struct {
	db *gorm.DB
}

// All returns brands by display_order, then name.
func (r *BrandRepository) All(ctx context.Context) ([]models.Brand, error) {
	var out []models.Brand
	err := r.db.WithContext(ctx).Order("display_order ASC").Order("name ASC").Find(&out).Error
	return out, translate("brands: all", err)
}

func (r *BrandRepository) Featured(ctx context.Context) ([]models.Brand, error) {
	var out []models.Brand
	err := r.db.WithContext(ctx).Where("is_featured = ?", true).
		Order("display_order ASC").Order("name ASC").Find(&out).Error
	return out, translate("brands: featured", err)
}

func (r *BrandRepository) Find(ctx context.Context, id uint) (models.Brand, error) {
	var b models.Brand
	return b, translate("brands: find", r.db.WithContext(ctx).First(&b, id).Error)
}

func (r *BrandRepository) FindBySlug(ctx context.Context, slug string) (models.Brand, error) {
	var b models.Brand
	return b, translate("brands: find by slug", r.db.WithContext(ctx).Where("slug = ?", slug).First(&b).Error)
}

func (r *BrandRepository) Save(ctx context.Context, b *models.Brand) error {
	return translate("brands: save", r.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error)
}

func (r *BrandRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID[models.Brand](ctx, r.db, id, "brands: delete")
}

// ── Categories ──────────────────────────────────────────────────────────────

type CategoryRepository struct {
	db *gorm.DB
}

// All returns categories by name.
func (r *CategoryRepository) All(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, translate("categories: all", err)
}

func (r *CategoryRepository) Find(ctx context.Context, id uint) (models.Category, error) {
	var c models.Category
	return c, translate("categories: find", r.db.WithContext(ctx).First(&c, id).Error)
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (models.Category, error) {
	var c models.Category
	return c, translate("categories: find by slug", r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error)
}

func (r *CategoryRepository) Save(ctx context.Context, c *models.Category) error {
	return translate("categories: save", r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error)
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID[models.Category](ctx, r.db, id, "categories: delete")
}

// ── Collections ─────────────────────────────────────────────────────────────

type CollectionRepository struct {
	db *gorm.DB
}

// Live returns active collections whose window contains now, by display_order.
func (r *CollectionRepository) Live(ctx context.Context, now time.Time, featuredOnly bool) ([]models.Collection, error) {
	q := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now)
	if featuredOnly {
		q = q.Where("is_featured = ?", true)
	}
	var out []models.Collection
	err := q.Order("display_order ASC").Order("name ASC").Find(&out).Error
	return out, translate("collections: live", err)
}

// All returns every collection for the admin screens.
func (r *CollectionRepository) All(ctx context.Context) ([]models.Collection, error) {
	var out []models.Collection
	err := r.db.WithContext(ctx).Order("display_order ASC").Order("name ASC").Find(&out).Error
	return out, translate("collections: all", err)
}

func (r *CollectionRepository) Find(ctx context.Context, id uint) (models.Collection, error) {
	var c models.Collection
	return c, translate("collections: find", r.db.WithContext(ctx).First(&c, id).Error)
}

func (r *CollectionRepository) FindBySlug(ctx context.Context, slug string) (models.Collection, error) {
	var c models.Collection
	return c, translate("collections: find by slug", r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error)
}

// Products returns the collection's active products ordered by position.
func (r *CollectionRepository) Products(ctx context.Context, collectionID uint) ([]models.Product, error) {
	var out []models.Product
	err := r.db.WithContext(ctx).Preload("Brand").Preload("Category").
		Joins("JOIN collection_products cp ON cp.product_id = products.id").
		Where("cp.collection_id = ? AND products.is_active = ?", collectionID, true).
		Order("cp.position ASC").Order("products.id ASC").
		Find(&out).Error
	return out, translate("collections: products", err)
}

// SetProducts replaces the collection's product list; position follows the
// order of productIDs.
func (r *CollectionRepository) SetProducts(ctx context.Context, collectionID uint, productIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", collectionID).Delete(&models.CollectionProduct{}).Error; err != nil {
			return translate("collections: clear products", err)
		}
		if len(productIDs) == 0 {
			return nil
		}
		rows := make([]models.CollectionProduct, 0, len(productIDs))
		seen := make(map[uint]bool, len(productIDs))
		for _, id := range productIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			rows = append(rows, models.CollectionProduct{CollectionID: collectionID, ProductID: id, Position: len(rows)})
		}
		return translate("collections: set products", tx.Create(&rows).Error)
	})
}

func (r *CollectionRepository) Save(ctx context.Context, c *models.Collection) error {
	return translate("collections: save", r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error)
}

func (r *CollectionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).Delete(&models.CollectionProduct{}).Error; err != nil {
			return translate("collections: delete products", err)
		}
		return deleteByID[models.Collection](ctx, tx, id, "collections: delete")
	})
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, id uint, op string) error {
	res := db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
