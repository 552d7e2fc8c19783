package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/vastra/app/models"
)

// CartRepository scopes every query by user id.
type CartRepository struct {
	db *gorm.DB
}

func (r *CartRepository) ForUser(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var out []models.CartItem
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Order("id ASC").Find(&out).Error
	return out, translate("cart: for user", err)
}

func (r *CartRepository) Find(ctx context.Context, userID, itemID uint) (models.CartItem, error) {
	var it models.CartItem
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, itemID).First(&it).Error
	return it, translate("cart: find", err)
}

func (r *CartRepository) Create(ctx context.Context, it *models.CartItem) error {
	return translate("cart: create", r.db.WithContext(ctx).Create(it).Error)
}

// SetQuantity updates one of the user's rows.
func (r *CartRepository) SetQuantity(ctx context.Context, userID, itemID uint, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND id = ?", userID, itemID).
		Update("quantity", qty)
	if res.Error != nil {
		return translate("cart: set quantity", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Increment adds one to the user's row for productID.
func (r *CartRepository) Increment(ctx context.Context, userID, productID uint) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", gorm.Expr("quantity + 1"))
	if res.Error != nil {
		return translate("cart: increment", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, userID, itemID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, itemID).Delete(&models.CartItem{})
	if res.Error != nil {
		return translate("cart: delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every row of the user's cart.
func (r *CartRepository) Clear(ctx context.Context, userID uint) error {
	return translate("cart: clear", r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error)
}

// RemoveLines takes paid quantities (product id → quantity) out of the
// user's cart. Rows that reach zero are deleted; anything added after the
// quantities were snapshotted stays in the cart.
func (r *CartRepository) RemoveLines(ctx context.Context, userID uint, paid map[uint]int) error {
	db := r.db.WithContext(ctx)
	for productID, qty := range paid {
		err := db.Where("user_id = ? AND product_id = ? AND quantity <= ?", userID, productID, qty).
			Delete(&models.CartItem{}).Error
		if err != nil {
			return translate("cart: remove lines", err)
		}
		err = db.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Update("quantity", gorm.Expr("quantity - ?", qty)).Error
		if err != nil {
			return translate("cart: remove lines", err)
		}
	}
	return nil
}

// ── Wishlist ────────────────────────────────────────────────────────────────

type WishlistRepository struct {
	db *gorm.DB
}

// ForUser returns the user's wishlist with products, newest first.
func (r *WishlistRepository) ForUser(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	var out []models.WishlistItem
	err := r.db.WithContext(ctx).Preload("Product").Preload("Product.Brand").
		Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, translate("wishlist: for user", err)
}

func (r *WishlistRepository) Exists(ctx context.Context, userID, productID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).Count(&n).Error
	return n > 0, translate("wishlist: exists", err)
}

func (r *WishlistRepository) Create(ctx context.Context, it *models.WishlistItem) error {
	return translate("wishlist: create", r.db.WithContext(ctx).Omit(clause.Associations).Create(it).Error)
}

// Delete removes productID from the user's wishlist; a missing row is not
// an error.
func (r *WishlistRepository) Delete(ctx context.Context, userID, productID uint) error {
	err := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error
	return translate("wishlist: delete", err)
}
