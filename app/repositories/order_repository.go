package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/pkg/orm"
)

// ── Payment intents ─────────────────────────────────────────────────────────

type PaymentIntentRepository struct {
	db *gorm.DB
}

func (r *PaymentIntentRepository) Create(ctx context.Context, in *models.PaymentIntent) error {
	return translate("intents: create", r.db.WithContext(ctx).Create(in).Error)
}

// FindForUser loads the user's intent for a gateway order.
func (r *PaymentIntentRepository) FindForUser(ctx context.Context, userID uint, gatewayOrderID string) (models.PaymentIntent, error) {
	var in models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND gateway_order_id = ?", userID, gatewayOrderID).
		First(&in).Error
	return in, translate("intents: find", err)
}

// Transition moves an intent from one status to another. It reports false
// when the intent was no longer in status from.
func (r *PaymentIntentRepository) Transition(ctx context.Context, id uint, from, to, reason string) (bool, error) {
	updates := map[string]any{"status": to, "updated_at": time.Now()}
	if reason != "" {
		updates["failure_reason"] = reason
	}
	res := r.db.WithContext(ctx).Model(&models.PaymentIntent{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, translate("intents: transition", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ExpirePending marks pending intents that expired before now.
func (r *PaymentIntentRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentIntent{}).
		Where("status = ? AND expires_at < ?", models.IntentPending, now).
		Updates(map[string]any{"status": models.IntentExpired, "updated_at": now})
	return res.RowsAffected, translate("intents: expire", res.Error)
}

// ── Orders ──────────────────────────────────────────────────────────────────

type OrderRepository struct {
	db *gorm.DB
}

// OrderFilter narrows the admin order listing.
type OrderFilter struct {
	Status string
	Search string
}

// Create inserts the order and its items.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return translate("orders: create", r.db.WithContext(ctx).Omit("User").Create(o).Error)
}

func (r *OrderRepository) ForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var out []models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, translate("orders: for user", err)
}

// FindForUser loads one of the user's orders by number.
func (r *OrderRepository) FindForUser(ctx context.Context, userID uint, number string) (models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ? AND order_number = ?", userID, number).First(&o).Error
	return o, translate("orders: find for user", err)
}

// Find loads an order with items and customer.
func (r *OrderRepository) Find(ctx context.Context, id uint) (models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).Preload("Items").Preload("User").First(&o, id).Error
	return o, translate("orders: find", err)
}

func (r *OrderRepository) List(ctx context.Context, f OrderFilter, p orm.Pagination) ([]models.Order, orm.Pagination, error) {
	q := r.db.Model(&models.Order{}).Preload("User")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		q = q.Where("order_number LIKE ?", "%"+f.Search+"%")
	}
	var out []models.Order
	page, err := orm.Paginate(ctx, q.Order("created_at DESC").Order("id DESC"), p, &out)
	return out, page, translate("orders: list", err)
}

// Recent returns the newest n orders with their customers.
func (r *OrderRepository) Recent(ctx context.Context, n int) ([]models.Order, error) {
	var out []models.Order
	err := r.db.WithContext(ctx).Preload("User").
		Order("created_at DESC").Order("id DESC").Limit(n).Find(&out).Error
	return out, translate("orders: recent", err)
}

// SetStatus changes the fulfillment status and, when non-empty, the
// tracking number.
func (r *OrderRepository) SetStatus(ctx context.Context, id uint, status, tracking string) error {
	updates := map[string]any{"status": status, "updated_at": time.Now()}
	if tracking != "" {
		updates["tracking_number"] = tracking
	}
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate("orders: set status", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
	return n, translate("orders: count", err)
}

// Revenue sums the totals of paid orders.
func (r *OrderRepository) Revenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("payment_status = ?", models.IntentPaid).
		Select("COALESCE(SUM(total), 0)").Scan(&total).Error
	return total, translate("orders: revenue", err)
}

// CountByUser returns the number of orders per user id.
func (r *OrderRepository) CountByUser(ctx context.Context, userIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		UserID uint
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("user_id, COUNT(*) AS n").
		Where("user_id IN ?", userIDs).
		Group("user_id").Scan(&rows).Error
	if err != nil {
		return nil, translate("orders: count by user", err)
	}
	for _, row := range rows {
		out[row.UserID] = row.N
	}
	return out, nil
}

// ── Reviews ─────────────────────────────────────────────────────────────────

type ReviewRepository struct {
	db *gorm.DB
}

// Aggregate is the rating summary of one product.
type Aggregate struct {
	ProductID uint
	Average   float64
	Count     int
}

func (r *ReviewRepository) ForProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	var out []models.Review
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).
		Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, translate("reviews: for product", err)
}

// Upsert creates the user's review or replaces their earlier one.
func (r *ReviewRepository) Upsert(ctx context.Context, rv *models.Review) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "author"}),
	}).Create(rv).Error
	return translate("reviews: upsert", err)
}

// Aggregates returns the average rating and review count per product.
func (r *ReviewRepository) Aggregates(ctx context.Context) (map[uint]Aggregate, error) {
	var rows []Aggregate
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("product_id, AVG(rating) AS average, COUNT(*) AS count").
		Group("product_id").Scan(&rows).Error
	if err != nil {
		return nil, translate("reviews: aggregates", err)
	}
	out := make(map[uint]Aggregate, len(rows))
	for _, a := range rows {
		out[a.ProductID] = a
	}
	return out, nil
}

// ── Shipping ────────────────────────────────────────────────────────────────

type ShippingRepository struct {
	db *gorm.DB
}

// Active returns active shipping methods, cheapest first.
func (r *ShippingRepository) Active(ctx context.Context) ([]models.ShippingMethod, error) {
	var out []models.ShippingMethod
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("price ASC").Order("id ASC").Find(&out).Error
	return out, translate("shipping: active", err)
}

func (r *ShippingRepository) FindActive(ctx context.Context, id uint) (models.ShippingMethod, error) {
	var m models.ShippingMethod
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&m, id).Error
	return m, translate("shipping: find", err)
}
