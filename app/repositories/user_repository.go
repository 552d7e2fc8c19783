package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/pkg/orm"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

// CustomerRow is a customer with their order count.
type CustomerRow struct {
	models.User
	OrderCount int64 `json:"order_count"`
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return user, translate("users: find by email", err)
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	return user, translate("users: find", r.db.WithContext(ctx).First(&user, id).Error)
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate("users: create", r.db.WithContext(ctx).Create(user).Error)
}

// Update persists changes to an existing user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return translate("users: update", r.db.WithContext(ctx).Save(user).Error)
}

// Customers pages through users with the customer role, newest first, each
// with their order count.
func (r *UserRepository) Customers(ctx context.Context, search string, p orm.Pagination) ([]CustomerRow, orm.Pagination, error) {
	q := r.db.Model(&models.User{}).Where("role = ?", "customer")
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}

	var users []models.User
	page, err := orm.Paginate(ctx, q.Order("created_at DESC").Order("id DESC"), p, &users)
	if err != nil {
		return nil, page, translate("users: customers", err)
	}

	counts, err := (&OrderRepository{db: r.db}).CountByUser(ctx, userIDs(users))
	if err != nil {
		return nil, page, err
	}

	out := make([]CustomerRow, len(users))
	for i, u := range users {
		out[i] = CustomerRow{User: u, OrderCount: counts[u.ID]}
	}
	return out, page, nil
}

// CountByRole counts users with role.
func (r *UserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&n).Error
	return n, translate("users: count", err)
}

func userIDs(users []models.User) []uint {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}
