// Package repositories wraps gorm queries per table. Every method takes a
// context; work that must be atomic goes through Repos.Transaction.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// translate maps gorm errors onto the package sentinels.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isDuplicate(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// duplicateMarkers are the unique-violation messages of sqlite, postgres,
// mysql and sqlserver.
var duplicateMarkers = []string{
	"UNIQUE constraint failed",
	"duplicate key",
	"Duplicate entry",
	"Cannot insert duplicate key",
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, marker := range duplicateMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Repos bundles one repository per table over the same handle.
type Repos struct {
	db *gorm.DB

	Products    *ProductRepository
	Brands      *BrandRepository
	Categories  *CategoryRepository
	Collections *CollectionRepository
	Users       *UserRepository
	Cart        *CartRepository
	Wishlist    *WishlistRepository
	Reviews     *ReviewRepository
	Shipping    *ShippingRepository
	Intents     *PaymentIntentRepository
	Orders      *OrderRepository
}

func New(db *gorm.DB) *Repos {
	return &Repos{
		db:          db,
		Products:    &ProductRepository{db: db},
		Brands:      &BrandRepository{db: db},
		Categories:  &CategoryRepository{db: db},
		Collections: &CollectionRepository{db: db},
		Users:       &UserRepository{db: db},
		Cart:        &CartRepository{db: db},
		Wishlist:    &WishlistRepository{db: db},
		Reviews:     &ReviewRepository{db: db},
		Shipping:    &ShippingRepository{db: db},
		Intents:     &PaymentIntentRepository{db: db},
		Orders:      &OrderRepository{db: db},
	}
}

// DB is the underlying handle.
func (r *Repos) DB() *gorm.DB { return r.db }

// Transaction runs fn with repositories bound to one transaction. fn's error
// rolls everything back.
func (r *Repos) Transaction(ctx context.Context, fn func(tx *Repos) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
