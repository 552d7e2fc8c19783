package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/pkg/metrics"
	"github.com/shashiranjanraj/vastra/pkg/session"
)

// CartService manages the signed-in user's cart rows.
type CartService struct {
	repos *repositories.Repos
}

func NewCartService(repos *repositories.Repos) *CartService {
	return &CartService{repos: repos}
}

// Cart is the cart with its derived totals.
type Cart struct {
	Items []models.CartItem `json:"items"`
	Count int               `json:"count"`
	Total float64           `json:"total"`
}

// Totals returns Σ quantity and Σ price×quantity.
func Totals(items []models.CartItem) (count int, total float64) {
	for _, it := range items {
		count += it.Quantity
		total += it.LineTotal()
	}
	return count, RoundMoney(total)
}

// RoundMoney rounds to two decimals.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *CartService) Items(ctx context.Context, sess *session.Session) (Cart, error) {
	if !sess.SignedIn() {
		return Cart{}, ErrSignInRequired
	}
	items, err := s.repos.Cart.ForUser(ctx, sess.UserID)
	if err != nil {
		return Cart{}, err
	}
	count, total := Totals(items)
	return Cart{Items: items, Count: count, Total: total}, nil
}

// Add puts one unit of productID in the cart: an existing row gets one more,
// otherwise a row is created with the product's current name, brand, price
// and first image.
func (s *CartService) Add(ctx context.Context, sess *session.Session, productID uint) (Cart, error) {
	if !sess.SignedIn() {
		return Cart{}, ErrSignInRequired
	}

	err := s.repos.Cart.Increment(ctx, sess.UserID, productID)
	switch {
	case err == nil:
		metrics.CartOperations.WithLabelValues("increment").Inc()
	case errors.Is(err, repositories.ErrNotFound):
		if err := s.insert(ctx, sess.UserID, productID); err != nil {
			return Cart{}, err
		}
	default:
		return Cart{}, err
	}
	return s.Items(ctx, sess)
}

func (s *CartService) insert(ctx context.Context, userID, productID uint) error {
	p, err := s.repos.Products.FindActive(ctx, productID)
	if err != nil {
		return fmt.Errorf("cart: product %d: %w", productID, err)
	}
	row := models.CartItem{
		UserID:      userID,
		ProductID:   p.ID,
		Quantity:    1,
		ProductName: p.Name,
		BrandName:   p.BrandName(),
		Price:       p.Price,
		ImageURL:    p.FirstImage(),
	}
	err = s.repos.Cart.Create(ctx, &row)
	if errors.Is(err, repositories.ErrDuplicate) {
		// A concurrent add created the row first.
		err = s.repos.Cart.Increment(ctx, userID, productID)
	}
	if err == nil {
		metrics.CartOperations.WithLabelValues("add").Inc()
	}
	return err
}

// UpdateQuantity sets a row's quantity; below 1 removes the row.
func (s *CartService) UpdateQuantity(ctx context.Context, sess *session.Session, itemID uint, qty int) (Cart, error) {
	if !sess.SignedIn() {
		return Cart{}, ErrSignInRequired
	}
	if qty < 1 {
		return s.Remove(ctx, sess, itemID)
	}
	if err := s.repos.Cart.SetQuantity(ctx, sess.UserID, itemID, qty); err != nil {
		return Cart{}, err
	}
	metrics.CartOperations.WithLabelValues("update").Inc()
	return s.Items(ctx, sess)
}

func (s *CartService) Remove(ctx context.Context, sess *session.Session, itemID uint) (Cart, error) {
	if !sess.SignedIn() {
		return Cart{}, ErrSignInRequired
	}
	if err := s.repos.Cart.Delete(ctx, sess.UserID, itemID); err != nil {
		return Cart{}, err
	}
	metrics.CartOperations.WithLabelValues("remove").Inc()
	return s.Items(ctx, sess)
}

func (s *CartService) Clear(ctx context.Context, sess *session.Session) error {
	if !sess.SignedIn() {
		return ErrSignInRequired
	}
	metrics.CartOperations.WithLabelValues("clear").Inc()
	return s.repos.Cart.Clear(ctx, sess.UserID)
}

// WishlistService manages the signed-in user's saved products.
type WishlistService struct {
	repos *repositories.Repos
}

func NewWishlistService(repos *repositories.Repos) *WishlistService {
	return &WishlistService{repos: repos}
}

func (s *WishlistService) Items(ctx context.Context, sess *session.Session) ([]models.WishlistItem, error) {
	if !sess.SignedIn() {
		return nil, ErrSignInRequired
	}
	return s.repos.Wishlist.ForUser(ctx, sess.UserID)
}

func (s *WishlistService) Contains(ctx context.Context, sess *session.Session, productID uint) (bool, error) {
	if !sess.SignedIn() {
		return false, nil
	}
	return s.repos.Wishlist.Exists(ctx, sess.UserID, productID)
}

// Add saves productID. A product already saved returns ErrAlreadyInWishlist
// without writing.
func (s *WishlistService) Add(ctx context.Context, sess *session.Session, productID uint) error {
	if !sess.SignedIn() {
		return ErrSignInRequired
	}
	exists, err := s.repos.Wishlist.Exists(ctx, sess.UserID, productID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyInWishlist
	}
	if _, err := s.repos.Products.FindActive(ctx, productID); err != nil {
		return err
	}

	err = s.repos.Wishlist.Create(ctx, &models.WishlistItem{UserID: sess.UserID, ProductID: productID})
	if errors.Is(err, repositories.ErrDuplicate) {
		return ErrAlreadyInWishlist
	}
	return err
}

func (s *WishlistService) Remove(ctx context.Context, sess *session.Session, productID uint) error {
	if !sess.SignedIn() {
		return ErrSignInRequired
	}
	return s.repos.Wishlist.Delete(ctx, sess.UserID, productID)
}
