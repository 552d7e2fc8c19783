// Package services holds the storefront and admin use cases. Services take
// their dependencies explicitly and receive the caller's *session.Session
// as an argument; none of them reads ambient request state.
package services

import (
	"errors"

	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/pkg/payment"
	"github.com/shashiranjanraj/vastra/pkg/validate"
)

var (
	ErrNotFound          = repositories.ErrNotFound
	ErrSignInRequired    = errors.New("please sign in to continue")
	ErrAlreadyInWishlist = errors.New("already in wishlist")
	ErrEmptyCart         = errors.New("your cart is empty")
	ErrPaymentCancelled  = errors.New("payment was cancelled")
	ErrSignatureMismatch = payment.ErrSignatureMismatch
	ErrOutOfStock        = errors.New("one or more items are out of stock")
	ErrSlugTaken         = errors.New("slug already exists")
	ErrEmailTaken        = errors.New("email is already registered")
	ErrInvalidLogin      = errors.New("invalid email or password")
	ErrIntentClosed      = errors.New("payment is no longer pending")
)

// ValidationError carries per-field messages; controllers answer 422.
type ValidationError struct {
	Fields validate.Errors
}

func (e *ValidationError) Error() string { return "validation failed" }

// invalid returns a *ValidationError for one field.
func invalid(field, msg string) error {
	return &ValidationError{Fields: validate.Errors{field: msg}}
}

// check runs struct-tag validation on v.
func check(v any) error {
	if errs := validate.Struct(v); validate.HasErrors(errs) {
		return &ValidationError{Fields: errs}
	}
	return nil
}
