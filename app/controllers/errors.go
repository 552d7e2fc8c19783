// Package controllers adapts HTTP requests to the services and maps
// service errors onto envelope responses.
package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/pkg/ctx"
)

// fail writes the response for a service error.
func fail(c *ctx.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.ValidationError(verr.Fields)
	case errors.Is(err, services.ErrSignInRequired):
		c.Error(http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrInvalidLogin), errors.Is(err, services.ErrInvalidToken):
		c.Error(http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrNotFound):
		c.Error(http.StatusNotFound, "Resource not found")
	case errors.Is(err, services.ErrSlugTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrIntentClosed),
		errors.Is(err, services.ErrOutOfStock):
		c.Error(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrPaymentCancelled), errors.Is(err, services.ErrSignatureMismatch):
		c.ErrorWithData(http.StatusPaymentRequired, err.Error(), map[string]bool{"retryable": true})
	case errors.Is(err, services.ErrEmptyCart):
		c.Error(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrAlreadyInWishlist):
		c.Message("Already in wishlist", nil)
	case errors.Is(err, services.ErrPaymentUnavailable), errors.Is(err, context.DeadlineExceeded):
		c.Unavailable(err)
	default:
		c.ServerError(err)
	}
}
