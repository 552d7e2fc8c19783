// Package rbac gates routes by the role carried in the request session.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/vastra/pkg/response"
	"github.com/shashiranjanraj/vastra/pkg/session"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// HasRole allows only signed-in users whose role is one of roles. Guests
// get 401, other roles 403. session.Middleware must run first.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromCtx(r.Context())
			if !sess.SignedIn() {
				response.Unauthorized(w)
				return
			}
			if !sess.HasRole(roles...) {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Guest blocks signed-in users (register).
func Guest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session.FromCtx(r.Context()).SignedIn() {
			response.Error(w, http.StatusConflict, "Already authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}
