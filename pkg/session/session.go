// Package session resolves the caller of a request into a *Session.
//
// A Session only carries the user id and role. The profile behind it is
// never assumed loaded; code that needs it fetches it by id.
//
//	r.Use(session.Middleware(issuer, revocations))
//
//	sess := session.FromCtx(r.Context())
//	if !sess.SignedIn() { ... }
package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/shashiranjanraj/vastra/pkg/auth"
	"github.com/shashiranjanraj/vastra/pkg/logger"
	"github.com/shashiranjanraj/vastra/pkg/response"
)

// Session identifies the caller of one request.
type Session struct {
	UserID    uint
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

var guest = &Session{}

// Guest returns the anonymous session.
func Guest() *Session { return guest }

// New returns a signed-in session. Tests and background jobs use it
// directly.
func New(userID uint, role string) *Session {
	return &Session{UserID: userID, Role: role}
}

// SignedIn reports whether the session belongs to a user.
func (s *Session) SignedIn() bool { return s != nil && s.UserID != 0 }

// HasRole reports whether the session's role is one of roles.
func (s *Session) HasRole(roles ...string) bool {
	if !s.SignedIn() {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

type ctxKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromCtx returns the session in ctx, or the guest session.
func FromCtx(ctx context.Context) *Session {
	if s, ok := ctx.Value(ctxKey{}).(*Session); ok && s != nil {
		return s
	}
	return guest
}

// Middleware attaches a Session to every request. Requests without an
// Authorization header are guests; a malformed, expired or revoked token is
// rejected with 401 so clients learn to sign in again.
func Middleware(issuer *auth.Issuer, revoked Revocations) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), guest)))
				return
			}

			claims, err := issuer.Parse(raw, auth.Access)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if revoked != nil {
				gone, err := revoked.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					logger.WithCtx(r.Context()).Warn("revocation check failed", "error", err)
				}
				if gone {
					response.Error(w, http.StatusUnauthorized, "Token has been revoked")
					return
				}
			}

			sess := &Session{UserID: claims.UserID, Role: claims.Role, TokenID: claims.ID}
			if claims.ExpiresAt != nil {
				sess.ExpiresAt = claims.ExpiresAt.Time
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// Require rejects guests with 401.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromCtx(r.Context()).SignedIn() {
			response.Error(w, http.StatusUnauthorized, "Please sign in to continue")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		// Browsers cannot set headers on a websocket handshake.
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			if t := strings.TrimSpace(r.URL.Query().Get("access_token")); t != "" {
				return t, true
			}
		}
		return "", false
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		// A present but unusable header is treated as a bad token, not a guest.
		return h, true
	}
	return strings.TrimSpace(token), true
}
