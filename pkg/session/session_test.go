package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vastra/pkg/auth"
	"github.com/shashiranjanraj/vastra/pkg/session"
)

func serve(t *testing.T, issuer *auth.Issuer, rev session.Revocations, header string) (*httptest.ResponseRecorder, *session.Session) {
	t.Helper()
	var got *session.Session
	h := session.Middleware(issuer, rev)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = session.FromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, got
}

func TestNoHeaderIsGuest(t *testing.T) {
	rec, sess := serve(t, auth.NewIssuer("k"), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, sess)
	assert.False(t, sess.SignedIn())
}

func TestValidTokenSignsIn(t *testing.T) {
	iss := auth.NewIssuer("k")
	pair, err := iss.Issue(42, "admin")
	require.NoError(t, err)

	rec, sess := serve(t, iss, session.NewMemoryRevocations(), "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 42, sess.UserID)
	assert.True(t, sess.HasRole("admin"))
	assert.False(t, sess.HasRole("customer"))
}

func TestBadAndRevokedTokensAreRejected(t *testing.T) {
	iss := auth.NewIssuer("k")
	rev := session.NewMemoryRevocations()

	rec, _ := serve(t, iss, rev, "Bearer nonsense")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(t, iss, rev, "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	pair, err := iss.Issue(1, "customer")
	require.NoError(t, err)
	claims, err := iss.Parse(pair.AccessToken, auth.Access)
	require.NoError(t, err)
	require.NoError(t, rev.Revoke(context.Background(), claims.ID, time.Now().Add(time.Hour)))

	rec, _ = serve(t, iss, rev, "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireBlocksGuests(t *testing.T) {
	h := session.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(session.WithSession(req.Context(), session.New(3, "customer")))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
