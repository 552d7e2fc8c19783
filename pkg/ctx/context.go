// Package ctx gives handlers a single request context instead of the
// (http.ResponseWriter, *http.Request) pair:
//
//	func (c *CartController) Add(x *ctx.Context) {
//	    var in AddInput
//	    if !x.BindJSON(&in) {
//	        return // response already sent
//	    }
//	    x.Created(item)
//	}
//
//	api.Post("/cart", "cart.add", ctx.Wrap(cart.Add))
package ctx

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/vastra/pkg/bind"
	"github.com/shashiranjanraj/vastra/pkg/logger"
	"github.com/shashiranjanraj/vastra/pkg/orm"
	"github.com/shashiranjanraj/vastra/pkg/response"
	"github.com/shashiranjanraj/vastra/pkg/session"
	"github.com/shashiranjanraj/vastra/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc into an http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps one request/response pair.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Context returns the request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Log returns the request-scoped logger.
func (c *Context) Log() *slog.Logger { return logger.WithCtx(c.R.Context()) }

// Session returns the caller's session (the guest session when anonymous).
func (c *Context) Session() *session.Session { return session.FromCtx(c.R.Context()) }

// Param returns a URL path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a numeric path parameter. On failure it sends 404 and
// returns false.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		c.Error(http.StatusNotFound, "Not found")
		return 0, false
	}
	return uint(n), true
}

// Query returns a query-string value, "" when absent.
func (c *Context) Query(key string) string {
	return strings.TrimSpace(c.R.URL.Query().Get(key))
}

// QueryAll returns every value of a repeatable parameter. Comma-separated
// values are split as well, so ?brand=a,b and ?brand=a&brand=b agree.
func (c *Context) QueryAll(key string) []string {
	var out []string
	for _, v := range c.R.URL.Query()[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// QueryInt returns an integer parameter or def when absent or malformed.
func (c *Context) QueryInt(key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}

// QueryFloat returns a float parameter, or nil when absent, malformed or
// not finite (NaN, ±Inf).
func (c *Context) QueryFloat(key string) *float64 {
	f, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Pagination reads ?page= and ?per_page=.
func (c *Context) Pagination() orm.Pagination {
	return orm.NewPagination(c.QueryInt("page", 1), c.QueryInt("per_page", orm.DefaultPerPage))
}

// ─── Binding ──────────────────────────────────────────────────────────────────

// BindJSON decodes and validates the body into dest. On failure it sends 400
// or 422 and returns false.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.W, c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

// ─── Responses ────────────────────────────────────────────────────────────────

func (c *Context) Success(data any)                     { response.Success(c.W, data) }
func (c *Context) Created(data any)                     { response.Created(c.W, data) }
func (c *Context) Message(message string, data any)     { response.Message(c.W, message, data) }
func (c *Context) NoContent()                           { response.NoContent(c.W) }
func (c *Context) Error(code int, message string)       { response.Error(c.W, code, message) }
func (c *Context) ValidationError(errs validate.Errors) { response.ValidationError(c.W, errs) }

func (c *Context) ErrorWithData(code int, message string, data any) {
	response.ErrorWithData(c.W, code, message, data)
}

func (c *Context) Paginated(items any, p orm.Pagination) { response.Paginated(c.W, items, p) }

// ServerError logs err with the request id and sends a generic 500 so
// internals never leak to clients.
func (c *Context) ServerError(err error) {
	c.Log().Error("request failed", "method", c.R.Method, "path", c.R.URL.Path, "error", err)
	response.Error(c.W, http.StatusInternalServerError, "Something went wrong, please try again")
}

// Unavailable is ServerError for failures of a backing service (database,
// payment gateway) that are worth retrying.
func (c *Context) Unavailable(err error) {
	c.Log().Warn("dependency unavailable", "method", c.R.Method, "path", c.R.URL.Path, "error", err)
	response.Error(c.W, http.StatusServiceUnavailable, "Service temporarily unavailable, please try again")
}
