package routes

import (
	"net/http"

	"github.com/shashiranjanraj/vastra/app/controllers"
	"github.com/shashiranjanraj/vastra/pkg/ctx"
	"github.com/shashiranjanraj/vastra/pkg/middleware"
	"github.com/shashiranjanraj/vastra/pkg/rbac"
	"github.com/shashiranjanraj/vastra/pkg/router"
	"github.com/shashiranjanraj/vastra/pkg/session"
)

// Handlers is everything the route table points at.
type Handlers struct {
	Catalog  *controllers.CatalogController
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
	Orders   *controllers.OrderController
	Auth     *controllers.AuthController
	Admin    *controllers.AdminController

	Stream  http.Handler // catalog SSE
	Live    http.Handler // admin websocket
	GraphQL http.Handler

	// AuthLimiter and CheckoutLimiter guard the sensitive POSTs. Nil
	// disables the extra limit.
	AuthLimiter     middleware.Limiter
	CheckoutLimiter middleware.Limiter
}

func limit(l middleware.Limiter) []router.Middleware {
	if l == nil {
		return nil
	}
	return []router.Middleware{middleware.RateLimit(l, middleware.ByRoute)}
}

func RegisterAPI(r *router.Router, h Handlers) {
	w := ctx.Wrap
	api := r.Group("/api")

	// Storefront reads.
	cat := h.Catalog
	api.Get("/catalog", "catalog.index", w(cat.Index))
	api.Get("/catalog/facets", "catalog.facets", w(cat.Facets))
	if h.Stream != nil {
		api.Get("/catalog/stream", "catalog.stream", h.Stream.ServeHTTP)
	}
	api.Get("/products/featured", "products.featured", w(cat.Featured))
	api.Get("/products/{id}", "products.show", w(cat.Product))
	api.Get("/products/{id}/reviews", "reviews.index", w(h.Orders.Reviews))
	api.Post("/products/{id}/reviews", "reviews.store", w(h.Orders.Review), session.Require)
	api.Get("/brands", "brands.index", w(cat.Brands))
	api.Get("/brands/featured", "brands.featured", w(cat.FeaturedBrands))
	api.Get("/brands/{slug}", "brands.show", w(cat.Brand))
	api.Get("/categories", "categories.index", w(cat.Categories))
	api.Get("/categories/{slug}", "categories.show", w(cat.Category))
	api.Get("/collections", "collections.index", w(cat.Collections))
	api.Get("/collections/featured", "collections.featured", w(cat.FeaturedCollections))
	api.Get("/collections/{slug}", "collections.show", w(cat.Collection))
	api.Get("/shipping/methods", "shipping.methods", w(cat.ShippingMethods))
	api.Get("/shipping/quote", "shipping.quote", w(cat.ShippingQuote))

	// Auth.
	authLimit := limit(h.AuthLimiter)
	authn := api.Group("/auth")
	authn.Post("/register", "auth.register", w(h.Auth.Register), append(authLimit, rbac.Guest)...)
	authn.Post("/login", "auth.login", w(h.Auth.Login), authLimit...)
	authn.Post("/refresh", "auth.refresh", w(h.Auth.Refresh), authLimit...)
	authn.Post("/logout", "auth.logout", w(h.Auth.Logout), session.Require)

	// Signed-in customer.
	me := api.Group("", session.Require)
	me.Get("/profile", "profile.show", w(h.Auth.Profile))
	me.Put("/profile", "profile.update", w(h.Auth.UpdateProfile))

	me.Get("/cart", "cart.show", w(h.Cart.Show))
	me.Post("/cart", "cart.add", w(h.Cart.Add))
	me.Delete("/cart", "cart.clear", w(h.Cart.Clear))
	me.Patch("/cart/{id}", "cart.update", w(h.Cart.Update))
	me.Delete("/cart/{id}", "cart.remove", w(h.Cart.Remove))

	me.Get("/wishlist", "wishlist.index", w(h.Cart.Wishlist))
	me.Post("/wishlist", "wishlist.store", w(h.Cart.Save))
	me.Delete("/wishlist/{productID}", "wishlist.destroy", w(h.Cart.Unsave))

	checkout := me.Group("/checkout", limit(h.CheckoutLimiter)...)
	checkout.Post("", "checkout.begin", w(h.Checkout.Begin))
	checkout.Post("/confirm", "checkout.confirm", w(h.Checkout.Confirm))
	checkout.Post("/cancel", "checkout.cancel", w(h.Checkout.Cancel))
	checkout.Post("/mock-pay", "checkout.mock_pay", w(h.Checkout.MockPay))

	me.Get("/orders", "orders.index", w(h.Orders.Index))
	me.Get("/orders/{number}", "orders.show", w(h.Orders.Show))

	registerAdmin(api.Group("/admin", rbac.HasRole(rbac.RoleAdmin)), h)

	if h.GraphQL != nil {
		r.Get("/graphql", "graphql.query", h.GraphQL.ServeHTTP)
		r.Post("/graphql", "graphql", h.GraphQL.ServeHTTP)
	}
}

func registerAdmin(admin *router.Group, h Handlers) {
	w := ctx.Wrap
	a := h.Admin

	admin.Get("/dashboard", "admin.dashboard", w(a.Dashboard))
	if h.Live != nil {
		admin.Get("/live", "admin.live", h.Live.ServeHTTP)
	}

	admin.Get("/products", "admin.products.index", w(a.Products))
	admin.Post("/products", "admin.products.store", w(a.CreateProduct))
	admin.Get("/products/{id}", "admin.products.show", w(a.Product))
	admin.Put("/products/{id}", "admin.products.update", w(a.UpdateProduct))
	admin.Delete("/products/{id}", "admin.products.destroy", w(a.DeleteProduct))

	admin.Get("/brands", "admin.brands.index", w(a.Brands))
	admin.Post("/brands", "admin.brands.store", w(a.SaveBrand))
	admin.Put("/brands/{id}", "admin.brands.update", w(a.SaveBrand))
	admin.Delete("/brands/{id}", "admin.brands.destroy", w(a.DeleteBrand))

	admin.Get("/categories", "admin.categories.index", w(a.Categories))
	admin.Post("/categories", "admin.categories.store", w(a.SaveCategory))
	admin.Put("/categories/{id}", "admin.categories.update", w(a.SaveCategory))
	admin.Delete("/categories/{id}", "admin.categories.destroy", w(a.DeleteCategory))

	admin.Get("/collections", "admin.collections.index", w(a.Collections))
	admin.Post("/collections", "admin.collections.store", w(a.SaveCollection))
	admin.Get("/collections/{id}", "admin.collections.show", w(a.Collection))
	admin.Put("/collections/{id}", "admin.collections.update", w(a.SaveCollection))
	admin.Put("/collections/{id}/products", "admin.collections.products", w(a.SetCollectionProducts))
	admin.Delete("/collections/{id}", "admin.collections.destroy", w(a.DeleteCollection))

	admin.Get("/customers", "admin.customers.index", w(a.Customers))

	admin.Get("/orders", "admin.orders.index", w(a.Orders))
	admin.Get("/orders/{id}", "admin.orders.show", w(a.Order))
	admin.Patch("/orders/{id}/status", "admin.orders.status", w(a.UpdateOrderStatus))

	admin.Post("/images", "admin.images.store", w(a.UploadImages))
	admin.Delete("/images", "admin.images.destroy", w(a.DeleteImage))
}
