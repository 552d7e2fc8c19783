package controllers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vastra/app/controllers"
	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/pkg/auth"
	"github.com/shashiranjanraj/vastra/pkg/ctx"
	"github.com/shashiranjanraj/vastra/pkg/event"
	"github.com/shashiranjanraj/vastra/pkg/payment"
	"github.com/shashiranjanraj/vastra/pkg/rbac"
	"github.com/shashiranjanraj/vastra/pkg/router"
	"github.com/shashiranjanraj/vastra/pkg/session"
	"github.com/shashiranjanraj/vastra/pkg/testkit"
)

type shop struct {
	handler http.Handler
	repos   *repositories.Repos
	token   string
	method  models.ShippingMethod
}

func newShop(t *testing.T) *shop {
	t.Helper()
	bg := context.Background()
	repos := repositories.New(testkit.DB(t, models.All()...))
	issuer := auth.NewIssuer("controller-test-secret")

	u := models.User{Email: "meera@example.com", Password: "x", FirstName: "Meera", Role: rbac.RoleCustomer}
	require.NoError(t, repos.Users.Create(bg, &u))
	pair, err := issuer.Issue(u.ID, u.Role)
	require.NoError(t, err)

	p := models.Product{Name: "Linen Kurta", Slug: "linen-kurta", Price: 499, StockQuantity: 2, IsActive: true}
	require.NoError(t, repos.Products.Create(bg, &p))
	m := models.ShippingMethod{Name: "Standard", Price: 49, IsActive: true}
	require.NoError(t, repos.DB().Create(&m).Error)

	bus := event.NewBus()
	t.Cleanup(bus.Wait)
	checkout := controllers.NewCheckoutController(services.NewCheckoutService(
		repos, payment.NewMock("mock-secret"), bus, services.CheckoutConfig{MerchantName: "Vastra"},
	))
	cart := controllers.NewCartController(services.NewCartService(repos), services.NewWishlistService(repos))

	r := router.New()
	r.Use(session.Middleware(issuer, session.NewMemoryRevocations()))
	w := ctx.Wrap
	api := r.Group("/api", session.Require)
	api.Get("/cart", "cart.show", w(cart.Show))
	api.Post("/cart", "cart.add", w(cart.Add))
	api.Post("/wishlist", "wishlist.store", w(cart.Save))
	api.Post("/checkout", "checkout.begin", w(checkout.Begin))
	api.Post("/checkout/confirm", "checkout.confirm", w(checkout.Confirm))
	api.Post("/checkout/cancel", "checkout.cancel", w(checkout.Cancel))
	api.Post("/checkout/mock-pay", "checkout.mock_pay", w(checkout.MockPay))

	return &shop{handler: r.Handler(), repos: repos, token: pair.AccessToken, method: m}
}

func (s *shop) begin(t *testing.T) string {
	t.Helper()
	rec := testkit.Call(t, s.handler, testkit.Scenario{
		Method: http.MethodPost,
		URL:    "/api/checkout",
		Token:  s.token,
		Body: map[string]any{
			"shipping_method_id": s.method.ID,
			"shipping_address": models.Address{
				FullName: "Meera Iyer",
				Phone:    "9876543210",
				Address:  "4 Residency Road",
				City:     "Bengaluru",
				State:    "Karnataka",
				Pincode:  "560025",
			},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var req services.PaymentRequest
	testkit.DecodeEnvelope(t, rec).Decode(t, &req)
	assert.Equal(t, int64(54800), req.Amount)
	assert.Equal(t, "Vastra", req.MerchantName)
	return req.GatewayOrderID
}

func TestCheckoutOverHTTP(t *testing.T) {
	s := newShop(t)

	testkit.Run(t, s.handler, []testkit.Scenario{
		{Name: "guest", Method: http.MethodPost, URL: "/api/checkout", Body: map[string]any{}, ExpectedCode: http.StatusUnauthorized},
		{Name: "empty cart", Method: http.MethodPost, URL: "/api/checkout", Token: s.token,
			Body: map[string]any{"shipping_method_id": s.method.ID}, ExpectedCode: http.StatusUnprocessableEntity},
		{Name: "add to cart", Method: http.MethodPost, URL: "/api/cart", Token: s.token,
			Body: map[string]any{"product_id": 1}, ExpectedCode: http.StatusOK},
		{Name: "missing shipping method", Method: http.MethodPost, URL: "/api/checkout", Token: s.token,
			Body: map[string]any{}, ExpectedCode: http.StatusUnprocessableEntity,
			Check: func(t *testing.T, env testkit.Envelope) {
				assert.Contains(t, env.Errors, "shipping_method_id")
			}},
	})

	cancelled := s.begin(t)
	testkit.Run(t, s.handler, []testkit.Scenario{
		{Name: "cancel is retryable", Method: http.MethodPost, URL: "/api/checkout/cancel", Token: s.token,
			Body: map[string]string{"gateway_order_id": cancelled}, ExpectedCode: http.StatusPaymentRequired,
			Check: func(t *testing.T, env testkit.Envelope) {
				testkit.AssertJSON(t, `{"retryable": true}`, env.Data)
			}},
		{Name: "cart survives cancel", URL: "/api/cart", Token: s.token, ExpectedCode: http.StatusOK,
			Check: func(t *testing.T, env testkit.Envelope) {
				var cart services.Cart
				env.Decode(t, &cart)
				assert.Equal(t, 1, cart.Count)
			}},
	})

	tampered := s.begin(t)
	testkit.Run(t, s.handler, []testkit.Scenario{
		{Name: "bad signature", Method: http.MethodPost, URL: "/api/checkout/confirm", Token: s.token,
			Body:         map[string]string{"gateway_order_id": tampered, "payment_id": "pay_x", "signature": "deadbeef"},
			ExpectedCode: http.StatusPaymentRequired},
		{Name: "failed intent is closed", Method: http.MethodPost, URL: "/api/checkout/confirm", Token: s.token,
			Body:         map[string]string{"gateway_order_id": tampered, "payment_id": "pay_x", "signature": "deadbeef"},
			ExpectedCode: http.StatusConflict},
		{Name: "unknown mock order", Method: http.MethodPost, URL: "/api/checkout/mock-pay", Token: s.token,
			Body: map[string]string{"gateway_order_id": "order_mock_missing"}, ExpectedCode: http.StatusNotFound},
	})

	paid := s.begin(t)
	testkit.Run(t, s.handler, []testkit.Scenario{
		{Name: "mock pay confirms", Method: http.MethodPost, URL: "/api/checkout/mock-pay", Token: s.token,
			Body: map[string]string{"gateway_order_id": paid}, ExpectedCode: http.StatusOK,
			Check: func(t *testing.T, env testkit.Envelope) {
				assert.Equal(t, "Payment successful", env.Message)
				var order models.Order
				env.Decode(t, &order)
				assert.Equal(t, 548.0, order.Total)
				assert.Len(t, order.Items, 1)
			}},
		{Name: "cart cleared", URL: "/api/cart", Token: s.token, ExpectedCode: http.StatusOK,
			Check: func(t *testing.T, env testkit.Envelope) {
				var cart services.Cart
				env.Decode(t, &cart)
				assert.Zero(t, cart.Count)
			}},
	})

	p, err := s.repos.Products.Find(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.StockQuantity)
}

func TestWishlistDuplicateIsNotAnError(t *testing.T) {
	s := newShop(t)
	testkit.Run(t, s.handler, []testkit.Scenario{
		{Name: "save", Method: http.MethodPost, URL: "/api/wishlist", Token: s.token,
			Body: map[string]any{"product_id": 1}, ExpectedCode: http.StatusCreated},
		{Name: "save again", Method: http.MethodPost, URL: "/api/wishlist", Token: s.token,
			Body: map[string]any{"product_id": 1}, ExpectedCode: http.StatusOK,
			Check: func(t *testing.T, env testkit.Envelope) {
				assert.Equal(t, "Already in wishlist", env.Message)
			}},
		{Name: "unknown product", Method: http.MethodPost, URL: "/api/wishlist", Token: s.token,
			Body: map[string]any{"product_id": 99}, ExpectedCode: http.StatusNotFound},
	})
}
