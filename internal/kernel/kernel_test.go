package kernel_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/shashiranjanraj/vastra/database/migrations"
	"github.com/shashiranjanraj/vastra/database/seeders"
	"github.com/shashiranjanraj/vastra/internal/kernel"
	"github.com/shashiranjanraj/vastra/pkg/migration"
	"github.com/shashiranjanraj/vastra/pkg/storage"
	"github.com/shashiranjanraj/vastra/pkg/testkit"
)

func newKernel(t *testing.T) *kernel.Kernel {
	t.Helper()
	ctx := context.Background()

	db := testkit.DB(t)
	_, err := migration.New(db).Run(ctx)
	require.NoError(t, err)
	require.NoError(t, seeders.RunAll(ctx, db, io.Discard))

	disks := storage.NewManager("local")
	local, err := storage.NewLocalDisk(t.TempDir(), "/storage")
	require.NoError(t, err)
	disks.Register("local", local)

	k, err := kernel.Build(kernel.Deps{DB: db, Storage: disks, Secret: "kernel-test-secret"})
	require.NoError(t, err)
	t.Cleanup(k.Close)
	return k
}

type tokens struct {
	Tokens struct {
		AccessToken string `json:"access_token"`
	} `json:"tokens"`
}

func TestKernelServesTheApi(t *testing.T) {
	k := newKernel(t)
	h := k.Handler()

	var admin, customer string

	testkit.Run(t, h, []testkit.Scenario{
		{
			Name:         "health",
			URL:          "/healthz",
			ExpectedCode: http.StatusOK,
		},
		{
			Name:         "catalog lists seeded products",
			URL:          "/api/catalog?sort=price-asc",
			ExpectedCode: http.StatusOK,
			Check: func(t *testing.T, env testkit.Envelope) {
				var page struct {
					Total int `json:"total"`
				}
				env.Decode(t, &page)
				assert.Equal(t, 10, page.Total)
			},
		},
		{
			Name:         "cart requires sign in",
			URL:          "/api/cart",
			ExpectedCode: http.StatusUnauthorized,
		},
		{
			Name:         "unknown route",
			URL:          "/api/nope",
			ExpectedCode: http.StatusNotFound,
		},
		{
			Name:         "admin signs in",
			Method:       http.MethodPost,
			URL:          "/api/auth/login",
			Body:         map[string]string{"email": "admin@vastra.local", "password": "password"},
			ExpectedCode: http.StatusOK,
			Check: func(t *testing.T, env testkit.Envelope) {
				var res tokens
				env.Decode(t, &res)
				admin = res.Tokens.AccessToken
				assert.NotEmpty(t, admin)
			},
		},
		{
			Name:   "customer registers",
			Method: http.MethodPost,
			URL:    "/api/auth/register",
			Body: map[string]string{
				"first_name":            "Asha",
				"email":                 "asha@example.com",
				"password":              "secret-pass",
				"password_confirmation": "secret-pass",
			},
			ExpectedCode: http.StatusCreated,
			Check: func(t *testing.T, env testkit.Envelope) {
				var res tokens
				env.Decode(t, &res)
				customer = res.Tokens.AccessToken
				assert.NotEmpty(t, customer)
			},
		},
	})

	testkit.Run(t, h, []testkit.Scenario{
		{Name: "dashboard for admin", URL: "/api/admin/dashboard", Token: admin, ExpectedCode: http.StatusOK},
		{Name: "dashboard forbidden to customers", URL: "/api/admin/dashboard", Token: customer, ExpectedCode: http.StatusForbidden},
		{Name: "dashboard needs a session", URL: "/api/admin/dashboard", ExpectedCode: http.StatusUnauthorized},
		{Name: "customer cart is empty", URL: "/api/cart", Token: customer, ExpectedCode: http.StatusOK},
		{Name: "bad token", URL: "/api/cart", Token: "not-a-jwt", ExpectedCode: http.StatusUnauthorized},
	})
}

func TestKernelGraphQL(t *testing.T) {
	k := newKernel(t)

	rec := testkit.Call(t, k.Handler(), testkit.Scenario{
		Method: http.MethodPost,
		URL:    "/graphql",
		Body:   map[string]string{"query": "{ brands { slug } }"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"anaya-weaves"`)
}

func TestKernelSchedulesMaintenance(t *testing.T) {
	k := newKernel(t)
	assert.Equal(t, []string{
		"payments:expire  [every 5m0s]",
		"catalog:refresh  [every 10m0s]",
	}, k.Scheduler().List())
}

func TestKernelRouteTable(t *testing.T) {
	k := newKernel(t)

	names := map[string]bool{}
	for _, ri := range k.Router().Routes() {
		names[ri.Name] = true
	}
	for _, want := range []string{"catalog.index", "checkout.confirm", "admin.orders.status", "graphql", "healthz", "storage"} {
		assert.True(t, names[want], "route %s missing", want)
	}
}
