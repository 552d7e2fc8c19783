package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/pkg/rbac"
	"github.com/shashiranjanraj/vastra/pkg/session"
	"github.com/shashiranjanraj/vastra/pkg/testkit"
)

func setup(t *testing.T) *repositories.Repos {
	t.Helper()
	return repositories.New(testkit.DB(t, models.All()...))
}

func customer(t *testing.T, r *repositories.Repos, email string) (models.User, *session.Session) {
	t.Helper()
	u := models.User{Email: email, Password: "x", FirstName: "Asha", LastName: "Rao", Role: rbac.RoleCustomer}
	require.NoError(t, r.Users.Create(context.Background(), &u))
	return u, session.New(u.ID, u.Role)
}

func product(t *testing.T, r *repositories.Repos, name string, price float64, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, Slug: name, Price: price, StockQuantity: stock, IsActive: true, ImageURLs: []string{"https://cdn/" + name + ".jpg"}}
	require.NoError(t, r.Products.Create(context.Background(), &p))
	return p
}

func shippingMethod(t *testing.T, r *repositories.Repos, price float64) models.ShippingMethod {
	t.Helper()
	m := models.ShippingMethod{Name: "Standard", Price: price, IsActive: true}
	require.NoError(t, r.DB().Create(&m).Error)
	return m
}

func address() models.Address {
	return models.Address{
		FullName: "Asha Rao",
		Phone:    "9876543210",
		Address:  "12 MG Road",
		City:     "Bengaluru",
		State:    "Karnataka",
		Pincode:  "560001",
	}
}
