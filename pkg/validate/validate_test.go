package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/vastra/pkg/validate"
)

type address struct {
	Name    string `json:"name"    validate:"required,max=120"`
	Phone   string `json:"phone"   validate:"required,phone"`
	Pincode string `json:"pincode" validate:"required,digits=6"`
}

type productInput struct {
	Name     string   `json:"name"      validate:"required,min=2,max=255"`
	Slug     string   `json:"slug"      validate:"nullable,slug"`
	Price    float64  `json:"price"     validate:"gte=0"`
	Compare  *float64 `json:"compare_at_price" validate:"nullable,gt=0"`
	Stock    int      `json:"stock_quantity"   validate:"gte=0"`
	Status   string   `json:"status"    validate:"nullable,in=processing|shipped|delivered"`
	ImageURL string   `json:"image_url" validate:"nullable,url"`
}

type signup struct {
	Email                string `json:"email"                 validate:"required,email"`
	Password             string `json:"password"              validate:"required,between=8:72,confirmed"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type checkout struct {
	Address  address `json:"shipping_address" validate:"required,dive"`
	MethodID uint    `json:"shipping_method_id" validate:"required"`
}

func TestValidProduct(t *testing.T) {
	errs := validate.Struct(productInput{
		Name:     "Linen Kurta",
		Slug:     "linen-kurta",
		Price:    1499,
		Stock:    3,
		ImageURL: "https://cdn.example.com/a.webp",
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestProductFailures(t *testing.T) {
	neg := -1.0
	errs := validate.Struct(&productInput{
		Name:    "",
		Slug:    "Not A Slug",
		Price:   -5,
		Compare: &neg,
		Stock:   -1,
		Status:  "lost",
	})

	for _, key := range []string{"name", "slug", "price", "compare_at_price", "stock_quantity", "status"} {
		if _, ok := errs[key]; !ok {
			t.Errorf("expected error for %s, got %v", key, errs)
		}
	}
}

func TestNullableSkipsZero(t *testing.T) {
	errs := validate.Struct(productInput{Name: "Scarf"})
	if validate.HasErrors(errs) {
		t.Errorf("expected nullable fields to be skipped, got: %v", errs)
	}
}

func TestConfirmedAndBetween(t *testing.T) {
	errs := validate.Struct(signup{Email: "a@b.co", Password: "secret123", PasswordConfirmation: "secret124"})
	if errs["password"] != "The password confirmation does not match." {
		t.Errorf("unexpected: %v", errs)
	}

	errs = validate.Struct(signup{Email: "a@b.co", Password: "short", PasswordConfirmation: "short"})
	if _, ok := errs["password"]; !ok {
		t.Error("expected length error")
	}

	errs = validate.Struct(signup{Email: "a@b.co", Password: "secret123", PasswordConfirmation: "secret123"})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestDiveKeysNestedErrors(t *testing.T) {
	errs := validate.Struct(checkout{
		Address:  address{Name: "Asha", Phone: "98x", Pincode: "1100"},
		MethodID: 1,
	})

	if _, ok := errs["shipping_address.phone"]; !ok {
		t.Errorf("expected nested phone error, got %v", errs)
	}
	if errs["shipping_address.pincode"] != "The shipping_address.pincode must be 6 digits." {
		t.Errorf("unexpected pincode message: %v", errs)
	}
	if _, ok := errs["shipping_address.name"]; ok {
		t.Error("name is valid")
	}
}

func TestPhoneAcceptsSeparators(t *testing.T) {
	errs := validate.Struct(address{Name: "Ravi", Phone: "+91 98765-43210", Pincode: "560001"})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}
