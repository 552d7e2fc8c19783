package payment

import (
	"context"
	"encoding/json"
	gohttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vastra/pkg/crypt"
)

func TestMockPayAndVerify(t *testing.T) {
	m := NewMock("local-secret")
	ctx := context.Background()

	o, err := m.CreateOrder(ctx, OrderRequest{AmountMinor: 129900, Currency: "INR", Receipt: "VS-1"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(o.ID, "order_mock_"))

	c, err := m.Pay(o.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.PaymentID, "pay_mock_"))
	assert.NoError(t, m.Verify(c))

	c.PaymentID = "pay_forged"
	assert.ErrorIs(t, m.Verify(c), ErrSignatureMismatch)

	_, err = m.Pay("order_unknown")
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestVerifyRejectsEmptyFields(t *testing.T) {
	m := NewMock("s")
	assert.ErrorIs(t, m.Verify(Confirmation{}), ErrSignatureMismatch)
}

func TestRazorpayCreateOrder(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		user, pass, _ := r.BasicAuth()
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_secret", pass)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, float64(249900), in["amount"])
		assert.Equal(t, "VS-ABC", in["receipt"])

		json.NewEncoder(w).Encode(map[string]any{
			"id": "order_N1", "amount": 249900, "currency": "INR", "receipt": "VS-ABC", "status": "created",
		})
	}))
	defer srv.Close()

	rz := NewRazorpay("rzp_test_key", "rzp_secret", srv.URL+"/v1")
	o, err := rz.CreateOrder(context.Background(), OrderRequest{AmountMinor: 249900, Currency: "INR", Receipt: "VS-ABC"})
	require.NoError(t, err)
	assert.Equal(t, "order_N1", o.ID)
	assert.Equal(t, int64(249900), o.AmountMinor)
	assert.Equal(t, "rzp_test_key", rz.KeyID())
}

func TestRazorpayErrorIsDescribed(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		w.WriteHeader(gohttp.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer srv.Close()

	_, err := NewRazorpay("k", "s", srv.URL).CreateOrder(context.Background(), OrderRequest{AmountMinor: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be at least 100")
}

func TestRazorpayVerify(t *testing.T) {
	rz := NewRazorpay("k", "rzp_secret", "http://unused")
	sig := crypt.Sign("rzp_secret", "order_N1|pay_P1")
	assert.NoError(t, rz.Verify(Confirmation{OrderID: "order_N1", PaymentID: "pay_P1", Signature: sig}))
	assert.ErrorIs(t, rz.Verify(Confirmation{OrderID: "order_N1", PaymentID: "pay_P2", Signature: sig}), ErrSignatureMismatch)
}
