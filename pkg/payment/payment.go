// Package payment talks to the card/UPI payment gateway.
//
// Checkout creates a gateway order for the amount due, the browser completes
// payment with the gateway's widget, and the server verifies the returned
// signature before anything is written:
//
//	gw := payment.FromConfig()
//	order, err := gw.CreateOrder(ctx, payment.OrderRequest{AmountMinor: 129900, Currency: "INR", Receipt: "VS-8K2M"})
//	err = gw.Verify(payment.Confirmation{OrderID: order.ID, PaymentID: pid, Signature: sig})
package payment

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/vastra/config"
	"github.com/shashiranjanraj/vastra/pkg/crypt"
)

// ErrSignatureMismatch is returned by Verify when the signature does not
// match the order and payment ids.
var ErrSignatureMismatch = errors.New("payment: signature mismatch")

// OrderRequest asks the gateway for a new order.
type OrderRequest struct {
	AmountMinor int64 // paise
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// Order is the gateway's view of an order.
type Order struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

// Confirmation is what the gateway widget hands back after payment.
type Confirmation struct {
	OrderID   string `json:"gateway_order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// Gateway is implemented by Razorpay and Mock.
type Gateway interface {
	Name() string
	KeyID() string
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
	Verify(c Confirmation) error
}

// verify checks an HMAC-SHA256 signature over "order_id|payment_id".
func verify(secret string, c Confirmation) error {
	if c.OrderID == "" || c.PaymentID == "" || c.Signature == "" {
		return ErrSignatureMismatch
	}
	if !crypt.Verify(secret, c.OrderID+"|"+c.PaymentID, c.Signature) {
		return ErrSignatureMismatch
	}
	return nil
}

// FromConfig returns the Razorpay client when PAYMENT_KEY_ID is set and the
// mock gateway otherwise.
func FromConfig() Gateway {
	if config.PaymentKeyID() == "" {
		return NewMock(config.PaymentMockSecret())
	}
	return NewRazorpay(config.PaymentKeyID(), config.PaymentKeySecret(), config.PaymentBaseURL())
}
