package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/vastra/pkg/http"
)

// Razorpay is the REST orders API client.
type Razorpay struct {
	keyID  string
	secret string
	client *http.Client
}

// NewRazorpay creates a client authenticated with the key pair.
func NewRazorpay(keyID, secret, baseURL string, opts ...http.Option) *Razorpay {
	opts = append([]http.Option{
		http.WithBasicAuth(keyID, secret),
		http.WithTimeout(15 * time.Second),
	}, opts...)
	return &Razorpay{keyID: keyID, secret: secret, client: http.NewClient(baseURL, opts...)}
}

func (r *Razorpay) Name() string  { return "razorpay" }
func (r *Razorpay) KeyID() string { return r.keyID }

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder POSTs /orders. Transport failures are retried once; the
// receipt makes a duplicate order harmless.
func (r *Razorpay) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	body := map[string]any{
		"amount":   req.AmountMinor,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		body["notes"] = req.Notes
	}

	resp, err := r.client.Post("/orders").Body(body).Retry(2, time.Second).Send(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("razorpay: create order: %w", err)
	}
	if err := resp.Throw(); err != nil {
		var rzErr razorpayError
		if resp.JSON(&rzErr) == nil && rzErr.Error.Description != "" {
			return Order{}, fmt.Errorf("razorpay: create order: %s: %w", rzErr.Error.Description, err)
		}
		return Order{}, fmt.Errorf("razorpay: create order: %w", err)
	}

	var out Order
	if err := resp.JSON(&out); err != nil {
		return Order{}, fmt.Errorf("razorpay: %w", err)
	}
	if out.ID == "" {
		return Order{}, errors.New("razorpay: create order: empty order id")
	}
	return out, nil
}

// Verify checks the checkout signature with the key secret.
func (r *Razorpay) Verify(c Confirmation) error { return verify(r.secret, c) }
