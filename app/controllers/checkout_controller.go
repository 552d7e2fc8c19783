package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/pkg/ctx"
	"github.com/shashiranjanraj/vastra/pkg/payment"
)

type CheckoutController struct {
	checkout *services.CheckoutService
}

func NewCheckoutController(checkout *services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkout: checkout}
}

// Begin POST /api/checkout
func (cc *CheckoutController) Begin(c *ctx.Context) {
	var in services.BeginInput
	if !c.BindJSON(&in) {
		return
	}
	req, err := cc.checkout.Begin(c.Context(), c.Session(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(req)
}

// Confirm POST /api/checkout/confirm
func (cc *CheckoutController) Confirm(c *ctx.Context) {
	var in services.ConfirmInput
	if !c.BindJSON(&in) {
		return
	}
	cc.confirm(c, in)
}

func (cc *CheckoutController) confirm(c *ctx.Context, in services.ConfirmInput) {
	order, err := cc.checkout.Confirm(c.Context(), c.Session(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message("Payment successful", order)
}

type cancelInput struct {
	GatewayOrderID string `json:"gateway_order_id" validate:"required"`
	Reason         string `json:"reason"           validate:"max=255"`
}

// Cancel POST /api/checkout/cancel. The answer is always 402 with
// retryable=true; the cart is untouched.
func (cc *CheckoutController) Cancel(c *ctx.Context) {
	var in cancelInput
	if !c.BindJSON(&in) {
		return
	}
	fail(c, cc.checkout.Cancel(c.Context(), c.Session(), in.GatewayOrderID, in.Reason))
}

// MockPay POST /api/checkout/mock-pay settles a mock gateway order and
// confirms it in one step. It is 404 unless the mock gateway is active.
func (cc *CheckoutController) MockPay(c *ctx.Context) {
	mock, ok := cc.checkout.MockGateway()
	if !ok {
		c.Error(http.StatusNotFound, "Not found")
		return
	}
	var in struct {
		GatewayOrderID string `json:"gateway_order_id" validate:"required"`
	}
	if !c.BindJSON(&in) {
		return
	}
	conf, err := mock.Pay(in.GatewayOrderID)
	if errors.Is(err, payment.ErrUnknownOrder) {
		fail(c, services.ErrNotFound)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	cc.confirm(c, services.ConfirmInput{
		GatewayOrderID: conf.OrderID,
		PaymentID:      conf.PaymentID,
		Signature:      conf.Signature,
	})
}
