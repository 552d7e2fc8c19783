package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/pkg/event"
	"github.com/shashiranjanraj/vastra/pkg/logger"
	"github.com/shashiranjanraj/vastra/pkg/metrics"
	"github.com/shashiranjanraj/vastra/pkg/payment"
	"github.com/shashiranjanraj/vastra/pkg/session"
)

// ErrPaymentUnavailable wraps gateway failures; controllers answer 503.
var ErrPaymentUnavailable = errors.New("payment gateway unavailable")

type CheckoutConfig struct {
	Currency     string
	MerchantName string
	IntentTTL    time.Duration
}

// CheckoutService turns a cart into a paid order in two steps. Begin opens
// a gateway order and records a pending intent; Confirm verifies the
// gateway's signature and only then writes the order, decrements stock and
// clears the cart, all in one transaction.
type CheckoutService struct {
	repos       *repositories.Repos
	gateway     payment.Gateway
	bus         *event.Bus
	cfg         CheckoutConfig
	now         func() time.Time
	orderNumber func() string
}

func NewCheckoutService(repos *repositories.Repos, gw payment.Gateway, bus *event.Bus, cfg CheckoutConfig) *CheckoutService {
	if cfg.IntentTTL <= 0 {
		cfg.IntentTTL = 30 * time.Minute
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &CheckoutService{
		repos:       repos,
		gateway:     gw,
		bus:         bus,
		cfg:         cfg,
		now:         time.Now,
		orderNumber: NewOrderNumberGenerator(),
	}
}

// WithClock replaces the time source.
func (s *CheckoutService) WithClock(now func() time.Time) *CheckoutService {
	s.now = now
	return s
}

// MockGateway returns the in-process gateway when it is the active one.
func (s *CheckoutService) MockGateway() (*payment.Mock, bool) {
	m, ok := s.gateway.(*payment.Mock)
	return m, ok
}

type BeginInput struct {
	ShippingMethodID uint           `json:"shipping_method_id" validate:"required"`
	ShippingAddress  models.Address `json:"shipping_address"   validate:"dive"`
}

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// PaymentRequest is what the browser needs to open the gateway widget.
type PaymentRequest struct {
	KeyID          string  `json:"key_id"`
	Gateway        string  `json:"gateway"`
	GatewayOrderID string  `json:"gateway_order_id"`
	Amount         int64   `json:"amount"`
	Currency       string  `json:"currency"`
	MerchantName   string  `json:"merchant_name"`
	Description    string  `json:"description"`
	OrderNumber    string  `json:"order_number"`
	Subtotal       float64 `json:"subtotal"`
	ShippingCost   float64 `json:"shipping_cost"`
	Total          float64 `json:"total"`
	Prefill        Prefill `json:"prefill"`
}

// Begin prices the cart, opens a gateway order and stores a pending intent.
func (s *CheckoutService) Begin(ctx context.Context, sess *session.Session, in BeginInput) (PaymentRequest, error) {
	if !sess.SignedIn() {
		return PaymentRequest{}, ErrSignInRequired
	}
	if err := check(in); err != nil {
		return PaymentRequest{}, err
	}

	items, err := s.repos.Cart.ForUser(ctx, sess.UserID)
	if err != nil {
		return PaymentRequest{}, err
	}
	if len(items) == 0 {
		return PaymentRequest{}, ErrEmptyCart
	}

	method, err := s.repos.Shipping.FindActive(ctx, in.ShippingMethodID)
	if errors.Is(err, repositories.ErrNotFound) {
		return PaymentRequest{}, invalid("shipping_method_id", "The selected shipping method is not available.")
	}
	if err != nil {
		return PaymentRequest{}, err
	}

	user, err := s.repos.Users.FindByID(ctx, sess.UserID)
	if err != nil {
		return PaymentRequest{}, err
	}

	_, subtotal := Totals(items)
	total := RoundMoney(subtotal + method.Price)
	amount := int64(math.Round(total * 100))
	number := s.orderNumber()

	order, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		AmountMinor: amount,
		Currency:    s.cfg.Currency,
		Receipt:     number,
		Notes:       map[string]string{"user_id": fmt.Sprint(sess.UserID)},
	})
	if err != nil {
		metrics.CheckoutSteps.WithLabelValues("begin", "gateway_error").Inc()
		return PaymentRequest{}, fmt.Errorf("%w: %w", ErrPaymentUnavailable, err)
	}

	lines := make([]models.IntentLine, len(items))
	for i, it := range items {
		lines[i] = models.IntentLine{ProductID: it.ProductID, ProductName: it.ProductName, Price: it.Price, Quantity: it.Quantity}
	}
	intent := models.PaymentIntent{
		GatewayOrderID:   order.ID,
		OrderNumber:      number,
		UserID:           sess.UserID,
		Subtotal:         subtotal,
		ShippingCost:     method.Price,
		Total:            total,
		AmountMinor:      amount,
		Currency:         s.cfg.Currency,
		ShippingMethodID: method.ID,
		ShippingAddress:  in.ShippingAddress,
		Lines:            lines,
		Status:           models.IntentPending,
		ExpiresAt:        s.now().Add(s.cfg.IntentTTL),
	}
	if err := s.repos.Intents.Create(ctx, &intent); err != nil {
		return PaymentRequest{}, err
	}
	metrics.CheckoutSteps.WithLabelValues("begin", "ok").Inc()

	email := in.ShippingAddress.Email
	if email == "" {
		email = user.Email
	}
	return PaymentRequest{
		KeyID:          s.gateway.KeyID(),
		Gateway:        s.gateway.Name(),
		GatewayOrderID: order.ID,
		Amount:         amount,
		Currency:       s.cfg.Currency,
		MerchantName:   s.cfg.MerchantName,
		Description:    "Order " + number,
		OrderNumber:    number,
		Subtotal:       subtotal,
		ShippingCost:   method.Price,
		Total:          total,
		Prefill:        Prefill{Name: in.ShippingAddress.FullName, Email: email, Contact: in.ShippingAddress.Phone},
	}, nil
}

type ConfirmInput struct {
	GatewayOrderID string `json:"gateway_order_id" validate:"required"`
	PaymentID      string `json:"payment_id"       validate:"required"`
	Signature      string `json:"signature"        validate:"required"`
}

// Confirm verifies the payment and writes the order. A bad signature marks
// the intent failed and leaves the cart alone; so does a stock shortfall,
// which rolls the whole transaction back.
func (s *CheckoutService) Confirm(ctx context.Context, sess *session.Session, in ConfirmInput) (models.Order, error) {
	if !sess.SignedIn() {
		return models.Order{}, ErrSignInRequired
	}
	if err := check(in); err != nil {
		return models.Order{}, err
	}

	intent, err := s.repos.Intents.FindForUser(ctx, sess.UserID, in.GatewayOrderID)
	if err != nil {
		return models.Order{}, err
	}
	if intent.Status != models.IntentPending {
		return models.Order{}, ErrIntentClosed
	}

	if err := s.gateway.Verify(payment.Confirmation{OrderID: in.GatewayOrderID, PaymentID: in.PaymentID, Signature: in.Signature}); err != nil {
		s.fail(ctx, intent, "signature mismatch")
		metrics.CheckoutSteps.WithLabelValues("confirm", "signature_mismatch").Inc()
		return models.Order{}, ErrSignatureMismatch
	}

	order := models.Order{
		OrderNumber:      intent.OrderNumber,
		UserID:           intent.UserID,
		Subtotal:         intent.Subtotal,
		ShippingCost:     intent.ShippingCost,
		Total:            intent.Total,
		PaymentStatus:    models.IntentPaid,
		PaymentMethod:    s.gateway.Name(),
		PaymentID:        in.PaymentID,
		GatewayOrderID:   intent.GatewayOrderID,
		Status:           models.OrderProcessing,
		ShippingMethodID: intent.ShippingMethodID,
		ShippingAddress:  intent.ShippingAddress,
	}
	for _, l := range intent.Lines {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Price:       l.Price,
			Quantity:    l.Quantity,
			TotalPrice:  RoundMoney(l.Price * float64(l.Quantity)),
		})
	}

	err = s.repos.Transaction(ctx, func(tx *repositories.Repos) error {
		if err := tx.Orders.Create(ctx, &order); err != nil {
			return err
		}
		for _, l := range intent.Lines {
			ok, err := tx.Products.DecrementStock(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", ErrOutOfStock, l.ProductName)
			}
		}
		moved, err := tx.Intents.Transition(ctx, intent.ID, models.IntentPending, models.IntentPaid, "")
		if err != nil {
			return err
		}
		if !moved {
			return ErrIntentClosed
		}
		paid := make(map[uint]int, len(intent.Lines))
		for _, l := range intent.Lines {
			paid[l.ProductID] += l.Quantity
		}
		return tx.Cart.RemoveLines(ctx, intent.UserID, paid)
	})
	if errors.Is(err, ErrOutOfStock) {
		s.fail(ctx, intent, "out of stock")
		metrics.CheckoutSteps.WithLabelValues("confirm", "out_of_stock").Inc()
		return models.Order{}, err
	}
	if err != nil {
		metrics.CheckoutSteps.WithLabelValues("confirm", "error").Inc()
		return models.Order{}, err
	}

	metrics.CheckoutSteps.WithLabelValues("confirm", "ok").Inc()
	metrics.OrderRevenue.Add(order.Total)
	logger.WithCtx(ctx).Info("order placed", "order_number", order.OrderNumber, "user_id", order.UserID, "total", order.Total)

	if s.bus != nil {
		s.bus.FireAsync(ctx, EventOrderPlaced, order)
		s.bus.FireAsync(ctx, EventProductsChanged, nil)
	}
	return order, nil
}

// Cancel records that the customer dismissed or failed the payment. It
// always returns ErrPaymentCancelled; the cart is kept for a retry.
func (s *CheckoutService) Cancel(ctx context.Context, sess *session.Session, gatewayOrderID, reason string) error {
	if !sess.SignedIn() {
		return ErrSignInRequired
	}
	intent, err := s.repos.Intents.FindForUser(ctx, sess.UserID, gatewayOrderID)
	if err != nil {
		return err
	}
	if reason == "" {
		reason = "cancelled by customer"
	}
	if _, err := s.repos.Intents.Transition(ctx, intent.ID, models.IntentPending, models.IntentCancelled, reason); err != nil {
		return err
	}
	metrics.CheckoutSteps.WithLabelValues("cancel", "ok").Inc()
	return ErrPaymentCancelled
}

// ExpireStale marks pending intents past their expiry.
func (s *CheckoutService) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.repos.Intents.ExpirePending(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.WithCtx(ctx).Info("expired payment intents", "count", n)
	}
	return n, nil
}

func (s *CheckoutService) fail(ctx context.Context, intent models.PaymentIntent, reason string) {
	if _, err := s.repos.Intents.Transition(ctx, intent.ID, models.IntentPending, models.IntentFailed, reason); err != nil {
		logger.WithCtx(ctx).Error("checkout: mark intent failed", "intent_id", intent.ID, "error", err)
	}
}
