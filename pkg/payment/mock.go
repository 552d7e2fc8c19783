package payment

import (
	"context"
	"errors"
	"sync"

	nanoid "github.com/jaevor/go-nanoid"

	"github.com/shashiranjanraj/vastra/pkg/crypt"
)

// ErrUnknownOrder is returned by Mock.Pay for an order it never created.
var ErrUnknownOrder = errors.New("payment: unknown mock order")

const mockAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Mock is an in-process gateway for development and tests. Its signatures
// use the same scheme as the real gateway, so Confirm runs the same
// verification path.
type Mock struct {
	secret string
	newID  func() string

	mu     sync.Mutex
	orders map[string]Order
}

// NewMock creates a mock gateway signing with secret.
func NewMock(secret string) *Mock {
	gen, err := nanoid.CustomASCII(mockAlphabet, 14)
	if err != nil {
		panic(err) // constant alphabet and length
	}
	return &Mock{secret: secret, newID: gen, orders: map[string]Order{}}
}

func (m *Mock) Name() string  { return "mock" }
func (m *Mock) KeyID() string { return "mock" }

func (m *Mock) CreateOrder(_ context.Context, req OrderRequest) (Order, error) {
	o := Order{
		ID:          "order_mock_" + m.newID(),
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
		Status:      "created",
	}
	m.mu.Lock()
	m.orders[o.ID] = o
	m.mu.Unlock()
	return o, nil
}

// Pay simulates a successful payment and returns the signed confirmation.
func (m *Mock) Pay(orderID string) (Confirmation, error) {
	m.mu.Lock()
	o, ok := m.orders[orderID]
	if ok {
		o.Status = "paid"
		m.orders[orderID] = o
	}
	m.mu.Unlock()
	if !ok {
		return Confirmation{}, ErrUnknownOrder
	}

	paymentID := "pay_mock_" + m.newID()
	return Confirmation{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: crypt.Sign(m.secret, orderID+"|"+paymentID),
	}, nil
}

func (m *Mock) Verify(c Confirmation) error { return verify(m.secret, c) }
