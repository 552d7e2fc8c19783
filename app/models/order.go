package models

import "time"

// Payment intent states.
const (
	IntentPending   = "pending"
	IntentPaid      = "paid"
	IntentCancelled = "cancelled"
	IntentFailed    = "failed"
	IntentExpired   = "expired"
)

// Fulfillment states.
const (
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// OrderStatuses lists the fulfillment states an admin may set.
var OrderStatuses = []string{OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}

// Address is the shipping address snapshot stored with intents and orders.
type Address struct {
	FullName string `json:"full_name" validate:"required,max=120"`
	Phone    string `json:"phone"     validate:"required,phone"`
	Email    string `json:"email"     validate:"nullable,email"`
	Address  string `json:"address"   validate:"required,max=500"`
	City     string `json:"city"      validate:"required,max=100"`
	State    string `json:"state"     validate:"required,max=100"`
	Pincode  string `json:"pincode"   validate:"required,digits=6"`
}

// IntentLine is one cart line frozen into a payment intent.
type IntentLine struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// PaymentIntent records a gateway order between creation and confirmation.
type PaymentIntent struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	GatewayOrderID   string       `gorm:"size:128;not null;uniqueIndex" json:"gateway_order_id"`
	OrderNumber      string       `gorm:"size:32;not null;uniqueIndex" json:"order_number"`
	UserID           uint         `gorm:"not null;index" json:"user_id"`
	Subtotal         float64      `gorm:"not null" json:"subtotal"`
	ShippingCost     float64      `gorm:"not null" json:"shipping_cost"`
	Total            float64      `gorm:"not null" json:"total"`
	AmountMinor      int64        `gorm:"not null" json:"amount_minor"`
	Currency         string       `gorm:"size:8;not null" json:"currency"`
	ShippingMethodID uint         `json:"shipping_method_id"`
	ShippingAddress  Address      `gorm:"serializer:json" json:"shipping_address"`
	Lines            []IntentLine `gorm:"serializer:json" json:"lines"`
	Status           string       `gorm:"size:16;not null;default:pending;index" json:"status"`
	FailureReason    string       `gorm:"size:255" json:"failure_reason,omitempty"`
	ExpiresAt        time.Time    `gorm:"index" json:"expires_at"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

type Order struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	OrderNumber      string    `gorm:"size:32;not null;uniqueIndex" json:"order_number"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	User             *User     `json:"user,omitempty"`
	Subtotal         float64   `gorm:"not null" json:"subtotal"`
	ShippingCost     float64   `gorm:"not null" json:"shipping_cost"`
	Total            float64   `gorm:"not null" json:"total"`
	PaymentStatus    string    `gorm:"size:16;not null;index" json:"payment_status"`
	PaymentMethod    string    `gorm:"size:32" json:"payment_method"`
	PaymentID        string    `gorm:"size:128" json:"payment_id"`
	GatewayOrderID   string    `gorm:"size:128;index" json:"gateway_order_id"`
	Status           string    `gorm:"size:16;not null;default:processing;index" json:"status"`
	TrackingNumber   string    `gorm:"size:128" json:"tracking_number,omitempty"`
	ShippingMethodID uint      `json:"shipping_method_id"`
	ShippingAddress  Address   `gorm:"serializer:json" json:"shipping_address"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Items []OrderItem `json:"items,omitempty"`
}

// OrderItem snapshots the product at purchase time.
type OrderItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     uint    `gorm:"not null;index" json:"order_id"`
	ProductID   uint    `gorm:"not null;index" json:"product_id"`
	ProductName string  `gorm:"size:255;not null" json:"product_name"`
	Price       float64 `gorm:"not null" json:"price"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	TotalPrice  float64 `gorm:"not null" json:"total_price"`
}

// All lists every model in migration order.
func All() []any {
	return []any{
		&User{}, &Brand{}, &Category{}, &Product{}, &Collection{}, &CollectionProduct{},
		&Review{}, &ShippingMethod{}, &CartItem{}, &WishlistItem{},
		&PaymentIntent{}, &Order{}, &OrderItem{},
	}
}
