package models

import "time"

// User is a customer or admin profile.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	FirstName string    `gorm:"size:100" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
	Phone     string    `gorm:"size:32" json:"phone"`
	AvatarURL string    `gorm:"size:1024" json:"avatar_url"`
	Role      string    `gorm:"size:32;not null;default:customer;index" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name, falling back to the email.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Email
}

// CartItem is one product line in a user's cart. Name, brand, price and
// image are captured when the product is added.
type CartItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID   uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	ProductName string    `gorm:"size:255" json:"product_name"`
	BrandName   string    `gorm:"size:255" json:"brand_name"`
	Price       float64   `gorm:"not null" json:"price"`
	ImageURL    string    `gorm:"size:1024" json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LineTotal is price × quantity.
func (c CartItem) LineTotal() float64 { return c.Price * float64(c.Quantity) }

type WishlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"product_id"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
