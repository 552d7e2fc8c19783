package controllers

import (
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/pkg/ctx"
)

type CartController struct {
	cart     *services.CartService
	wishlist *services.WishlistService
}

func NewCartController(cart *services.CartService, wishlist *services.WishlistService) *CartController {
	return &CartController{cart: cart, wishlist: wishlist}
}

type productRef struct {
	ProductID uint `json:"product_id" validate:"required"`
}

type quantityInput struct {
	Quantity int `json:"quantity"`
}

// Show GET /api/cart
func (cc *CartController) Show(c *ctx.Context) {
	cart, err := cc.cart.Items(c.Context(), c.Session())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(cart)
}

// Add POST /api/cart
func (cc *CartController) Add(c *ctx.Context) {
	var in productRef
	if !c.BindJSON(&in) {
		return
	}
	cart, err := cc.cart.Add(c.Context(), c.Session(), in.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message("Added to cart", cart)
}

// Update PATCH /api/cart/{id}. A quantity below 1 removes the line.
func (cc *CartController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in quantityInput
	if !c.BindJSON(&in) {
		return
	}
	cart, err := cc.cart.UpdateQuantity(c.Context(), c.Session(), id, in.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(cart)
}

// Remove DELETE /api/cart/{id}
func (cc *CartController) Remove(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	cart, err := cc.cart.Remove(c.Context(), c.Session(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message("Removed from cart", cart)
}

// Clear DELETE /api/cart
func (cc *CartController) Clear(c *ctx.Context) {
	if err := cc.cart.Clear(c.Context(), c.Session()); err != nil {
		fail(c, err)
		return
	}
	c.Message("Cart cleared", nil)
}

// Wishlist GET /api/wishlist
func (cc *CartController) Wishlist(c *ctx.Context) {
	items, err := cc.wishlist.Items(c.Context(), c.Session())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(items)
}

// Save POST /api/wishlist. Saving twice answers 200 "Already in wishlist".
func (cc *CartController) Save(c *ctx.Context) {
	var in productRef
	if !c.BindJSON(&in) {
		return
	}
	if err := cc.wishlist.Add(c.Context(), c.Session(), in.ProductID); err != nil {
		fail(c, err)
		return
	}
	c.Created(map[string]uint{"product_id": in.ProductID})
}

// Unsave DELETE /api/wishlist/{productID}
func (cc *CartController) Unsave(c *ctx.Context) {
	id, ok := c.ParamUint("productID")
	if !ok {
		return
	}
	if err := cc.wishlist.Remove(c.Context(), c.Session(), id); err != nil {
		fail(c, err)
		return
	}
	c.Message("Removed from wishlist", nil)
}
