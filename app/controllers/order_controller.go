package controllers

import (
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/pkg/ctx"
)

type OrderController struct {
	orders  *services.OrderService
	reviews *services.ReviewService
}

func NewOrderController(orders *services.OrderService, reviews *services.ReviewService) *OrderController {
	return &OrderController{orders: orders, reviews: reviews}
}

// Index GET /api/orders
func (oc *OrderController) Index(c *ctx.Context) {
	orders, err := oc.orders.ListMine(c.Context(), c.Session())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}

// Show GET /api/orders/{number}
func (oc *OrderController) Show(c *ctx.Context) {
	order, err := oc.orders.Find(c.Context(), c.Session(), c.Param("number"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(order)
}

// Reviews GET /api/products/{id}/reviews
func (oc *OrderController) Reviews(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	reviews, err := oc.reviews.List(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(reviews)
}

// Review POST /api/products/{id}/reviews. A second review by the same
// customer replaces the first.
func (oc *OrderController) Review(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.ReviewInput
	if !c.BindJSON(&in) {
		return
	}
	review, err := oc.reviews.Submit(c.Context(), c.Session(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message("Thanks for your review", review)
}
