// Package notifications holds the staff-facing notifications.
package notifications

import (
	"fmt"
	"strings"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/pkg/mail"
	"github.com/shashiranjanraj/vastra/pkg/notification"
)

// OrderPlaced tells the shop staff a paid order came in.
type OrderPlaced struct {
	Order  models.Order
	AppURL string
}

func (n *OrderPlaced) Via() []string {
	return []string{notification.Mail, notification.Slack, notification.Broadcast}
}

func (n *OrderPlaced) adminURL() string {
	return strings.TrimRight(n.AppURL, "/") + "/admin/orders/" + fmt.Sprint(n.Order.ID)
}

func (n *OrderPlaced) ToMail() *mail.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "New order %s\n\n", n.Order.OrderNumber)
	for _, it := range n.Order.Items {
		fmt.Fprintf(&b, "%d × %s  ₹%.2f\n", it.Quantity, it.ProductName, it.TotalPrice)
	}
	fmt.Fprintf(&b, "\nTotal: ₹%.2f\nShip to: %s, %s %s\n\n%s\n",
		n.Order.Total, n.Order.ShippingAddress.FullName, n.Order.ShippingAddress.City,
		n.Order.ShippingAddress.Pincode, n.adminURL())

	return mail.NewMessage().
		Subject(fmt.Sprintf("New order %s (₹%.2f)", n.Order.OrderNumber, n.Order.Total)).
		Text(b.String())
}

func (n *OrderPlaced) ToSlack() notification.SlackMessage {
	return notification.SlackMessage{
		Text: fmt.Sprintf("New order *%s*", n.Order.OrderNumber),
		Attachments: []notification.SlackAttachment{{
			Color:  "good",
			Title:  fmt.Sprintf("₹%.2f · %d item(s)", n.Order.Total, itemCount(n.Order)),
			Text:   fmt.Sprintf("%s, %s", n.Order.ShippingAddress.FullName, n.Order.ShippingAddress.City),
			Footer: n.adminURL(),
		}},
	}
}

// Summary is what the admin dashboard receives over the websocket.
type Summary struct {
	ID          uint    `json:"id"`
	OrderNumber string  `json:"order_number"`
	Total       float64 `json:"total"`
	Items       int     `json:"items"`
	Customer    string  `json:"customer"`
}

func (n *OrderPlaced) ToBroadcast() (string, any) {
	return "order.placed", Summary{
		ID:          n.Order.ID,
		OrderNumber: n.Order.OrderNumber,
		Total:       n.Order.Total,
		Items:       itemCount(n.Order),
		Customer:    n.Order.ShippingAddress.FullName,
	}
}

func itemCount(o models.Order) int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
