// Package jobs holds the queued customer emails.
package jobs

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/pkg/mail"
	"github.com/shashiranjanraj/vastra/pkg/queue"
)

//go:embed templates
var templateFS embed.FS

var funcs = map[string]any{
	"money": func(v float64) string { return fmt.Sprintf("₹%.2f", v) },
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.txt"))
)

// OrderFinder loads an order with its items and customer.
type OrderFinder interface {
	Find(ctx context.Context, id uint) (models.Order, error)
}

// Deps is shared by every job; it is wired once at boot.
type Deps struct {
	Orders    OrderFinder
	Mailer    *mail.Mailer
	StoreName string
	AppURL    string
	// ReplyTo routes customer replies to support; empty leaves the header off.
	ReplyTo string
}

// Register makes the email jobs decodable by q.
func Register(q *queue.Manager, d *Deps) {
	q.Register(func() queue.Job { return &SendOrderConfirmation{deps: d} })
	q.Register(func() queue.Job { return &SendShippingNotice{deps: d} })
	q.Register(func() queue.Job { return &SendStatusUpdate{deps: d} })
}

// Bind attaches deps to a job built outside the queue (tests, sync sends).
func Bind[T interface{ bind(*Deps) }](job T, d *Deps) T {
	job.bind(d)
	return job
}

type view struct {
	Store    string
	Order    models.Order
	Customer string
	TrackURL string
	Status   string
}

func (d *Deps) send(ctx context.Context, orderID uint, subject, name string, status string) error {
	if d == nil || d.Mailer == nil {
		return fmt.Errorf("jobs: %s: mailer not configured", name)
	}
	order, err := d.Orders.Find(ctx, orderID)
	if err != nil {
		return fmt.Errorf("jobs: %s: load order %d: %w", name, orderID, err)
	}

	to := order.ShippingAddress.Email
	if to == "" && order.User != nil {
		to = order.User.Email
	}
	if to == "" {
		return fmt.Errorf("jobs: %s: order %s has no email", name, order.OrderNumber)
	}

	customer := order.ShippingAddress.FullName
	if customer == "" && order.User != nil {
		customer = order.User.FullName()
	}
	v := view{
		Store:    d.StoreName,
		Order:    order,
		Customer: customer,
		TrackURL: strings.TrimRight(d.AppURL, "/") + "/orders/" + order.OrderNumber,
		Status:   status,
	}

	htmlBody, textBody, err := render(name, v)
	if err != nil {
		return err
	}
	msg := mail.NewMessage().
		To(to).
		Subject(fmt.Sprintf(subject, order.OrderNumber)).
		HTML(htmlBody).
		Text(textBody)
	if d.ReplyTo != "" {
		msg.ReplyTo(d.ReplyTo)
	}
	return d.Mailer.Send(ctx, msg)
}

func render(name string, v view) (string, string, error) {
	var h, t bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&h, name+".html", v); err != nil {
		return "", "", fmt.Errorf("jobs: render %s.html: %w", name, err)
	}
	if err := textTemplates.ExecuteTemplate(&t, name+".txt", v); err != nil {
		return "", "", fmt.Errorf("jobs: render %s.txt: %w", name, err)
	}
	return h.String(), t.String(), nil
}

// SendOrderConfirmation mails the receipt after payment.
type SendOrderConfirmation struct {
	OrderID uint `json:"order_id"`
	deps    *Deps
}

func (j *SendOrderConfirmation) bind(d *Deps) { j.deps = d }

func (j *SendOrderConfirmation) Handle(ctx context.Context) error {
	return j.deps.send(ctx, j.OrderID, "Order confirmed: %s", "order_confirmation", models.OrderProcessing)
}

// SendShippingNotice mails the tracking number once an order ships.
type SendShippingNotice struct {
	OrderID uint `json:"order_id"`
	deps    *Deps
}

func (j *SendShippingNotice) bind(d *Deps) { j.deps = d }

func (j *SendShippingNotice) Handle(ctx context.Context) error {
	return j.deps.send(ctx, j.OrderID, "Your order %s has shipped", "shipping_notice", models.OrderShipped)
}

// SendStatusUpdate mails any other fulfillment change.
type SendStatusUpdate struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
	deps    *Deps
}

func (j *SendStatusUpdate) bind(d *Deps) { j.deps = d }

func (j *SendStatusUpdate) Handle(ctx context.Context) error {
	return j.deps.send(ctx, j.OrderID, "Update on order %s", "status_update", j.Status)
}
