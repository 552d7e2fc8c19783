// Package listeners connects domain events to their side effects.
package listeners

import (
	"context"

	"github.com/shashiranjanraj/vastra/app/jobs"
	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/notifications"
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/pkg/event"
	"github.com/shashiranjanraj/vastra/pkg/logger"
	"github.com/shashiranjanraj/vastra/pkg/notification"
)

// Sender is satisfied by *notification.Notifier.
type Sender interface {
	Send(ctx context.Context, to string, n notification.Notification) error
}

type Deps struct {
	Jobs       services.Dispatcher
	Notifier   Sender
	AdminEmail string
	AppURL     string
	Feed       *services.CatalogFeed
}

// Register subscribes every listener on bus.
func Register(bus *event.Bus, d Deps) {
	bus.Listen(services.EventOrderPlaced, d.orderPlaced)
	if d.Feed != nil {
		d.Feed.Listen(bus)
	}
}

func (d Deps) orderPlaced(ctx context.Context, payload any) {
	order, ok := payload.(models.Order)
	if !ok {
		logger.WithCtx(ctx).Warn("listeners: unexpected order.placed payload")
		return
	}
	log := logger.WithCtx(ctx).With("order_number", order.OrderNumber)

	if d.Jobs != nil {
		if err := d.Jobs.Dispatch(ctx, &jobs.SendOrderConfirmation{OrderID: order.ID}); err != nil {
			log.Error("listeners: queue order confirmation", "error", err)
		}
	}
	if d.Notifier != nil {
		if err := d.Notifier.Send(ctx, d.AdminEmail, &notifications.OrderPlaced{Order: order, AppURL: d.AppURL}); err != nil {
			log.Error("listeners: notify staff", "error", err)
		}
	}
}
