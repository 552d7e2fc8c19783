package listeners

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vastra/app/jobs"
	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/notifications"
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/pkg/event"
	"github.com/shashiranjanraj/vastra/pkg/notification"
	"github.com/shashiranjanraj/vastra/pkg/queue"
)

type dispatcher struct{ jobs []queue.Job }

func (d *dispatcher) Dispatch(_ context.Context, j queue.Job) error {
	d.jobs = append(d.jobs, j)
	return nil
}

type sender struct {
	to   string
	sent []notification.Notification
}

func (s *sender) Send(_ context.Context, to string, n notification.Notification) error {
	s.to = to
	s.sent = append(s.sent, n)
	return nil
}

func TestOrderPlacedQueuesEmailAndNotifiesStaff(t *testing.T) {
	bus := event.NewBus()
	d := &dispatcher{}
	s := &sender{}
	Register(bus, Deps{Jobs: d, Notifier: s, AdminEmail: "ops@vastra.in", AppURL: "https://vastra.in"})

	bus.Fire(context.Background(), services.EventOrderPlaced, models.Order{ID: 42, OrderNumber: "VS-ABCDEFGH23"})

	require.Len(t, d.jobs, 1)
	job, ok := d.jobs[0].(*jobs.SendOrderConfirmation)
	require.True(t, ok)
	assert.Equal(t, uint(42), job.OrderID)

	require.Len(t, s.sent, 1)
	assert.Equal(t, "ops@vastra.in", s.to)
	n, ok := s.sent[0].(*notifications.OrderPlaced)
	require.True(t, ok)
	assert.Equal(t, "VS-ABCDEFGH23", n.Order.OrderNumber)
}

func TestOrderPlacedIgnoresForeignPayload(t *testing.T) {
	bus := event.NewBus()
	d := &dispatcher{}
	Register(bus, Deps{Jobs: d})

	bus.Fire(context.Background(), services.EventOrderPlaced, "not an order")
	assert.Empty(t, d.jobs)
}
