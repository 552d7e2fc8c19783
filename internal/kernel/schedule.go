package kernel

import (
	"context"

	"github.com/shashiranjanraj/vastra/pkg/schedule"
)

// Scheduler registers the recurring maintenance tasks.
func (k *Kernel) Scheduler() *schedule.Scheduler {
	s := schedule.New()

	s.Every(5).Minutes().Name("payments:expire").WithoutOverlapping().Run(func(ctx context.Context) error {
		_, err := k.Checkout.ExpireStale(ctx)
		return err
	})

	// Refreshes also arrive through product events; this covers edits made
	// straight in the database.
	s.Every(10).Minutes().Name("catalog:refresh").WithoutOverlapping().Run(k.Feed.Refresh)

	return s
}
