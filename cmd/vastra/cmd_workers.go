package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/vastra/config"
	"github.com/shashiranjanraj/vastra/internal/kernel"
)

var queueWorkersFlag int

// vastra queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer k.Close()

		if config.QueueDriver() == "memory" {
			fmt.Println("QUEUE_DRIVER is memory: this worker only sees jobs dispatched by itself. `vastra serve` runs its own workers.")
		}

		workers := queueWorkersFlag
		if workers < 1 {
			workers = config.QueueWorkers()
		}
		fmt.Printf("Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		k.Queue.Work(ctx, workers)
		fmt.Println("Queue worker stopped.")
		return nil
	},
}

// vastra schedule:run
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Run the task scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer k.Close()

		s := k.Scheduler()
		fmt.Println("Registered scheduled tasks:")
		for _, t := range s.List() {
			fmt.Println("  •", t)
		}
		fmt.Println("Scheduler started. Press Ctrl+C to stop.")
		s.Start(ctx)
		fmt.Println("Scheduler stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 0, "Number of concurrent workers (default QUEUE_WORKERS)")
}
