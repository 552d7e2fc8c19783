// Package server owns the process lifecycle of `vastra serve`: it binds the
// HTTP and gRPC ports, runs in-process workers when the queue lives in
// memory, and shuts everything down on SIGINT/SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shashiranjanraj/vastra/config"
	"github.com/shashiranjanraj/vastra/internal/kernel"
	"github.com/shashiranjanraj/vastra/pkg/grpc"
	"github.com/shashiranjanraj/vastra/pkg/logger"
)

// Options override config for one run.
type Options struct {
	Port string
}

// Start boots the kernel and serves until the process is signalled.
func Start(opts Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	k, err := kernel.Boot(ctx)
	if err != nil {
		return err
	}
	defer k.Close()

	port := opts.Port
	if port == "" {
		port = config.AppPort()
	}
	return Run(ctx, k, net.JoinHostPort("", port))
}

// Run serves k on addr until ctx is cancelled, then drains in-flight
// requests for up to 15 seconds.
func Run(ctx context.Context, k *kernel.Kernel, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	k.Start(ctx)

	var bg sync.WaitGroup
	if config.QueueDriver() == "memory" {
		// Nothing outside this process can drain an in-memory queue.
		bg.Add(2)
		go func() {
			defer bg.Done()
			k.Queue.Work(ctx, config.QueueWorkers())
		}()
		go func() {
			defer bg.Done()
			k.Scheduler().Start(ctx)
		}()
	}

	health := grpc.New(k.Check)
	if err := health.Start(net.JoinHostPort("", config.GRPCPort())); err != nil {
		logger.Warn("server: grpc health disabled", "error", err)
		health = nil
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("%s listening", config.AppName()), "addr", addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errc:
	}

	logger.Info("server: shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 15*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server: http shutdown", "error", err)
	}
	if health != nil {
		health.Stop()
	}

	cancel()
	bg.Wait()
	return serveErr
}
