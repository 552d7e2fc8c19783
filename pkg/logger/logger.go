// Package logger provides the service-wide structured logger built on log/slog.
//
// Handlers log through WithCtx so every line carries the request id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order_number", order.OrderNumber)
//	// → time=... level=INFO msg="order placed" request_id=a1b2c3d4 order_number=VS-7K2M9QX4TA
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/shashiranjanraj/vastra/config"
)

var (
	L *slog.Logger

	mu   sync.Mutex
	base slog.Handler
)

func init() {
	base = NewHandler(os.Stdout, config.IsProduction())
	L = slog.New(base)
	slog.SetDefault(L)
}

// NewHandler returns a JSON handler for production and a text handler
// otherwise.
func NewHandler(w io.Writer, production bool) slog.Handler {
	if production {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// AttachMongo fans every record out to a MongoDB collection in addition to
// stdout. The returned function flushes and disconnects the sink.
func AttachMongo(uri, db, collection string) (func(), error) {
	sink, err := NewMongoHandler(uri, db, collection, slog.LevelInfo)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	mu.Lock()
	L = slog.New(NewMultiHandler(base, sink))
	slog.SetDefault(L)
	mu.Unlock()

	return func() {
		mu.Lock()
		L = slog.New(base)
		slog.SetDefault(L)
		mu.Unlock()
		sink.Close()
	}, nil
}

type ctxKey struct{}

// WithCtx returns the per-request logger stored by the Logger middleware,
// or the base logger when there is none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return L
}

// InjectLogger stores a request-scoped logger into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
