// Package kernel assembles the application: connections, repositories,
// services, background machinery and the HTTP handler.
//
//	k, err := kernel.Boot(ctx)
//	defer k.Close()
//	http.ListenAndServe(":8080", k.Handler())
package kernel

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/vastra/app/controllers"
	appgraphql "github.com/shashiranjanraj/vastra/app/graphql"
	"github.com/shashiranjanraj/vastra/app/jobs"
	"github.com/shashiranjanraj/vastra/app/listeners"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/app/routes"
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/config"
	"github.com/shashiranjanraj/vastra/pkg/auth"
	"github.com/shashiranjanraj/vastra/pkg/cache"
	"github.com/shashiranjanraj/vastra/pkg/database"
	"github.com/shashiranjanraj/vastra/pkg/event"
	khttp "github.com/shashiranjanraj/vastra/pkg/http"
	gqlhttp "github.com/shashiranjanraj/vastra/pkg/graphql"
	"github.com/shashiranjanraj/vastra/pkg/logger"
	"github.com/shashiranjanraj/vastra/pkg/mail"
	"github.com/shashiranjanraj/vastra/pkg/middleware"
	"github.com/shashiranjanraj/vastra/pkg/notification"
	"github.com/shashiranjanraj/vastra/pkg/payment"
	"github.com/shashiranjanraj/vastra/pkg/queue"
	"github.com/shashiranjanraj/vastra/pkg/session"
	"github.com/shashiranjanraj/vastra/pkg/sse"
	"github.com/shashiranjanraj/vastra/pkg/storage"
	"github.com/shashiranjanraj/vastra/pkg/workerpool"
	"github.com/shashiranjanraj/vastra/pkg/ws"
)

// Deps are the outside-world handles the kernel is built on. Boot fills
// them from config; tests pass sqlite, an offline cache and in-memory
// senders.
type Deps struct {
	DB      *gorm.DB
	Cache   *cache.Cache
	Storage *storage.Manager
	Gateway payment.Gateway
	Mail    mail.Sender
	Queue   queue.Driver

	// Secret signs access and refresh tokens.
	Secret string
	// SlackURL, when set, receives new-order alerts.
	SlackURL string
}

// Kernel holds everything built at boot.
type Kernel struct {
	DB      *gorm.DB
	Cache   *cache.Cache
	Storage *storage.Manager
	Repos   *repositories.Repos
	Bus     *event.Bus
	Queue   *queue.Manager
	Mailer  *mail.Mailer
	Issuer  *auth.Issuer
	Revoked session.Revocations

	Feed     *services.CatalogFeed
	Checkout *services.CheckoutService
	Broker   *sse.Broker
	Hub      *ws.Hub

	pool     *workerpool.Pool
	handlers routes.Handlers
	closers  []func()
}

// Boot connects to everything config names and builds the kernel. Redis and
// the Mongo log sink are optional: failures are logged and the kernel runs
// without them.
func Boot(ctx context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("kernel: config: %w", err)
	}

	var closers []func()
	if uri := config.LogMongoURI(); uri != "" {
		flush, err := logger.AttachMongo(uri, config.Get("LOG_MONGO_DB", "vastra"), config.Get("LOG_MONGO_COLLECTION", "logs"))
		if err != nil {
			logger.Warn("kernel: mongo log sink disabled", "error", err)
		} else {
			closers = append(closers, flush)
		}
	}

	db, err := database.Connect(ctx)
	if err != nil {
		return nil, err
	}
	closers = append(closers, func() { _ = database.Close(db) })

	c, err := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword(), config.Get("CACHE_PREFIX", "vastra:"))
	if err != nil {
		logger.Warn("kernel: redis unavailable, running without cache", "error", err)
		c = cache.New(nil, "")
	}

	disks, err := storage.FromConfig(ctx)
	if err != nil {
		return nil, err
	}

	var driver queue.Driver
	switch config.QueueDriver() {
	case "redis":
		if !c.Available() {
			return nil, fmt.Errorf("kernel: QUEUE_DRIVER=redis but redis is unavailable")
		}
		driver = queue.NewRedisDriver(c.Client(), config.QueueName())
	default:
		driver = queue.NewMemoryDriver(1024)
	}

	gw := payment.FromConfig()
	k, err := Build(Deps{
		DB:       db,
		Cache:    c,
		Storage:  disks,
		Gateway:  gw,
		Mail:     mail.NewSMTPSender(mail.ConfigFromEnv()),
		Queue:    driver,
		Secret:   config.JWTSecret(),
		SlackURL: config.SlackWebhookURL(),
	})
	if err != nil {
		return nil, err
	}
	k.closers = append(k.closers, closers...)
	logger.Info("kernel booted",
		"db", config.DatabaseDriver(),
		"cache", c.Available(),
		"queue", config.QueueDriver(),
		"payment", gw.Name(),
	)
	return k, nil
}

// Build wires services, listeners, jobs and controllers over d.
func Build(d Deps) (*Kernel, error) {
	if d.DB == nil {
		return nil, fmt.Errorf("kernel: no database")
	}
	if d.Storage == nil {
		return nil, fmt.Errorf("kernel: no storage")
	}
	if d.Cache == nil {
		d.Cache = cache.New(nil, "")
	}
	if d.Gateway == nil {
		d.Gateway = payment.NewMock(d.Secret)
	}
	if d.Mail == nil {
		d.Mail = &mail.MemorySender{}
	}
	if d.Queue == nil {
		d.Queue = queue.NewMemoryDriver(1024)
	}

	k := &Kernel{
		DB:      d.DB,
		Cache:   d.Cache,
		Storage: d.Storage,
		Repos:   repositories.New(d.DB),
		Bus:     event.NewBus(),
		Mailer:  mail.New(mail.ConfigFromEnv(), d.Mail),
		Issuer:  auth.NewIssuer(d.Secret),
		Revoked: session.NewRevocations(d.Cache),
		Broker:  sse.NewBroker(),
		Hub:     ws.NewHub(ws.AllowOrigins(middleware.ParseOrigins(config.Get("CORS_ALLOWED_ORIGINS", "*")))),
		pool:    workerpool.New(config.GetInt("IMAGE_UPLOAD_WORKERS", 4)),
	}
	k.closers = append(k.closers, k.pool.Shutdown)

	k.Queue = queue.New(d.Queue,
		queue.WithMaxRetry(config.GetInt("QUEUE_MAX_RETRY", 3)),
		queue.WithBackoff(func(attempt int) time.Duration { return time.Duration(attempt) * 5 * time.Second }),
		queue.WithFailedJobStore(d.DB),
	)
	jobs.Register(k.Queue, &jobs.Deps{
		Orders:    k.Repos.Orders,
		Mailer:    k.Mailer,
		StoreName: config.StoreName(),
		AppURL:    config.AppURL(),
		ReplyTo:   config.MailReplyTo(),
	})

	k.Feed = services.NewCatalogFeed(
		services.RepositoryLoader(k.Repos, config.CatalogNewArrivalDays(), time.Now),
		services.WithFeedCache(d.Cache, config.CatalogCacheTTL()),
		services.WithDebounce(config.CatalogRefreshDebounce()),
		services.WithPublisher(k.publishStream),
		services.WithPublisher(k.publishLive),
	)

	k.Checkout = services.NewCheckoutService(k.Repos, d.Gateway, k.Bus, services.CheckoutConfig{
		Currency:     config.StoreCurrency(),
		MerchantName: config.StoreName(),
		IntentTTL:    config.PaymentIntentTTL(),
	})
	merch := services.NewMerchService(k.Repos, config.CatalogNewArrivalDays())
	orders := services.NewOrderService(k.Repos, k.Queue)

	listeners.Register(k.Bus, listeners.Deps{
		Jobs: k.Queue,
		Notifier: &notification.Notifier{
			Mailer:   k.Mailer,
			SlackURL: d.SlackURL,
			HTTP:     khttp.NewClient("", khttp.WithTimeout(10*time.Second)),
			Hub:      k.Hub,
		},
		AdminEmail: config.StoreAdminEmail(),
		AppURL:     config.AppURL(),
		Feed:       k.Feed,
	})

	schema, err := appgraphql.NewSchema(k.Feed, merch)
	if err != nil {
		return nil, fmt.Errorf("kernel: graphql: %w", err)
	}

	images := services.NewImageService(d.Storage.Default(), config.StorageImageBucket(), k.pool)

	k.handlers = routes.Handlers{
		Catalog:  controllers.NewCatalogController(k.Feed, merch),
		Cart:     controllers.NewCartController(services.NewCartService(k.Repos), services.NewWishlistService(k.Repos)),
		Checkout: controllers.NewCheckoutController(k.Checkout),
		Orders:   controllers.NewOrderController(orders, services.NewReviewService(k.Repos, k.Bus)),
		Auth: controllers.NewAuthController(
			services.NewAuthService(k.Repos, k.Issuer, k.Revoked),
			services.NewProfileService(k.Repos),
		),
		Admin:   controllers.NewAdminController(services.NewAdminService(k.Repos, k.Bus), orders, images),
		Stream:  k.Broker,
		Live:    k.Hub,
		GraphQL: gqlhttp.Handler(schema),

		AuthLimiter:     k.limiter("auth", config.GetInt("RATE_AUTH_PER_MINUTE", 10)),
		CheckoutLimiter: k.limiter("checkout", config.GetInt("RATE_CHECKOUT_PER_MINUTE", 20)),
	}
	return k, nil
}

// limiter shares counts across instances through Redis when it is up.
func (k *Kernel) limiter(name string, perMinute int) middleware.Limiter {
	if k.Cache.Available() {
		return middleware.NewRedisLimiter(k.Cache.Client(), "rate:"+name, perMinute, time.Minute)
	}
	return middleware.NewMemoryLimiter(perMinute, time.Minute)
}

func (k *Kernel) publishStream(event string, data any) {
	if _, err := k.Broker.Publish(event, data); err != nil {
		logger.Warn("kernel: sse publish failed", "event", event, "error", err)
	}
}

func (k *Kernel) publishLive(event string, data any) {
	if err := k.Hub.Publish(event, data); err != nil {
		logger.Warn("kernel: ws publish failed", "event", event, "error", err)
	}
}

// Start runs the websocket hub and warms the catalog feed. It returns
// immediately; everything stops when ctx is cancelled.
func (k *Kernel) Start(ctx context.Context) {
	go k.Hub.Run(ctx)
	go func() {
		if err := k.Feed.Refresh(ctx); err != nil {
			logger.Warn("kernel: initial catalog load failed", "error", err)
		}
	}()
}

// Close waits for in-flight listeners and releases connections in reverse
// order of acquisition.
func (k *Kernel) Close() {
	k.Bus.Wait()
	for i := len(k.closers) - 1; i >= 0; i-- {
		k.closers[i]()
	}
	k.closers = nil
}
