package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/app/controller"
	"storefront/app/router"
	"storefront/cache"
	"storefront/config"
	"storefront/db"
	"storefront/logging"
	"storefront/metrics"
	"storefront/repository"
	"storefront/service"
	"storefront/utils"
)

// App holds the wired storefront
type App struct {
	Config   *config.Config
	DB       *db.DB
	Cache    cache.ItemCache
	Metrics  *metrics.Metrics
	Catalog  *service.CatalogService
	Carts    *service.CartService
	Orders   *service.OrderService
	Invoices *service.InvoiceService
	Handler  http.Handler

	closers []func() error
}

// OpenDatabase connects and applies the schema
func OpenDatabase(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL (or DB_HOST, DB_USER, DB_NAME) is not set")
	}
	d, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.Migrate(ctx, d); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// newCache returns the Redis item cache, or Noop when Redis is not
// configured or not reachable.
func newCache(ctx context.Context, cfg config.RedisConfig) cache.ItemCache {
	if cfg.Addr == "" {
		logging.Sugar.Infof("Item cache disabled (REDIS_ADDR not set)")
		return cache.Noop{}
	}
	r := cache.NewRedis(cfg.Addr, cfg.Password, cfg.DB, cache.WithTTL(cfg.TTL))
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		logging.Sugar.Warnf("⚠️  Redis at %s unavailable, item cache disabled: %v", cfg.Addr, err)
		r.Close()
		return cache.Noop{}
	}
	logging.Sugar.Infof("✓ Item cache connected to %s", cfg.Addr)
	return r
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	d, err := OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg, d)
}

// New wires services and routes on an open, migrated database
func New(ctx context.Context, cfg *config.Config, d *db.DB) (*App, error) {
	a := &App{Config: cfg, DB: d, Metrics: metrics.New()}
	a.closers = append(a.closers, d.Close)

	a.Cache = newCache(ctx, cfg.Redis)
	if r, ok := a.Cache.(*cache.Redis); ok {
		a.closers = append(a.closers, r.Close)
	}

	images := service.NewImageOptimizer(cfg.ImageDir)
	if err := images.EnsureCacheDir(); err != nil {
		logging.Sugar.Warnf("⚠️  %v", err)
	}

	money := utils.NewMoney(cfg.Currency.Code, cfg.Currency.Decimals)
	a.Catalog = service.NewCatalogService(
		repository.NewCategoryRepository(d),
		repository.NewItemRepository(d),
		a.Cache,
		images,
		money,
		a.Metrics,
	)
	a.Carts = service.NewCartService(repository.NewCartRepository(d), a.Catalog)
	a.Orders = service.NewOrderService(repository.NewOrderRepository(d), a.Metrics)

	var err error
	a.Invoices, err = service.NewInvoiceService(a.Orders, money, cfg.StoreName, cfg.ChromePath)
	if err != nil {
		a.Close()
		return nil, err
	}

	controllers := &router.Controllers{
		Category: controller.NewCategoryController(a.Catalog),
		Item:     controller.NewItemController(a.Catalog),
		Cart:     controller.NewCartController(a.Carts),
		Order:    controller.NewOrderController(a.Orders, a.Invoices),
	}
	a.Handler = router.SetupRoutes(controllers, router.Options{
		AdminToken: cfg.AdminToken,
		Metrics:    a.Metrics,
	})
	return a, nil
}

// Close releases the database and cache connections
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Serve listens on addr until ctx is canceled, then shuts down gracefully
func (a *App) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Sugar.Infof("Server starting on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logging.Sugar.Infof("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
