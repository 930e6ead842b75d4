package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"storefront/app/controller"
	"storefront/logging"
	"storefront/metrics"
)

type Controllers struct {
	Category *controller.CategoryController
	Item     *controller.ItemController
	Cart     *controller.CartController
	Order    *controller.OrderController
}

// Options carries the cross-cutting pieces of the router
type Options struct {
	AdminToken string
	Metrics    *metrics.Metrics
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// requestLogger logs one line per request
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Sugar.Debugf("%s %s -> %d (%s, req=%s)",
			r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}

// SetupRoutes builds the HTTP handler
func SetupRoutes(c *Controllers, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Get("/ping", pingHandler)

	// Public catalog
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", c.Category.ListCategories)
		r.Get("/search", c.Category.SearchCategories)
		r.Get("/{id}", c.Category.GetCategory)
	})
	r.Route("/api/items", func(r chi.Router) {
		r.Get("/", c.Item.ListItems)
		r.Get("/search", c.Item.SearchItems)
		r.Get("/slug/{slug}", c.Item.GetItemBySlug)
		r.Get("/{id}", c.Item.GetItem)
		r.Get("/{id}/image", c.Item.GetItemImage)
		r.Post("/{id}/quote", c.Item.Quote)
	})

	// Cart and orders of the caller
	r.Group(func(r chi.Router) {
		r.Use(controller.RequireUser)

		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", c.Cart.GetCart)
			r.Delete("/", c.Cart.ClearCart)
			r.Get("/summary", c.Cart.GetSummary)
			r.Post("/items", c.Cart.AddItem)
			r.Patch("/items/{id}", c.Cart.UpdateItem)
			r.Delete("/items/{id}", c.Cart.RemoveItem)
		})

		r.Route("/api/orders", func(r chi.Router) {
			r.Post("/", c.Order.Checkout)
			r.Get("/", c.Order.ListOrders)
			r.Get("/{id}", c.Order.GetOrder)
			r.Get("/{id}/invoice", c.Order.RenderInvoice)
			r.Get("/{id}/invoice.pdf", c.Order.DownloadInvoice)
		})
	})

	// Catalog administration
	r.Route("/admin", func(r chi.Router) {
		r.Use(controller.RequireAdmin(opts.AdminToken))

		r.Post("/categories", c.Category.CreateCategory)
		r.Put("/categories/{id}", c.Category.UpdateCategory)
		r.Delete("/categories/{id}", c.Category.DeleteCategory)

		r.Post("/items", c.Item.CreateItem)
		r.Get("/items/latest", c.Item.LatestItem)
		r.Put("/items/{id}", c.Item.UpdateItem)
		r.Delete("/items/{id}", c.Item.DeleteItem)
		r.Post("/items/{id}/image", c.Item.UploadItemImage)
	})

	return r
}
