package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gavelworks/auctiondesk/api/controllers"
	"github.com/gavelworks/auctiondesk/api/middleware"
	"github.com/gavelworks/auctiondesk/internal/bids"
	"github.com/gavelworks/auctiondesk/internal/catalog"
	"github.com/gavelworks/auctiondesk/internal/inventory"
	"github.com/gavelworks/auctiondesk/pkg/logger"
	"github.com/gavelworks/auctiondesk/pkg/metrics"
	pkgredis "github.com/gavelworks/auctiondesk/pkg/redis"
)

// Deps carries everything the router needs. Optional entries (redis,
// metrics registry) may be nil; the routes degrade gracefully without them.
type Deps struct {
	Logger    *logger.Logger
	Catalog   catalog.Service
	Inventory inventory.Service
	Bids      bids.Service
	Flow      *metrics.BidFlowMetrics
	Redis     pkgredis.IdempotencyStore
	Pingers   map[string]controllers.Pinger
	Registry  *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.Logger, deps.Pingers))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/lookup", controllers.Lookup(deps.Catalog, deps.Flow, deps.Logger))
		r.Get("/auctions/{auctionID}/items", controllers.ListAuctionItems(deps.Bids, deps.Logger))
		r.Get("/auctions/{auctionID}/items/{itemID}/inventory", controllers.CheckInventory(deps.Inventory, deps.Flow, deps.Logger))

		r.Group(func(r chi.Router) {
			if deps.Redis != nil {
				r.Use(middleware.Idempotency(deps.Redis, deps.Logger))
			}
			r.Post("/bids", controllers.SaveBid(deps.Bids, deps.Flow, deps.Logger))
			r.Patch("/bids/{bidID}", controllers.UpdateBid(deps.Bids, deps.Flow, deps.Logger))
			r.Delete("/bids/{bidID}", controllers.DeleteBid(deps.Bids, deps.Flow, deps.Logger))
		})
	})

	return r
}
