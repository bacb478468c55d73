package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmarquina/shoplink-backend/api/controllers"
	webhookcontrollers "github.com/dmarquina/shoplink-backend/api/controllers/webhooks"
	"github.com/dmarquina/shoplink-backend/api/middleware"
	stripewebhook "github.com/dmarquina/shoplink-backend/internal/webhooks/stripe"
	"github.com/dmarquina/shoplink-backend/pkg/config"
	"github.com/dmarquina/shoplink-backend/pkg/db"
	"github.com/dmarquina/shoplink-backend/pkg/logger"
	"github.com/dmarquina/shoplink-backend/pkg/redis"
	"github.com/dmarquina/shoplink-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	stripeClient *stripe.Client,
	stripeWebhookService webhookcontrollers.StripeWebhookService,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
