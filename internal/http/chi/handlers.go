package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/webhook-dispatch/delivery"
	"github.com/marcelsud/webhook-dispatch/eventtypes"
	"github.com/marcelsud/webhook-dispatch/metrics"
	"github.com/marcelsud/webhook-dispatch/webhook"
)

// API groups the services behind the management routes
type API struct {
	Webhooks webhook.UseCase
	Events   delivery.EventTrigger
	Tester   delivery.WebhookTester
	Catalog  *eventtypes.Catalog

	// Stats and Metrics are optional; their routes are mounted only when set
	Stats   metrics.Reporter
	Metrics http.Handler
}

// Handlers sets up the management API routes
func Handlers(ctx context.Context, api API) *chi.Mux {
	logger := httplog.NewLogger("webhook-dispatch", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if api.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", api.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Method(http.MethodGet, "/event-types", getEventTypes(api.Catalog))

		r.Method(http.MethodPost, "/webhooks", postWebhook(api.Webhooks))
		r.Method(http.MethodGet, "/webhooks", getWebhooks(api.Webhooks))
		r.Method(http.MethodGet, "/webhooks/{id}", getWebhook(api.Webhooks))
		r.Method(http.MethodPatch, "/webhooks/{id}", patchWebhook(api.Webhooks))
		r.Method(http.MethodDelete, "/webhooks/{id}", deleteWebhook(api.Webhooks))
		r.Method(http.MethodPost, "/webhooks/{id}/test", testWebhook(api.Tester))

		r.Method(http.MethodPost, "/events", postEvent(api.Events))

		if api.Stats != nil {
			r.Method(http.MethodGet, "/stats", getStats(api.Stats))
		}
	})

	return r
}
