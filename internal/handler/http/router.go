package http

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quantum-digest/internal/observability/tracing"
)

// NewRouter wires the API routes with tracing, logging and panic
// recovery. db may be nil; the health endpoint then skips its check.
func NewRouter(svc SubscriptionService, db *sql.DB, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /subscribe", SubscribeHandler(svc))
	mux.Handle("GET /unsubscribe", UnsubscribeHandler(svc))
	mux.Handle("GET /healthz", &HealthHandler{DB: db})
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	handler = tracing.Middleware(handler)
	return handler
}
