package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"loan-referral/metrics"
)

// RouterConfig collects what NewRouter mounts. A nil Gatherer leaves
// /metrics unmounted; a nil Limiter disables rate limiting.
type RouterConfig struct {
	Loans        *LoanHandler
	Leads        *LeadHandler
	Applications *ApplicationHandler
	Limiter      *RateLimiter
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	Logger       *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	limited := func(h http.HandlerFunc) http.Handler {
		if cfg.Limiter == nil {
			return h
		}
		return RateLimitMiddleware(cfg.Limiter, cfg.Metrics, h)
	}

	mux.HandleFunc("POST /emi/schedule", cfg.Loans.Schedule)
	mux.HandleFunc("POST /emi/compare", cfg.Loans.Compare)

	mux.Handle("POST /leads", limited(cfg.Leads.Apply))

	apps := cfg.Applications
	mux.Handle("POST /applications", limited(apps.Create))
	mux.Handle("GET /applications/{id}", limited(apps.Get))
	mux.Handle("DELETE /applications/{id}", limited(apps.Discard))
	mux.Handle("POST /applications/{id}/fields", limited(apps.Fields))
	mux.Handle("POST /applications/{id}/next", limited(apps.Next))
	mux.Handle("POST /applications/{id}/previous", limited(apps.Previous))
	mux.Handle("POST /applications/{id}/jump", limited(apps.Jump))
	mux.Handle("POST /applications/{id}/submit", limited(apps.Submit))

	if cfg.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	return Instrument(cfg.Metrics, cfg.Logger, mux)
}
