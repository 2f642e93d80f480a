// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	SchedulesComputed prometheus.Counter
	ScheduleCacheHits prometheus.Counter
	LeadSubmissions   *prometheus.CounterVec
	FormTransitions   *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
	RateLimited       prometheus.Counter
}

// New registers the collectors on reg. A nil reg leaves them unregistered,
// which tests use to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SchedulesComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emi_schedules_computed_total",
			Help: "Amortization schedules computed (cache misses).",
		}),
		ScheduleCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emi_schedule_cache_hits_total",
			Help: "Amortization schedules served from cache.",
		}),
		LeadSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lead_submissions_total",
			Help: "Lead submissions by source and outcome.",
		}, []string{"source", "outcome"}),
		FormTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "form_transitions_total",
			Help: "Multi-step form transitions by operation and result.",
		}, []string{"op", "result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.SchedulesComputed,
			m.ScheduleCacheHits,
			m.LeadSubmissions,
			m.FormTransitions,
			m.HTTPRequests,
			m.RateLimited,
		)
	}
	return m
}

// Nop returns unregistered collectors.
func Nop() *Metrics { return New(nil) }
