// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics defines the Prometheus instruments exported on /metrics.

Instruments are owned by a [Registry] rather than package globals so that tests
can build isolated registries. A nil [*Registry] is valid and records nothing.
*/
package metrics

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
)

// Outcome labels for authentication flows.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Registry groups every LifeQuest instrument.
type Registry struct {
	gatherer prometheus.Gatherer

	authEvents   *prometheus.CounterVec
	authDuration *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	sessionsReap prometheus.Counter
}

// New creates the instruments and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWith(registry, registry)
}

// NewWith registers the instruments on an existing registerer.
func NewWith(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Registry {
	metrics := &Registry{
		gatherer: gatherer,
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifequest_auth_events_total",
			Help: "Authentication flow executions by outcome",
		}, []string{"flow", "outcome"}),
		authDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifequest_auth_flow_duration_seconds",
			Help:    "Authentication flow duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"flow"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifequest_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifequest_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		sessionsReap: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifequest_sessions_reaped_total",
			Help: "Expired sessions removed by the background reaper",
		}),
	}

	registerer.MustRegister(
		metrics.authEvents,
		metrics.authDuration,
		metrics.httpRequests,
		metrics.httpDuration,
		metrics.sessionsReap,
	)

	return metrics
}

// Gatherer exposes the registry to promhttp.
func (metrics *Registry) Gatherer() prometheus.Gatherer {
	if metrics == nil || metrics.gatherer == nil {
		return prometheus.DefaultGatherer
	}
	return metrics.gatherer
}

// ObserveAuth records one execution of an authentication flow.
func (metrics *Registry) ObserveAuth(flow string, started time.Time, err error) {
	if metrics == nil {
		return
	}
	metrics.authEvents.WithLabelValues(flow, Outcome(err)).Inc()
	metrics.authDuration.WithLabelValues(flow).Observe(time.Since(started).Seconds())
}

// ObserveHTTP records one served request. Route is the chi pattern, never the raw path.
func (metrics *Registry) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if metrics == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	metrics.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	metrics.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// AddReapedSessions counts sessions deleted by the expiry reaper.
func (metrics *Registry) AddReapedSessions(count int64) {
	if metrics == nil || count <= 0 {
		return
	}
	metrics.sessionsReap.Add(float64(count))
}

// Outcome maps an error to a bounded label value.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var appError *apperr.AppError
	if errors.As(err, &appError) {
		return strings.ToLower(appError.Code)
	}
	return OutcomeError
}
