package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
)

const namespace = "dnc"

// Registry holds the Prometheus collectors of the scrubber. It observes lookups and
// consumes driver events.
type Registry struct {
	registry *prometheus.Registry

	LookupsTotal   *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
	RecordsTotal   *prometheus.CounterVec
	SessionsTotal  *prometheus.CounterVec
	SessionActive  prometheus.Gauge
	CheckProgress  prometheus.Gauge

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with process and Go runtime collectors attached
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,

		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "lookup",
				Name:      "total",
				Help:      "Total number of source lookups",
			},
			[]string{"source", "outcome"},
		),
		LookupDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "lookup",
				Name:      "duration_seconds",
				Help:      "Source lookup latency",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
			},
			[]string{"source"},
		),
		RecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "check",
				Name:      "records_total",
				Help:      "Total number of records processed by status",
			},
			[]string{"status"},
		),
		SessionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "check",
				Name:      "sessions_total",
				Help:      "Total number of finished check sessions by final state",
			},
			[]string{"state"},
		),
		SessionActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "check",
				Name:      "session_active",
				Help:      "Whether a check session is running",
			},
		),
		CheckProgress: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "check",
				Name:      "progress_percent",
				Help:      "Progress of the current check session",
			},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "handler", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~32s
			},
			[]string{"method", "handler"},
		),
	}
}

// ObserveLookup records one source lookup
func (r *Registry) ObserveLookup(source dnc.Source, outcome dnc.LookupOutcome, duration time.Duration) {
	r.LookupsTotal.WithLabelValues(string(source), string(outcome)).Inc()
	r.LookupDuration.WithLabelValues(string(source)).Observe(duration.Seconds())
}

// Publish folds a driver event into the session collectors
func (r *Registry) Publish(_ context.Context, event dnc.Event) {
	switch event.Type {
	case dnc.EventStarted:
		r.SessionActive.Set(1)
		r.CheckProgress.Set(0)
	case dnc.EventProgress:
		if event.Status != "" {
			r.RecordsTotal.WithLabelValues(string(event.Status)).Inc()
		}
		r.CheckProgress.Set(event.Progress)
	case dnc.EventCompleted:
		r.finish(dnc.SessionCompleted, event)
	case dnc.EventCancelled:
		r.finish(dnc.SessionCancelled, event)
	}
}

func (r *Registry) finish(state dnc.SessionState, event dnc.Event) {
	r.SessionsTotal.WithLabelValues(string(state)).Inc()
	r.SessionActive.Set(0)
	r.CheckProgress.Set(event.Progress)
}

// ObserveHTTP records one served request
func (r *Registry) ObserveHTTP(method, handler string, status int, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, handler, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, handler).Observe(duration.Seconds())
}

// Handler exposes the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// HubStats is the view of the progress hub exported as metrics
type HubStats interface {
	ClientCount() int
	Dropped() int64
}

// RegisterProgressHub exports subscriber and dropped event counts of a progress hub
func (r *Registry) RegisterProgressHub(stats HubStats) error {
	clients := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "clients",
			Help:      "Number of connected progress subscribers",
		},
		func() float64 { return float64(stats.ClientCount()) },
	)
	dropped := prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "dropped_events_total",
			Help:      "Progress events discarded because the broadcast queue was full",
		},
		func() float64 { return float64(stats.Dropped()) },
	)

	if err := r.registry.Register(clients); err != nil {
		return err
	}
	return r.registry.Register(dropped)
}
