package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigyambat/BioStream/editor"
)

// Metrics holds the server's Prometheus collectors on a private registry.
// A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	sessions  prometheus.Gauge
	events    *prometheus.CounterVec
	dropped   prometheus.Counter
	autosaves *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "biostream_http_requests_total", Help: "HTTP requests by route and status"},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "biostream_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "biostream_sessions_open",
			Help: "Projects currently open in the editor",
		}),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "biostream_editor_events_total", Help: "Editor change events by kind"},
			[]string{"kind"},
		),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "biostream_stream_events_dropped_total",
			Help: "Events not delivered to a slow stream subscriber",
		}),
		autosaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "biostream_autosave_total", Help: "Autosaved projects by result"},
			[]string{"result"},
		),
	}
	registry.MustRegister(m.requests, m.duration, m.sessions, m.events, m.dropped, m.autosaves)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		route := c.Route().Path
		m.requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Metrics) sessionOpened() {
	if m != nil {
		m.sessions.Inc()
	}
}

func (m *Metrics) sessionClosed() {
	if m != nil {
		m.sessions.Dec()
	}
}

func (m *Metrics) event(kind editor.EventKind) {
	if m != nil {
		m.events.WithLabelValues(string(kind)).Inc()
	}
}

func (m *Metrics) eventDropped() {
	if m != nil {
		m.dropped.Inc()
	}
}

func (m *Metrics) autosaved(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.autosaves.WithLabelValues("ok").Inc()
	} else {
		m.autosaves.WithLabelValues("error").Inc()
	}
}
