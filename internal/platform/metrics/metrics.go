package metrics

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stayloop/service-booking/internal/domain/sequence"
)

// Metrics owns the service's Prometheus registry and collectors.
type Metrics struct {
	reg *prometheus.Registry

	EventsPublished *prometheus.CounterVec
	PublishFailures *prometheus.CounterVec
	EventsConsumed  *prometheus.CounterVec
	HandlerFailures *prometheus.CounterVec
	StatusApplied   *prometheus.CounterVec
	AcceptConflicts prometheus.Counter
	SequenceIssued  *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_events_published_total",
			Help: "Messages acknowledged by the booking event channel.",
		}, []string{"topic"}),
		PublishFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_events_publish_failures_total",
			Help: "Publish attempts the booking event channel rejected.",
		}, []string{"topic"}),
		EventsConsumed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_events_consumed_total",
			Help: "Messages dispatched to subscribed handlers.",
		}, []string{"topic"}),
		HandlerFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_event_handler_failures_total",
			Help: "Handler invocations that returned an error or panicked.",
		}, []string{"topic"}),
		StatusApplied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_status_apply_total",
			Help: "Status changes applied by the status consumer, by outcome.",
		}, []string{"status", "result"}),
		AcceptConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "booking_accept_conflicts_total",
			Help: "Accept requests rejected because of an overlapping accepted booking.",
		}),
		SequenceIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sequence_ids_issued_total",
			Help: "IDs issued by the sequence allocator.",
		}, []string{"counter"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))
}

// RegisterRoutes mounts GET /metrics.
func (m *Metrics) RegisterRoutes(r *gin.Engine) {
	r.GET("/metrics", m.Handler())
}

// CountingAllocator counts every ID issued by the wrapped allocator.
type CountingAllocator struct {
	next    sequence.Allocator
	metrics *Metrics
}

// InstrumentAllocator wraps next so issued IDs show up in sequence_ids_issued_total.
func (m *Metrics) InstrumentAllocator(next sequence.Allocator) *CountingAllocator {
	return &CountingAllocator{next: next, metrics: m}
}

// Next delegates to the wrapped allocator.
func (a *CountingAllocator) Next(ctx context.Context, counter sequence.Counter) (int64, error) {
	id, err := a.next.Next(ctx, counter)
	if err != nil {
		return 0, err
	}
	a.metrics.SequenceIssued.WithLabelValues(string(counter)).Inc()
	return id, nil
}
