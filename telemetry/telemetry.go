/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector captures structured events emitted by the facade.
//
// Implementations may forward metrics to Prometheus, loggers or other
// monitoring systems. They should be inexpensive to call because hooks are
// executed inline with fetch and queue paths. Dashboard rendering and
// alerting are external concerns.
type Collector interface {
	// ObserveRequest records one logical operation: its duration and the
	// number of data-source round trips it used.
	ObserveRequest(op, entityType string, roundTrips int, d time.Duration)
	// SetQueueDepth records the current depth of an offload queue.
	SetQueueDepth(queue string, depth int)
	// IncLeaseExpired counts a work item lease that lapsed and was requeued.
	IncLeaseExpired(queue string)
	// IncDeadLettered counts a work item moved to the dead-letter state.
	IncDeadLettered(queue string)
}

type noopCollector struct{}

// Noop returns a collector that discards all events.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) ObserveRequest(string, string, int, time.Duration) {}
func (noopCollector) SetQueueDepth(string, int)                        {}
func (noopCollector) IncLeaseExpired(string)                           {}
func (noopCollector) IncDeadLettered(string)                           {}

// PrometheusCollector exposes facade events via Prometheus.
type PrometheusCollector struct {
	requestDuration *prometheus.HistogramVec
	roundTrips      *prometheus.CounterVec
	queueDepth      *prometheus.GaugeVec
	leaseExpired    *prometheus.CounterVec
	deadLettered    *prometheus.CounterVec
}

// NewPrometheusCollector registers the required metrics with the provided
// registerer. Re-registration against the same registerer reuses the
// existing collectors.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &PrometheusCollector{}

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fastpath_request_duration_seconds",
		Help:    "Duration of facade operations by operation and entity type.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "entity_type"})
	if err := registerOrReuse(reg, &requestDuration); err != nil {
		return nil, err
	}
	c.requestDuration = requestDuration

	roundTrips := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fastpath_source_round_trips_total",
		Help: "Data-source round trips issued, by operation and entity type.",
	}, []string{"op", "entity_type"})
	if err := registerOrReuse(reg, &roundTrips); err != nil {
		return nil, err
	}
	c.roundTrips = roundTrips

	queueDepth := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fastpath_offload_queue_depth",
		Help: "Pending work items per offload queue.",
	}, []string{"queue"})
	if err := registerOrReuse(reg, &queueDepth); err != nil {
		return nil, err
	}
	c.queueDepth = queueDepth

	leaseExpired := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fastpath_offload_lease_expired_total",
		Help: "Work item leases that lapsed and caused a requeue.",
	}, []string{"queue"})
	if err := registerOrReuse(reg, &leaseExpired); err != nil {
		return nil, err
	}
	c.leaseExpired = leaseExpired

	deadLettered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fastpath_offload_dead_lettered_total",
		Help: "Work items moved to the terminal dead-letter state.",
	}, []string{"queue"})
	if err := registerOrReuse(reg, &deadLettered); err != nil {
		return nil, err
	}
	c.deadLettered = deadLettered

	return c, nil
}

// registerOrReuse registers a collector, swapping in the already registered
// instance when the registerer has seen the same metric before.
func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, collector *C) error {
	if err := reg.Register(*collector); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return err
		}
		existing, ok := already.ExistingCollector.(C)
		if !ok {
			return err
		}
		*collector = existing
	}
	return nil
}

func (c *PrometheusCollector) ObserveRequest(op, entityType string, roundTrips int, d time.Duration) {
	c.requestDuration.WithLabelValues(op, entityType).Observe(d.Seconds())
	c.roundTrips.WithLabelValues(op, entityType).Add(float64(roundTrips))
}

func (c *PrometheusCollector) SetQueueDepth(queue string, depth int) {
	c.queueDepth.WithLabelValues(queue).Set(float64(depth))
}

func (c *PrometheusCollector) IncLeaseExpired(queue string) {
	c.leaseExpired.WithLabelValues(queue).Inc()
}

func (c *PrometheusCollector) IncDeadLettered(queue string) {
	c.deadLettered.WithLabelValues(queue).Inc()
}
