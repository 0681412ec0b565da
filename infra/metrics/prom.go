package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/powerplan/core/metrics"
)

// PromSink records production plans in Prometheus metrics.
type PromSink struct {
	plans     prometheus.Counter
	compute   prometheus.Histogram
	setpoint  *prometheus.GaugeVec
	remaining prometheus.Gauge
	rejected  *prometheus.CounterVec
	cache     *prometheus.CounterVec
	publish   *prometheus.CounterVec
}

// NewPromSink registers plan metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var (
		s   PromSink
		err error
	)
	if s.plans, err = registerOrExisting(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "powerplan_plans_total",
		Help: "Number of production plans computed",
	})); err != nil {
		return nil, err
	}
	if s.compute, err = registerOrExisting(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "powerplan_plan_compute_seconds",
		Help:    "Time spent computing a production plan",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})); err != nil {
		return nil, err
	}
	if s.setpoint, err = registerOrExisting(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "powerplan_plant_setpoint_mw",
		Help: "Production assigned to each plant by the latest plan",
	}, []string{"plant", "type"})); err != nil {
		return nil, err
	}
	if s.remaining, err = registerOrExisting(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "powerplan_remaining_load_mw",
		Help: "Load left unmatched by the latest plan (negative when over-supplied)",
	})); err != nil {
		return nil, err
	}
	if s.rejected, err = registerOrExisting(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "powerplan_plans_rejected_total",
		Help: "Plan requests refused before computation",
	}, []string{"reason"})); err != nil {
		return nil, err
	}
	if s.cache, err = registerOrExisting(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "powerplan_cache_requests_total",
		Help: "Response cache lookups",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if s.publish, err = registerOrExisting(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "powerplan_setpoint_publish_total",
		Help: "Set-point deliveries by outcome",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	return &s, nil
}

// RecordProductionPlan updates the plan counters and per-plant gauges.
func (s *PromSink) RecordProductionPlan(ev coremetrics.PlanEvent) error {
	s.plans.Inc()
	s.compute.Observe(ev.Duration.Seconds())
	s.remaining.Set(ev.RemainingLoadMW.InexactFloat64())
	for _, sp := range ev.Setpoints {
		s.setpoint.WithLabelValues(sp.Plant, sp.Type).Set(sp.SetpointMW.InexactFloat64())
	}
	return nil
}

// RecordRejection counts a refused request.
func (s *PromSink) RecordRejection(ev coremetrics.RejectionEvent) error {
	s.rejected.WithLabelValues(ev.Reason).Inc()
	return nil
}

// RecordCacheLookup counts a cache hit or miss.
func (s *PromSink) RecordCacheLookup(hit bool) error {
	s.cache.WithLabelValues(hitLabel(hit)).Inc()
	return nil
}

// RecordSetpointPublish counts a set-point delivery outcome.
func (s *PromSink) RecordSetpointPublish(ev coremetrics.PublishEvent) error {
	result := "success"
	if !ev.Success {
		result = "failure"
	}
	s.publish.WithLabelValues(result).Inc()
	return nil
}

func hitLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
