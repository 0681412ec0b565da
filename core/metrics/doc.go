// Package metrics defines the sink interfaces used to observe production
// plans. A MetricsSink records every computed plan; optional recorder
// interfaces cover rejections, cache lookups and set-point publication.
// Implementations (Prometheus, InfluxDB) live in infra/metrics and register
// themselves by name so they can be selected from configuration. Several
// configured sinks are combined with a MultiSink.
package metrics
