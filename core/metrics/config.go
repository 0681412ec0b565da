package metrics

import "github.com/kilianp07/powerplan/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddress serves /metrics when non-empty.
	PrometheusAddress string `json:"prometheus_address"`
}
