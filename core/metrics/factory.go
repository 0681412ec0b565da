package metrics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kilianp07/powerplan/core/factory"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// RegisteredSinks lists the sink types available to configuration.
func RegisteredSinks() []string { return sinkRegistry.Types() }

// NewMetricsSink creates a MetricsSink from the provided configuration. On
// error, sinks already created are closed.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	sinks := make([]MetricsSink, 0, len(cfgs))
	for _, c := range cfgs {
		s, err := createSink(c)
		if err != nil {
			NewMultiSink(sinks...).Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}

func createSink(c factory.ModuleConfig) (MetricsSink, error) {
	s, err := sinkRegistry.Create(c)
	if errors.Is(err, factory.ErrUnknownType) {
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(RegisteredSinks(), ", "))
	}
	return s, err
}
