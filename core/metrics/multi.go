package metrics

import "errors"

// MultiSink fans events out to multiple sinks. Every sink is called even when
// an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordProductionPlan forwards the plan to all sinks.
func (m *MultiSink) RecordProductionPlan(ev PlanEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordProductionPlan(ev))
	}
	return errors.Join(errs...)
}

// RecordRejection forwards rejections to the sinks that support them.
func (m *MultiSink) RecordRejection(ev RejectionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(RejectionRecorder); ok {
			errs = append(errs, r.RecordRejection(ev))
		}
	}
	return errors.Join(errs...)
}

// RecordCacheLookup forwards cache lookups to the sinks that support them.
func (m *MultiSink) RecordCacheLookup(hit bool) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(CacheRecorder); ok {
			errs = append(errs, r.RecordCacheLookup(hit))
		}
	}
	return errors.Join(errs...)
}

// RecordSetpointPublish forwards publish outcomes to the sinks that support
// them.
func (m *MultiSink) RecordSetpointPublish(ev PublishEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(PublishRecorder); ok {
			errs = append(errs, r.RecordSetpointPublish(ev))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
