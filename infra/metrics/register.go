package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// registerOrExisting registers c, or returns the collector already registered
// under the same descriptor so sinks can be created more than once per
// process.
func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
