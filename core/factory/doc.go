// Package factory provides a small generic registry used to build pluggable
// components from configuration. A component is described by a type string
// and a map of raw settings; the registered factory decodes the settings into
// its own struct and returns the implementation.
//
//	reg := factory.NewRegistry[metrics.MetricsSink]()
//	_ = reg.Register("influx", func(conf map[string]any) (metrics.MetricsSink, error) {
//	    var c influxConf
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newInflux(c), nil
//	})
//	sink, err := reg.Create(factory.ModuleConfig{Type: "influx", Conf: raw})
package factory
