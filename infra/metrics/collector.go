package metrics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/events"
	corelogger "github.com/kilianp07/powerplan/core/logger"
	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/core/model"
)

// Subscriber is the subscription half of an event bus.
type Subscriber interface {
	Subscribe() <-chan events.Event
	Unsubscribe(<-chan events.Event)
}

// StartEventCollector subscribes to the event bus and forwards events to sink.
// Sink errors are logged, never propagated. It stops when ctx is canceled or
// the bus is closed; the returned channel is closed at that point.
func StartEventCollector(ctx context.Context, bus Subscriber, sink coremetrics.MetricsSink, log corelogger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil && log != nil {
					log.Warnf("metrics sink: %v", err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.PlanComputed:
		return sink.RecordProductionPlan(PlanEventFromComputed(e))
	case events.PlanRejected:
		if r, ok := sink.(coremetrics.RejectionRecorder); ok {
			return r.RecordRejection(coremetrics.RejectionEvent{Reason: e.Reason, Time: stamp(e.Time)})
		}
	case events.CacheLookup:
		if r, ok := sink.(coremetrics.CacheRecorder); ok {
			return r.RecordCacheLookup(e.Hit)
		}
	case events.SetpointPublished:
		if r, ok := sink.(coremetrics.PublishRecorder); ok {
			return r.RecordSetpointPublish(coremetrics.PublishEvent{
				PlanID:   e.PlanID,
				Plant:    e.Plant,
				Attempts: e.Attempts,
				Success:  e.Err == nil,
				Time:     stamp(e.Time),
			})
		}
	}
	return nil
}

// PlanEventFromComputed flattens a computed plan into a metrics event.
func PlanEventFromComputed(e events.PlanComputed) coremetrics.PlanEvent {
	setpoints := make([]coremetrics.Setpoint, len(e.Result.Productions))
	for i, p := range e.Result.Productions {
		sp := coremetrics.Setpoint{Plant: p.Name, Rank: i + 1, SetpointMW: p.Production}
		if i < len(e.Ranked) {
			sp.Type = e.Ranked[i].Kind().String()
			sp.PmaxMW = e.Ranked[i].Attrs().Pmax
		}
		setpoints[i] = sp
	}
	return coremetrics.PlanEvent{
		PlanID:          e.PlanID,
		Time:            stamp(e.Time),
		LoadMW:          e.Load.MW,
		RemainingLoadMW: e.Result.RemainingLoad.MW,
		Fuels:           fuelValues(e.Fuels),
		Setpoints:       setpoints,
		Duration:        e.Duration,
	}
}

func fuelValues(f model.Fuels) []coremetrics.FuelValue {
	all := f.All()
	out := make([]coremetrics.FuelValue, len(all))
	for i, fuel := range all {
		value := model.MatchFuel(fuel,
			func(g model.Gas) decimal.Decimal { return g.EurosPerMWh },
			func(k model.Kerosine) decimal.Decimal { return k.EurosPerMWh },
			func(w model.Wind) decimal.Decimal { return w.AverageWind.Shift(2) },
		)
		out[i] = coremetrics.FuelValue{Fuel: fuel.Label(), Value: value}
	}
	return out
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
