// Package planner runs the merit-order pipeline for one request and fans the
// result out to observers: the event bus, the plan journal and the set-point
// publisher. None of them can change or fail a computed plan.
package planner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/journal"
	"github.com/kilianp07/powerplan/core/logger"
	"github.com/kilianp07/powerplan/core/model"
	"github.com/kilianp07/powerplan/core/setpoint"
)

// DefaultPublishTimeout bounds the delivery of one plan's set-points.
const DefaultPublishTimeout = 10 * time.Second

// Request is one production plan request, already converted to domain types.
type Request struct {
	RequestID string
	Load      model.Load
	Fuels     model.Fuels
	Plants    []model.Powerplant
}

// Outcome is a computed plan. Ranked holds the wind-adjusted plants in merit
// order and shares indices with Result.Productions.
type Outcome struct {
	PlanID   string
	Time     time.Time
	Ranked   []model.Powerplant
	Result   model.ProductionResult
	Duration time.Duration
}

// Planner is safe for concurrent use.
type Planner struct {
	logger         logger.Logger
	bus            events.Publisher
	store          journal.Store
	publisher      setpoint.Publisher
	publishTimeout time.Duration
	now            func() time.Time
	newID          func() string

	inflight sync.WaitGroup
}

// Option configures a Planner.
type Option func(*Planner)

// WithEvents sets the publisher receiving plan events.
func WithEvents(bus events.Publisher) Option {
	return func(p *Planner) {
		if bus != nil {
			p.bus = bus
		}
	}
}

// WithJournal sets the store every computed plan is appended to.
func WithJournal(store journal.Store) Option {
	return func(p *Planner) {
		if store != nil {
			p.store = store
		}
	}
}

// WithSetpointPublisher enables set-point delivery. Delivery runs in the
// background and is bounded by timeout; a non-positive timeout selects
// DefaultPublishTimeout.
func WithSetpointPublisher(pub setpoint.Publisher, timeout time.Duration) Option {
	return func(p *Planner) {
		if pub == nil {
			return
		}
		p.publisher = pub
		if timeout > 0 {
			p.publishTimeout = timeout
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// WithIDGenerator replaces the uuid plan ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(p *Planner) { p.newID = gen }
}

// New returns a Planner logging to log. Without options plans are computed
// and returned but not observed.
func New(log logger.Logger, opts ...Option) *Planner {
	p := &Planner{
		logger:         log,
		bus:            events.NopPublisher{},
		store:          journal.NopStore{},
		publishTimeout: DefaultPublishTimeout,
		now:            time.Now,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan computes the production plan for req. The only error is ctx's.
func (p *Planner) Plan(ctx context.Context, req Request) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	start := p.now()
	ranked := dispatch.RankPowerplants(req.Fuels.Gas, req.Fuels.Kerosine, req.Fuels.Wind, req.Plants)
	res := dispatch.ComputeNecessaryProduction(ranked, req.Load)
	out := Outcome{
		PlanID:   p.newID(),
		Time:     start,
		Ranked:   ranked,
		Result:   res,
		Duration: p.now().Sub(start),
	}
	p.logger.Debugw("plan computed", map[string]any{
		"plan_id":        out.PlanID,
		"request_id":     req.RequestID,
		"load_mw":        req.Load.MW.String(),
		"plants":         len(req.Plants),
		"remaining_load": res.RemainingLoad.MW.String(),
		"duration":       out.Duration.String(),
	})

	p.bus.Publish(events.PlanComputed{
		PlanID:    out.PlanID,
		RequestID: req.RequestID,
		Time:      out.Time,
		Load:      req.Load,
		Fuels:     req.Fuels,
		Ranked:    ranked,
		Result:    res,
		Duration:  out.Duration,
	})
	if err := p.store.Append(ctx, NewRecord(req, out)); err != nil {
		p.logger.Warnf("journal append for plan %s: %v", out.PlanID, err)
	}
	if p.publisher != nil {
		p.publishAsync(setpoint.FromResult(out.PlanID, out.Time, res))
	}
	return out, nil
}

// Reject reports a request refused before computation.
func (p *Planner) Reject(reason string, err error) {
	p.bus.Publish(events.PlanRejected{Reason: reason, Err: err, Time: p.now()})
}

func (p *Planner) publishAsync(plan setpoint.Plan) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), p.publishTimeout)
		defer cancel()
		deliveries, err := p.publisher.Publish(ctx, plan)
		if err != nil {
			p.logger.Warnf("publish plan %s: %v", plan.PlanID, err)
		}
		for i, d := range deliveries {
			p.bus.Publish(events.SetpointPublished{
				PlanID:     plan.PlanID,
				Plant:      d.Plant,
				SetpointMW: plan.Setpoints[i].SetpointMW,
				Attempts:   d.Attempts,
				Err:        d.Err,
				Time:       p.now(),
			})
		}
	}()
}

// Wait blocks until background set-point deliveries have finished.
func (p *Planner) Wait() {
	p.inflight.Wait()
}

// NewRecord builds the journal entry of a computed plan.
func NewRecord(req Request, out Outcome) journal.Record {
	rec := journal.Record{
		ID:            out.PlanID,
		Timestamp:     out.Time,
		RequestID:     req.RequestID,
		Load:          req.Load.MW,
		Gas:           req.Fuels.Gas.EurosPerMWh,
		Kerosine:      req.Fuels.Kerosine.EurosPerMWh,
		WindPercent:   req.Fuels.Wind.AverageWind.Shift(2),
		Plants:        make([]journal.PlantRecord, len(req.Plants)),
		Productions:   make([]journal.ProductionRecord, len(out.Result.Productions)),
		RemainingLoad: out.Result.RemainingLoad.MW,
		DurationMicro: out.Duration.Microseconds(),
	}
	for i, pp := range req.Plants {
		a := pp.Attrs()
		rec.Plants[i] = journal.PlantRecord{
			Name:       a.Name,
			Type:       pp.Kind().String(),
			Efficiency: a.Efficiency,
			Pmin:       a.Pmin,
			Pmax:       a.Pmax,
		}
	}
	for i, prod := range out.Result.Productions {
		rec.Productions[i] = journal.ProductionRecord{Name: prod.Name, P: prod.Production}
	}
	return rec
}
