package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/model"
)

// Event is implemented by every type in this package.
type Event interface {
	event()
}

// Publisher accepts events. *eventbus.Bus[Event] satisfies it.
type Publisher interface {
	Publish(Event)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// PlanComputed carries a finished plan with the ranked, wind-adjusted plants it
// was allocated over. Ranked and Result.Productions share indices.
type PlanComputed struct {
	PlanID    string
	RequestID string
	Time      time.Time
	Load      model.Load
	Fuels     model.Fuels
	Ranked    []model.Powerplant
	Result    model.ProductionResult
	Duration  time.Duration
}

// PlanRejected reports a request refused before computation. Reason is a short
// label such as "decode", "validation" or "rate_limit".
type PlanRejected struct {
	Reason string
	Err    error
	Time   time.Time
}

// CacheLookup reports a response cache hit or miss.
type CacheLookup struct {
	Hit bool
}

// SetpointPublished reports the delivery of one plant set-point.
type SetpointPublished struct {
	PlanID     string
	Plant      string
	SetpointMW decimal.Decimal
	Attempts   int
	Err        error
	Time       time.Time
}

func (PlanComputed) event()      {}
func (PlanRejected) event()      {}
func (CacheLookup) event()       {}
func (SetpointPublished) event() {}
