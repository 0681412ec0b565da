package metrics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Setpoint is one plant's share of a plan, in merit order.
type Setpoint struct {
	Plant      string
	Type       string
	Rank       int
	SetpointMW decimal.Decimal
	PmaxMW     decimal.Decimal
}

// FuelValue is one market input of a plan: a price in euros per MWh for gas
// and kerosine, a percentage for wind.
type FuelValue struct {
	Fuel  string
	Value decimal.Decimal
}

// PlanEvent summarises a computed production plan.
type PlanEvent struct {
	PlanID          string
	Time            time.Time
	LoadMW          decimal.Decimal
	RemainingLoadMW decimal.Decimal
	Fuels           []FuelValue
	Setpoints       []Setpoint
	Duration        time.Duration
}

// MetricsSink records production plans for observability purposes.
type MetricsSink interface {
	RecordProductionPlan(ev PlanEvent) error
}

// RejectionEvent describes a request refused before computation.
type RejectionEvent struct {
	Reason string
	Time   time.Time
}

// RejectionRecorder records rejected plan requests.
type RejectionRecorder interface {
	RecordRejection(ev RejectionEvent) error
}

// CacheRecorder records response cache lookups.
type CacheRecorder interface {
	RecordCacheLookup(hit bool) error
}

// PublishEvent is the outcome of delivering one set-point.
type PublishEvent struct {
	PlanID   string
	Plant    string
	Attempts int
	Success  bool
	Time     time.Time
}

// PublishRecorder records set-point delivery outcomes.
type PublishRecorder interface {
	RecordSetpointPublish(ev PublishEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordProductionPlan(PlanEvent) error     { return nil }
func (NopSink) RecordRejection(RejectionEvent) error     { return nil }
func (NopSink) RecordCacheLookup(bool) error             { return nil }
func (NopSink) RecordSetpointPublish(PublishEvent) error { return nil }
