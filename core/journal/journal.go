// Package journal keeps an audit trail of computed production plans. It is
// purely observational: the planner never reads it back, and a failing
// journal never fails a plan.
package journal

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// PlantRecord is a plant as it was submitted, before wind adjustment.
type PlantRecord struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Efficiency decimal.Decimal `json:"efficiency"`
	Pmin       decimal.Decimal `json:"pmin"`
	Pmax       decimal.Decimal `json:"pmax"`
}

// ProductionRecord is one plant's set-point in merit order.
type ProductionRecord struct {
	Name string          `json:"name"`
	P    decimal.Decimal `json:"p"`
}

// Record captures one production plan with its inputs.
type Record struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	RequestID     string             `json:"request_id,omitempty"`
	Load          decimal.Decimal    `json:"load"`
	Gas           decimal.Decimal    `json:"gas_euro_mwh"`
	Kerosine      decimal.Decimal    `json:"kerosine_euro_mwh"`
	WindPercent   decimal.Decimal    `json:"wind_percent"`
	Plants        []PlantRecord      `json:"plants"`
	Productions   []ProductionRecord `json:"productions"`
	RemainingLoad decimal.Decimal    `json:"remaining_load"`
	DurationMicro int64              `json:"duration_us"`
}

// Involves reports whether the named plant was part of the plan.
func (r Record) Involves(plant string) bool {
	for _, p := range r.Plants {
		if p.Name == plant {
			return true
		}
	}
	for _, p := range r.Productions {
		if p.Name == plant {
			return true
		}
	}
	return false
}

// Query defines filters for retrieving records. Zero values disable a filter.
// Limit keeps only the most recent records.
type Query struct {
	Start time.Time
	End   time.Time
	Plant string
	Limit int
}

// Match reports whether r passes the time and plant filters.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Plant != "" && !r.Involves(q.Plant) {
		return false
	}
	return true
}

// finish orders records oldest first and applies Limit.
func (q Query) finish(recs []Record) []Record {
	slices.SortStableFunc(recs, func(a, b Record) int { return a.Timestamp.Compare(b.Timestamp) })
	if q.Limit > 0 && len(recs) > q.Limit {
		recs = recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
