// Package setpoint describes how a computed plan is handed to the plants.
// Delivery is best effort and never changes the plan itself.
package setpoint

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/model"
)

// ErrPublishFailed wraps the last transport error once retries are exhausted.
var ErrPublishFailed = errors.New("setpoint publish failed")

// Setpoint is the production order for one plant.
type Setpoint struct {
	PlanID     string          `json:"plan_id"`
	Plant      string          `json:"plant"`
	SetpointMW decimal.Decimal `json:"setpoint_mw"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Plan is the set of orders derived from one production plan, in merit order.
type Plan struct {
	PlanID          string          `json:"plan_id"`
	RemainingLoadMW decimal.Decimal `json:"remaining_load_mw"`
	Setpoints       []Setpoint      `json:"setpoints"`
	Timestamp       time.Time       `json:"timestamp"`
}

// FromResult builds the orders for res.
func FromResult(planID string, at time.Time, res model.ProductionResult) Plan {
	sps := make([]Setpoint, len(res.Productions))
	for i, p := range res.Productions {
		sps[i] = Setpoint{PlanID: planID, Plant: p.Name, SetpointMW: p.Production, Timestamp: at}
	}
	return Plan{PlanID: planID, RemainingLoadMW: res.RemainingLoad.MW, Setpoints: sps, Timestamp: at}
}

// Delivery is the outcome for one plant.
type Delivery struct {
	Plant    string
	Attempts int
	Err      error
}

// Publisher hands set-points to the plants. The returned deliveries follow
// the order of plan.Setpoints; the error covers failures that are not tied
// to a single plant.
type Publisher interface {
	Publish(ctx context.Context, plan Plan) ([]Delivery, error)
	Close()
}

// NopPublisher delivers nothing.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Plan) ([]Delivery, error) { return nil, nil }
func (NopPublisher) Close()                                            {}
