package dispatch

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/model"
)

// meritClass is the primary sort key: renewables always run first.
type meritClass int

const (
	classRenewable meritClass = iota
	classThermal
)

type meritKey struct {
	class      meritClass
	cost       decimal.Decimal
	efficiency decimal.Decimal
}

type rankedPlant struct {
	plant model.Powerplant
	key   meritKey
}

var one = decimal.NewFromInt(1)

// thermalCost approximates the marginal cost per MWh of output.
func thermalCost(efficiency, price decimal.Decimal) decimal.Decimal {
	return one.Sub(efficiency).Mul(price)
}

func meritKeyOf(p model.Powerplant, gas model.Gas, kerosine model.Kerosine) meritKey {
	return model.MatchPowerplant(p,
		func(g model.GasFired) meritKey {
			return meritKey{class: classThermal, cost: thermalCost(g.Efficiency, gas.EurosPerMWh), efficiency: g.Efficiency}
		},
		func(t model.TurboJet) meritKey {
			return meritKey{class: classThermal, cost: thermalCost(t.Efficiency, kerosine.EurosPerMWh), efficiency: t.Efficiency}
		},
		func(w model.WindTurbine) meritKey {
			return meritKey{class: classRenewable, efficiency: w.Efficiency}
		},
	)
}

// compareMerit orders by class, then ascending cost, then descending
// efficiency.
func compareMerit(a, b meritKey) int {
	if c := cmp.Compare(a.class, b.class); c != 0 {
		return c
	}
	if c := a.cost.Cmp(b.cost); c != 0 {
		return c
	}
	return b.efficiency.Cmp(a.efficiency)
}

// SortByMeritOrder returns a new list ordered from the cheapest plant to the
// most expensive one. Wind turbines rank ahead of every thermal plant whatever
// the fuel prices. Gas-fired and turbojet plants are compared on
// (1 - efficiency) * fuel price, with the more efficient plant first on ties.
// Plants with identical keys keep their input order.
func SortByMeritOrder(plants []model.Powerplant, gas model.Gas, kerosine model.Kerosine) []model.Powerplant {
	ranked := make([]rankedPlant, len(plants))
	for i, p := range plants {
		ranked[i] = rankedPlant{plant: p, key: meritKeyOf(p, gas, kerosine)}
	}
	slices.SortStableFunc(ranked, func(a, b rankedPlant) int {
		return compareMerit(a.key, b.key)
	})
	out := make([]model.Powerplant, len(ranked))
	for i, r := range ranked {
		out[i] = r.plant
	}
	return out
}
