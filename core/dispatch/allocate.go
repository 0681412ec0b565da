package dispatch

import (
	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/model"
)

// clamp bounds v to [lo, hi]. With lo > hi the result is unspecified.
func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

// ComputeNecessaryProduction walks merit-ordered plants once and assigns each
// of them the production needed to match the load within its [Pmin, Pmax]
// range. Plants after the point where the load is met stay idle.
//
// When the current plant cannot cover the remaining load on its own but
// starting the next plant at its Pmin would overshoot, the current plant is
// under-used to leave room for that minimum. Only the next plant is looked
// at. The first plant started is always run at least at its Pmin, so the
// remaining load can end up negative.
func ComputeNecessaryProduction(plants []model.Powerplant, load model.Load) model.ProductionResult {
	res := model.ProductionResult{
		Productions:   make([]model.PowerplantProduction, 0, len(plants)),
		RemainingLoad: load,
	}
	for i, p := range plants {
		var next model.Powerplant
		if i+1 < len(plants) {
			next = plants[i+1]
		}
		production := productionFor(p, next, res.RemainingLoad)
		res.Productions = append(res.Productions, model.PowerplantProduction{
			Name:       p.Attrs().Name,
			Production: production,
		})
		res.RemainingLoad = res.RemainingLoad.Sub(production)
	}
	return res
}

func productionFor(current, next model.Powerplant, remaining model.Load) decimal.Decimal {
	if remaining.Satisfied() {
		return decimal.Zero
	}
	cur := current.Attrs()
	proposed := clamp(remaining.MW, cur.Pmin, cur.Pmax)

	if remaining.MW.GreaterThanOrEqual(cur.Pmax) && next != nil {
		nextPmin := next.Attrs().Pmin
		if nextPmin.Add(proposed).GreaterThan(remaining.MW) {
			return clamp(remaining.MW.Sub(nextPmin), cur.Pmin, cur.Pmax)
		}
	}
	return proposed
}
