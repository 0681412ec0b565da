package dispatch

import "github.com/kilianp07/powerplan/core/model"

// AdjustWindCapacity returns a new list where every wind turbine's Pmax is
// scaled by the average wind. Other plants are copied unchanged and the order
// is preserved. Negative availability is not special-cased.
func AdjustWindCapacity(plants []model.Powerplant, wind model.Wind) []model.Powerplant {
	out := make([]model.Powerplant, len(plants))
	for i, p := range plants {
		out[i] = model.MatchPowerplant(p,
			func(g model.GasFired) model.Powerplant { return g },
			func(t model.TurboJet) model.Powerplant { return t },
			func(w model.WindTurbine) model.Powerplant {
				return w.WithPmax(w.Pmax.Mul(wind.AverageWind))
			},
		)
	}
	return out
}
