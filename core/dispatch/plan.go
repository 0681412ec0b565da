// Package dispatch computes merit-order production plans. Everything in it is
// a pure function of its arguments: no I/O, no shared state, safe to call from
// any number of goroutines.
package dispatch

import "github.com/kilianp07/powerplan/core/model"

// ComputeProduction runs the whole pipeline: wind capacity adjustment, merit
// ordering and allocation. The result lists plants in merit order.
func ComputeProduction(load model.Load, gas model.Gas, kerosine model.Kerosine, wind model.Wind, plants []model.Powerplant) model.ProductionResult {
	ranked := RankPowerplants(gas, kerosine, wind, plants)
	return ComputeNecessaryProduction(ranked, load)
}

// RankPowerplants returns the wind-adjusted plants in merit order, that is
// the list ComputeProduction allocates over.
func RankPowerplants(gas model.Gas, kerosine model.Kerosine, wind model.Wind, plants []model.Powerplant) []model.Powerplant {
	return SortByMeritOrder(AdjustWindCapacity(plants, wind), gas, kerosine)
}
