package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Fuel is a price or availability signal. Like Powerplant the set of
// implementations is closed: Gas, Kerosine and Wind.
type Fuel interface {
	// Label returns the short name used in logs and metrics.
	Label() string
	fuel()
}

// Gas is the gas price in euros per MWh.
type Gas struct {
	EurosPerMWh decimal.Decimal
}

// Kerosine is the kerosine price in euros per MWh.
type Kerosine struct {
	EurosPerMWh decimal.Decimal
}

// Wind is the average wind over the period as a fraction. With 0.25, a wind
// turbine of 4 MW nominal capacity produces 1 MW.
type Wind struct {
	AverageWind decimal.Decimal
}

func (Gas) Label() string      { return "gas" }
func (Kerosine) Label() string { return "kerosine" }
func (Wind) Label() string     { return "wind" }

func (Gas) fuel()      {}
func (Kerosine) fuel() {}
func (Wind) fuel()     {}

// WindFromPercentage converts a percentage (0-100) into a wind fraction.
func WindFromPercentage(pct decimal.Decimal) Wind {
	return Wind{AverageWind: pct.Shift(-2)}
}

// Fuels groups the three signals a production plan depends on.
type Fuels struct {
	Gas      Gas
	Kerosine Kerosine
	Wind     Wind
}

// All returns the signals in a fixed order.
func (f Fuels) All() []Fuel {
	return []Fuel{f.Gas, f.Kerosine, f.Wind}
}

// MatchFuel calls the function matching the variant of f.
func MatchFuel[T any](f Fuel,
	gas func(Gas) T,
	kerosine func(Kerosine) T,
	wind func(Wind) T,
) T {
	switch v := f.(type) {
	case Gas:
		return gas(v)
	case Kerosine:
		return kerosine(v)
	case Wind:
		return wind(v)
	default:
		panic(fmt.Sprintf("model: unhandled fuel variant %T", f))
	}
}
