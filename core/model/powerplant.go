package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnknownPowerplantType is returned when an external type tag does not map
// to one of the supported powerplant variants.
var ErrUnknownPowerplantType = errors.New("unknown powerplant type")

// Kind identifies a powerplant variant.
type Kind int

const (
	KindGasFired Kind = iota + 1
	KindTurboJet
	KindWindTurbine
)

// String returns the external type tag of the kind.
func (k Kind) String() string {
	switch k {
	case KindGasFired:
		return "gasfired"
	case KindTurboJet:
		return "turbojet"
	case KindWindTurbine:
		return "windturbine"
	default:
		return "unknown"
	}
}

// ParseKind maps an external type tag to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "gasfired":
		return KindGasFired, nil
	case "turbojet":
		return KindTurboJet, nil
	case "windturbine":
		return KindWindTurbine, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPowerplantType, s)
	}
}

// Attributes holds the values shared by every powerplant variant.
// Pmin and Pmax are expressed in MW, Efficiency as a fraction. Wind turbines
// conventionally carry an efficiency of 1.
type Attributes struct {
	Name       string
	Efficiency decimal.Decimal
	Pmin       decimal.Decimal
	Pmax       decimal.Decimal
}

// Attrs returns a copy of the attributes.
func (a Attributes) Attrs() Attributes { return a }

// Powerplant is a dispatchable unit. The set of implementations is closed:
// only GasFired, TurboJet and WindTurbine satisfy it.
type Powerplant interface {
	Kind() Kind
	Attrs() Attributes
	// WithPmax returns a copy of the plant with its maximum output replaced.
	WithPmax(pmax decimal.Decimal) Powerplant
	powerplant()
}

// GasFired is a thermal plant burning gas.
type GasFired struct{ Attributes }

// TurboJet is a thermal plant burning kerosine.
type TurboJet struct{ Attributes }

// WindTurbine produces according to the available wind.
type WindTurbine struct{ Attributes }

func (GasFired) Kind() Kind    { return KindGasFired }
func (TurboJet) Kind() Kind    { return KindTurboJet }
func (WindTurbine) Kind() Kind { return KindWindTurbine }

func (p GasFired) WithPmax(pmax decimal.Decimal) Powerplant {
	p.Pmax = pmax
	return p
}

func (p TurboJet) WithPmax(pmax decimal.Decimal) Powerplant {
	p.Pmax = pmax
	return p
}

func (p WindTurbine) WithPmax(pmax decimal.Decimal) Powerplant {
	p.Pmax = pmax
	return p
}

func (GasFired) powerplant()    {}
func (TurboJet) powerplant()    {}
func (WindTurbine) powerplant() {}

// NewPowerplant builds the variant identified by kind.
func NewPowerplant(kind Kind, attrs Attributes) (Powerplant, error) {
	switch kind {
	case KindGasFired:
		return GasFired{attrs}, nil
	case KindTurboJet:
		return TurboJet{attrs}, nil
	case KindWindTurbine:
		return WindTurbine{attrs}, nil
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrUnknownPowerplantType, kind)
	}
}

// NewGasFired is a shorthand used mostly by tests and scenarios.
func NewGasFired(name string, efficiency, pmin, pmax decimal.Decimal) GasFired {
	return GasFired{Attributes{Name: name, Efficiency: efficiency, Pmin: pmin, Pmax: pmax}}
}

// NewTurboJet is a shorthand used mostly by tests and scenarios.
func NewTurboJet(name string, efficiency, pmin, pmax decimal.Decimal) TurboJet {
	return TurboJet{Attributes{Name: name, Efficiency: efficiency, Pmin: pmin, Pmax: pmax}}
}

// NewWindTurbine is a shorthand used mostly by tests and scenarios.
func NewWindTurbine(name string, efficiency, pmin, pmax decimal.Decimal) WindTurbine {
	return WindTurbine{Attributes{Name: name, Efficiency: efficiency, Pmin: pmin, Pmax: pmax}}
}

// MatchPowerplant calls the function matching the variant of p. Callers must
// handle all three variants, so a new variant breaks every consumer until it
// is handled.
func MatchPowerplant[T any](p Powerplant,
	gasFired func(GasFired) T,
	turboJet func(TurboJet) T,
	windTurbine func(WindTurbine) T,
) T {
	switch v := p.(type) {
	case GasFired:
		return gasFired(v)
	case TurboJet:
		return turboJet(v)
	case WindTurbine:
		return windTurbine(v)
	default:
		panic(fmt.Sprintf("model: unhandled powerplant variant %T", p))
	}
}
