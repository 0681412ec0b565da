// Package productionplan is the HTTP boundary of the planner: it decodes and
// validates production plan payloads, runs the planner and writes the plan
// back as JSON.
package productionplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/model"
	"github.com/kilianp07/powerplan/core/planner"
)

// ErrInvalidPayload wraps every decoding and validation failure.
var ErrInvalidPayload = errors.New("invalid payload")

// Payload is the body of POST /productionplan. Numbers are accepted as JSON
// numbers or strings.
type Payload struct {
	Load        *decimal.Decimal `json:"load" validate:"required"`
	Fuels       *Fuels           `json:"fuels" validate:"required"`
	Powerplants []Powerplant     `json:"powerplants" validate:"required,dive"`
}

// Fuels holds the price and availability signals. Wind is a percentage.
type Fuels struct {
	Gas      *decimal.Decimal `json:"gas(euro/MWh)" validate:"required"`
	Kerosine *decimal.Decimal `json:"kerosine(euro/MWh)" validate:"required"`
	Wind     *decimal.Decimal `json:"wind(%)" validate:"required"`
}

// Powerplant describes one plant of the payload.
type Powerplant struct {
	Name       string           `json:"name" validate:"required"`
	Type       string           `json:"type" validate:"required,oneof=gasfired turbojet windturbine"`
	Efficiency *decimal.Decimal `json:"efficiency" validate:"required"`
	Pmin       *decimal.Decimal `json:"pmin" validate:"required"`
	Pmax       *decimal.Decimal `json:"pmax" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodePayload reads a JSON payload. Unknown keys, such as co2 prices, are
// ignored.
func DecodePayload(r io.Reader) (Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return p, nil
}

// Validate reports every problem of the payload at once. Missing fields,
// unknown plant types and numbers out of the representable bounds are always
// rejected; strict mode additionally rejects
// out of range numbers and duplicate plant names.
func (p Payload) Validate(strict bool) error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		errs := make([]error, 0, len(verrs))
		for _, fe := range verrs {
			errs = append(errs, fieldError(fe))
		}
		return fmt.Errorf("%w: %w", ErrInvalidPayload, errors.Join(errs...))
	}
	if errs := p.boundErrors(); len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, errors.Join(errs...))
	}
	if !strict {
		return nil
	}
	if errs := p.rangeErrors(); len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, errors.Join(errs...))
	}
	return nil
}

var hundred = decimal.NewFromInt(100)

// Bounds applied to every number of the payload, in both modes.
const (
	maxExponent = 12
	maxScale    = 18
)

var maxMagnitude = decimal.New(1, maxExponent)

// checkBounds reports a number with more than maxScale decimal places or an
// absolute value of maxMagnitude or more. The exponent is checked first so no
// comparison ever rescales a huge value.
func checkBounds(field string, d decimal.Decimal) error {
	exp := d.Exponent()
	if exp < -maxScale {
		return fmt.Errorf("%s: more than %d decimal places", field, maxScale)
	}
	if exp > maxExponent || !d.Abs().LessThan(maxMagnitude) {
		return fmt.Errorf("%s: magnitude must be below 1e%d", field, maxExponent)
	}
	return nil
}

func (p Payload) boundErrors() []error {
	var errs []error
	add := func(field string, d *decimal.Decimal) {
		if err := checkBounds(field, *d); err != nil {
			errs = append(errs, err)
		}
	}
	add("load", p.Load)
	add("fuels.gas(euro/MWh)", p.Fuels.Gas)
	add("fuels.kerosine(euro/MWh)", p.Fuels.Kerosine)
	add("fuels.wind(%)", p.Fuels.Wind)
	for i, pp := range p.Powerplants {
		field := fmt.Sprintf("powerplants[%d]", i)
		add(field+".efficiency", pp.Efficiency)
		add(field+".pmin", pp.Pmin)
		add(field+".pmax", pp.Pmax)
	}
	return errs
}

func (p Payload) rangeErrors() []error {
	var errs []error
	if w := *p.Fuels.Wind; w.IsNegative() || w.GreaterThan(hundred) {
		errs = append(errs, fmt.Errorf("fuels.wind(%%): %s is outside [0, 100]", w))
	}
	seen := make(map[string]int, len(p.Powerplants))
	for i, pp := range p.Powerplants {
		field := fmt.Sprintf("powerplants[%d]", i)
		if j, dup := seen[pp.Name]; dup {
			errs = append(errs, fmt.Errorf("%s.name: %q already used by powerplants[%d]", field, pp.Name, j))
		} else {
			seen[pp.Name] = i
		}
		if pp.Pmin.IsNegative() {
			errs = append(errs, fmt.Errorf("%s.pmin: %s is negative", field, pp.Pmin))
		}
		if pp.Pmin.GreaterThan(*pp.Pmax) {
			errs = append(errs, fmt.Errorf("%s: pmin %s exceeds pmax %s", field, pp.Pmin, pp.Pmax))
		}
		if pp.Efficiency.IsNegative() || pp.Efficiency.GreaterThan(decimal.NewFromInt(1)) {
			errs = append(errs, fmt.Errorf("%s.efficiency: %s is outside [0, 1]", field, pp.Efficiency))
		}
	}
	return errs
}

func fieldError(fe validator.FieldError) error {
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "oneof":
		return fmt.Errorf("%s: %w %q", field, model.ErrUnknownPowerplantType, fe.Value())
	default:
		return fmt.Errorf("%s fails %s", field, fe.Tag())
	}
}

// Request converts a validated payload into a planner request.
func (p Payload) Request(requestID string) (planner.Request, error) {
	plants := make([]model.Powerplant, 0, len(p.Powerplants))
	for i, pp := range p.Powerplants {
		kind, err := model.ParseKind(pp.Type)
		if err != nil {
			return planner.Request{}, fmt.Errorf("%w: powerplants[%d]: %w", ErrInvalidPayload, i, err)
		}
		plant, err := model.NewPowerplant(kind, model.Attributes{
			Name:       pp.Name,
			Efficiency: *pp.Efficiency,
			Pmin:       *pp.Pmin,
			Pmax:       *pp.Pmax,
		})
		if err != nil {
			return planner.Request{}, fmt.Errorf("%w: powerplants[%d]: %w", ErrInvalidPayload, i, err)
		}
		plants = append(plants, plant)
	}
	return planner.Request{
		RequestID: requestID,
		Load:      model.NewLoad(*p.Load),
		Fuels: model.Fuels{
			Gas:      model.Gas{EurosPerMWh: *p.Fuels.Gas},
			Kerosine: model.Kerosine{EurosPerMWh: *p.Fuels.Kerosine},
			Wind:     model.WindFromPercentage(*p.Fuels.Wind),
		},
		Plants: plants,
	}, nil
}

// Production is one entry of the response, in merit order.
type Production struct {
	Name string          `json:"name"`
	P    decimal.Decimal `json:"p"`
}

// MarshalJSON writes p as a JSON number so no precision is lost to floats.
func (p Production) MarshalJSON() ([]byte, error) {
	name, err := json.Marshal(p.Name)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, `{"name":%s,"p":%s}`, name, p.P.String()), nil
}

// NewResponse maps a production result to the response body.
func NewResponse(res model.ProductionResult) []Production {
	out := make([]Production, len(res.Productions))
	for i, pp := range res.Productions {
		out[i] = Production{Name: pp.Name, P: pp.Production}
	}
	return out
}
