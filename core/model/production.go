package model

import "github.com/shopspring/decimal"

// Load is a system-wide demand in MW. It may become negative while a plan is
// computed, meaning the system is over-supplied.
type Load struct {
	MW decimal.Decimal
}

// NewLoad wraps a MW value.
func NewLoad(mw decimal.Decimal) Load { return Load{MW: mw} }

// Satisfied reports whether nothing is left to produce.
func (l Load) Satisfied() bool { return !l.MW.IsPositive() }

// Sub returns the load left after producing mw.
func (l Load) Sub(mw decimal.Decimal) Load { return Load{MW: l.MW.Sub(mw)} }

// PowerplantProduction is the output assigned to one plant.
type PowerplantProduction struct {
	Name       string
	Production decimal.Decimal
}

// ProductionResult is the outcome of a dispatch: one entry per plant in merit
// order, and the load that could not be matched exactly. A positive
// RemainingLoad is unmet demand, a negative one is forced over-supply.
type ProductionResult struct {
	Productions   []PowerplantProduction
	RemainingLoad Load
}

// TotalProduction sums every plant's production.
func (r ProductionResult) TotalProduction() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.Productions {
		total = total.Add(p.Production)
	}
	return total
}

// Production returns the output assigned to the named plant.
func (r ProductionResult) Production(name string) (decimal.Decimal, bool) {
	for _, p := range r.Productions {
		if p.Name == name {
			return p.Production, true
		}
	}
	return decimal.Zero, false
}
