package dispatch

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powerplan/core/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	gasFiredBig1            = model.NewGasFired("gasfiredbig1", d("0.53"), d("100"), d("460"))
	gasFiredBig2            = model.NewGasFired("gasfiredbig2", d("0.53"), d("100"), d("460"))
	gasFiredSomewhatSmaller = model.NewGasFired("gasfiredsomewhatsmaller", d("0.37"), d("40"), d("210"))
	windPark1               = model.NewWindTurbine("windpark1", d("1"), d("0"), d("150"))
	windPark2               = model.NewWindTurbine("windpark2", d("1"), d("0"), d("36"))
	tj1                     = model.NewTurboJet("tj1", d("0.3"), d("0"), d("16"))

	moreEfficientGasFiredBig1 = model.NewGasFired("gasfiredbig1-eff", d("0.75"), d("100"), d("460"))
	moreEfficientTJ1          = model.NewTurboJet("tj1-eff", d("0.5"), d("0"), d("16"))
)

func withPmin(p model.Powerplant, pmin decimal.Decimal) model.Powerplant {
	a := p.Attrs()
	a.Pmin = pmin
	out, _ := model.NewPowerplant(p.Kind(), a)
	return out
}

func plants(ps ...model.Powerplant) []model.Powerplant { return ps }

func names(ps []model.Powerplant) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Attrs().Name
	}
	return out
}

// requirePlantsEqual compares kinds, names and decimal values.
func requirePlantsEqual(t *testing.T, want, got []model.Powerplant) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i].Attrs(), got[i].Attrs()
		assert.Equal(t, want[i].Kind(), got[i].Kind(), "kind at %d", i)
		assert.Equal(t, w.Name, g.Name, "name at %d", i)
		assert.True(t, w.Efficiency.Equal(g.Efficiency), "efficiency of %s: want %s got %s", w.Name, w.Efficiency, g.Efficiency)
		assert.True(t, w.Pmin.Equal(g.Pmin), "pmin of %s: want %s got %s", w.Name, w.Pmin, g.Pmin)
		assert.True(t, w.Pmax.Equal(g.Pmax), "pmax of %s: want %s got %s", w.Name, w.Pmax, g.Pmax)
	}
}

type expected struct {
	name string
	p    string
}

func requireResult(t *testing.T, want []expected, remaining string, got model.ProductionResult) {
	t.Helper()
	require.Len(t, got.Productions, len(want))
	for i, w := range want {
		assert.Equal(t, w.name, got.Productions[i].Name, "name at %d", i)
		assert.True(t, d(w.p).Equal(got.Productions[i].Production),
			"production of %s: want %s got %s", w.name, w.p, got.Productions[i].Production)
	}
	assert.True(t, d(remaining).Equal(got.RemainingLoad.MW),
		"remaining load: want %s got %s", remaining, got.RemainingLoad.MW)
}
