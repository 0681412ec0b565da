package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/powerplan/core/model"
)

func TestAdjustWindCapacity(t *testing.T) {
	cases := []struct {
		name   string
		in     []model.Powerplant
		wind   string
		expect []model.Powerplant
	}{
		{"empty no wind", plants(), "0", plants()},
		{"empty full wind", plants(), "1", plants()},
		{"gas untouched no wind", plants(gasFiredBig1), "0", plants(gasFiredBig1)},
		{"gas untouched full wind", plants(gasFiredBig1), "1", plants(gasFiredBig1)},
		{"turbojet untouched", plants(tj1), "1", plants(tj1)},
		{"zero wind", plants(windPark1), "0", plants(windPark1.WithPmax(d("0")))},
		{"half wind", plants(windPark1), "0.5", plants(windPark1.WithPmax(d("75")))},
		{"full wind", plants(windPark1), "1", plants(windPark1)},
		{"order preserved gas first", plants(gasFiredBig1, windPark1), "1", plants(gasFiredBig1, windPark1)},
		{"order preserved wind first", plants(windPark1, gasFiredBig1), "1", plants(windPark1, gasFiredBig1)},
		{"only wind scaled", plants(gasFiredBig1, windPark1, tj1, windPark2), "0.6",
			plants(gasFiredBig1, windPark1.WithPmax(d("90")), tj1, windPark2.WithPmax(d("21.6")))},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := AdjustWindCapacity(c.in, model.Wind{AverageWind: d(c.wind)})
			requirePlantsEqual(t, c.expect, got)
		})
	}
}

func TestAdjustWindCapacity_DoesNotMutateInput(t *testing.T) {
	in := plants(windPark1, gasFiredBig1)
	_ = AdjustWindCapacity(in, model.Wind{AverageWind: d("0.1")})
	assert.True(t, in[0].Attrs().Pmax.Equal(d("150")))
}

func TestAdjustWindCapacity_NegativeWindPropagates(t *testing.T) {
	got := AdjustWindCapacity(plants(windPark2), model.Wind{AverageWind: d("-0.5")})
	assert.True(t, got[0].Attrs().Pmax.Equal(d("-18")))
}
