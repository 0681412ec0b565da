package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func computedPlan() events.PlanComputed {
	ranked := []model.Powerplant{
		model.NewWindTurbine("windpark1", d("1"), d("0"), d("90")),
		model.NewGasFired("gasfiredbig1", d("0.53"), d("100"), d("460")),
		model.NewTurboJet("tj1", d("0.3"), d("0"), d("16")),
	}
	return events.PlanComputed{
		PlanID: "plan-1",
		Time:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Load:   model.NewLoad(d("400")),
		Fuels: model.Fuels{
			Gas:      model.Gas{EurosPerMWh: d("13.4")},
			Kerosine: model.Kerosine{EurosPerMWh: d("50.8")},
			Wind:     model.WindFromPercentage(d("60")),
		},
		Ranked: ranked,
		Result: model.ProductionResult{
			Productions: []model.PowerplantProduction{
				{Name: "windpark1", Production: d("90")},
				{Name: "gasfiredbig1", Production: d("310")},
				{Name: "tj1", Production: d("0")},
			},
			RemainingLoad: model.NewLoad(d("0")),
		},
		Duration: 150 * time.Microsecond,
	}
}
