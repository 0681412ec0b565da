package journal

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func record(i int, plants ...string) Record {
	rec := Record{
		ID:            fmt.Sprintf("plan-%d", i),
		Timestamp:     base.Add(time.Duration(i) * time.Minute),
		Load:          d("480"),
		Gas:           d("13.4"),
		Kerosine:      d("50.8"),
		WindPercent:   d("60"),
		RemainingLoad: d("0"),
	}
	for _, p := range plants {
		rec.Plants = append(rec.Plants, PlantRecord{Name: p, Type: "gasfired", Efficiency: d("0.5"), Pmin: d("0"), Pmax: d("100")})
		rec.Productions = append(rec.Productions, ProductionRecord{Name: p, P: d("10")})
	}
	return rec
}

func ids(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

// exerciseStore runs the same scenario against every backend.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	// appended out of order on purpose
	for _, rec := range []Record{
		record(2, "gas1", "tj1"),
		record(0, "wind1"),
		record(1, "gas1"),
		record(3, "tj1"),
	} {
		require.NoError(t, store.Append(ctx, rec))
	}

	all, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"plan-0", "plan-1", "plan-2", "plan-3"}, ids(all))
	assert.True(t, all[0].Load.Equal(d("480")))
	assert.Equal(t, "wind1", all[0].Plants[0].Name)

	byPlant, err := store.Query(ctx, Query{Plant: "gas1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"plan-1", "plan-2"}, ids(byPlant))

	window, err := store.Query(ctx, Query{Start: base.Add(time.Minute), End: base.Add(2 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, []string{"plan-1", "plan-2"}, ids(window))

	latest, err := store.Query(ctx, Query{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"plan-2", "plan-3"}, ids(latest))

	none, err := store.Query(ctx, Query{Plant: "unknown"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
