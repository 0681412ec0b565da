package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/infra/logger"
)

// InfluxSink writes production plans to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordProductionPlan writes one production_plan point, one plant_setpoint
// point per plant and one fuel point per market input.
func (s *InfluxSink) RecordProductionPlan(ev coremetrics.PlanEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, planPoints(ev)...)
}

// RecordRejection writes a plan_rejected point.
func (s *InfluxSink) RecordRejection(ev coremetrics.RejectionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan_rejected").
		AddTag("reason", ev.Reason).
		AddField("count", 1).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func planPoints(ev coremetrics.PlanEvent) []*write.Point {
	points := make([]*write.Point, 0, len(ev.Setpoints)+4)
	points = append(points, write.NewPointWithMeasurement("production_plan").
		AddTag("plan_id", ev.PlanID).
		AddField("load_mw", ev.LoadMW.InexactFloat64()).
		AddField("remaining_load_mw", ev.RemainingLoadMW.InexactFloat64()).
		AddField("plants", len(ev.Setpoints)).
		AddField("compute_us", ev.Duration.Microseconds()).
		SetTime(ev.Time))
	for _, sp := range ev.Setpoints {
		points = append(points, write.NewPointWithMeasurement("plant_setpoint").
			AddTag("plan_id", ev.PlanID).
			AddTag("plant", sp.Plant).
			AddTag("rank", strconv.Itoa(sp.Rank)).
			AddTag("type", sp.Type).
			AddField("setpoint_mw", sp.SetpointMW.InexactFloat64()).
			AddField("pmax_mw", sp.PmaxMW.InexactFloat64()).
			SetTime(ev.Time))
	}
	for _, f := range ev.Fuels {
		points = append(points, write.NewPointWithMeasurement("fuel").
			AddTag("fuel", f.Fuel).
			AddTag("plan_id", ev.PlanID).
			AddField("value", f.Value.InexactFloat64()).
			SetTime(ev.Time))
	}
	return points
}
