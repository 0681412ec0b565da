package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powerplan/core/events"
	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/infra/logger"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

type captureSink struct {
	mu         sync.Mutex
	plans      []coremetrics.PlanEvent
	rejections []coremetrics.RejectionEvent
	hits       []bool
	publishes  []coremetrics.PublishEvent
}

func (c *captureSink) RecordProductionPlan(ev coremetrics.PlanEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans = append(c.plans, ev)
	return nil
}

func (c *captureSink) RecordRejection(ev coremetrics.RejectionEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejections = append(c.rejections, ev)
	return nil
}

func (c *captureSink) RecordCacheLookup(hit bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits = append(c.hits, hit)
	return nil
}

func (c *captureSink) RecordSetpointPublish(ev coremetrics.PublishEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishes = append(c.publishes, ev)
	return nil
}

func (c *captureSink) counts() (int, int, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.plans), len(c.rejections), len(c.hits), len(c.publishes)
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New[events.Event]()
	sink := &captureSink{}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, sink, logger.NopLogger{})

	bus.Publish(computedPlan())
	bus.Publish(events.PlanRejected{Reason: "validation", Err: errors.New("bad wind")})
	bus.Publish(events.CacheLookup{Hit: true})
	bus.Publish(events.SetpointPublished{PlanID: "plan-1", Plant: "tj1", Attempts: 3, Err: errors.New("timeout")})

	require.Eventually(t, func() bool {
		p, r, h, pub := sink.counts()
		return p == 1 && r == 1 && h == 1 && pub == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	ev := sink.plans[0]
	assert.Equal(t, "plan-1", ev.PlanID)
	require.Len(t, ev.Setpoints, 3)
	assert.Equal(t, "gasfiredbig1", ev.Setpoints[1].Plant)
	assert.Equal(t, "gasfired", ev.Setpoints[1].Type)
	assert.Equal(t, 2, ev.Setpoints[1].Rank)
	assert.Equal(t, "460", ev.Setpoints[1].PmaxMW.String())
	require.Len(t, ev.Fuels, 3)
	assert.Equal(t, "wind", ev.Fuels[2].Fuel)
	assert.Equal(t, "60", ev.Fuels[2].Value.String())
	assert.False(t, sink.publishes[0].Success)
	assert.Equal(t, 3, sink.publishes[0].Attempts)
}

func TestStartEventCollector_StopsOnBusClose(t *testing.T) {
	bus := eventbus.New[events.Event]()
	done := StartEventCollector(context.Background(), bus, coremetrics.NopSink{}, nil)
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop after bus close")
	}
}

func TestStartEventCollector_NilSink(t *testing.T) {
	done := StartEventCollector(context.Background(), eventbus.New[events.Event](), nil, nil)
	_, open := <-done
	assert.False(t, open)
}
