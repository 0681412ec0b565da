package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	corelogger "github.com/kilianp07/powerplan/core/logger"
	coremon "github.com/kilianp07/powerplan/core/monitoring"
	"github.com/kilianp07/powerplan/core/setpoint"
	"github.com/kilianp07/powerplan/infra/logger"
)

// SetpointPublisher implements setpoint.Publisher on top of Eclipse Paho.
// Each plant receives its order on <prefix>/<plant>/setpoint and the plan
// summary goes to <prefix>/plan.
type SetpointPublisher struct {
	cli     pahoClient
	cfg     Config
	logger  corelogger.Logger
	backoff time.Duration
}

var _ setpoint.Publisher = (*SetpointPublisher)(nil)

type setpointMessage struct {
	PlanID     string      `json:"plan_id"`
	Plant      string      `json:"plant"`
	SetpointMW json.Number `json:"setpoint_mw"`
	Timestamp  int64       `json:"timestamp"`
}

type planMessage struct {
	PlanID          string            `json:"plan_id"`
	RemainingLoadMW json.Number       `json:"remaining_load_mw"`
	Setpoints       []setpointMessage `json:"setpoints"`
	Timestamp       int64             `json:"timestamp"`
}

// NewSetpointPublisher connects to the broker described by cfg.
func NewSetpointPublisher(cfg Config) (*SetpointPublisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	return &SetpointPublisher{
		cli:     c,
		cfg:     cfg,
		logger:  log,
		backoff: time.Duration(cfg.BackoffMS) * time.Millisecond,
	}, nil
}

// SetpointTopic returns the topic a plant listens on.
func (p *SetpointPublisher) SetpointTopic(plant string) string {
	return p.cfg.TopicPrefix + "/" + topicSegment(plant) + "/setpoint"
}

// PlanTopic returns the topic carrying plan summaries.
func (p *SetpointPublisher) PlanTopic() string {
	return p.cfg.TopicPrefix + "/plan"
}

// Publish sends every set-point of plan, then the summary. A failed plant does
// not stop the others; once ctx is done the remaining plants are reported
// with ctx.Err().
func (p *SetpointPublisher) Publish(ctx context.Context, plan setpoint.Plan) ([]setpoint.Delivery, error) {
	out := make([]setpoint.Delivery, len(plan.Setpoints))
	msgs := make([]setpointMessage, len(plan.Setpoints))
	for i, sp := range plan.Setpoints {
		msgs[i] = toMessage(sp)
		out[i].Plant = sp.Plant
		if err := ctx.Err(); err != nil {
			out[i].Err = err
			continue
		}
		payload, err := json.Marshal(msgs[i])
		if err != nil {
			out[i].Err = err
			continue
		}
		out[i].Attempts, out[i].Err = p.publish(ctx, p.SetpointTopic(sp.Plant), p.cfg.qos("setpoint"), false, payload)
		if out[i].Err != nil {
			p.logger.Errorf("set-point %s for %s: %v", sp.SetpointMW, sp.Plant, out[i].Err)
			coremon.CaptureException(out[i].Err, map[string]string{
				"module":  "mqtt",
				"plant":   sp.Plant,
				"plan_id": plan.PlanID,
			})
		}
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	summary, err := json.Marshal(planMessage{
		PlanID:          plan.PlanID,
		RemainingLoadMW: json.Number(plan.RemainingLoadMW.String()),
		Setpoints:       msgs,
		Timestamp:       plan.Timestamp.UnixMilli(),
	})
	if err != nil {
		return out, err
	}
	if _, err := p.publish(ctx, p.PlanTopic(), p.cfg.qos("plan"), p.cfg.RetainPlan, summary); err != nil {
		coremon.CaptureException(err, map[string]string{"module": "mqtt", "plan_id": plan.PlanID})
		return out, err
	}
	p.logger.Debugf("published plan %s to %d plants", plan.PlanID, len(plan.Setpoints))
	return out, nil
}

// publish retries with exponential backoff and returns the number of
// attempts made.
func (p *SetpointPublisher) publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) (int, error) {
	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		attempts++
		token := p.cli.Publish(topic, qos, retained, payload)
		select {
		case <-token.Done():
			lastErr = token.Error()
		case <-ctx.Done():
			return attempts, ctx.Err()
		}
		if lastErr == nil {
			return attempts, nil
		}
		p.logger.Warnf("publish attempt %d on %s failed: %v", attempts, topic, lastErr)
		if attempt == p.cfg.MaxRetries {
			break
		}
		timer := time.NewTimer(p.backoff * time.Duration(1<<attempt))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return attempts, ctx.Err()
		}
	}
	return attempts, fmt.Errorf("%w: %s after %d attempts: %w", setpoint.ErrPublishFailed, topic, attempts, lastErr)
}

// Close gracefully closes the MQTT connection.
func (p *SetpointPublisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}

func toMessage(sp setpoint.Setpoint) setpointMessage {
	return setpointMessage{
		PlanID:     sp.PlanID,
		Plant:      sp.Plant,
		SetpointMW: json.Number(sp.SetpointMW.String()),
		Timestamp:  sp.Timestamp.UnixMilli(),
	}
}

// topicSegment keeps plant names from introducing levels or wildcards.
func topicSegment(name string) string {
	return strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(name)
}
