package mqtt

import (
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts        *paho.ClientOptions
	published   []published
	publishErrs []error
	connectErr  error
	connected   bool
	blockTopic  string
}

func (m *mockClient) IsConnected() bool { return m.connected }
func (m *mockClient) Connect() paho.Token {
	if m.connectErr != nil {
		return &dummyToken{err: m.connectErr}
	}
	m.connected = true
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(nil)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) { m.connected = false }
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	m.published = append(m.published, published{topic, qos, retained, payload.([]byte)})
	if topic == m.blockTopic {
		return &dummyToken{pending: true}
	}
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

func (m *mockClient) topics() []string {
	out := make([]string, len(m.published))
	for i, p := range m.published {
		out[i] = p.topic
	}
	return out
}

type dummyToken struct {
	err     error
	pending bool
}

func (d dummyToken) Wait() bool                     { return !d.pending }
func (d dummyToken) WaitTimeout(time.Duration) bool { return !d.pending }
func (d dummyToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !d.pending {
		close(ch)
	}
	return ch
}
func (d dummyToken) Error() error { return d.err }

// withMockClient routes newMQTTClient to mc for the duration of the test.
func withMockClient(t *testing.T, mc *mockClient) {
	t.Helper()
	prev := newMQTTClient
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = prev })
}

type recordMonitor struct {
	errs []error
	tags []map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}
func (r *recordMonitor) Recover()            {}
func (r *recordMonitor) Flush(time.Duration) {}
