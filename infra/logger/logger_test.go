package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusLoggerJSON(t *testing.T) {
	t.Setenv("APP_ENV", "")
	var buf bytes.Buffer
	l := NewWithOptions("api", Options{Backend: BackendLogrus, Level: "warn", Output: &buf})
	l.Infof("hidden")
	l.Warnf("slow request %dms", 120)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "api", entry["component"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "slow request 120ms", entry["msg"])
}

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { _ = Configure(Options{}) })

	require.NoError(t, Configure(Options{Backend: BackendLogrus, Level: "debug"}))
	_, ok := New("x").(*LogrusLogger)
	assert.True(t, ok)

	require.NoError(t, Configure(Options{}))
	_, ok = New("x").(*ZerologLogger)
	assert.True(t, ok)

	assert.Error(t, Configure(Options{Backend: "syslog"}))
	assert.Error(t, Configure(Options{Level: "loud"}))
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Debugf("x")
	l.Debugw("x", nil)
	l.Infof("x")
	l.Infow("x", nil)
	l.Warnf("x")
	l.Errorf("x")
}
