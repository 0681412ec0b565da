package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powerplan/core/journal"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `server:
  address: ":9000"
  rate_limit_rps: 5
  cache_size: 128
  journal_token: "secret"
  permissive_validation: true
log:
  backend: logrus
  level: debug
metrics:
  prometheus_address: ":2112"
  sinks:
    - type: "prometheus"
    - type: "influx"
      conf:
        url: "http://localhost:8086"
        bucket: "plans"
journal:
  backend: sqlite
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "pp"
  topic_prefix: "site/"
  qos:
    setpoint: 1
sentry:
  dsn: "https://key@sentry.example/1"
  traces_sample_rate: 0.2
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"server.address", cfg.Server.Address, ":9000"},
		{"server.rate_limit_rps", cfg.Server.RateLimitRPS, 5.0},
		{"server.rate_limit_burst default", cfg.Server.RateLimitBurst, 6},
		{"server.cache_size", cfg.Server.CacheSize, 128},
		{"server.journal_token", cfg.Server.JournalToken, "secret"},
		{"server.permissive_validation", cfg.Server.PermissiveValidation, true},
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeout(), 10 * time.Second},
		{"log.backend", cfg.Log.Backend, "logrus"},
		{"log.level", cfg.Log.Level, "debug"},
		{"metrics.prometheus_address", cfg.Metrics.PrometheusAddress, ":2112"},
		{"metrics.sinks", len(cfg.Metrics.Sinks), 2},
		{"metrics.sinks[1].type", cfg.Metrics.Sinks[1].Type, "influx"},
		{"metrics.sinks[1].conf.bucket", cfg.Metrics.Sinks[1].Conf["bucket"], "plans"},
		{"journal.backend", cfg.Journal.Backend, journal.BackendSQLite},
		{"journal.path default", cfg.Journal.Path, "productionplan.db"},
		{"mqtt.enabled", cfg.MQTT.Enabled, true},
		{"mqtt.topic_prefix", cfg.MQTT.TopicPrefix, "site"},
		{"mqtt.qos.setpoint", cfg.MQTT.QoS["setpoint"], byte(1)},
		{"mqtt.max_retries default", cfg.MQTT.MaxRetries, 3},
		{"sentry.traces_sample_rate", cfg.Sentry.TracesSampleRate, 0.2},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"server":{"address":"127.0.0.1:8080"},"journal":{"backend":"jsonl","path":"plans.jsonl"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Address)
	assert.Equal(t, "plans.jsonl", cfg.Journal.Path)
	assert.Equal(t, "zerolog", cfg.Log.Backend)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8888", cfg.Server.Address)
	assert.Zero(t, cfg.Server.RateLimitRPS)
	assert.Zero(t, cfg.Server.CacheSize)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 10*time.Second, cfg.Server.PublishTimeout())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, journal.BackendNone, cfg.Journal.Backend)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Empty(t, cfg.Metrics.Sinks)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "config.yaml", "server:\n  address: \":9000\"\n")
	t.Setenv("PP_SERVER__ADDRESS", ":7000")
	t.Setenv("PP_SERVER__CACHE_SIZE", "32")
	t.Setenv("PP_LOG__LEVEL", "warn")
	t.Setenv("PP_MQTT__ENABLED", "true")
	t.Setenv("PP_MQTT__BROKER", "tcp://broker:1883")
	t.Setenv("PP_MQTT__OAUTH2__TOKEN_URL", "https://idp.example/token")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Address)
	assert.Equal(t, 32, cfg.Server.CacheSize)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, "https://idp.example/token", cfg.MQTT.OAuth2.TokenURL)
}

func TestLoad_EnvOverridesWithoutFile(t *testing.T) {
	t.Setenv("PP_SERVER__ADDRESS", ":7000")
	t.Setenv("PP_JOURNAL__BACKEND", "sqlite")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Address)
	assert.Equal(t, journal.BackendSQLite, cfg.Journal.Backend)
	assert.Equal(t, "productionplan.db", cfg.Journal.Path)
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		file string
		data string
		want string
	}{
		{"unsupported format", "config.toml", "", "unsupported config format"},
		{"unknown journal backend", "c.yaml", "journal:\n  backend: mongo\n", "unknown journal backend"},
		{"unknown log level", "c.yaml", "log:\n  level: loud\n", "unknown log level"},
		{"mqtt without broker", "c.yaml", "mqtt:\n  enabled: true\n", "mqtt.broker is required"},
		{"negative cache", "c.yaml", "server:\n  cache_size: -1\n", "server.cache_size"},
		{"sample rate", "c.yaml", "sentry:\n  traces_sample_rate: 2\n", "traces_sample_rate"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, c.file, c.data))
			assert.ErrorContains(t, err, c.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_JoinsSections(t *testing.T) {
	cfg := Config{Log: LogConfig{Backend: "syslog", Level: "info"}, Sentry: SentryConfig{TracesSampleRate: -1}}
	cfg.SetDefaults()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log backend syslog")
	assert.Contains(t, err.Error(), "traces_sample_rate")
}
