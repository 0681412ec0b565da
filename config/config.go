package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/powerplan/core/journal"
	"github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/infra/mqtt"
)

// EnvPrefix marks environment overrides: PP_SERVER__ADDRESS sets
// server.address.
const EnvPrefix = "PP_"

type Config struct {
	Server  ServerConfig   `json:"server"`
	Log     LogConfig      `json:"log"`
	Metrics metrics.Config `json:"metrics"`
	Journal journal.Config `json:"journal"`
	MQTT    mqtt.Config    `json:"mqtt"`
	Sentry  SentryConfig   `json:"sentry"`
}

// Load reads the YAML or JSON file at path, applies environment overrides,
// then defaults, and validates the result. An empty path uses defaults and
// the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Log.SetDefaults()
	c.Journal.SetDefaults()
	c.MQTT.SetDefaults()
}

// Validate reports the problems of every section at once.
func (c Config) Validate() error {
	return errors.Join(
		c.Server.Validate(),
		c.Log.Validate(),
		c.Journal.Validate(),
		c.MQTT.Validate(),
		c.Sentry.Validate(),
	)
}
