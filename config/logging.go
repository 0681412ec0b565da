package config

import "fmt"

// LogConfig selects the logging backend and level.
type LogConfig struct {
	// Backend is "zerolog" or "logrus".
	Backend string `json:"backend"`
	// Level is debug, info, warn or error.
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LogConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "zerolog"
	}
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the backend and level names.
func (c LogConfig) Validate() error {
	if c.Backend != "zerolog" && c.Backend != "logrus" {
		return fmt.Errorf("unknown log backend %s", c.Backend)
	}
	switch c.Level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("unknown log level %s", c.Level)
}
