package journal

import "fmt"

// Backends accepted by Config.Backend.
const (
	BackendNone          = "none"
	BackendJSONL         = "jsonl"
	BackendJSONLRotating = "jsonl_rotating"
	BackendSQLite        = "sqlite"
)

// Config defines settings for the plan journal and its rotation.
type Config struct {
	// Backend selects the store: none, jsonl, jsonl_rotating or sqlite.
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults. The journal is off unless configured.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendNone
	}
	if c.Backend != BackendNone && c.Path == "" {
		if c.Backend == BackendSQLite {
			c.Path = "productionplan.db"
		} else {
			c.Path = "productionplan.jsonl"
		}
	}
	if c.Backend == BackendJSONLRotating && c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 100
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendNone:
		return nil
	case BackendJSONL, BackendJSONLRotating, BackendSQLite:
	default:
		return fmt.Errorf("unknown journal backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("journal path is required")
	}
	if c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("journal rotation limits must not be negative")
	}
	return nil
}

// New opens the store selected by cfg.
func New(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return NopStore{}, nil
	case BackendJSONL:
		return NewJSONLStore(cfg.Path)
	case BackendJSONLRotating:
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case BackendSQLite:
		return NewSQLiteStore(cfg.Path)
	}
	return nil, fmt.Errorf("unknown journal backend %s", cfg.Backend)
}
