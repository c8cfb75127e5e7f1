package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"rosterd/internal/timegrid"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Schedule struct {
		SlotMinutes       int    `yaml:"slot_minutes"`
		DefaultWorkStart  string `yaml:"default_work_start"` // "09:00"
		DefaultWorkEnd    string `yaml:"default_work_end"`   // "21:00"
		BlockPastBookings bool   `yaml:"block_past_bookings"`
	} `yaml:"schedule"`

	Audit struct {
		Enabled       bool   `yaml:"enabled"`
		ExportPath    string `yaml:"export_path"`
		RetentionDays int    `yaml:"retention_days"`
		ExportOnStart bool   `yaml:"export_on_start"`
	} `yaml:"audit"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/rosterd.db"
	}
	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SlotMinutes returns the grid step, defaulting to 30.
func (c *Config) SlotMinutes() int {
	if c.Schedule.SlotMinutes <= 0 {
		return timegrid.DefaultStepMinutes
	}
	return c.Schedule.SlotMinutes
}

// DefaultWorkingHours returns the fallback working window, 09:00-21:00
// unless configured otherwise.
func (c *Config) DefaultWorkingHours() (start, end timegrid.Minutes) {
	start, end = 540, 1260
	if s, err := timegrid.Parse(c.Schedule.DefaultWorkStart); err == nil {
		if e, err := timegrid.Parse(c.Schedule.DefaultWorkEnd); err == nil && s < e {
			start, end = s, e
		}
	}
	return start, end
}

// CacheTTL returns the Redis cache TTL; zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

// AuditRetention returns how long exported audit rows are kept.
func (c *Config) AuditRetention() time.Duration {
	days := c.Audit.RetentionDays
	if days <= 0 {
		days = 31
	}
	return time.Duration(days) * 24 * time.Hour
}
