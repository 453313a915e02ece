// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// District describes one simulated urban zone. PeakOffsetHours shifts the
// commute curve so districts do not all peak at the same time.
type District struct {
	Name            string  `yaml:"name"`
	PeakOffsetHours float64 `yaml:"peak_offset_hours"`
}

// Reconnect configures the dashboard's reconnect policy. Disabled by
// default: connection loss ends the session.
type Reconnect struct {
	Enabled    bool   `yaml:"enabled"`
	MinBackoff string `yaml:"min_backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// Config is the root configuration for the dashboard and the telemetry peer.
type Config struct {
	CityID               string     `yaml:"city_id"`
	TelemetryURL         string     `yaml:"telemetry_url"`
	ControlURL           string     `yaml:"control_url"`
	Listen               string     `yaml:"listen"`
	TickInterval         string     `yaml:"tick_interval"`
	WeatherChangeChance  float64    `yaml:"weather_change_chance"`
	Districts            []District `yaml:"districts"`
	Reconnect            Reconnect  `yaml:"reconnect"`
	SurfaceCommandErrors bool       `yaml:"surface_command_errors"`
}

// Load loads YAML config and validates it against a CUE schema.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if len(cfg.Districts) == 0 {
		return nil, fmt.Errorf("no districts defined in %s", configPath)
	}
	if _, err := cfg.Tick(); err != nil {
		return nil, err
	}
	if _, _, err := cfg.Backoff(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.CityID == "" {
		cfg.CityID = "urbanpulse"
	}
	if cfg.TelemetryURL == "" {
		cfg.TelemetryURL = "ws://127.0.0.1:8001/ws"
	}
	if cfg.ControlURL == "" {
		cfg.ControlURL = "http://127.0.0.1:8001/api/control"
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8001"
	}
	if cfg.TickInterval == "" {
		cfg.TickInterval = "2s"
	}
	if cfg.WeatherChangeChance == 0 {
		cfg.WeatherChangeChance = 0.05
	}
	if cfg.Reconnect.MinBackoff == "" {
		cfg.Reconnect.MinBackoff = "1s"
	}
	if cfg.Reconnect.MaxBackoff == "" {
		cfg.Reconnect.MaxBackoff = "30s"
	}
}

// Tick returns the broadcast interval, honoring the TICK_INTERVAL env
// override used in deployment.
func (c *Config) Tick() (time.Duration, error) {
	raw := c.TickInterval
	if env := os.Getenv("TICK_INTERVAL"); env != "" {
		raw = env
	}
	return parseDurationField("tick_interval", raw)
}

// Backoff returns the reconnect bounds.
func (c *Config) Backoff() (min, max time.Duration, err error) {
	min, err = parseDurationField("reconnect.min_backoff", c.Reconnect.MinBackoff)
	if err != nil {
		return 0, 0, err
	}
	max, err = parseDurationField("reconnect.max_backoff", c.Reconnect.MaxBackoff)
	if err != nil {
		return 0, 0, err
	}
	if max < min {
		return 0, 0, fmt.Errorf("reconnect.max_backoff %v below min_backoff %v", max, min)
	}
	return min, max, nil
}

func parseDurationField(path, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: duration must be > 0", path)
	}
	return d, nil
}
