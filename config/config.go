// Package config loads the service configuration from file with optional
// environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/flexfleet/flexdispatch/core/dispatch"
	"github.com/flexfleet/flexdispatch/infra/mqtt"
	"github.com/flexfleet/flexdispatch/infra/store"
)

// InputsConfig points at the planning exports for one process day.
type InputsConfig struct {
	TravelTimes  string `json:"travel_times"`
	DepotClasses string `json:"depot_classes"`
	Deadlines    string `json:"deadlines"`
	Orders       string `json:"orders"`
	Roster       string `json:"roster"`
}

func (c InputsConfig) Validate() error {
	for name, path := range map[string]string{
		"travel_times":  c.TravelTimes,
		"depot_classes": c.DepotClasses,
		"roster":        c.Roster,
	} {
		if path == "" {
			return fmt.Errorf("inputs: %s path is required", name)
		}
	}
	return nil
}

// MetricsConfig configures the observability sinks.
type MetricsConfig struct {
	PromEnabled  bool   `json:"prom_enabled"`
	PromPort     string `json:"prom_port"`
	InfluxURL    string `json:"influx_url"`
	InfluxToken  string `json:"influx_token"`
	InfluxOrg    string `json:"influx_org"`
	InfluxBucket string `json:"influx_bucket"`
}

func (c *MetricsConfig) SetDefaults() {
	if c.PromPort == "" {
		c.PromPort = "9090"
	}
}

// OutputConfig controls the end-of-run exports.
type OutputConfig struct {
	Dir string `json:"dir"`
}

func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "out"
	}
}

type Config struct {
	// Day is the process day in 2006-01-02 form. Empty means today.
	Day      string          `json:"day"`
	Inputs   InputsConfig    `json:"inputs"`
	Dispatch dispatch.Config `json:"dispatch"`
	Metrics  MetricsConfig   `json:"metrics"`
	MQTT     mqtt.Config     `json:"mqtt"`
	Store    store.Config    `json:"store"`
	Output   OutputConfig    `json:"output"`
}

// ProcessDay parses the configured day in the local timezone.
func (c Config) ProcessDay() (time.Time, error) {
	if c.Day == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}
	day, err := time.ParseInLocation("2006-01-02", c.Day, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", c.Day, err)
	}
	return day, nil
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("FLEX_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "flex_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Dispatch.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.Output.SetDefaults()
	if err := cfg.Dispatch.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Inputs.Validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.ProcessDay(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
