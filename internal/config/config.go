// Package config loads the server and simulation settings.
//
// Values are layered, lowest priority first:
//  1. defaults (Default)
//  2. a YAML file, usually socialgraph.yaml
//  3. SOCIALGRAPH_* environment variables
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"socialgraph/internal/graph"
	"socialgraph/internal/physics"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "socialgraph.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SOCIALGRAPH_"

type Config struct {
	Physics       physics.Params   `yaml:"physics" json:"physics"`
	Viewport      physics.Viewport `yaml:"viewport" json:"viewport"`
	FrameInterval Duration         `yaml:"frame_interval" json:"frame_interval"`
	Server        ServerConfig     `yaml:"server" json:"server"`
	Log           LogConfig        `yaml:"log" json:"log"`
	// DBPath is the sqlite file graphs are saved to.
	DBPath string `yaml:"db_path" json:"db_path"`
	// Alias is the graph loaded when the server starts.
	Alias string `yaml:"alias" json:"alias"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
	// BaseURL is used for links in the Atom export.
	BaseURL string `yaml:"base_url" json:"base_url"`
	// MaxFPS caps the frames sent to each websocket client; 0 disables it.
	MaxFPS       float64  `yaml:"max_fps" json:"max_fps"`
	ClientBuffer int      `yaml:"client_buffer" json:"client_buffer"`
	CORSOrigins  []string `yaml:"cors_origins" json:"cors_origins"`
}

type LogConfig struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Physics:       physics.DefaultParams(),
		Viewport:      physics.Viewport{Width: 800, Height: 600},
		FrameInterval: DurationFrom(16 * time.Millisecond),
		Server: ServerConfig{
			Addr:         ":8080",
			BaseURL:      "http://localhost:8080",
			MaxFPS:       30,
			ClientBuffer: 4,
			CORSOrigins:  []string{"*"},
		},
		Log:    LogConfig{Level: "info"},
		DBPath: ".socialgraph.db",
		Alias:  graph.DefaultAlias,
	}
}

// Load builds the configuration from the defaults, the file at path and the
// environment. An empty path reads DefaultFile when it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.LoadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path. Unknown keys are rejected.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays SOCIALGRAPH_* variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	float := func(name string, dst *float64) {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			return
		}
		*dst = f
	}

	str("ADDR", &c.Server.Addr)
	str("BASE_URL", &c.Server.BaseURL)
	str("DB", &c.DBPath)
	str("ALIAS", &c.Alias)
	str("LOG_LEVEL", &c.Log.Level)
	float("MAX_FPS", &c.Server.MaxFPS)
	float("MINIMAL_MASS", &c.Physics.MinimalMass)
	float("OBJECTS_DENSITY", &c.Physics.ObjectsDensity)
	float("MARGIN_FACTOR", &c.Physics.MarginFactor)
	float("CENTER_ATTRACTION", &c.Physics.CenterAttraction)
	float("TIME_STEP_MS", &c.Physics.TimeStepMs)
	float("VIEWPORT_WIDTH", &c.Viewport.Width)
	float("VIEWPORT_HEIGHT", &c.Viewport.Height)

	if v, ok := lookup(EnvPrefix + "FRAME_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sFRAME_INTERVAL: %w", EnvPrefix, err))
		} else {
			c.FrameInterval = DurationFrom(d)
		}
	}
	return errors.Join(errs...)
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Physics.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("physics: %w", err))
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %vx%v", c.Viewport.Width, c.Viewport.Height))
	}
	if c.FrameInterval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("frame_interval must be positive, got %s", c.FrameInterval))
	}
	if c.Server.MaxFPS < 0 {
		errs = append(errs, fmt.Errorf("server.max_fps must not be negative, got %v", c.Server.MaxFPS))
	}
	if c.Server.ClientBuffer < 1 {
		errs = append(errs, fmt.Errorf("server.client_buffer must be at least 1, got %d", c.Server.ClientBuffer))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if graph.SanitizeAlias(c.Alias) != c.Alias {
		errs = append(errs, fmt.Errorf("alias %q may only contain letters, digits and underscores", c.Alias))
	}
	return errors.Join(errs...)
}
