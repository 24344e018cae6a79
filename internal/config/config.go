// Package config merges the YAML config file, the environment and built-in
// defaults into one run configuration.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"loadprobe/internal/catalog"
	"loadprobe/internal/core"
	"loadprobe/internal/report"
)

// Built-in defaults.
const (
	DefaultTarget    = "http://localhost:3004"
	DefaultTimeout   = 30 * time.Second
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config is the root configuration structure.
type Config struct {
	Target      string                     `yaml:"target"`
	Client      ClientConfig               `yaml:"client"`
	Catalogs    map[string][]core.Endpoint `yaml:"catalogs,omitempty"`
	Load        LoadSettings               `yaml:"load"`
	Monitor     MonitorSettings            `yaml:"monitor"`
	Thresholds  *report.Thresholds         `yaml:"thresholds,omitempty"`
	Execution   ExecutionConfig            `yaml:"execution,omitempty"`
	Log         LogConfig                  `yaml:"log"`
	MetricsAddr string                     `yaml:"metricsAddr"`
	ExportDir   string                     `yaml:"exportDir"`
}

// ClientConfig configures the HTTP client used for probes.
type ClientConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
}

// LoadSettings tunes the concurrent load driver.
type LoadSettings struct {
	ThinkMin time.Duration `yaml:"thinkMin"`
	ThinkMax time.Duration `yaml:"thinkMax"`
}

// MonitorSettings tunes the continuous monitor.
type MonitorSettings struct {
	Window int `yaml:"window"`
}

// ExecutionConfig controls iteration-level execution behavior.
type ExecutionConfig struct {
	WarmupIterations int `yaml:"warmup_iterations"`
	RPS              int `yaml:"rps"`
}

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be fixed up by defaults.
func (c *Config) Validate() error {
	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout must not be negative")
	}
	if c.Load.ThinkMin < 0 || c.Load.ThinkMax < 0 {
		return fmt.Errorf("load think times must not be negative")
	}
	if c.Load.ThinkMax > 0 && c.Load.ThinkMax < c.Load.ThinkMin {
		return fmt.Errorf("load.thinkMax (%v) is below load.thinkMin (%v)", c.Load.ThinkMax, c.Load.ThinkMin)
	}
	if c.Monitor.Window < 0 {
		return fmt.Errorf("monitor.window must not be negative")
	}
	if c.Execution.RPS < 0 {
		return fmt.Errorf("execution.rps must not be negative")
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	for name, eps := range c.Catalogs {
		if _, err := catalog.Lookup(name); err != nil {
			return fmt.Errorf("catalogs: %w", err)
		}
		if err := catalog.Validate(withDefaultMethod(eps)); err != nil {
			return fmt.Errorf("catalogs.%s: %w", name, err)
		}
	}
	return c.Thresholds.Validate()
}

// ApplyDefaults fills every unset field with its built-in default.
func (c *Config) ApplyDefaults() {
	if c.Target == "" {
		c.Target = DefaultTarget
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = DefaultTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// Catalog returns the named catalog, preferring an override from the file.
func (c *Config) Catalog(name string) ([]core.Endpoint, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = catalog.NameDefault
	}
	if eps, ok := c.Catalogs[key]; ok {
		return withDefaultMethod(eps), nil
	}
	return catalog.Lookup(key)
}

func withDefaultMethod(eps []core.Endpoint) []core.Endpoint {
	out := make([]core.Endpoint, len(eps))
	for i, ep := range eps {
		if ep.Method == "" {
			ep.Method = http.MethodGet
		}
		ep.Method = strings.ToUpper(ep.Method)
		out[i] = ep
	}
	return out
}
