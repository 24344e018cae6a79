package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env holds the settings that may come from the process environment.
type Env struct {
	Target      string        `env:"LOADPROBE_TARGET"`
	Timeout     time.Duration `env:"LOADPROBE_TIMEOUT"`
	UserAgent   string        `env:"LOADPROBE_USER_AGENT"`
	LogLevel    string        `env:"LOADPROBE_LOG_LEVEL"`
	LogFormat   string        `env:"LOADPROBE_LOG_FORMAT"`
	MetricsAddr string        `env:"LOADPROBE_METRICS_ADDR"`
	ExportDir   string        `env:"LOADPROBE_EXPORT_DIR"`
}

// LoadEnvFiles loads the given dotenv files that exist, without overriding
// variables already set. Returns how many files were loaded.
func LoadEnvFiles(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("checking %s: %w", file, err)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return 0, fmt.Errorf("loading env files: %w", err)
	}
	return len(existing), nil
}

// ParseEnv reads LOADPROBE_* variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parsing environment: %w", err)
	}
	return e, nil
}

// ApplyEnv overrides file values with any environment values that are set.
func (c *Config) ApplyEnv(e Env) {
	if e.Target != "" {
		c.Target = e.Target
	}
	if e.Timeout > 0 {
		c.Client.Timeout = e.Timeout
	}
	if e.UserAgent != "" {
		c.Client.UserAgent = e.UserAgent
	}
	if e.LogLevel != "" {
		c.Log.Level = e.LogLevel
	}
	if e.LogFormat != "" {
		c.Log.Format = e.LogFormat
	}
	if e.MetricsAddr != "" {
		c.MetricsAddr = e.MetricsAddr
	}
	if e.ExportDir != "" {
		c.ExportDir = e.ExportDir
	}
}

// Load builds the configuration from an optional file, dotenv files, the
// environment and defaults, in increasing order of precedence except for
// defaults, which only fill gaps. CLI flags are applied by the caller.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if _, err := LoadEnvFiles(envFiles...); err != nil {
		return nil, err
	}
	e, err := ParseEnv()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(e)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
