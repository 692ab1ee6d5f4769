package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/grove/pkg/dsl"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "grove.yaml"

// Config holds the process-wide run settings. CLI flags override file values.
type Config struct {
	// Random is the default ordering for contexts that do not decide themselves.
	Random bool `mapstructure:"random"`
	// Seed fixes random ordering. Zero picks a new seed per run.
	Seed uint64 `mapstructure:"seed"`
	// Timeout is the default body and hook timeout. Zero means unlimited.
	Timeout time.Duration `mapstructure:"timeout"`
	// Format selects the reporter: "text" or "json".
	Format string `mapstructure:"format"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
	// ExternalNames are reserved names bindings may not use.
	ExternalNames []string `mapstructure:"external_names"`
	// Listen is the address of the HTTP adapter.
	Listen string `mapstructure:"listen"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Format:   "text",
		LogLevel: "warn",
		Listen:   ":8080",
	}
}

// Load reads path (YAML, or JSON when the extension is .json) on top of the defaults.
// A missing file is not an error: the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := Decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Decode merges raw into cfg. Unknown keys are rejected.
func Decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       dsl.DurationHook,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Validate checks the values a file or flag could get wrong.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q (want text or json)", c.Format)
	}
	return nil
}
