package jsonfetch

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes the environment variables read by LoadConfig
const EnvPrefix = "JSONFETCH_"

// Config holds the retry settings shared by a family of requests; apply it
// to a request with WithConfig
type Config struct {
	MaxRetries int           `koanf:"max_retries" yaml:"max_retries"`
	Backoff    time.Duration `koanf:"backoff" yaml:"backoff"`
	Timeout    time.Duration `koanf:"timeout" yaml:"timeout"`
}

// DefaultConfig returns the settings NewRequest uses when given no options
func DefaultConfig() Config {
	return Config{
		MaxRetries: DefaultMaxRetries,
		Backoff:    DefaultBackoff,
		Timeout:    DefaultTimeout,
	}
}

// LoadConfig loads a Config with the following priority:
//  1. Environment variables, such as JSONFETCH_MAX_RETRIES (highest priority)
//  2. YAML files, in the order given
//  3. Default values (lowest priority)
func LoadConfig(paths ...string) (Config, error) {
	k := koanf.New(".")

	if err := loadConfigDefaults(k); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	for _, p := range paths {
		if err := k.Load(file.Provider(p), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load %s: %w", p, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(k, EnvPrefix)), v
		},
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadConfigDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"max_retries": DefaultMaxRetries,
		"backoff":     DefaultBackoff.String(),
		"timeout":     DefaultTimeout.String(),
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

// Validate returns an error when cfg couldn't be applied to a request
func (c Config) Validate() error {
	switch {
	case c.MaxRetries < 0:
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	case c.Backoff <= 0:
		return fmt.Errorf("backoff must be positive, got %s", c.Backoff)
	case c.Timeout <= 0:
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	return nil
}
