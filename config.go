package llmselector

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the top-level selector configuration.
type Config struct {
	MinGenerationTokens int            `yaml:"min_generation_tokens" toml:"min_generation_tokens"`
	GenerationRatio     *float64       `yaml:"generation_ratio" toml:"generation_ratio"`
	ContextWindows      []WindowConfig `yaml:"context_windows" toml:"context_windows"`
	Rules               []RuleConfig   `yaml:"rules" toml:"rules"`
}

// WindowConfig declares the context window of models matching Pattern.
type WindowConfig struct {
	Pattern   string `yaml:"pattern" toml:"pattern"`
	MaxTokens int    `yaml:"max_tokens" toml:"max_tokens"`
}

// RuleConfig configures one backend rule. When MaxTokens is zero the
// threshold is derived from the model name.
type RuleConfig struct {
	Provider    string   `yaml:"provider" toml:"provider"`
	Model       string   `yaml:"model" toml:"model"`
	MaxTokens   int      `yaml:"max_tokens" toml:"max_tokens"`
	BaseURL     string   `yaml:"base_url" toml:"base_url"`
	APIKey      string   `yaml:"api_key" toml:"api_key"`
	Temperature *float64 `yaml:"temperature" toml:"temperature"`
}

// BackendFactory builds a backend handle from a rule configuration.
type BackendFactory func(rc RuleConfig) (Backend, error)

// LoadConfig reads and parses a YAML or TOML (by .toml extension) config file.
// Environment variables in the format ${VAR} are expanded before parsing.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("llmselector: read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return Config{}, fmt.Errorf("llmselector: parse config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return Config{}, fmt.Errorf("llmselector: parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the config for required fields and consistency.
func (c Config) Validate() error {
	if len(c.Rules) == 0 {
		return fmt.Errorf("%w: config: at least one rule is required", ErrConfiguration)
	}
	if c.MinGenerationTokens < 0 {
		return fmt.Errorf("%w: config: min_generation_tokens must not be negative", ErrConfiguration)
	}
	if c.GenerationRatio != nil && *c.GenerationRatio < 0 {
		return fmt.Errorf("%w: config: generation_ratio must not be negative", ErrConfiguration)
	}

	for i, w := range c.ContextWindows {
		if _, err := ParseContextWindow(w.Pattern, w.MaxTokens); err != nil {
			return fmt.Errorf("config: context_windows[%d]: %w", i, err)
		}
	}

	for i, r := range c.Rules {
		if r.Model == "" {
			return fmt.Errorf("%w: config: rules[%d]: model is required", ErrConfiguration, i)
		}
		if r.MaxTokens < 0 {
			return fmt.Errorf("%w: config: rules[%d] (%s): max_tokens must not be negative", ErrConfiguration, i, r.Model)
		}
	}

	return nil
}

// Options converts the selector-wide settings into Options.
func (c Config) Options() ([]Option, error) {
	opts := []Option{WithMinGenerationTokens(c.MinGenerationTokens)}
	if c.GenerationRatio != nil {
		opts = append(opts, WithGenerationRatio(*c.GenerationRatio))
	}

	if len(c.ContextWindows) > 0 {
		windows := make(ContextWindows, 0, len(c.ContextWindows))
		for i, w := range c.ContextWindows {
			cw, err := ParseContextWindow(w.Pattern, w.MaxTokens)
			if err != nil {
				return nil, fmt.Errorf("config: context_windows[%d]: %w", i, err)
			}
			windows = append(windows, cw)
		}
		opts = append(opts, WithContextWindows(windows))
	}
	return opts, nil
}

// NewSelectorFromConfig builds a Selector with one rule per configured backend.
// Options passed by the caller are applied after those derived from cfg.
func NewSelectorFromConfig(cfg Config, factory BackendFactory, opts ...Option) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: backend factory is required", ErrConfiguration)
	}

	cfgOpts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	s := NewSelector(append(cfgOpts, opts...)...)

	for i, rc := range cfg.Rules {
		b, err := factory(rc)
		if err != nil {
			return nil, fmt.Errorf("llmselector: config: rules[%d] (%s): %w", i, rc.Model, err)
		}
		if rc.MaxTokens > 0 {
			err = s.AddRule(b, rc.MaxTokens)
		} else {
			err = s.AddBackend(b)
		}
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}
