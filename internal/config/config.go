// Package config loads the tiering configuration from tiervm.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the tiervm.yaml configuration.
type Config struct {
	// CompileThreshold is the invocation count at which a function is
	// compiled. A failed attempt is retried after another window of the
	// same size.
	CompileThreshold int64 `yaml:"compile_threshold"`

	// MaxCompileAttempts bounds the retries after failures other than
	// generator contract violations, which end tiering immediately.
	MaxCompileAttempts int `yaml:"max_compile_attempts"`

	// RecompileAfterDeopts is the number of argument guard failures after
	// which a compiled function is recompiled from its refreshed profile.
	RecompileAfterDeopts int64 `yaml:"recompile_after_deopts"`

	// Interpreter selects the interpreted tier: "abstract" (profiling) or
	// "tree" (reference tree walker, no profiles).
	Interpreter string `yaml:"interpreter,omitempty"`

	// Trace logs tier transitions, compilation failures and deopts.
	Trace bool `yaml:"trace,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a tiervm.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses tiervm.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for tiervm.yaml starting from dir and walking up
// to parent directories.
// Returns the path to the config file and nil error if found,
// or empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// Resolve loads the config found from dir, or the defaults when there is
// none.
func Resolve(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return LoadConfig(path)
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.CompileThreshold < 0 {
		return fmt.Errorf("%s: compile_threshold must not be negative", path)
	}
	if c.MaxCompileAttempts < 0 {
		return fmt.Errorf("%s: max_compile_attempts must not be negative", path)
	}
	if c.RecompileAfterDeopts < 0 {
		return fmt.Errorf("%s: recompile_after_deopts must not be negative", path)
	}
	switch c.Interpreter {
	case "", InterpreterAbstract, InterpreterTree:
	default:
		return fmt.Errorf("%s: unknown interpreter %q (want %q or %q)",
			path, c.Interpreter, InterpreterAbstract, InterpreterTree)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.CompileThreshold == 0 {
		c.CompileThreshold = DefaultCompileThreshold
	}
	if c.MaxCompileAttempts == 0 {
		c.MaxCompileAttempts = DefaultMaxCompileAttempts
	}
	if c.RecompileAfterDeopts == 0 {
		c.RecompileAfterDeopts = DefaultRecompileAfterDeopts
	}
	if c.Interpreter == "" {
		c.Interpreter = DefaultInterpreter
	}
}
