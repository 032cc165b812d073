package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the tool. It is loaded once at startup and
// passed into the services at construction; nothing reads it from ambient
// state.
type Config struct {
	// Worker pool
	Workers    int `yaml:"workers"`     // 0 = derive from CPU count
	MaxWorkers int `yaml:"max_workers"` // hard cap on concurrent exiftool processes

	// Per-file exiftool invocation timeout in seconds. 0 disables the timeout.
	ToolTimeoutSeconds int `yaml:"tool_timeout_seconds"`

	// Pairing tunables. The noise-suffix list and the fuzzy prefix threshold
	// are deliberately configuration, not code: Google's naming quirks keep
	// changing and the observed behavior is underspecified.
	FuzzyMinPrefix   int      `yaml:"fuzzy_min_prefix"`
	ReverseMinLength int      `yaml:"reverse_min_length"`
	NoiseSuffixes    []string `yaml:"noise_suffixes"`

	// Progress line cadence (completions between PROGRESS log lines).
	ProgressEvery int `yaml:"progress_every"`

	// Watch mode debounce in milliseconds.
	WatchDebounceMS int `yaml:"watch_debounce_ms"`

	// UI settings
	ColorTheme string `yaml:"color_theme"` // "auto", "dark", "light"
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:            0,
		MaxWorkers:         12,
		ToolTimeoutSeconds: 0,
		FuzzyMinPrefix:     20,
		ReverseMinLength:   10,
		NoiseSuffixes:      []string{"-edited", "-EFFECTS", "-COLLAGE", "-ANIMATION"},
		ProgressEvery:      100,
		WatchDebounceMS:    500,
		ColorTheme:         "auto",
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "takeoutfix", "config.yaml")
}

// Load reads configuration from path, falling back to defaults when the file
// does not exist. A present-but-broken file is an error; silently ignoring it
// would hide typos in the noise-suffix list.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 12
	}
	if cfg.FuzzyMinPrefix <= 0 {
		cfg.FuzzyMinPrefix = 20
	}
	if cfg.ReverseMinLength <= 0 {
		cfg.ReverseMinLength = 10
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 100
	}
	if cfg.WatchDebounceMS <= 0 {
		cfg.WatchDebounceMS = 500
	}
	if cfg.NoiseSuffixes == nil {
		cfg.NoiseSuffixes = DefaultConfig().NoiseSuffixes
	}

	return cfg, nil
}

// Save persists the configuration to path, creating directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// EffectiveWorkers resolves the worker count: the configured value when set,
// otherwise the CPU count, always clamped to MaxWorkers. Each worker runs its
// own exiftool process, so the cap bounds OS processes, not just goroutines.
func (c *Config) EffectiveWorkers() int {
	n := c.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > c.MaxWorkers {
		n = c.MaxWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}
