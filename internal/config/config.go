package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Scheduler policy names accepted in configuration.
const (
	PolicyConstant    = "constant"
	PolicyWarmRestart = "warm_restart"
)

// Config represents the application configuration
type Config struct {
	AppName   string          `json:"app_name"`
	Version   string          `json:"version"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Training  TrainingConfig  `json:"training"`
	Interface InterfaceConfig `json:"interface"`
}

// SchedulerConfig selects the learning rate policy and its hyperparameters.
// Rate is used by the constant policy; the remaining fields configure the
// warm-restart cosine schedule.
type SchedulerConfig struct {
	Policy          string  `json:"policy"`
	Rate            float64 `json:"rate"`
	MinRate         float64 `json:"min_rate"`
	MaxRate         float64 `json:"max_rate"`
	BasePeriod      int     `json:"base_period"`
	DiscountFactor  float64 `json:"discount_factor"`
	ExpansionFactor float64 `json:"expansion_factor"`
}

// TrainingConfig contains training loop and model settings
type TrainingConfig struct {
	Epochs     int     `json:"epochs"`
	BatchSize  int     `json:"batch_size"`
	Samples    int     `json:"samples"`
	InputSize  int     `json:"input_size"`
	HiddenSize int     `json:"hidden_size"`
	OutputSize int     `json:"output_size"`
	Momentum   float64 `json:"momentum"`
	Seed       int64   `json:"seed"`
}

// InterfaceConfig contains logging settings
type InterfaceConfig struct {
	LogLevel string `json:"log_level"`
	LogPath  string `json:"log_path"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		AppName: "annealer",
		Version: "0.1.0",
		Scheduler: SchedulerConfig{
			Policy:          PolicyWarmRestart,
			Rate:            0.01,
			MinRate:         0.0001,
			MaxRate:         0.05,
			BasePeriod:      10,
			DiscountFactor:  0.9,
			ExpansionFactor: 1.0,
		},
		Training: TrainingConfig{
			Epochs:     50,
			BatchSize:  32,
			Samples:    512,
			InputSize:  8,
			HiddenSize: 16,
			OutputSize: 1,
			Momentum:   0.9,
			Seed:       42,
		},
		Interface: InterfaceConfig{
			LogLevel: "info",
			LogPath:  "logs/annealer.log",
		},
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	switch c.Scheduler.Policy {
	case PolicyConstant:
		if c.Scheduler.Rate <= 0 {
			return fmt.Errorf("constant policy rate must be positive, got %g", c.Scheduler.Rate)
		}
	case PolicyWarmRestart:
		if c.Scheduler.BasePeriod <= 0 {
			return fmt.Errorf("base period must be positive, got %d", c.Scheduler.BasePeriod)
		}
		if c.Scheduler.MinRate > c.Scheduler.MaxRate {
			return fmt.Errorf("min rate %g exceeds max rate %g", c.Scheduler.MinRate, c.Scheduler.MaxRate)
		}
	default:
		return fmt.Errorf("unknown scheduler policy %q", c.Scheduler.Policy)
	}

	if c.Training.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive, got %d", c.Training.Epochs)
	}
	if c.Training.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.Training.BatchSize)
	}
	if c.Training.Samples < c.Training.BatchSize {
		return fmt.Errorf("samples (%d) must cover at least one batch (%d)", c.Training.Samples, c.Training.BatchSize)
	}
	if c.Training.InputSize <= 0 || c.Training.HiddenSize <= 0 || c.Training.OutputSize <= 0 {
		return fmt.Errorf("model dimensions must be positive")
	}

	return nil
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault loads the configuration file, falling back to defaults
// when the file is missing or unreadable
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates the directories referenced by the configuration
func (c *Config) EnsureDirectories() error {
	if c.Interface.LogPath == "" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(c.Interface.LogPath), 0755)
}
