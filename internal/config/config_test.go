package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if cfg.AppName != "annealer" {
		t.Errorf("Expected AppName 'annealer', got %s", cfg.AppName)
	}

	if cfg.Version == "" {
		t.Error("Version not set")
	}

	if cfg.Scheduler.Policy != PolicyWarmRestart {
		t.Errorf("Expected default policy %q, got %q", PolicyWarmRestart, cfg.Scheduler.Policy)
	}

	if cfg.Scheduler.BasePeriod != 10 {
		t.Errorf("Expected BasePeriod 10, got %d", cfg.Scheduler.BasePeriod)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()

	// Valid config should pass
	if err := cfg.Validate(); err != nil {
		t.Errorf("Valid config failed validation: %v", err)
	}

	// Test invalid base period
	cfg.Scheduler.BasePeriod = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for invalid base period")
	}
	cfg.Scheduler.BasePeriod = 10

	// Test inverted rate bounds
	cfg.Scheduler.MinRate = 1.0
	cfg.Scheduler.MaxRate = 0.01
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for min rate above max rate")
	}
	cfg.Scheduler.MinRate = 0.0001
	cfg.Scheduler.MaxRate = 0.05

	// Test unknown policy
	cfg.Scheduler.Policy = "linear"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for unknown policy")
	}
	cfg.Scheduler.Policy = PolicyConstant

	// Constant policy needs a positive rate
	cfg.Scheduler.Rate = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for non-positive constant rate")
	}
	cfg.Scheduler.Rate = 0.01

	// Test invalid batch size
	cfg.Training.BatchSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for invalid batch size")
	}
	cfg.Training.BatchSize = 32

	// Test invalid epochs
	cfg.Training.Epochs = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for invalid epochs")
	}
}

func TestConfigSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	// Create and save config
	cfg := DefaultConfig()
	cfg.AppName = "TestApp"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	// Check file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	// Load config
	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.AppName != "TestApp" {
		t.Errorf("Expected AppName 'TestApp', got %s", loaded.AppName)
	}

	if loaded.Scheduler.MaxRate != cfg.Scheduler.MaxRate {
		t.Errorf("MaxRate did not round-trip: %v vs %v", loaded.Scheduler.MaxRate, cfg.Scheduler.MaxRate)
	}
}

func TestLoadOrDefault(t *testing.T) {
	// Test with non-existent file
	cfg := LoadOrDefault("nonexistent.json")
	if cfg == nil {
		t.Fatal("LoadOrDefault returned nil")
	}

	if cfg.AppName != "annealer" {
		t.Error("LoadOrDefault did not return default config")
	}

	// Test with existing file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	testCfg := DefaultConfig()
	testCfg.AppName = "CustomName"
	testCfg.Save(configPath)

	loaded := LoadOrDefault(configPath)
	if loaded.AppName != "CustomName" {
		t.Error("LoadOrDefault did not load existing config")
	}
}

func TestEnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Interface.LogPath = filepath.Join(tmpDir, "logs", "test.log")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("Failed to ensure directories: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "logs")); os.IsNotExist(err) {
		t.Error("Log directory was not created")
	}
}
