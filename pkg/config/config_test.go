package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MaxWorkers != 12 {
		t.Errorf("MaxWorkers = %d, want 12", cfg.MaxWorkers)
	}
	if cfg.FuzzyMinPrefix != 20 {
		t.Errorf("FuzzyMinPrefix = %d, want 20", cfg.FuzzyMinPrefix)
	}
	if len(cfg.NoiseSuffixes) == 0 {
		t.Error("expected default noise suffixes")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("workers: 3\nmax_workers: 6\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
	if cfg.MaxWorkers != 6 {
		t.Errorf("MaxWorkers = %d, want 6", cfg.MaxWorkers)
	}
	if cfg.ReverseMinLength != 10 {
		t.Errorf("ReverseMinLength = %d, want 10 (default)", cfg.ReverseMinLength)
	}
}

func TestLoad_BrokenFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("workers: [not an int\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for broken config file")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Workers = 8
	cfg.NoiseSuffixes = []string{"-edited"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Workers != 8 {
		t.Errorf("Workers = %d, want 8", loaded.Workers)
	}
	if len(loaded.NoiseSuffixes) != 1 || loaded.NoiseSuffixes[0] != "-edited" {
		t.Errorf("NoiseSuffixes = %v, want [-edited]", loaded.NoiseSuffixes)
	}
}

func TestEffectiveWorkers_Clamped(t *testing.T) {
	cfg := &Config{Workers: 64, MaxWorkers: 12}
	if got := cfg.EffectiveWorkers(); got != 12 {
		t.Errorf("EffectiveWorkers = %d, want 12", got)
	}

	cfg = &Config{Workers: 2, MaxWorkers: 12}
	if got := cfg.EffectiveWorkers(); got != 2 {
		t.Errorf("EffectiveWorkers = %d, want 2", got)
	}

	// Derived from CPU count but never below 1 or above the cap.
	cfg = &Config{Workers: 0, MaxWorkers: 1}
	if got := cfg.EffectiveWorkers(); got != 1 {
		t.Errorf("EffectiveWorkers = %d, want 1", got)
	}
}
