package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Levels.I != 4 || cfg.Levels.J != 5 || cfg.Levels.K != 4 || cfg.Levels.L != 2 {
		t.Errorf("default levels %+v", cfg.Levels)
	}
	if cfg.Duplication < 1 {
		t.Error("duplication should be at least 1")
	}
	if cfg.LJ14Scale <= 0 || cfg.Coulomb14Scale <= 0 {
		t.Error("1-4 scales should be positive")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("levels:\n  k: 5\nduplication: 2\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Levels.K != 5 {
		t.Errorf("levels.k = %d, want 5", cfg.Levels.K)
	}
	if cfg.Duplication != 2 {
		t.Errorf("duplication = %d, want 2", cfg.Duplication)
	}
	// Untouched fields keep defaults.
	if cfg.Levels.J != DefaultLevelsJ {
		t.Errorf("levels.j = %d, want default %d", cfg.Levels.J, DefaultLevelsJ)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Duplication = 7

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Duplication != 7 {
		t.Errorf("duplication = %d, want 7", loaded.Duplication)
	}
}
