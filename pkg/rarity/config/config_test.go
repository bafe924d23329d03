package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/rarity/pkg/rarity/internalerr"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Empty path should succeed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rarity.yaml")
	os.WriteFile(path, []byte("algorithm: information_content\nworkers: 8\ndb_path: /tmp/r.db\n"), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Algorithm != "information_content" || cfg.Workers != 8 || cfg.DBPath != "/tmp/r.db" {
		t.Errorf("Unexpected config %+v", cfg)
	}
	// untouched fields keep defaults
	if cfg.ListenAddr != ":8080" {
		t.Errorf("Expected default listen addr, got %q", cfg.ListenAddr)
	}

	s, err := cfg.Scorer()
	if err != nil {
		t.Fatalf("Scorer: %v", err)
	}
	if s.LowerIsRarer() {
		t.Error("information_content should rank higher scores as rarer")
	}
}

func TestLoadNonExistent(t *testing.T) {
	if _, err := Load("/nonexistent/rarity.yaml"); err == nil {
		t.Error("Should error on nonexistent config")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("workers: [unclosed\n"), 0644)

	if _, err := Load(path); err == nil {
		t.Error("Should error on malformed YAML")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("RARITY_ALGORITHM", "openrarity")
	t.Setenv("RARITY_WORKERS", "2")
	t.Setenv("RARITY_TOP_K", "10")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Algorithm != "openrarity" || cfg.Workers != 2 || cfg.TopK != 10 {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Alias algorithm should validate: %v", err)
	}
}

func TestApplyEnvBadInt(t *testing.T) {
	t.Setenv("RARITY_WORKERS", "many")

	cfg := Default()
	if err := cfg.ApplyEnv(); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Algorithm = "harmonic"
	if err := cfg.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Unknown algorithm should fail validation, got %v", err)
	}

	cfg = Default()
	cfg.Workers = -1
	if err := cfg.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Negative workers should fail validation, got %v", err)
	}
}
