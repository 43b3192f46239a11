package internal

import (
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestRepositoryConfig_EmptyLockingDefaultsNone(t *testing.T) {
	cfg := RepositoryConfig{Path: "./repo", Locking: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty locking should default to none: %v", err)
	}
	if cfg.Locking != LockingNone {
		t.Errorf("locking = %q, want %q", cfg.Locking, LockingNone)
	}
	if cfg.LockingEnabled() {
		t.Error("none mode should not be enabled")
	}
}

func TestRepositoryConfig_FlockMode(t *testing.T) {
	cfg := RepositoryConfig{Path: "./repo", Locking: "flock"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("flock mode should pass: %v", err)
	}
	if !cfg.LockingEnabled() {
		t.Error("flock mode should be enabled")
	}
}

func TestRepositoryConfig_InvalidLocking(t *testing.T) {
	cfg := RepositoryConfig{Path: "./repo", Locking: "mutex"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid locking mode should fail validation")
	}
}

func TestRepositoryConfig_MissingPath(t *testing.T) {
	cfg := RepositoryConfig{Path: ""}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing path should fail validation")
	}
}
