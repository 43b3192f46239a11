// Package internal holds the application-level configuration shared by
// every front end.
package internal

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Repository locking modes.
const (
	LockingNone  = "none"
	LockingFlock = "flock"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Repository RepositoryConfig  `yaml:"repository"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	return c.Repository.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// Editor is the command spawned to author note content when none is
	// supplied; empty falls back to $EDITOR.
	Editor string `yaml:"editor"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return nil
}

// RepositoryConfig holds the repository location and locking mode.
//
// Locking controls cross-process safety:
//   - "none" (default): the documented single-process contract; no locking.
//   - "flock": take an advisory file lock around every mutating operation,
//     for setups where two processes may share one repository.
type RepositoryConfig struct {
	Path    string `yaml:"path"`
	Locking string `yaml:"locking"`
}

// Validate validates the repository configuration.
func (c *RepositoryConfig) Validate() error {
	// Normalise empty mode to "none" for backward compatibility.
	if c.Locking == "" {
		c.Locking = LockingNone
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Locking, validation.Required, validation.In(LockingNone, LockingFlock)),
	)
}

// LockingEnabled returns true when advisory locking is active.
func (c *RepositoryConfig) LockingEnabled() bool {
	return c.Locking == LockingFlock
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Repository: RepositoryConfig{
			Path:    "./ansuz",
			Locking: LockingNone,
		},
	}
}
