// Package testutil provides shared test helpers for setting up repositories.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/organization"
	"github.com/starford/ansuz/internal/store"
)

// TestRepo initializes a fresh repository under a temporary directory that
// is automatically cleaned up.
func TestRepo(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Init(filepath.Join(t.TempDir(), "repo"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// TestOrg returns an organization engine over a fresh repository.
func TestOrg(t *testing.T) *organization.Organization {
	t.Helper()
	return organization.New(TestRepo(t))
}
