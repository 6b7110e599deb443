package testsupport

import (
	"context"
	"testing"

	"clipflow/internal/config"
	"clipflow/internal/project"
)

// MustOpenStore opens a project.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *project.Store {
	t.Helper()

	store, err := project.Open(cfg)
	if err != nil {
		t.Fatalf("project.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewProject creates a project with settings taken from cfg.
func NewProject(t testing.TB, store *project.Store, cfg *config.Config, name string) *project.Project {
	t.Helper()

	p, err := store.Create(context.Background(), name, project.SettingsFromConfig(cfg))
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return p
}
