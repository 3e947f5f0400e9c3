// Package testing provides shared test utilities for integration plugins.
package testing

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmylchreest/kuntatinte/internal/colour"
	"github.com/jmylchreest/kuntatinte/internal/config"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output"
)

// NewTestConfig returns a config rooted in a temporary directory, so
// TemplatesDir and Save never touch the real home directory. The given
// [paths] values are set without saving.
func NewTestConfig(t *testing.T, paths map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.toml"), nil)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	for k, v := range paths {
		cfg.SetNoSave(config.SectionPaths, k, v)
	}
	return cfg
}

// TestBasicInterface tests the methods every plugin implements.
func TestBasicInterface(t *testing.T, p output.Plugin, expectedName string) {
	t.Run("Name", func(t *testing.T) {
		if p.Name() != expectedName {
			t.Errorf("Name() = %s, want %s", p.Name(), expectedName)
		}
	})

	t.Run("Description", func(t *testing.T) {
		if p.Description() == "" {
			t.Error("Description() should not be empty")
		}
	})

	t.Run("Keys", func(t *testing.T) {
		keys := p.Keys()
		if len(keys) == 0 {
			t.Fatal("Keys() should not be empty")
		}
		seen := make(map[string]bool)
		for _, k := range keys {
			if seen[k] {
				t.Errorf("Keys() repeats %q", k)
			}
			seen[k] = true
		}
	})

	t.Run("DefaultColours", func(t *testing.T) {
		defaults := p.DefaultColours()
		for _, k := range p.Keys() {
			v, ok := defaults[k]
			if !ok {
				t.Errorf("DefaultColours() has no entry for %q", k)
				continue
			}
			if _, err := colour.ParseHex(v); err != nil {
				t.Errorf("DefaultColours()[%q] = %q is not a hex colour", k, v)
			}
		}

		// Callers may modify the returned map.
		k := p.Keys()[0]
		want := defaults[k]
		defaults[k] = "#010203"
		if got := p.DefaultColours()[k]; got != want {
			t.Errorf("DefaultColours() returned shared state: %q changed to %q", want, got)
		}
	})
}

// TestPreExecuteSkips checks that a plugin whose application is missing is
// skipped instead of applied.
func TestPreExecuteSkips(t *testing.T, p output.Plugin) {
	t.Run("PreExecuteSkips", func(t *testing.T) {
		hook, ok := p.(output.PreExecuteHook)
		if !ok {
			t.Skip("Plugin does not implement PreExecute")
		}
		skip, reason, err := hook.PreExecute(context.Background())
		if err != nil {
			t.Fatalf("PreExecute() error = %v", err)
		}
		if !skip || reason == "" {
			t.Errorf("PreExecute() = (%v, %q), want a skip with a reason", skip, reason)
		}

		err = output.Execute(context.Background(), p, p.DefaultColours())
		var skipErr *output.SkipError
		if !errors.As(err, &skipErr) {
			t.Errorf("Execute() error = %v, want *output.SkipError", err)
		}
	})
}

// TestOptionalInterfaces checks which optional interfaces a plugin exposes.
func TestOptionalInterfaces(t *testing.T, p output.Plugin, restorer, loader, refresher bool) {
	t.Run("OptionalInterfaces", func(t *testing.T) {
		if _, ok := p.(output.Restorer); ok != restorer {
			t.Errorf("Restorer = %v, want %v", ok, restorer)
		}
		if _, ok := p.(output.ColourLoader); ok != loader {
			t.Errorf("ColourLoader = %v, want %v", ok, loader)
		}
		if _, ok := p.(output.Refresher); ok != refresher {
			t.Errorf("Refresher = %v, want %v", ok, refresher)
		}
	})
}
