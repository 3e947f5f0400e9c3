package template

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"starship.toml": {Data: []byte("[palettes.colors]\naccent = '#3daee9'\n")},
		"theme.css":     {Data: []byte("@define-color bg_color rgba_color;\n")},
		"embed.go":      {Data: []byte("package x\n")},
	}
}

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	return New("testplugin", testFS()).WithCustomBase(t.TempDir())
}

func writeCustom(t *testing.T, l *Loader, name, content string) {
	t.Helper()
	path := l.CustomPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create custom dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write custom template: %v", err)
	}
}

func TestLoader_Load(t *testing.T) {
	loader := newTestLoader(t)

	t.Run("loads embedded template when no custom exists", func(t *testing.T) {
		content, fromCustom, err := loader.Load("starship.toml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fromCustom {
			t.Error("expected embedded template, got custom")
		}
		if !strings.Contains(string(content), "[palettes.colors]") {
			t.Errorf("unexpected content %q", content)
		}
	})

	t.Run("loads custom template when it exists", func(t *testing.T) {
		writeCustom(t, loader, "starship.toml", "# custom\n")

		content, fromCustom, err := loader.Load("starship.toml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !fromCustom {
			t.Error("expected custom template, got embedded")
		}
		if string(content) != "# custom\n" {
			t.Errorf("got %q", content)
		}
	})

	t.Run("returns error for non-existent template", func(t *testing.T) {
		_, _, err := loader.Load("nonexistent.toml")
		if err == nil {
			t.Fatal("expected error for non-existent template")
		}
		if !strings.Contains(err.Error(), "Template file not found") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestLoader_Paths(t *testing.T) {
	loader := New("starship", testFS()).WithCustomBase("/home/user/.config/kuntatinte/templates")

	if got, want := loader.CustomDir(), "/home/user/.config/kuntatinte/templates/starship"; got != want {
		t.Errorf("CustomDir() = %q, want %q", got, want)
	}
	if got, want := loader.CustomPath("starship.toml"), "/home/user/.config/kuntatinte/templates/starship/starship.toml"; got != want {
		t.Errorf("CustomPath() = %q, want %q", got, want)
	}

	// An empty base keeps the previous one.
	loader.WithCustomBase("")
	if !strings.HasPrefix(loader.CustomDir(), "/home/user/") {
		t.Errorf("CustomDir() = %q after empty WithCustomBase", loader.CustomDir())
	}
}

func TestDefaultCustomBase(t *testing.T) {
	if got := DefaultCustomBase(); !strings.HasSuffix(got, filepath.Join(".config", "kuntatinte", "templates")) {
		t.Errorf("DefaultCustomBase() = %q", got)
	}
}

func TestLoader_ListEmbeddedTemplates(t *testing.T) {
	templates, err := newTestLoader(t).ListEmbeddedTemplates()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"starship.toml", "theme.css"}
	if !slices.Equal(templates, want) {
		t.Errorf("ListEmbeddedTemplates() = %v, want %v", templates, want)
	}
}

func TestLoader_DumpTemplate(t *testing.T) {
	loader := newTestLoader(t)

	t.Run("dumps template successfully", func(t *testing.T) {
		if err := loader.DumpTemplate("theme.css", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !loader.HasCustomTemplate("theme.css") {
			t.Error("custom template not created")
		}
	})

	t.Run("fails without force when template exists", func(t *testing.T) {
		err := loader.DumpTemplate("theme.css", false)
		if !errors.Is(err, ErrTemplateExists) {
			t.Errorf("DumpTemplate() error = %v, want ErrTemplateExists", err)
		}
	})

	t.Run("overwrites with force flag", func(t *testing.T) {
		writeCustom(t, loader, "theme.css", "edited")
		if err := loader.DumpTemplate("theme.css", true); err != nil {
			t.Fatalf("unexpected error with force flag: %v", err)
		}
		data, _ := os.ReadFile(loader.CustomPath("theme.css"))
		if string(data) == "edited" {
			t.Error("force did not overwrite the custom template")
		}
	})

	t.Run("returns error for non-existent template", func(t *testing.T) {
		if err := loader.DumpTemplate("nonexistent.css", false); err == nil {
			t.Error("expected error for non-existent template")
		}
	})
}

func TestLoader_DumpAllTemplates(t *testing.T) {
	loader := newTestLoader(t)

	dumped, err := loader.DumpAllTemplates(false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dumped) != 2 {
		t.Fatalf("dumped %d templates, want 2", len(dumped))
	}
	for _, path := range dumped {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("dumped file not found: %s (%v)", path, err)
		}
	}

	dumped, err = loader.DumpAllTemplates(false)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second dump error = %v, want already exists", err)
	}
	if len(dumped) != 0 {
		t.Errorf("second dump wrote %d files, want 0", len(dumped))
	}

	if dumped, err := loader.DumpAllTemplates(true); err != nil || len(dumped) != 2 {
		t.Errorf("forced dump = (%d, %v), want (2, nil)", len(dumped), err)
	}
}

func TestLoader_Materialise(t *testing.T) {
	loader := newTestLoader(t)

	path, err := loader.Materialise("theme.css")
	if err != nil {
		t.Fatalf("Materialise() error = %v", err)
	}
	if path != loader.CustomPath("theme.css") {
		t.Errorf("Materialise() = %q", path)
	}

	writeCustom(t, loader, "theme.css", "mine")
	path, err = loader.Materialise("theme.css")
	if err != nil {
		t.Fatalf("Materialise() error = %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "mine" {
		t.Errorf("Materialise() replaced a custom template: %q", data)
	}
}

func TestLoader_GetInfo(t *testing.T) {
	loader := newTestLoader(t)

	info := loader.GetInfo("starship.toml")
	if !info.EmbeddedExists || info.CustomExists || info.UsingCustom() {
		t.Errorf("embedded-only info = %+v", info)
	}

	writeCustom(t, loader, "starship.toml", "x")
	info = loader.GetInfo("starship.toml")
	if !info.CustomExists || !info.UsingCustom() || info.Plugin != "testplugin" {
		t.Errorf("custom info = %+v", info)
	}
}
