package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "none.toml"), nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := c.GetString(SectionPaths, "starship_config", ""); got != "~/.config/starship.toml" {
		t.Errorf("starship_config = %q", got)
	}
	if got := c.MinHeight(); got != 700 {
		t.Errorf("MinHeight() = %d, want 700", got)
	}
	if !c.LeftPanelVisible() || c.RightPanelVisible() {
		t.Error("unexpected default panel visibility")
	}
	if got := c.Get("nope", "missing", 42); got != 42 {
		t.Errorf("Get() with unknown key = %v, want the supplied default", got)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
[paths]
starship_config = "/tmp/starship.toml"

[ui]
debug_ui = true
min_height = 900

[ui.panel_width]
fastfetch = 300
starship = 320
`)
	c, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := c.StarshipConfig(); got != "/tmp/starship.toml" {
		t.Errorf("StarshipConfig() = %q", got)
	}
	if !c.DebugUI() || c.MinHeight() != 900 {
		t.Errorf("ui overlay not applied: debug=%v min_height=%d", c.DebugUI(), c.MinHeight())
	}
	if got := c.GetString(SectionPaths, "fastfetch_config_dir", ""); got != "~/.config/fastfetch" {
		t.Errorf("unset key should come from defaults, got %q", got)
	}

	tests := []struct {
		name string
		want int
	}{
		{"Starship", 320},
		{"fastfetch", 300},
		{"Kuntatinte Color Scheme", 300},
	}
	for _, tt := range tests {
		if got := c.PanelWidth(tt.name); got != tt.want {
			t.Errorf("PanelWidth(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestPanelWidthDefaults(t *testing.T) {
	c, _ := Load(filepath.Join(t.TempDir(), "none.toml"), nil)
	tests := []struct {
		name string
		want int
	}{
		{"Kuntatinte Color Scheme", 520},
		{"ulauncher", 380},
		{"central_panel", 400},
		{"unknown panel", 280},
	}
	for _, tt := range tests {
		if got := c.PanelWidth(tt.name); got != tt.want {
			t.Errorf("PanelWidth(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestLoadInvalidFileFallsBack(t *testing.T) {
	c, err := Load(writeConfig(t, "this is = = not toml"), nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := c.MinHeight(); got != 700 {
		t.Errorf("MinHeight() = %d, want default 700", got)
	}
}

func TestSetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	c, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("starship", "accent", "#abcdef"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := c.Set(SectionUI, "min_height", 640); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	reloaded, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.GetString("starship", "accent", ""); got != "#abcdef" {
		t.Errorf("reloaded accent = %q", got)
	}
	if got := reloaded.MinHeight(); got != 640 {
		t.Errorf("reloaded min_height = %d", got)
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	c, _ := Load(path, nil)

	wrote, err := c.Init()
	if err != nil || !wrote {
		t.Fatalf("Init() = %v, %v", wrote, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "ulauncher_theme_dir") {
		t.Errorf("generated config missing defaults:\n%s", data)
	}

	reloaded, _ := Load(path, nil)
	if got := reloaded.PanelWidth("ulauncher"); got != 380 {
		t.Errorf("PanelWidth from generated file = %d", got)
	}

	wrote, err = c.Init()
	if err != nil || wrote {
		t.Errorf("second Init() = %v, %v, want no write", wrote, err)
	}
}

func TestPathHelpers(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true

	c, _ := Load(filepath.Join(t.TempDir(), "none.toml"), nil)
	if got, want := c.CacheDir(), filepath.Join(home, ".cache", "kuntatinte"); got != want {
		t.Errorf("CacheDir() = %q, want %q", got, want)
	}
	if got := c.WallpapersFolder(); got != home {
		t.Errorf("WallpapersFolder() without Pictures = %q, want %q", got, home)
	}
	if err := os.Mkdir(filepath.Join(home, "Pictures"), 0o755); err != nil {
		t.Fatal(err)
	}
	if got := c.WallpapersFolder(); got != filepath.Join(home, "Pictures") {
		t.Errorf("WallpapersFolder() = %q", got)
	}
	if got := c.FastfetchCustomLogo(); got != "" {
		t.Errorf("FastfetchCustomLogo() = %q, want empty", got)
	}

	c.SetNoSave(SectionCache, "cache_dir", "/var/tmp/kt")
	if got := c.CacheDir(); got != "/var/tmp/kt" {
		t.Errorf("absolute CacheDir() = %q", got)
	}
}
