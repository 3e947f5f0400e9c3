package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"false", false},
		{"42", int64(42)},
		{"-3", int64(-3)},
		{"1", int64(1)},
		{"foot", "foot"},
		{"TRUE", "TRUE"},
		{"4.5", "4.5"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseValue(tt.in); got != tt.want {
				t.Errorf("parseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeAll(t *testing.T) {
	got, err := normalizeAll([]string{"#ABCDEF", "#123456"})
	if err != nil {
		t.Fatalf("normalizeAll() error = %v", err)
	}
	if strings.Join(got, " ") != "#abcdef #123456" {
		t.Errorf("normalizeAll() = %v", got)
	}

	if _, err := normalizeAll([]string{"#123456", "nope"}); err == nil {
		t.Error("expected an error for an invalid colour")
	}
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if _, err := execute(t, "--config", path, "config", "set", "ui", "left_panel_visible", "false"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, err := execute(t, "--config", path, "config", "get", "ui", "left_panel_visible")
	if err != nil {
		t.Fatalf("config get: %v", err)
	}
	if strings.TrimSpace(out) != "false" {
		t.Errorf("config get = %q, want false", out)
	}

	out, err = execute(t, "--config", path, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, want %q", out, path)
	}

	if _, err := execute(t, "--config", path, "config", "get", "ui", "missing"); err == nil {
		t.Error("expected an error for a missing key")
	}
}

func TestVariantCommand(t *testing.T) {
	out, err := execute(t, "--config", filepath.Join(t.TempDir(), "config.toml"), "variant", "50", "#3daee9", "#ff8800")
	if err != nil {
		t.Fatalf("variant: %v", err)
	}
	lines := strings.Fields(out)
	if len(lines) != 2 {
		t.Fatalf("variant printed %q, want two colours", out)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "#") || len(l) != 7 {
			t.Errorf("unexpected colour %q", l)
		}
	}

	if _, err := execute(t, "variant", "150", "#3daee9"); err == nil {
		t.Error("expected an error for an out of range percent")
	}
}

func TestDashedFlags(t *testing.T) {
	if got := dashedFlags(nil, "primary_index"); got != "primary-index" {
		t.Errorf("dashedFlags() = %q, want primary-index", got)
	}
	if f := schemeGenerateCmd.Flags().Lookup("toolbar_opacity"); f == nil || f.Name != "toolbar-opacity" {
		t.Errorf("toolbar_opacity did not resolve to --toolbar-opacity: %v", f)
	}
}

func TestSchemePaletteNeedsEightColours(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "config.toml"), "scheme", "palette", "#3daee9", "#ff8800")
	if err == nil || !strings.Contains(err.Error(), "at least 8") {
		t.Errorf("scheme palette error = %v, want a palette size error", err)
	}
}

func TestFastfetchLogoArgs(t *testing.T) {
	if _, err := execute(t, "--config", filepath.Join(t.TempDir(), "config.toml"), "fastfetch", "logo"); err == nil {
		t.Error("expected an error without an image or --reset")
	}
}

func TestOrDash(t *testing.T) {
	if got := orDash(""); got != "-" {
		t.Errorf("orDash(\"\") = %q", got)
	}
	if got := orDash("/a"); got != "/a" {
		t.Errorf("orDash(/a) = %q", got)
	}
}
