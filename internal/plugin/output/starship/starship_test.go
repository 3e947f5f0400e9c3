package starship

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/kuntatinte/internal/plugin/output"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/common"
	plugintesting "github.com/jmylchreest/kuntatinte/internal/plugin/output/testing"
)

func newTestPlugin(t *testing.T, runner *common.MockProcessRunner) (*Plugin, string) {
	t.Helper()
	target := filepath.Join(t.TempDir(), "starship.toml")
	cfg := plugintesting.NewTestConfig(t, map[string]string{"starship_config": target})
	return New(cfg, common.WithRunner(runner)), target
}

func TestStarshipPlugin(t *testing.T) {
	p, _ := newTestPlugin(t, common.NewMockProcessRunner())
	plugintesting.TestBasicInterface(t, p, "starship")
	plugintesting.TestPreExecuteSkips(t, p)
	plugintesting.TestOptionalInterfaces(t, p, true, true, true)
}

func TestRenderPalette(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		palette output.Colours
		keys    []string
		want    string
	}{
		{
			name:    "replaces existing key",
			doc:     "[palettes.colors]\naccent = '#000000'\n\n[os]\ndisabled = false\n",
			palette: output.Colours{"accent": "#3daee9"},
			keys:    []string{"accent"},
			want:    "[palettes.colors]\naccent = '#3daee9'\n\n[os]\ndisabled = false\n",
		},
		{
			name:    "appends missing key to section",
			doc:     "[palette.colors]\naccent = \"#000000\"\n",
			palette: output.Colours{"accent": "#111111", "git_bg": "#222222"},
			keys:    []string{"accent", "git_bg"},
			want:    "[palette.colors]\naccent = '#111111'\ngit_bg = '#222222'\n",
		},
		{
			name:    "prefix keys are distinct",
			doc:     "[palettes.colors]\naccent_text = '#ffffff'\naccent = '#000000'\n",
			palette: output.Colours{"accent": "#123456"},
			keys:    []string{"accent"},
			want:    "[palettes.colors]\naccent_text = '#ffffff'\naccent = '#123456'\n",
		},
		{
			name:    "no palette section",
			doc:     "[os]\ndisabled = false\n",
			palette: output.Colours{"accent": "#123456"},
			keys:    []string{"accent"},
			want:    "[os]\ndisabled = false\n",
		},
		{
			name:    "section without trailing newline",
			doc:     "[palettes.colors]\naccent = '#000000'",
			palette: output.Colours{"dir_bg": "#abcdef"},
			keys:    []string{"dir_bg"},
			want:    "[palettes.colors]\naccent = '#000000'\ndir_bg = '#abcdef'\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderPalette(tt.doc, tt.palette, tt.keys); got != tt.want {
				t.Errorf("RenderPalette() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestBackupPath(t *testing.T) {
	tests := map[string]string{
		"/home/u/.config/starship.toml": "/home/u/.config/starship.toml.bak",
		"/tmp/prompt.conf":              "/tmp/prompt.toml.bak",
	}
	for in, want := range tests {
		if got := BackupPath(in); got != want {
			t.Errorf("BackupPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestApplyRestoreLoad(t *testing.T) {
	runner := common.NewMockProcessRunner("starship", "kitty")
	runner.Running["kitty"] = []int{4242}
	p, target := newTestPlugin(t, runner)
	ctx := context.Background()

	if err := p.Restore(ctx); err == nil || err.Error() != "No backup file found" {
		t.Fatalf("Restore() without backup error = %v", err)
	}

	original := "# hand written\n"
	if err := os.WriteFile(target, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	err := output.Execute(ctx, p, output.Colours{"accent": "#ff0000", "git_bg": ""})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "accent = '#ff0000'") {
		t.Error("accent not written")
	}
	if !strings.Contains(content, "git_bg = '#333a3f'") {
		t.Error("empty colour should fall back to the default")
	}

	if bak, _ := os.ReadFile(BackupPath(target)); string(bak) != original {
		t.Errorf("backup = %q, want the original file", bak)
	}
	if len(runner.Terminated) != 1 || runner.Terminated[0] != 4242 || len(runner.Starts) != 1 {
		t.Errorf("terminal not restarted: terminated %v, started %v", runner.Terminated, runner.Starts)
	}

	loaded, err := p.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded["accent"] != "#ff0000" || loaded["dir_text"] != "#ccdfee" {
		t.Errorf("Load() = %v", loaded)
	}

	if err := p.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if data, _ := os.ReadFile(target); string(data) != original {
		t.Errorf("restored file = %q, want %q", data, original)
	}
}

func TestApplyUsesCustomTemplate(t *testing.T) {
	p, target := newTestPlugin(t, common.NewMockProcessRunner("starship"))

	custom := p.Loader().CustomPath(TemplateName)
	if err := os.MkdirAll(filepath.Dir(custom), 0o755); err != nil {
		t.Fatal(err)
	}
	doc := "add_newline = false\n\n[palettes.colors]\naccent = 'x'\n"
	if err := os.WriteFile(custom, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := p.Apply(context.Background(), output.Colours{"accent": "#00ff00"}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	data, _ := os.ReadFile(target)
	if !strings.HasPrefix(string(data), "add_newline = false") || !strings.Contains(string(data), "accent = '#00ff00'") {
		t.Errorf("custom template not used:\n%s", data)
	}
}

func TestApplyRejectsInvalidTOML(t *testing.T) {
	p, target := newTestPlugin(t, common.NewMockProcessRunner("starship"))

	custom := p.Loader().CustomPath(TemplateName)
	if err := os.MkdirAll(filepath.Dir(custom), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(custom, []byte("this is = = not toml\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := p.Apply(context.Background(), nil); err == nil {
		t.Error("Apply() should reject a template that renders invalid TOML")
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("no config should be written on failure")
	}
}

func TestLoadMissingConfig(t *testing.T) {
	p, _ := newTestPlugin(t, common.NewMockProcessRunner())
	loaded, err := p.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != len(p.Keys()) || loaded["accent"] != "" {
		t.Errorf("Load() = %v, want every key empty", loaded)
	}
}
