package colorscheme

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/jmylchreest/kuntatinte/internal/config"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/common"
	plugintesting "github.com/jmylchreest/kuntatinte/internal/plugin/output/testing"
)

func newTestPlugin(t *testing.T, runner *common.MockProcessRunner) *Plugin {
	t.Helper()
	cfg := plugintesting.NewTestConfig(t, nil)
	cfg.SetNoSave(config.SectionCache, "cache_dir", filepath.Join(t.TempDir(), "cache"))
	p := New(cfg, common.WithRunner(runner))
	p.store.UserDir = filepath.Join(t.TempDir(), "color-schemes")
	p.store.SystemDir = filepath.Join(t.TempDir(), "system")
	return p
}

func TestColorSchemePlugin(t *testing.T) {
	p := newTestPlugin(t, common.NewMockProcessRunner())
	plugintesting.TestBasicInterface(t, p, "colorscheme")
	plugintesting.TestPreExecuteSkips(t, p)
	plugintesting.TestOptionalInterfaces(t, p, true, false, true)
}

func TestTonalPalette(t *testing.T) {
	p := NewTonalPalette("#3daee9", 1)
	if p[0] != "#000000" || p[100] != "#FFFFFF" {
		t.Errorf("tone 0 = %s, tone 100 = %s", p[0], p[100])
	}

	neutral := NewTonalPalette("#3daee9", 0)
	if neutral[50] != "#808080" {
		t.Errorf("desaturated tone 50 = %s, want #808080", neutral[50])
	}
}

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name    string
		palette []string
		index   int
		want    string
	}{
		{name: "empty palette", palette: nil, index: 0, want: DefaultPrimary},
		{name: "indexed", palette: []string{"#111111", "#ff0000"}, index: 1, want: "#ff0000"},
		{name: "out of range", palette: []string{"#00ff00"}, index: 5, want: "#00ff00"},
		{name: "invalid colour", palette: []string{"bogus"}, index: 0, want: DefaultPrimary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewGenerator(tt.palette, tt.index, 100).Primary; got != tt.want {
				t.Errorf("Primary = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWithAccent(t *testing.T) {
	palette := []string{"#111111", "#222222"}

	got, idx := WithAccent(palette, -1, "#abcdef")
	if idx != 0 || !slices.Equal(got, []string{"#abcdef", "#111111", "#222222"}) {
		t.Errorf("WithAccent(-1) = %v, %d", got, idx)
	}
	if got, idx := WithAccent(palette, 1, "#abcdef"); idx != 1 || len(got) != 2 {
		t.Errorf("WithAccent(1) = %v, %d", got, idx)
	}
	if got, idx := WithAccent(palette, -1, ""); idx != -1 || len(got) != 2 {
		t.Errorf("WithAccent without accent = %v, %d", got, idx)
	}
}

func TestGeneratorRender(t *testing.T) {
	tmpl, err := templates.ReadFile(TemplateName)
	if err != nil {
		t.Fatal(err)
	}
	g := NewGenerator([]string{"#3daee9"}, 0, 50)

	dark, err := g.Render(tmpl, true)
	if err != nil {
		t.Fatalf("Render(dark) error = %v", err)
	}
	light, err := g.Render(tmpl, false)
	if err != nil {
		t.Fatalf("Render(light) error = %v", err)
	}

	for _, want := range []string{
		"[General]\nColorScheme=KuntatinteDark\nName=KuntatinteDark\n",
		"Enable=true\n",
		"activeBlend=252,252,252\n",
		"[Colors:Header][Inactive]\n",
	} {
		if !strings.Contains(dark, want) {
			t.Errorf("dark scheme missing %q", want)
		}
	}
	if !strings.Contains(light, "ColorScheme=KuntatinteLight") || !strings.Contains(light, "Enable=false") {
		t.Error("light scheme has the wrong header")
	}
	if strings.HasPrefix(dark, "\n") || strings.Contains(dark, "{{") {
		t.Error("template was not fully rendered")
	}

	// The title bar uses the toolbar opacity: 50% of 255.
	c := g.Colours(true)
	if want := "activeBackground=" + rgbOf(t, c.SurfaceContainerHighest) + ",127\n"; !strings.Contains(dark, want) {
		t.Errorf("dark scheme missing %q", want)
	}
	if want := "BackgroundNormal=" + rgbOf(t, c.Primary) + "\n"; !strings.Contains(dark, want) {
		t.Errorf("selection background %q not rendered", want)
	}
}

func rgbOf(t *testing.T, hex string) string {
	t.Helper()
	return common.TemplateFuncs()["rgb"].(func(string) string)(hex)
}

func TestPreview(t *testing.T) {
	preview := NewGenerator([]string{"#3daee9"}, 0, 100).Preview()
	for _, m := range []map[string]string{preview.Light, preview.Dark} {
		if len(m) != 8 {
			t.Errorf("preview has %d colours, want 8", len(m))
		}
	}
	if preview.Dark["primary"] != preview.Palettes["primary"][80] || preview.Light["primary"] != preview.Palettes["primary"][40] {
		t.Error("preview primaries do not match the tonal palette")
	}
	if len(preview.Palettes) != 6 {
		t.Errorf("Palettes = %d roles, want 6", len(preview.Palettes))
	}
}

func TestGenerateAndSave(t *testing.T) {
	p := newTestPlugin(t, common.NewMockProcessRunner())

	if _, err := p.GenerateAndSave(nil, 0, 100); !errors.Is(err, ErrNoPalette) {
		t.Errorf("GenerateAndSave(nil) error = %v", err)
	}

	msg, err := p.GenerateAndSave([]string{"#3daee9"}, 0, 100)
	if err != nil {
		t.Fatalf("GenerateAndSave() error = %v", err)
	}
	if msg != "Kuntatinte Light and Dark schemes generated successfully" {
		t.Errorf("message = %q", msg)
	}
	if got := p.store.List(); !slices.Equal(got, []string{DarkSchemeName, LightSchemeName}) {
		t.Errorf("List() = %v", got)
	}
	if sections := p.store.ColorSections(DarkSchemeName); len(sections) != 7 {
		t.Errorf("generated scheme has %d colour sections, want 7: %v", len(sections), sections)
	}
}

func TestGenerateUsesCustomTemplate(t *testing.T) {
	p := newTestPlugin(t, common.NewMockProcessRunner())
	custom := p.Loader().CustomPath(TemplateName)
	if err := common.WriteFile(custom, []byte("[General]\nName={{.Name}}\nPrimary={{hex .Primary}}\n")); err != nil {
		t.Fatal(err)
	}

	if _, err := p.GenerateAndSave([]string{"#3daee9"}, 0, 100); err != nil {
		t.Fatal(err)
	}
	path, _ := p.store.SchemePath(LightSchemeName)
	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "[General]\nName=KuntatinteLight\nPrimary=#") {
		t.Errorf("custom template not used:\n%s", data)
	}
}

func TestApplyAndRestore(t *testing.T) {
	runner := common.NewMockProcessRunner("plasma-apply-colorscheme", "kreadconfig6")
	runner.RunFunc = func(_ context.Context, path string, _ []string, _ io.Reader) ([]byte, []byte, error) {
		if path == "kreadconfig6" {
			return []byte("BreezeDark\n"), nil, nil
		}
		return nil, nil, nil
	}
	p := newTestPlugin(t, runner)
	ctx := context.Background()

	if err := p.Restore(ctx); err == nil {
		t.Fatal("Restore() before any apply should fail")
	}

	colours := output.Colours{PrimaryKey: "#ff8800", ModeKey: "light"}
	colours.SetOpacity(ToolbarKey, 80)
	if err := output.Execute(ctx, p, colours); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	call, _ := runner.LastRun()
	if call.Path != "plasma-apply-colorscheme" || !slices.Equal(call.Args, []string{LightSchemeName}) {
		t.Errorf("applied %s", call)
	}

	if err := p.Apply(ctx, output.Colours{PrimaryKey: "#ff8800"}); err != nil {
		t.Fatal(err)
	}
	if call, _ := runner.LastRun(); !slices.Equal(call.Args, []string{DarkSchemeName}) {
		t.Errorf("default mode applied %s", call)
	}

	if err := p.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if call, _ := runner.LastRun(); !slices.Equal(call.Args, []string{"BreezeDark"}) {
		t.Errorf("Restore applied %s", call)
	}
	if common.FileExists(p.previousPath()) {
		t.Error("remembered scheme should be cleared after restore")
	}
}
