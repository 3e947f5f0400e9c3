package fastfetch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	imgutil "github.com/jmylchreest/kuntatinte/internal/image"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/common"
	plugintesting "github.com/jmylchreest/kuntatinte/internal/plugin/output/testing"
)

type fixture struct {
	plugin *Plugin
	logo   string
	cache  string
}

func newFixture(t *testing.T, runner *common.MockProcessRunner) fixture {
	t.Helper()
	root := t.TempDir()
	ffDir := filepath.Join(root, "fastfetch")
	logo := filepath.Join(root, "logos", "current.png")

	jsonc := fmt.Sprintf(`{
  // managed by hand
  "logo": {
    "source": %q,
    "type": "kitty",
  },
}`, logo)
	if err := common.WriteFile(filepath.Join(ffDir, "config.jsonc"), []byte(jsonc)); err != nil {
		t.Fatal(err)
	}

	cfg := plugintesting.NewTestConfig(t, map[string]string{"fastfetch_config_dir": ffDir})
	p := New(cfg, common.WithRunner(runner))
	p.cacheDir = filepath.Join(root, "cache", "fastfetch")
	return fixture{plugin: p, logo: logo, cache: p.cacheDir}
}

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestFastfetchPlugin(t *testing.T) {
	fx := newFixture(t, common.NewMockProcessRunner())
	plugintesting.TestBasicInterface(t, fx.plugin, "fastfetch")
	plugintesting.TestPreExecuteSkips(t, fx.plugin)
	plugintesting.TestOptionalInterfaces(t, fx.plugin, true, false, false)
}

func TestLogoSource(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    string
		wantErr bool
	}{
		{name: "plain json", doc: `{"logo": {"source": "/tmp/a.png"}}`, want: "/tmp/a.png"},
		{name: "comments and trailing commas", doc: "{\n// c\n\"logo\": {\"source\": \"~/x.png\",},\n}", want: "~/x.png"},
		{name: "string logo", doc: `{"logo": "arch"}`, want: ""},
		{name: "no logo", doc: `{"display": {}}`, want: ""},
		{name: "broken", doc: `{"logo": `, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LogoSource([]byte(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Fatalf("LogoSource() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("LogoSource() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTint(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	img.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{255, 255, 255, 255})
	img.SetNRGBA(2, 0, color.NRGBA{128, 128, 128, 255})
	img.SetNRGBA(3, 0, color.NRGBA{200, 10, 10, 0})

	out, err := Tint(img, "#3daee9", TintPercent)
	if err != nil {
		t.Fatalf("Tint() error = %v", err)
	}

	if got := out.RGBAAt(0, 0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("black = %v, want unchanged", got)
	}
	if got := out.RGBAAt(1, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("white = %v, want unchanged", got)
	}
	mid := out.RGBAAt(2, 0)
	if mid.B <= mid.R || mid.A != 255 {
		t.Errorf("midtone = %v, want a blue tint", mid)
	}
	if got := out.RGBAAt(3, 0); got.A != 0 {
		t.Errorf("transparent pixel alpha = %d, want 0", got.A)
	}

	if _, err := Tint(img, "blue", TintPercent); err == nil {
		t.Error("Tint() should reject an invalid accent")
	}
}

func TestApplyAndRestore(t *testing.T) {
	fx := newFixture(t, common.NewMockProcessRunner("fastfetch"))
	ctx := context.Background()

	if err := fx.plugin.Restore(ctx); err == nil || !strings.HasPrefix(err.Error(), "No backup file found: ") {
		t.Fatalf("Restore() without backup error = %v", err)
	}

	writePNG(t, fx.logo, color.NRGBA{255, 0, 0, 255})
	if err := os.MkdirAll(fx.cache, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := output.Execute(ctx, fx.plugin, output.Colours{"accent": "#3daee9"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !common.FileExists(BackupPath(fx.logo)) {
		t.Error("existing logo was not backed up")
	}
	if common.FileExists(fx.cache) {
		t.Error("fastfetch cache not cleared")
	}

	img, err := imgutil.NewFileLoader().Load(fx.logo)
	if err != nil {
		t.Fatalf("tinted logo unreadable: %v", err)
	}
	// The template's centre is a light gray disc.
	r, _, b, _ := img.At(img.Bounds().Dx()/2, img.Bounds().Dy()/2).RGBA()
	if b <= r {
		t.Errorf("logo centre not tinted towards the accent: r=%d b=%d", r>>8, b>>8)
	}

	// A second apply keeps the original backup.
	if err := fx.plugin.Apply(ctx, output.Colours{"accent": "#ff0000"}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := fx.plugin.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	restored, err := imgutil.NewFileLoader().Load(fx.logo)
	if err != nil {
		t.Fatal(err)
	}
	if r, g, _, _ := restored.At(0, 0).RGBA(); r>>8 != 255 || g != 0 {
		t.Error("restored logo is not the original red image")
	}
}

func TestApplyErrors(t *testing.T) {
	fx := newFixture(t, common.NewMockProcessRunner("fastfetch"))

	if err := fx.plugin.Apply(context.Background(), output.Colours{}); !errors.Is(err, ErrNoAccent) {
		t.Errorf("Apply() without accent error = %v", err)
	}

	if err := os.Remove(fx.plugin.ConfigPath()); err != nil {
		t.Fatal(err)
	}
	if err := fx.plugin.Apply(context.Background(), output.Colours{"accent": "#3daee9"}); !errors.Is(err, ErrNoLogoCfg) {
		t.Errorf("Apply() without config error = %v", err)
	}
}

func TestCustomLogo(t *testing.T) {
	fx := newFixture(t, common.NewMockProcessRunner("fastfetch"))

	if _, err := fx.plugin.SetCustomLogo("/does/not/exist.png"); err == nil {
		t.Error("SetCustomLogo() should reject a missing image")
	}

	custom := filepath.Join(t.TempDir(), "mine.png")
	writePNG(t, custom, color.NRGBA{0, 255, 0, 255})
	msg, err := fx.plugin.SetCustomLogo(custom)
	if err != nil || msg != "Custom logo set: "+custom {
		t.Fatalf("SetCustomLogo() = (%q, %v)", msg, err)
	}
	if active, _ := fx.plugin.ActiveLogoPath(); active != custom {
		t.Errorf("ActiveLogoPath() = %q, want %q", active, custom)
	}

	msg, err = fx.plugin.SetCustomLogo("")
	if err != nil || msg != "Reset to default template" {
		t.Fatalf("SetCustomLogo(\"\") = (%q, %v)", msg, err)
	}
	active, err := fx.plugin.ActiveLogoPath()
	if err != nil {
		t.Fatal(err)
	}
	if template, _ := fx.plugin.TemplatePath(); active != template || !common.FileExists(active) {
		t.Errorf("ActiveLogoPath() = %q, want the materialised template", active)
	}
}

func TestPreview(t *testing.T) {
	fx := newFixture(t, common.NewMockProcessRunner())
	template, err := fx.plugin.TemplatePath()
	if err != nil {
		t.Fatal(err)
	}

	path, err := fx.plugin.Preview(template, "#ff8800")
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	defer os.Remove(path)

	if !strings.HasPrefix(filepath.Base(path), "fastfetch_preview_") || filepath.Ext(path) != ".png" {
		t.Errorf("Preview() = %q", path)
	}
	if _, err := imgutil.NewFileLoader().Load(path); err != nil {
		t.Errorf("preview unreadable: %v", err)
	}
}
