package autogen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/kuntatinte/internal/plugin/output/colorscheme"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/common"
	plugintesting "github.com/jmylchreest/kuntatinte/internal/plugin/output/testing"
)

func newTestGenerator(t *testing.T, runner *common.MockProcessRunner) *Generator {
	t.Helper()
	cfg := plugintesting.NewTestConfig(t, nil)
	schemes := colorscheme.New(cfg, common.WithRunner(runner))
	schemes.Store().UserDir = filepath.Join(t.TempDir(), "color-schemes")
	schemes.Store().SystemDir = filepath.Join(t.TempDir(), "system")
	return New(cfg, schemes, nil)
}

func schemeColour(t *testing.T, g *Generator, scheme, section, key string) string {
	t.Helper()
	entry, ok := g.schemes.Store().SectionColors(scheme, section)[key]
	if !ok {
		t.Fatalf("%s has no [%s] %s", scheme, section, key)
	}
	return strings.ToLower(entry.Color)
}

func TestLoadEmbeddedRules(t *testing.T) {
	g := newTestGenerator(t, common.NewMockProcessRunner())
	for _, mode := range []string{"dark", "light"} {
		rules, err := g.LoadRules(mode)
		if err != nil {
			t.Fatalf("LoadRules(%s) error = %v", mode, err)
		}
		if rules["starship"]["accent"].ExtractMethod != MethodVariable {
			t.Errorf("%s: starship accent rule = %+v", mode, rules["starship"]["accent"])
		}
	}
}

func TestLoadRulesErrors(t *testing.T) {
	g := newTestGenerator(t, common.NewMockProcessRunner())

	if _, err := g.LoadRules("sepia"); err == nil || err.Error() != "No rules found for mode sepia" {
		t.Errorf("LoadRules(sepia) error = %v", err)
	}
	if _, err := g.LoadRules("../dark"); err == nil {
		t.Error("LoadRules accepted a path")
	}

	if err := common.WriteFile(g.Loader().CustomPath("broken.json"), []byte("{nope")); err != nil {
		t.Fatal(err)
	}
	if _, err := g.LoadRules("broken"); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("LoadRules(broken) error = %v", err)
	}
}

func TestRun(t *testing.T) {
	g := newTestGenerator(t, common.NewMockProcessRunner())

	res, err := g.Run(context.Background(), Request{PaletteMode: "dark", Palette: []string{"#3daee9", "#ff8800"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Status != "ok" || res.Mode != "prod" || res.PaletteMode != "dark" || res.PrimaryIndex != 0 {
		t.Errorf("Run() header = %+v", res)
	}

	want := schemeColour(t, g, colorscheme.DarkSchemeName, "Colors:Window", "DecorationFocus")
	if got := res.Generated["starship"]["accent"]; got.Color != want || got.Alpha != "100" {
		t.Errorf("starship accent = %+v, want %s", got, want)
	}
	want = schemeColour(t, g, colorscheme.DarkSchemeName, "Colors:Window", "BackgroundNormal")
	if got := res.Generated["ulauncher"]["bg_color"]; got.Color != want {
		t.Errorf("ulauncher bg_color = %+v, want %s", got, want)
	}
	if got := res.Generated["starship"]["accent_text"].Color; got != "#000000" {
		t.Errorf("accent_text = %s, want #000000 against #3daee9", got)
	}
}

func TestRunPrimarySelection(t *testing.T) {
	tests := []struct {
		name      string
		req       Request
		wantIndex int
	}{
		{
			name:      "accent override",
			req:       Request{PaletteMode: "light", Palette: []string{"#112233"}, PrimaryIndex: -1, AccentOverride: "#ff8800"},
			wantIndex: 0,
		},
		{
			name:      "primary colour in palette",
			req:       Request{PaletteMode: "light", Palette: []string{"#112233", "#445566"}, PrimaryColor: "#445566"},
			wantIndex: 1,
		},
		{
			name:      "primary colour prepended",
			req:       Request{PaletteMode: "light", Palette: []string{"#112233"}, PrimaryColor: "#abcdef"},
			wantIndex: 0,
		},
		{
			name:      "default palette",
			req:       Request{PaletteMode: "light", PrimaryIndex: 2},
			wantIndex: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(t, common.NewMockProcessRunner())
			res, err := g.Run(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if res.PrimaryIndex != tt.wantIndex {
				t.Errorf("PrimaryIndex = %d, want %d", res.PrimaryIndex, tt.wantIndex)
			}
			accent := res.Generated["openrgb"]["accent"].Color
			if tt.req.AccentOverride != "" && accent != tt.req.AccentOverride {
				t.Errorf("accent = %s, want the override", accent)
			}
		})
	}
}

func TestRunCustomJSONRules(t *testing.T) {
	g := newTestGenerator(t, common.NewMockProcessRunner())
	rules := `{
		// comments and trailing commas are fine
		"app": {
			"unknown": {"extract_method": "magic"},
			"other_var": {"extract_method": "variable", "variable_key": "Secondary"},
			"missing": {"extract_method": "color_scheme", "scheme_section": "Colors:Nope", "scheme_key": "X"},
			"contrast": {"extract_method": "better_contrast", "base_color": "#000000", "group_colors": ["#111111", "#eeeeee"]},
			"palette_contrast": {"extract_method": "better_contrast", "base_color": "#ffffff", "group_colors": ["TobeDefined"]},
		},
	}`
	if err := common.WriteFile(g.Loader().CustomPath("dark.json"), []byte(rules)); err != nil {
		t.Fatal(err)
	}

	res, err := g.Run(context.Background(), Request{PaletteMode: "dark", Palette: []string{"#fafafa", "#202020"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	app := res.Generated["app"]
	for key, want := range map[string]string{
		"unknown":          "#ff0000",
		"other_var":        "#ff0000",
		"missing":          "#ff0000",
		"contrast":         "#eeeeee",
		"palette_contrast": "#202020",
	} {
		if got := app[key]; got.Color != want || got.Alpha != "100" {
			t.Errorf("%s = %+v, want %s", key, got, want)
		}
	}
	if len(res.Generated) != 1 {
		t.Errorf("embedded rules used alongside the custom file: %v", res.Generated)
	}
}

func TestRunErrors(t *testing.T) {
	g := newTestGenerator(t, common.NewMockProcessRunner())
	ctx := context.Background()

	if _, err := g.Run(ctx, Request{}); err == nil || err.Error() != "palette_mode required" {
		t.Errorf("Run() without mode error = %v", err)
	}
	if _, err := g.Run(ctx, Request{PaletteMode: "sepia"}); err == nil {
		t.Error("Run() with an unknown mode should fail")
	}
	if _, err := g.RunCurrent(ctx, "", "", ""); err == nil {
		t.Error("RunCurrent() without mode should fail")
	}
}

func TestRunCurrent(t *testing.T) {
	runner := common.NewMockProcessRunner()
	active := "KuntatinteLight"
	runner.RunFunc = func(_ context.Context, _ string, _ []string, _ io.Reader) ([]byte, []byte, error) {
		return []byte(active + "\n"), nil, nil
	}
	g := newTestGenerator(t, runner)
	ctx := context.Background()

	if _, err := g.RunCurrent(ctx, "dark", "", ""); err == nil || err.Error() != "Color scheme KuntatinteLight not found" {
		t.Errorf("RunCurrent() before generation error = %v", err)
	}

	if _, err := g.schemes.GenerateAndSave([]string{"#3daee9"}, 0, 100); err != nil {
		t.Fatal(err)
	}
	res, err := g.RunCurrent(ctx, "dark", "#ffffff", "")
	if err != nil {
		t.Fatalf("RunCurrent() error = %v", err)
	}
	want := schemeColour(t, g, colorscheme.LightSchemeName, "Colors:Window", "DecorationFocus")
	if got := res.Generated["starship"]["accent"].Color; got != want {
		t.Errorf("accent = %s, want %s from the active light scheme", got, want)
	}
	if res.PrimaryIndex != 0 || res.PaletteMode != "dark" {
		t.Errorf("RunCurrent() header = %+v", res)
	}
}

func TestPayloadJSON(t *testing.T) {
	res := &Result{
		Status:      "ok",
		Mode:        "prod",
		PaletteMode: "dark",
		Generated:   map[string]map[string]Value{"app": {"key": {Color: "#010203", Alpha: "50"}}},
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(res.JSON()), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["status"] != "ok" || decoded["palette_mode"] != "dark" || decoded["primary_index"] != float64(0) {
		t.Errorf("JSON() = %s", res.JSON())
	}

	if got := ErrorJSON(errors.New("boom")); got != `{"message":"boom","status":"error"}` {
		t.Errorf("ErrorJSON() = %s", got)
	}
}

func TestAlpha(t *testing.T) {
	tests := []struct {
		opacity float64
		want    string
	}{
		{opacity: 1, want: "100"},
		{opacity: 0, want: "0"},
		{opacity: 127.0 / 255, want: "50"},
		{opacity: 200.0 / 255, want: "78"},
	}
	for _, tt := range tests {
		if got := alpha(tt.opacity); got != tt.want {
			t.Errorf("alpha(%v) = %s, want %s", tt.opacity, got, tt.want)
		}
	}
}
