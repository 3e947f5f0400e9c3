// Package ulauncher generates a Ulauncher user theme from a set of colours.
package ulauncher

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/tailscale/hujson"

	"github.com/jmylchreest/kuntatinte/internal/colour"
	"github.com/jmylchreest/kuntatinte/internal/config"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/common"
	tmplloader "github.com/jmylchreest/kuntatinte/internal/plugin/output/template"
)

// Theme files.
const (
	ManifestFile = "manifest.json"
	CSSFile      = "theme.css"
	ThemeName    = "kuntatinte"
)

// staticFiles are copied into the theme directory once.
var staticFiles = []string{"LICENSE", "theme-gtk-3.20.css"}

//go:embed manifest.json theme.css theme-gtk-3.20.css LICENSE
var templates embed.FS

// GetEmbeddedTemplates returns the embedded template filesystem.
func GetEmbeddedTemplates() embed.FS {
	return templates
}

var colourKeys = []string{
	"bg_color",
	"window_border_color",
	"prefs_background",
	"input_color",
	"selected_bg_color",
	"selected_fg_color",
	"item_name",
	"item_text",
	"item_shortcut_color",
	"item_box_selected",
	"item_name_selected",
	"item_text_selected",
	"item_shortcut_color_sel",
	"when_selected",
	"when_not_selected",
}

var defaultColours = output.Colours{
	"bg_color":                "#2a2e32",
	"window_border_color":     "#3daee9",
	"prefs_background":        "#31363b",
	"input_color":             "#fcfcfc",
	"selected_bg_color":       "#3daee9",
	"selected_fg_color":       "#fcfcfc",
	"item_name":               "#fcfcfc",
	"item_text":               "#bdc3c7",
	"item_shortcut_color":     "#3daee9",
	"item_box_selected":       "#3daee9",
	"item_name_selected":      "#1d1d1d",
	"item_text_selected":      "#1d1d1d",
	"item_shortcut_color_sel": "#fcfcfc",
	"when_selected":           "#fcfcfc",
	"when_not_selected":       "#3daee9",
}

// manifestOnly keys are highlight colours kept in manifest.json, not theme.css.
var manifestOnly = []string{"when_selected", "when_not_selected"}

var themeNameSetting = regexp.MustCompile(`"theme-name"\s*:\s*"[^"]*"`)

// Plugin implements output.Plugin for Ulauncher.
type Plugin struct {
	cfg          *config.Config
	runner       common.ProcessRunner
	logger       hclog.Logger
	loader       *tmplloader.Loader
	settingsPath string
}

// New creates the Ulauncher plugin.
func New(cfg *config.Config, opts ...common.Option) *Plugin {
	o := common.ApplyOptions(opts...)
	logger := o.Logger.Named("ulauncher")
	return &Plugin{
		cfg:    cfg,
		runner: o.Runner,
		logger: logger,
		loader: tmplloader.New("ulauncher", templates).
			WithCustomBase(cfg.TemplatesDir()).
			WithLogger(common.NewHCLogPrinter(logger)),
		settingsPath: config.ExpandPath("~/.config/ulauncher/settings.json"),
	}
}

// Name returns the plugin name.
func (p *Plugin) Name() string { return "ulauncher" }

// Description returns the plugin description.
func (p *Plugin) Description() string { return "Generate the Kuntatinte Ulauncher theme" }

// Installed reports whether ulauncher is on PATH.
func (p *Plugin) Installed() bool {
	_, err := p.runner.LookPath("ulauncher")
	return err == nil
}

// DefaultColours returns the Breeze-like defaults.
func (p *Plugin) DefaultColours() output.Colours { return defaultColours.Clone() }

// Keys returns the theme colour keys.
func (p *Plugin) Keys() []string { return slices.Clone(colourKeys) }

// Loader returns the template loader.
func (p *Plugin) Loader() *tmplloader.Loader { return p.loader }

// ThemeDir returns the directory the theme is written to.
func (p *Plugin) ThemeDir() string { return p.cfg.UlauncherThemeDir() }

// BackupDir returns where the previous theme is kept.
func (p *Plugin) BackupDir() string { return filepath.Join(p.cfg.CacheDir(), "ulauncher_backup") }

// HasBackup reports whether a complete backup exists.
func (p *Plugin) HasBackup() bool {
	dir := p.BackupDir()
	return common.FileExists(filepath.Join(dir, ManifestFile)) && common.FileExists(filepath.Join(dir, CSSFile))
}

// BuildPalette resolves every theme key. Values that are not valid colours
// fall back to the default.
func BuildPalette(colours output.Colours) output.Colours {
	palette := make(output.Colours, len(colourKeys))
	for _, k := range colourKeys {
		if v, ok := colour.Normalize(colours[k]); ok {
			palette[k] = v
		} else {
			palette[k] = defaultColours[k]
		}
	}
	return palette
}

// Render fills the manifest and CSS templates. bg_color and window_border_color
// use the opacity stored in colours, 100 when unset.
func Render(manifest, css string, palette, colours output.Colours) (string, string) {
	for _, k := range colourKeys {
		v := palette[k]
		manifest = strings.ReplaceAll(manifest, fmt.Sprintf(`"%s": "hex_color"`, k), fmt.Sprintf(`"%s": "%s"`, k, v))

		rgba, err := colour.HexToRGBA(v, float64(colours.Opacity(k, 100))/100)
		if err == nil {
			css = strings.ReplaceAll(css, "@define-color "+k+" rgba_color;", "@define-color "+k+" "+rgba+";")
		}
		css = strings.ReplaceAll(css, "@define-color "+k+" hex_color;", "@define-color "+k+" "+v+";")
	}
	return manifest, css
}

// PreExecute skips the plugin when ulauncher is not installed.
func (p *Plugin) PreExecute(_ context.Context) (skip bool, reason string, err error) {
	if !p.Installed() {
		return true, "ulauncher executable not found on $PATH", nil
	}
	return false, "", nil
}

// Apply writes the theme, backing up the previous one, and selects it in
// Ulauncher's settings.
func (p *Plugin) Apply(_ context.Context, colours output.Colours) error {
	manifestTmpl, _, err := p.loader.Load(ManifestFile)
	if err != nil {
		return err
	}
	cssTmpl, _, err := p.loader.Load(CSSFile)
	if err != nil {
		return err
	}
	manifest, css := Render(string(manifestTmpl), string(cssTmpl), BuildPalette(colours), colours)

	if err := p.backup(); err != nil {
		return fmt.Errorf("Error applying theme: %w", err) //nolint:staticcheck // user-facing message
	}

	dir := p.ThemeDir()
	for _, name := range staticFiles {
		dst := filepath.Join(dir, name)
		if common.FileExists(dst) {
			continue
		}
		data, _, err := p.loader.Load(name)
		if err != nil {
			p.logger.Debug("static theme file unavailable", "file", name, "error", err)
			continue
		}
		if err := common.WriteFile(dst, data); err != nil {
			return fmt.Errorf("Error applying theme: %w", err) //nolint:staticcheck // user-facing message
		}
	}

	if err := common.WriteFile(filepath.Join(dir, ManifestFile), []byte(manifest)); err != nil {
		return fmt.Errorf("Error applying theme: %w", err) //nolint:staticcheck // user-facing message
	}
	if err := common.WriteFile(filepath.Join(dir, CSSFile), []byte(css)); err != nil {
		return fmt.Errorf("Error applying theme: %w", err) //nolint:staticcheck // user-facing message
	}

	p.logger.Info("Theme applied successfully", "dir", dir)
	return nil
}

func (p *Plugin) backup() error {
	dir := p.ThemeDir()
	if !common.FileExists(dir) {
		return nil
	}
	for _, name := range []string{ManifestFile, CSSFile} {
		if _, err := common.Backup(filepath.Join(dir, name), filepath.Join(p.BackupDir(), name)); err != nil {
			return err
		}
	}
	return nil
}

// PostExecute restarts Ulauncher with the new theme.
func (p *Plugin) PostExecute(ctx context.Context) error {
	if err := p.Refresh(ctx); err != nil {
		p.logger.Warn("could not restart ulauncher", "error", err)
	}
	return nil
}

// Refresh points Ulauncher at the theme and restarts it.
func (p *Plugin) Refresh(_ context.Context) error {
	p.selectTheme()
	line := p.cfg.Command("ulauncher")
	if line == "" {
		return nil
	}
	if err := common.Restart(p.runner, line, false); err != nil {
		return fmt.Errorf("Error restarting Ulauncher: %w", err) //nolint:staticcheck // user-facing message
	}
	return nil
}

// selectTheme rewrites theme-name in settings.json when the setting exists.
func (p *Plugin) selectTheme() {
	data, err := os.ReadFile(p.settingsPath)
	if err != nil {
		return
	}
	content := string(data)
	if !strings.Contains(content, `"theme-name"`) {
		return
	}
	content = themeNameSetting.ReplaceAllLiteralString(content, `"theme-name": "`+ThemeName+`"`)
	if err := os.WriteFile(p.settingsPath, []byte(content), 0o644); err != nil { // #nosec G306
		p.logger.Warn("Could not update Ulauncher settings", "error", err)
	}
}

// Restore puts the backed up manifest and CSS back.
func (p *Plugin) Restore(ctx context.Context) error {
	dir := p.BackupDir()
	if !common.FileExists(dir) {
		return errors.New("No backup found") //nolint:staticcheck // user-facing message
	}
	if !p.HasBackup() {
		return errors.New("Incomplete backup") //nolint:staticcheck // user-facing message
	}
	for _, name := range []string{ManifestFile, CSSFile} {
		if err := common.CopyFile(filepath.Join(dir, name), filepath.Join(p.ThemeDir(), name)); err != nil {
			return fmt.Errorf("Error restoring backup: %w", err) //nolint:staticcheck // user-facing message
		}
	}
	p.logger.Info("Backup restored", "dir", p.ThemeDir())
	return p.PostExecute(ctx)
}

var rgbaValue = regexp.MustCompile(`^rgba\((\d+),\s*(\d+),\s*(\d+),\s*([\d.]+)\)$`)

// Load reads the colours of the applied theme. Opacities of rgba values come
// back as <key>_opacity. No theme yields an empty map.
func (p *Plugin) Load() (output.Colours, error) {
	result := output.Colours{}
	css, err := os.ReadFile(filepath.Join(p.ThemeDir(), CSSFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return result, nil
		}
		return nil, fmt.Errorf("Error loading Ulauncher colors: %w", err) //nolint:staticcheck // user-facing message
	}

	for _, k := range colourKeys {
		if slices.Contains(manifestOnly, k) {
			continue
		}
		re := regexp.MustCompile(`@define-color\s+` + regexp.QuoteMeta(k) + `\s+([^;]+);`)
		m := re.FindSubmatch(css)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(string(m[1]))
		if hex, ok := colour.Normalize(value); ok && strings.HasPrefix(value, "#") && len(value) == 7 {
			result[k] = hex
			continue
		}
		if rm := rgbaValue.FindStringSubmatch(value); rm != nil {
			r, _ := strconv.Atoi(rm[1])
			g, _ := strconv.Atoi(rm[2])
			b, _ := strconv.Atoi(rm[3])
			alpha, _ := strconv.ParseFloat(rm[4], 64)
			result[k] = colour.RGB{R: uint8(r), G: uint8(g), B: uint8(b)}.Hex()
			result.SetOpacity(k, int(alpha*100))
		}
	}

	if err := p.loadHighlights(result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Plugin) loadHighlights(result output.Colours) error {
	data, err := os.ReadFile(filepath.Join(p.ThemeDir(), ManifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("Error loading Ulauncher colors: %w", err) //nolint:staticcheck // user-facing message
	}
	var manifest struct {
		Highlights map[string]string `json:"matched_text_hl_colors"`
	}
	if err := json.Unmarshal(std, &manifest); err != nil {
		return fmt.Errorf("Error loading Ulauncher colors: %w", err) //nolint:staticcheck // user-facing message
	}
	for _, k := range manifestOnly {
		if v, ok := manifest.Highlights[k]; ok {
			result[k], _ = colour.Normalize(v)
		}
	}
	return nil
}
