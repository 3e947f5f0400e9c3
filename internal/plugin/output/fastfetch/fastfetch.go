// Package fastfetch tints the fastfetch logo with the accent colour.
package fastfetch

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/hashicorp/go-hclog"
	"github.com/tailscale/hujson"

	"github.com/jmylchreest/kuntatinte/internal/colour"
	"github.com/jmylchreest/kuntatinte/internal/config"
	imgutil "github.com/jmylchreest/kuntatinte/internal/image"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/common"
	tmplloader "github.com/jmylchreest/kuntatinte/internal/plugin/output/template"
)

// TemplateLogo is the default logo shipped with the plugin.
const TemplateLogo = "logo.png"

// TintPercent is the strength of the accent tint.
const TintPercent = 80

//go:embed logo.png
var templates embed.FS

// GetEmbeddedTemplates returns the embedded template filesystem.
func GetEmbeddedTemplates() embed.FS {
	return templates
}

// Messages returned to the user.
var (
	ErrNoAccent  = errors.New("No accent color provided")                        //nolint:staticcheck // user-facing message
	ErrNoLogoCfg = errors.New("Could not read logo path from fastfetch config") //nolint:staticcheck // user-facing message
)

// Plugin implements output.Plugin for fastfetch.
type Plugin struct {
	cfg      *config.Config
	runner   common.ProcessRunner
	logger   hclog.Logger
	loader   *tmplloader.Loader
	cacheDir string
}

// New creates the fastfetch plugin.
func New(cfg *config.Config, opts ...common.Option) *Plugin {
	o := common.ApplyOptions(opts...)
	logger := o.Logger.Named("fastfetch")
	return &Plugin{
		cfg:    cfg,
		runner: o.Runner,
		logger: logger,
		loader: tmplloader.New("fastfetch", templates).
			WithCustomBase(cfg.TemplatesDir()).
			WithLogger(common.NewHCLogPrinter(logger)),
		cacheDir: config.ExpandPath("~/.cache/fastfetch"),
	}
}

// Name returns the plugin name.
func (p *Plugin) Name() string { return "fastfetch" }

// Description returns the plugin description.
func (p *Plugin) Description() string { return "Tint the fastfetch logo with the accent colour" }

// Installed reports whether fastfetch is on PATH.
func (p *Plugin) Installed() bool {
	_, err := p.runner.LookPath("fastfetch")
	return err == nil
}

// DefaultColours returns the default accent.
func (p *Plugin) DefaultColours() output.Colours { return output.Colours{"accent": "#3daee9"} }

// Keys returns the single accent key.
func (p *Plugin) Keys() []string { return []string{"accent"} }

// Loader returns the template loader.
func (p *Plugin) Loader() *tmplloader.Loader { return p.loader }

// ConfigPath returns fastfetch's config.jsonc.
func (p *Plugin) ConfigPath() string {
	return filepath.Join(p.cfg.FastfetchConfigDir(), "config.jsonc")
}

// TemplatePath returns the default logo, writing the embedded copy to the
// templates directory when it is not there yet.
func (p *Plugin) TemplatePath() (string, error) {
	return p.loader.Materialise(TemplateLogo)
}

// CustomLogoPath returns the configured custom logo, or "" when none is set.
func (p *Plugin) CustomLogoPath() string {
	return p.cfg.FastfetchCustomLogo()
}

// ActiveLogoPath returns the image that gets tinted: the custom logo when
// set, the template otherwise.
func (p *Plugin) ActiveLogoPath() (string, error) {
	if custom := p.CustomLogoPath(); custom != "" {
		return custom, nil
	}
	return p.TemplatePath()
}

// CurrentLogoPath returns logo.source from config.jsonc with ~ expanded.
func (p *Plugin) CurrentLogoPath() (string, error) {
	data, err := os.ReadFile(p.ConfigPath())
	if err != nil {
		return "", ErrNoLogoCfg
	}
	source, err := LogoSource(data)
	if err != nil {
		p.logger.Error("Error parsing fastfetch config", "error", err)
		return "", ErrNoLogoCfg
	}
	if source == "" {
		return "", ErrNoLogoCfg
	}
	return config.ExpandPath(source), nil
}

// LogoSource reads logo.source from a JSONC document. Comments and trailing
// commas are allowed.
func LogoSource(data []byte) (string, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return "", err
	}
	var doc struct {
		Logo json.RawMessage `json:"logo"`
	}
	if err := json.Unmarshal(std, &doc); err != nil {
		return "", err
	}
	// logo may also be a plain string naming a built-in logo.
	var logo struct {
		Source string `json:"source"`
	}
	if len(doc.Logo) == 0 || json.Unmarshal(doc.Logo, &logo) != nil {
		return "", nil
	}
	return logo.Source, nil
}

// BackupPath returns the backup kept next to the logo.
func BackupPath(logo string) string { return logo + ".bak" }

// PreExecute skips the plugin when fastfetch is not installed.
func (p *Plugin) PreExecute(_ context.Context) (skip bool, reason string, err error) {
	if !p.Installed() {
		return true, "fastfetch executable not found on $PATH", nil
	}
	return false, "", nil
}

// Apply writes a grayscale copy of the active logo, tinted with the accent,
// to the logo path fastfetch is configured with. The first logo found there
// is kept as a backup.
func (p *Plugin) Apply(_ context.Context, colours output.Colours) error {
	accent := strings.TrimSpace(colours["accent"])
	if accent == "" {
		return ErrNoAccent
	}

	logo, err := p.CurrentLogoPath()
	if err != nil {
		return err
	}
	source, err := p.ActiveLogoPath()
	if err != nil || !common.FileExists(source) {
		return fmt.Errorf("Source image not found: %s", source) //nolint:staticcheck // user-facing message
	}

	if _, err := common.BackupOnce(logo, BackupPath(logo)); err != nil {
		return fmt.Errorf("Error: %w", err) //nolint:staticcheck // user-facing message
	}
	if err := TintFile(source, logo, accent); err != nil {
		return err
	}
	p.clearCache()

	p.logger.Info("Fastfetch logo tinted", "path", logo)
	return nil
}

// Restore copies the backup over the logo.
func (p *Plugin) Restore(_ context.Context) error {
	logo, err := p.CurrentLogoPath()
	if err != nil {
		return err
	}
	backup := BackupPath(logo)
	if !common.FileExists(backup) {
		return fmt.Errorf("No backup file found: %s", backup) //nolint:staticcheck // user-facing message
	}
	if err := common.CopyFile(backup, logo); err != nil {
		return fmt.Errorf("Error: %w", err) //nolint:staticcheck // user-facing message
	}
	p.clearCache()
	p.logger.Info("Fastfetch logo restored from backup")
	return nil
}

func (p *Plugin) clearCache() {
	if p.cacheDir == "" {
		return
	}
	if err := os.RemoveAll(p.cacheDir); err != nil {
		p.logger.Debug("could not clear fastfetch cache", "error", err)
	}
}

// SetCustomLogo stores the custom logo in the config file. An empty path
// resets to the template. The returned message describes the change.
func (p *Plugin) SetCustomLogo(path string) (string, error) {
	if path != "" && !common.FileExists(path) {
		return "", fmt.Errorf("Image not found: %s", path) //nolint:staticcheck // user-facing message
	}
	if err := p.cfg.Set(config.SectionPaths, "fastfetch_custom_logo", path); err != nil {
		return "", fmt.Errorf("Error: %w", err) //nolint:staticcheck // user-facing message
	}
	if path == "" {
		return "Reset to default template", nil
	}
	return "Custom logo set: " + path, nil
}

// Preview writes a tinted copy of source to a temporary file and returns its
// path. The caller removes the file.
func (p *Plugin) Preview(source, accent string) (string, error) {
	if !common.FileExists(source) {
		return "", fmt.Errorf("Image not found: %s", source) //nolint:staticcheck // user-facing message
	}
	ext := filepath.Ext(source)
	if ext == "" {
		ext = ".png"
	}
	f, err := os.CreateTemp("", "fastfetch_preview_*"+ext)
	if err != nil {
		return "", err
	}
	path := f.Name()
	f.Close()

	if err := TintFile(source, path, accent); err != nil {
		os.Remove(path)
		p.logger.Error("Error generating preview", "error", err)
		return "", err
	}
	return path, nil
}

// TintFile loads src, tints it and saves the result to dst in the format
// its extension names.
func TintFile(src, dst, accent string) error {
	img, err := imgutil.NewFileLoader().Load(src)
	if err != nil {
		return err
	}
	tinted, err := Tint(img, accent, TintPercent)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	return imgio.Save(dst, tinted, encoderFor(dst))
}

func encoderFor(path string) imgio.Encoder {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return imgio.JPEGEncoder(95)
	case ".bmp":
		return imgio.BMPEncoder()
	default:
		return imgio.PNGEncoder()
	}
}

// Tint converts img to grayscale and tints it towards accent. Midtones take
// the most colour; black and white are left alone. Alpha is preserved.
func Tint(img image.Image, accent string, percent float64) (*image.RGBA, error) {
	fill, err := colour.ParseHex(accent)
	if err != nil {
		return nil, err
	}
	fillLuma := luma(float64(fill.R), float64(fill.G), float64(fill.B))
	vector := [3]float64{
		float64(fill.R)*percent/100 - fillLuma,
		float64(fill.G)*percent/100 - fillLuma,
		float64(fill.B)*percent/100 - fillLuma,
	}

	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		if c.A == 0 {
			return c
		}
		// Work on straight alpha.
		a := float64(c.A)
		r, g, b := float64(c.R)*255/a, float64(c.G)*255/a, float64(c.B)*255/a
		gray := luma(r, g, b)

		weight := gray/255 - 0.5
		factor := 1 - 4*weight*weight
		out := [3]float64{}
		for i := range out {
			out[i] = clamp255(gray+vector[i]*factor) * a / 255
		}
		return color.RGBA{R: uint8(out[0] + 0.5), G: uint8(out[1] + 0.5), B: uint8(out[2] + 0.5), A: c.A}
	}), nil
}

// luma uses Rec. 709 weights.
func luma(r, g, b float64) float64 {
	return 0.212656*r + 0.715158*g + 0.072186*b
}

func clamp255(v float64) float64 {
	return max(0, min(255, v))
}
