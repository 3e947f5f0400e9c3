// Package starship writes colours into the palette section of the starship
// prompt configuration.
package starship

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/kuntatinte/internal/config"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/common"
	tmplloader "github.com/jmylchreest/kuntatinte/internal/plugin/output/template"
)

// TemplateName is the starship configuration template.
const TemplateName = "starship.toml"

//go:embed starship.toml
var templates embed.FS

// GetEmbeddedTemplates returns the embedded template filesystem.
func GetEmbeddedTemplates() embed.FS {
	return templates
}

var colourKeys = []string{
	"accent", "accent_text",
	"dir_fg", "dir_bg", "dir_text",
	"git_fg", "git_bg", "git_text",
	"other_fg", "other_bg", "other_text",
}

var defaultColours = output.Colours{
	"accent":      "#3daee9",
	"accent_text": "#ffffff",
	"dir_fg":      "#1d6586",
	"dir_bg":      "#1d6586",
	"dir_text":    "#ccdfee",
	"git_fg":      "#8b9297",
	"git_bg":      "#333a3f",
	"git_text":    "#ccdfee",
	"other_fg":    "#1d6586",
	"other_bg":    "#61a0c4",
	"other_text":  "#00344a",
}

var (
	sectionHeader = regexp.MustCompile(`(?m)^\[(?:palette|palettes)\.colors\]\s*$`)
	nextSection   = regexp.MustCompile(`(?m)^\[`)
)

// Plugin implements output.Plugin for starship.
type Plugin struct {
	cfg    *config.Config
	runner common.ProcessRunner
	logger hclog.Logger
	loader *tmplloader.Loader
}

// New creates the starship plugin.
func New(cfg *config.Config, opts ...common.Option) *Plugin {
	o := common.ApplyOptions(opts...)
	return &Plugin{
		cfg:    cfg,
		runner: o.Runner,
		logger: o.Logger.Named("starship"),
		loader: tmplloader.New("starship", templates).
			WithCustomBase(cfg.TemplatesDir()).
			WithLogger(common.NewHCLogPrinter(o.Logger.Named("starship"))),
	}
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return "starship"
}

// Description returns the plugin description.
func (p *Plugin) Description() string {
	return "Write colours into the starship prompt palette"
}

// Installed reports whether the starship binary is on PATH.
func (p *Plugin) Installed() bool {
	_, err := p.runner.LookPath("starship")
	return err == nil
}

// DefaultColours returns the palette used for keys left empty.
func (p *Plugin) DefaultColours() output.Colours {
	return defaultColours.Clone()
}

// Keys returns the palette keys in display order.
func (p *Plugin) Keys() []string {
	return slices.Clone(colourKeys)
}

// Loader returns the template loader.
func (p *Plugin) Loader() *tmplloader.Loader {
	return p.loader
}

// ConfigPath returns the starship.toml being written.
func (p *Plugin) ConfigPath() string {
	return p.cfg.StarshipConfig()
}

// BackupPath returns the backup kept next to a starship config.
func BackupPath(configPath string) string {
	return strings.TrimSuffix(configPath, filepath.Ext(configPath)) + ".toml.bak"
}

// Apply renders the template with the colours and replaces starship.toml,
// backing up the previous file first.
func (p *Plugin) Apply(_ context.Context, colours output.Colours) error {
	palette := colours.NonEmpty().WithDefaults(colourKeys, defaultColours)

	tmpl, fromCustom, err := p.loader.Load(TemplateName)
	if err != nil {
		return err
	}

	rendered := RenderPalette(string(tmpl), palette, colourKeys)
	var probe map[string]any
	if err := toml.Unmarshal([]byte(rendered), &probe); err != nil {
		return fmt.Errorf("generated starship config is not valid TOML: %w", err)
	}

	target := p.ConfigPath()
	if _, err := common.Backup(target, BackupPath(target)); err != nil {
		return err
	}
	if err := common.WriteFile(target, []byte(rendered)); err != nil {
		return err
	}

	p.logger.Info("starship colors applied", "path", target, "custom_template", fromCustom)
	return nil
}

// PreExecute skips the plugin when starship is not installed.
func (p *Plugin) PreExecute(_ context.Context) (skip bool, reason string, err error) {
	if !p.Installed() {
		return true, "starship executable not found on $PATH", nil
	}
	return false, "", nil
}

// PostExecute restarts the terminal so new prompts pick up the palette.
func (p *Plugin) PostExecute(ctx context.Context) error {
	if err := p.Refresh(ctx); err != nil {
		p.logger.Warn("could not restart terminal", "error", err)
	}
	return nil
}

// Refresh restarts the configured terminal if it is running.
func (p *Plugin) Refresh(_ context.Context) error {
	line := p.cfg.Command("terminal")
	if line == "" {
		return nil
	}
	return common.Restart(p.runner, line, true)
}

// Restore copies the backup over starship.toml.
func (p *Plugin) Restore(ctx context.Context) error {
	target := p.ConfigPath()
	backup := BackupPath(target)
	if !common.FileExists(backup) {
		return errors.New("No backup file found") //nolint:staticcheck // user-facing message
	}
	if err := common.CopyFile(backup, target); err != nil {
		return fmt.Errorf("Error restoring backup: %w", err) //nolint:staticcheck // user-facing message
	}
	p.logger.Info("starship backup restored", "path", target)
	return p.PostExecute(ctx)
}

// Load reads the palette from the current starship.toml. Keys that are not
// set come back empty; a missing file is not an error.
func (p *Plugin) Load() (output.Colours, error) {
	result := make(output.Colours, len(colourKeys))
	for _, k := range colourKeys {
		result[k] = ""
	}

	data, err := os.ReadFile(p.ConfigPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read starship config: %w", err)
	}

	start, end, ok := paletteSection(string(data))
	if !ok {
		return result, nil
	}
	section := string(data)[start:end]
	for _, k := range colourKeys {
		re := regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(k) + `\s*=\s*['"]([^'"]+)['"]`)
		if m := re.FindStringSubmatch(section); m != nil {
			result[k] = m[1]
		}
	}
	return result, nil
}

// paletteSection locates the [palette(s).colors] table, from its header to
// the next table header or the end of the document.
func paletteSection(doc string) (start, end int, ok bool) {
	loc := sectionHeader.FindStringIndex(doc)
	if loc == nil {
		return 0, 0, false
	}
	end = len(doc)
	if next := nextSection.FindStringIndex(doc[loc[1]:]); next != nil {
		end = loc[1] + next[0]
	}
	return loc[0], end, true
}

// RenderPalette rewrites each key of the palette table to key = 'colour',
// appending keys the table lacks. Documents without a palette table are
// returned unchanged.
func RenderPalette(doc string, palette output.Colours, keys []string) string {
	start, end, ok := paletteSection(doc)
	if !ok {
		return doc
	}

	section := doc[start:end]
	for _, k := range keys {
		c, ok := palette[k]
		if !ok {
			continue
		}
		line := fmt.Sprintf("%s = '%s'", k, c)
		re := regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(k) + `\s*=.*$`)
		if re.MatchString(section) {
			section = re.ReplaceAllLiteralString(section, line)
			continue
		}
		if !strings.HasSuffix(section, "\n") {
			section += "\n"
		}
		section += line + "\n"
	}
	return doc[:start] + section + doc[end:]
}
