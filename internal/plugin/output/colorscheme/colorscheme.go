// Package colorscheme manages KDE Plasma colour schemes: reading and writing
// .colors files and kdeglobals, and generating the Kuntatinte light and dark
// schemes from a primary colour.
package colorscheme

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/kuntatinte/internal/config"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/common"
	tmplloader "github.com/jmylchreest/kuntatinte/internal/plugin/output/template"
)

// TemplateName is the scheme template shared by the light and dark schemes.
const TemplateName = "kuntatinte.colors.tmpl"

// Colour keys understood by Apply. ModeKey selects the scheme to activate,
// "light" or "dark"; ToolbarKey carries the title bar opacity as
// ToolbarKey+output.OpacitySuffix.
const (
	PrimaryKey = "primary"
	ModeKey    = "mode"
	ToolbarKey = "toolbar"
)

//go:embed kuntatinte.colors.tmpl
var templates embed.FS

// GetEmbeddedTemplates returns the embedded template filesystem.
func GetEmbeddedTemplates() embed.FS {
	return templates
}

// ErrNoPalette is returned when generating from an empty palette.
var ErrNoPalette = errors.New("No palette provided") //nolint:staticcheck // user-facing message

// Plugin implements output.Plugin for KDE colour schemes.
type Plugin struct {
	cfg    *config.Config
	runner common.ProcessRunner
	logger hclog.Logger
	loader *tmplloader.Loader
	store  *Store
}

// New creates the colour scheme plugin.
func New(cfg *config.Config, opts ...common.Option) *Plugin {
	o := common.ApplyOptions(opts...)
	logger := o.Logger.Named("colorscheme")
	return &Plugin{
		cfg:    cfg,
		runner: o.Runner,
		logger: logger,
		loader: tmplloader.New("colorscheme", templates).
			WithCustomBase(cfg.TemplatesDir()).
			WithLogger(common.NewHCLogPrinter(logger)),
		store: NewStore(common.WithRunner(o.Runner), common.WithLogger(logger)),
	}
}

// Name returns the plugin name.
func (p *Plugin) Name() string { return "colorscheme" }

// Description returns the plugin description.
func (p *Plugin) Description() string {
	return "Generate and apply the Kuntatinte KDE colour schemes"
}

// Installed reports whether plasma-apply-colorscheme is on PATH.
func (p *Plugin) Installed() bool {
	_, err := p.runner.LookPath("plasma-apply-colorscheme")
	return err == nil
}

// DefaultColours returns the default primary colour.
func (p *Plugin) DefaultColours() output.Colours {
	return output.Colours{PrimaryKey: DefaultPrimary}
}

// Keys returns the colour keys.
func (p *Plugin) Keys() []string { return []string{PrimaryKey} }

// Store returns the scheme store.
func (p *Plugin) Store() *Store { return p.store }

// Loader returns the template loader.
func (p *Plugin) Loader() *tmplloader.Loader { return p.loader }

// previousPath records the scheme that was active before the first apply.
func (p *Plugin) previousPath() string {
	return filepath.Join(p.cfg.CacheDir(), "colorscheme_previous")
}

// GenerateAndSave renders both Kuntatinte schemes into the user scheme
// directory.
func (p *Plugin) GenerateAndSave(palette []string, primaryIndex, toolbarOpacity int) (string, error) {
	if len(palette) == 0 {
		return "", ErrNoPalette
	}
	tmpl, _, err := p.loader.Load(TemplateName)
	if err != nil {
		return "", err
	}

	g := NewGenerator(palette, primaryIndex, toolbarOpacity)
	var failures []string
	for _, dark := range []bool{false, true} {
		content, err := g.Render(tmpl, dark)
		if err == nil {
			_, err = p.store.WriteScheme(g.Colours(dark).Name, content)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	if len(failures) > 0 {
		return "", errors.New(strings.Join(failures, "; "))
	}
	return "Kuntatinte Light and Dark schemes generated successfully", nil
}

// PreExecute skips the plugin outside Plasma.
func (p *Plugin) PreExecute(_ context.Context) (skip bool, reason string, err error) {
	if !p.Installed() {
		return true, "plasma-apply-colorscheme not found on $PATH", nil
	}
	return false, "", nil
}

// Apply generates the schemes from the primary colour and activates the one
// matching the mode, dark unless "light" is given.
func (p *Plugin) Apply(ctx context.Context, colours output.Colours) error {
	primary := colours[PrimaryKey]
	if primary == "" {
		primary = DefaultPrimary
	}
	if _, err := p.GenerateAndSave([]string{primary}, 0, colours.Opacity(ToolbarKey, 100)); err != nil {
		return err
	}

	p.rememberCurrent(ctx)

	name := DarkSchemeName
	if strings.EqualFold(colours[ModeKey], "light") {
		name = LightSchemeName
	}
	return p.store.ApplyScheme(ctx, name)
}

// rememberCurrent stores the active scheme unless it is one of ours or a
// previous one is already stored.
func (p *Plugin) rememberCurrent(ctx context.Context) {
	if common.FileExists(p.previousPath()) {
		return
	}
	current := p.store.CurrentScheme(ctx)
	if current == "Unknown" || current == LightSchemeName || current == DarkSchemeName {
		return
	}
	if err := common.WriteFile(p.previousPath(), []byte(current+"\n")); err != nil {
		p.logger.Warn("could not remember the current colour scheme", "error", err)
	}
}

// Restore re-activates the scheme that was active before Kuntatinte's.
func (p *Plugin) Restore(ctx context.Context) error {
	data, err := os.ReadFile(p.previousPath())
	if err != nil {
		return errors.New("No backup found") //nolint:staticcheck // user-facing message
	}
	name := strings.TrimSpace(string(data))
	if err := p.store.ApplyScheme(ctx, name); err != nil {
		return err
	}
	if err := os.Remove(p.previousPath()); err != nil {
		return fmt.Errorf("Error restoring backup: %w", err) //nolint:staticcheck // user-facing message
	}
	return nil
}

// Refresh asks running applications to reload kdeglobals colours.
func (p *Plugin) Refresh(ctx context.Context) error {
	return p.store.Notify(ctx)
}
