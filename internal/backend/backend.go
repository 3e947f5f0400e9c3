// Package backend implements app.Backend on top of the colour extractors,
// the configuration file and the integration plugins.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/kuntatinte/internal/app"
	"github.com/jmylchreest/kuntatinte/internal/autogen"
	"github.com/jmylchreest/kuntatinte/internal/colour"
	"github.com/jmylchreest/kuntatinte/internal/config"
	imgutil "github.com/jmylchreest/kuntatinte/internal/image"
	"github.com/jmylchreest/kuntatinte/internal/plugin/manager"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/colorscheme"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/common"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/fastfetch"
	"github.com/jmylchreest/kuntatinte/internal/state"
)

// eventBuffer is the capacity of the events channel.
const eventBuffer = 32

var _ app.Backend = (*Backend)(nil)

// Backend runs extraction in the background and everything else inline.
// Extraction results and failures are delivered on Events.
type Backend struct {
	cfg     *config.Config
	plugins *manager.Manager
	autogen *autogen.Generator
	loader  imgutil.Loader
	runner  common.ProcessRunner
	logger  hclog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	events chan app.Event
	wg     sync.WaitGroup
}

// Option configures a Backend.
type Option func(*Backend)

// WithRunner sets the process runner handed to the plugins and used for
// wallpaper commands.
func WithRunner(r common.ProcessRunner) Option {
	return func(b *Backend) { b.runner = r }
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithLoader sets the image loader used by extraction.
func WithLoader(l imgutil.Loader) Option {
	return func(b *Backend) { b.loader = l }
}

// New creates a Backend for cfg. Close stops pending work.
func New(cfg *config.Config, opts ...Option) *Backend {
	b := &Backend{
		cfg:    cfg,
		loader: imgutil.NewFileLoader(),
		runner: common.NewRealProcessRunner(),
		logger: hclog.NewNullLogger(),
		events: make(chan app.Event, eventBuffer),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.ctx, b.cancel = context.WithCancel(context.Background())

	if b.plugins == nil {
		b.plugins = manager.NewBuilder().
			WithAppConfig(cfg).
			WithEnvConfig().
			WithPluginOptions(common.WithRunner(b.runner), common.WithLogger(b.logger.Named("plugins"))).
			Build()
	}
	b.autogen = autogen.New(cfg, b.schemes(), b.logger.Named("autogen"))
	return b
}

// Close cancels pending extractions and waits for them to finish. Events
// is closed afterwards.
func (b *Backend) Close() {
	b.cancel()
	b.wg.Wait()
	close(b.events)
}

// Events returns the channel extraction results are delivered on.
func (b *Backend) Events() <-chan app.Event { return b.events }

// Config returns the configuration.
func (b *Backend) Config() *config.Config { return b.cfg }

// Plugins returns the plugin manager.
func (b *Backend) Plugins() *manager.Manager { return b.plugins }

// Autogen returns the autogen generator.
func (b *Backend) Autogen() *autogen.Generator { return b.autogen }

func (b *Backend) emit(ev app.Event) {
	select {
	case b.events <- ev:
	case <-b.ctx.Done():
	}
}

func (b *Backend) fail(err error) {
	b.logger.Error("extraction failed", "error", err)
	b.emit(app.ExtractionError{Message: err.Error()})
}

// async runs fn in the background, emitting its event or its error.
func (b *Backend) async(fn func(ctx context.Context) (app.Event, error)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ev, err := fn(b.ctx)
		if b.ctx.Err() != nil {
			return
		}
		if err != nil {
			b.fail(err)
			return
		}
		b.emit(ev)
	}()
}

// ExtractColors extracts a palette with the named method and mode.
func (b *Backend) ExtractColors(path, method, mode string) {
	b.async(func(ctx context.Context) (app.Event, error) {
		colors, err := b.Palette(ctx, path, method, mode)
		if err != nil {
			return nil, err
		}
		return app.ColorsExtracted{Colors: colors}, nil
	})
}

// ExtractAccent extracts the accent colour.
func (b *Backend) ExtractAccent(path string) {
	b.async(func(context.Context) (app.Event, error) {
		accent, err := b.Accent(path)
		if err != nil {
			return nil, err
		}
		return app.AccentExtracted{Color: accent}, nil
	})
}

// ExtractSourceColors extracts up to state.MaxSeeds seed colours and
// delivers them as a JSON array of objects with a hex field.
func (b *Backend) ExtractSourceColors(path string) {
	b.async(func(context.Context) (app.Event, error) {
		payload, err := b.SourceColorsJSON(path)
		if err != nil {
			return nil, err
		}
		return app.SourceColorsExtracted{JSON: payload}, nil
	})
}

// ExtractAll extracts the palette, accent and seeds concurrently and waits
// for all three. It emits no events.
func (b *Backend) ExtractAll(ctx context.Context, path, method, mode string) (palette []string, accent string, seeds []string, err error) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		palette, err = b.Palette(ctx, path, method, mode)
		return err
	})
	g.Go(func() error {
		var err error
		accent, err = b.Accent(path)
		return err
	})
	g.Go(func() error {
		infos, err := colour.SeedsFromFile(b.loader, path, state.MaxSeeds)
		if err != nil {
			return errors.New("Could not extract Material You colors") //nolint:staticcheck // user-facing message
		}
		seeds = colour.SeedHexes(infos)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, "", nil, err
	}
	return palette, accent, seeds, nil
}

// Palette extracts a palette synchronously. Colours are normalised to
// lowercase #rrggbb; unparseable entries are dropped.
func (b *Backend) Palette(ctx context.Context, path, method, mode string) ([]string, error) {
	m, err := colour.ParseMethod(method)
	if err != nil {
		return nil, err
	}
	md, err := colour.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	ex, err := colour.NewExtractor(colour.ExtractorConfig{
		Method:        m,
		CacheDir:      b.cfg.CacheDir(),
		SliderPercent: 50,
		Loader:        b.loader,
		Logger:        b.logger.Named("extract"),
		Runner:        b.runner,
	})
	if err != nil {
		return nil, err
	}
	b.logger.Debug("extracting palette", "path", path, "method", m, "mode", md)
	raw, err := ex.Extract(ctx, path, md)
	if err != nil {
		return nil, err
	}
	colors := make([]string, 0, len(raw))
	for _, c := range raw {
		if hex, ok := colour.Normalize(c); ok {
			colors = append(colors, hex)
		}
	}
	if len(colors) == 0 {
		return nil, fmt.Errorf("%s returned no colors", m)
	}
	return colors, nil
}

// Accent extracts the accent colour synchronously.
func (b *Backend) Accent(path string) (string, error) {
	accent, err := colour.AccentFromFile(b.loader, path)
	if err != nil || accent == "" {
		b.logger.Debug("accent extraction failed", "path", path, "error", err)
		return "", errors.New("Could not extract a vibrant accent color") //nolint:staticcheck // user-facing message
	}
	return accent, nil
}

// SourceColorsJSON extracts the seed colours as a JSON array.
func (b *Backend) SourceColorsJSON(path string) (string, error) {
	seeds, err := colour.SeedsFromFile(b.loader, path, state.MaxSeeds)
	if err != nil || len(seeds) == 0 {
		b.logger.Debug("seed extraction failed", "path", path, "error", err)
		return "", errors.New("Could not extract Material You colors") //nolint:staticcheck // user-facing message
	}
	data, err := json.Marshal(seeds)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GenerateMaterialYouPalette extracts fresh seeds from path and generates a
// palette from the one at seedIndex, clamped to the seeds found.
func (b *Backend) GenerateMaterialYouPalette(path, mode string, seedIndex int, percent float64) {
	b.async(func(context.Context) (app.Event, error) {
		infos, err := colour.SeedsFromFile(b.loader, path, state.MaxSeeds)
		if err != nil || len(infos) == 0 {
			return nil, errors.New("Could not extract Material You source colors for generation") //nolint:staticcheck // user-facing message
		}
		palette, err := materialPalette(colour.SeedHexes(infos), mode, seedIndex, percent)
		if err != nil {
			return nil, err
		}
		return app.ColorsExtracted{Colors: palette}, nil
	})
}

// GenerateMaterialYouPaletteFromSeeds generates a palette from the seed at
// seedIndex, clamped to the seeds given.
func (b *Backend) GenerateMaterialYouPaletteFromSeeds(seeds []string, mode string, seedIndex int, percent float64) {
	seeds = append([]string(nil), seeds...)
	b.async(func(context.Context) (app.Event, error) {
		if len(seeds) == 0 {
			return nil, errors.New("No source seeds provided for generation") //nolint:staticcheck // user-facing message
		}
		palette, err := materialPalette(seeds, mode, seedIndex, percent)
		if err != nil {
			return nil, err
		}
		return app.ColorsExtracted{Colors: palette}, nil
	})
}

func materialPalette(seeds []string, mode string, index int, percent float64) ([]string, error) {
	index = max(0, min(index, len(seeds)-1))
	return colour.MaterialPalette(seeds[index], strings.EqualFold(mode, "light"), percent)
}

// ApplyPaletteVariant transforms a base palette for a slider position.
func (b *Backend) ApplyPaletteVariant(base []string, percent float64) []string {
	return colour.PaletteAtSlider(base, percent)
}

// ConfigValue reads a config value as a string.
func (b *Backend) ConfigValue(section, key, def string) string {
	return b.cfg.GetString(section, key, def)
}

// SetConfigValue stores a config value and saves the file.
func (b *Backend) SetConfigValue(section, key, value string) string {
	if err := b.cfg.Set(section, key, value); err != nil {
		b.logger.Error("could not save config", "section", section, "key", key, "error", err)
		return err.Error()
	}
	return ""
}

// pluginName maps an integration field group to its plugin.
func pluginName(integration string) string {
	if integration == state.IntegrationColorScheme {
		return "colorscheme"
	}
	return integration
}

// Apply runs an integration with the given colours. Keys the caller leaves
// empty take the plugin defaults.
func (b *Backend) Apply(integration string, colours map[string]string) string {
	p, err := b.plugins.Lookup(pluginName(integration))
	if err != nil {
		return err.Error()
	}
	values := output.Colours(colours).NonEmpty().WithDefaults(p.Keys(), p.DefaultColours())
	if err := output.Execute(b.ctx, p, values); err != nil {
		b.logger.Error("apply failed", "integration", integration, "error", err)
		return err.Error()
	}
	b.logger.Info("applied colours", "integration", integration)
	return ""
}

// Restore restores an integration's backup.
func (b *Backend) Restore(integration string) string {
	p, err := b.plugins.Lookup(pluginName(integration))
	if err != nil {
		return err.Error()
	}
	r, ok := p.(output.Restorer)
	if !ok {
		return fmt.Sprintf("%s has no backup to restore", p.Name())
	}
	if err := r.Restore(b.ctx); err != nil {
		b.logger.Error("restore failed", "integration", integration, "error", err)
		return err.Error()
	}
	return ""
}

// Load reads an integration's live colours.
func (b *Backend) Load(integration string) (map[string]string, string) {
	p, err := b.plugins.Lookup(pluginName(integration))
	if err != nil {
		return nil, err.Error()
	}
	l, ok := p.(output.ColourLoader)
	if !ok {
		return nil, fmt.Sprintf("%s colours cannot be loaded", p.Name())
	}
	colours, err := l.Load()
	if err != nil {
		return nil, err.Error()
	}
	return colours, ""
}

// Keys returns the colour keys an integration accepts, or nil when it is
// unknown or disabled.
func (b *Backend) Keys(integration string) []string {
	p, err := b.plugins.Lookup(pluginName(integration))
	if err != nil {
		return nil
	}
	return p.Keys()
}

// Refresh asks an integration's target to reload.
func (b *Backend) Refresh(integration string) string {
	p, err := b.plugins.Lookup(pluginName(integration))
	if err != nil {
		return err.Error()
	}
	r, ok := p.(output.Refresher)
	if !ok {
		return ""
	}
	if err := r.Refresh(b.ctx); err != nil {
		return err.Error()
	}
	return ""
}

// AvailableSettings lists the settings panels for installed integrations.
// The colour scheme panel is always present.
func (b *Backend) AvailableSettings() []string {
	var settings []string
	for _, item := range []struct{ plugin, label string }{
		{"fastfetch", "Fastfetch"},
		{"starship", "Starship"},
		{"ulauncher", "Ulauncher"},
	} {
		if p, ok := b.plugins.Get(item.plugin); ok && p.Installed() && b.plugins.IsEnabled(p) {
			settings = append(settings, item.label)
		}
	}
	return append(settings, "Kuntatinte Color Scheme")
}

// PanelWidth returns the configured width of a panel.
func (b *Backend) PanelWidth(name string) int { return b.cfg.PanelWidth(name) }

func (b *Backend) schemes() *colorscheme.Plugin {
	if p, ok := b.plugins.Get("colorscheme"); ok {
		if cs, ok := p.(*colorscheme.Plugin); ok {
			return cs
		}
	}
	return colorscheme.New(b.cfg, common.WithRunner(b.runner), common.WithLogger(b.logger))
}

func (b *Backend) fastfetch() (*fastfetch.Plugin, error) {
	p, err := b.plugins.Lookup("fastfetch")
	if err != nil {
		return nil, err
	}
	ff, ok := p.(*fastfetch.Plugin)
	if !ok {
		return nil, errors.New("fastfetch integration is not available")
	}
	return ff, nil
}

// ColorSchemes lists the installed KDE colour schemes.
func (b *Backend) ColorSchemes() []string { return b.schemes().Store().List() }

// CurrentColorScheme returns the active scheme name, or "Unknown".
func (b *Backend) CurrentColorScheme() string { return b.schemes().Store().CurrentScheme(b.ctx) }

// ColorSections lists the colour sections of a scheme.
func (b *Backend) ColorSections(name string) []string { return b.schemes().Store().ColorSections(name) }

// InactiveSections lists the inactive colour sections of a scheme.
func (b *Backend) InactiveSections(name string) []string {
	return b.schemes().Store().InactiveSections(name)
}

// FullSchemeData returns every colour of a scheme.
func (b *Backend) FullSchemeData(name string) colorscheme.SchemeData {
	return b.schemes().Store().FullSchemeData(name)
}

// SaveScheme writes a scheme to the user scheme directory.
func (b *Backend) SaveScheme(name string, isDark bool, data colorscheme.SchemeData) string {
	path, err := b.schemes().Store().Save(name, isDark, data)
	if err != nil {
		b.logger.Error("could not save scheme", "name", name, "error", err)
		return err.Error()
	}
	b.logger.Info("saved scheme", "path", path)
	return ""
}

// ApplyColorScheme activates an installed scheme.
func (b *Backend) ApplyColorScheme(name string) bool {
	if err := b.schemes().Store().ApplyScheme(b.ctx, name); err != nil {
		b.logger.Error("could not apply scheme", "name", name, "error", err)
		return false
	}
	return true
}

// ApplyPaletteToKDE writes the palette straight into kdeglobals.
func (b *Backend) ApplyPaletteToKDE(palette []string, accent string) string {
	if err := b.schemes().Store().ApplyPalette(b.ctx, palette, accent); err != nil {
		return err.Error()
	}
	return ""
}

// GenerateKuntatinteSchemes renders the Kuntatinte light and dark schemes.
// A primaryIndex of -1 with an accent generates from the accent.
func (b *Backend) GenerateKuntatinteSchemes(palette []string, primaryIndex, toolbarOpacity int, accent string) string {
	palette, primaryIndex = colorscheme.WithAccent(palette, primaryIndex, accent)
	msg, err := b.schemes().GenerateAndSave(palette, primaryIndex, toolbarOpacity)
	if err != nil {
		b.logger.Error("Error generating Kuntatinte schemes", "error", err)
		return err.Error()
	}
	b.logger.Info("Kuntatinte schemes generated", "message", msg)
	return ""
}

// GenerateAndApplyKuntatinte generates the schemes and activates the one
// matching mode.
func (b *Backend) GenerateAndApplyKuntatinte(palette []string, primaryIndex, toolbarOpacity int, accent, mode string) string {
	if msg := b.GenerateKuntatinteSchemes(palette, primaryIndex, toolbarOpacity, accent); msg != "" {
		return msg
	}
	name := colorscheme.DarkSchemeName
	if strings.EqualFold(mode, "light") {
		name = colorscheme.LightSchemeName
	}
	if !b.ApplyColorScheme(name) {
		return fmt.Sprintf("Could not apply %s", name)
	}
	return ""
}

// KuntatintePreview returns the preview colours of the Kuntatinte schemes,
// or nil for an empty palette.
func (b *Backend) KuntatintePreview(palette []string, primaryIndex int, accent string) *colorscheme.Preview {
	if len(palette) == 0 {
		return nil
	}
	palette, primaryIndex = colorscheme.WithAccent(palette, primaryIndex, accent)
	preview := colorscheme.NewGenerator(palette, primaryIndex, 100).Preview()
	return &preview
}

// FastfetchLogos returns the template, active and custom logo paths. Missing
// ones are empty.
func (b *Backend) FastfetchLogos() (template, active, custom string) {
	ff, err := b.fastfetch()
	if err != nil {
		return "", "", ""
	}
	template, _ = ff.TemplatePath()
	active, _ = ff.ActiveLogoPath()
	return template, active, ff.CustomLogoPath()
}

// SetFastfetchLogo stores a custom logo; an empty path resets to the
// template.
func (b *Backend) SetFastfetchLogo(path string) string {
	ff, err := b.fastfetch()
	if err != nil {
		return err.Error()
	}
	msg, err := ff.SetCustomLogo(path)
	if err != nil {
		return err.Error()
	}
	b.logger.Info(msg)
	return ""
}

// FastfetchPreview writes a tinted copy of the active logo and returns its
// path.
func (b *Backend) FastfetchPreview(accent string) (string, string) {
	if accent == "" {
		return "", "No accent color provided"
	}
	ff, err := b.fastfetch()
	if err != nil {
		return "", err.Error()
	}
	src, err := ff.ActiveLogoPath()
	if err != nil {
		return "", err.Error()
	}
	path, err := ff.Preview(src, accent)
	if err != nil {
		return "", err.Error()
	}
	return path, ""
}

// RunAutogen derives the rule colours from the active colour scheme and
// returns the JSON payload.
func (b *Backend) RunAutogen(mode string) string {
	res, err := b.autogen.RunCurrent(b.ctx, mode, "", "")
	if err != nil {
		return autogen.ErrorJSON(err)
	}
	return res.JSON()
}

// Integrations returns the registered integrations, sorted, with their
// enabled and installed state.
func (b *Backend) Integrations() []IntegrationInfo {
	all := b.plugins.Registry().All()
	infos := make([]IntegrationInfo, 0, len(all))
	for name, p := range all {
		infos = append(infos, IntegrationInfo{
			Name:        name,
			Description: p.Description(),
			Enabled:     b.plugins.IsEnabled(p),
			Installed:   p.Installed(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// IntegrationInfo describes one integration.
type IntegrationInfo struct {
	Name        string
	Description string
	Enabled     bool
	Installed   bool
}
