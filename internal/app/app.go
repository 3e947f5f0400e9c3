// Package app holds the application state shared by the front-ends: the
// colour source registry, the panel layout and the integration fields,
// together with the backend they drive.
package app

import (
	"fmt"
	"maps"
	"slices"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/kuntatinte/internal/colour"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/colorscheme"
	"github.com/jmylchreest/kuntatinte/internal/state"
)

// defaultMethod extracts the palette the Custom method starts from.
var defaultMethod = string(colour.MethodImageMagick)

// Event is a backend completion delivered to Dispatch.
type Event interface {
	event()
}

// ColorsExtracted carries a new palette.
type ColorsExtracted struct{ Colors []string }

// AccentExtracted carries a new accent colour.
type AccentExtracted struct{ Color string }

// SourceColorsExtracted carries the seed colours as a JSON array.
type SourceColorsExtracted struct{ JSON string }

// ExtractionError reports a failed extraction or generation.
type ExtractionError struct{ Message string }

func (ColorsExtracted) event()       {}
func (AccentExtracted) event()       {}
func (SourceColorsExtracted) event() {}
func (ExtractionError) event()       {}

// Backend is the service the application drives. Extraction and generation
// return immediately and complete through Events. The string-returning calls
// return "" on success and an error message otherwise.
type Backend interface {
	Events() <-chan Event

	ExtractColors(path, method, mode string)
	ExtractAccent(path string)
	ExtractSourceColors(path string)
	GenerateMaterialYouPalette(path, mode string, seedIndex int, percent float64)
	GenerateMaterialYouPaletteFromSeeds(seeds []string, mode string, seedIndex int, percent float64)

	ApplyPaletteVariant(base []string, percent float64) []string

	ConfigValue(section, key, def string) string
	SetConfigValue(section, key, value string) string

	Apply(integration string, colours map[string]string) string
	Restore(integration string) string
	Load(integration string) (map[string]string, string)

	ColorSchemes() []string
	ColorSections(name string) []string
	InactiveSections(name string) []string
	FullSchemeData(name string) colorscheme.SchemeData
	SaveScheme(name string, isDark bool, data colorscheme.SchemeData) string
	ApplyColorScheme(name string) bool
}

// App is the application state. It is not safe for concurrent use: events
// and user input must be handled on one goroutine.
type App struct {
	Registry *state.Registry
	Layout   *state.Layout
	Fields   *state.Fields

	backend Backend
	notice  string
	logger  hclog.Logger
}

// New creates the application state. The registry's slider delegates to the
// backend's palette variants.
func New(backend Backend, window state.Window, settingsWidths map[string]int, logger hclog.Logger) *App {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	reg := state.NewRegistry(
		state.WithVariantFunc(backend.ApplyPaletteVariant),
		state.WithLogger(logger.Named("registry")),
		state.WithMethod(backend.ConfigValue("ui", "method", defaultMethod), backend.ConfigValue("ui", "mode", "dark")),
	)
	return &App{
		Registry: reg,
		Layout:   state.NewLayout(window, settingsWidths, logger.Named("layout")),
		Fields:   state.NewFields(reg),
		backend:  backend,
		logger:   logger,
	}
}

// Backend returns the backend.
func (a *App) Backend() Backend { return a.backend }

// Notice returns the last transient message, if any.
func (a *App) Notice() string { return a.notice }

// ClearNotice dismisses the transient message.
func (a *App) ClearNotice() { a.notice = "" }

// Dispatch applies a backend completion. Later completions overwrite
// earlier ones; errors leave the state untouched.
func (a *App) Dispatch(ev Event) {
	switch ev := ev.(type) {
	case ColorsExtracted:
		a.Registry.SetPalette(ev.Colors)
	case AccentExtracted:
		a.Registry.SetAccent(ev.Color)
	case SourceColorsExtracted:
		a.Registry.SetSeedsJSON(ev.JSON)
	case ExtractionError:
		a.logger.Warn("extraction failed", "error", ev.Message)
		a.notice = ev.Message
	default:
		a.logger.Debug("ignoring unknown event", "event", ev)
	}
}

// LoadImage switches to a new wallpaper and requests its palette, accent and
// seed colours.
func (a *App) LoadImage(path string) {
	a.Registry.ImageChanged(path)
	a.Extract()
}

// Extract requests extraction for the current wallpaper with the current
// method and mode. The Custom method keeps the last palette and only
// extracts one when there has never been any.
func (a *App) Extract() {
	path := a.Registry.Image()
	if path == "" {
		return
	}
	switch {
	case a.Registry.Method() != state.MethodCustom:
		a.backend.ExtractColors(path, a.Registry.Method(), a.Registry.Mode())
	case !a.Registry.SeedCustom():
		a.backend.ExtractColors(path, defaultMethod, a.Registry.Mode())
	}
	a.backend.ExtractAccent(path)
	a.backend.ExtractSourceColors(path)
}

// SetMethod changes the extraction method, persists it and re-extracts.
func (a *App) SetMethod(method string) {
	a.Registry.SetMethod(method)
	a.note(a.backend.SetConfigValue("ui", "method", method))
	a.Extract()
}

// SetMode changes the palette mode, persists it and re-extracts.
func (a *App) SetMode(mode string) {
	a.Registry.SetMode(mode)
	a.note(a.backend.SetConfigValue("ui", "mode", mode))
	a.Extract()
}

// GenerateFromSeed regenerates the palette from one of the seed colours.
func (a *App) GenerateFromSeed(index int) {
	seeds := a.Registry.Seeds()
	if len(seeds) == 0 {
		a.notice = "No source seeds provided for generation"
		return
	}
	a.backend.GenerateMaterialYouPaletteFromSeeds(seeds, a.Registry.Mode(), index, a.Registry.Percent())
}

// EditSwatch overwrites palette swatch i with a colour typed by hand.
func (a *App) EditSwatch(i int, hex string) string {
	c, ok := colour.Normalize(hex)
	if !ok {
		return a.note(fmt.Sprintf("Invalid colour: %s", hex))
	}
	if err := a.Registry.EditSwatch(i, c); err != nil {
		return a.note(err.Error())
	}
	return ""
}

// PickField sets an integration field to a colour typed by hand.
func (a *App) PickField(name, key, hex string) string {
	c, ok := colour.Normalize(hex)
	if !ok {
		return a.note(fmt.Sprintf("Invalid colour: %s", hex))
	}
	a.Fields.Pick(name, key, c)
	return ""
}

// LoadConfigFields fills the empty fields of an integration from its config
// section. Fields that already hold a colour are kept.
func (a *App) LoadConfigFields(name string, keys []string) {
	for _, key := range keys {
		if a.Fields.Value(name, key) != "" {
			continue
		}
		if v := a.backend.ConfigValue(name, key, ""); v != "" {
			a.Fields.FromConfig(name, key, v)
		}
	}
}

// ApplyIntegration applies the integration's current fields and stores them
// in its config section.
func (a *App) ApplyIntegration(name string) string {
	values := a.Fields.Values(name)
	if msg := a.backend.Apply(name, values); msg != "" {
		return a.note(msg)
	}
	for _, key := range slices.Sorted(maps.Keys(values)) {
		a.note(a.backend.SetConfigValue(name, key, values[key]))
	}
	return ""
}

// RestoreIntegration restores the integration's backup.
func (a *App) RestoreIntegration(name string) string {
	return a.note(a.backend.Restore(name))
}

// LoadIntegration replaces the integration's fields with its live colours.
func (a *App) LoadIntegration(name string) string {
	values, msg := a.backend.Load(name)
	if msg == "" {
		a.Fields.LoadFrom(name, values)
	}
	return a.note(msg)
}

func (a *App) note(msg string) string {
	if msg != "" {
		a.notice = msg
	}
	return msg
}
