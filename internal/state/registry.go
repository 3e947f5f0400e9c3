package state

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// MaxSeeds is the largest seed set kept by the registry.
const MaxSeeds = 7

// MethodCustom is the extraction method that allows editing swatches by hand.
const MethodCustom = "Custom"

// Registry holds the colour sources extracted for the current wallpaper and
// the active selection. Displayed palettes are always derived from their
// base through the variant function; the selected colour is derived on
// every read.
//
// Registry is not safe for concurrent use.
type Registry struct {
	basePalette      []string
	displayedPalette []string
	accent           string
	baseSeeds        []string
	displayedSeeds   []string

	// lastBase is the most recent non-empty base palette. It survives
	// Reset so the Custom method has something to edit.
	lastBase []string

	selection Selection
	step      int
	method    string
	mode      string
	image     string

	variant VariantFunc
	logger  hclog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithVariantFunc sets the palette transform used by the tonal slider.
func WithVariantFunc(fn VariantFunc) RegistryOption {
	return func(r *Registry) { r.variant = fn }
}

// WithLogger sets the logger used to report degraded input.
func WithLogger(logger hclog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMethod sets the initial extraction method and mode.
func WithMethod(method, mode string) RegistryOption {
	return func(r *Registry) {
		r.method = method
		r.mode = mode
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{logger: hclog.NewNullLogger(), mode: "dark"}
	for _, opt := range opts {
		opt(r)
	}
	r.Reset()
	return r
}

// Reset empties every colour source, clears the selection and returns the
// slider to its default step.
func (r *Registry) Reset() {
	r.basePalette = []string{}
	r.displayedPalette = []string{}
	r.accent = ""
	r.baseSeeds = []string{}
	r.displayedSeeds = []string{}
	r.selection = None()
	r.step = DefaultStep
}

// ImageChanged records a new wallpaper and resets the colour sources.
func (r *Registry) ImageChanged(path string) {
	if path == r.image {
		return
	}
	r.logger.Debug("image changed", "path", path)
	r.image = path
	r.Reset()
}

// Image returns the current wallpaper path.
func (r *Registry) Image() string { return r.image }

// SetPalette stores a freshly extracted palette as the new base.
func (r *Registry) SetPalette(colors []string) {
	if len(colors) > 0 {
		r.lastBase = clone(colors)
	}
	r.basePalette = clone(colors)
	r.displayedPalette = propagate(r.variant, r.basePalette, r.step)
}

// SetAccent stores the extracted accent.
func (r *Registry) SetAccent(color string) {
	r.accent = color
}

// SetSeeds stores the seed set, keeping at most MaxSeeds entries. Seeds are
// not affected by the tonal slider.
func (r *Registry) SetSeeds(seeds []string) {
	if len(seeds) > MaxSeeds {
		r.logger.Debug("dropping extra seed colours", "received", len(seeds), "kept", MaxSeeds)
		seeds = seeds[:MaxSeeds]
	}
	r.baseSeeds = clone(seeds)
	r.displayedSeeds = clone(seeds)
}

// SetSeedsJSON stores seeds delivered as a JSON array, either of hex strings
// or of objects with a "hex" field. Malformed input is logged and yields an
// empty seed set.
func (r *Registry) SetSeedsJSON(payload string) {
	seeds, err := ParseSeedsJSON(payload)
	if err != nil {
		r.logger.Warn("ignoring malformed seed colours", "error", err)
		seeds = nil
	}
	r.SetSeeds(seeds)
}

// ParseSeedsJSON decodes a seed payload.
func ParseSeedsJSON(payload string) ([]string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse seed colours: %w", err)
	}

	seeds := make([]string, 0, len(raw))
	for i, item := range raw {
		var hex string
		if err := json.Unmarshal(item, &hex); err == nil {
			seeds = append(seeds, hex)
			continue
		}
		var obj struct {
			Hex string `json:"hex"`
		}
		if err := json.Unmarshal(item, &obj); err != nil || obj.Hex == "" {
			return nil, fmt.Errorf("seed %d is neither a colour string nor an object with a hex field", i)
		}
		seeds = append(seeds, obj.Hex)
	}
	return seeds, nil
}

// EditSwatch overwrites one palette swatch by hand. It only applies to the
// Custom method, and rebases both the base and displayed palettes.
func (r *Registry) EditSwatch(i int, color string) error {
	if r.method != MethodCustom {
		return fmt.Errorf("swatches can only be edited with the %s method", MethodCustom)
	}
	if i < 0 || i >= len(r.basePalette) {
		return fmt.Errorf("swatch index out of range: %d (palette has %d colours)", i, len(r.basePalette))
	}
	r.basePalette[i] = color
	r.displayedPalette[i] = color
	r.lastBase = clone(r.basePalette)
	return nil
}

// SeedCustom fills an empty palette from the last extracted base while the
// Custom method is active. It reports whether there is a palette to edit.
func (r *Registry) SeedCustom() bool {
	if r.method != MethodCustom {
		return false
	}
	if len(r.basePalette) == 0 && len(r.lastBase) > 0 {
		r.SetPalette(r.lastBase)
	}
	return len(r.basePalette) > 0
}

// SetMethod changes the extraction method. A different method resets the
// slider to its default step. Switching to Custom with an empty palette
// restores the last extracted one.
func (r *Registry) SetMethod(method string) {
	if method == r.method {
		return
	}
	r.method = method
	r.SetStep(DefaultStep)
	r.SeedCustom()
}

// Method returns the current extraction method.
func (r *Registry) Method() string { return r.method }

// SetMode sets the palette mode (dark, light or auto).
func (r *Registry) SetMode(mode string) { r.mode = mode }

// Mode returns the palette mode.
func (r *Registry) Mode() string { return r.mode }

// SetStep moves the tonal slider and recomputes the displayed palette.
func (r *Registry) SetStep(step int) {
	r.step = clampStep(step)
	r.displayedPalette = propagate(r.variant, r.basePalette, r.step)
}

// Step returns the slider step.
func (r *Registry) Step() int { return r.step }

// Percent returns the variant percentage for the current step.
func (r *Registry) Percent() float64 { return StepPercent(r.step) }

// Select makes sel the active selection.
func (r *Registry) Select(sel Selection) { r.selection = sel }

// SelectToken makes the selection encoded by token active.
func (r *Registry) SelectToken(token int) { r.selection = SelectionFromToken(token) }

// Selection returns the active selection.
func (r *Registry) Selection() Selection { return r.selection }

// SelectedColor resolves the active selection against the displayed data.
func (r *Registry) SelectedColor() string {
	return Resolve(r.selection, r.displayedPalette, r.accent, r.displayedSeeds)
}

// Palette returns a copy of the displayed palette.
func (r *Registry) Palette() []string { return clone(r.displayedPalette) }

// BasePalette returns a copy of the palette as extracted.
func (r *Registry) BasePalette() []string { return clone(r.basePalette) }

// Accent returns the accent colour.
func (r *Registry) Accent() string { return r.accent }

// Seeds returns a copy of the displayed seed set.
func (r *Registry) Seeds() []string { return clone(r.displayedSeeds) }

// Empty reports whether no colour source holds any data.
func (r *Registry) Empty() bool {
	return len(r.basePalette) == 0 && r.accent == "" && len(r.baseSeeds) == 0
}
