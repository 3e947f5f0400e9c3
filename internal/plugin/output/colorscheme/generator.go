package colorscheme

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/jmylchreest/kuntatinte/internal/colour"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/common"
)

// Generated scheme names.
const (
	LightSchemeName = "KuntatinteLight"
	DarkSchemeName  = "KuntatinteDark"
)

// DefaultPrimary is used when the palette is empty.
const DefaultPrimary = "#3daee9"

const errorSeed = "#ba1a1a"

// semanticSeeds are the Breeze link and state colours.
var semanticSeeds = map[string]string{
	"link":     "#2980b9",
	"visited":  "#9b59b6",
	"negative": "#da4453",
	"neutral":  "#f67400",
	"positive": "#27ae60",
}

// TonalPalette holds a hue at every HSL lightness from 0 to 100.
type TonalPalette [101]string

// NewTonalPalette keeps the hue and saturation of base, scaling the
// saturation by factor.
func NewTonalPalette(base string, factor float64) TonalPalette {
	var p TonalPalette
	hsl, err := colour.HexToHSL(base)
	if err != nil {
		hsl, _ = colour.HexToHSL(DefaultPrimary)
	}
	for tone := range p {
		p[tone] = colour.HSLToHex(hsl.H, hsl.S*factor, float64(tone))
	}
	return p
}

// SemanticColour is a state colour in one mode.
type SemanticColour struct {
	Primary               string
	OnPrimaryFixedVariant string
}

// Semantic holds the state colours rendered into Foreground* keys.
type Semantic struct {
	Link, Visited, Negative, Neutral, Positive SemanticColour
}

// SchemeColours is the data a scheme template is rendered with.
type SchemeColours struct {
	Name            string
	InactiveEnabled bool
	ActiveBlend     string
	InactiveBlend   string
	ToolbarOpacity  int

	Surface                 string
	SurfaceDim              string
	SurfaceContainer        string
	SurfaceContainerHigh    string
	SurfaceContainerHighest string
	SurfaceContainerLowest  string
	SurfaceVariant          string

	OnSurface        string
	OnSurfaceVariant string
	Outline          string

	Primary            string
	OnPrimary          string
	Secondary          string
	OnSecondary        string
	SecondaryContainer string

	InverseSurface string
	InversePrimary string

	Extras Semantic
}

// Generator derives light and dark KDE schemes from one primary colour.
type Generator struct {
	Primary        string
	ToolbarOpacity int

	primary, secondary, tertiary TonalPalette
	neutral, neutralVariant      TonalPalette
	errorTones                   TonalPalette
	semantic                     map[string]TonalPalette
}

// WithAccent prepends accent to palette when primaryIndex is -1, returning
// the palette and index to generate from.
func WithAccent(palette []string, primaryIndex int, accent string) ([]string, int) {
	if primaryIndex == -1 && accent != "" {
		return append([]string{accent}, palette...), 0
	}
	return palette, primaryIndex
}

// NewGenerator picks palette[primaryIndex] as the primary colour. An empty
// palette uses DefaultPrimary and an out of range index the first colour.
func NewGenerator(palette []string, primaryIndex, toolbarOpacity int) *Generator {
	primary := DefaultPrimary
	switch {
	case primaryIndex >= 0 && primaryIndex < len(palette):
		primary = palette[primaryIndex]
	case len(palette) > 0:
		primary = palette[0]
	}
	if _, err := colour.HexToHSL(primary); err != nil {
		primary = DefaultPrimary
	}

	g := &Generator{Primary: primary, ToolbarOpacity: min(max(toolbarOpacity, 0), 100)}
	g.primary = NewTonalPalette(primary, 1)
	g.neutral = NewTonalPalette(primary, 0.05)
	g.neutralVariant = NewTonalPalette(primary, 0.12)

	hsl, _ := colour.HexToHSL(primary)
	g.secondary = NewTonalPalette(colour.HSLToHex(hsl.H+30, hsl.S*0.6, hsl.L), 1)
	g.tertiary = NewTonalPalette(colour.HSLToHex(hsl.H+60, hsl.S*0.8, hsl.L), 1)
	g.errorTones = NewTonalPalette(errorSeed, 1)

	g.semantic = make(map[string]TonalPalette, len(semanticSeeds))
	for name, seed := range semanticSeeds {
		g.semantic[name] = NewTonalPalette(seed, 1)
	}
	return g
}

func (g *Generator) semanticColour(name string, dark bool) SemanticColour {
	p := g.semantic[name]
	if dark {
		return SemanticColour{Primary: p[80], OnPrimaryFixedVariant: p[80]}
	}
	return SemanticColour{Primary: p[40], OnPrimaryFixedVariant: p[30]}
}

// Colours returns the template data for the dark or light scheme.
func (g *Generator) Colours(dark bool) SchemeColours {
	extras := Semantic{
		Link:     g.semanticColour("link", dark),
		Visited:  g.semanticColour("visited", dark),
		Negative: g.semanticColour("negative", dark),
		Neutral:  g.semanticColour("neutral", dark),
		Positive: g.semanticColour("positive", dark),
	}
	n, nv, p, s := g.neutral, g.neutralVariant, g.primary, g.secondary

	if dark {
		return SchemeColours{
			Name:                    DarkSchemeName,
			InactiveEnabled:         true,
			ActiveBlend:             "252,252,252",
			InactiveBlend:           "161,169,177",
			ToolbarOpacity:          g.ToolbarOpacity,
			Surface:                 n[10],
			SurfaceDim:              n[5],
			SurfaceContainer:        n[12],
			SurfaceContainerHigh:    n[17],
			SurfaceContainerHighest: n[22],
			SurfaceContainerLowest:  n[5],
			SurfaceVariant:          nv[30],
			OnSurface:               n[90],
			OnSurfaceVariant:        nv[80],
			Outline:                 nv[60],
			Primary:                 p[80],
			OnPrimary:               p[20],
			Secondary:               s[80],
			OnSecondary:             s[20],
			SecondaryContainer:      s[30],
			InverseSurface:          n[90],
			InversePrimary:          p[40],
			Extras:                  extras,
		}
	}
	return SchemeColours{
		Name:                    LightSchemeName,
		InactiveEnabled:         false,
		ActiveBlend:             "227,229,231",
		InactiveBlend:           "239,240,241",
		ToolbarOpacity:          g.ToolbarOpacity,
		Surface:                 n[99],
		SurfaceDim:              n[95],
		SurfaceContainer:        n[94],
		SurfaceContainerHigh:    n[92],
		SurfaceContainerHighest: n[90],
		SurfaceContainerLowest:  n[100],
		SurfaceVariant:          nv[90],
		OnSurface:               n[10],
		OnSurfaceVariant:        nv[30],
		Outline:                 nv[50],
		Primary:                 p[40],
		OnPrimary:               p[100],
		Secondary:               s[40],
		OnSecondary:             s[100],
		SecondaryContainer:      s[90],
		InverseSurface:          n[20],
		InversePrimary:          p[80],
		Extras:                  extras,
	}
}

// Render executes a scheme template for the dark or light scheme.
func (g *Generator) Render(tmpl []byte, dark bool) (string, error) {
	t, err := template.New("scheme").Funcs(common.TemplateFuncs()).Parse(string(tmpl))
	if err != nil {
		return "", fmt.Errorf("failed to parse scheme template: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, g.Colours(dark)); err != nil {
		return "", fmt.Errorf("failed to render scheme template: %w", err)
	}
	return buf.String(), nil
}

// PreviewColours returns the handful of colours shown in the scheme preview.
func (g *Generator) PreviewColours(dark bool) map[string]string {
	if dark {
		return map[string]string{
			"surface":   g.neutral[10],
			"onSurface": g.neutral[90],
			"primary":   g.primary[80],
			"onPrimary": g.primary[20],
			"secondary": g.secondary[80],
			"tertiary":  g.tertiary[80],
			"error":     g.errorTones[80],
			"outline":   g.neutralVariant[60],
		}
	}
	return map[string]string{
		"surface":   g.neutral[99],
		"onSurface": g.neutral[10],
		"primary":   g.primary[40],
		"onPrimary": g.primary[100],
		"secondary": g.secondary[40],
		"tertiary":  g.tertiary[40],
		"error":     g.errorTones[40],
		"outline":   g.neutralVariant[50],
	}
}

// TonalPalettes returns every tonal palette by role.
func (g *Generator) TonalPalettes() map[string]TonalPalette {
	return map[string]TonalPalette{
		"primary":        g.primary,
		"secondary":      g.secondary,
		"tertiary":       g.tertiary,
		"neutral":        g.neutral,
		"neutralVariant": g.neutralVariant,
		"error":          g.errorTones,
	}
}

// Preview bundles the light and dark preview colours with the tonal palettes.
type Preview struct {
	Light    map[string]string       `json:"light"`
	Dark     map[string]string       `json:"dark"`
	Palettes map[string]TonalPalette `json:"palettes"`
}

// Preview returns the data the scheme panel displays.
func (g *Generator) Preview() Preview {
	return Preview{
		Light:    g.PreviewColours(false),
		Dark:     g.PreviewColours(true),
		Palettes: g.TonalPalettes(),
	}
}
