// Package autogen derives integration colours from the Kuntatinte KDE
// colour schemes using per-mode rule files.
package autogen

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/kuntatinte/internal/colour"
	"github.com/jmylchreest/kuntatinte/internal/config"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/colorscheme"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/common"
	tmplloader "github.com/jmylchreest/kuntatinte/internal/plugin/output/template"
	"github.com/jmylchreest/kuntatinte/internal/security"
)

// RulesDir is the template directory holding <mode>.json or <mode>.yaml.
const RulesDir = "autogen_rules"

// Extract methods.
const (
	MethodVariable       = "variable"
	MethodColorScheme    = "color_scheme"
	MethodBetterContrast = "better_contrast"
)

// Placeholder is replaced by palette colours in better_contrast rules.
const Placeholder = "TobeDefined"

// fallbackColour marks values a rule could not produce.
const fallbackColour = "#ff0000"

// DefaultPalette is generated from when Run is given no palette.
var DefaultPalette = []string{"#3daee9", "#1d99f3", "#7f8c8d", "#34495e", "#2c3e50"}

//go:embed rules/*.yaml
var embedded embed.FS

// Rule describes how one colour is derived.
type Rule struct {
	ExtractMethod string   `yaml:"extract_method" json:"extract_method"`
	VariableKey   string   `yaml:"variable_key" json:"variable_key,omitempty"`
	SchemeSection string   `yaml:"scheme_section" json:"scheme_section,omitempty"`
	SchemeKey     string   `yaml:"scheme_key" json:"scheme_key,omitempty"`
	BaseColor     string   `yaml:"base_color" json:"base_color,omitempty"`
	GroupColors   []string `yaml:"group_colors" json:"group_colors,omitempty"`
}

// Rules maps application to colour key to rule.
type Rules map[string]map[string]Rule

// Value is a generated colour with its alpha as a 0-100 percentage string.
type Value struct {
	Color string `json:"color"`
	Alpha string `json:"alpha"`
}

// Result is the payload of a successful run.
type Result struct {
	Status       string                      `json:"status"`
	Mode         string                      `json:"mode"`
	PaletteMode  string                      `json:"palette_mode"`
	PrimaryIndex int                         `json:"primary_index"`
	Generated    map[string]map[string]Value `json:"generated"`
}

// JSON renders the result.
func (r *Result) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		return ErrorJSON(err)
	}
	return string(data)
}

// ErrorJSON renders err as {"status": "error", "message": ...}.
func ErrorJSON(err error) string {
	data, _ := json.Marshal(map[string]string{"status": "error", "message": err.Error()})
	return string(data)
}

// Request holds the inputs of Run.
type Request struct {
	PaletteMode    string
	Palette        []string
	PrimaryIndex   int
	AccentOverride string
	PrimaryColor   string
}

// Generator runs autogen against the colour scheme plugin's store.
type Generator struct {
	schemes *colorscheme.Plugin
	loader  *tmplloader.Loader
	logger  hclog.Logger
}

// New creates a Generator. Rules are read from the config's templates
// directory, falling back to the embedded defaults.
func New(cfg *config.Config, schemes *colorscheme.Plugin, logger hclog.Logger) *Generator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	rules, err := fs.Sub(embedded, "rules")
	if err != nil {
		panic(err)
	}
	return &Generator{
		schemes: schemes,
		loader: tmplloader.New(RulesDir, rules).
			WithCustomBase(cfg.TemplatesDir()).
			WithLogger(common.NewHCLogPrinter(logger)),
		logger: logger,
	}
}

// Loader returns the rules loader.
func (g *Generator) Loader() *tmplloader.Loader { return g.loader }

// LoadRules reads the rules for mode: a custom <mode>.json first, then a
// custom or embedded <mode>.yaml.
func (g *Generator) LoadRules(mode string) (Rules, error) {
	if err := security.ValidateName(mode); err != nil {
		return nil, err
	}
	name := mode + ".json"
	if !g.loader.HasCustomTemplate(name) {
		name = mode + ".yaml"
	}
	data, _, err := g.loader.Load(name)
	if err != nil {
		return nil, fmt.Errorf("No rules found for mode %s", mode) //nolint:staticcheck // user-facing message
	}
	rules, err := parseRules(name, data)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("No rules found for mode %s", mode) //nolint:staticcheck // user-facing message
	}
	return rules, nil
}

// parseRules decodes JSON (comments and trailing commas allowed) or YAML.
func parseRules(name string, data []byte) (Rules, error) {
	var rules Rules
	if strings.HasSuffix(name, ".json") {
		std, err := hujson.Standardize(data)
		if err == nil {
			err = json.Unmarshal(std, &rules)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		return rules, nil
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return rules, nil
}

// schemeName returns the Kuntatinte scheme for a palette mode.
func schemeName(mode string) string {
	if mode == "light" {
		return colorscheme.LightSchemeName
	}
	return colorscheme.DarkSchemeName
}

// Run regenerates the Kuntatinte schemes from the palette and derives every
// rule's colour from the scheme matching the mode.
func (g *Generator) Run(_ context.Context, req Request) (*Result, error) {
	if req.PaletteMode == "" {
		return nil, errors.New("palette_mode required")
	}

	palette := req.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	var index int
	switch {
	case req.PrimaryIndex == -1 && req.AccentOverride != "":
		palette, index = colorscheme.WithAccent(palette, -1, req.AccentOverride)
	case req.PrimaryColor != "":
		if i := slices.Index(palette, req.PrimaryColor); i >= 0 {
			index = i
		} else {
			palette = append([]string{req.PrimaryColor}, palette...)
			g.logger.Info("added primary colour to palette", "colour", req.PrimaryColor)
		}
	default:
		index = req.PrimaryIndex
	}
	g.logger.Debug("generating schemes", "palette", palette, "primary_index", index)

	if _, err := g.schemes.GenerateAndSave(palette, index, 100); err != nil {
		return nil, fmt.Errorf("Failed to generate schemes: %w", err) //nolint:staticcheck // user-facing message
	}

	rules, err := g.LoadRules(req.PaletteMode)
	if err != nil {
		return nil, err
	}

	name := schemeName(req.PaletteMode)
	if _, ok := g.schemes.Store().SchemePath(name); !ok {
		return nil, fmt.Errorf("Scheme file not found: %s.colors", name) //nolint:staticcheck // user-facing message
	}

	base, group := fallbackColour, []string{fallbackColour}
	if len(req.Palette) > 0 {
		base, group = req.Palette[0], req.Palette
	}
	src := source{
		scheme: g.schemes.Store().FullSchemeData(name),
		accent: req.AccentOverride,
		base:   base,
		group:  group,
		logger: g.logger,
	}
	return &Result{
		Status:       "ok",
		Mode:         "prod",
		PaletteMode:  req.PaletteMode,
		PrimaryIndex: index,
		Generated:    src.generate(rules),
	}, nil
}

// RunCurrent derives the rule colours from the active colour scheme without
// regenerating anything. Without an active scheme the Kuntatinte scheme for
// the mode is used.
func (g *Generator) RunCurrent(ctx context.Context, mode, primaryColor, accentOverride string) (*Result, error) {
	if mode == "" {
		return nil, errors.New("palette_mode required")
	}

	name := g.schemes.Store().CurrentScheme(ctx)
	if name == "Unknown" {
		name = schemeName(mode)
	}
	g.logger.Info("active color scheme", "scheme", name)
	if _, ok := g.schemes.Store().SchemePath(name); !ok {
		return nil, fmt.Errorf("Color scheme %s not found", name) //nolint:staticcheck // user-facing message
	}

	rules, err := g.LoadRules(mode)
	if err != nil {
		return nil, err
	}

	base, group := fallbackColour, []string{fallbackColour}
	if primaryColor != "" {
		base, group = primaryColor, []string{primaryColor}
	}
	src := source{
		scheme: g.schemes.Store().FullSchemeData(name),
		accent: accentOverride,
		base:   base,
		group:  group,
		logger: g.logger,
	}
	return &Result{
		Status:      "ok",
		Mode:        "prod",
		PaletteMode: mode,
		Generated:   src.generate(rules),
	}, nil
}

// source resolves rules against one scheme.
type source struct {
	scheme colorscheme.SchemeData
	accent string
	base   string
	group  []string
	logger hclog.Logger
}

func (s source) generate(rules Rules) map[string]map[string]Value {
	out := make(map[string]map[string]Value, len(rules))
	for app, props := range rules {
		out[app] = make(map[string]Value, len(props))
		for prop, rule := range props {
			hex, opacity := s.resolve(rule)
			if hex == "" {
				s.logger.Warn("rule produced no colour", "app", app, "key", prop)
				hex = fallbackColour
			}
			out[app][prop] = Value{Color: hex, Alpha: alpha(opacity)}
		}
	}
	return out
}

func (s source) resolve(rule Rule) (string, float64) {
	switch rule.ExtractMethod {
	case MethodVariable:
		if rule.VariableKey != "PrimaryColor" {
			return fallbackColour, 1
		}
		if s.accent != "" {
			return s.accent, 1
		}
		return s.lookup("Colors:Window", "DecorationFocus")
	case MethodColorScheme:
		return s.lookup(rule.SchemeSection, rule.SchemeKey)
	case MethodBetterContrast:
		base := rule.BaseColor
		if base == Placeholder {
			base = s.base
		}
		group := rule.GroupColors
		if slices.Contains(group, Placeholder) {
			group = s.group
		}
		return colour.BestContrast(base, group), 1
	}
	return fallbackColour, 1
}

func (s source) lookup(section, key string) (string, float64) {
	entry, ok := s.scheme[section][key]
	if !ok || entry.Raw != "" {
		return "", 1
	}
	return strings.ToLower(entry.Color), entry.Opacity
}

func alpha(opacity float64) string {
	return fmt.Sprint(int(math.Round(opacity * 100)))
}
