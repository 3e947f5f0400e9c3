package colorscheme

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/ini.v1"

	"github.com/jmylchreest/kuntatinte/internal/colour"
	"github.com/jmylchreest/kuntatinte/internal/config"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/common"
	"github.com/jmylchreest/kuntatinte/internal/security"
)

func init() {
	// .colors files are written as key=value with no alignment padding.
	ini.PrettyFormat = false
}

// SystemSchemeDir holds the schemes installed with Plasma.
const SystemSchemeDir = "/usr/share/color-schemes"

// ColorSets are the kdeglobals colour groups, without the "Colors:" prefix.
var ColorSets = []string{"View", "Window", "Button", "Selection", "Tooltip", "Complementary", "Header"}

// ColorKeys are the keys read from each colour set.
var ColorKeys = []string{
	"BackgroundNormal", "BackgroundAlternate",
	"ForegroundNormal", "ForegroundInactive",
	"DecorationFocus", "DecorationHover",
}

// SchemeColor is one entry of a .colors file. Values that are not colours,
// such as effect amounts, keep their text in Raw.
type SchemeColor struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
	Raw     string  `json:"raw,omitempty"`
}

// SchemeData maps section to key to colour.
type SchemeData map[string]map[string]SchemeColor

// Store reads and writes KDE colour schemes and kdeglobals.
type Store struct {
	UserDir   string
	SystemDir string

	runner common.ProcessRunner
	logger hclog.Logger
	now    func() time.Time
}

// NewStore creates a Store over ~/.local/share/color-schemes and the
// system scheme directory.
func NewStore(opts ...common.Option) *Store {
	o := common.ApplyOptions(opts...)
	return &Store{
		UserDir:   config.ExpandPath("~/.local/share/color-schemes"),
		SystemDir: SystemSchemeDir,
		runner:    o.Runner,
		logger:    o.Logger,
		now:       time.Now,
	}
}

// ParseKDEColor parses "#aarrggbb", "#rrggbb" or "r,g,b[,a]" into a hex
// colour and an opacity between 0 and 1. ok is false for anything else, in
// which case the colour is #000000.
func ParseKDEColor(s string) (hex string, opacity float64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "#000000", 1, false
	}

	if strings.HasPrefix(s, "#") {
		switch len(s) {
		case 9:
			a, err := strconv.ParseUint(s[1:3], 16, 8)
			if err != nil {
				return "#000000", 1, false
			}
			return "#" + s[3:], float64(a) / 255, true
		case 7:
			return s, 1, true
		}
		return "#000000", 1, false
	}

	parts := strings.Split(s, ",")
	if len(parts) < 3 {
		return "#000000", 1, false
	}
	var rgb [3]int
	for i := range rgb {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return "#000000", 1, false
		}
		rgb[i] = v
	}
	hex = fmt.Sprintf("#%02x%02x%02x", security.SafeUint8(rgb[0]), security.SafeUint8(rgb[1]), security.SafeUint8(rgb[2]))
	if len(parts) == 4 {
		a, err := strconv.Atoi(strings.TrimSpace(parts[3]))
		if err != nil {
			return "#000000", 1, false
		}
		return hex, float64(a) / 255, true
	}
	return hex, 1, true
}

// FormatKDEColor renders "r,g,b,a". Without alwaysRGBA the alpha is only
// written when the colour is translucent. Invalid colours render as black.
func FormatKDEColor(hex string, opacity float64, alwaysRGBA bool) string {
	rgb, err := colour.ParseHex(hex)
	if err != nil || !strings.HasPrefix(hex, "#") {
		if alwaysRGBA {
			return "0,0,0,255"
		}
		return "0,0,0"
	}
	if alwaysRGBA || opacity < 1 {
		return fmt.Sprintf("%d,%d,%d,%d", rgb.R, rgb.G, rgb.B, int(opacity*255))
	}
	return fmt.Sprintf("%d,%d,%d", rgb.R, rgb.G, rgb.B)
}

// SchemePath returns the file for a scheme, preferring the user directory.
func (s *Store) SchemePath(name string) (string, bool) {
	for _, dir := range []string{s.UserDir, s.SystemDir} {
		p := filepath.Join(dir, name+".colors")
		if common.FileExists(p) {
			return p, true
		}
	}
	return "", false
}

// List returns the scheme names found in both directories, sorted.
func (s *Store) List() []string {
	var names []string
	for _, dir := range []string{s.SystemDir, s.UserDir} {
		matches, _ := filepath.Glob(filepath.Join(dir, "*.colors"))
		for _, m := range matches {
			names = append(names, strings.TrimSuffix(filepath.Base(m), ".colors"))
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// sections loads a scheme file with case-sensitive keys, in file order.
func (s *Store) sections(name string) ([]*ini.Section, error) {
	path, ok := s.SchemePath(name)
	if !ok {
		return nil, fmt.Errorf("color scheme %q not found", name)
	}
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, fmt.Errorf("Error parsing scheme file: %w", err) //nolint:staticcheck // user-facing message
	}
	var out []*ini.Section
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		out = append(out, sec)
	}
	return out, nil
}

// FullSchemeData parses every entry of a scheme. A missing or unreadable
// scheme yields empty data.
func (s *Store) FullSchemeData(name string) SchemeData {
	secs, err := s.sections(name)
	if err != nil {
		s.logger.Debug("could not read scheme", "scheme", name, "error", err)
		return SchemeData{}
	}
	data := make(SchemeData, len(secs))
	for _, sec := range secs {
		entries := make(map[string]SchemeColor, len(sec.Keys()))
		for _, k := range sec.Keys() {
			hex, opacity, ok := ParseKDEColor(k.Value())
			entry := SchemeColor{Color: hex, Opacity: opacity}
			if !ok {
				entry.Raw = k.Value()
			}
			entries[k.Name()] = entry
		}
		data[sec.Name()] = entries
	}
	return data
}

// ColorSections lists the "Colors:" sections, excluding state variants such
// as "Colors:Header][Inactive".
func (s *Store) ColorSections(name string) []string {
	secs, err := s.sections(name)
	if err != nil {
		return []string{}
	}
	out := []string{}
	for _, sec := range secs {
		if strings.HasPrefix(sec.Name(), "Colors:") && !strings.Contains(sec.Name(), "][") {
			out = append(out, sec.Name())
		}
	}
	return out
}

// InactiveSections lists the sections that have an Inactive variant.
func (s *Store) InactiveSections(name string) []string {
	secs, err := s.sections(name)
	if err != nil {
		return []string{}
	}
	out := []string{}
	for _, sec := range secs {
		if base, _, ok := strings.Cut(sec.Name(), "][Inactive"); ok {
			out = append(out, base)
		}
	}
	return out
}

// SectionColors returns the entries of one section.
func (s *Store) SectionColors(name, section string) map[string]SchemeColor {
	if colors, ok := s.FullSchemeData(name)[section]; ok {
		return colors
	}
	return map[string]SchemeColor{}
}

// Save writes data as a scheme in the user directory. An existing scheme is
// first copied to backups/<name>_YYYYmmdd_HHMMSS.colors.
func (s *Store) Save(name string, _ bool, data SchemeData) (string, error) {
	f := ini.Empty()
	general, _ := f.NewSection("General")
	general.Key("ColorScheme").SetValue(name)
	general.Key("Name").SetValue(name)
	general.Key("shadeSortColumn").SetValue("true")
	kde, _ := f.NewSection("KDE")
	kde.Key("contrast").SetValue("4")

	for _, section := range slices.Sorted(maps.Keys(data)) {
		if section == "General" || section == "KDE" {
			continue
		}
		sec, err := f.NewSection(section)
		if err != nil {
			return "", fmt.Errorf("Error saving color scheme: %w", err) //nolint:staticcheck // user-facing message
		}
		for _, key := range slices.Sorted(maps.Keys(data[section])) {
			entry := data[section][key]
			value := entry.Raw
			if value == "" {
				value = FormatKDEColor(entry.Color, entry.Opacity, true)
			}
			sec.Key(key).SetValue(value)
		}
	}

	var buf strings.Builder
	if _, err := f.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("Error saving color scheme: %w", err) //nolint:staticcheck // user-facing message
	}
	return s.WriteScheme(name, buf.String())
}

// WriteScheme stores content as <name>.colors in the user directory, backing
// up any existing file. It returns the written path.
func (s *Store) WriteScheme(name, content string) (string, error) {
	if err := security.ValidateName(name); err != nil {
		return "", fmt.Errorf("Error saving scheme: %w", err) //nolint:staticcheck // user-facing message
	}
	path := filepath.Join(s.UserDir, name+".colors")
	if common.FileExists(path) {
		backup := filepath.Join(s.UserDir, "backups", fmt.Sprintf("%s_%s.colors", name, s.now().Format("20060102_150405")))
		if err := common.CopyFile(path, backup); err != nil {
			s.logger.Warn("Could not create backup", "error", err)
		} else {
			s.logger.Info("Backup created", "path", backup)
		}
	}
	if err := common.WriteFile(path, []byte(content)); err != nil {
		return "", fmt.Errorf("Error saving scheme: %w", err) //nolint:staticcheck // user-facing message
	}
	s.logger.Info("Color scheme saved", "path", path)
	return path, nil
}

// ApplyScheme activates a scheme with plasma-apply-colorscheme.
func (s *Store) ApplyScheme(ctx context.Context, name string) error {
	_, stderr, err := s.runner.Run(ctx, "plasma-apply-colorscheme", []string{name}, nil)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return fmt.Errorf("Error: %s", msg) //nolint:staticcheck // user-facing message
		}
		return fmt.Errorf("Error applying scheme: %w", err) //nolint:staticcheck // user-facing message
	}
	s.logger.Info("Applied color scheme", "scheme", name)
	return nil
}

// CurrentScheme returns the active scheme name, or "Unknown".
func (s *Store) CurrentScheme(ctx context.Context) string {
	out, _, err := s.runner.Run(ctx, "kreadconfig6", []string{"--group", "General", "--key", "ColorScheme"}, nil)
	if err != nil {
		s.logger.Error("Error getting current scheme", "error", err)
		return "Unknown"
	}
	if name := strings.TrimSpace(string(out)); name != "" {
		return name
	}
	return "Unknown"
}

// ReadColor reads Colors:<set>/<key> from kdeglobals.
func (s *Store) ReadColor(ctx context.Context, set, key string) (string, float64) {
	args := []string{"--file", "kdeglobals", "--group", "Colors:" + set, "--key", key}
	out, _, err := s.runner.Run(ctx, "kreadconfig6", args, nil)
	if err != nil {
		s.logger.Error("Error reading color", "set", set, "key", key, "error", err)
		return "#000000", 1
	}
	hex, opacity, _ := ParseKDEColor(string(out))
	return hex, opacity
}

// ColorSet reads ColorKeys of one set.
func (s *Store) ColorSet(ctx context.Context, set string) map[string]string {
	out := make(map[string]string, len(ColorKeys))
	for _, k := range ColorKeys {
		out[k], _ = s.ReadColor(ctx, set, k)
	}
	return out
}

// AllColors reads every set in ColorSets.
func (s *Store) AllColors(ctx context.Context) map[string]map[string]string {
	out := make(map[string]map[string]string, len(ColorSets))
	for _, set := range ColorSets {
		out[set] = s.ColorSet(ctx, set)
	}
	return out
}

// WriteColor writes Colors:<set>/<key> to kdeglobals.
func (s *Store) WriteColor(ctx context.Context, set, key, hex string, opacity float64, notify bool) error {
	args := []string{"--file", "kdeglobals", "--group", "Colors:" + set, "--key", key}
	if notify {
		args = append(args, "--notify")
	}
	args = append(args, FormatKDEColor(hex, opacity, true))
	if _, stderr, err := s.runner.Run(ctx, "kwriteconfig6", args, nil); err != nil {
		return fmt.Errorf("Error writing color %s/%s: %s", set, key, strings.TrimSpace(string(stderr))) //nolint:staticcheck // user-facing message
	}
	return nil
}

// Notify tells running applications that kdeglobals colours changed.
func (s *Store) Notify(ctx context.Context) error {
	args := []string{"--file", "kdeglobals", "--group", "General", "--key", "ColorSchemeHash", "--notify", ""}
	if _, _, err := s.runner.Run(ctx, "kwriteconfig6", args, nil); err != nil {
		return fmt.Errorf("Error notifying color change: %w", err) //nolint:staticcheck // user-facing message
	}
	return nil
}

// ErrPaletteTooSmall is returned when fewer than eight colours are given.
var ErrPaletteTooSmall = errors.New("Palette must have at least 8 colors") //nolint:staticcheck // user-facing message

// PaletteMapping assigns palette colours to every kdeglobals colour set.
// Colours are ranked by lightness; a palette averaging below 50 gets a dark
// layout. accent defaults to the first palette colour.
func PaletteMapping(palette []string, accent string) (map[string]map[string]string, error) {
	if len(palette) < 8 {
		return nil, ErrPaletteTooSmall
	}

	sorted := slices.Clone(palette)
	lightness := make(map[string]float64, len(palette))
	var total float64
	for _, c := range palette {
		hsl, err := colour.HexToHSL(c)
		if err != nil {
			return nil, err
		}
		lightness[c] = hsl.L
		total += hsl.L
	}
	slices.SortStableFunc(sorted, func(a, b string) int {
		switch {
		case lightness[a] < lightness[b]:
			return -1
		case lightness[a] > lightness[b]:
			return 1
		}
		return 0
	})
	dark := total/float64(len(palette)) < 50

	n := len(sorted)
	var bgDark, bgNormal, bgAlt, fgInactive, fgNormal, fgActive string
	if dark {
		bgDark, bgNormal, bgAlt = sorted[0], sorted[1], sorted[2]
		fgInactive, fgNormal, fgActive = sorted[4], sorted[n-1], sorted[n-2]
	} else {
		bgDark, bgNormal, bgAlt = sorted[n-1], sorted[n-2], sorted[n-3]
		fgInactive, fgNormal, fgActive = sorted[3], sorted[0], sorted[1]
	}
	if accent == "" {
		accent = palette[0]
	}

	set := func(bg, alt, fg string) map[string]string {
		return map[string]string{
			"BackgroundNormal":    bg,
			"BackgroundAlternate": alt,
			"ForegroundNormal":    fg,
			"ForegroundInactive":  fgInactive,
			"ForegroundActive":    fgActive,
			"DecorationFocus":     accent,
			"DecorationHover":     accent,
		}
	}
	selectionFg := bgDark
	if dark {
		selectionFg = fgNormal
	}
	return map[string]map[string]string{
		"View":          set(bgDark, bgNormal, fgNormal),
		"Window":        set(bgNormal, bgAlt, fgNormal),
		"Button":        set(bgNormal, bgAlt, fgNormal),
		"Selection":     set(accent, accent, selectionFg),
		"Tooltip":       set(bgNormal, bgAlt, fgNormal),
		"Complementary": set(bgNormal, bgDark, fgNormal),
		"Header":        set(bgNormal, bgNormal, fgNormal),
	}, nil
}

// ApplyPalette writes a palette straight into kdeglobals. Every write is
// attempted; the first failure is returned.
func (s *Store) ApplyPalette(ctx context.Context, palette []string, accent string) error {
	mapping, err := PaletteMapping(palette, accent)
	if err != nil {
		return err
	}
	var firstErr error
	for _, set := range ColorSets {
		for _, key := range slices.Sorted(maps.Keys(mapping[set])) {
			if err := s.WriteColor(ctx, set, key, mapping[set][key], 1, false); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
