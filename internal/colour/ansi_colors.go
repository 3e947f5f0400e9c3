package colour

import (
	"errors"
	"math"
	"sort"

	"github.com/hashicorp/go-hclog"
)

// ANSIPaletteSize is the number of colours in a terminal palette.
const ANSIPaletteSize = 16

// DominantColourCount is how many clusters are pulled from the image before
// the ANSI palette is assembled.
const DominantColourCount = 16

// Image analysis thresholds.
const (
	monochromeSaturation   = 15.0
	monochromeImageRatio   = 0.7
	lowDiversityRatio      = 0.6
	similarHueRange        = 30.0
	similarLightnessRange  = 20.0
	minChromaticSaturation = 15.0
	tooDark                = 20.0
	tooBright              = 85.0
)

// Background and foreground thresholds.
const (
	veryDarkBackground    = 20.0
	veryLightBackground   = 80.0
	minBackgroundDark     = 8.0
	maxBackgroundLight    = 92.0
	minLightnessOnDark    = 55.0
	maxLightnessOnLight   = 45.0
	minForegroundContrast = 40.0
	absoluteMinLightness  = 25.0
	outlierLightness      = 25.0
	brightTheme           = 50.0
	darkColour            = 50.0
)

// Palette generation constants.
const (
	subtleSaturation     = 28.0
	monoSaturation       = 5.0
	monoColour8Factor    = 0.5
	brightLightnessBoost = 18.0
	brightSaturationGain = 1.25
)

// ansiHues are red, green, yellow, blue, magenta and cyan.
var ansiHues = [6]float64{0, 120, 60, 240, 300, 180}

// ErrNotEnoughColours is returned when an image yields fewer than eight dominant colours.
var ErrNotEnoughColours = errors.New("not enough colors extracted from image")

// ImageKind classifies the dominant colours of an image.
type ImageKind int

const (
	// KindChromatic images have diverse, saturated colours.
	KindChromatic ImageKind = iota
	// KindMonochrome images are mostly grey.
	KindMonochrome
	// KindLowDiversity images have saturated colours that all look alike.
	KindLowDiversity
)

func (k ImageKind) String() string {
	switch k {
	case KindMonochrome:
		return "monochrome"
	case KindLowDiversity:
		return "low-diversity"
	default:
		return "chromatic"
	}
}

// ClassifyColours decides which palette strategy suits the dominant colours.
func ClassifyColours(dominant []string) ImageKind {
	if isMonochrome(dominant) {
		return KindMonochrome
	}
	if hasLowDiversity(dominant) {
		return KindLowDiversity
	}
	return KindChromatic
}

// BuildANSIPalette assembles a normalised 16-colour terminal palette from the
// dominant colours of an image.
func BuildANSIPalette(dominant []string, light bool, logger hclog.Logger) ([]string, ImageKind, error) {
	if len(dominant) < 8 {
		return nil, KindChromatic, ErrNotEnoughColours
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	kind := ClassifyColours(dominant)
	var palette []string
	switch kind {
	case KindMonochrome:
		logger.Info("detected monochrome image, generating grayscale palette")
		palette = monochromePalette(dominant, light)
	case KindLowDiversity:
		logger.Info("detected low color diversity, generating subtle palette")
		palette = subtlePalette(dominant, light)
	default:
		logger.Info("detected chromatic image, generating colorful palette")
		palette = chromaticPalette(dominant, light)
	}

	return normalizeBrightness(palette, logger), kind, nil
}

// AverageLightness returns the mean HSL lightness of the colours.
func AverageLightness(colors []string) float64 {
	if len(colors) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range colors {
		total += hslOf(c).L
	}
	return total / float64(len(colors))
}

func hslOf(hex string) HSL {
	hsl, _ := HexToHSL(hex)
	return hsl
}

func isMonochrome(colors []string) bool {
	low := 0
	for _, c := range colors {
		if hslOf(c).S < monochromeSaturation {
			low++
		}
	}
	return float64(low)/float64(len(colors)) > monochromeImageRatio
}

func hasLowDiversity(colors []string) bool {
	similar, total := 0, 0
	for i := 0; i < len(colors); i++ {
		for j := i + 1; j < len(colors); j++ {
			a, b := hslOf(colors[i]), hslOf(colors[j])
			if a.S < monochromeSaturation || b.S < monochromeSaturation {
				continue
			}
			total++
			if HueDistance(a.H, b.H) < similarHueRange && math.Abs(a.L-b.L) < similarLightnessRange {
				similar++
			}
		}
	}
	if total == 0 {
		return false
	}
	return float64(similar)/float64(total) > lowDiversityRatio
}

type pick struct {
	colour string
	index  int
}

func findBackground(colors []string, light bool) pick {
	idx := -1
	best := 101.0
	if light {
		best = -1
	}
	for i, c := range colors {
		l := hslOf(c).L
		if light && l > best && l <= maxBackgroundLight {
			best, idx = l, i
		}
		if !light && l < best && l >= minBackgroundDark {
			best, idx = l, i
		}
	}

	if idx == -1 {
		target := minBackgroundDark
		if light {
			target = maxBackgroundLight
		}
		bestDist := math.Inf(1)
		for i, c := range colors {
			if d := math.Abs(hslOf(c).L - target); d < bestDist {
				bestDist, idx = d, i
			}
		}
	}

	selected := hslOf(colors[idx])
	switch {
	case !light && selected.L < minBackgroundDark:
		return pick{HSLToHex(selected.H, selected.S, minBackgroundDark), idx}
	case light && selected.L > maxBackgroundLight:
		return pick{HSLToHex(selected.H, selected.S, maxBackgroundLight), idx}
	}
	return pick{colors[idx], idx}
}

func foregroundTarget(bgL float64, light bool) float64 {
	if light {
		return math.Max(0, bgL-minForegroundContrast)
	}
	return math.Min(100, bgL+minForegroundContrast)
}

func findForeground(colors []string, light bool, used map[int]bool, bgL float64) pick {
	idx := -1
	best := -1.0
	if light {
		best = 101
	}
	for i, c := range colors {
		if used[i] {
			continue
		}
		l := hslOf(c).L
		if (light && l < best) || (!light && l > best) {
			best, idx = l, i
		}
	}

	if idx == -1 {
		return pick{HSLToHex(0, 0, foregroundTarget(bgL, light)), 0}
	}

	selected := hslOf(colors[idx])
	if math.Abs(selected.L-bgL) < minForegroundContrast {
		return pick{HSLToHex(selected.H, selected.S, foregroundTarget(bgL, light)), idx}
	}
	return pick{colors[idx], idx}
}

// colourScore rates how well a colour stands in for an ANSI hue. Lower is better.
func colourScore(hsl HSL, hue float64) float64 {
	score := HueDistance(hsl.H, hue) * 3
	if hsl.S < minChromaticSaturation {
		score += 50
	}
	if hsl.L < tooDark || hsl.L > tooBright {
		score += 10
	}
	return score
}

func bestMatch(hue float64, pool []string, used map[int]bool) int {
	idx := -1
	best := math.Inf(1)
	for i, c := range pool {
		if used[i] {
			continue
		}
		if s := colourScore(hslOf(c), hue); s < best {
			best, idx = s, i
		}
	}
	if idx == -1 {
		return 0
	}
	return idx
}

func brightVersion(hex string) string {
	if hex == "" {
		return "#000000"
	}
	hsl := hslOf(hex)
	return HSLToHex(hsl.H, math.Min(100, hsl.S*brightSaturationGain), math.Min(100, hsl.L+brightLightnessBoost))
}

type lightnessEntry struct {
	colour    string
	lightness float64
	hue       float64
}

func sortByLightness(colors []string) []lightnessEntry {
	out := make([]lightnessEntry, len(colors))
	for i, c := range colors {
		hsl := hslOf(c)
		out[i] = lightnessEntry{c, hsl.L, hsl.H}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].lightness < out[j].lightness })
	return out
}

func subtlePalette(dominant []string, light bool) []string {
	sorted := sortByLightness(dominant)
	darkest, lightest := sorted[0], sorted[len(sorted)-1]

	avgHue := darkest.hue
	sum, n := 0.0, 0
	for _, c := range dominant {
		if hsl := hslOf(c); hsl.S > monochromeSaturation {
			sum += hsl.H
			n++
		}
	}
	if n > 0 {
		avgHue = sum / float64(n)
	}

	palette := make([]string, ANSIPaletteSize)
	palette[0], palette[7] = darkest.colour, lightest.colour
	if light {
		palette[0], palette[7] = lightest.colour, darkest.colour
	}

	adjustment := 8.0
	if light {
		adjustment = -8
	}
	for i, hue := range ansiHues {
		l := 50 + (float64(i)-2.5)*4
		palette[i+1] = HSLToHex(hue, subtleSaturation, l)
		palette[i+9] = HSLToHex(hue, subtleSaturation+8, clamp(l+adjustment, 0, 100))
	}

	if light {
		palette[8] = HSLToHex(avgHue, subtleSaturation*0.5, math.Max(0, lightest.lightness-15))
		palette[15] = HSLToHex(avgHue, subtleSaturation*0.3, math.Max(0, darkest.lightness-5))
	} else {
		palette[8] = HSLToHex(avgHue, subtleSaturation*0.5, math.Min(100, darkest.lightness+15))
		palette[15] = HSLToHex(avgHue, subtleSaturation*0.3, math.Min(100, lightest.lightness+5))
	}
	return palette
}

func monochromePalette(grays []string, light bool) []string {
	const minStep = 3.0

	sorted := sortByLightness(grays)
	darkest, lightest := sorted[0], sorted[len(sorted)-1]
	hue := darkest.hue

	palette := make([]string, ANSIPaletteSize)
	palette[0], palette[7] = darkest.colour, lightest.colour
	if light {
		palette[0], palette[7] = lightest.colour, darkest.colour
	}

	var startL, endL float64
	if light {
		startL = darkest.lightness + 10
		endL = math.Min(darkest.lightness+40, lightest.lightness-10)
		if endL <= startL {
			startL = math.Max(0, darkest.lightness)
			endL = math.Min(100, lightest.lightness)
		}
	} else {
		startL = math.Max(darkest.lightness+30, lightest.lightness-40)
		endL = lightest.lightness - 10
		if endL <= startL {
			startL = math.Max(0, darkest.lightness+10)
			endL = math.Min(100, lightest.lightness)
		}
	}
	step := math.Max(endL-startL, minStep*5) / 5.0
	for i := 1; i <= 6; i++ {
		palette[i] = HSLToHex(hue, monoSaturation, clamp(startL+float64(i-1)*step, 0, 100))
	}

	if light {
		palette[8] = HSLToHex(hue, monoSaturation*monoColour8Factor, math.Max(0, darkest.lightness+5))
	} else {
		palette[8] = HSLToHex(hue, monoSaturation*monoColour8Factor, math.Min(100, lightest.lightness-25))
	}

	adjustment := 10.0
	if light {
		adjustment = -10
	}
	for i := 1; i <= 6; i++ {
		palette[i+8] = HSLToHex(hue, monoSaturation, clamp(hslOf(palette[i]).L+adjustment, 0, 100))
	}

	if light {
		palette[15] = HSLToHex(hue, 2, math.Max(0, darkest.lightness-5))
	} else {
		palette[15] = HSLToHex(hue, 2, math.Min(100, lightest.lightness+5))
	}
	return palette
}

func chromaticPalette(dominant []string, light bool) []string {
	bg := findBackground(dominant, light)
	used := map[int]bool{bg.index: true}
	bgHSL := hslOf(bg.colour)

	fg := findForeground(dominant, light, used, bgHSL.L)
	used[fg.index] = true

	palette := make([]string, ANSIPaletteSize)
	palette[0] = bg.colour
	palette[7] = fg.colour

	for i, hue := range ansiHues {
		match := bestMatch(hue, dominant, used)
		palette[i+1] = dominant[match]
		used[match] = true
	}

	colour8L := math.Max(0, bgHSL.L-15)
	if lightnessBelow(bg.colour, darkColour) {
		colour8L = math.Min(100, bgHSL.L+15)
	}
	palette[8] = HSLToHex(bgHSL.H, bgHSL.S*0.5, colour8L)

	for i := 1; i <= 6; i++ {
		palette[i+8] = brightVersion(palette[i])
	}
	palette[15] = brightVersion(fg.colour)
	return palette
}

// setLightness rewrites palette[i] at a new lightness and, for the six
// normal ANSI colours, regenerates the matching bright colour.
func setLightness(palette []string, i int, lightness float64) {
	if palette[i] == "" {
		palette[i] = "#000000"
	}
	palette[i] = WithLightness(palette[i], lightness)
	if i >= 1 && i <= 6 {
		palette[i+8] = brightVersion(palette[i])
	}
}

// normalizeBrightness pulls the background into a usable range and keeps
// the normal colours legible against it.
func normalizeBrightness(palette []string, logger hclog.Logger) []string {
	out := make([]string, len(palette))
	for i, c := range palette {
		if c == "" {
			c = "#000000"
		}
		out[i] = c
	}

	bg := hslOf(out[0])
	bgL := bg.L
	switch {
	case bgL < minBackgroundDark:
		logger.Debug("normalizing background", "from", bgL, "to", minBackgroundDark)
		out[0] = HSLToHex(bg.H, bg.S, minBackgroundDark)
		bgL = minBackgroundDark
	case bgL > maxBackgroundLight:
		logger.Debug("normalizing background", "from", bgL, "to", maxBackgroundLight)
		out[0] = HSLToHex(bg.H, bg.S, maxBackgroundLight)
		bgL = maxBackgroundLight
	}

	type entry struct {
		index     int
		lightness float64
	}
	normal := make([]entry, 0, 7)
	sum := 0.0
	for i := 1; i <= 7; i++ {
		l := hslOf(out[i]).L
		normal = append(normal, entry{i, l})
		sum += l
	}
	avg := sum / float64(len(normal))

	if bgL < veryDarkBackground {
		for _, e := range normal {
			if e.lightness < minLightnessOnDark {
				adjusted := minLightnessOnDark + float64(e.index)*3
				logger.Debug("adjusting color for dark background", "index", e.index, "from", e.lightness, "to", adjusted)
				setLightness(out, e.index, adjusted)
			}
		}
		return out
	}

	if bgL > veryLightBackground {
		for _, e := range normal {
			if e.lightness > maxLightnessOnLight {
				adjusted := math.Max(absoluteMinLightness, maxLightnessOnLight-float64(e.index)*2)
				logger.Debug("adjusting color for light background", "index", e.index, "from", e.lightness, "to", adjusted)
				setLightness(out, e.index, adjusted)
			}
		}
		return out
	}

	bright := avg > brightTheme
	for _, e := range normal {
		switch {
		case bright && e.lightness < avg-outlierLightness:
			logger.Debug("adjusting dark outlier", "index", e.index, "from", e.lightness, "to", avg-10)
			setLightness(out, e.index, avg-10)
		case !bright && e.lightness > avg+outlierLightness:
			logger.Debug("adjusting bright outlier", "index", e.index, "from", e.lightness, "to", avg+10)
			setLightness(out, e.index, avg+10)
		}
	}

	c15 := hslOf(out[15])
	if math.Abs(c15.L-bgL) < minForegroundContrast {
		target := math.Max(0, bgL-minForegroundContrast-10)
		if bgL < darkColour {
			target = math.Min(100, bgL+minForegroundContrast+10)
		}
		logger.Debug("normalizing color15 for contrast", "from", c15.L, "to", target)
		out[15] = HSLToHex(c15.H, c15.S, target)
	}
	return out
}
