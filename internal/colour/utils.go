package colour

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
)

// HSL holds hue (0-360), saturation (0-100) and lightness (0-100).
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
func Luminance(c color.Color) float64 {
	rgb := ToRGB(c)
	return 0.2126*linearise(rgb.R) + 0.7152*linearise(rgb.G) + 0.0722*linearise(rgb.B)
}

func linearise(v uint8) float64 {
	c := float64(v) / 255.0
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// ContrastRatio calculates the contrast ratio between two colours according to WCAG 2.0.
// Returns a value between 1 and 21, where 21 is maximum contrast (black vs white).
func ContrastRatio(c1, c2 color.Color) float64 {
	l1 := Luminance(c1)
	l2 := Luminance(c2)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// BestContrast returns the candidate with the highest contrast against base.
// Invalid candidates are ignored. With no valid candidates it picks black or
// white depending on the base luminance.
func BestContrast(base string, candidates []string) string {
	baseRGB, err := ParseHex(base)
	if err != nil {
		baseRGB = RGB{}
	}

	best := ""
	bestContrast := 0.0
	for _, c := range candidates {
		n, ok := Normalize(c)
		if !ok {
			continue
		}
		rgb, _ := ParseHex(n)
		contrast := ContrastRatio(baseRGB, rgb)
		if best == "" || contrast > bestContrast {
			best, bestContrast = n, contrast
		}
	}
	if best != "" {
		return best
	}
	if Luminance(baseRGB) > 0.5 {
		return "#000000"
	}
	return "#ffffff"
}

// HueDistance calculates the angular distance between two hues on the color wheel.
// Returns a value between 0 and 180 degrees (shortest path around the wheel).
func HueDistance(h1, h2 float64) float64 {
	diff := math.Abs(h1 - h2)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// RGBToHSL converts RGB to HSL with each component rounded to two decimals.
func RGBToHSL(rgb RGB) HSL {
	r := float64(rgb.R) / 255.0
	g := float64(rgb.G) / 255.0
	b := float64(rgb.B) / 255.0

	maxVal := math.Max(r, math.Max(g, b))
	minVal := math.Min(r, math.Min(g, b))
	delta := maxVal - minVal
	l := (maxVal + minVal) / 2.0

	var h, s float64
	if delta != 0 {
		s = delta / (1 - math.Abs(2*l-1))
		switch maxVal {
		case r:
			h = floorMod((g-b)/delta, 6)
		case g:
			h = (b-r)/delta + 2
		default:
			h = (r-g)/delta + 4
		}
		h *= 60
		if h < 0 {
			h += 360
		}
	}

	return HSL{H: round2(h), S: round2(s * 100), L: round2(l * 100)}
}

// HexToHSL converts a hex colour to HSL.
func HexToHSL(hex string) (HSL, error) {
	rgb, err := ParseHex(hex)
	if err != nil {
		return HSL{}, err
	}
	return RGBToHSL(rgb), nil
}

// HSLToRGB converts HSL (h 0-360, s and l 0-100) to RGB.
func HSLToRGB(h, s, l float64) RGB {
	s /= 100.0
	l /= 100.0

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(floorMod(h/60.0, 2)-1))
	m := l - c/2

	var r1, g1, b1 float64
	switch {
	case h >= 0 && h < 60:
		r1, g1, b1 = c, x, 0
	case h >= 60 && h < 120:
		r1, g1, b1 = x, c, 0
	case h >= 120 && h < 180:
		r1, g1, b1 = 0, c, x
	case h >= 180 && h < 240:
		r1, g1, b1 = 0, x, c
	case h >= 240 && h < 300:
		r1, g1, b1 = x, 0, c
	default:
		r1, g1, b1 = c, 0, x
	}

	return RGB{R: channel(r1 + m), G: channel(g1 + m), B: channel(b1 + m)}
}

// HSLToHex converts HSL to an uppercase hex string. Hue wraps around 360,
// saturation and lightness are clamped to 0-100.
func HSLToHex(h, s, l float64) string {
	return HSLToRGB(floorMod(h, 360), clamp(s, 0, 100), clamp(l, 0, 100)).UpperHex()
}

// HexToRGBA renders a hex colour as a CSS rgba() string.
func HexToRGBA(hex string, alpha float64) (string, error) {
	rgb, err := ParseHex(hex)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", rgb.R, rgb.G, rgb.B, formatAlpha(alpha)), nil
}

// IsDark reports whether the colour lightness is below 35.
func IsDark(hex string) bool {
	return lightnessBelow(hex, 35)
}

// IsLight reports whether the colour lightness is above 65.
func IsLight(hex string) bool {
	hsl, err := HexToHSL(hex)
	return err == nil && hsl.L > 65
}

// IsGrayscale reports whether the colour saturation is below 10.
func IsGrayscale(hex string) bool {
	hsl, err := HexToHSL(hex)
	return err == nil && hsl.S < 10
}

func lightnessBelow(hex string, threshold float64) bool {
	hsl, err := HexToHSL(hex)
	return err == nil && hsl.L < threshold
}

// WithLightness returns the colour with its lightness replaced.
func WithLightness(hex string, lightness float64) string {
	hsl, err := HexToHSL(hex)
	if err != nil {
		return hex
	}
	return HSLToHex(hsl.H, hsl.S, lightness)
}

// Blend mixes two colours channel by channel. ratio 0 yields a, 1 yields b.
// Channels are truncated, not rounded. If either colour is invalid a is returned.
func Blend(a, b string, ratio float64) string {
	c1, err := ParseHex(a)
	if err != nil {
		return a
	}
	c2, err := ParseHex(b)
	if err != nil {
		return a
	}
	mix := func(x, y uint8) uint8 {
		return uint8(int(float64(x) + (float64(y)-float64(x))*ratio))
	}
	return RGB{R: mix(c1.R, c2.R), G: mix(c1.G, c2.G), B: mix(c1.B, c2.B)}.Hex()
}

func channel(v float64) uint8 {
	return uint8(clamp(math.RoundToEven(v*255), 0, 255))
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// floorMod is a modulo whose result has the sign of the divisor.
func floorMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m < 0 {
		m += b
	}
	return m
}

// formatAlpha keeps a trailing ".0" on whole numbers so 1 renders as "1.0".
func formatAlpha(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v == math.Trunc(v) {
		s += ".0"
	}
	return s
}
