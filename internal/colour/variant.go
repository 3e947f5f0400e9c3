package colour

import (
	"fmt"
	"math"
	"strings"
)

// Variant is a Material You style palette transform.
type Variant int

// Variant indices follow Material You naming.
const (
	VariantContent Variant = iota
	VariantExpressive
	VariantFidelity
	VariantMonochrome
	VariantNeutral
	VariantTonalSpot
	VariantVibrant
	VariantRainbow
	VariantFruitSalad
)

var variantNames = [...]string{
	"Content",
	"Expressive",
	"Fidelity",
	"Monochrome",
	"Neutral",
	"TonalSpot",
	"Vibrant",
	"Rainbow",
	"FruitSalad",
}

// sliderSequence is the order the tonal slider walks through.
var sliderSequence = []Variant{
	VariantContent,
	VariantFidelity,
	VariantNeutral,
	VariantMonochrome,
	VariantTonalSpot,
	VariantVibrant,
	VariantExpressive,
	VariantRainbow,
	VariantFruitSalad,
}

var fruitSaladSteps = [...]float64{0, 30, 60, 120, 180, 210, 270, 300}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variantNames[v]
}

// ParseVariant resolves a variant by name, case-insensitively.
func ParseVariant(name string) (Variant, error) {
	for i, n := range variantNames {
		if strings.EqualFold(n, name) {
			return Variant(i), nil
		}
	}
	return 0, fmt.Errorf("unknown variant: %s (valid: %s)", name, strings.Join(variantNames[:], ", "))
}

// Variants returns every variant in index order.
func Variants() []Variant {
	out := make([]Variant, len(variantNames))
	for i := range variantNames {
		out[i] = Variant(i)
	}
	return out
}

// ApplyVariant transforms a single colour. index and total give the colour's
// position in its palette, which the hue-spreading variants depend on.
// Invalid colours are returned unchanged.
func ApplyVariant(hex string, v Variant, index, total int) string {
	hsl, err := HexToHSL(hex)
	if err != nil {
		return hex
	}

	switch v {
	case VariantMonochrome:
		return HSLToHex(hsl.H, 0, hsl.L)
	case VariantNeutral:
		return HSLToHex(hsl.H, hsl.S*0.15, hsl.L)
	case VariantContent:
		return HSLToHex(hsl.H, hsl.S*0.7, hsl.L)
	case VariantFidelity:
		return HSLToHex(hsl.H, hsl.S*0.9, hsl.L)
	case VariantTonalSpot:
		return hex
	case VariantVibrant:
		return HSLToHex(hsl.H, min(100, hsl.S*1.4), hsl.L)
	case VariantExpressive:
		shift := (float64(index) - float64(total)/2) * 3
		return HSLToHex(floorMod(hsl.H+shift, 360), min(100, hsl.S*1.3), hsl.L)
	case VariantRainbow:
		offset := float64(index) / float64(total) * 360
		return HSLToHex(floorMod(hsl.H+offset, 360), max(60, hsl.S), hsl.L)
	case VariantFruitSalad:
		offset := fruitSaladSteps[index%len(fruitSaladSteps)]
		return HSLToHex(floorMod(hsl.H+offset, 360), max(70, min(100, hsl.S*1.2)), hsl.L)
	}
	return hex
}

// ApplyVariantToPalette transforms every colour of a palette.
func ApplyVariantToPalette(colors []string, v Variant) []string {
	out := make([]string, len(colors))
	for i, c := range colors {
		out[i] = ApplyVariant(c, v, i, len(colors))
	}
	return out
}

// InterpolateVariants blends the from and to renditions of a palette.
func InterpolateVariants(colors []string, from, to Variant, progress float64) []string {
	a := ApplyVariantToPalette(colors, from)
	b := ApplyVariantToPalette(colors, to)
	out := make([]string, len(colors))
	for i := range colors {
		out[i] = Blend(a[i], b[i], progress)
	}
	return out
}

// PaletteAtSlider returns the palette for a slider position in 0-100. The
// slider is split into eight equal segments, each blending between two
// neighbouring variants of the slider sequence.
func PaletteAtSlider(colors []string, percent float64) []string {
	segments := len(sliderSequence) - 1
	size := 100.0 / float64(segments)

	percent = clamp(percent, 0, 100)
	idx := min(int(percent/size), segments-1)
	progress := (percent - float64(idx)*size) / size

	return InterpolateVariants(colors, sliderSequence[idx], sliderSequence[idx+1], progress)
}

// VariantAtSlider returns the variant closest to a slider position.
func VariantAtSlider(percent float64) Variant {
	size := 100.0 / float64(len(sliderSequence)-1)
	idx := int(math.RoundToEven(percent / size))
	idx = max(0, min(len(sliderSequence)-1, idx))
	return sliderSequence[idx]
}

// VariantNameAtSlider returns the name of the variant closest to a slider position.
func VariantNameAtSlider(percent float64) string {
	return VariantAtSlider(percent).String()
}
