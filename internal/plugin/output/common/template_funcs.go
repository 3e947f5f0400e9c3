package common

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/jmylchreest/kuntatinte/internal/colour"
)

// TemplateFuncs returns the functions available to integration templates.
// Colours are "#rrggbb" strings; invalid colours render as black.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// KDE-style comma separated channels.
		"rgb":   rgbFunc,
		"rgba":  rgbaFunc,
		"alpha": alphaFunc,

		// CSS and hex forms.
		"cssRGBA":   cssRGBAFunc,
		"hex":       hexFunc,
		"hexNoHash": hexNoHashFunc,

		"toLower": strings.ToLower,
		"toUpper": strings.ToUpper,
	}
}

func parseOrBlack(hex string) colour.RGB {
	rgb, err := colour.ParseHex(hex)
	if err != nil {
		return colour.RGB{}
	}
	return rgb
}

// rgbFunc renders "r,g,b".
func rgbFunc(hex string) string {
	c := parseOrBlack(hex)
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// rgbaFunc renders "r,g,b,a" from an opacity between 0 and 1.
func rgbaFunc(hex string, opacity float64) string {
	c := parseOrBlack(hex)
	return fmt.Sprintf("%d,%d,%d,%d", c.R, c.G, c.B, int(opacity*255))
}

// alphaFunc renders "r,g,b,a" from a percentage between 0 and 100.
func alphaFunc(hex string, percent int) string {
	c := parseOrBlack(hex)
	return fmt.Sprintf("%d,%d,%d,%d", c.R, c.G, c.B, percent*255/100)
}

// cssRGBAFunc renders "rgba(r, g, b, a)" from a percentage between 0 and 100.
func cssRGBAFunc(hex string, percent int) string {
	s, err := colour.HexToRGBA(hex, float64(percent)/100)
	if err != nil {
		s, _ = colour.HexToRGBA("#000000", float64(percent)/100)
	}
	return s
}

func hexFunc(hex string) string {
	return parseOrBlack(hex).Hex()
}

func hexNoHashFunc(hex string) string {
	return strings.TrimPrefix(hexFunc(hex), "#")
}
