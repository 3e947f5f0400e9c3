package colour

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI escape codes for terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiFgPrefix = "\033[38;2;"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 8
)

// DisableColourOutput can be used to disable colour output.
var DisableColourOutput = false

// ColourPreviewWithText returns a colour block with centred text in a
// contrasting foreground.
func ColourPreviewWithText(c RGB, text string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	displayText := text
	if len(text) > width {
		displayText = text[:width]
	} else if len(text) < width {
		padding := (width - len(text)) / 2
		displayText = strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-len(text)-padding)
	}

	return background(c) + foreground(textColourFor(c)) + displayText + ansiReset
}

// PaletteGrid renders colours as rows of eight labelled swatches. Invalid
// colours are rendered as plain text.
func PaletteGrid(colors []string) string {
	var sb strings.Builder
	for i, hex := range colors {
		rgb, err := ParseHex(hex)
		switch {
		case err != nil || !colourEnabled():
			fmt.Fprintf(&sb, " %-9s", hex)
		default:
			sb.WriteString(ColourPreviewWithText(rgb, hex, 11))
		}
		if i%8 == 7 || i == len(colors)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// SupportsANSIColours reports whether stdout is a terminal that is not
// asking for plain output.
func SupportsANSIColours() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func colourEnabled() bool {
	return !DisableColourOutput && SupportsANSIColours()
}

func textColourFor(c RGB) RGB {
	if Luminance(c) > 0.5 {
		return RGB{}
	}
	return RGB{R: 255, G: 255, B: 255}
}

func background(c RGB) string {
	return fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
}

func foreground(c RGB) string {
	return fmt.Sprintf("%s%d;%d;%d%s", ansiFgPrefix, c.R, c.G, c.B, ansiSuffix)
}
