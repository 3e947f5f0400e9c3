// Kuntatinte - wallpaper colours for the KDE desktop
//
// Kuntatinte extracts colour palettes from wallpapers and applies them to
// KDE Plasma colour schemes and to the tools around it.
package main

import "github.com/jmylchreest/kuntatinte/internal/cli"

func main() {
	cli.Execute()
}
