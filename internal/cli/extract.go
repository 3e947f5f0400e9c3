package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/kuntatinte/internal/colour"
	imgutil "github.com/jmylchreest/kuntatinte/internal/image"
	"github.com/jmylchreest/kuntatinte/internal/state"
)

var (
	// Extract command flags
	extractMethod  string
	extractMode    string
	extractFormat  string
	extractPercent float64
	extractPreview bool
	extractAll     bool

	// Material command flags
	materialIndex   int
	materialMode    string
	materialPercent float64
	materialFormat  string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Extract a colour palette from an image",
	Long: `Extract a 16-colour palette from an image.

Methods:
  ImageMagick       cluster the image into an ANSI palette (cached per image)
  Pywal             run pywal and read its cache
  KDE Material You  read the cache kept by kde-material-you-colors
  Material You      generate tonal colours from the strongest seed colour

Examples:
  kuntatinte extract wallpaper.jpg
  kuntatinte extract --method material-you --mode light wallpaper.jpg
  kuntatinte extract --percent 80 --preview wallpaper.jpg
  kuntatinte extract --all --format json wallpaper.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// variantCmd represents the variant command
var variantCmd = &cobra.Command{
	Use:   "variant <percent> <colour>...",
	Short: "Apply the tonal slider to a palette",
	Long: `Transform a palette the way the tonal slider does. 0 is pastel, 50 leaves
the palette unchanged and 100 is the most saturated.

Examples:
  kuntatinte variant 25 '#3daee9' '#1d99f3'`,
	Args: cobra.MinimumNArgs(2),
	RunE: runVariant,
}

// materialCmd represents the material command
var materialCmd = &cobra.Command{
	Use:   "material <image|seed colour>...",
	Short: "Generate a Material You palette",
	Long: `Generate a Material You palette from seed colours, or from the seed
colours extracted from an image. Without --index the strongest seed is used.

Examples:
  kuntatinte material wallpaper.jpg
  kuntatinte material --index 2 --mode light wallpaper.jpg
  kuntatinte material '#3daee9' '#ff8800' --index 1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMaterial,
}

func init() {
	extractCmd.Flags().StringVarP(&extractMethod, "method", "m", string(colour.MethodImageMagick), "extraction method")
	extractCmd.Flags().StringVar(&extractMode, "mode", "dark", "palette mode (dark, light, auto)")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "hex", "output format (hex, json)")
	extractCmd.Flags().Float64VarP(&extractPercent, "percent", "p", 50, "tonal slider position (0-100)")
	extractCmd.Flags().BoolVar(&extractPreview, "preview", false, "show colour swatches")
	extractCmd.Flags().BoolVar(&extractAll, "all", false, "also extract the accent and seed colours")

	materialCmd.Flags().IntVarP(&materialIndex, "index", "i", 0, "seed index (clamped to the seeds found)")
	materialCmd.Flags().StringVar(&materialMode, "mode", "dark", "palette mode (dark, light)")
	materialCmd.Flags().Float64VarP(&materialPercent, "percent", "p", 50, "tonal slider position (0-100)")
	materialCmd.Flags().StringVarP(&materialFormat, "format", "f", "hex", "output format (hex, json)")

	rootCmd.AddCommand(extractCmd, variantCmd, materialCmd)
}

// extraction is the JSON output of extract.
type extraction struct {
	Palette []string `json:"palette"`
	Accent  string   `json:"accent,omitempty"`
	Seeds   []string `json:"seeds,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !imgutil.IsImageFile(path) {
		return fmt.Errorf("invalid image path: %s", path)
	}
	if extractPercent < 0 || extractPercent > 100 {
		return fmt.Errorf("percent must be between 0 and 100, got %g", extractPercent)
	}

	var out extraction
	var err error
	if extractAll {
		out.Palette, out.Accent, out.Seeds, err = appBackend.ExtractAll(cmd.Context(), path, extractMethod, extractMode)
	} else {
		out.Palette, err = appBackend.Palette(cmd.Context(), path, extractMethod, extractMode)
	}
	if err != nil {
		return err
	}
	out.Palette = appBackend.ApplyPaletteVariant(out.Palette, extractPercent)
	logger.Debug("extracted palette", "colours", len(out.Palette), "variant", colour.VariantNameAtSlider(extractPercent))

	switch extractFormat {
	case "json":
		return writeJSON(cmd, out)
	case "hex":
		writePalette(cmd, out.Palette)
		if out.Accent != "" {
			printf(cmd, "\naccent: %s\n", out.Accent)
		}
		if len(out.Seeds) > 0 {
			printf(cmd, "seeds:  %s\n", strings.Join(out.Seeds, " "))
		}
		return nil
	}
	return fmt.Errorf("unsupported format: %s (supported: hex, json)", extractFormat)
}

func runVariant(cmd *cobra.Command, args []string) error {
	percent, err := strconv.ParseFloat(args[0], 64)
	if err != nil || percent < 0 || percent > 100 {
		return fmt.Errorf("invalid percent: %s", args[0])
	}
	palette := colour.PaletteAtSlider(args[1:], percent)
	logger.Debug("applied variant", "variant", colour.VariantNameAtSlider(percent))
	writePalette(cmd, palette)
	return nil
}

func runMaterial(cmd *cobra.Command, args []string) error {
	seeds := args
	if len(args) == 1 && imgutil.IsImageFile(args[0]) {
		payload, err := appBackend.SourceColorsJSON(args[0])
		if err != nil {
			return err
		}
		if seeds, err = state.ParseSeedsJSON(payload); err != nil {
			return err
		}
		logger.Debug("extracted seeds", "seeds", seeds)
	}
	if len(seeds) == 0 {
		return fmt.Errorf("no seed colours found in %s", args[0])
	}
	for i, s := range seeds {
		hex, ok := colour.Normalize(s)
		if !ok {
			return fmt.Errorf("invalid seed colour: %s", s)
		}
		seeds[i] = hex
	}

	index := max(0, min(materialIndex, len(seeds)-1))
	palette, err := colour.MaterialPalette(seeds[index], materialMode == "light", materialPercent)
	if err != nil {
		return err
	}
	if materialFormat == "json" {
		return writeJSON(cmd, map[string]any{"seed": seeds[index], "seeds": seeds, "palette": palette})
	}
	writePalette(cmd, palette)
	return nil
}

// writePalette prints one colour per line, with swatches when --preview
// is set and the terminal supports colour.
func writePalette(cmd *cobra.Command, palette []string) {
	if extractPreview && colour.SupportsANSIColours() {
		printf(cmd, "%s", colour.PaletteGrid(palette))
		return
	}
	for _, hex := range palette {
		printf(cmd, "%s\n", hex)
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
