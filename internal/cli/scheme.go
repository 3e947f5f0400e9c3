package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/kuntatinte/internal/colour"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/colorscheme"
)

var (
	// Scheme generate/preview flags
	schemePrimaryIndex int
	schemeAccent       string
	schemeToolbar      int
	schemeApply        bool
	schemeMode         string
)

// schemeCmd represents the scheme command
var schemeCmd = &cobra.Command{
	Use:   "scheme",
	Short: "Inspect, generate and apply KDE colour schemes",
}

var schemeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed colour schemes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		current := appBackend.CurrentColorScheme()
		for _, name := range appBackend.ColorSchemes() {
			marker := " "
			if name == current {
				marker = "*"
			}
			printf(cmd, "%s %s\n", marker, name)
		}
		return nil
	},
}

var schemeShowCmd = &cobra.Command{
	Use:   "show <name> [section]",
	Short: "Show the colours of a scheme",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSchemeShow,
}

var schemeSectionsCmd = &cobra.Command{
	Use:   "sections <name>",
	Short: "List the colour sections of a scheme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sections := appBackend.ColorSections(args[0])
		if len(sections) == 0 {
			return fmt.Errorf("Color scheme %s not found", args[0]) //nolint:staticcheck // user-facing message
		}
		inactive := appBackend.InactiveSections(args[0])
		for _, s := range sections {
			if slices.Contains(inactive, s) {
				printf(cmd, "%s (inactive)\n", s)
				continue
			}
			printf(cmd, "%s\n", s)
		}
		return nil
	},
}

var schemeGenerateCmd = &cobra.Command{
	Use:   "generate <colour>...",
	Short: "Generate the Kuntatinte Light and Dark schemes",
	Long: `Generate the Kuntatinte Light and Dark schemes from a palette. The colour
at --primary-index is the primary colour; --primary-index -1 with --accent
generates from the accent instead.

Examples:
  kuntatinte scheme generate '#3daee9' '#1d99f3'
  kuntatinte scheme generate --primary-index -1 --accent '#ff8800' '#3daee9'
  kuntatinte scheme generate --apply --mode light '#3daee9'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSchemeGenerate,
}

var schemeApplyCmd = &cobra.Command{
	Use:   "apply <name>",
	Short: "Activate an installed colour scheme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !appBackend.ApplyColorScheme(args[0]) {
			return fmt.Errorf("could not apply %s", args[0])
		}
		printf(cmd, "Applied %s\n", args[0])
		return nil
	},
}

var schemePreviewCmd = &cobra.Command{
	Use:   "preview <colour>...",
	Short: "Print the Kuntatinte preview colours as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		palette, err := normalizeAll(args)
		if err != nil {
			return err
		}
		preview := appBackend.KuntatintePreview(palette, schemePrimaryIndex, schemeAccent)
		if preview == nil {
			return writeJSON(cmd, map[string]any{})
		}
		return writeJSON(cmd, preview)
	},
}

var schemePaletteCmd = &cobra.Command{
	Use:   "palette <colour>...",
	Short: "Write a palette straight into kdeglobals",
	Long: `Write a palette into the colour sections of kdeglobals without generating a
scheme file. At least eight colours are needed. --accent sets the highlight
colours; without it the first colour is used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		palette, err := normalizeAll(args)
		if err != nil {
			return err
		}
		accent := ""
		if schemeAccent != "" {
			if accent, err = normalize(schemeAccent); err != nil {
				return err
			}
		}
		if msg := appBackend.ApplyPaletteToKDE(palette, accent); msg != "" {
			return errors.New(msg)
		}
		printf(cmd, "Palette written to kdeglobals\n")
		return nil
	},
}

func init() {
	schemePaletteCmd.Flags().StringVar(&schemeAccent, "accent", "", "highlight colour (default: first colour)")
	for _, c := range []*cobra.Command{schemeGenerateCmd, schemePreviewCmd} {
		c.Flags().IntVar(&schemePrimaryIndex, "primary-index", 0, "index of the primary colour (-1 to use --accent)")
		c.Flags().StringVar(&schemeAccent, "accent", "", "accent colour used with --primary-index -1")
	}
	schemeGenerateCmd.Flags().IntVar(&schemeToolbar, "toolbar-opacity", 100, "title bar opacity (0-100)")
	schemeGenerateCmd.Flags().BoolVar(&schemeApply, "apply", false, "activate the scheme matching --mode")
	schemeGenerateCmd.Flags().StringVar(&schemeMode, "mode", "dark", "scheme to activate with --apply (dark, light)")

	schemeCmd.AddCommand(schemeListCmd, schemeShowCmd, schemeSectionsCmd, schemeGenerateCmd, schemeApplyCmd, schemePreviewCmd, schemePaletteCmd)
	rootCmd.AddCommand(schemeCmd)
}

func runSchemeShow(cmd *cobra.Command, args []string) error {
	data := appBackend.FullSchemeData(args[0])
	if len(data) == 0 {
		return fmt.Errorf("Color scheme %s not found", args[0]) //nolint:staticcheck // user-facing message
	}
	sections := appBackend.ColorSections(args[0])
	if len(args) == 2 {
		if _, ok := data[args[1]]; !ok {
			return fmt.Errorf("section %s not found in %s", args[1], args[0])
		}
		sections = []string{args[1]}
	}

	table := NewTable([]string{"SECTION", "KEY", "COLOUR", "OPACITY"})
	for _, section := range sections {
		keys := make([]string, 0, len(data[section]))
		for k := range data[section] {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			table.AddRow(schemeRow(section, k, data[section][k]))
		}
	}
	printf(cmd, "%s", table.Render())
	return nil
}

func schemeRow(section, key string, c colorscheme.SchemeColor) []string {
	if c.Raw != "" {
		return []string{section, key, c.Raw, "-"}
	}
	return []string{section, key, c.Color, fmt.Sprintf("%.0f%%", c.Opacity*100)}
}

func runSchemeGenerate(cmd *cobra.Command, args []string) error {
	palette, err := normalizeAll(args)
	if err != nil {
		return err
	}
	if schemeAccent != "" {
		if schemeAccent, err = normalize(schemeAccent); err != nil {
			return err
		}
	}
	if schemeToolbar < 0 || schemeToolbar > 100 {
		return fmt.Errorf("toolbar opacity must be between 0 and 100, got %d", schemeToolbar)
	}

	var msg string
	if schemeApply {
		msg = appBackend.GenerateAndApplyKuntatinte(palette, schemePrimaryIndex, schemeToolbar, schemeAccent, schemeMode)
	} else {
		msg = appBackend.GenerateKuntatinteSchemes(palette, schemePrimaryIndex, schemeToolbar, schemeAccent)
	}
	if msg != "" {
		return errors.New(msg)
	}
	printf(cmd, "Kuntatinte Light and Dark schemes generated successfully\n")
	return nil
}

func normalize(s string) (string, error) {
	hex, ok := colour.Normalize(s)
	if !ok {
		return "", fmt.Errorf("invalid colour: %s", s)
	}
	return hex, nil
}

func normalizeAll(in []string) ([]string, error) {
	out := make([]string, len(in))
	for i, s := range in {
		hex, err := normalize(s)
		if err != nil {
			return nil, err
		}
		out[i] = hex
	}
	return out, nil
}
