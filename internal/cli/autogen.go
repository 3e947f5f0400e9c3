package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/kuntatinte/internal/autogen"
)

var (
	autogenMode         string
	autogenPrimaryIndex int
	autogenAccent       string
	autogenPrimary      string
	autogenCurrent      bool
)

// autogenCmd represents the autogen command
var autogenCmd = &cobra.Command{
	Use:   "autogen [colour]...",
	Short: "Derive integration colours from the Kuntatinte schemes",
	Long: `Regenerate the Kuntatinte schemes from a palette and derive the colours of
every integration from the scheme matching --mode, following the rules in
~/.config/kuntatinte/templates/autogen_rules/<mode>.json or .yaml (see
"kuntatinte templates dump"). The result is printed as JSON.

With --current nothing is regenerated and the active scheme is read instead.

Examples:
  kuntatinte autogen --mode dark '#3daee9' '#1d99f3'
  kuntatinte autogen --mode light --primary-index -1 --accent '#ff8800' '#3daee9'
  kuntatinte autogen --current --mode dark --primary '#3daee9'`,
	RunE: runAutogen,
}

func init() {
	autogenCmd.Flags().StringVar(&autogenMode, "mode", "dark", "palette mode (dark, light)")
	autogenCmd.Flags().IntVar(&autogenPrimaryIndex, "primary-index", 0, "index of the primary colour (-1 to use --accent)")
	autogenCmd.Flags().StringVar(&autogenAccent, "accent", "", "accent colour override")
	autogenCmd.Flags().StringVar(&autogenPrimary, "primary", "", "primary colour, added to the palette when missing")
	autogenCmd.Flags().BoolVar(&autogenCurrent, "current", false, "read the active colour scheme instead of regenerating")

	rootCmd.AddCommand(autogenCmd)
}

func runAutogen(cmd *cobra.Command, args []string) error {
	palette, err := normalizeAll(args)
	if err != nil {
		return err
	}

	if autogenCurrent && autogenPrimary == "" && autogenAccent == "" {
		fmt.Fprintln(cmd.OutOrStdout(), appBackend.RunAutogen(autogenMode))
		return nil
	}

	var res *autogen.Result
	if autogenCurrent {
		res, err = appBackend.Autogen().RunCurrent(cmd.Context(), autogenMode, autogenPrimary, autogenAccent)
	} else {
		res, err = appBackend.Autogen().Run(cmd.Context(), autogen.Request{
			PaletteMode:    autogenMode,
			Palette:        palette,
			PrimaryIndex:   autogenPrimaryIndex,
			AccentOverride: autogenAccent,
			PrimaryColor:   autogenPrimary,
		})
	}
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), autogen.ErrorJSON(err))
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.JSON())
	return nil
}
