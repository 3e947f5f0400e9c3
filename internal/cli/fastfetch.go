package cli

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"
)

// fastfetchCmd represents the fastfetch command
var fastfetchCmd = &cobra.Command{
	Use:   "fastfetch",
	Short: "Manage the fastfetch logo",
	Long: `Manage the logo fastfetch shows. The logo in the fastfetch template is used
unless a custom one is set; either is tinted with the accent colour when the
integration is applied.

Examples:
  kuntatinte fastfetch logos
  kuntatinte fastfetch logo ~/Pictures/logo.png
  kuntatinte fastfetch logo --reset
  kuntatinte fastfetch preview '#3daee9'`,
}

var fastfetchLogosCmd = &cobra.Command{
	Use:   "logos",
	Short: "Print the template, active and custom logo paths",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		tmpl, active, custom := appBackend.FastfetchLogos()
		table := NewTable([]string{"LOGO", "PATH"})
		table.AddRow([]string{"template", orDash(tmpl)})
		table.AddRow([]string{"active", orDash(active)})
		table.AddRow([]string{"custom", orDash(custom)})
		printf(cmd, "%s", table.Render())
	},
}

var fastfetchReset bool

var fastfetchLogoCmd = &cobra.Command{
	Use:   "logo [image]",
	Short: "Set a custom logo, or return to the template logo with --reset",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		switch {
		case fastfetchReset && len(args) == 0:
		case len(args) == 1 && !fastfetchReset:
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			path = abs
		default:
			return errors.New("give either an image or --reset")
		}
		if msg := appBackend.SetFastfetchLogo(path); msg != "" {
			return errors.New(msg)
		}
		if path == "" {
			printf(cmd, "Using the template logo\n")
			return nil
		}
		printf(cmd, "Custom logo set to %s\n", path)
		return nil
	},
}

var fastfetchPreviewCmd = &cobra.Command{
	Use:   "preview <accent>",
	Short: "Write a copy of the active logo tinted with an accent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accent, err := normalize(args[0])
		if err != nil {
			return err
		}
		path, msg := appBackend.FastfetchPreview(accent)
		if msg != "" {
			return errors.New(msg)
		}
		printf(cmd, "%s\n", path)
		return nil
	},
}

func init() {
	fastfetchLogoCmd.Flags().BoolVar(&fastfetchReset, "reset", false, "use the logo from the fastfetch template")

	fastfetchCmd.AddCommand(fastfetchLogosCmd, fastfetchLogoCmd, fastfetchPreviewCmd)
	rootCmd.AddCommand(fastfetchCmd)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
