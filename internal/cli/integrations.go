package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/kuntatinte/internal/colour"
	imgutil "github.com/jmylchreest/kuntatinte/internal/image"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output"
)

var (
	// Apply command flags
	applyImage   string
	applyColours map[string]string
	applyRefresh bool
)

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply <integration>",
	Short: "Apply colours to an integration",
	Long: `Apply colours to one integration. Keys left unset take the integration's
defaults. With --image the extracted accent fills the accent and primary keys
that are not given explicitly.

Examples:
  kuntatinte apply starship --colour accent=#3daee9 --colour dir_bg=#1d99f3
  kuntatinte apply fastfetch --image wallpaper.jpg
  kuntatinte apply color_scheme --colour primary=#3daee9 --colour mode=light
  kuntatinte apply openrgb -c accent=#ff8800`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore <integration>",
	Short: "Restore an integration's backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if msg := appBackend.Restore(args[0]); msg != "" {
			return errors.New(msg)
		}
		printf(cmd, "Restored %s\n", args[0])
		return nil
	},
}

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load <integration>",
	Short: "Show an integration's live colours",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

// integrationsCmd represents the integrations command
var integrationsCmd = &cobra.Command{
	Use:     "integrations",
	Aliases: []string{"plugins"},
	Short:   "List integrations",
	Long: `List the integrations with their enabled and installed state.

Integrations can be disabled with KUNTATINTE_DISABLED_PLUGINS or limited
with KUNTATINTE_ENABLED_PLUGINS (comma-separated names, or "all").`,
	Args: cobra.NoArgs,
	RunE: runIntegrations,
}

func init() {
	applyCmd.Flags().StringVarP(&applyImage, "image", "i", "", "fill accent keys from this image")
	applyCmd.Flags().StringToStringVarP(&applyColours, "colour", "c", nil, "colour as key=value (repeatable)")
	applyCmd.Flags().BoolVar(&applyRefresh, "refresh", false, "ask the target to reload afterwards")

	rootCmd.AddCommand(applyCmd, restoreCmd, loadCmd, integrationsCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	name := args[0]
	colours := output.Colours(applyColours).Clone()
	if colours == nil {
		colours = output.Colours{}
	}

	if applyImage != "" {
		if !imgutil.IsImageFile(applyImage) {
			return fmt.Errorf("invalid image path: %s", applyImage)
		}
		accent, err := appBackend.Accent(applyImage)
		if err != nil {
			return err
		}
		for _, key := range []string{"accent", "primary"} {
			if colours[key] == "" {
				colours[key] = accent
			}
		}
	}

	for key, value := range colours {
		if key == "mode" || strings.HasSuffix(key, output.OpacitySuffix) {
			continue
		}
		hex, ok := colour.Normalize(value)
		if !ok {
			return fmt.Errorf("invalid colour for %s: %s", key, value)
		}
		colours[key] = hex
	}

	if msg := appBackend.Apply(name, colours); msg != "" {
		return errors.New(msg)
	}
	if applyRefresh {
		if msg := appBackend.Refresh(name); msg != "" {
			logger.Warn("refresh failed", "integration", name, "error", msg)
		}
	}
	printf(cmd, "Applied %s\n", name)
	return nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	colours, msg := appBackend.Load(args[0])
	if msg != "" {
		return errors.New(msg)
	}
	keys := make([]string, 0, len(colours))
	for k := range colours {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := NewTable([]string{"KEY", "COLOUR"})
	for _, k := range keys {
		value := colours[k]
		if value == "" {
			value = "-"
		}
		table.AddRow([]string{k, value})
	}
	printf(cmd, "%s", table.Render())
	return nil
}

func runIntegrations(cmd *cobra.Command, _ []string) error {
	table := NewTable([]string{"NAME", "STATUS", "INSTALLED", "DESCRIPTION"})
	table.SetColumnMaxWidth(3, 50)
	for _, info := range appBackend.Integrations() {
		status := "enabled"
		if !info.Enabled {
			status = "disabled"
		}
		installed := "no"
		if info.Installed {
			installed = "yes"
		}
		table.AddRow([]string{info.Name, status, installed, info.Description})
	}
	printf(cmd, "%s", table.Render())
	return nil
}
