package cli

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/kuntatinte/internal/tui"
)

// wallpapersCmd represents the wallpapers command
var wallpapersCmd = &cobra.Command{
	Use:   "wallpapers [folder]",
	Short: "List the images in the wallpapers folder",
	Long: `List the images in a folder, sorted by name. The folder is remembered as
the wallpapers folder; without one the configured folder is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := ""
		if len(args) == 1 {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			folder = abs
		}
		images, err := appBackend.ListImages(folder)
		if err != nil {
			return err
		}
		for _, img := range images {
			printf(cmd, "%s\n", img)
		}
		return nil
	},
}

var wallpaperCmd = &cobra.Command{
	Use:   "wallpaper",
	Short: "Manage the desktop wallpaper",
}

var wallpaperSetCmd = &cobra.Command{
	Use:   "set <image>",
	Short: "Set the Plasma wallpaper on every desktop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if msg := appBackend.SetAsWallpaper(path); msg != "" {
			return errors.New(msg)
		}
		printf(cmd, "Wallpaper set to %s\n", path)
		return nil
	},
}

// uiCmd represents the ui command
var uiCmd = &cobra.Command{
	Use:   "ui [folder]",
	Short: "Open the interactive palette picker",
	Long: `Open the terminal UI: wallpapers on the left, the palette in the middle
and integration settings on the right.

Keys:
  up/down     choose a wallpaper        enter     extract its colours
  left/right  move the selection        [ ]       move the tonal slider
  m           cycle extraction method   d         cycle dark/light/auto
  tab         cycle settings panel      1 / 2     toggle left/right panel
  a           apply the settings panel  r         restore it
  l           load its live colours     j / k     choose a field
  space       copy selection to field   g         regenerate from selected seed
  e           type a colour into the selected swatch (Custom method)
  p           type a colour into the field
  w           set as wallpaper          esc       dismiss the error
  q           quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := appConfig.WallpapersFolder()
		if len(args) == 1 {
			folder = args[0]
		}
		return tui.Run(cmd.Context(), appBackend, folder, logger.Named("tui"))
	},
}

func init() {
	wallpaperCmd.AddCommand(wallpaperSetCmd)
	rootCmd.AddCommand(wallpapersCmd, wallpaperCmd, uiCmd)
}
