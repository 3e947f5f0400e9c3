// Package cli provides the command-line interface for Kuntatinte.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/kuntatinte/internal/backend"
	"github.com/jmylchreest/kuntatinte/internal/config"
	"github.com/jmylchreest/kuntatinte/internal/version"
)

var (
	// Global flags
	globalVerbose bool
	globalQuiet   bool
	globalConfig  string

	// Built in PersistentPreRunE and shared by every command.
	logger     hclog.Logger = hclog.NewNullLogger()
	appConfig  *config.Config
	appBackend *backend.Backend

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "kuntatinte",
		Short: "Wallpaper colours for the KDE desktop",
		Long: `Kuntatinte extracts colour palettes from wallpapers and applies them to
KDE Plasma colour schemes, Starship, Fastfetch, Ulauncher and OpenRGB.

Run "kuntatinte ui" for the interactive picker, or use the subcommands to
script extraction and integrations.`,
		Version:           version.Short(),
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(*cobra.Command, []string) { teardown() },
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		teardown()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globalQuiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&globalConfig, "config", "", "config file (default: ~/.config/kuntatinte/config.toml)")

	rootCmd.SetVersionTemplate(version.String() + "\n")
	rootCmd.SetGlobalNormalizationFunc(dashedFlags)

	rootCmd.AddCommand(versionCmd)
}

// dashedFlags accepts config-style underscores in flag names, so
// --primary_index and --primary-index are the same flag.
func dashedFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// setup builds the logger, loads the config and starts the backend.
func setup(cmd *cobra.Command, _ []string) error {
	level := hclog.Warn
	switch {
	case globalVerbose:
		level = hclog.Debug
	case globalQuiet:
		level = hclog.Error
	}
	logger = hclog.New(&hclog.LoggerOptions{
		Name:   "kuntatinte",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})

	cfg, err := config.Load(globalConfig, logger.Named("config"))
	if err != nil {
		return err
	}
	appConfig = cfg
	appBackend = backend.New(cfg, backend.WithLogger(logger))
	return nil
}

func teardown() {
	if appBackend != nil {
		appBackend.Close()
		appBackend = nil
	}
}

// printf writes to stdout unless --quiet is set.
func printf(cmd *cobra.Command, format string, args ...any) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including build date, commit hash, and Go version.`,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}
