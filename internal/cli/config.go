package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write the configuration file",
	Long: `Read and write ~/.config/kuntatinte/config.toml.

Examples:
  kuntatinte config init
  kuntatinte config get paths wallpapers_folder
  kuntatinte config set ui left_panel_visible false
  kuntatinte config set commands terminal "foot"`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <section> <key>",
	Short: "Print a config value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := appConfig.Get(args[0], args[1], nil)
		if v == nil {
			return fmt.Errorf("no value for %s.%s", args[0], args[1])
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <section> <key> <value>",
	Short: "Store a config value",
	Long: `Store a config value and save the file. "true" and "false" are stored as
booleans and whole numbers as integers; everything else is a string.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appConfig.Set(args[0], args[1], parseValue(args[2])); err != nil {
			return err
		}
		printf(cmd, "Set %s.%s\n", args[0], args[1])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), appConfig.Path())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with every default",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		written, err := appConfig.Init()
		if err != nil {
			return err
		}
		if !written {
			printf(cmd, "Config already exists: %s\n", appConfig.Path())
			return nil
		}
		printf(cmd, "Generated default config: %s\n", appConfig.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configPathCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func parseValue(s string) any {
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}
