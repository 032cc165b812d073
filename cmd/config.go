package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"takeoutfix/pkg/config"
	"takeoutfix/pkg/ui"
)

var flagConfigInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration currently in effect, merged from the config
file and command-line flags. With --init, write a config file populated
with the defaults so it can be edited.`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigInit, "init", false, "Write a default config file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := flagConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	if flagConfigInit {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Println(ui.FormatSuccess("Wrote default config to " + path))
		return nil
	}

	fmt.Println(ui.FormatInfo("Config file: " + path))
	fmt.Println()

	out, err := yaml.Marshal(appConfig)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
