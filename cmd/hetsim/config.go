package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/hetsim/platform"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration as YAML.",
	Long: "`config` prints the default configuration, or the configuration " +
		"loaded from --config, so that it can be edited and passed back.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("config")

		c, err := loadConfig(path)
		if err != nil {
			return err
		}

		out, err := c.YAML()
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))

		return err
	},
}

func init() {
	configCmd.Flags().String("config", "", "YAML configuration file")
}

func loadConfig(path string) (platform.Config, error) {
	if path == "" {
		c := platform.DefaultConfig()
		return c, c.Validate()
	}

	return platform.LoadConfig(path)
}
