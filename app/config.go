package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PropDesk/PropDesk-Console/internal/config"
)

var dumpJSON bool

func init() { //nolint: gochecknoinits
	configDumpCmd.Flags().BoolVar(&dumpJSON, "json", false, "dump as JSON instead of TOML")

	configCmd.AddCommand(configDumpCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "config",
	Short: "Inspect the configuration",
}

var configDumpCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "dump",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dump := config.DumpConfig
		if dumpJSON {
			dump = config.DumpConfigJSON
		}

		out, err := dump(&cfg)
		if err != nil {
			return err //nolint:wrapcheck
		}

		_, _ = fmt.Fprint(cmd.OutOrStdout(), out)

		return nil
	},
}
