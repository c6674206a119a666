package app

import (
	"github.com/spf13/cobra"

	"github.com/PropDesk/PropDesk-Console/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "start",
	Short: "Start the PropDesk Console web shell",
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := daemon.New(&cfg)
		if err != nil {
			return err //nolint:wrapcheck
		}

		defer func() { _ = d.Close() }()

		return d.Start(cmd.Context()) //nolint:wrapcheck
	},
}
