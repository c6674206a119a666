package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var canAccessAny bool //nolint:gochecknoglobals

func init() { //nolint: gochecknoinits
	canAccessCmd.Flags().BoolVar(&canAccessAny, "any", false, "succeed when at least one route may be opened")
	rootCmd.AddCommand(canAccessCmd)
}

var canAccessCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "can-access <route>...",
	Short: "Check whether the stored session may open routes, exit status 1 when not",
	Long: "Check whether the stored session may open every given route, or one of them with --any.\n" +
		"The exit status is 1 when access is denied.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := restored(cmd)
		if err != nil {
			return err
		}

		defer func() { _ = d.Close() }()

		sess := d.Session()

		allowed := sess.CanAccessAll(args...)
		if canAccessAny {
			allowed = sess.CanAccessAny(args...)
		}

		routes := strings.Join(args, " ")
		if !allowed {
			return fmt.Errorf("%w: %s", errAccessDenied, routes)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "allowed: %s\n", routes)

		return nil
	},
}
