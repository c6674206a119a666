package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PropDesk/PropDesk-Console/internal/backend"
	"github.com/PropDesk/PropDesk-Console/internal/models"
)

var (
	assignUser    string
	assignScreens []string
	assignPrune   bool
)

func init() { //nolint: gochecknoinits
	assignCmd.Flags().StringVar(&assignUser, "user", "", "id of the user")
	assignCmd.Flags().StringSliceVar(&assignScreens, "screen", nil, "screen id, repeatable")
	assignCmd.Flags().BoolVar(&assignPrune, "prune", false, "also remove screens missing from --screen")
	_ = assignCmd.MarkFlagRequired("user")

	permissionsCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(permissionsCmd)
}

var permissionsCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "permissions",
	Short: "Manage screen permissions (admin only)",
}

var assignCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "assign",
	Short: "Assign screens to a user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := restored(cmd)
		if err != nil {
			return err
		}

		defer func() { _ = d.Close() }()

		ids := make([]models.ID, 0, len(assignScreens))
		for _, s := range assignScreens {
			ids = append(ids, models.ID(s))
		}

		res, err := d.Session().AssignScreens(cmd.Context(), models.ID(assignUser), ids, assignPrune)
		if res == nil {
			return err //nolint:wrapcheck
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "created: %s\n", joinIDs(res.Created))
		_, _ = fmt.Fprintf(out, "unchanged: %s\n", joinIDs(res.Unchanged))
		_, _ = fmt.Fprintf(out, "removed: %s\n", joinIDs(res.Removed))

		for id, failure := range res.Failed {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s: %s\n", id, backend.UserMessage(failure))
		}

		return err //nolint:wrapcheck
	},
}

func joinIDs(ids []models.ID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}

	return strings.Join(parts, " ")
}
