package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// EnvPassword is read when --password is not given.
const EnvPassword = "PROPDESK_PASSWORD"

var (
	loginEmail    string
	loginPassword string
)

func init() { //nolint: gochecknoinits
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "login email address")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password, defaults to $"+EnvPassword)
	_ = loginCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

var loginCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "login",
	Short: "Log in and store the session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		password := loginPassword
		if password == "" {
			password = os.Getenv(EnvPassword)
		}

		if password == "" {
			return errMissingPassword
		}

		d, err := openDaemon(cmd)
		if err != nil {
			return err
		}

		defer func() { _ = d.Close() }()

		if err := d.Session().Login(cmd.Context(), loginEmail, password); err != nil {
			return err //nolint:wrapcheck
		}

		printUser(cmd, d.Session().CurrentUser().FullName(), d.Session().IsAdmin(), d.Session().AccessibleRoutes())

		return nil
	},
}

var logoutCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "logout",
	Short: "Remove the stored session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := openDaemon(cmd)
		if err != nil {
			return err
		}

		defer func() { _ = d.Close() }()

		d.Session().Logout(cmd.Context())

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "logged out")

		return nil
	},
}

var whoamiCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "whoami",
	Short: "Print the user of the stored session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := restored(cmd)
		if err != nil {
			return err
		}

		defer func() { _ = d.Close() }()

		sess := d.Session()
		printUser(cmd, sess.CurrentUser().FullName(), sess.IsAdmin(), sess.AccessibleRoutes())

		return nil
	},
}

func printUser(cmd *cobra.Command, name string, admin bool, routes []string) {
	role := "user"
	if admin {
		role = "admin"
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s (%s)\n", name, role)
	_, _ = fmt.Fprintf(out, "routes: %s\n", strings.Join(routes, " "))
}
