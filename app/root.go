// Package app implements the main application commands.
package app

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/PropDesk/PropDesk-Console/internal/config"
	"github.com/PropDesk/PropDesk-Console/internal/daemon"
	"github.com/PropDesk/PropDesk-Console/internal/logger"
	"github.com/PropDesk/PropDesk-Console/internal/session"
)

var (
	configPath string        // Path to the configuration directory
	devMode    bool          // Enable dev mode
	cfg        config.Config // Read by PersistentPreRunE
)

var rootCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "propdesk-console",
	Short: "PropDesk Console is the operator console of the PropDesk property management platform",
	Long: `PropDesk Console signs operators in against the PropDesk backend, keeps their
session alive and decides which screens of the console they may open.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error

		if cfg, err = config.ReadConfig(configPath); err != nil {
			return err //nolint:wrapcheck
		}

		if devMode {
			cfg.DevMode = true
		}

		return logger.Init(cfg.Log) //nolint:wrapcheck
	},
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./etc/", "directory holding main.toml")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Enable dev mode")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute() //nolint:wrapcheck
}

// openDaemon builds the session core for a one-shot command. Notices of the
// session are printed to stderr.
func openDaemon(cmd *cobra.Command) (*daemon.Daemon, error) {
	d, err := daemon.New(&cfg,
		daemon.WithNotifier(session.NotifierFunc(func(severity session.Severity, message string) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", severity, message)
		})),
		daemon.WithNavigator(session.NavigatorFunc(func(route string) {
			log.Debug().Str("route", route).Msg("navigate")
		})),
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return d, nil
}

// restored opens the daemon and resumes the stored session.
func restored(cmd *cobra.Command) (*daemon.Daemon, error) {
	d, err := openDaemon(cmd)
	if err != nil {
		return nil, err
	}

	if err := d.Restore(cmd.Context()); err != nil {
		_ = d.Close()
		return nil, err //nolint:wrapcheck
	}

	if !d.Session().IsAuthenticated() {
		_ = d.Close()
		return nil, errNotLoggedIn
	}

	return d, nil
}
