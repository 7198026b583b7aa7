// Package cli wires the todoflow command tree.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/todoflow-ai/todoflow/internal/api"
	"github.com/todoflow-ai/todoflow/internal/auth"
	"github.com/todoflow-ai/todoflow/internal/config"
	"github.com/todoflow-ai/todoflow/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todoflow",
		Short: "AI-assisted task management from the terminal",
		Long:  "TodoFlow is a terminal client for the TodoFlow backend: chat with the task agent, manage tasks, and keep a local cache for offline viewing.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.todoflow/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newRegisterCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newTasksCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// loadConfig reads the config file, falling back to defaults on error.
func loadConfig() config.Config {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		log.Warn().Err(err).Msg("config load failed, using defaults")
		return config.Defaults()
	}
	// The --log-level flag wins; otherwise honor the configured level.
	if logLevel == "" && cfg.Logging.Level != "" {
		log = logging.New(nil, cfg.Logging.Level)
	}
	return cfg
}

// credentialStore returns the on-disk token store.
func credentialStore() *auth.Store {
	return auth.NewStore(paths.Credentials)
}

// newAPIClient builds an authenticated backend client from config and the
// saved credential.
func newAPIClient(cfg config.Config) *api.Client {
	return api.NewClient(
		cfg.Server.BaseURL,
		time.Duration(cfg.Server.TimeoutSeconds)*time.Second,
		credentialStore().TokenSource(),
		log,
	)
}
