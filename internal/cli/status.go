package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/todoflow-ai/todoflow/internal/auth"
	"github.com/todoflow-ai/todoflow/internal/config"
	"github.com/todoflow-ai/todoflow/internal/version"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show client, credential, cache, and backend status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			cmd.Println(version.Info())
			cmd.Printf("Config:  %s\n", paths.Config)
			cmd.Printf("Server:  %s\n", cfg.Server.BaseURL)

			if issues := config.Validate(&cfg); len(issues) > 0 {
				cmd.Println("Config issues:")
				for _, issue := range issues {
					cmd.Printf("  - %s\n", issue)
				}
			}

			switch _, err := credentialStore().Load(); {
			case err == nil:
				cmd.Println("Auth:    logged in")
			case errors.Is(err, auth.ErrNoCredential):
				cmd.Println("Auth:    not logged in")
			default:
				cmd.Printf("Auth:    credential unreadable (%v)\n", err)
			}

			if cache, closeCache := openCache(cfg); cache != nil {
				defer closeCache()
				count, err := cache.Count()
				if err != nil {
					cmd.Printf("Cache:   unreadable (%v)\n", err)
				} else if ts, err := cache.RefreshedAt(); err == nil && !ts.IsZero() {
					cmd.Printf("Cache:   %d tasks, refreshed %s\n", count, ts.Local().Format("2006-01-02 15:04"))
				} else {
					cmd.Printf("Cache:   %d tasks, never refreshed\n", count)
				}
			} else {
				cmd.Println("Cache:   disabled")
			}

			client := newAPIClient(cfg)
			if err := client.Health(cmd.Context()); err != nil {
				cmd.Printf("Backend: unreachable (%v)\n", err)
			} else {
				cmd.Println("Backend: ok")
			}
			return nil
		},
	}
}
