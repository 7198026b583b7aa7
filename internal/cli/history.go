package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversation history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if limit == 0 {
				limit = cfg.Chat.HistoryLimit
			}

			client := newAPIClient(cfg)
			msgs, err := client.History(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("fetching history: %w", err)
			}
			if len(msgs) == 0 {
				cmd.Println("No conversation history yet.")
				return nil
			}
			for _, msg := range msgs {
				printMessage(cmd.OutOrStdout(), msg)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "number of messages to fetch (default from config)")
	return cmd
}
