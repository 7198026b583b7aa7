package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/todoflow-ai/todoflow/internal/api"
	"github.com/todoflow-ai/todoflow/internal/chat"
	"github.com/todoflow-ai/todoflow/internal/config"
	"github.com/todoflow-ai/todoflow/internal/domain"
	"github.com/todoflow-ai/todoflow/internal/store"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the task agent",
		Long:  "Send one message to the task agent, or start an interactive session when no message is given. Assistant text is printed as it streams in; when the agent changes your tasks, the local cache is refreshed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			client := newAPIClient(cfg)

			cache, closeCache := openCache(cfg)
			if closeCache != nil {
				defer closeCache()
			}

			ctrl := newChatController(cmd, cfg, client, cache)

			if len(args) == 1 {
				ctrl.Submit(cmd.Context(), args[0])
				return nil
			}
			return runChatRepl(cmd, ctrl)
		},
	}
}

// newChatController wires the interaction controller to stdout rendering
// and the task cache refresh.
func newChatController(cmd *cobra.Command, cfg config.Config, client *api.Client, cache *store.TaskCache) *chat.Controller {
	out := cmd.OutOrStdout()
	printed := 0

	hooks := chat.Hooks{
		// Partial text grows monotonically within a turn, so printing the
		// unseen suffix renders the stream incrementally. The final ""
		// resets for the next turn and ends the line.
		OnPartial: func(text string) {
			if text == "" {
				if printed > 0 {
					fmt.Fprintln(out)
				}
				printed = 0
				return
			}
			if len(text) > printed {
				fmt.Fprint(out, text[printed:])
				printed = len(text)
			}
		},
		OnTasksChanged: func() {
			refreshTaskCache(cmd.Context(), client, cache)
		},
	}

	return chat.NewController(client, client, cfg.Chat.HistoryLimit, hooks, log)
}

func runChatRepl(cmd *cobra.Command, ctrl *chat.Controller) error {
	out := cmd.OutOrStdout()

	ctrl.RefreshHistory(cmd.Context())
	for _, msg := range ctrl.Messages() {
		printMessage(out, msg)
	}

	fmt.Fprintln(out, "Type a message, or \"exit\" to leave.")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			return nil
		}
		ctrl.Submit(cmd.Context(), line)
	}
}

func printMessage(out io.Writer, msg domain.Message) {
	prefix := "you"
	if msg.Role == domain.RoleAssistant {
		prefix = "agent"
	}
	fmt.Fprintf(out, "[%s] %s\n", prefix, msg.Content)
}

// openCache opens the local task cache, or returns (nil, nil) when the
// cache is disabled or fails to open. Chat works without it.
func openCache(cfg config.Config) (*store.TaskCache, func()) {
	if !cfg.CacheEnabled() {
		return nil, nil
	}
	path := cfg.Cache.Path
	if path == "" {
		path = paths.CacheDB
	}
	db, err := store.Open(path, log)
	if err != nil {
		log.Warn().Err(err).Msg("task cache unavailable")
		return nil, nil
	}
	return store.NewTaskCache(db), func() { db.Close() }
}

// refreshTaskCache refetches the authoritative task list and replaces the
// cache. Failures are logged and swallowed: the cache is best effort.
func refreshTaskCache(ctx context.Context, client *api.Client, cache *store.TaskCache) {
	if cache == nil {
		return
	}
	tasks, err := client.ListTasks(ctx, api.ListTasksOptions{})
	if err != nil {
		log.Warn().Err(err).Msg("task refetch failed, cache left stale")
		return
	}
	if err := cache.ReplaceAll(tasks); err != nil {
		log.Warn().Err(err).Msg("task cache update failed")
	}
}
