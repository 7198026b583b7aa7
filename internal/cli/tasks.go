package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/todoflow-ai/todoflow/internal/api"
	"github.com/todoflow-ai/todoflow/internal/domain"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks",
	}

	cmd.AddCommand(newTasksListCmd())
	cmd.AddCommand(newTasksAddCmd())
	cmd.AddCommand(newTasksDoneCmd())
	cmd.AddCommand(newTasksRmCmd())

	return cmd
}

func newTasksListCmd() *cobra.Command {
	var (
		filter string
		sortBy string
		search string
		cached bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			cache, closeCache := openCache(cfg)
			if closeCache != nil {
				defer closeCache()
			}

			if cached {
				if cache == nil {
					return fmt.Errorf("task cache is disabled or unavailable")
				}
				tasks, err := cache.List()
				if err != nil {
					return fmt.Errorf("reading cached tasks: %w", err)
				}
				if ts, err := cache.RefreshedAt(); err == nil && !ts.IsZero() {
					cmd.Printf("Cached tasks (refreshed %s):\n", ts.Local().Format("2006-01-02 15:04"))
				}
				printTasks(cmd.OutOrStdout(), tasks)
				return nil
			}

			client := newAPIClient(cfg)
			tasks, err := client.ListTasks(cmd.Context(), api.ListTasksOptions{
				Filter: filter,
				SortBy: sortBy,
				Search: search,
			})
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}
			printTasks(cmd.OutOrStdout(), tasks)

			// An unfiltered listing is the full authoritative view, so it
			// doubles as a cache refresh.
			if cache != nil && filter == "" && search == "" {
				if err := cache.ReplaceAll(tasks); err != nil {
					log.Warn().Err(err).Msg("task cache update failed")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "filter: all, completed, pending")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "", "sort by: created_at, updated_at, title")
	cmd.Flags().StringVar(&search, "search", "", "search in title and description")
	cmd.Flags().BoolVar(&cached, "cached", false, "show the local cache instead of asking the backend")
	return cmd
}

func newTasksAddCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			client := newAPIClient(cfg)

			task, err := client.CreateTask(cmd.Context(), api.TaskCreate{
				Title:       args[0],
				Description: description,
			})
			if err != nil {
				return fmt.Errorf("creating task: %w", err)
			}
			cmd.Printf("Created task %s: %s\n", task.ID, task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	return cmd
}

func newTasksDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			client := newAPIClient(cfg)

			task, err := client.ToggleTask(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("toggling task: %w", err)
			}
			state := "pending"
			if task.Completed {
				state = "completed"
			}
			cmd.Printf("Task %s is now %s\n", task.ID, state)
			return nil
		},
	}
}

func newTasksRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			client := newAPIClient(cfg)

			if err := client.DeleteTask(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("deleting task: %w", err)
			}
			cmd.Printf("Deleted task %s\n", args[0])
			return nil
		},
	}
}

func printTasks(out io.Writer, tasks []domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks.")
		return
	}
	for _, task := range tasks {
		mark := " "
		if task.Completed {
			mark = "x"
		}
		fmt.Fprintf(out, "[%s] %s  %s", mark, task.ID, task.Title)
		if task.Description != "" {
			fmt.Fprintf(out, " - %s", task.Description)
		}
		fmt.Fprintln(out)
	}
}
