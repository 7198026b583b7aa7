package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/todoflow-ai/todoflow/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write configuration values",
	}

	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUnsetCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [path]",
		Short: "Print a config value, or the whole config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := config.LoadRaw(paths.Config)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return printValue(cmd, raw)
			}

			path, err := config.ParseConfigPath(args[0])
			if err != nil {
				return err
			}
			value, ok := config.GetValueAtPath(raw, path)
			if !ok {
				return fmt.Errorf("no value at %q", args[0])
			}
			return printValue(cmd, value)
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Set a config value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ParseConfigPath(args[0])
			if err != nil {
				return err
			}

			raw, err := config.LoadRaw(paths.Config)
			if err != nil {
				return err
			}
			config.SetValueAtPath(raw, path, parseValue(args[1]))

			if err := config.SaveRaw(paths.Config, raw); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			cmd.Printf("Set %s\n", args[0])
			return nil
		},
	}
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <path>",
		Short: "Remove a config value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ParseConfigPath(args[0])
			if err != nil {
				return err
			}

			raw, err := config.LoadRaw(paths.Config)
			if err != nil {
				return err
			}
			if !config.UnsetValueAtPath(raw, path) {
				return fmt.Errorf("no value at %q", args[0])
			}

			if err := config.SaveRaw(paths.Config, raw); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			cmd.Printf("Unset %s\n", args[0])
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(paths.Config)
		},
	}
}

// printValue renders scalars bare and structures as YAML.
func printValue(cmd *cobra.Command, value any) error {
	switch v := value.(type) {
	case string:
		cmd.Println(v)
		return nil
	case bool, int, int64, float64, nil:
		cmd.Println(v)
		return nil
	default:
		data, err := yaml.Marshal(value)
		if err != nil {
			return err
		}
		cmd.Print(string(data))
		return nil
	}
}

// parseValue interprets the value argument as bool, int, or float before
// falling back to string, so `config set cache.enabled false` stores a
// real boolean.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
