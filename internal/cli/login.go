package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in to the TodoFlow backend and save the credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			pw, err := resolvePassword(cmd, password)
			if err != nil {
				return err
			}

			cfg := loadConfig()
			client := newAPIClient(cfg)

			tok, err := client.Login(cmd.Context(), email, pw)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := credentialStore().Save(tok.Token()); err != nil {
				return fmt.Errorf("saving credential: %w", err)
			}

			cmd.Printf("Logged in as %s\n", tok.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted on stdin if omitted)")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var (
		password string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create a TodoFlow account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			pw, err := resolvePassword(cmd, password)
			if err != nil {
				return err
			}

			cfg := loadConfig()
			client := newAPIClient(cfg)

			tok, err := client.Register(cmd.Context(), email, pw, name)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			if err := credentialStore().Save(tok.Token()); err != nil {
				return fmt.Errorf("saving credential: %w", err)
			}

			cmd.Printf("Registered and logged in as %s\n", tok.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted on stdin if omitted)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credentialStore().Clear(); err != nil {
				return fmt.Errorf("clearing credential: %w", err)
			}
			cmd.Println("Logged out")
			return nil
		},
	}
}

// resolvePassword uses the flag value when given, otherwise prompts and
// reads one line from stdin.
func resolvePassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	return pw, nil
}
