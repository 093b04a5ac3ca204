package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mailscrape/internal/config"
	"mailscrape/internal/secrets"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the archive session used for private lists",
	}
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthStatusCmd())
	return cmd
}

func authHost(cmd *cobra.Command, host string) (string, error) {
	if cmd.Flags().Changed("host") {
		return host, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.API.Host, nil
}

func newAuthLoginCmd() *cobra.Command {
	var (
		host    string
		session string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a ponymail session cookie in the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := authHost(cmd, host)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("session") {
				session, err = readSession(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			if err := secrets.SetSession(target, session); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Session for %s saved to keyring\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&host, "host", "H", config.DefaultConfig().API.Host, "Archive host")
	cmd.Flags().StringVar(&session, "session", "", "Value of the ponymail session cookie")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session for a host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := authHost(cmd, host)
			if err != nil {
				return err
			}
			if err := secrets.DeleteSession(target); err != nil {
				if errors.Is(err, secrets.ErrSecretNotFound) {
					fmt.Fprintf(cmd.OutOrStdout(), "No session stored for %s\n", target)
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session for %s removed\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&host, "host", "H", config.DefaultConfig().API.Host, "Archive host")

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show where the session for a host comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			override := ""
			if cmd.Flags().Changed("host") {
				override = host
			}
			cfg, _, err := loadConfig(cmd, override)
			if err != nil {
				return err
			}
			if cfg.Auth.Session == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: no session (public lists only)\n", cfg.API.Host)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: session from %s\n", cfg.API.Host, cfg.Auth.SessionSource)
			return nil
		},
	}

	cmd.Flags().StringVarP(&host, "host", "H", config.DefaultConfig().API.Host, "Archive host")

	return cmd
}

// readSession prompts without echo on a terminal and reads one line otherwise.
func readSession(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Session cookie: ")
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read session: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read session: %w", err)
	}
	return strings.TrimSpace(line), nil
}
