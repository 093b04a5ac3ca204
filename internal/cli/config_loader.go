package cli

import (
	"errors"
	"log/slog"
	"os"

	"mailscrape/internal/config"
	"mailscrape/internal/secrets"

	"github.com/spf13/cobra"
)

// loadConfig reads the config file, applies a --host override, builds the
// logger, and fills in the session cookie from the environment, the config
// file or the keyring, in that order.
func loadConfig(cmd *cobra.Command, host string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	if host != "" {
		cfg.API.Host = host
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, nil, err
	}

	log, err := newLogger(cmd, cfg.Log.Level)
	if err != nil {
		return cfg, nil, err
	}

	if _, ok := os.LookupEnv("MAILSCRAPE_AUTH_SESSION"); ok {
		cfg.Auth.SessionSource = "env"
		return cfg, log, nil
	}

	if cfg.Auth.Session != "" {
		cfg.Auth.SessionSource = "config"
		return cfg, log, nil
	}

	session, err := secrets.GetSession(cfg.API.Host)
	if err != nil {
		// Public lists need no session.
		if !errors.Is(err, secrets.ErrSecretNotFound) {
			log.Warn("keyring lookup failed, continuing without session", "host", cfg.API.Host, "err", err)
		}
		return cfg, log, nil
	}

	cfg.Auth.Session = session
	cfg.Auth.SessionSource = "keyring"
	return cfg, log, nil
}
