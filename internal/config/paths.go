package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	AppName = "mailscrape"

	// dirEnv relocates the config directory, mostly for scripted runs.
	dirEnv = "MAILSCRAPE_CONFIG_DIR"
)

// Dir is ~/.config/mailscrape unless MAILSCRAPE_CONFIG_DIR is set.
func Dir() (string, error) {
	if dir := os.Getenv(dirEnv); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home dir: %w", err)
	}

	return filepath.Join(home, ".config", AppName), nil
}

func EnsureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return dir, ensure(dir, "config dir")
}

// KeyringDir holds the encrypted entries of the keyring "file" backend.
func KeyringDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "keyring"), nil
}

func EnsureKeyringDir() (string, error) {
	dir, err := KeyringDir()
	if err != nil {
		return "", err
	}
	return dir, ensure(dir, "keyring dir")
}

func ensure(dir, what string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("ensure %s: %w", what, err)
	}
	return nil
}
