package cli

import (
	"log/slog"

	"mailscrape/internal/logging"

	"github.com/spf13/cobra"
)

// newLogger builds the stderr logger. --debug wins over log.level.
func newLogger(cmd *cobra.Command, levelName string) (*slog.Logger, error) {
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	return logging.New(cmd.ErrOrStderr(), level), nil
}
