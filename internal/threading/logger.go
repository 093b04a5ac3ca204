package threading

import (
	"io"
	"log/slog"
)

// Logger is the debug sink used while correlating. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
}

var discard Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func orDiscard(log Logger) Logger {
	if log == nil {
		return discard
	}
	return log
}
