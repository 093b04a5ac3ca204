package threading

import (
	"errors"
	"fmt"
	"strings"

	"mailscrape/internal/ponymail"
)

var ErrUnknownStrategy = errors.New("unknown unanswered strategy")

// Strategy selects how "unanswered" is decided. The two strategies can
// disagree when In-Reply-To metadata does not match the thread tree.
type Strategy string

const (
	// StrategyFlat correlates In-Reply-To headers across the email list.
	StrategyFlat Strategy = "flat"
	// StrategyTree uses childless root nodes of thread_struct.
	StrategyTree Strategy = "tree"
)

func ParseStrategy(value string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(value))); s {
	case "":
		return StrategyFlat, nil
	case StrategyFlat, StrategyTree:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q (expected flat or tree)", ErrUnknownStrategy, value)
	}
}

// FindUnanswered applies the chosen strategy. Inputs are never modified.
func FindUnanswered(emails []ponymail.Email, threads []ponymail.ThreadNode, strategy Strategy, log Logger) ([]ponymail.Email, error) {
	switch strategy {
	case StrategyFlat, "":
		return UnansweredFlat(emails, BuildReplySet(emails, log), log), nil
	case StrategyTree:
		return UnansweredByThread(emails, UnansweredThreadIDs(threads), log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, string(strategy))
	}
}
