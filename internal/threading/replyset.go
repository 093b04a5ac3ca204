package threading

import (
	"strings"

	"mailscrape/internal/ponymail"
)

type idSet map[string]struct{}

func (s idSet) add(id string) { s[id] = struct{}{} }

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

// ReplySet is the outcome of a pass over a flat email list. RepliedTo holds
// the normalized ids of messages somebody answered; Replies holds the
// normalized ids of the answers themselves and is only used for reporting.
type ReplySet struct {
	RepliedTo idSet
	Replies   idSet
}

// HasReply reports whether the message with the given id was answered.
func (s ReplySet) HasReply(messageID string) bool {
	return s.RepliedTo.has(StripAngles(messageID))
}

// IsReply reports whether e answers another message, judged by either its
// subject prefix or its In-Reply-To header.
func IsReply(e ponymail.Email) bool {
	return strings.HasPrefix(e.Subject, replyPrefix) || e.InReplyTo != ""
}

// BuildReplySet collects the ids of every message that received a reply.
func BuildReplySet(emails []ponymail.Email, log Logger) ReplySet {
	log = orDiscard(log)
	set := ReplySet{RepliedTo: idSet{}, Replies: idSet{}}
	log.Debug("processing emails for threading", "emails", len(emails))

	for _, e := range emails {
		if !IsReply(e) {
			continue
		}
		set.Replies.add(StripAngles(e.MessageID))
		if e.InReplyTo != "" {
			set.RepliedTo.add(StripAngles(e.InReplyTo))
		}
	}
	log.Debug("reply scan finished", "replied_to", len(set.RepliedTo), "replies", len(set.Replies))

	// Second pass ignores the subject entirely: a bare In-Reply-To is enough.
	for _, e := range emails {
		if e.InReplyTo == "" {
			continue
		}
		parent := StripAngles(e.InReplyTo)
		set.RepliedTo.add(parent)
		log.Debug("email may be a reply",
			"id", e.ID, "mid", e.MID, "message_id", e.MessageID,
			"parent", parent, "subject", e.Subject)
	}
	log.Debug("emails with replies", "count", len(set.RepliedTo))

	return set
}

// UnansweredFlat returns, in source order, the emails that are not replies
// and that nobody answered.
func UnansweredFlat(emails []ponymail.Email, set ReplySet, log Logger) []ponymail.Email {
	log = orDiscard(log)
	out := []ponymail.Email{}
	for _, e := range emails {
		if IsReply(e) || set.HasReply(e.MessageID) {
			continue
		}
		log.Debug("found unanswered email", "subject", e.Subject, "message_id", StripAngles(e.MessageID))
		out = append(out, e)
	}
	log.Debug("identified unanswered emails", "unanswered", len(out), "total", len(emails))
	return out
}
