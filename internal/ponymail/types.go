package ponymail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Response is the payload returned by stats.lua.
type Response struct {
	Hits         int            `json:"hits"`
	Participants []Participant  `json:"participants"`
	NoThreads    int            `json:"no_threads"`
	SearchParams *SearchParams  `json:"searchParams"`
	List         string         `json:"list"`
	Domain       string         `json:"domain"`
	Emails       []Email        `json:"emails"`
	ThreadStruct ThreadList     `json:"thread_struct"`
	ActiveMonths map[string]int `json:"active_months"`
}

type SearchParams struct {
	List   string `json:"list"`
	Domain string `json:"domain"`
	D      string `json:"d"`
	Full   string `json:"full"`
}

type Email struct {
	InReplyTo   string       `json:"in-reply-to" yaml:"in_reply_to"`
	Private     bool         `json:"private" yaml:"private"`
	Attachments []Attachment `json:"attachments" yaml:"attachments,omitempty"`
	Subject     string       `json:"subject" yaml:"subject"`
	MID         string       `json:"mid" yaml:"mid"`
	Epoch       int64        `json:"epoch" yaml:"epoch"`
	List        string       `json:"list" yaml:"list"`
	Gravatar    string       `json:"gravatar" yaml:"gravatar,omitempty"`
	MessageID   string       `json:"message-id" yaml:"message_id"`
	From        string       `json:"from" yaml:"from"`
	ListRaw     string       `json:"list_raw" yaml:"list_raw"`
	ID          string       `json:"id" yaml:"id"`
	Body        string       `json:"body" yaml:"body,omitempty"`
	// Date is empty when the archive did not send one.
	Date string `json:"date" yaml:"date,omitempty"`
}

type Attachment struct {
	Filename    string `json:"filename" yaml:"filename"`
	ContentType string `json:"content_type" yaml:"content_type"`
	Size        int64  `json:"size" yaml:"size"`
	Hash        string `json:"hash" yaml:"hash"`
}

// ThreadNode is one entry of the reply tree. Nest is 0 for a thread starter.
type ThreadNode struct {
	TID      string       `json:"tid"`
	Subject  string       `json:"subject"`
	TSubject string       `json:"tsubject"`
	Epoch    int64        `json:"epoch"`
	Nest     int          `json:"nest"`
	Children []ThreadNode `json:"children"`
}

type Participant struct {
	Email    string `json:"email" yaml:"email"`
	Name     string `json:"name" yaml:"name"`
	Count    int    `json:"count" yaml:"count"`
	Gravatar string `json:"gravatar" yaml:"gravatar,omitempty"`
}

// ThreadList holds the top-level thread nodes. The archive sends thread_struct
// either as an array or as an object keyed by an opaque id; both decode to the
// same ordered slice. Object entries are ordered by key.
type ThreadList []ThreadNode

func (l *ThreadList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}

	switch trimmed[0] {
	case '[':
		var nodes []ThreadNode
		if err := json.Unmarshal(trimmed, &nodes); err != nil {
			return err
		}
		*l = nodes
		return nil
	case '{':
		var byKey map[string]ThreadNode
		if err := json.Unmarshal(trimmed, &byKey); err != nil {
			return err
		}
		keys := make([]string, 0, len(byKey))
		for key := range byKey {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		nodes := make([]ThreadNode, 0, len(keys))
		for _, key := range keys {
			nodes = append(nodes, byKey[key])
		}
		*l = nodes
		return nil
	default:
		return fmt.Errorf("thread_struct: expected array or object, got %q", trimmed[:1])
	}
}
