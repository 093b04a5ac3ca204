package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mailscrape/internal/ponymail"
	"mailscrape/internal/stats"
	"mailscrape/internal/threading"

	"github.com/nalgeon/be"
	"gopkg.in/yaml.v3"
)

func sampleStats() (stats.AnalyzedStats, stats.MailingListStats) {
	resp := &ponymail.Response{
		Hits:      3,
		NoThreads: 2,
		Participants: []ponymail.Participant{
			{Email: "a@example.org", Name: "Alice", Count: 1},
			{Email: "b@example.org", Name: "Bob", Count: 2},
		},
		SearchParams: &ponymail.SearchParams{D: "dfr=2025-01-01|dto=2025-01-31"},
		List:         "dev@cloudstack.apache.org",
		Domain:       "cloudstack.apache.org",
		Emails: []ponymail.Email{
			{MessageID: "<q@x>", MID: "m-q", Subject: "Question", From: "Alice <a@example.org>", Epoch: 1735689600},
			{MessageID: "<r@x>", MID: "m-r", Subject: "Re: Question", From: "Bob <b@example.org>", InReplyTo: "<q@x>"},
			{MessageID: "<l@x>", MID: "m-l", Subject: "Lonely", From: "bob@example.org", Date: "2025-01-05"},
		},
		ThreadStruct: ponymail.ThreadList{
			{TID: "m-q", Subject: "Question", Children: []ponymail.ThreadNode{{TID: "m-r", Nest: 1}}},
			{TID: "m-l", Subject: "Lonely"},
		},
		ActiveMonths: map[string]int{"2025-01": 3},
	}
	s := stats.FromResponse(resp, nil)
	return stats.Analyze(s), s
}

func allSections() Options {
	return Options{
		Header: true, Emails: true, Threads: true, Daily: true, Averages: true,
		Summary: true, Unanswered: true, Participants: true,
		Strategy: threading.StrategyFlat, Format: FormatText,
	}
}

func TestRenderText(t *testing.T) {
	a, s := sampleStats()
	var buf bytes.Buffer

	err := Render(&buf, a, s, allSections(), nil)
	be.Err(t, err, nil)

	out := buf.String()
	for _, want := range []string{
		"Mailing List Statistics Summary",
		"List: dev@cloudstack.apache.org \n",
		"Period: 2025-01-01 to 2025-01-31\n",
		"- Question (from: Alice)\n",
		"- Lonely\n",
		"2025-01             3\n",
		"Totals:        3              2          2\n",
		"Emails: 0.10\n",
		"Summary: 3 emails in 2 threads\n",
		"- Lonely (from: bob@example.org, date: 2025-01-05)\n",
		"Total unanswered emails: 1\n",
		"Bob",
	} {
		be.True(t, strings.Contains(out, want))
	}
	be.True(t, !strings.Contains(out, "- Question (from: Alice, date:"))
}

func TestRenderTextVerboseUnanswered(t *testing.T) {
	a, s := sampleStats()
	var buf bytes.Buffer

	opts := Options{Unanswered: true, Verbose: true, Strategy: threading.StrategyTree}
	be.Err(t, Render(&buf, a, s, opts, nil), nil)

	out := buf.String()
	be.True(t, strings.Contains(out, "Subject: Lonely\nFrom: bob@example.org\nDate: 2025-01-05\nEpoch: 0\nMessage-ID: <l@x>\n"))
	be.True(t, !strings.Contains(out, "Mailing List Statistics Summary"))
}

func TestRenderTextNoUnanswered(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Unanswered: true}
	be.Err(t, Render(&buf, stats.AnalyzedStats{}, stats.MailingListStats{}, opts, nil), nil)
	be.True(t, strings.Contains(buf.String(), "No unanswered emails found.\n"))
}

func TestRenderJSON(t *testing.T) {
	a, s := sampleStats()
	var buf bytes.Buffer

	opts := Options{Unanswered: true, Strategy: threading.StrategyFlat, Format: FormatJSON}
	be.Err(t, Render(&buf, a, s, opts, nil), nil)

	var doc Document
	be.Err(t, json.Unmarshal(buf.Bytes(), &doc), nil)
	be.Equal(t, doc.TotalEmails, 3)
	be.Equal(t, doc.List.PeriodTo, "2025-01-31")
	be.Equal(t, len(doc.Unanswered), 1)
	be.Equal(t, doc.Unanswered[0].MessageID, "<l@x>")
	be.Equal(t, doc.Monthly, []stats.MonthCount{{Month: "2025-01", Count: 3}})
}

func TestRenderYAML(t *testing.T) {
	a, s := sampleStats()
	var buf bytes.Buffer

	opts := Options{Participants: true, Format: FormatYAML}
	be.Err(t, Render(&buf, a, s, opts, nil), nil)

	var doc Document
	be.Err(t, yaml.Unmarshal(buf.Bytes(), &doc), nil)
	be.Equal(t, doc.TotalThreads, 2)
	be.Equal(t, doc.Top[0].Name, "Bob")
	be.Equal(t, len(doc.Unanswered), 0)
}

func TestRenderUnknownStrategy(t *testing.T) {
	a, s := sampleStats()
	err := Render(&bytes.Buffer{}, a, s, Options{Unanswered: true, Strategy: "bogus"}, nil)
	be.True(t, errors.Is(err, threading.ErrUnknownStrategy))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	be.Err(t, err, nil)
	be.Equal(t, f, FormatText)

	f, err = ParseFormat("YML")
	be.Err(t, err, nil)
	be.Equal(t, f, FormatYAML)

	_, err = ParseFormat("xml")
	be.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestSenderName(t *testing.T) {
	be.Equal(t, senderName("Jane Doe <jane@example.org>"), "Jane Doe")
	be.Equal(t, senderName("jane@example.org"), "jane@example.org")
	be.Equal(t, senderName("not an address"), "not an address")
}
