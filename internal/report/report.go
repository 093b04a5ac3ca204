package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"mailscrape/internal/ponymail"
	"mailscrape/internal/stats"
	"mailscrape/internal/threading"

	"github.com/charmbracelet/lipgloss"
	"github.com/emersion/go-message/mail"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("unknown output format")

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (expected text, json, or yaml)", ErrUnknownFormat, value)
	}
}

// Options selects the report sections. Strategy decides how unanswered
// emails are found.
type Options struct {
	Header       bool
	Emails       bool
	Threads      bool
	Daily        bool
	Averages     bool
	Summary      bool
	Unanswered   bool
	Participants bool
	Verbose      bool
	Strategy     threading.Strategy
	Format       Format
}

// Document is the machine-readable report used by the json and yaml formats.
type Document struct {
	List         stats.ListInfo         `json:"list" yaml:"list"`
	TotalEmails  int                    `json:"total_emails" yaml:"total_emails"`
	Participants int                    `json:"total_participants" yaml:"total_participants"`
	TotalThreads int                    `json:"total_threads" yaml:"total_threads"`
	Averages     Averages               `json:"averages" yaml:"averages"`
	Monthly      []stats.MonthCount     `json:"monthly_activity" yaml:"monthly_activity"`
	Strategy     threading.Strategy     `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Unanswered   []UnansweredEmail      `json:"unanswered,omitempty" yaml:"unanswered,omitempty"`
	Top          []ponymail.Participant `json:"participants,omitempty" yaml:"participants,omitempty"`
}

type Averages struct {
	Emails       float64 `json:"emails" yaml:"emails"`
	Participants float64 `json:"participants" yaml:"participants"`
	Threads      float64 `json:"threads" yaml:"threads"`
}

type UnansweredEmail struct {
	Subject   string `json:"subject" yaml:"subject"`
	From      string `json:"from" yaml:"from"`
	Date      string `json:"date" yaml:"date"`
	Epoch     int64  `json:"epoch" yaml:"epoch"`
	MessageID string `json:"message_id" yaml:"message_id"`
}

// Logger is what Render hands to the correlation code.
type Logger = threading.Logger

func Render(w io.Writer, a stats.AnalyzedStats, s stats.MailingListStats, opts Options, log Logger) error {
	log = orDiscard(log)
	log.Debug("rendering report", "format", string(opts.Format), "verbose", opts.Verbose)

	switch opts.Format {
	case FormatText, "":
		return renderText(w, a, s, opts, log)
	case FormatJSON, FormatYAML:
		doc, err := BuildDocument(a, s, opts, log)
		if err != nil {
			return err
		}
		if opts.Format == FormatJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(doc)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(opts.Format))
	}
}

func BuildDocument(a stats.AnalyzedStats, s stats.MailingListStats, opts Options, log Logger) (Document, error) {
	doc := Document{
		List:         a.ListInfo,
		TotalEmails:  a.TotalEmails,
		Participants: a.TotalParticipants,
		TotalThreads: a.TotalThreads,
		Averages: Averages{
			Emails:       a.AvgEmails,
			Participants: a.AvgParticipants,
			Threads:      a.AvgThreads,
		},
		Monthly: stats.MonthlyActivity(a.DailyStats),
	}
	if opts.Participants {
		doc.Top = stats.TopParticipants(s.Participants)
	}
	if !opts.Unanswered {
		return doc, nil
	}

	unanswered, err := threading.FindUnanswered(s.Emails, s.Threads, opts.Strategy, log)
	if err != nil {
		return doc, err
	}
	doc.Strategy = opts.Strategy
	doc.Unanswered = make([]UnansweredEmail, 0, len(unanswered))
	for _, e := range unanswered {
		doc.Unanswered = append(doc.Unanswered, UnansweredEmail{
			Subject:   e.Subject,
			From:      e.From,
			Date:      displayDate(e),
			Epoch:     e.Epoch,
			MessageID: e.MessageID,
		})
	}
	return doc, nil
}

type textWriter struct {
	out     io.Writer
	heading lipgloss.Style
	err     error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.out, format, args...)
}

func (t *textWriter) section(title, underline string) {
	t.printf("\n%s\n%s\n", t.heading.Render(title), underline)
}

func renderText(w io.Writer, a stats.AnalyzedStats, s stats.MailingListStats, opts Options, log Logger) error {
	renderer := lipgloss.NewRenderer(w)
	t := &textWriter{
		out:     w,
		heading: renderer.NewStyle().Bold(true).Foreground(headingColor),
	}

	if opts.Header {
		t.section("Mailing List Statistics Summary", strings.Repeat("=", 30))
		t.printf("List: %s \n", a.ListInfo.ListName)
		t.printf("Period: %s to %s\n", a.ListInfo.PeriodFrom, a.ListInfo.PeriodTo)
	}

	if opts.Emails {
		t.section("Emails:", strings.Repeat("-", 7))
		for _, e := range s.Emails {
			if opts.Verbose {
				t.printf("Subject: %s\nFrom: %s\nDate: %s\nMessage-ID: %s\n\n", e.Subject, e.From, displayDate(e), e.MessageID)
				continue
			}
			t.printf("- %s (from: %s)\n", e.Subject, senderName(e.From))
		}
	}

	if opts.Threads {
		t.section("Threads:", strings.Repeat("-", 8))
		for _, thread := range s.Threads {
			if opts.Verbose {
				t.printf("Thread: %s\nDepth: %d\n\n", thread.Subject, thread.Nest)
				continue
			}
			t.printf("- %s\n", thread.Subject)
		}
	}

	if opts.Daily {
		t.printf("\n%s\n", t.heading.Render("Daily Activity:"))
		t.printf("%-12s %8s %14s %10s\n", "Date", "Emails", "Participants", "Threads")
		t.printf("%s\n", strings.Repeat("-", 46))
		for _, month := range stats.MonthlyActivity(a.DailyStats) {
			t.printf("%-12s %8d\n", month.Month, month.Count)
		}
		t.printf("%s\n", strings.Repeat("-", 46))
		t.printf("Totals:%9d %14d %10d\n", a.TotalEmails, a.TotalParticipants, a.TotalThreads)
	}

	if opts.Averages {
		t.printf("\n%s\n", t.heading.Render("Averages per day:"))
		t.printf("Emails: %.2f\nParticipants: %.2f\nThreads: %.2f\n", a.AvgEmails, a.AvgParticipants, a.AvgThreads)
	}

	if opts.Summary {
		t.printf("%s\n", strings.Repeat("-", 32))
		t.printf("Summary: %d emails in %d threads\n", a.TotalEmails, a.TotalThreads)
	}

	if opts.Participants {
		t.section("Participants:", strings.Repeat("-", 13))
		if t.err == nil {
			t.err = printParticipants(w, stats.TopParticipants(s.Participants))
		}
	}

	if opts.Unanswered {
		unanswered, err := threading.FindUnanswered(s.Emails, s.Threads, opts.Strategy, log)
		if err != nil {
			return err
		}
		t.section("Unanswered Emails:", strings.Repeat("-", 17))
		if len(unanswered) == 0 {
			t.printf("No unanswered emails found.\n")
		} else {
			for _, e := range unanswered {
				if opts.Verbose {
					t.printf("Subject: %s\nFrom: %s\nDate: %s\nEpoch: %d\nMessage-ID: %s\n\n",
						e.Subject, e.From, displayDate(e), e.Epoch, e.MessageID)
					continue
				}
				t.printf("- %s (from: %s, date: %s)\n", e.Subject, senderName(e.From), displayDate(e))
			}
			t.printf("\nTotal unanswered emails: %d\n", len(unanswered))
		}
	}

	log.Debug("finished displaying analysis")
	return t.err
}

var headingColor = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}

func printParticipants(out io.Writer, participants []ponymail.Participant) error {
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEMAIL\tCOUNT")
	for _, p := range participants {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", p.Name, p.Email, p.Count)
	}
	return tw.Flush()
}

// displayDate prefers the date string, then the epoch, then a placeholder.
func displayDate(e ponymail.Email) string {
	if e.Date != "" {
		return e.Date
	}
	if e.Epoch > 0 {
		return time.Unix(e.Epoch, 0).UTC().Format("2006-01-02")
	}
	return stats.UnknownDate
}

// senderName shortens "Jane Doe <jane@example.org>" to "Jane Doe". Values that
// do not parse as an address are returned as-is.
func senderName(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return from
	}
	if addr.Name != "" {
		return addr.Name
	}
	return addr.Address
}

func orDiscard(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
