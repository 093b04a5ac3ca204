// Package stats turns a stats.lua response into the records the report prints.
package stats

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"mailscrape/internal/logging"
	"mailscrape/internal/ponymail"
)

const (
	// UnknownDate is shown for emails with neither an epoch nor a date.
	UnknownDate = "Unknown date"

	daysPerMonth = 30.44
	dateLayout   = "2006-01-02"
)

type MailingListStats struct {
	TotalEmails       int
	TotalParticipants int
	TotalThreads      int
	PeriodStart       string
	PeriodEnd         string
	ListName          string
	Domain            string
	Emails            []ponymail.Email
	Threads           []ponymail.ThreadNode
	Participants      []ponymail.Participant
	ActiveMonths      map[string]int
}

type ListInfo struct {
	ListName   string `json:"list_name" yaml:"list_name"`
	Domain     string `json:"domain" yaml:"domain"`
	PeriodFrom string `json:"period_from" yaml:"period_from"`
	PeriodTo   string `json:"period_to" yaml:"period_to"`
}

type AnalyzedStats struct {
	TotalEmails       int
	TotalParticipants int
	TotalThreads      int
	AvgEmails         float64
	AvgParticipants   float64
	AvgThreads        float64
	DailyStats        map[string]int
	ListInfo          ListInfo
}

// MonthCount is one entry of active_months.
type MonthCount struct {
	Month string `json:"month" yaml:"month"`
	Count int    `json:"count" yaml:"count"`
}

// FromResponse maps the wire response onto MailingListStats. Every email
// with a positive epoch gets its Date rewritten from the epoch (UTC day);
// emails with neither get UnknownDate.
func FromResponse(r *ponymail.Response, log *slog.Logger) MailingListStats {
	if log == nil {
		log = logging.Discard()
	}
	if r == nil {
		return MailingListStats{}
	}

	var from, to string
	if r.SearchParams != nil {
		from, to = ParsePeriod(r.SearchParams.D)
	}

	emails := make([]ponymail.Email, len(r.Emails))
	for i, e := range r.Emails {
		if e.Epoch > 0 {
			formatted := time.Unix(e.Epoch, 0).UTC().Format(dateLayout)
			log.Debug("email date", "original", e.Date, "epoch", e.Epoch, "calculated", formatted)
			e.Date = formatted
		} else if e.Date == "" {
			log.Debug("no epoch or date available, setting placeholder", "message_id", e.MessageID)
			e.Date = UnknownDate
		}
		emails[i] = e
	}

	months := make(map[string]int, len(r.ActiveMonths))
	for k, v := range r.ActiveMonths {
		months[k] = v
	}

	return MailingListStats{
		TotalEmails:       r.Hits,
		TotalParticipants: len(r.Participants),
		TotalThreads:      r.NoThreads,
		PeriodStart:       from,
		PeriodEnd:         to,
		ListName:          r.List,
		Domain:            r.Domain,
		Emails:            emails,
		Threads:           []ponymail.ThreadNode(r.ThreadStruct),
		Participants:      r.Participants,
		ActiveMonths:      months,
	}
}

// ParsePeriod splits a "dfr=<from>|dto=<to>" search parameter.
func ParsePeriod(d string) (string, string) {
	if d == "" {
		return "", ""
	}
	parts := strings.Split(d, "|")
	clean := func(s string) string {
		s = strings.ReplaceAll(s, "dfr=", "")
		return strings.ReplaceAll(s, "dto=", "")
	}
	from := clean(parts[0])
	to := ""
	if len(parts) > 1 {
		to = clean(parts[1])
	}
	return from, to
}

// Analyze derives per-day averages. A month counts as 30.44 days; with no
// active months the averages stay zero.
func Analyze(s MailingListStats) AnalyzedStats {
	days := float64(len(s.ActiveMonths)) * daysPerMonth

	a := AnalyzedStats{
		TotalEmails:       s.TotalEmails,
		TotalParticipants: s.TotalParticipants,
		TotalThreads:      s.TotalThreads,
		DailyStats:        s.ActiveMonths,
		ListInfo: ListInfo{
			ListName:   s.ListName,
			Domain:     s.Domain,
			PeriodFrom: s.PeriodStart,
			PeriodTo:   s.PeriodEnd,
		},
	}
	if days > 0 {
		a.AvgEmails = float64(s.TotalEmails) / days
		a.AvgParticipants = float64(s.TotalParticipants) / days
		a.AvgThreads = float64(s.TotalThreads) / days
	}
	return a
}

// MonthlyActivity returns active months ordered by month key.
func MonthlyActivity(months map[string]int) []MonthCount {
	out := make([]MonthCount, 0, len(months))
	for month, count := range months {
		out = append(out, MonthCount{Month: month, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// TopParticipants orders participants by message count, then by email.
func TopParticipants(participants []ponymail.Participant) []ponymail.Participant {
	out := append([]ponymail.Participant(nil), participants...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Email < out[j].Email
	})
	return out
}
