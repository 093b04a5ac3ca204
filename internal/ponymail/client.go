package ponymail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mailscrape/internal/logging"
)

const (
	DefaultHost    = "lists.apache.org"
	DefaultTimeout = 30 * time.Second

	statsPath   = "/api/stats.lua"
	sessionName = "ponymail"
	dateLayout  = "2006-01-02"
	maxRawBody  = 512
)

var ErrInvalidQuery = errors.New("invalid query")

// Doer is the subset of *http.Client used by Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is returned when the archive answers with a non-2xx status.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("stats request %s: status %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("stats request %s: status %d", e.URL, e.StatusCode)
}

// Query selects one list over a date range. Dates use YYYY-MM-DD.
type Query struct {
	List      string
	Domain    string
	StartDate string
	EndDate   string
}

func (q Query) Validate() error {
	if q.List == "" {
		return fmt.Errorf("%w: list is required", ErrInvalidQuery)
	}
	if q.Domain == "" {
		return fmt.Errorf("%w: domain is required", ErrInvalidQuery)
	}
	start, err := time.Parse(dateLayout, q.StartDate)
	if err != nil {
		return fmt.Errorf("%w: start date %q is not YYYY-MM-DD", ErrInvalidQuery, q.StartDate)
	}
	end, err := time.Parse(dateLayout, q.EndDate)
	if err != nil {
		return fmt.Errorf("%w: end date %q is not YYYY-MM-DD", ErrInvalidQuery, q.EndDate)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidQuery, q.EndDate, q.StartDate)
	}
	return nil
}

type Client struct {
	host    string
	scheme  string
	session string
	http    Doer
	log     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithSessionCookie attaches a ponymail session so private lists can be read.
func WithSessionCookie(session string) Option {
	return func(c *Client) { c.session = strings.TrimSpace(session) }
}

func WithScheme(scheme string) Option {
	return func(c *Client) {
		if scheme != "" {
			c.scheme = scheme
		}
	}
}

func NewClient(host string, opts ...Option) *Client {
	if host == "" {
		host = DefaultHost
	}
	c := &Client{
		host:   strings.TrimRight(host, "/"),
		scheme: "https",
		http:   &http.Client{Timeout: DefaultTimeout},
		log:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatsURL builds the stats.lua URL for q. The d parameter keeps its
// dfr=<from>|dto=<to> shape.
func (c *Client) StatsURL(q Query) string {
	values := url.Values{}
	values.Set("list", q.List)
	values.Set("domain", q.Domain)
	values.Set("d", fmt.Sprintf("dfr=%s|dto=%s", q.StartDate, q.EndDate))
	u := url.URL{
		Scheme:   c.scheme,
		Host:     c.host,
		Path:     statsPath,
		RawQuery: values.Encode(),
	}
	return u.String()
}

func (c *Client) FetchStats(ctx context.Context, q Query) (*Response, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	target := c.StatsURL(q)
	c.log.Debug("requesting stats", "url", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: sessionName, Value: c.session})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching mailing list data: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	c.log.Debug("received response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, URL: target, Body: truncate(string(body))}
	}

	var data Response
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing mailing list data: %w (raw response: %s)", err, truncate(string(body)))
	}

	c.log.Debug("decoded emails", "count", len(data.Emails))
	for i, e := range data.Emails {
		c.log.Debug("email",
			"index", i, "date", e.Date, "subject", e.Subject,
			"from", e.From, "in_reply_to", e.InReplyTo)
	}
	return &data, nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxRawBody {
		return s
	}
	return s[:maxRawBody] + "..."
}
