package ponymail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const samplePayload = `{
  "hits": 3,
  "participants": [{"email": "a@example.org", "name": "A", "count": 2, "gravatar": "g"}],
  "no_threads": 2,
  "searchParams": {"list": "dev", "domain": "cloudstack.apache.org", "d": "dfr=2025-01-01|dto=2025-01-31"},
  "list": "dev@cloudstack.apache.org",
  "domain": "cloudstack.apache.org",
  "emails": [
    {"message-id": "<a@x>", "in-reply-to": "", "subject": "Hello", "mid": "m1", "epoch": 1735689600, "from": "A <a@example.org>"},
    {"message-id": "<b@x>", "in-reply-to": "<a@x>", "subject": "Re: Hello", "mid": "m2"},
    {"subject": "sparse"}
  ],
  "thread_struct": [{"tid": "m1", "nest": 0, "children": [{"tid": "m2", "nest": 1}]}],
  "active_months": {"2025-01": 3}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	be.Err(t, err, nil)
	opts = append([]Option{WithScheme("http"), WithHTTPClient(srv.Client())}, opts...)
	return NewClient(u.Host, opts...)
}

func testQuery() Query {
	return Query{List: "dev", Domain: "cloudstack.apache.org", StartDate: "2025-01-01", EndDate: "2025-01-31"}
}

func TestStatsURL(t *testing.T) {
	c := NewClient("")
	raw := c.StatsURL(testQuery())

	u, err := url.Parse(raw)
	be.Err(t, err, nil)
	be.Equal(t, u.Scheme, "https")
	be.Equal(t, u.Host, DefaultHost)
	be.Equal(t, u.Path, "/api/stats.lua")
	be.Equal(t, u.Query().Get("list"), "dev")
	be.Equal(t, u.Query().Get("domain"), "cloudstack.apache.org")
	be.Equal(t, u.Query().Get("d"), "dfr=2025-01-01|dto=2025-01-31")
}

func TestQueryValidate(t *testing.T) {
	be.Err(t, testQuery().Validate(), nil)

	cases := []Query{
		{Domain: "d", StartDate: "2025-01-01", EndDate: "2025-01-02"},
		{List: "l", StartDate: "2025-01-01", EndDate: "2025-01-02"},
		{List: "l", Domain: "d", StartDate: "01/01/2025", EndDate: "2025-01-02"},
		{List: "l", Domain: "d", StartDate: "2025-01-01", EndDate: "tomorrow"},
		{List: "l", Domain: "d", StartDate: "2025-02-01", EndDate: "2025-01-01"},
	}
	for _, q := range cases {
		be.True(t, errors.Is(q.Validate(), ErrInvalidQuery))
	}
}

func TestFetchStats(t *testing.T) {
	var gotCookie, gotPath, gotAccept string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("ponymail"); err == nil {
			gotCookie = cookie.Value
		}
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	}, WithSessionCookie(" secret "))

	resp, err := c.FetchStats(context.Background(), testQuery())
	be.Err(t, err, nil)
	be.Equal(t, gotCookie, "secret")
	be.Equal(t, gotPath, "/api/stats.lua")
	be.Equal(t, gotAccept, "application/json")
	be.Equal(t, resp.Hits, 3)
	be.Equal(t, resp.NoThreads, 2)
	be.Equal(t, len(resp.Participants), 1)
	be.Equal(t, resp.SearchParams.D, "dfr=2025-01-01|dto=2025-01-31")
	be.Equal(t, len(resp.Emails), 3)
	be.Equal(t, resp.Emails[1].InReplyTo, "<a@x>")
	be.Equal(t, resp.Emails[0].MessageID, "<a@x>")
	be.Equal(t, resp.Emails[2].MessageID, "")
	be.Equal(t, resp.Emails[2].Epoch, int64(0))
	be.Equal(t, len(resp.ThreadStruct), 1)
	be.Equal(t, resp.ThreadStruct[0].Children[0].Nest, 1)
	be.Equal(t, resp.ActiveMonths["2025-01"], 3)
}

func TestFetchStatsStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such list", http.StatusNotFound)
	})

	_, err := c.FetchStats(context.Background(), testQuery())
	var apiErr *APIError
	be.True(t, errors.As(err, &apiErr))
	be.Equal(t, apiErr.StatusCode, http.StatusNotFound)
	be.Equal(t, apiErr.Body, "no such list")
}

func TestFetchStatsBadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	})

	_, err := c.FetchStats(context.Background(), testQuery())
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "maintenance"))
}

func TestFetchStatsRejectsInvalidQuery(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.FetchStats(context.Background(), Query{List: "dev"})
	be.True(t, errors.Is(err, ErrInvalidQuery))
	be.True(t, !called)
}

func TestThreadListShapes(t *testing.T) {
	var fromArray struct {
		Threads ThreadList `json:"thread_struct"`
	}
	err := json.Unmarshal([]byte(`{"thread_struct": [{"tid": "a"}, {"tid": "b", "children": [{"tid": "c", "nest": 1}]}]}`), &fromArray)
	be.Err(t, err, nil)
	be.Equal(t, len(fromArray.Threads), 2)
	be.Equal(t, fromArray.Threads[1].Children[0].TID, "c")

	var fromMap struct {
		Threads ThreadList `json:"thread_struct"`
	}
	err = json.Unmarshal([]byte(`{"thread_struct": {"k2": {"tid": "two"}, "k1": {"tid": "one"}}}`), &fromMap)
	be.Err(t, err, nil)
	be.Equal(t, len(fromMap.Threads), 2)
	be.Equal(t, fromMap.Threads[0].TID, "one")
	be.Equal(t, fromMap.Threads[1].TID, "two")

	var fromNull struct {
		Threads ThreadList `json:"thread_struct"`
	}
	err = json.Unmarshal([]byte(`{"thread_struct": null}`), &fromNull)
	be.Err(t, err, nil)
	be.Equal(t, len(fromNull.Threads), 0)

	var bad ThreadList
	be.True(t, json.Unmarshal([]byte(`"nope"`), &bad) != nil)
}
