// Package pageinfo fetches page statistics from an XTools-compatible
// service and formats them as a one-paragraph summary.
//
// The lookup is strictly best effort. Whatever goes wrong (network, HTTP
// status, JSON, response shape) the caller receives a fixed visible error
// string, never an error value, so the enrichment can be dropped into a
// surface without its own failure handling.
package pageinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/glosskit/gloss/internal/logging"
)

const defaultHost = "xtools.wmcloud.org"

// Unavailable is the summary shown when the statistics lookup fails.
const Unavailable = "Page statistics are unavailable right now."

// Client fetches page statistics.
type Client struct {
	host   string
	hc     *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHost overrides the statistics service host. A value carrying a scheme
// is used as a full base URL, anything else is served over https.
func WithHost(host string) Option {
	return func(c *Client) {
		if host != "" {
			c.host = host
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a statistics client.
func New(opts ...Option) *Client {
	c := &Client{
		host:   defaultHost,
		hc:     &http.Client{Timeout: 15 * time.Second},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type pageInfo struct {
	Project           string `json:"project"`
	Page              string `json:"page"`
	Creator           string `json:"creator"`
	CreatedAt         string `json:"created_at"`
	Revisions         int64  `json:"revisions"`
	Editors           int64  `json:"editors"`
	Watchers          int64  `json:"watchers"`
	Pageviews         int64  `json:"pageviews"`
	PageviewsOffset   int64  `json:"pageviews_offset"`
	SecsSinceLastEdit int64  `json:"secs_since_last_edit"`
	Assessment        struct {
		Value string `json:"value"`
		Badge string `json:"badge"`
	} `json:"assessment"`
}

// valid is the explicit shape check applied before any field is trusted.
// JSON decoding alone is too forgiving: a wrong but well-formed document
// decodes into zero values that would render as a nonsense summary.
func (p *pageInfo) valid() bool {
	return p.Project != "" &&
		p.Page != "" &&
		p.Creator != "" &&
		p.CreatedAt != "" &&
		p.Revisions > 0 &&
		p.Editors > 0 &&
		p.Assessment.Value != ""
}

// Summary returns a one-paragraph description of the page's statistics, or
// the Unavailable string when anything fails.
func (c *Client) Summary(ctx context.Context, server, page string) string {
	if server == "" || page == "" {
		return Unavailable
	}

	base := c.host
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	u := fmt.Sprintf("%s/api/page/pageinfo/%s/%s",
		base, url.PathEscape(server), url.PathEscape(page))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.logger.Debug("pageinfo request build failed", "err", err)
		return Unavailable
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.Debug("pageinfo fetch failed", "err", err)
		return Unavailable
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("pageinfo fetch failed", "status", resp.StatusCode)
		return Unavailable
	}

	var info pageInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		c.logger.Debug("pageinfo decode failed", "err", err)
		return Unavailable
	}
	if !info.valid() {
		c.logger.Debug("pageinfo response shape rejected", "page", page)
		return Unavailable
	}

	created := info.CreatedAt
	if t, err := time.Parse(time.RFC3339, info.CreatedAt); err == nil {
		created = t.Format("2006-01-02")
	} else if len(created) >= 10 {
		created = created[:10]
	}
	days := (info.SecsSinceLastEdit + 43200) / 86400

	var b strings.Builder
	fmt.Fprintf(&b, "%q (%s) was created by %s on %s and has %d revisions; the last edit was %d days ago. ",
		info.Page, info.Assessment.Value, info.Creator, created, info.Revisions, days)
	fmt.Fprintf(&b, "%d editors have contributed", info.Editors)
	if info.Watchers > 0 {
		fmt.Fprintf(&b, " and %d users watch the page", info.Watchers)
	}
	fmt.Fprintf(&b, "; %d views in the last %d days.", info.Pageviews, info.PageviewsOffset)
	return b.String()
}
