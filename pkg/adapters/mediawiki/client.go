package mediawiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/glosskit/gloss/internal/logging"
	"github.com/glosskit/gloss/pkg/domain"
	"github.com/glosskit/gloss/pkg/observability"
	"github.com/glosskit/gloss/pkg/ports"
)

const (
	defaultUserAgent    = "gloss/1.0"
	defaultRefreshDelay = 2 * time.Second

	// defaultNoDiffNotice keeps an identical-revision compare distinguishable
	// from a failed one, which returns an empty string.
	defaultNoDiffNotice = "(no difference)"
)

// Client talks to a MediaWiki action API endpoint and implements
// ports.SectionEditor. The zero value is not usable; construct with New.
type Client struct {
	endpoint     string
	hc           *http.Client
	logger       *slog.Logger
	userAgent    string
	pageTitle    string
	noDiffNotice string
	notifier     ports.Notifier
	refresh      func()
	refreshDelay time.Duration
	metrics      *observability.Metrics
}

// Option configures a Client.
type Option func(*Client)

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

// WithNotifier routes edit outcomes (success, conflict) to a host surface.
func WithNotifier(n ports.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithUserAgent overrides the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithPageTitle records the page the client operates on. Render uses it as
// the parse context title so relative links and signatures expand correctly.
func WithPageTitle(title string) Option {
	return func(c *Client) { c.pageTitle = title }
}

// WithRefresh installs a callback fired once, delay after a successful
// append, so the host can re-read the page it just changed. A non-positive
// delay falls back to the default.
func WithRefresh(fn func(), delay time.Duration) Option {
	return func(c *Client) {
		c.refresh = fn
		if delay > 0 {
			c.refreshDelay = delay
		}
	}
}

// WithNoDiffNotice sets the text CompareDiff returns when the server reports
// no difference between the two revisions.
func WithNoDiffNotice(s string) Option {
	return func(c *Client) {
		if s != "" {
			c.noDiffNotice = s
		}
	}
}

// WithMetrics attaches operation counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a Client for the given api.php endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:     endpoint,
		hc:           http.DefaultClient,
		logger:       logging.NewNop(),
		userAgent:    defaultUserAgent,
		noDiffNotice: defaultNoDiffNotice,
		refreshDelay: defaultRefreshDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type queryResponse struct {
	CurTimestamp string `json:"curtimestamp"`
	Error        *apiError
	Query        struct {
		Pages []struct {
			Missing   bool `json:"missing"`
			Revisions []struct {
				Timestamp string `json:"timestamp"`
				Slots     struct {
					Main struct {
						Content string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

type editResponse struct {
	Error *apiError
	Edit  struct {
		Result string `json:"result"`
	} `json:"edit"`
}

type parseResponse struct {
	Error *apiError
	Parse struct {
		Text string `json:"text"`
	} `json:"parse"`
}

type compareResponse struct {
	Error   *apiError
	Compare struct {
		Body string `json:"body"`
	} `json:"compare"`
}

// post sends a form-encoded action API request and decodes the JSON reply
// into out. Transport and decode failures map to domain.ErrTransport.
func (c *Client) post(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: unexpected status %d", domain.ErrTransport, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrTransport, err)
	}
	return nil
}

// RetrieveFullText reads the current wikitext of a page section together with
// the timestamp pair needed for a conflict-checked write-back. A nil
// sectionID reads the whole page.
func (c *Client) RetrieveFullText(ctx context.Context, pageTitle string, sectionID *int) (domain.SectionText, error) {
	if pageTitle == "" {
		return domain.SectionText{}, fmt.Errorf("%w: empty page title", domain.ErrValidation)
	}
	if sectionID != nil && *sectionID < 0 {
		return domain.SectionText{}, fmt.Errorf("%w: negative section id %d", domain.ErrValidation, *sectionID)
	}

	params := url.Values{
		"action":       {"query"},
		"prop":         {"revisions"},
		"titles":       {pageTitle},
		"rvprop":       {"timestamp|content"},
		"rvslots":      {"main"},
		"curtimestamp": {"1"},
	}
	if sectionID != nil {
		params.Set("rvsection", strconv.Itoa(*sectionID))
	}

	var out queryResponse
	if err := c.post(ctx, params, &out); err != nil {
		return domain.SectionText{}, err
	}
	if out.Error != nil {
		return domain.SectionText{}, fmt.Errorf("%w: %s: %s", domain.ErrTransport, out.Error.Code, out.Error.Info)
	}
	if len(out.Query.Pages) == 0 || out.Query.Pages[0].Missing {
		return domain.SectionText{}, fmt.Errorf("%w: %q", domain.ErrNotFound, pageTitle)
	}
	page := out.Query.Pages[0]
	if len(page.Revisions) == 0 {
		return domain.SectionText{}, fmt.Errorf("%w: %q has no revisions", domain.ErrNotFound, pageTitle)
	}

	if c.metrics != nil {
		c.metrics.SectionRead()
	}
	rev := page.Revisions[0]
	c.logger.Debug("section retrieved", "page", pageTitle, "bytes", len(rev.Slots.Main.Content))
	return domain.SectionText{
		Text:           rev.Slots.Main.Content,
		StartTimestamp: out.CurTimestamp,
		BaseTimestamp:  rev.Timestamp,
	}, nil
}

// AppendToSection appends appendText to the end of a section with pre-save
// transform applied. On success it schedules the refresh callback and emits
// a success notification; an edit conflict notifies without refreshing.
func (c *Client) AppendToSection(ctx context.Context, pageTitle string, sectionID int, appendText, summary string) error {
	if pageTitle == "" {
		return fmt.Errorf("%w: empty page title", domain.ErrValidation)
	}
	if sectionID < 0 {
		return fmt.Errorf("%w: negative section id %d", domain.ErrValidation, sectionID)
	}
	if appendText == "" {
		return fmt.Errorf("%w: empty append text", domain.ErrValidation)
	}

	params := url.Values{
		"action":     {"edit"},
		"title":      {pageTitle},
		"section":    {strconv.Itoa(sectionID)},
		"appendtext": {appendText},
		"summary":    {summary},
		"token":      {"+\\"},
	}
	return c.finishEdit(ctx, pageTitle, params)
}

// ReplaceSectionText overwrites a section's wikitext. When ts is nil the
// client first reads the current timestamps so the write is still
// conflict-checked.
func (c *Client) ReplaceSectionText(ctx context.Context, pageTitle string, sectionID int, newText, summary string, ts *domain.SectionTimestamps) error {
	if pageTitle == "" {
		return fmt.Errorf("%w: empty page title", domain.ErrValidation)
	}
	if sectionID < 0 {
		return fmt.Errorf("%w: negative section id %d", domain.ErrValidation, sectionID)
	}

	if ts == nil {
		cur, err := c.RetrieveFullText(ctx, pageTitle, &sectionID)
		if err != nil {
			return err
		}
		t := cur.Timestamps()
		ts = &t
	}

	params := url.Values{
		"action":         {"edit"},
		"title":          {pageTitle},
		"section":        {strconv.Itoa(sectionID)},
		"text":           {newText},
		"summary":        {summary},
		"starttimestamp": {ts.StartTimestamp},
		"basetimestamp":  {ts.BaseTimestamp},
		"token":          {"+\\"},
	}
	return c.finishEdit(ctx, pageTitle, params)
}

func (c *Client) finishEdit(ctx context.Context, pageTitle string, params url.Values) error {
	var out editResponse
	if err := c.post(ctx, params, &out); err != nil {
		if c.metrics != nil {
			c.metrics.Commit(observability.ResultError)
		}
		return err
	}
	if out.Error != nil {
		if out.Error.Code == "editconflict" {
			if c.metrics != nil {
				c.metrics.Commit(observability.ResultConflict)
			}
			c.logger.Warn("edit conflict", "page", pageTitle)
			if c.notifier != nil {
				c.notifier.Notify(ports.NotifyWarn, "Someone else edited this section. Please reload and retry.")
			}
			return fmt.Errorf("%w: %s", domain.ErrConflict, out.Error.Info)
		}
		if c.metrics != nil {
			c.metrics.Commit(observability.ResultError)
		}
		return fmt.Errorf("%w: %s: %s", domain.ErrCommit, out.Error.Code, out.Error.Info)
	}
	if out.Edit.Result != "Success" {
		if c.metrics != nil {
			c.metrics.Commit(observability.ResultError)
		}
		return fmt.Errorf("%w: result %q", domain.ErrCommit, out.Edit.Result)
	}

	if c.metrics != nil {
		c.metrics.Commit(observability.ResultSuccess)
	}
	c.logger.Info("edit saved", "page", pageTitle)
	if c.notifier != nil {
		c.notifier.Notify(ports.NotifyInfo, "Saved.")
	}
	if c.refresh != nil {
		time.AfterFunc(c.refreshDelay, c.refresh)
	}
	return nil
}

// Render expands wikitext to HTML for preview. Render is best effort: any
// failure yields an empty string so preview degrades instead of blocking.
func (c *Client) Render(ctx context.Context, text, title string) string {
	if title == "" {
		title = c.pageTitle
	}
	params := url.Values{
		"action": {"parse"},
		"text":   {text},
		"title":  {title},
		"pst":    {"1"},
		"prop":   {"text"},
	}
	var out parseResponse
	if err := c.post(ctx, params, &out); err != nil {
		c.logger.Debug("render failed", "err", err)
		return ""
	}
	if out.Error != nil {
		c.logger.Debug("render failed", "code", out.Error.Code)
		return ""
	}
	return out.Parse.Text
}

// CompareDiff asks the server to diff two texts in the context of the
// client's page. An empty body means the revisions are identical and the
// configured no-diff notice is returned instead of markup.
func (c *Client) CompareDiff(ctx context.Context, oldText, newText string) (string, error) {
	params := url.Values{
		"action":        {"compare"},
		"fromtext-main": {oldText},
		"totext-main":   {newText},
		"fromtitle":     {c.pageTitle},
		"totitle":       {c.pageTitle},
		"frompst":       {"1"},
		"topst":         {"1"},
	}
	var out compareResponse
	if err := c.post(ctx, params, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("%w: %s: %s", domain.ErrTransport, out.Error.Code, out.Error.Info)
	}
	if out.Compare.Body == "" {
		return c.noDiffNotice, nil
	}
	return `<table class="diff"><colgroup><col class="diff-marker"><col class="diff-content"><col class="diff-marker"><col class="diff-content"></colgroup>` +
		out.Compare.Body + `</table>`, nil
}

var _ ports.SectionEditor = (*Client)(nil)
