package opendatahub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fetcher retrieves the latest occupancy for a set of stations.
// This interface is implemented by *Client and can be used for testing.
type Fetcher interface {
	FetchLatest(ctx context.Context, codes []string) ([]Station, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the Open Data Hub mobility API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	origin    string
}

// Options tune a Client. Zero values use defaults.
type Options struct {
	Timeout    time.Duration
	Origin     string
	UserAgent  string
	HTTPClient *http.Client
}

const (
	defaultAPIBase   = "https://mobility.api.opendatahub.com"
	defaultUserAgent = "parkdash/0.1"
	defaultOrigin    = "webcomp-parking-dashboard"
	requestTimeout   = 10 * time.Second

	latestPath = "/v2/flat,node/ParkingStation/occupied/latest"
)

// NewClient builds a Client for the given API base URL.
func NewClient(apiBase string, opts Options) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = requestTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	c := &Client{
		baseURL:   base,
		http:      httpClient,
		userAgent: defaultUserAgent,
		origin:    defaultOrigin,
	}
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		c.userAgent = ua
	}
	if origin := strings.TrimSpace(opts.Origin); origin != "" {
		c.origin = origin
	}
	return c, nil
}

// FetchLatest retrieves the latest occupied measurement for exactly the given
// station codes.
func (c *Client) FetchLatest(ctx context.Context, codes []string) ([]Station, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no station codes")
	}
	rel := &url.URL{Path: latestPath, RawQuery: latestQuery(codes, c.origin)}
	var payload LatestResponse
	if err := c.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// Where builds the filter expression selecting the given codes, each
// percent-encoded: scode.in.("103","104").
func Where(codes []string) string {
	quoted := make([]string, len(codes))
	for i, code := range codes {
		quoted[i] = `"` + escapeComponent(code) + `"`
	}
	return "scode.in.(" + strings.Join(quoted, ",") + ")"
}

// latestQuery is assembled by hand because url.Values would re-encode the
// already escaped codes and the expression's punctuation.
func latestQuery(codes []string, origin string) string {
	where := strings.ReplaceAll(Where(codes), `"`, "%22")
	return "limit=-1&where=" + where + "&origin=" + escapeComponent(origin)
}

// escapeComponent matches encodeURIComponent: spaces become %20, not "+".
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
