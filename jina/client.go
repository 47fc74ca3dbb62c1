// Package jina provides a pkmclip.ContentFetcher backed by the Jina
// Reader API, which converts a web page into Markdown plus metadata.
package jina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/pkmclip"
)

// DefaultBaseURL is the public Jina Reader endpoint.
const DefaultBaseURL = "https://r.jina.ai"

// DefaultTimeout is the default timeout for reader requests. The reader
// renders pages remotely, which can take considerably longer than a
// plain HTTP fetch.
const DefaultTimeout = 20 * time.Second

// Headers configures the reader's request header set.
type Headers struct {
	// NoCache bypasses the reader's cache entirely.
	NoCache bool

	// CacheTolerance is the maximum acceptable cache age in seconds.
	CacheTolerance int

	// RespondWith selects the response format, "markdown" or "html".
	RespondWith string

	// Timeout is the reader-side render timeout in seconds.
	Timeout int

	// GeneratedAlt asks the reader to generate alt text for images.
	GeneratedAlt bool
}

// DefaultHeaders returns the header set used when none is configured.
func DefaultHeaders() Headers {
	return Headers{
		CacheTolerance: 3600,
		RespondWith:    "markdown",
		Timeout:        20,
	}
}

// DefaultRetryDelays returns the backoff delays for reader retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Ensure Client implements pkmclip.ContentFetcher at compile time.
var _ pkmclip.ContentFetcher = (*Client)(nil)

// Client fetches extracted page content from the Jina Reader API.
type Client struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	headers     Headers
	timeout     time.Duration
	retryDelays []time.Duration
	converter   pkmclip.Converter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the reader endpoint. Useful for tests and
// self-hosted reader deployments.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithAPIKey sets the API key sent as a Bearer token.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout sets the client-side timeout for reader requests.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHeaders sets the reader header configuration.
func WithHeaders(h Headers) Option {
	return func(c *Client) {
		c.headers = h
	}
}

// WithRetryDelays overrides the backoff delays. An empty slice disables
// retries entirely.
func WithRetryDelays(delays []time.Duration) Option {
	return func(c *Client) {
		c.retryDelays = delays
	}
}

// WithConverter sets the HTML to Markdown converter used when the header
// configuration selects HTML output.
func WithConverter(conv pkmclip.Converter) Option {
	return func(c *Client) {
		c.converter = conv
	}
}

// NewClient creates a new reader API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		headers:     DefaultHeaders(),
		timeout:     DefaultTimeout,
		retryDelays: DefaultRetryDelays(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.client = &http.Client{
		Timeout: c.timeout,
	}

	return c
}

// Fetch retrieves the page at rawURL through the reader and extracts its
// metadata from the response.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*pkmclip.FetchedContent, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, pkmclip.Errorf(pkmclip.EINVALID, "invalid URL %q", rawURL)
	}

	body, err := c.fetchWithRetry(ctx, c.baseURL+"/"+rawURL)
	if err != nil {
		return nil, err
	}

	markdown := body
	if strings.EqualFold(c.headers.RespondWith, "html") && c.converter != nil {
		markdown, err = c.converter.Convert(body)
		if err != nil {
			return nil, fmt.Errorf("convert reader response: %w", err)
		}
	}

	title := ParseTitle(markdown)
	if title == "" {
		title = TitleFromURL(rawURL)
	}

	return &pkmclip.FetchedContent{
		Markdown:    markdown,
		Title:       title,
		Author:      ParseAuthors(markdown),
		Published:   ExtractPublished(markdown, rawURL),
		Description: ParseDescription(markdown),
	}, nil
}

// fetchWithRetry performs the reader request with exponential backoff.
// Network errors, 5xx responses, and rate limiting are retried; other
// client errors fail immediately.
func (c *Client) fetchWithRetry(ctx context.Context, apiURL string) (string, error) {
	maxAttempts := len(c.retryDelays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		body, retryable, wait, err := c.do(ctx, apiURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !retryable || attempt >= maxAttempts-1 {
			break
		}

		delay := c.retryDelays[attempt]
		if wait > 0 {
			// Retry-After takes precedence over the backoff schedule.
			delay = wait
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	return "", lastErr
}

// do performs a single reader request. The retryable return reports
// whether the failure is worth another attempt; wait carries a server
// supplied Retry-After duration when present.
func (c *Client) do(ctx context.Context, apiURL string) (body string, retryable bool, wait time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", false, 0, err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", true, 0, pkmclip.Errorf(pkmclip.EUNAVAILABLE, "reader request failed: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", true, retryAfter(resp.Header.Get("Retry-After")),
			pkmclip.Errorf(pkmclip.EUNAVAILABLE, "reader rate limit exceeded")
	case resp.StatusCode >= 500:
		return "", true, 0,
			pkmclip.Errorf(pkmclip.EUNAVAILABLE, "reader server error: HTTP %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", false, 0,
			pkmclip.Errorf(pkmclip.EUNAVAILABLE, "reader request failed: HTTP %d: %s",
				resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, 0, pkmclip.Errorf(pkmclip.EUNAVAILABLE, "read reader response: %v", err)
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", false, 0, pkmclip.Errorf(pkmclip.EUNAVAILABLE, "empty response from reader")
	}

	return text, false, 0, nil
}

func (c *Client) setHeaders(req *http.Request) {
	h := c.headers
	req.Header.Set("Accept", "text/plain")
	if h.NoCache {
		req.Header.Set("x-no-cache", "true")
	}
	if h.CacheTolerance > 0 {
		req.Header.Set("x-cache-tolerance", strconv.Itoa(h.CacheTolerance))
	}
	if h.RespondWith != "" {
		req.Header.Set("x-respond-with", h.RespondWith)
	}
	if h.Timeout > 0 {
		req.Header.Set("x-timeout", strconv.Itoa(h.Timeout))
	}
	if h.GeneratedAlt {
		req.Header.Set("x-with-generated-alt", "true")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// retryAfter parses a Retry-After header expressed in seconds.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
