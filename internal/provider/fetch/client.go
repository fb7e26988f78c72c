// Package fetch provides the HTTP client shared by every source adapter.
//
// Each request is bounded by a per-request timeout so a hung upstream cannot
// stall a refresh. Requests are paced per host with a token bucket limiter.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent when no user agent is configured. Several
// providers reject requests without a browser-like agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Options configures a Client.
type Options struct {
	Timeout           time.Duration
	RequestsPerMinute int
	UserAgent         string
}

// Client is the shared HTTP client for all providers.
type Client struct {
	http   *resty.Client
	logger *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
}

// NewClient creates a rate-limited client.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 60
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	rc := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetRetryCount(0)

	return &Client{
		http:     rc,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(float64(opts.RequestsPerMinute) / 60.0),
	}
}

func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(c.rate, 1)
	c.limiters[host] = l
	return l
}

// get performs a rate-limited GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if err := c.limiter(u.Host).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", accept).
		Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", rawURL, err)
	}

	c.logger.Debug("Fetched",
		"url", rawURL, "status", resp.StatusCode(),
		"bytes", len(resp.Body()), "duration", time.Since(start).Round(time.Millisecond))

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%s returned %d: %s", rawURL, resp.StatusCode(), truncate(resp.Body(), 200))
	}
	return resp.Body(), nil
}

// GetJSON fetches rawURL and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out interface{}) error {
	body, err := c.get(ctx, rawURL, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetDocument fetches rawURL and parses the body as HTML.
func (c *Client) GetDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := c.get(ctx, rawURL, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Url = parseURL(rawURL)
	return doc, nil
}

func parseURL(rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return u
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
