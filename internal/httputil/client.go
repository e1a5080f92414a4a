// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

const (
	defaultRequestsPerSecond = 2.0
	defaultCacheTTL          = 15 * time.Minute
	defaultTimeout           = 30 * time.Second
)

// Client wraps an http.Client with the manners literature APIs expect: a
// User-Agent, a per-host rate limit, retry with backoff, and a TTL cache so
// repeated GETs within a run do not hammer the API.
type Client struct {
	http      *http.Client
	userAgent string
	perSecond float64
	cache     *gocache.Cache

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient builds a Client from cfg, filling in defaults for zero values.
func NewClient(cfg types.HTTPConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	perSecond := cfg.RequestsPerSecond
	if perSecond <= 0 {
		perSecond = defaultRequestsPerSecond
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		perSecond: perSecond,
		cache:     gocache.New(ttl, 2*ttl),
		limiters:  make(map[string]*rate.Limiter),
	}
}

// limiter returns the rate limiter for host, creating it on first use.
func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	lim, ok := c.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(c.perSecond), 1)
		c.limiters[host] = lim
	}
	return lim
}

// GetBytes fetches rawURL, honoring the host's rate limit and the response
// cache. A non-2xx final status is an error.
func (c *Client) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	if cached, ok := c.cache.Get(rawURL); ok {
		return cached.([]byte), nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL %s: %w", rawURL, err)
	}
	if err := c.limiter(u.Host).Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("GET %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", rawURL, err)
	}
	c.cache.SetDefault(rawURL, body)
	return body, nil
}

// GetJSON fetches rawURL and unmarshals the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.GetBytes(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing response from %s: %w", rawURL, err)
	}
	return nil
}
