// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads pages politely: one in-flight request per
// host, a minimum jittered interval between requests to the same host,
// and bounded retry on HTTP 429.
package fetch

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/recipe-finder/pkg/types"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

const (
	defaultMaxRetries   = 5
	defaultHostInterval = 4 * time.Second
	defaultHostJitter   = 4 * time.Second
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.Code)
}

// Client downloads pages with per-host politeness. The zero value is
// not usable; construct with NewClient.
type Client struct {
	httpClient *http.Client
	cfg        types.FetchConfig

	mu    sync.Mutex
	hosts map[string]*semaphore.Weighted
}

// NewClient builds a Client from cfg, filling defaults for unset
// politeness knobs.
func NewClient(cfg types.FetchConfig) *Client {
	if cfg.HostInterval == 0 {
		cfg.HostInterval = defaultHostInterval
	}
	if cfg.HostJitter == 0 {
		cfg.HostJitter = defaultHostJitter
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		hosts:      make(map[string]*semaphore.Weighted),
	}
}

// hostSemaphore returns the weight-1 semaphore serializing requests to
// host, creating it on first use.
func (c *Client) hostSemaphore(host string) *semaphore.Weighted {
	c.mu.Lock()
	defer c.mu.Unlock()
	sem, ok := c.hosts[host]
	if !ok {
		sem = semaphore.NewWeighted(1)
		c.hosts[host] = sem
	}
	return sem
}

// Get downloads rawURL and returns the response body. The per-host
// permit is held through the politeness interval, so the next request
// to the same host cannot start before the interval elapses.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}

	sem := c.hostSemaphore(u.Hostname())
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := c.get(ctx, rawURL)

	// Release the permit only after the interval has passed, in the
	// background so the caller is not held up.
	interval := c.cfg.HostInterval
	if c.cfg.HostJitter > 0 {
		interval += rand.N(c.cfg.HostJitter)
	}
	go func() {
		if remaining := interval - time.Since(start); remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-ctx.Done():
			}
		}
		sem.Release(1)
	}()

	return body, err
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	setHeaders(req, c.cfg.UserAgent)

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// doWithRetry executes the request and retries on HTTP 429 with
// exponential backoff: RetryBaseDelay doubled each attempt. After
// exhausting retries the last 429 response is returned so the caller
// can inspect it. A context cancellation during a backoff wait returns
// ctx.Err().
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		if attempt >= c.cfg.MaxRetries {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// setHeaders applies the headers recipe sites expect from a browser-ish
// client. Sites serve structured data to ordinary browsers; a bare Go
// default profile gets consent walls instead.
func setHeaders(req *http.Request, userAgent string) {
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.5")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
}
