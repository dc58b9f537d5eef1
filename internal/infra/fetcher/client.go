// Package fetcher is the single outbound HTTP path for every source adapter.
// It layers politeness (per-host rate limiting, User-Agent rotation) and
// resilience (retry with backoff, circuit breaking, Retry-After honoring)
// over a plain http.Client.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"condo-radar/internal/resilience/circuitbreaker"
	"condo-radar/internal/resilience/retry"
)

// Client fetches URLs with shared politeness and resilience behavior.
type Client struct {
	httpClient *http.Client
	cfg        FetchConfig
	breaker    *circuitbreaker.CircuitBreaker
	logger     *slog.Logger

	uaCounter atomic.Uint64

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient builds a Client. A nil httpClient gets a default one with the
// configured timeout.
func NewClient(cfg FetchConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		breaker:    circuitbreaker.New(circuitbreaker.PageFetchConfig()),
		logger:     logger,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Get fetches rawURL and returns the response body, capped at MaxBodySize.
// Transient failures are retried with backoff; a 429 with a Retry-After
// header waits out the server's ask (up to RetryAfterCap) instead of using
// the generic backoff schedule.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return c.get(ctx, rawURL, retry.MetadataConfig())
}

// GetListing is Get with the more patient retry schedule used for listing
// endpoints, where giving up means losing the whole source for this run.
func (c *Client) GetListing(ctx context.Context, rawURL string) ([]byte, error) {
	return c.get(ctx, rawURL, retry.ListingConfig())
}

// Download is Get tuned for binary payloads.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	return c.get(ctx, rawURL, retry.DownloadConfig())
}

func (c *Client) get(ctx context.Context, rawURL string, retryCfg retry.Config) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", rawURL, err)
	}

	var body []byte
	err = retry.WithBackoff(ctx, retryCfg, func() error {
		if err := c.limiter(u.Host).Wait(ctx); err != nil {
			return err
		}
		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.doOnce(ctx, rawURL)
		})
		if err != nil {
			return err
		}
		body = result.([]byte)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", rawURL, err)
	}
	return body, nil
}

func (c *Client) doOnce(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.nextUserAgent())
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.waitRetryAfter(ctx, resp, rawURL)
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: "rate limited"}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.cfg.MaxBodySize {
		return nil, fmt.Errorf("response exceeds %d byte limit", c.cfg.MaxBodySize)
	}
	return body, nil
}

// waitRetryAfter sleeps out a server-requested cooldown. This runs in
// addition to the retry schedule's own backoff so the next attempt starts
// after the server's ask, not before it.
func (c *Client) waitRetryAfter(ctx context.Context, resp *http.Response, rawURL string) {
	wait := parseRetryAfter(resp.Header.Get("Retry-After"))
	if wait <= 0 {
		return
	}
	if wait > c.cfg.RetryAfterCap {
		wait = c.cfg.RetryAfterCap
	}
	c.logger.Warn("rate limited, honoring Retry-After",
		"url", rawURL,
		"wait", wait)

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		return time.Until(at)
	}
	return 0
}

func (c *Client) nextUserAgent() string {
	n := c.uaCounter.Add(1)
	return c.cfg.UserAgents[int(n-1)%len(c.cfg.UserAgents)]
}

// limiter returns the rate limiter for host, creating it on first use.
func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.cfg.PerHostRate), c.cfg.PerHostBurst)
		c.limiters[host] = l
	}
	return l
}
