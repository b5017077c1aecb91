// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package hydrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
	"github.com/tomtom215/arcgis-catalog/internal/config"
	"github.com/tomtom215/arcgis-catalog/internal/logging"
	"github.com/tomtom215/arcgis-catalog/internal/metrics"
)

// maxErrorBodySize limits the maximum amount of response body read for error reporting
const maxErrorBodySize = 64 * 1024 // 64KB

// maxResponseSize bounds successful payloads. Large map services with many
// layers run to a few megabytes.
const maxResponseSize = 32 << 20 // 32MB

// errRateLimited is returned when every retry was answered with HTTP 429.
var errRateLimited = errors.New("rate limit exceeded (HTTP 429)")

// readBodyForError reads the response body for error reporting (max 64KB)
// Returns the body content or a placeholder message if reading fails
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// Client is the HTTP implementation of Hydrator and Fetcher.
//
// Thread Safety: Safe for concurrent use. Breakers are created lazily per host.
type Client struct {
	client         *http.Client
	limiter        *rate.Limiter // nil when rate limiting is disabled
	userAgent      string
	maxRetries     int           // Maximum retries for rate limiting
	retryBaseDelay time.Duration // Base delay for exponential backoff
	breakerCfg     config.BreakerConfig

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[*Response]
}

// NewClient creates a Client from the outbound client and breaker settings.
func NewClient(cfg *config.ArcGISConfig, breakerCfg *config.BreakerConfig) *Client {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}
	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:        limiter,
		userAgent:      cfg.UserAgent,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		breakerCfg:     *breakerCfg,
		breakers:       make(map[string]*gobreaker.CircuitBreaker[*Response]),
	}
}

// Hydrate fetches req and decodes the payload into target.
func (c *Client) Hydrate(ctx context.Context, req *Request, target any) error {
	resp, err := c.Fetch(ctx, req)
	if err != nil {
		return err
	}
	if err := HydrateFromJSON(resp.Body, target); err != nil {
		if IsRemoteError(err) {
			metrics.HydrationRequests.WithLabelValues(req.HTTPMethod(), "remote_error").Inc()
		}
		return fmt.Errorf("hydrate %s: %w", req, err)
	}
	return nil
}

// Fetch performs req through the host's circuit breaker.
func (c *Client) Fetch(ctx context.Context, req *Request) (*Response, error) {
	target := req.Target()
	parsed, err := url.Parse(target)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid request url %q", arcgis.StripQuery(req.URL))
	}

	cb := c.breakerFor(parsed.Host)
	start := time.Now()

	resp, err := cb.Execute(func() (*Response, error) {
		return c.doRequestWithRateLimit(ctx, req.HTTPMethod(), target, req.Body())
	})
	recordBreakerOutcome(cb, err)
	metrics.RecordHydration(req.HTTPMethod(), hydrationResult(err), time.Since(start))

	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("request", req.String()).Msg("ArcGIS request failed")
		return nil, fmt.Errorf("fetch %s: %w", req, err)
	}
	return resp, nil
}

// breakerFor returns the breaker for host, creating it on first use.
func (c *Client) breakerFor(host string) *gobreaker.CircuitBreaker[*Response] {
	c.mu.Lock()
	defer c.mu.Unlock()

	cb, ok := c.breakers[host]
	if !ok {
		cb = newHostBreaker(host, &c.breakerCfg)
		c.breakers[host] = cb
	}
	return cb
}

// BreakerStates reports the current breaker state per host.
func (c *Client) BreakerStates() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	states := make(map[string]string, len(c.breakers))
	for host, cb := range c.breakers {
		states[host] = stateToString(cb.State())
	}
	return states
}

// doRequestWithRateLimit performs an HTTP request with automatic rate limit handling.
// Implements exponential backoff for HTTP 429 responses (1s, 2s, 4s, 8s, 16s).
// The context is used for cancellation during limiter and backoff waits.
func (c *Client) doRequestWithRateLimit(ctx context.Context, method, reqURL, body string) (*Response, error) {
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
		}

		req, err := c.newHTTPRequest(ctx, method, reqURL, body)
		if err != nil {
			return nil, err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return readResponse(resp, arcgis.StripQuery(reqURL))
		}

		_ = resp.Body.Close() // Explicitly ignore error - will retry anyway

		if attempt == c.maxRetries {
			break
		}

		// Calculate exponential backoff delay: 1s, 2s, 4s, 8s, 16s
		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))

		// Check for Retry-After header (RFC 6585)
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		logging.Ctx(ctx).Debug().Int("attempt", attempt+1).Dur("delay", delay).Msg("ArcGIS server rate limited request, backing off")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w after %d retries", errRateLimited, c.maxRetries)
}

func (c *Client) newHTTPRequest(ctx context.Context, method, reqURL, body string) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)
	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, reqURL, strings.NewReader(body))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, method, reqURL, http.NoBody)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// readResponse consumes resp, turning non-2xx statuses into *StatusError.
func readResponse(resp *http.Response, displayURL string) (*Response, error) {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        displayURL,
			Body:       string(readBodyForError(resp.Body)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// hydrationResult maps a Fetch outcome to a metrics label.
func hydrationResult(err error) string {
	if err == nil {
		return "success"
	}
	if errors.Is(err, errRateLimited) {
		return "rate_limited"
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return "http_error"
	}
	return "transport_error"
}

var (
	_ Hydrator = (*Client)(nil)
	_ Fetcher  = (*Client)(nil)
)
