package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/travelperks/dealdedup/internal/domain"
)

const (
	maxAttempts = 3
	// Shop exports are a few hundred KB; larger bodies are rejected
	defaultMaxBodyBytes = 8 << 20
)

// errBodyTooLarge marks a response that exceeded the body size cap
var errBodyTooLarge = errors.New("body too large")

// Client fetches the JSON deal feed from the shop export endpoint
type Client struct {
	httpClient   *http.Client
	feedURL      string
	apiKey       string
	rateLimiter  *rate.Limiter
	maxBodyBytes int64
	backoff      func(attempt int) time.Duration
	debug        bool
}

// NewClient creates a new deal feed client. apiKey is sent as a bearer token
// when non-empty. requestsPerMinute bounds outgoing fetches (60 when zero).
func NewClient(feedURL, apiKey string, timeout time.Duration, requestsPerMinute int) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		feedURL:      feedURL,
		apiKey:       apiKey,
		rateLimiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 5),
		maxBodyBytes: defaultMaxBodyBytes,
		backoff:      exponentialBackoff,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[FEED] "+format, args...)
	}
}

// FetchDeals downloads the raw feed body. Server errors and 429s are retried
// with exponential backoff; other non-200 statuses fail immediately.
func (c *Client) FetchDeals(ctx context.Context) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrFeedUnavailable, err)
		}

		body, retry, err := c.fetchOnce(ctx)
		if err == nil {
			c.debugLog("Fetched %d bytes from %s", len(body), c.feedURL)
			return body, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}

		log.Printf("[FEED] Fetch failed (attempt %d/%d): %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, ctx.Err())
			case <-time.After(c.backoff(attempt)):
			}
		}
	}

	log.Printf("[FEED] All retries failed for %s", c.feedURL)
	return nil, lastErr
}

// fetchOnce performs one GET and reports whether a failure is worth retrying
func (c *Client) fetchOnce(ctx context.Context) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "DealDedup/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, ctx.Err())
		}
		return nil, true, fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, c.maxBodyBytes)
	if errors.Is(err, errBodyTooLarge) {
		return nil, false, fmt.Errorf("%w: feed body exceeds %d bytes", domain.ErrFeedUnavailable, c.maxBodyBytes)
	}
	if err != nil {
		return nil, true, fmt.Errorf("%w: reading body: %v", domain.ErrFeedUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		c.debugLog("Status %d, body: %s", resp.StatusCode, string(body))
		return nil, true, fmt.Errorf("%w: status %d", domain.ErrFeedUnavailable, resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("%w: status %d", domain.ErrFeedUnavailable, resp.StatusCode)
	}
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// readLimitedBody reads the whole body, failing with errBodyTooLarge when it
// is longer than limit bytes
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, errBodyTooLarge
	}
	return body, nil
}
