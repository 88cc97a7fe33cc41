package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/scholium/arxsearch/internal/article"
)

const (
	// BaseURL is the arXiv query API endpoint.
	BaseURL = "https://export.arxiv.org/api/query"

	// RateLimit follows the arXiv API terms: one request every three seconds.
	RateLimit = rate.Limit(1.0 / 3.0)

	// DefaultPageSize is the number of entries requested per page.
	DefaultPageSize = 100

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// maxRetries bounds retry attempts for a single page.
	maxRetries = 3

	// retryBackoff is the delay between retry attempts.
	retryBackoff = 5 * time.Second
)

// Client is a rate-limited HTTP client for the arXiv query API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	pageSize   int
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClientBaseURL sets a custom base URL (for testing).
func WithClientBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithRateLimit overrides the request rate limit.
func WithRateLimit(r rate.Limit) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(r, 1)
	}
}

// WithPageSize sets the page size for paginated fetches.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		c.pageSize = n
	}
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new arXiv API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(RateLimit, 1),
		baseURL:    BaseURL,
		pageSize:   DefaultPageSize,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves up to max raw records matching the search query, paging
// through the API under the rate limit. Records come back in feed order;
// the sequence may contain duplicates and malformed entries, which the
// normalizer handles.
func (c *Client) Fetch(ctx context.Context, query string, max int) ([]article.RawRecord, error) {
	var records []article.RawRecord

	for start := 0; start < max; start += c.pageSize {
		size := c.pageSize
		if remaining := max - start; remaining < size {
			size = remaining
		}

		page, total, err := c.fetchPage(ctx, query, start, size)
		if err != nil {
			return nil, fmt.Errorf("fetching page at offset %d: %w", start, err)
		}

		records = append(records, page...)
		c.logger.Info("fetched page",
			zap.Int("offset", start), zap.Int("entries", len(page)), zap.Int("total", total))

		// The feed reports fewer results than requested at the end.
		if start+len(page) >= total || len(page) == 0 {
			break
		}
	}

	return records, nil
}

// fetchPage retrieves one page, retrying transient failures a bounded
// number of times.
func (c *Client) fetchPage(ctx context.Context, query string, start, size int) ([]article.RawRecord, int, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying page fetch",
				zap.Int("attempt", attempt), zap.Int("offset", start), zap.Error(lastErr))
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}

		page, total, err := c.doFetch(ctx, query, start, size)
		if err == nil {
			return page, total, nil
		}
		lastErr = err
	}

	return nil, 0, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) doFetch(ctx context.Context, query string, start, size int) ([]article.RawRecord, int, error) {
	params := url.Values{
		"search_query": {query},
		"start":        {strconv.Itoa(start)},
		"max_results":  {strconv.Itoa(size)},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("arxiv returned status %d", resp.StatusCode)
	}

	var f feed
	if err := xml.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, 0, fmt.Errorf("decoding feed: %w", err)
	}

	records := make([]article.RawRecord, 0, len(f.Entries))
	for _, e := range f.Entries {
		records = append(records, e.toRawRecord())
	}

	return records, f.TotalResults, nil
}
