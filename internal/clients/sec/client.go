// Package sec provides a client for the SEC EDGAR JSON API
package sec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/models"
)

const (
	DefaultBaseURL    = "https://data.sec.gov"
	DefaultTickersURL = "https://www.sec.gov/files/company_tickers.json"
	DefaultTimeout    = 30 * time.Second
	DefaultRateLimit  = 10 // requests per second; the SEC fair-access ceiling
	DefaultMaxRetries = 3
	DefaultBackoff    = time.Second
	DefaultUserAgent  = "pitfacts admin@example.com"
)

// Client implements the SECClient interface
type Client struct {
	baseURL    string
	tickersURL string
	userAgent  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the data.sec.gov base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTickersURL sets the company_tickers.json URL
func WithTickersURL(u string) ClientOption {
	return func(c *Client) {
		c.tickersURL = u
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetry sets the retry budget for 429 and 5xx responses. Attempt n waits n*backoff.
func WithRetry(maxRetries int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

// NewClient creates a new SEC client. userAgent must identify the caller with a
// contact address; the SEC blocks anonymous traffic.
func NewClient(userAgent string, opts ...ClientOption) *Client {
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		tickersURL: DefaultTickersURL,
		userAgent:  userAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     common.NewSilentLogger(),
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientFromConfig builds a client from the [clients.sec] section
func NewClientFromConfig(cfg common.SECConfig, logger *common.Logger) *Client {
	opts := []ClientOption{
		WithLogger(logger),
		WithTimeout(cfg.GetTimeout()),
		WithRetry(cfg.MaxRetries, DefaultBackoff),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	if cfg.TickersURL != "" {
		opts = append(opts, WithTickersURL(cfg.TickersURL))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, WithRateLimit(cfg.RateLimit))
	}
	return NewClient(cfg.UserAgent, opts...)
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("SEC API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// IsNotFound reports whether err is a 404 from the SEC, which EDGAR returns for
// filers with no XBRL data.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// get performs a rate-limited GET request with bounded retries on 429 and 5xx
func (c *Client) get(ctx context.Context, reqURL, endpoint string, result interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		err := c.do(ctx, reqURL, endpoint, result)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !retryable(apiErr.StatusCode) {
			return err
		}
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", apiErr.StatusCode).
			Int("attempt", attempt+1).
			Msg("SEC API request failed, retrying")
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, reqURL, endpoint string, result interface{}) error {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", reqURL).Msg("SEC API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   endpoint,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetCompanyFacts retrieves the XBRL companyfacts payload for a CIK
func (c *Client) GetCompanyFacts(ctx context.Context, cik string) (*models.CompanyFacts, error) {
	endpoint := fmt.Sprintf("/api/xbrl/companyfacts/CIK%s.json", models.CIK(cik).Padded())

	var cf models.CompanyFacts
	if err := c.get(ctx, c.baseURL+endpoint, endpoint, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// GetSubmissions retrieves filer metadata for a CIK
func (c *Client) GetSubmissions(ctx context.Context, cik string) (*models.Submission, error) {
	endpoint := fmt.Sprintf("/submissions/CIK%s.json", models.CIK(cik).Padded())

	var sub models.Submission
	if err := c.get(ctx, c.baseURL+endpoint, endpoint, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

type tickerEntry struct {
	CIK    models.CIK `json:"cik_str"`
	Ticker string     `json:"ticker"`
	Title  string     `json:"title"`
}

// GetCompanyTickers returns the upper-cased ticker to zero-padded CIK map.
// When a ticker appears twice the first entry wins.
func (c *Client) GetCompanyTickers(ctx context.Context) (map[string]string, error) {
	var raw map[string]tickerEntry
	if err := c.get(ctx, c.tickersURL, "company_tickers.json", &raw); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(raw))
	for _, key := range sortedIndexKeys(raw) {
		e := raw[key]
		t := strings.ToUpper(strings.TrimSpace(e.Ticker))
		if t == "" {
			continue
		}
		if _, ok := out[t]; ok {
			continue
		}
		out[t] = e.CIK.Padded()
	}
	return out, nil
}

// sortedIndexKeys orders the "0", "1", ... keys of company_tickers.json numerically,
// which is the SEC's ranking by market value.
func sortedIndexKeys(m map[string]tickerEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})
	return keys
}
