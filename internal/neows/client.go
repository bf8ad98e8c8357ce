// Package neows is a client for NASA's Near Earth Object Web Service (NeoWs)
// together with the in-memory store and on-disk cache for close-approach feeds.
package neows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/metrics"
)

const (
	// DefaultBaseURL is the public NeoWs REST endpoint.
	DefaultBaseURL = "https://api.nasa.gov/neo/rest/v1"

	// DefaultAPIKey is NASA's shared demonstration key (heavily rate limited).
	DefaultAPIKey = "DEMO_KEY"

	// MaxFeedDays is the widest date range the feed endpoint accepts.
	MaxFeedDays = 7

	// DateLayout is the date format used by feed query parameters.
	DateLayout = "2006-01-02"

	maxBodyBytes = 50 << 20
)

var tracer = otel.Tracer("github.com/Ronin-2099/Chance-of-Meteors/internal/neows")

var (
	// ErrNotFound is returned when NeoWs has no object with the requested id.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidWindow is returned for feed ranges NeoWs would reject.
	ErrInvalidWindow = errors.New("invalid feed window")
)

// StatusError reports a non-200 response from NeoWs.
type StatusError struct {
	StatusCode int
	Endpoint   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from neows %s", e.StatusCode, e.Endpoint)
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Rate    float64 // requests per second; <= 0 disables throttling
	Burst   int
	Timeout time.Duration
}

// Client performs throttled requests against NeoWs.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Client. Empty fields in cfg fall back to defaults.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = DefaultAPIKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, cfg.Burst),
		logger:  logger,
	}
}

// Lookup fetches a single object, including its orbital data.
func (c *Client) Lookup(ctx context.Context, id string) (*Object, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("lookup: empty object id")
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	body, err := c.get(ctx, "lookup", c.baseURL+"/neo/"+url.PathEscape(id)+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", id, err)
	}

	var obj Object
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("decoding lookup %s: %w", id, err)
	}
	return &obj, nil
}

// Feed fetches the raw close-approach feed for the inclusive date range
// [start, end]. Use ParseFeed to decode it.
func (c *Client) Feed(ctx context.Context, start, end time.Time) ([]byte, error) {
	if err := ValidateWindow(start, end); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("start_date", start.Format(DateLayout))
	q.Set("end_date", end.Format(DateLayout))
	q.Set("api_key", c.apiKey)

	body, err := c.get(ctx, "feed", c.baseURL+"/feed?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("feed %s..%s: %w", start.Format(DateLayout), end.Format(DateLayout), err)
	}
	return body, nil
}

// ValidateWindow checks a feed date range against the NeoWs limits.
func ValidateWindow(start, end time.Time) error {
	s := truncateDay(start)
	e := truncateDay(end)
	if e.Before(s) {
		return fmt.Errorf("%w: end %s before start %s", ErrInvalidWindow, e.Format(DateLayout), s.Format(DateLayout))
	}
	if e.Sub(s) > MaxFeedDays*24*time.Hour {
		return fmt.Errorf("%w: range exceeds %d days", ErrInvalidWindow, MaxFeedDays)
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "neows."+endpoint)
	defer span.End()

	start := time.Now()
	body, status, err := c.do(ctx, rawURL)
	duration := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(
		attribute.String("neows.endpoint", endpoint),
		attribute.Int("http.status_code", status),
	)
	metrics.RecordUpstream(endpoint, outcome, duration)

	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			se.Endpoint = endpoint
		}
		c.logger.Warn("neows request failed",
			"component", "neows",
			"endpoint", endpoint,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	c.logger.Debug("neows request",
		"component", "neows",
		"endpoint", endpoint,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	)
	return body, nil
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the API key; report the transport failure without it.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, 0, fmt.Errorf("requesting neows: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, resp.StatusCode, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, resp.StatusCode, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, resp.StatusCode, fmt.Errorf("response exceeds %d byte limit", maxBodyBytes)
	}

	return body, resp.StatusCode, nil
}
