// Package googlemaps resolves routes with the Google Distance Matrix API.
// Requests are rate limited and transient failures (HTTP 429 and 5xx) are
// retried with exponential backoff.
package googlemaps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/airiscab/ridefare/internal/api/metrics"
	"github.com/airiscab/ridefare/internal/core/domain"
	"github.com/airiscab/ridefare/internal/core/ports"
	"github.com/airiscab/ridefare/internal/pkg/retry"
)

var _ ports.DistanceProvider = (*Client)(nil)

const metersPerMile = 1609.34

// ClientConfig holds configuration for the Distance Matrix client.
type ClientConfig struct {
	APIKey string
	// BaseURL defaults to https://maps.googleapis.com/maps/api.
	BaseURL string
	// Timeout bounds a single HTTP request.
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// RateLimitPerMin is the request budget per minute.
	RateLimitPerMin int
	HTTPClient      *http.Client
}

// ClientConfigDefaults returns a config with default values.
func ClientConfigDefaults() ClientConfig {
	return ClientConfig{
		BaseURL:         "https://maps.googleapis.com/maps/api",
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialBackoff:  250 * time.Millisecond,
		MaxBackoff:      5 * time.Second,
		RateLimitPerMin: 600,
	}
}

// Client implements ports.DistanceProvider on the Distance Matrix API.
type Client struct {
	config      ClientConfig
	httpClient  *http.Client
	log         zerolog.Logger
	limiter     *rate.Limiter
	retryConfig retry.Config
	now         func() time.Time
}

// NewClient creates a Distance Matrix client.
func NewClient(config ClientConfig, log zerolog.Logger) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("googlemaps: APIKey is required")
	}
	applyDefaults(&config, ClientConfigDefaults())

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	rps := float64(config.RateLimitPerMin) / 60.0

	return &Client{
		config:     config,
		httpClient: httpClient,
		log:        log.With().Str("component", "googlemaps").Logger(),
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		retryConfig: retry.Config{
			MaxRetries:     config.MaxRetries,
			InitialBackoff: config.InitialBackoff,
			MaxBackoff:     config.MaxBackoff,
			BackoffFactor:  2.0,
		},
		now: time.Now,
	}, nil
}

func applyDefaults(config *ClientConfig, defaults ClientConfig) {
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = defaults.MaxRetries
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = defaults.InitialBackoff
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = defaults.MaxBackoff
	}
	if config.RateLimitPerMin == 0 {
		config.RateLimitPerMin = defaults.RateLimitPerMin
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "google"
}

// RouteMetrics returns the driving distance and duration between two places,
// departing now. Unresolvable routes are reported as domain.ErrRouteUnavailable.
func (c *Client) RouteMetrics(ctx context.Context, pickup, dropoff string) (*domain.RouteMetrics, error) {
	params := url.Values{
		"origins":        {pickup},
		"destinations":   {dropoff},
		"mode":           {"driving"},
		"departure_time": {fmt.Sprintf("%d", c.now().Unix())},
		"key":            {c.config.APIKey},
	}
	endpoint := fmt.Sprintf("%s/distancematrix/json?%s", c.config.BaseURL, params.Encode())

	var resp distanceMatrixResponse
	if err := c.doRequest(ctx, endpoint, &resp); err != nil {
		metrics.DistanceRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		return nil, err
	}

	m, err := toMetrics(&resp)
	if err != nil {
		metrics.DistanceRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		return nil, err
	}
	metrics.DistanceRequestsTotal.WithLabelValues(c.Name(), "ok").Inc()
	return m, nil
}

func toMetrics(resp *distanceMatrixResponse) (*domain.RouteMetrics, error) {
	if resp.Status != "OK" {
		if resp.ErrorMessage != "" {
			return nil, fmt.Errorf("%w: google maps status %s: %s", domain.ErrRouteUnavailable, resp.Status, resp.ErrorMessage)
		}
		return nil, fmt.Errorf("%w: google maps status %s", domain.ErrRouteUnavailable, resp.Status)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return nil, fmt.Errorf("%w: empty distance matrix", domain.ErrRouteUnavailable)
	}

	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return nil, fmt.Errorf("%w: route status %s", domain.ErrRouteUnavailable, el.Status)
	}

	inTraffic := el.Duration.Value
	if el.DurationInTraffic != nil {
		inTraffic = el.DurationInTraffic.Value
	}
	return &domain.RouteMetrics{
		DistanceMiles:     float64(el.Distance.Value) / metersPerMile,
		DurationSeconds:   int(el.Duration.Value),
		DurationInTraffic: int(inTraffic),
	}, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string, result any) error {
	onRetry := func(attempt int, err error, backoff time.Duration) {
		c.log.Warn().Err(err).
			Int("attempt", attempt).
			Int("max_retries", c.retryConfig.MaxRetries).
			Dur("backoff", backoff).
			Msg("request failed, retrying")
	}

	return retry.DoVoid(ctx, c.retryConfig, onRetry, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return retry.Permanent(fmt.Errorf("rate limiter: %w", err))
		}
		return c.doSingleRequest(ctx, fullURL, result)
	})
}

func (c *Client) doSingleRequest(ctx context.Context, fullURL string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return retry.Permanent(fmt.Errorf("creating request: %w", redactKey(err)))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", redactKey(err))
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.Warn().Err(closeErr).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("rate limited (HTTP 429)")
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("server error (HTTP %d)", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return retry.Permanent(fmt.Errorf("client error (HTTP %d): %s", resp.StatusCode, string(body)))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return retry.Permanent(fmt.Errorf("parsing response: %w", err))
	}
	return nil
}

// redactKey masks the API key in the URL carried by a *url.Error, which
// otherwise ends up in logs verbatim.
func redactKey(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		ue.URL = "[redacted]"
		return err
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	ue.URL = u.String()
	return err
}
