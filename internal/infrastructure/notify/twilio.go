package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/airiscab/ridefare/internal/core/ports"
	"github.com/airiscab/ridefare/internal/pkg/retry"
)

var _ ports.Notifier = (*TwilioNotifier)(nil)

// TwilioConfig holds the account credentials and sender number.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	// From is the Twilio phone number messages are sent from.
	From string
	// BaseURL defaults to https://api.twilio.com.
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type twilioMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// TwilioNotifier sends SMS through the Twilio Messages API.
type TwilioNotifier struct {
	config      TwilioConfig
	httpClient  *http.Client
	log         zerolog.Logger
	retryConfig retry.Config
}

func NewTwilioNotifier(cfg TwilioConfig, log zerolog.Logger) (*TwilioNotifier, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, errors.New("twilio: account sid and auth token are required")
	}
	if cfg.From == "" {
		return nil, errors.New("twilio: from number is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	rc := retry.DefaultConfig()
	if cfg.MaxRetries > 0 {
		rc.MaxRetries = cfg.MaxRetries
	}

	return &TwilioNotifier{
		config:      cfg,
		httpClient:  httpClient,
		log:         log.With().Str("component", "twilio").Logger(),
		retryConfig: rc,
	}, nil
}

func (n *TwilioNotifier) Name() string { return "twilio" }

// Send posts one message. Only failures where Twilio cannot have accepted the
// message are retried: a refused connection and HTTP 429. A timeout or 5xx may
// follow an accepted message, so those end the send.
func (n *TwilioNotifier) Send(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", n.config.BaseURL, url.PathEscape(n.config.AccountSID))
	form := url.Values{
		"To":   {to},
		"From": {n.config.From},
		"Body": {body},
	}.Encode()

	onRetry := func(attempt int, err error, backoff time.Duration) {
		n.log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", backoff).Msg("sms send failed, retrying")
	}

	msg, err := retry.Do(ctx, n.retryConfig, onRetry, func() (*twilioMessage, error) {
		return n.post(ctx, endpoint, form)
	})
	if err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}

	n.log.Debug().Str("sid", msg.SID).Str("status", msg.Status).Msg("sms queued")
	return nil
}

func (n *TwilioNotifier) post(ctx context.Context, endpoint, form string) (*twilioMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.SetBasicAuth(n.config.AccountSID, n.config.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("HTTP request failed: %w", err)
		if notDelivered(err) {
			return nil, err
		}
		return nil, retry.Permanent(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("reading response body: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited (HTTP 429)")
	case resp.StatusCode >= 500:
		return nil, retry.Permanent(fmt.Errorf("server error (HTTP %d)", resp.StatusCode))
	case resp.StatusCode >= 400:
		var apiErr twilioError
		if jsonErr := json.Unmarshal(raw, &apiErr); jsonErr == nil && apiErr.Message != "" {
			return nil, retry.Permanent(fmt.Errorf("API error %d (HTTP %d): %s", apiErr.Code, resp.StatusCode, apiErr.Message))
		}
		return nil, retry.Permanent(fmt.Errorf("client error (HTTP %d)", resp.StatusCode))
	}

	var msg twilioMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, retry.Permanent(fmt.Errorf("parsing response: %w", err))
	}
	return &msg, nil
}

// notDelivered reports whether the request failed while dialing, before any
// bytes reached Twilio.
func notDelivered(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
