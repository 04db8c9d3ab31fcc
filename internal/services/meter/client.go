// Package meter talks to the Manx Utilities metering API.
package meter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/j-veylop/manx-utilities-tui/internal/logger"
	"github.com/j-veylop/manx-utilities-tui/internal/models"
)

const (
	// DefaultEndpoint is the production API base URL.
	DefaultEndpoint = "https://api.manxutilities.im/api/v0-1"

	// DefaultApplicationID is the application id the provider's own app sends.
	DefaultApplicationID = "8f56d0c3-351b-43aa-bf86-b49dbacd18dc"

	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 30 * time.Second

	readingPeriod   = "PT30M"
	readingFunction = "sum"
)

var errMissingToken = errors.New("response did not include a token")

// Config holds the credentials and resource identifiers for one account.
type Config struct {
	Endpoint         string
	ApplicationID    string
	Username         string
	Password         string
	CostResourceID   string
	EnergyResourceID string
	Timeout          time.Duration
}

// DefaultConfig returns a config pointing at the production API.
func DefaultConfig() Config {
	return Config{
		Endpoint:      DefaultEndpoint,
		ApplicationID: DefaultApplicationID,
		Timeout:       DefaultTimeout,
	}
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = logger.OrDiscard(l) }
}

// WithHTTPClient makes the client use hc instead of creating its own session.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.newSession = func() *http.Client { return hc }
	}
}

// WithClock overrides the clock used to compute request windows.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// Client fetches cost and energy readings for one credential set.
// The HTTP session is created on first use and shared by both reading types.
type Client struct {
	logger     *slog.Logger
	now        func() time.Time
	newSession func() *http.Client
	session    *http.Client
	token      string
	config     Config
	mu         sync.Mutex
}

// NewClient creates a client. No network traffic happens until the first call.
func NewClient(config Config, opts ...Option) *Client {
	defaults := DefaultConfig()
	if config.Endpoint == "" {
		config.Endpoint = defaults.Endpoint
	}
	if config.ApplicationID == "" {
		config.ApplicationID = defaults.ApplicationID
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	c := &Client{
		config: config,
		logger: logger.Discard(),
		now:    time.Now,
	}
	c.newSession = func() *http.Client {
		return &http.Client{Timeout: c.config.Timeout}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

type readingsResponse struct {
	Data []json.RawMessage `json:"data"`
}

// Authenticate exchanges the stored credentials for a bearer token.
// It is safe to call repeatedly; each call replaces the held token.
func (c *Client) Authenticate(ctx context.Context) error {
	session := c.acquireSession()

	payload, err := json.Marshal(authRequest{
		Username: c.config.Username,
		Password: c.config.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to encode auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint+"/auth", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	c.setHeaders(req, "")

	c.logger.Debug("attempting authentication")
	resp, err := session.Do(req)
	if err != nil {
		c.logger.Error("network error during authentication", "error", err)
		return &NetworkError{Op: "authentication", Err: err}
	}
	defer c.closeBody(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: "authentication", Err: err}
	}

	c.logger.Debug("auth response", "status", resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		c.setToken("")
		c.logger.Error("authentication failed", "status", resp.StatusCode, "response", string(body))
		return &AuthenticationError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result authResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.setToken("")
		return &AuthenticationError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        fmt.Errorf("failed to parse auth response: %w", err),
		}
	}
	if result.Token == "" {
		c.setToken("")
		return &AuthenticationError{StatusCode: resp.StatusCode, Body: string(body), Err: errMissingToken}
	}

	c.setToken(result.Token)
	c.logger.Debug("authenticated")
	return nil
}

// GetLatestReading returns the latest cost reading.
func (c *Client) GetLatestReading(ctx context.Context) (*models.Reading, error) {
	return c.GetReading(ctx, models.ReadingCost)
}

// GetReading fetches the reading of type t for the current window.
// A nil reading with a nil error means the provider has nothing usable
// for the bucket yet.
func (c *Client) GetReading(ctx context.Context, t models.ReadingType) (*models.Reading, error) {
	resourceID, err := c.resourceID(t)
	if err != nil {
		return nil, err
	}

	if c.currentToken() == "" {
		c.logger.Debug("no token held, authenticating first")
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	window := ComputeWindow(c.now())
	c.logger.Debug("requesting readings",
		"type", t.String(),
		"from", window.FromParam(),
		"to", window.ToParam(),
		"resource_id", resourceID,
	)

	status, body, err := c.fetchReadings(ctx, t, resourceID, window)
	if err != nil {
		return nil, err
	}

	retried := false
	if status == http.StatusUnauthorized {
		c.logger.Debug("token expired, reauthenticating")
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
		status, body, err = c.fetchReadings(ctx, t, resourceID, window)
		if err != nil {
			return nil, err
		}
		retried = true
	}

	if status != http.StatusOK {
		c.logger.Error("failed to get readings",
			"type", t.String(), "status", status, "response", string(body), "retried", retried)
		return nil, &ReadingFetchError{
			ReadingType: t,
			StatusCode:  status,
			Body:        string(body),
			Retried:     retried,
		}
	}

	return c.parseReading(t, body)
}

// Close releases the HTTP session. A later call opens a new one.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.session.CloseIdleConnections()
		c.session = nil
	}
	c.token = ""
	return nil
}

func (c *Client) fetchReadings(ctx context.Context, t models.ReadingType, resourceID string, window models.Window) (int, []byte, error) {
	session := c.acquireSession()

	params := url.Values{}
	params.Set("from", window.FromParam())
	params.Set("to", window.ToParam())
	params.Set("period", readingPeriod)
	params.Set("function", readingFunction)

	endpoint := fmt.Sprintf("%s/resource/%s/readings?%s",
		c.config.Endpoint, url.PathEscape(resourceID), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create readings request: %w", err)
	}
	c.setHeaders(req, c.currentToken())

	resp, err := session.Do(req)
	if err != nil {
		c.logger.Error("network error while getting readings", "type", t.String(), "error", err)
		return 0, nil, &NetworkError{Op: t.String() + " readings", Err: err}
	}
	defer c.closeBody(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &NetworkError{Op: t.String() + " readings", Err: err}
	}

	c.logger.Debug("readings response", "type", t.String(), "status", resp.StatusCode)
	return resp.StatusCode, body, nil
}

func (c *Client) parseReading(t models.ReadingType, body []byte) (*models.Reading, error) {
	var payload readingsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ReadingFetchError{
			ReadingType: t,
			StatusCode:  http.StatusOK,
			Body:        string(body),
			Err:         fmt.Errorf("failed to parse readings response: %w", err),
		}
	}

	if len(payload.Data) == 0 {
		c.logger.Warn("no readings found in response", "type", t.String())
		return nil, nil
	}

	// Only the first two elements of the first entry matter; anything after
	// them, and any later entry, is ignored.
	entry, err := leadingFields(payload.Data[0])
	if err != nil {
		return nil, &ReadingFetchError{
			ReadingType: t,
			StatusCode:  http.StatusOK,
			Body:        string(body),
			Err:         fmt.Errorf("failed to parse readings response: %w", err),
		}
	}
	if entry[0] == "" || entry[1] == "" {
		c.logger.Warn("incomplete reading in response", "type", t.String(), "entry", string(payload.Data[0]))
		return nil, nil
	}

	timestamp, err := parseTimestamp(entry[0])
	if err != nil {
		return nil, &ReadingFetchError{ReadingType: t, StatusCode: http.StatusOK, Body: string(body), Err: err}
	}
	value, err := entry[1].Float64()
	if err != nil {
		return nil, &ReadingFetchError{
			ReadingType: t,
			StatusCode:  http.StatusOK,
			Body:        string(body),
			Err:         fmt.Errorf("invalid reading value %q: %w", entry[1], err),
		}
	}

	if value <= 0 {
		c.logger.Debug("discarding non-positive reading", "type", t.String(), "timestamp", timestamp, "value", value)
		return nil, nil
	}

	c.logger.Debug("reading received",
		"type", t.String(),
		"time", time.Unix(timestamp, 0).UTC().Format(time.RFC3339),
		"value", value,
	)
	return &models.Reading{Timestamp: timestamp, Value: value}, nil
}

// leadingFields decodes the timestamp and value of a readings entry. A
// missing or null field comes back as an empty number.
func leadingFields(raw json.RawMessage) ([2]json.Number, error) {
	var fields [2]json.Number
	var entry []json.RawMessage
	if err := json.Unmarshal(raw, &entry); err != nil {
		return fields, err
	}
	for i := 0; i < len(fields) && i < len(entry); i++ {
		if err := json.Unmarshal(entry[i], &fields[i]); err != nil {
			return fields, fmt.Errorf("entry field %d: %w", i, err)
		}
	}
	return fields, nil
}

func parseTimestamp(n json.Number) (int64, error) {
	if ts, err := n.Int64(); err == nil {
		return ts, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("invalid reading timestamp %q: %w", n, err)
	}
	return int64(f), nil
}

func (c *Client) resourceID(t models.ReadingType) (string, error) {
	switch t {
	case models.ReadingCost:
		return c.config.CostResourceID, nil
	case models.ReadingEnergy:
		return c.config.EnergyResourceID, nil
	default:
		return "", fmt.Errorf("unsupported reading type %d", t)
	}
}

func (c *Client) setHeaders(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("applicationid", c.config.ApplicationID)
	req.Header.Set("content-type", "application/json")
}

func (c *Client) acquireSession() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		c.session = c.newSession()
	}
	return c.session
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.Error("failed to close response body", "error", err)
	}
}
