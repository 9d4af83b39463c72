// Package sensibo is a small client for the Sensibo cloud REST API (v2).
//
// Only the calls the CLI needs are implemented: listing the user's pods,
// fetching one pod's detail and posting a new air-conditioner state. The API
// key is bound when the client is built and sent as the apiKey query
// parameter on every request.
package sensibo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rshade/sensibo/internal/logging"
	"github.com/rshade/sensibo/pkg/version"
)

const (
	// DefaultBaseURL is the Sensibo v2 API root.
	DefaultBaseURL = "https://home.sensibo.com/api/v2"

	// DefaultTimeout bounds every HTTP round trip, including state changes.
	DefaultTimeout = 30 * time.Second

	// AllFields asks GET /pods/{id} for the complete record.
	AllFields = "*"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 4 << 20

	statusSuccess = "success"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// Client talks to the Sensibo API on behalf of one API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListDeviceSummaries returns the ids of all pods visible to the API key.
func (c *Client) ListDeviceSummaries(ctx context.Context) ([]DeviceSummary, error) {
	result, err := c.doRequest(ctx, http.MethodGet, "/users/me/pods", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}

	var summaries []DeviceSummary
	if err := json.Unmarshal(result, &summaries); err != nil {
		return nil, fmt.Errorf("parsing device list: %w", err)
	}
	return summaries, nil
}

// GetDevice fetches one pod. fields selects the returned attributes; use AllFields for everything.
func (c *Client) GetDevice(ctx context.Context, deviceID, fields string) (*DeviceDetail, error) {
	if deviceID == "" {
		return nil, ErrMissingDeviceID
	}

	query := url.Values{}
	if fields != "" {
		query.Set("fields", fields)
	}

	result, err := c.doRequest(ctx, http.MethodGet, "/pods/"+url.PathEscape(deviceID), query, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching device %s: %w", deviceID, err)
	}

	if isEmptyResult(result) {
		return nil, fmt.Errorf("fetching device %s: %w", deviceID, ErrIncompleteDevice)
	}

	var detail DeviceDetail
	if err := json.Unmarshal(result, &detail); err != nil {
		return nil, fmt.Errorf("parsing device %s: %w", deviceID, err)
	}
	if strings.TrimSpace(detail.Room.Name) == "" {
		return nil, fmt.Errorf("fetching device %s: %w", deviceID, ErrIncompleteDevice)
	}
	return &detail, nil
}

// SetDeviceState posts a new (partial) AC state for the pod.
func (c *Client) SetDeviceState(ctx context.Context, deviceID string, state ACState) error {
	if deviceID == "" {
		return ErrMissingDeviceID
	}

	path := "/pods/" + url.PathEscape(deviceID) + "/acStates"
	if _, err := c.doRequest(ctx, http.MethodPost, path, nil, acStateRequest{ACState: state}); err != nil {
		return fmt.Errorf("changing state of device %s: %w", deviceID, err)
	}
	return nil
}

// doRequest performs one API call and returns the "result" member of the response envelope.
func (c *Client) doRequest(
	ctx context.Context,
	method, path string,
	query url.Values,
	body any,
) (json.RawMessage, error) {
	log := logging.FromContext(ctx)

	if query == nil {
		query = url.Values{}
	}
	query.Set("apiKey", c.apiKey)
	endpoint := c.baseURL + path + "?" + query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
		log.Debug().
			Ctx(ctx).
			Str("component", "sensibo").
			RawJSON("payload", payload).
			Msg("request payload")
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sensibo-cli/"+version.GetVersion())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.redact(err, path)
	}
	defer resp.Body.Close()

	log.Debug().
		Ctx(ctx).
		Str("component", "sensibo").
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api call")

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	success := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices

	// A write acknowledged with an empty body has still been applied.
	if success && method != http.MethodGet && len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if !success {
		reason := strings.TrimSpace(string(raw))
		if decodeErr == nil && env.Reason != "" {
			reason = env.Reason
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Reason: reason}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding response: %w", decodeErr)
	}
	if env.Status != "" && env.Status != statusSuccess {
		return nil, &APIError{StatusCode: resp.StatusCode, Reason: env.Reason}
	}

	return env.Result, nil
}

// isEmptyResult reports whether the envelope carried no result at all.
func isEmptyResult(result json.RawMessage) bool {
	trimmed := bytes.TrimSpace(result)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// redact strips the query string (which carries the API key) from transport errors.
func (c *Client) redact(err error, path string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = c.baseURL + path
		return urlErr
	}
	return err
}
