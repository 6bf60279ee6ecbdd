package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/motorlot/lotsync/pkg/errors"
	"github.com/motorlot/lotsync/pkg/logging"
)

// invalidTokenCode is the error code the backend returns alongside 403 when
// a previously issued token is no longer accepted.
const invalidTokenCode = "jwt_auth_invalid_token"

// defaultTimeout bounds each HTTP request independently of the run context.
const defaultTimeout = 60 * time.Second

// Config holds the connection settings for the content backend.
type Config struct {
	// BaseURL is the API root, e.g. "https://example.com/wp-json".
	BaseURL string
	// PostType is the custom collection under wp/v2, e.g. "autos".
	PostType string
	// RelationsPath is the relations namespace, e.g. "jet-rel". Relation
	// IDs are appended to it per call.
	RelationsPath string
	Username      string
	Password      string
}

// Validate checks that the config can produce working endpoints.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.NewValidationError("base_url", c.BaseURL, "base URL is required")
	}
	if c.PostType == "" {
		return errors.NewValidationError("post_type", c.PostType, "post type is required")
	}
	return nil
}

// Client is the authenticated REST client. It is safe for concurrent use;
// the token cache is guarded by a mutex and refreshed at most once per
// expiry or rejection.
type Client struct {
	cfg   Config
	http  *http.Client
	store TokenStore

	mu    sync.Mutex
	token Token
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Used by tests and by
// callers that need custom transport behavior.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithTokenStore sets the persistent token cache.
func WithTokenStore(store TokenStore) ClientOption {
	return func(c *Client) { c.store = store }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient builds a Client from config and options.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RelationsPath == "" {
		cfg.RelationsPath = "jet-rel"
	}

	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.loadCachedToken()
	return c, nil
}

// url joins path segments onto the API base.
func (c *Client) url(parts ...string) string {
	return c.cfg.BaseURL + "/" + strings.Join(parts, "/")
}

// postsURL returns the collection endpoint, optionally with an ID segment.
func (c *Client) postsURL(parts ...string) string {
	segs := append([]string{"wp", "v2", c.cfg.PostType}, parts...)
	return c.url(segs...)
}

// Request performs an authenticated JSON call. A 403 response whose body
// carries the invalid-token code triggers one token refresh and one retry;
// a second rejection is returned as-is. All other non-2xx responses become
// RequestError. When out is non-nil the response body is decoded into it,
// and an empty or undecodable body is an error.
func (c *Client) Request(ctx context.Context, method, endpoint string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	token, err := c.Token(ctx)
	if err != nil {
		return err
	}

	status, respBody, err := c.do(ctx, method, endpoint, payload, token, "application/json")
	if err != nil {
		return err
	}

	if status == http.StatusForbidden && hasInvalidTokenCode(respBody) {
		logging.Ctx(ctx).Info().Str("endpoint", endpoint).Msg("token rejected, refreshing and retrying")
		token, err = c.refreshToken(ctx)
		if err != nil {
			return err
		}
		status, respBody, err = c.do(ctx, method, endpoint, payload, token, "application/json")
		if err != nil {
			return err
		}
		if status == http.StatusForbidden && hasInvalidTokenCode(respBody) {
			return c.rejectAfterRefresh(method, endpoint, status, respBody)
		}
	}

	if status >= http.StatusBadRequest {
		return errors.NewRequestError(method, endpoint, status, string(respBody))
	}
	return decodeResponse(method, endpoint, respBody, out)
}

// RequestRaw performs an authenticated call with a pre-encoded body and
// explicit headers. Media upload uses it to send raw bytes instead of JSON.
func (c *Client) RequestRaw(ctx context.Context, method, endpoint string, body []byte, headers map[string]string, out any) error {
	token, err := c.Token(ctx)
	if err != nil {
		return err
	}

	status, respBody, err := c.doRaw(ctx, method, endpoint, body, token, headers)
	if err != nil {
		return err
	}

	if status == http.StatusForbidden && hasInvalidTokenCode(respBody) {
		token, err = c.refreshToken(ctx)
		if err != nil {
			return err
		}
		status, respBody, err = c.doRaw(ctx, method, endpoint, body, token, headers)
		if err != nil {
			return err
		}
		if status == http.StatusForbidden && hasInvalidTokenCode(respBody) {
			return c.rejectAfterRefresh(method, endpoint, status, respBody)
		}
	}

	if status >= http.StatusBadRequest {
		return errors.NewRequestError(method, endpoint, status, string(respBody))
	}
	return decodeResponse(method, endpoint, respBody, out)
}

// rejectAfterRefresh builds the fatal error for a token rejected twice. The
// cached token is discarded so the next request starts from a clean acquire.
// The error carries the failing endpoint, status, and body, and matches
// ErrTokenInvalid through the wrap chain.
func (c *Client) rejectAfterRefresh(method, endpoint string, status int, body []byte) error {
	c.InvalidateToken()
	return &errors.RequestError{
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: status,
		Body:       string(body),
		Err:        errors.ErrTokenInvalid,
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, token, contentType string) (int, []byte, error) {
	headers := map[string]string{}
	if payload != nil {
		headers["Content-Type"] = contentType
	}
	return c.doRaw(ctx, method, endpoint, payload, token, headers)
}

func (c *Client) doRaw(ctx context.Context, method, endpoint string, payload []byte, token string, headers map[string]string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, errors.WrapRequest(method, endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.WrapRequest(method, endpoint, err)
	}
	return resp.StatusCode, respBody, nil
}

// decodeResponse unmarshals the body into out when requested. A caller that
// expects a decoded response treats an empty body as a failure rather than
// silently returning zero values.
func decodeResponse(method, endpoint string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.NewRequestError(method, endpoint, 0, "empty response body")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewParseError("json", endpoint, "decoding response", err)
	}
	return nil
}

// hasInvalidTokenCode reports whether the error body carries the backend's
// invalid-token code.
func hasInvalidTokenCode(body []byte) bool {
	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	return payload.Code == invalidTokenCode
}
