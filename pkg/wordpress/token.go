package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/motorlot/lotsync/pkg/errors"
	"github.com/motorlot/lotsync/pkg/logging"
)

// tokenPath is the auth endpoint, relative to the API base URL.
const tokenPath = "jwt-auth/v1/token"

// defaultTokenTTL is used when the token carries no exp claim. Short on
// purpose so a claimless token is re-acquired often rather than trusted
// indefinitely.
const defaultTokenTTL = 10 * time.Minute

// expirySkew is subtracted from the decoded expiry so a token is refreshed
// slightly before the backend would reject it.
const expirySkew = 30 * time.Second

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// Token returns a valid bearer token, acquiring a new one when the cache is
// empty or expired. Callers hold no token themselves; the client owns the
// lifecycle.
func (c *Client) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Valid(time.Now()) {
		return c.token.Value, nil
	}
	if err := c.acquireTokenLocked(ctx); err != nil {
		return "", err
	}
	return c.token.Value, nil
}

// InvalidateToken discards the cached token so the next request acquires a
// fresh one.
func (c *Client) InvalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = Token{}
}

// refreshToken unconditionally acquires a new token, replacing whatever is
// cached.
func (c *Client) refreshToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.acquireTokenLocked(ctx); err != nil {
		return "", err
	}
	return c.token.Value, nil
}

// acquireTokenLocked posts credentials to the auth endpoint and caches the
// result. Caller must hold c.mu.
func (c *Client) acquireTokenLocked(ctx context.Context) error {
	if c.cfg.Username == "" || c.cfg.Password == "" {
		return errors.ErrCredentialsRequired
	}

	endpoint := c.url(tokenPath)
	body, err := json.Marshal(tokenRequest{
		Username: c.cfg.Username,
		Password: c.cfg.Password,
	})
	if err != nil {
		return fmt.Errorf("encoding token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewAuthenticationError(endpoint, "token request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewAuthenticationError(endpoint, "reading token response", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return errors.NewAuthenticationError(endpoint,
			fmt.Sprintf("token endpoint returned status %d", resp.StatusCode), nil)
	}

	var tr tokenResponse
	if err := json.Unmarshal(payload, &tr); err != nil {
		return errors.NewAuthenticationError(endpoint, "decoding token response", err)
	}
	if tr.Data.Token == "" {
		return errors.NewAuthenticationError(endpoint, "token response carried no token", nil)
	}

	token := Token{
		Value:     tr.Data.Token,
		ExpiresAt: tokenExpiry(tr.Data.Token),
	}
	c.token = token

	if c.store != nil {
		if err := c.store.SaveToken(token); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("failed to persist token cache")
		}
	}
	logging.Ctx(ctx).Debug().Time("expires_at", token.ExpiresAt).Msg("acquired auth token")
	return nil
}

// tokenExpiry decodes the exp claim without verifying the signature. The
// signature is the backend's concern; the client only needs the expiry to
// know when to refresh proactively.
func tokenExpiry(raw string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Now().Add(defaultTokenTTL)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Now().Add(defaultTokenTTL)
	}
	return exp.Time.Add(-expirySkew)
}

// loadCachedToken primes the in-memory token from the store, if any.
func (c *Client) loadCachedToken() {
	if c.store == nil {
		return
	}
	token, err := c.store.LoadToken()
	if err != nil {
		logging.Warn().Err(err).Msg("failed to load token cache")
		return
	}
	if token.Valid(time.Now()) {
		c.token = token
	}
}
