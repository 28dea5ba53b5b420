package ringcentralclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenCache holds the current access token. Access goes through the
// client's token method, which refreshes under the cache lock so only one
// goroutine hits the token endpoint at a time.
type tokenCache struct {
	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func (tc *tokenCache) invalidate() {
	tc.mu.Lock()
	tc.accessToken = ""
	tc.expiresAt = time.Time{}
	tc.mu.Unlock()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a valid access token, refreshing it when the cached one is
// missing or within refreshSkew of expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.tokens.mu.Lock()
	defer c.tokens.mu.Unlock()

	now := c.now()
	if c.tokens.accessToken != "" && now.Add(refreshSkew).Before(c.tokens.expiresAt) {
		return c.tokens.accessToken, nil
	}

	resp, err := c.requestToken(ctx)
	if err != nil {
		return "", err
	}
	c.tokens.accessToken = resp.AccessToken
	c.tokens.expiresAt = now.Add(time.Duration(resp.ExpiresIn) * time.Second)
	c.logger.Debug("refreshed provider access token", "expires_in_seconds", resp.ExpiresIn)
	return c.tokens.accessToken, nil
}

func (c *Client) requestToken(ctx context.Context) (*tokenResponse, error) {
	form := url.Values{}
	if c.assertionKey != "" {
		assertion, err := c.signAssertion()
		if err != nil {
			return nil, err
		}
		form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
		form.Set("assertion", assertion)
	} else {
		form.Set("grant_type", "client_credentials")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("ringcentralclient: build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ringcentralclient: request token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ringcentralclient: token endpoint status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("ringcentralclient: decode token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return nil, fmt.Errorf("ringcentralclient: token response missing access_token")
	}
	if parsed.ExpiresIn <= 0 {
		parsed.ExpiresIn = 3600
	}
	return &parsed, nil
}

// signAssertion builds the JWT bearer assertion for the token grant.
func (c *Client) signAssertion() (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"iss": c.clientID,
		"sub": c.clientID,
		"aud": c.baseURL + tokenPath,
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.assertionKey))
	if err != nil {
		return "", fmt.Errorf("ringcentralclient: sign assertion: %w", err)
	}
	return signed, nil
}
