package ringcentralclient

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

	"log/slog"
)

const (
	defaultBaseURL   = "https://platform.ringcentral.com"
	defaultUserAgent = "blueprint-outreach/0.1"
	tokenPath        = "/restapi/oauth/token"
	smsPath          = "/restapi/v1.0/account/~/extension/~/sms"
	messageStorePath = "/restapi/v1.0/account/~/extension/~/message-store/"

	// Tokens are refreshed this long before their reported expiry so an
	// in-flight request never rides an expiring token.
	refreshSkew = 60 * time.Second
)

// Config controls how the RingCentral client behaves.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	// AssertionKey, when set, switches the token grant from client
	// credentials to JWT bearer with a locally signed assertion.
	AssertionKey string
	FromNumber   string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Logger       *slog.Logger
	UserAgent    string
}

// Client wraps the RingCentral REST endpoints used for patient SMS. The
// access token cache lives on the client instance and nowhere else.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	assertionKey string
	fromNumber   string
	httpClient   *http.Client
	logger       *slog.Logger
	userAgent    string

	tokens *tokenCache
	now    func() time.Time
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, errors.New("ringcentralclient: client id and secret are required")
	}
	if strings.TrimSpace(cfg.FromNumber) == "" {
		return nil, errors.New("ringcentralclient: from number is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		baseURL:      baseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		assertionKey: cfg.AssertionKey,
		fromNumber:   cfg.FromNumber,
		httpClient:   httpClient,
		logger:       logger,
		userAgent:    userAgent,
		tokens:       &tokenCache{},
		now:          time.Now,
	}, nil
}

type sendSMSRequest struct {
	From phoneNumber   `json:"from"`
	To   []phoneNumber `json:"to"`
	Text string        `json:"text"`
}

type phoneNumber struct {
	PhoneNumber string `json:"phoneNumber"`
}

type messageResponse struct {
	ID            json.Number `json:"id"`
	Direction     string      `json:"direction"`
	MessageStatus string      `json:"messageStatus"`
	Subject       string      `json:"subject"`
	From          phoneNumber `json:"from"`
	To            []phoneNumber `json:"to"`
}

// SendText sends one SMS and returns the provider message id.
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	payload := sendSMSRequest{
		From: phoneNumber{PhoneNumber: c.fromNumber},
		To:   []phoneNumber{{PhoneNumber: to}},
		Text: body,
	}
	var resp messageResponse
	if err := c.doJSON(ctx, http.MethodPost, smsPath, payload, &resp); err != nil {
		return "", err
	}
	if resp.ID.String() == "" {
		return "", errors.New("ringcentralclient: send response missing message id")
	}
	return resp.ID.String(), nil
}

// FetchMessage fetches a sent message by provider id.
func (c *Client) FetchMessage(ctx context.Context, id string) (*Message, error) {
	var resp messageResponse
	if err := c.doJSON(ctx, http.MethodGet, messageStorePath+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	msg := &Message{
		ID:     resp.ID.String(),
		Status: resp.MessageStatus,
		From:   resp.From.PhoneNumber,
		Body:   resp.Subject,
	}
	if len(resp.To) > 0 {
		msg.To = resp.To[0].PhoneNumber
	}
	return msg, nil
}

// Message mirrors the provider view of one SMS.
type Message struct {
	ID     string
	Status string
	To     string
	From   string
	Body   string
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("ringcentralclient: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("ringcentralclient: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ringcentralclient: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		// Token revoked server-side; drop the cache so the next call
		// re-authenticates.
		c.tokens.invalidate()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ringcentralclient: %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ringcentralclient: decode response: %w", err)
	}
	return nil
}
