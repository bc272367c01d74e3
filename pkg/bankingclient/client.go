/**
 * @description
 * This package provides the client the mobile app uses to talk to the banking backend.
 * It attaches the bearer token to every request, sends one HTTP call per operation and
 * runs every response through the envelope extractors in envelope.go.
 *
 * @notes
 * - Read operations absorb shape and transport failures and return empty lists so list
 *   screens stay usable. Write operations (create transfer, OTP verification) always
 *   return their failure.
 * - The client holds no per-call state and is safe for concurrent use.
 */
package bankingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds every request made by the client.
const DefaultTimeout = 20 * time.Second

// MaxResponseBytes caps how much of a response body the client reads.
const MaxResponseBytes = 8 << 20

// TokenProvider returns the bearer token for the next request. An empty token with a
// nil error means no token is stored; the request is then sent without Authorization.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenProvider.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Client is a client for the banking backend.
type Client struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client
	timeout    time.Duration
	maxBody    int64
	logger     *log.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sends requests through a copy of hc, so the caller's client is never
// modified. Its Timeout is kept unless WithTimeout is also given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.httpClient = &cp
		}
	}
}

// WithTimeout sets the per-request timeout, whatever its position among the options.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger diagnostics are written to.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new banking backend client.
func NewClient(baseURL string, tokens TokenProvider, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		maxBody: MaxResponseBytes,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		c.httpClient.Timeout = c.timeout
	}
	return c
}

type response struct {
	status int
	body   []byte
}

// do executes one request. Non-2xx answers come back as *APIError; nothing is logged
// here so callers decide which failures deserve a diagnostic.
func (c *Client) do(ctx context.Context, op, method, path string, payload any) (*response, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: op=%s: banking api base url is empty", ErrTransport, op)
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: op=%s: failed to read auth token: %v", ErrUnauthorized, op, err)
		}
		if token = strings.TrimSpace(token); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: op=%s: %w", ErrTransport, op, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: op=%s: failed to read response: %w", ErrTransport, op, err)
	}
	if int64(len(bodyBytes)) > c.maxBody {
		return nil, malformed(op, fmt.Sprintf("response body exceeds %d bytes", c.maxBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(bodyBytes)}
	}
	return &response{status: resp.StatusCode, body: bodyBytes}, nil
}

// errorMessage pulls the backend's explanation out of an error body.
func errorMessage(body []byte) string {
	if env, err := DecodeEnvelope(body); err == nil {
		return env.Text()
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
