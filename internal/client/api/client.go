package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
	"github.com/dmitrijs2005/familyorganizer/internal/logging"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"

	maxResponseBytes = 4 << 20
	defaultTimeout   = 15 * time.Second
)

// TokenSource supplies the current bearer token; "" means anonymous.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

type tokenCtxKey struct{}

// WithToken pins the bearer token used for requests made with ctx,
// overriding the client's TokenSource. An empty token pins "anonymous".
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

// Client is the REST transport shared by the whole application.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  logging.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a Client for baseURL, e.g. "http://localhost:8080/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetTokenSource replaces the token source. The application root calls it
// once the session container exists.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

func (c *Client) token(ctx context.Context) string {
	if tok, ok := ctx.Value(tokenCtxKey{}).(string); ok {
		return tok
	}
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// do performs one request. in is JSON-encoded when non-nil; out is decoded
// from a non-empty 2xx body when non-nil.
func (c *Client) do(ctx context.Context, method, path string, authenticated bool, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)
	if authenticated {
		if tok := c.token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	log := c.logger.With("method", method, "path", path, "request_id", requestID)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Debug(ctx, "request failed", "error", err)
		return &Error{Kind: KindNetwork, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Kind: KindNetwork, Method: method, Path: path, Err: err}
	}

	log.Debug(ctx, "request done", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		return newHTTPError(method, path, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func newHTTPError(method, path string, status int, data []byte) *Error {
	e := &Error{Kind: KindHTTP, Status: status, Method: method, Path: path}

	var body models.ErrorBody
	if err := json.Unmarshal(data, &body); err == nil && (body.Status != 0 || body.Error != "" || body.Message != "") {
		e.Body = &body
	}
	return e
}
