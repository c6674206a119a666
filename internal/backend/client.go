package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/PropDesk/PropDesk-Console/internal/config"
)

// maxBodySize limits how much of a response body is read.
const maxBodySize = 4 << 20

// Client talks to the property-management backend. The zero value is not
// usable, create one with New.
type Client struct {
	baseURL        *url.URL
	endpoints      config.Endpoints
	httpClient     *http.Client
	emailHeuristic bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the http client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithEmailHeuristic promotes users whose email contains "admin" to admins
// when their payload is decoded.
func WithEmailHeuristic(enabled bool) Option {
	return func(c *Client) {
		c.emailHeuristic = enabled
	}
}

// New creates a client for the backend described by cfg.
func New(cfg config.Backend, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyBaseURL
	}

	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", cfg.URL, err)
	}

	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{
		baseURL:    base,
		endpoints:  withDefaultEndpoints(cfg.Endpoints),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Authorized returns a copy of the client whose requests carry the bearer
// token of ts. Token source failures are returned unchanged by every call.
func (c *Client) Authorized(ts oauth2.TokenSource) *Client {
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	out := *c
	out.httpClient = &http.Client{
		Timeout: c.httpClient.Timeout,
		Transport: &oauth2.Transport{
			Source: sourceErrorMarker{ts},
			Base:   base,
		},
	}

	return &out
}

func withDefaultEndpoints(e config.Endpoints) config.Endpoints {
	defaults := map[*string]string{
		&e.Login:       "auth/login",
		&e.Refresh:     "auth/refresh",
		&e.TokenInfo:   "auth/test-token",
		&e.CurrentUser: "user/me",
		&e.Users:       "user",
		&e.Screens:     "screen",
		&e.Permissions: "permission",
	}

	for field, value := range defaults {
		if *field == "" {
			*field = value
		}
	}

	return e
}

// tokenSourceError marks failures of the token source, so they are not
// mistaken for network errors.
type tokenSourceError struct {
	err error
}

func (e *tokenSourceError) Error() string { return e.err.Error() }

func (e *tokenSourceError) Unwrap() error { return e.err }

type sourceErrorMarker struct {
	oauth2.TokenSource
}

func (s sourceErrorMarker) Token() (*oauth2.Token, error) {
	t, err := s.TokenSource.Token()
	if err != nil {
		return nil, &tokenSourceError{err: err}
	}

	return t, nil
}

// request describes one backend call.
type request struct {
	method string
	path   string
	body   any
	bearer string // explicit bearer, used for the refresh and token info calls
	result any
}

// do executes r and decodes the (optionally enveloped) response into r.result.
func (c *Client) do(ctx context.Context, r request) error {
	target := c.baseURL.ResolveReference(&url.URL{Path: r.path})

	var bodyReader io.Reader

	if r.body != nil {
		encoded, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}

		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target.String(), bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if r.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(ctx, r, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetworkUnavailable, r.method, r.path, err)
	}

	log.Debug().
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(r.method, r.path, resp.StatusCode, errorMessage(body))
	}

	if r.result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(unwrapEnvelope(body), r.result); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrInvalidResponse, r.method, r.path, err)
	}

	return nil
}

func (c *Client) transportError(ctx context.Context, r request, err error) error {
	var tse *tokenSourceError
	if errors.As(err, &tse) {
		return fmt.Errorf("%s %s: %w", r.method, r.path, tse.err)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s %s: %w", r.method, r.path, ctxErr)
	}

	return fmt.Errorf("%w: %s %s: %w", ErrNetworkUnavailable, r.method, r.path, err)
}

// unwrapEnvelope returns the data member of {"data": ...} envelopes and the
// body itself otherwise.
func unwrapEnvelope(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return body
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return body
	}

	data, ok := envelope["data"]
	if !ok || string(data) == "null" {
		return body
	}

	return data
}

func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}

	var msg string
	if err := json.Unmarshal(eb.Message, &msg); err == nil && msg != "" {
		return msg
	}

	var msgs []string
	if err := json.Unmarshal(eb.Message, &msgs); err == nil && len(msgs) > 0 {
		return strings.Join(msgs, "; ")
	}

	return eb.Error
}

func resourcePath(endpoint string, elems ...string) string {
	return path.Join(append([]string{endpoint}, elems...)...)
}
