package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"

	"github.com/pixelshop-dev/pixelshop/internal/cli/auth"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 10 << 20
)

// authEndpoints never trigger a session refresh on 401; a rejected
// login or refresh must surface to the caller instead of looping.
var authEndpoints = []string{
	"/auth/login",
	"/auth/register",
	"/auth/refresh",
	"/auth/reset-password",
}

// SessionCache is the client-side cache of the signed-in user
type SessionCache interface {
	Current() (*User, error)
	Save(user User) error
	Clear() error
	// Invalidate clears the cache and notifies logout listeners
	Invalidate(reason error)
}

// Client represents an HTTP client for the marketplace API
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        http.CookieJar
	tokens     auth.TokenStore
	session    SessionCache
	refresher  *Refresher
	logger     zerolog.Logger
	timeout    time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. The client's cookie jar is
// replaced with one the Client manages.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		copied := *httpClient
		c.httpClient = &copied
	}
}

// WithTokenStore sets where the access/refresh cookies are persisted
func WithTokenStore(store auth.TokenStore) Option {
	return func(c *Client) {
		c.tokens = store
	}
}

// WithSession sets the cached-user store
func WithSession(session SessionCache) Option {
	return func(c *Client) {
		c.session = session
	}
}

// WithLogger sets the request logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// New creates a new API client for the API rooted at baseURL
// (for example https://api.pixelshop.dev/api/v1).
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: parsed,
		tokens:  auth.NewMemoryStore(),
		session: noopSession{},
		logger:  zerolog.Nop(),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	c.httpClient.Timeout = c.timeout

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	c.jar = jar
	c.httpClient.Jar = jar

	c.refresher = NewRefresher(c.refreshSession, c.expireSession, c.timeout)
	c.restoreCookies()

	return c, nil
}

// BaseURL returns the API root this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Refresher exposes the session refresh coordinator
func (c *Client) Refresher() *Refresher {
	return c.refresher
}

// request is a fully buffered API request, replayable after a refresh
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path}
	if payload == nil {
		return req, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return req, fmt.Errorf("failed to marshal request: %w", err)
	}
	req.body = data
	req.contentType = "application/json"
	return req, nil
}

func isAuthEndpoint(path string) bool {
	for _, prefix := range authEndpoints {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// send performs req, transparently recovering once from an expired access
// token, and decodes the envelope's data into out.
func (c *Client) send(ctx context.Context, req request, out any) error {
	epoch := c.refresher.Epoch()

	resp, err := c.roundTrip(ctx, req)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !isAuthEndpoint(req.path) {
		drain(resp)

		if err := c.refresher.Refresh(ctx, epoch); err != nil {
			return err
		}

		resp, err = c.roundTrip(ctx, req)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, req.path, out)
}

// roundTrip sends a single request without any 401 handling
func (c *Client) roundTrip(ctx context.Context, req request) (*http.Response, error) {
	target := c.baseURL.JoinPath(req.path)
	if len(req.query) > 0 {
		target.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	requestID := ulid.Make().String()
	httpReq.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().
			Str("request_id", requestID).
			Str("method", req.method).
			Str("path", req.path).
			Err(err).
			Msg("request failed")
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()
}

// decodeEnvelope turns a response into either out or an *APIError
func decodeEnvelope(resp *http.Response, path string, out any) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env Envelope[json.RawMessage]
	envErr := json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Path: path}
		if envErr == nil && env.Message != "" {
			apiErr.Message = env.Message
		} else if text := strings.TrimSpace(string(body)); text != "" && envErr != nil {
			apiErr.Message = text
		}
		return apiErr
	}

	if envErr != nil {
		return fmt.Errorf("failed to decode response: %w", envErr)
	}
	if !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message, Path: path}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// refreshSession exchanges the refresh cookie for a new token pair
func (c *Client) refreshSession(ctx context.Context) error {
	c.logger.Info().Msg("access token expired, refreshing session")

	resp, err := c.roundTrip(ctx, request{method: http.MethodPost, path: "/auth/refresh"})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := decodeEnvelope(resp, "/auth/refresh", nil); err != nil {
		return err
	}

	c.persistCookies()
	c.logger.Info().Msg("session refreshed")
	return nil
}

// expireSession tears down every piece of local session state after the
// refresh token was rejected.
func (c *Client) expireSession(reason error) {
	c.logger.Warn().Err(reason).Msg("session refresh failed, signing out")
	c.clearCookies()
	c.session.Invalidate(reason)
}

// signedIn records a fresh session established by login/register/reset
func (c *Client) signedIn(user *User) error {
	c.persistCookies()
	c.refresher.Reset()
	if user == nil {
		return nil
	}
	if err := c.session.Save(*user); err != nil {
		return fmt.Errorf("failed to cache session: %w", err)
	}
	return nil
}

// noopSession is used when no session cache is configured
type noopSession struct{}

func (noopSession) Current() (*User, error) { return nil, nil }
func (noopSession) Save(User) error         { return nil }
func (noopSession) Clear() error            { return nil }
func (noopSession) Invalidate(error)        {}

var _ SessionCache = noopSession{}

// IsSessionExpired reports whether err means the user must sign in again
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}
