// Package api is the console's HTTP client for the admin REST API.
//
// Every request carries the stored bearer token. A 401 triggers a single
// refresh through POST /v1/auth/refresh-token followed by one retry of the
// original request; when the server refuses the refresh, or there is no
// refresh token, the stored credentials are cleared and ErrSessionExpired is
// returned. Concurrent 401s share one refresh call, which outlives any single
// caller's context.
//
//	client := api.NewClient(cfg.APIURL, creds,
//	    api.WithLogger(logger),
//	    api.WithSessionExpired(func() { fmt.Println("login required") }),
//	)
//	var raw json.RawMessage
//	err := client.Do(ctx, http.MethodGet, "/v1/admin/tickets", url.Values{"page": {"1"}}, nil, &raw)
package api

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

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"tableflip.dev/backstage/pkg/store"
)

// Auth endpoints.
const (
	LoginPath   = "/v1/auth/login"
	LogoutPath  = "/v1/auth/logout"
	MePath      = "/v1/auth/me"
	RefreshPath = "/v1/auth/refresh-token"
)

// Client talks to the admin API on behalf of the stored session.
type Client struct {
	baseURL    string
	creds      store.Credentials
	httpClient *http.Client
	logger     *zap.Logger
	limiter    *rate.Limiter
	onExpired  func()
	refreshes  singleflight.Group
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRateLimit caps the request rate, e.g. for bulk deletes.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(r, burst)
	}
}

// WithSessionExpired registers a hook run after the credentials were cleared
// because the session could not be refreshed.
func WithSessionExpired(fn func()) Option {
	return func(c *Client) {
		c.onExpired = fn
	}
}

// NewClient creates a Client for baseURL using creds for the session.
func NewClient(baseURL string, creds store.Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Credentials returns the session store backing the client.
func (c *Client) Credentials() store.Credentials {
	return c.creds
}

// Do sends a JSON request and decodes the JSON response into out (which may
// be nil, or a *json.RawMessage to keep the raw body).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		payload = b
	}

	session, err := c.creds.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	status, data, err := c.send(ctx, method, path, query, payload, session.Token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && refreshable(path) {
		token, rerr := c.refresh(ctx, session.Token)
		if rerr != nil {
			return rerr
		}
		// One retry only; a second 401 is returned to the caller as is.
		status, data, err = c.send(ctx, method, path, query, payload, token)
		if err != nil {
			return err
		}
	}

	if status >= 400 {
		return newError(status, data)
	}
	if out == nil || status == http.StatusNoContent || len(data) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// refreshable reports whether a 401 on path should trigger a token refresh.
// A failed login or refresh is final.
func refreshable(path string) bool {
	return path != LoginPath && path != RefreshPath
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, token string) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, err
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return 0, nil, fmt.Errorf("performing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)))
	return resp.StatusCode, data, nil
}

type refreshResponse struct {
	Data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"data"`
}

// refresh exchanges the stored refresh token for a new access token. Callers
// that raced on the same stale token share a single refresh call; a caller
// arriving after the token already rotated reuses the new one.
//
// The shared call is detached from the caller's context and bounded by the
// client timeout, so one caller giving up neither aborts it for the others
// nor counts as a rejected refresh token. Only a refusal from the server, a
// missing refresh token, or an unusable answer expires the session, once per
// shared call.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	ch := c.refreshes.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout())
		defer cancel()
		token, err := c.exchange(rctx, stale)
		if errors.Is(err, errRefreshRejected) {
			return "", c.expire(rctx, err)
		}
		return token, err
	})
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for token refresh: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// errRefreshRejected marks refresh failures that mean the session is over.
var errRefreshRejected = errors.New("api: refresh rejected")

func (c *Client) exchange(ctx context.Context, stale string) (string, error) {
	session, err := c.creds.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("loading session: %w", err)
	}
	if session.Token != "" && session.Token != stale {
		return session.Token, nil
	}
	if session.RefreshToken == "" && session.Token == "" {
		// Nothing left to clear, an earlier refresh already ended the session.
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, ErrNoRefreshToken)
	}
	if session.RefreshToken == "" {
		return "", fmt.Errorf("%w: %w", errRefreshRejected, ErrNoRefreshToken)
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": session.RefreshToken})
	if err != nil {
		return "", err
	}
	c.logger.Debug("refreshing access token")
	status, data, err := c.send(ctx, http.MethodPost, RefreshPath, nil, payload, "")
	if err != nil {
		// Transport failures and timeouts leave the session alone.
		return "", fmt.Errorf("refreshing access token: %w", err)
	}
	if status >= 400 {
		return "", fmt.Errorf("%w: %w", errRefreshRejected, newError(status, data))
	}
	var rr refreshResponse
	if err := json.Unmarshal(data, &rr); err != nil {
		return "", fmt.Errorf("%w: decoding refresh response: %w", errRefreshRejected, err)
	}
	if rr.Data.AccessToken == "" {
		return "", fmt.Errorf("%w: response carried no access token", errRefreshRejected)
	}
	if err := c.creds.SetTokens(ctx, rr.Data.AccessToken, rr.Data.RefreshToken); err != nil {
		return "", err
	}
	return rr.Data.AccessToken, nil
}

func (c *Client) refreshTimeout() time.Duration {
	if c.httpClient.Timeout > 0 {
		return c.httpClient.Timeout
	}
	return 30 * time.Second
}

func (c *Client) expire(ctx context.Context, cause error) error {
	c.logger.Info("session expired, clearing credentials", zap.Error(cause))
	if err := c.creds.Clear(ctx); err != nil {
		c.logger.Warn("clearing credentials failed", zap.Error(err))
	}
	if c.onExpired != nil {
		c.onExpired()
	}
	return fmt.Errorf("%w: %w", ErrSessionExpired, cause)
}
