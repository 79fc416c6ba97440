// Package cms reads and writes the marketing site's content in Sanity: blog
// posts, their comments and view counters, and newsletter subscribers.
package cms

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

	"go.uber.org/zap"
)

var (
	// ErrReadOnly is returned by writes when no API token is configured.
	ErrReadOnly = errors.New("cms: writes need an API token")

	// ErrNotFound is returned when a query for a single document is empty.
	ErrNotFound = errors.New("cms: document not found")
)

// Config locates a Sanity dataset.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
}

// Error is a non-2xx answer from Sanity.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("cms error (%d): %s", e.Status, e.Message)
}

func (e *Error) ServerMessage() string {
	return e.Message
}

// Client talks to one Sanity dataset.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURL overrides the project host, e.g. for a local mock.
func WithBaseURL(u string) Option {
	return func(cl *Client) {
		cl.baseURL = strings.TrimRight(u, "/")
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// NewClient returns a Client for cfg.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("cms: project id is required")
	}
	if cfg.Dataset == "" {
		cfg.Dataset = "production"
	}
	cfg.APIVersion = strings.TrimPrefix(cfg.APIVersion, "v")
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2023-05-03"
	}
	host := "api.sanity.io"
	// The CDN only serves public reads.
	if cfg.UseCDN && cfg.Token == "" {
		host = "apicdn.sanity.io"
	}
	c := &Client{
		cfg:        cfg,
		baseURL:    fmt.Sprintf("https://%s.%s", cfg.ProjectID, host),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CanWrite reports whether a token is configured.
func (c *Client) CanWrite() bool {
	return c.cfg.Token != ""
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Ms     int             `json:"ms"`
}

// Query runs a GROQ query and decodes its result into out. Params are passed
// as $name query parameters, JSON encoded.
func (c *Client) Query(ctx context.Context, groq string, params map[string]any, out any) error {
	q := url.Values{}
	q.Set("query", groq)
	for k, v := range params {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding param %s: %w", k, err)
		}
		q.Set("$"+k, string(b))
	}
	u := fmt.Sprintf("%s/v%s/data/query/%s?%s", c.baseURL, c.cfg.APIVersion, c.cfg.Dataset, q.Encode())

	var resp queryResponse
	if err := c.do(ctx, http.MethodGet, u, nil, &resp); err != nil {
		return err
	}
	c.logger.Debug("cms query", zap.String("query", groq), zap.Int("ms", resp.Ms))
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return ErrNotFound
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	return nil
}

// MutateResult is the transaction summary Sanity returns.
type MutateResult struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string `json:"id"`
		Operation string `json:"operation"`
	} `json:"results"`
}

// Mutate applies mutations in one transaction.
func (c *Client) Mutate(ctx context.Context, mutations ...Mutation) (MutateResult, error) {
	if !c.CanWrite() {
		return MutateResult{}, ErrReadOnly
	}
	body, err := json.Marshal(map[string]any{"mutations": mutations})
	if err != nil {
		return MutateResult{}, err
	}
	u := fmt.Sprintf("%s/v%s/data/mutate/%s?returnIds=true", c.baseURL, c.cfg.APIVersion, c.cfg.Dataset)
	var res MutateResult
	if err := c.do(ctx, http.MethodPost, u, body, &res); err != nil {
		return MutateResult{}, err
	}
	c.logger.Debug("cms mutate", zap.String("transaction", res.TransactionID), zap.Int("mutations", len(mutations)))
	return res, nil
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, out any) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return &Error{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// errorMessage reads {"error":{"description":...}} as well as flat
// {"message":...} bodies.
func errorMessage(data []byte) string {
	var body struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return strings.TrimSpace(string(data))
	}
	var nested struct {
		Description string `json:"description"`
	}
	if len(body.Error) > 0 && json.Unmarshal(body.Error, &nested) == nil && nested.Description != "" {
		return nested.Description
	}
	if body.Message != "" {
		return body.Message
	}
	var flat string
	if len(body.Error) > 0 && json.Unmarshal(body.Error, &flat) == nil {
		return flat
	}
	return strings.TrimSpace(string(data))
}
