// Package remote implements the invoice store ports against the accounting
// API over HTTP.
package remote

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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/infrastructure/config"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 64 << 10
	userAgent      = "invoice-engine/1.0"
)

// Client talks to the accounting API. It never retries: a failed call is
// reported to the user, who decides whether to resubmit.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	apiVersion string
	token      string
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the store configuration
func NewClient(cfg config.StoreConfig, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(&http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			}),
			Timeout: timeout,
		},
		baseURL:    base,
		apiVersion: strings.Trim(cfg.APIVersion, "/"),
		token:      cfg.APIToken,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// envelope is the response body shape of the accounting API
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *errorBody      `json:"error"`
}

type errorBody struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	segments := []string{u.Path, "api"}
	if c.apiVersion != "" {
		segments = append(segments, c.apiVersion)
	}
	segments = append(segments, strings.TrimLeft(path, "/"))
	u.Path = strings.Join(segments, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and decodes the envelope data into out. Every
// failure, transport ones included, is returned as *invoice.RemoteError
// except context cancellation and deadline, which pass through wrapped.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		c.logger.Warn("accounting API unreachable",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &invoice.RemoteError{Kind: invoice.RemoteTransient, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("accounting API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &invoice.RemoteError{
			Kind:       invoice.RemoteUnknown,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	if env.Error != nil && !env.Success {
		return remoteErrorFrom(resp.StatusCode, env.Error)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &invoice.RemoteError{
			Kind:       invoice.RemoteUnknown,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode response data: %w", err),
		}
	}
	return nil
}

// decodeError reads the store's error body. Bodies that are not JSON still
// produce a classified error, without a description.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		return remoteErrorFrom(resp.StatusCode, env.Error)
	}
	var flat errorBody
	if err := json.Unmarshal(raw, &flat); err == nil && (flat.Code != "" || flat.Message != "" || flat.Description != "") {
		return remoteErrorFrom(resp.StatusCode, &flat)
	}

	remoteErr := invoice.NewRemoteError(resp.StatusCode, "", "")
	remoteErr.Err = errors.New(http.StatusText(resp.StatusCode))
	return remoteErr
}

func remoteErrorFrom(status int, body *errorBody) *invoice.RemoteError {
	description := body.Description
	if description == "" {
		description = body.Message
	}
	return invoice.NewRemoteError(status, body.Code, strings.TrimSpace(description))
}
