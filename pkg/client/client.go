// Package client provides the HTTP client for the translation service:
// a retrying downloader, login and the typed errors shared by callers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pagetranslate/pagetranslate/internal/logging"
	"github.com/pagetranslate/pagetranslate/internal/metrics"
	"github.com/pagetranslate/pagetranslate/pkg/retry"
)

// DefaultBaseURL is the public Ichigo endpoint.
const DefaultBaseURL = "https://ichigoreader.com"

// Client issues requests against the translation service.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	retryConfig retry.Config
}

// Config holds client configuration.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	RetryConfig retry.Config
	Transport   http.RoundTripper // optional, wrapped with request logging
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.RetryConfig.MaxAttempts == 0 {
		cfg.RetryConfig = retry.DefaultConfig()
	}

	base := cfg.Transport
	if base == nil {
		base = &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: logging.NewTransport(base),
		},
		retryConfig: cfg.RetryConfig,
	}
}

// BaseURL returns the service base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NewJSONRequest prepares a POST of body to path. The request can be
// replayed: its body is recreated through GetBody on every attempt.
func (c *Client) NewJSONRequest(ctx context.Context, path string, body any) (*http.Request, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Download sends req and returns the fully buffered response body.
// req is used as a template: each attempt sends a fresh clone. Transport
// errors, non-2xx statuses and body read failures are retried
// immediately until the attempt budget is spent; the last attempt's
// failure is then returned as a *NetworkError.
func (c *Client) Download(ctx context.Context, req *http.Request) ([]byte, error) {
	endpoint := req.URL.Path
	logger := logging.WithContext(ctx)

	cfg := c.retryConfig
	onRetry := cfg.OnRetry
	cfg.OnRetry = func(attempt int, err error) {
		metrics.RecordHTTPRetry(endpoint)
		logger.Debug("retrying request",
			zap.String("path", endpoint),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if onRetry != nil {
			onRetry(attempt, err)
		}
	}

	attempts := 0
	data, err := retry.DoWithResult(ctx, cfg, func() ([]byte, error) {
		attempts++
		return c.attempt(ctx, req)
	})
	if err != nil {
		err = retry.Unwrap(err)
		if ne, ok := AsNetwork(err); ok {
			ne.Attempts = attempts
		}
		return nil, err
	}
	return data, nil
}

func (c *Client) attempt(ctx context.Context, tmpl *http.Request) ([]byte, error) {
	req := tmpl.Clone(ctx)
	if tmpl.GetBody != nil {
		body, err := tmpl.GetBody()
		if err != nil {
			return nil, fmt.Errorf("replay request body: %w", err)
		}
		req.Body = body
	}

	url := tmpl.URL.String()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, retry.Retryable(&NetworkError{URL: url, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, retry.Retryable(&NetworkError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("server returned %d", resp.StatusCode),
		})
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Retryable(&NetworkError{URL: url, Err: fmt.Errorf("read body: %w", err)})
	}
	return data, nil
}
