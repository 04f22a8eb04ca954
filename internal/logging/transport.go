package logging

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pagetranslate/pagetranslate/internal/metrics"
)

// Transport wraps an http.RoundTripper and logs every outgoing attempt.
// Headers and bodies are never logged since they carry credentials.
type Transport struct {
	Base http.RoundTripper
}

// NewTransport returns a logging transport around base (http.DefaultTransport if nil).
func NewTransport(base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := WithContext(req.Context())

	resp, err := t.Base.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		metrics.RecordHTTPAttempt(req.URL.Path, 0, duration)
		logger.Debug("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.RecordHTTPAttempt(req.URL.Path, resp.StatusCode, duration)
	logger.Debug("request completed",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Int64("size", resp.ContentLength),
		zap.Duration("duration", duration),
	)
	return resp, nil
}
