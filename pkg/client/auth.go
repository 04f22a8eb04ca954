package client

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/pagetranslate/pagetranslate/internal/logging"
	"github.com/pagetranslate/pagetranslate/internal/metrics"
	"github.com/pagetranslate/pagetranslate/pkg/protocol"
)

// LoginResult holds the session cookie obtained at login.
type LoginResult struct {
	Cookie string
	// ExpiresAt is the access token's exp claim, zero when the token is
	// opaque or carries no expiry.
	ExpiresAt time.Time
}

// Expired reports whether the access token is known to have expired.
func (r *LoginResult) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// Login exchanges an email/password pair for a session cookie.
// The call goes through Download, so it is retried like any other
// request; every failure is returned as an *AuthError.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	req, err := c.NewJSONRequest(ctx, protocol.LoginPath, protocol.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, &AuthError{Op: "build login request", Err: err}
	}

	data, err := c.Download(ctx, req)
	if err != nil {
		metrics.RecordAuthAttempt(false)
		return nil, &AuthError{Op: "login", Err: err}
	}

	var resp protocol.LoginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		metrics.RecordAuthAttempt(false)
		return nil, &AuthError{Op: "parse login response", Err: err}
	}
	if resp.Tokens == nil {
		metrics.RecordAuthAttempt(false)
		return nil, &AuthError{Op: "parse login response", Err: errors.New("missing tokens")}
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		metrics.RecordAuthAttempt(false)
		return nil, &AuthError{Op: "parse login response", Err: errors.New("missing accessToken or refreshToken")}
	}

	metrics.RecordAuthAttempt(true)

	result := &LoginResult{
		Cookie:    resp.Tokens.Cookie(),
		ExpiresAt: tokenExpiry(resp.Tokens.AccessToken),
	}

	logger := logging.WithContext(ctx)
	if result.Expired(time.Now()) {
		logger.Warn("access token already expired", zap.Time("expires_at", result.ExpiresAt))
	} else if !result.ExpiresAt.IsZero() {
		logger.Debug("logged in", zap.Time("expires_at", result.ExpiresAt))
	}

	return result, nil
}

// tokenExpiry reads the exp claim without verifying the signature.
// The client has no key to verify with; the value is informational only.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
