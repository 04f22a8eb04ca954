// Package protocol defines the translation service request/response types.
package protocol

// Endpoint paths relative to the service base URL.
const (
	LoginPath     = "/auth/login"
	TranslatePath = "/translate"
)

// Cookie names carried on every translate call.
const (
	AccessCookie  = "access_cookie"
	RefreshCookie = "refresh_token_cookie"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /auth/login. Only the token pair is used.
type LoginResponse struct {
	Tokens *Tokens `json:"tokens"`
}

// Tokens is the access/refresh token pair issued at login.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Cookie renders the pair as a Cookie header value.
func (t Tokens) Cookie() string {
	return AccessCookie + "=" + t.AccessToken + "; " + RefreshCookie + "=" + t.RefreshToken
}

// TranslateRequest is the body of POST /translate.
// The response body is the translated artifact, stored verbatim.
type TranslateRequest struct {
	Fingerprint  string   `json:"fingerprint"`
	ClientUUID   string   `json:"clientUuid"`
	Base64Images []string `json:"base64Images"`
}
