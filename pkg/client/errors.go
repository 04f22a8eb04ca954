package client

import (
	"errors"
	"fmt"
)

// AuthError is returned when login fails or the token response is unusable.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NetworkError is returned once every download attempt has failed.
// It describes the last attempt: a transport failure (StatusCode 0) or
// a non-2xx response.
type NetworkError struct {
	URL        string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network: %s: status %d after %d attempts", e.URL, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("network: %s: %v after %d attempts", e.URL, e.Err, e.Attempts)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IOError is returned when a source cannot be read or a destination cannot be written.
type IOError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// AsAuth checks if an error is an AuthError and returns it.
func AsAuth(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// AsNetwork checks if an error is a NetworkError and returns it.
func AsNetwork(err error) (*NetworkError, bool) {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// AsIO checks if an error is an IOError and returns it.
func AsIO(err error) (*IOError, bool) {
	var ie *IOError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
