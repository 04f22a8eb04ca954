package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoBackend is returned when a location names a scheme with no configured backend.
var ErrNoBackend = errors.New("no storage backend for scheme")

// Router resolves locations to backends by URI scheme. A location
// without a scheme, or with "file://", is a local path; "s3://bucket/key"
// goes to the S3 backend.
type Router struct {
	local Backend
	s3    Backend
}

// NewRouter creates a Router. s3 may be nil when object storage is not configured.
func NewRouter(local, s3 Backend) *Router {
	return &Router{local: local, s3: s3}
}

// Resolve returns the backend and backend-relative key for a location.
func (r *Router) Resolve(location string) (Backend, string, error) {
	scheme, rest, ok := strings.Cut(location, "://")
	if !ok {
		return r.local, location, nil
	}

	switch strings.ToLower(scheme) {
	case "file":
		return r.local, rest, nil
	case "s3":
		if r.s3 == nil {
			return nil, "", fmt.Errorf("%w %q", ErrNoBackend, scheme)
		}
		return r.s3, rest, nil
	default:
		return nil, "", fmt.Errorf("%w %q", ErrNoBackend, scheme)
	}
}

// ReadObject reads the object at location.
func (r *Router) ReadObject(ctx context.Context, location string) ([]byte, error) {
	b, key, err := r.Resolve(location)
	if err != nil {
		return nil, err
	}
	return b.ReadObject(ctx, key)
}

// WriteObject writes data to location.
func (r *Router) WriteObject(ctx context.Context, location string, data []byte) error {
	b, key, err := r.Resolve(location)
	if err != nil {
		return err
	}
	return b.WriteObject(ctx, key, data)
}

// Type returns "router".
func (r *Router) Type() string {
	return "router"
}

// Close closes every configured backend.
func (r *Router) Close() error {
	var errs []error
	if r.local != nil {
		errs = append(errs, r.local.Close())
	}
	if r.s3 != nil {
		errs = append(errs, r.s3.Close())
	}
	return errors.Join(errs...)
}
