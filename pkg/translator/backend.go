// Package translator runs batches of page translations against a
// translation backend, fanning each batch out over a fixed number of
// sequential streams.
package translator

import (
	"context"
	"errors"
	"fmt"

	"github.com/pagetranslate/pagetranslate/internal/storage"
	"github.com/pagetranslate/pagetranslate/pkg/client"
)

// Credentials identify the caller to a backend.
type Credentials struct {
	Email       string
	Password    string
	Fingerprint string // device identifier sent with every translate call
	ClientUUID  string // client instance identifier
}

// Job translates the image at Source and stores the result at Destination.
// Both are storage locations: local paths or URIs understood by storage.Router.
type Job struct {
	Source      string
	Destination string
}

// Backend is a remote translation service.
type Backend interface {
	// Name returns the backend identifier.
	Name() string

	// Authenticate establishes the session used by TranslatePage.
	Authenticate(ctx context.Context, creds Credentials) error

	// TranslatePage translates the image at source and returns the
	// translated artifact. It must be safe for concurrent use.
	TranslatePage(ctx context.Context, source string) ([]byte, error)
}

// Kind selects a backend implementation.
type Kind string

const (
	KindIchigo               Kind = "ichigo"
	KindMangaImageTranslator Kind = "manga-image-translator"
)

// ErrUnsupportedBackend is returned for backends that are known but not implemented.
var ErrUnsupportedBackend = errors.New("unsupported translation backend")

// NewBackend creates a backend by kind. An empty kind selects Ichigo.
func NewBackend(kind Kind, c *client.Client, store storage.Backend) (Backend, error) {
	switch kind {
	case KindIchigo, "":
		return NewIchigo(c, store), nil
	case KindMangaImageTranslator:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, kind)
	default:
		return nil, fmt.Errorf("unknown translation backend: %s", kind)
	}
}
