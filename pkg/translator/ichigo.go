package translator

import (
	"context"
	"encoding/base64"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/pagetranslate/pagetranslate/internal/logging"
	"github.com/pagetranslate/pagetranslate/internal/storage"
	"github.com/pagetranslate/pagetranslate/pkg/client"
	"github.com/pagetranslate/pagetranslate/pkg/protocol"
)

var (
	// ErrNotAuthenticated is returned by TranslatePage before Authenticate succeeded.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrAlreadyAuthenticated is returned by a second Authenticate call.
	ErrAlreadyAuthenticated = errors.New("already authenticated")
)

// Ichigo is the Ichigo Reader translation backend.
type Ichigo struct {
	client  *client.Client
	store   storage.Backend
	session atomic.Pointer[Session]
}

// NewIchigo creates an Ichigo backend reading sources through store.
func NewIchigo(c *client.Client, store storage.Backend) *Ichigo {
	return &Ichigo{client: c, store: store}
}

// Name returns "ichigo".
func (b *Ichigo) Name() string {
	return string(KindIchigo)
}

// Authenticate logs in and keeps the session for later translate calls.
// The session is set once; later calls fail with ErrAlreadyAuthenticated
// and leave it unchanged.
func (b *Ichigo) Authenticate(ctx context.Context, creds Credentials) error {
	if b.session.Load() != nil {
		return &client.AuthError{Op: "authenticate", Err: ErrAlreadyAuthenticated}
	}

	s, err := NewSession(ctx, b.client, creds)
	if err != nil {
		return err
	}
	if !b.session.CompareAndSwap(nil, s) {
		return &client.AuthError{Op: "authenticate", Err: ErrAlreadyAuthenticated}
	}

	fields := []zap.Field{zap.String("email", s.Email())}
	if exp := s.ExpiresAt(); !exp.IsZero() {
		fields = append(fields, zap.Time("expires_at", exp))
	}
	logging.WithContext(ctx).Debug("session established", fields...)
	return nil
}

// Session returns the current session, nil before Authenticate.
func (b *Ichigo) Session() *Session {
	return b.session.Load()
}

// TranslatePage uploads the source image and returns the translated bytes.
func (b *Ichigo) TranslatePage(ctx context.Context, source string) ([]byte, error) {
	s := b.session.Load()
	if s == nil {
		return nil, &client.AuthError{Op: "translate", Err: ErrNotAuthenticated}
	}
	snap := s.Snapshot()

	payload, err := buildRequest(ctx, b.store, source, snap)
	if err != nil {
		return nil, err
	}

	req, err := b.client.NewJSONRequest(ctx, protocol.TranslatePath, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cookie", snap.Cookie)

	return b.client.Download(ctx, req)
}

// buildRequest reads the whole source image and assembles the translate
// payload from it and the session snapshot.
func buildRequest(ctx context.Context, store storage.Backend, source string, snap Snapshot) (protocol.TranslateRequest, error) {
	data, err := store.ReadObject(ctx, source)
	if err != nil {
		return protocol.TranslateRequest{}, &client.IOError{Op: "read", Path: source, Err: err}
	}

	return protocol.TranslateRequest{
		Fingerprint:  snap.Fingerprint,
		ClientUUID:   snap.ClientUUID,
		Base64Images: []string{base64.StdEncoding.EncodeToString(data)},
	}, nil
}
