package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func testClient(handler http.Handler) (*Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	c := New(Config{BaseURL: ts.URL})
	return c, ts
}

func TestDownload_SucceedsAfterFailures(t *testing.T) {
	for k := 0; k < 5; k++ {
		var attempts atomic.Int32
		var mu sync.Mutex
		var bodies []string
		c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			mu.Lock()
			bodies = append(bodies, string(data))
			mu.Unlock()
			if int(attempts.Add(1)) <= k {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("translated"))
		}))

		req, err := c.NewJSONRequest(context.Background(), "/translate", map[string]string{"a": "b"})
		if err != nil {
			t.Fatal(err)
		}
		data, err := c.Download(context.Background(), req)
		ts.Close()

		if err != nil {
			t.Fatalf("k=%d: unexpected error: %v", k, err)
		}
		if string(data) != "translated" {
			t.Errorf("k=%d: expected translated, got %q", k, data)
		}
		if got := attempts.Load(); got != int32(k+1) {
			t.Errorf("k=%d: expected %d attempts, got %d", k, k+1, got)
		}
		mu.Lock()
		for i, b := range bodies {
			if b != `{"a":"b"}` {
				t.Errorf("k=%d: attempt %d sent body %q", k, i+1, b)
			}
		}
		mu.Unlock()
	}
}

func TestDownload_ExhaustsAfterFiveAttempts(t *testing.T) {
	var attempts atomic.Int32
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n == 5 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	req, _ := c.NewJSONRequest(context.Background(), "/translate", struct{}{})
	_, err := c.Download(context.Background(), req)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := attempts.Load(); got != 5 {
		t.Errorf("expected exactly 5 attempts, got %d", got)
	}

	ne, ok := AsNetwork(err)
	if !ok {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
	if ne.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status of 5th attempt (502), got %d", ne.StatusCode)
	}
	if ne.Attempts != 5 {
		t.Errorf("expected Attempts=5, got %d", ne.Attempts)
	}
}

func TestDownload_TransportError(t *testing.T) {
	var attempts atomic.Int32
	c := New(Config{
		BaseURL: "http://translate.invalid",
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			n := attempts.Add(1)
			return nil, errors.New("dial failure " + string(rune('0'+n)))
		}),
	})

	req, _ := c.NewJSONRequest(context.Background(), "/translate", struct{}{})
	_, err := c.Download(context.Background(), req)

	if got := attempts.Load(); got != 5 {
		t.Errorf("expected 5 attempts, got %d", got)
	}
	ne, ok := AsNetwork(err)
	if !ok {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
	if ne.StatusCode != 0 {
		t.Errorf("expected no status for transport error, got %d", ne.StatusCode)
	}
	if !strings.Contains(err.Error(), "dial failure 5") {
		t.Errorf("expected error of the last attempt, got %v", err)
	}
}

func TestDownload_CookieHeaderOnEveryAttempt(t *testing.T) {
	var attempts atomic.Int32
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != "access_cookie=a; refresh_token_cookie=r" {
			t.Errorf("attempt %d missing cookie: %q", attempts.Load()+1, r.Header.Get("Cookie"))
		}
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	req, _ := c.NewJSONRequest(context.Background(), "/translate", struct{}{})
	req.Header.Set("Cookie", "access_cookie=a; refresh_token_cookie=r")

	if _, err := c.Download(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDownload_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var attempts atomic.Int32
	c := New(Config{
		BaseURL: "http://translate.invalid",
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			attempts.Add(1)
			cancel()
			return nil, r.Context().Err()
		}),
	})

	req, _ := c.NewJSONRequest(ctx, "/translate", struct{}{})
	_, err := c.Download(ctx, req)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("expected 1 attempt, got %d", got)
	}
}

func TestNew_TrimsBaseURL(t *testing.T) {
	c := New(Config{BaseURL: "https://example.com/"})
	if c.BaseURL() != "https://example.com" {
		t.Errorf("expected trimmed base URL, got %s", c.BaseURL())
	}
	if New(Config{}).BaseURL() != DefaultBaseURL {
		t.Errorf("expected default base URL")
	}
}
