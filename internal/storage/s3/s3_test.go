package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestSplitKey(t *testing.T) {
	tests := []struct {
		key     string
		bucket  string
		object  string
		wantErr bool
	}{
		{"pages/ch1/001.png", "pages", "ch1/001.png", false},
		{"/pages/001.png", "pages", "001.png", false},
		{"pages", "", "", true},
		{"pages/", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			bucket, object, err := SplitKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if bucket != tt.bucket || object != tt.object {
				t.Errorf("got (%q, %q), want (%q, %q)", bucket, object, tt.bucket, tt.object)
			}
		})
	}
}

// fakeS3 stores PUT bodies and serves them back on GET, path-style.
func fakeS3(t *testing.T) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	objects := map[string][]byte{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			data, _ := io.ReadAll(r.Body)
			objects[r.URL.Path] = data
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			data, ok := objects[r.URL.Path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`<Error><Code>NoSuchKey</Code></Error>`))
				return
			}
			w.Write(data)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
}

func TestWriteThenRead(t *testing.T) {
	ts := fakeS3(t)
	defer ts.Close()

	ctx := context.Background()
	b, err := NewBackend(ctx, Config{
		Endpoint:  ts.URL,
		Region:    "us-east-1",
		AccessKey: "test",
		SecretKey: "test",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := b.WriteObject(ctx, "pages/ch1/001.png", []byte("translated")); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := b.ReadObject(ctx, "pages/ch1/001.png")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "translated" {
		t.Errorf("expected translated, got %q", data)
	}

	if _, err := b.ReadObject(ctx, "pages/missing.png"); err == nil || !strings.Contains(err.Error(), "get object") {
		t.Errorf("expected get object error, got %v", err)
	}
}
