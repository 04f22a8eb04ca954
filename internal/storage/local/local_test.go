package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteObject_CreatesAndTruncates(t *testing.T) {
	dir := t.TempDir()
	b, err := New(Config{RootPath: dir})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := b.WriteObject(ctx, "page.png", []byte("a much longer first version")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := b.WriteObject(ctx, "page.png", []byte("short")); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "page.png"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "short" {
		t.Errorf("expected truncated content, got %q", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected no temp files left, got %d entries", len(entries))
	}
}

func TestWriteObject_MissingDir(t *testing.T) {
	dir := t.TempDir()
	b, _ := New(Config{RootPath: dir})

	if err := b.WriteObject(context.Background(), "missing/page.png", []byte("x")); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}

func TestWriteObject_CreateDirs(t *testing.T) {
	dir := t.TempDir()
	b, _ := New(Config{RootPath: dir, CreateDirs: true})

	if err := b.WriteObject(context.Background(), "out/ch1/page.png", []byte("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "out", "ch1", "page.png"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("expected mode 0644, got %v", info.Mode().Perm())
	}
}

func TestWriteObject_DestinationIsDirectory(t *testing.T) {
	dir := t.TempDir()
	os.Mkdir(filepath.Join(dir, "page.png"), 0755)
	os.WriteFile(filepath.Join(dir, "page.png", "keep"), []byte("x"), 0644)
	b, _ := New(Config{RootPath: dir})

	if err := b.WriteObject(context.Background(), "page.png", []byte("x")); err == nil {
		t.Fatal("expected error when destination is a directory")
	}
}

func TestReadObject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.jpg")
	os.WriteFile(path, []byte{0xff, 0xd8, 0xff}, 0644)

	b, _ := New(Config{})
	data, err := b.ReadObject(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 3 || data[0] != 0xff {
		t.Errorf("unexpected content %v", data)
	}

	if _, err := b.ReadObject(context.Background(), filepath.Join(dir, "nope.jpg")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNew_RootIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	os.WriteFile(path, nil, 0644)
	if _, err := New(Config{RootPath: path}); err == nil {
		t.Error("expected error when root is a file")
	}
}
