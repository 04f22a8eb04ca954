// Package local provides a local filesystem storage backend.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pagetranslate/pagetranslate/internal/metrics"
)

// Config holds local filesystem backend settings.
type Config struct {
	RootPath   string // optional; keys are resolved against it when set
	CreateDirs bool   // create missing parent directories on write
	FileMode   os.FileMode
}

// LocalBackend implements storage.Backend using the local filesystem.
type LocalBackend struct {
	rootPath   string
	createDirs bool
	fileMode   os.FileMode
}

// New creates a new local filesystem backend.
func New(cfg Config) (*LocalBackend, error) {
	if cfg.FileMode == 0 {
		cfg.FileMode = 0644
	}

	if cfg.RootPath != "" {
		info, err := os.Stat(cfg.RootPath)
		if err != nil {
			if os.IsNotExist(err) && cfg.CreateDirs {
				if mkErr := os.MkdirAll(cfg.RootPath, 0755); mkErr != nil {
					return nil, fmt.Errorf("create root path %s: %w", cfg.RootPath, mkErr)
				}
			} else {
				return nil, fmt.Errorf("stat root path %s: %w", cfg.RootPath, err)
			}
		} else if !info.IsDir() {
			return nil, fmt.Errorf("root path %s is not a directory", cfg.RootPath)
		}
	}

	return &LocalBackend{
		rootPath:   cfg.RootPath,
		createDirs: cfg.CreateDirs,
		fileMode:   cfg.FileMode,
	}, nil
}

func (b *LocalBackend) fullPath(key string) string {
	if b.rootPath == "" || filepath.IsAbs(key) {
		return filepath.Clean(key)
	}
	return filepath.Join(b.rootPath, key)
}

// ReadObject reads a whole file.
func (b *LocalBackend) ReadObject(_ context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := os.ReadFile(b.fullPath(key))
	metrics.RecordStorageOperation("local", "read", time.Since(start), err == nil)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// WriteObject writes data to the local filesystem atomically: a partially
// written destination is never observed and an existing file is replaced.
func (b *LocalBackend) WriteObject(_ context.Context, key string, data []byte) error {
	start := time.Now()
	err := b.writeFile(key, data)
	metrics.RecordStorageOperation("local", "write", time.Since(start), err == nil)
	return err
}

func (b *LocalBackend) writeFile(key string, data []byte) error {
	path := b.fullPath(key)
	dir := filepath.Dir(path)

	if b.createDirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dirs for %s: %w", key, err)
		}
	}

	// Write to temp file then rename for atomicity
	tmp, err := os.CreateTemp(dir, ".pagetranslate-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Chmod(b.fileMode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp for %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp for %s: %w", key, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp to %s: %w", key, err)
	}

	return nil
}

// Type returns "local".
func (b *LocalBackend) Type() string {
	return "local"
}

// Close is a no-op for local storage.
func (b *LocalBackend) Close() error {
	return nil
}
