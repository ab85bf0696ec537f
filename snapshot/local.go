package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps each snapshot as a plain file under a directory.
// Writes go through a temp file and an atomic rename, so a reader never
// observes a partially written snapshot even if the process dies
// mid-write.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a store rooted at dir, creating the directory
// if it does not exist.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: create %q: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Put writes data under key, atomically replacing any previous value.
func (s *LocalStore) Put(_ context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	// Write to a temp file in the same directory to ensure rename is atomic.
	tmp, err := os.CreateTemp(s.dir, "."+key+".tmp-*")
	if err != nil {
		return fmt.Errorf("snapshot: write %q: %w", key, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	_ = tmp.Chmod(0o644)

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("snapshot: write %q: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("snapshot: sync %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: close %q: %w", key, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, key)); err != nil {
		return fmt.Errorf("snapshot: rename %q: %w", key, err)
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(s.dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// Get returns the data stored under key.
func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("snapshot: %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("snapshot: read %q: %w", key, err)
	}
	return data, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("snapshot: delete %q: %w", key, err)
	}
	return nil
}

// List returns all keys with the given prefix in lexical order.
// In-flight temp files are excluded.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("snapshot: list: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			keys = append(keys, name)
		}
	}
	return keys, nil
}
