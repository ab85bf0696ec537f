// Package snapshot persists engine state as self-describing envelopes.
//
// A snapshot is an opaque byte payload wrapped in an envelope that
// records the codec that produced it, the compression applied, and a
// CRC32 checksum. Stores move envelopes to and from durable storage
// and know nothing about their contents, so the same envelope can live
// in a directory, in memory, or anywhere else a Store implementation
// can reach.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when a key does not exist in a store.
// It matches os.ErrNotExist so filesystem errors map onto it directly.
var ErrNotFound = os.ErrNotExist

// Store persists envelopes under string keys.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put writes data under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error
	// Get returns the data stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns all keys with the given prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// validateKey rejects keys that cannot serve as plain file names.
// Leading dots are reserved for in-flight temp files.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("snapshot: invalid key %q", key)
	}
	return nil
}
