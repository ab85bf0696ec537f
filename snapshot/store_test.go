package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutGet(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "snaps")

	store, err := NewLocalStore(dir)
	require.NoError(t, err, "missing directories are created")

	require.NoError(t, store.Put(ctx, "memory.rsnp", []byte("v1")))
	got, err := store.Get(ctx, "memory.rsnp")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// Overwrite replaces the previous value.
	require.NoError(t, store.Put(ctx, "memory.rsnp", []byte("v2")))
	got, err = store.Get(ctx, "memory.rsnp")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	// No temp files survive a completed Put.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "memory.rsnp", entries[0].Name())
}

func TestLocalStoreGetMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "absent")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "k", []byte("v")))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err = store.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "k"), "deleting a missing key is not an error")
}

func TestLocalStoreList(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	for _, key := range []string{"memory.rsnp", "a.rsnp", "b.rsnp"} {
		require.NoError(t, store.Put(ctx, key, []byte(key)))
	}

	// Leftover temp files and directories are not keys.
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".memory.rsnp.tmp-42"), []byte("junk"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	keys, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.rsnp", "b.rsnp", "memory.rsnp"}, keys)

	keys, err = store.List(ctx, "mem")
	require.NoError(t, err)
	assert.Equal(t, []string{"memory.rsnp"}, keys)
}

func TestStoreRejectsInvalidKeys(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	mem := NewMemoryStore()

	for _, key := range []string{"", ".", "..", ".hidden", "a/b", `a\b`} {
		assert.Error(t, local.Put(ctx, key, []byte("v")), "local key %q", key)
		assert.Error(t, mem.Put(ctx, key, []byte("v")), "memory key %q", key)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("abc")
	require.NoError(t, store.Put(ctx, "k", data))

	// The store holds its own copy in both directions.
	data[0] = 'Z'
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[0] = 'Q'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)

	_, err = store.Get(ctx, "absent")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, key := range []string{"c", "a", "b", "ab"} {
		require.NoError(t, store.Put(ctx, key, []byte(key)))
	}

	keys, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "ab", "b", "c"}, keys)

	keys, err = store.List(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "ab"}, keys)
}

func TestStoreEnvelopeRoundTrip(t *testing.T) {
	ctx := context.Background()
	payload := compressiblePayload()

	env, err := Encode(payload, "go-json", CompressionZSTD)
	require.NoError(t, err)

	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "memory.rsnp", env))

	stored, err := store.Get(ctx, "memory.rsnp")
	require.NoError(t, err)

	got, codecName, err := Decode(stored)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, "go-json", codecName)
}
