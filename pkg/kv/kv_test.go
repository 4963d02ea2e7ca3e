package kv

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runBackendContract exercises the behaviour every backend shares.
func runBackendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Get(ctx, "missing")
	assert.True(t, IsNotFound(err), "expected ErrNotFound, got %v", err)

	require.NoError(t, b.Set(ctx, "pageshare_posts", []byte(`[{"id":"1"}]`)))
	got, err := b.Get(ctx, "pageshare_posts")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(got))

	require.NoError(t, b.Set(ctx, "pageshare_posts", []byte(`[]`)))
	got, err = b.Get(ctx, "pageshare_posts")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, b.Remove(ctx, "pageshare_posts"))
	_, err = b.Get(ctx, "pageshare_posts")
	assert.True(t, IsNotFound(err))

	// removing a missing key is not an error
	assert.NoError(t, b.Remove(ctx, "pageshare_posts"))
}

func TestMemoryBackend(t *testing.T) {
	runBackendContract(t, NewMemoryBackend(0))
}

func TestMemoryBackend_Quota(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend(20)

	require.NoError(t, b.Set(ctx, "k", []byte("0123456789")))
	assert.Equal(t, int64(11), b.Usage())

	err := b.Set(ctx, "other", []byte("0123456789"))
	assert.True(t, IsCapacityExceeded(err), "expected capacity error, got %v", err)

	// replacing a value only counts the difference
	require.NoError(t, b.Set(ctx, "k", []byte("0123456789abcdefgh")))
	assert.Equal(t, int64(19), b.Usage())

	require.NoError(t, b.Remove(ctx, "k"))
	assert.Equal(t, int64(0), b.Usage())
	assert.NoError(t, b.Set(ctx, "other", []byte("0123456789")))
}

func TestMemoryBackend_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend(0)

	value := []byte("abc")
	require.NoError(t, b.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileBackend(t *testing.T) {
	b, err := NewFileBackend(afero.NewMemMapFs(), "/store", 0)
	require.NoError(t, err)
	runBackendContract(t, b)
}

func TestFileBackend_EscapesKeys(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	b, err := NewFileBackend(fsys, "/store", 0)
	require.NoError(t, err)

	require.NoError(t, b.Set(ctx, "../escape/attempt", []byte("x")))

	exists, err := afero.Exists(fsys, "/escape/attempt.json")
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := b.Get(ctx, "../escape/attempt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}

func TestFileBackend_Quota(t *testing.T) {
	ctx := context.Background()
	b, err := NewFileBackend(afero.NewMemMapFs(), "/store", 16)
	require.NoError(t, err)

	require.NoError(t, b.Set(ctx, "a", []byte("0123456789")))
	err = b.Set(ctx, "b", []byte("0123456789"))
	assert.True(t, IsCapacityExceeded(err))

	// overwriting the same key frees its old size first
	assert.NoError(t, b.Set(ctx, "a", []byte("0123456789abcdef")))
}

func TestSQLBackend(t *testing.T) {
	b, err := NewSQLBackend(SQLConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	defer b.Close()

	runBackendContract(t, b)
}

func TestSQLBackend_ValueCap(t *testing.T) {
	b, err := NewSQLBackend(SQLConfig{Driver: "sqlite", MaxValueBytes: 4})
	require.NoError(t, err)
	defer b.Close()

	err = b.Set(context.Background(), "k", []byte("too long"))
	assert.True(t, IsCapacityExceeded(err))
}

func TestSQLBackend_UnknownDriver(t *testing.T) {
	_, err := NewSQLBackend(SQLConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, Config{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)

	b, err = Open(ctx, Config{Backend: "file", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)

	_, err = Open(ctx, Config{Backend: "file"})
	assert.Error(t, err)

	_, err = Open(ctx, Config{Backend: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestCapacityErrorWrapping(t *testing.T) {
	cause := errors.New("OOM command not allowed")
	err := fmt.Errorf("persist: %w", capacityExceeded("redis", "k", cause))

	assert.True(t, IsCapacityExceeded(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "redis")
	assert.False(t, IsCapacityExceeded(cause))
}
