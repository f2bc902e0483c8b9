package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"

	"memeverse/internal/database"
	"memeverse/internal/storage"

	"github.com/stretchr/testify/require"
)

// ErrDiskFull is the error injected by FailingBackend.
var ErrDiskFull = errors.New("disk full")

// FailingBackend wraps a Backend and fails selected writes.
type FailingBackend struct {
	storage.Backend

	mu       sync.Mutex
	failures map[string]int
}

// NewFailingBackend wraps an in-memory SQLite backend.
func NewFailingBackend(t testing.TB) *FailingBackend {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	backend := storage.NewGormBackend(db)
	t.Cleanup(func() { _ = backend.Close() })
	return &FailingBackend{Backend: backend, failures: map[string]int{}}
}

// FailNextStore makes the next n writes of key return ErrDiskFull.
func (b *FailingBackend) FailNextStore(key string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[key] += n
}

func (b *FailingBackend) Store(ctx context.Context, key string, value []byte, expectVersion int64) (int64, error) {
	b.mu.Lock()
	if b.failures[key] > 0 {
		b.failures[key]--
		b.mu.Unlock()
		return 0, ErrDiskFull
	}
	b.mu.Unlock()
	return b.Backend.Store(ctx, key, value, expectVersion)
}
