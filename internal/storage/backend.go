// Package storage implements the local keyed record store: a single durable
// key-value namespace holding JSON documents with optimistic versioned writes.
package storage

import (
	"context"
	"errors"
)

// ErrVersionConflict is returned by Backend.Store when the stored version no
// longer matches the version the caller read.
var ErrVersionConflict = errors.New("storage: version conflict")

// Entry is a raw persisted value and the version it was written at.
type Entry struct {
	Key     string
	Value   []byte
	Version int64
}

// Backend is the durable byte store under RecordStore.
//
// Store writes value only if the current version equals expectVersion, where
// 0 means the key must not exist yet, and returns the new version. A mismatch
// yields ErrVersionConflict and leaves the stored value untouched.
type Backend interface {
	Name() string
	Load(ctx context.Context, key string) (Entry, bool, error)
	Store(ctx context.Context, key string, value []byte, expectVersion int64) (int64, error)
	Keys(ctx context.Context, prefix string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}
