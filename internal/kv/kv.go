// Package kv defines the durable key-value facility the settings store
// persists into, along with its backends.
package kv

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/modflags/internal/model"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("kv: key not found")

// KV is a byte-oriented key-value store.
type KV interface {
	// Get returns a copy of the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set durably stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Close releases the underlying resources.
	Close() error
}

// EntryReader is implemented by backends that can report the full stored
// record, including its modification time.
type EntryReader interface {
	GetEntry(ctx context.Context, key string) (*model.Entry, error)
}
