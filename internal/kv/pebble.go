package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

// Pebble is a KV backed by an embedded Pebble database on local disk.
type Pebble struct {
	db *pebble.DB
}

var _ KV = (*Pebble)(nil)

// OpenPebble opens (or creates) a Pebble database at path.
func OpenPebble(path string) (*Pebble, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create pebble dir: %w", err)
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}
	return &Pebble{db: db}, nil
}

func (p *Pebble) Get(_ context.Context, key string) ([]byte, error) {
	v, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pebble get %q: %w", key, err)
	}
	defer closer.Close()
	// v is only valid until closer is released.
	return clone(v), nil
}

func (p *Pebble) Set(_ context.Context, key string, value []byte) error {
	if err := p.db.Set([]byte(key), value, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set %q: %w", key, err)
	}
	return nil
}

func (p *Pebble) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
