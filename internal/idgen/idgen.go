// Package idgen generates short, URL-safe identifiers for published events
// and settings streams, backed by nanoid.
package idgen

import (
	"fmt"
	"strconv"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes identify what an ID refers to.
const (
	EventPrefix  = "ev-"
	StreamPrefix = "st-"
)

// Alphabet defines the character set used for the random portion of the ID.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
const Length = 12

// New returns a new unique ID with the given prefix.
func New(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// Event returns an ID for a published event. If the random source fails it
// falls back to a time-based ID, so callers never have to handle an error.
func Event() string {
	id, err := New(EventPrefix)
	if err != nil {
		return EventPrefix + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return id
}

// Stream returns an ID for a settings stream connection.
func Stream() (string, error) {
	return New(StreamPrefix)
}
