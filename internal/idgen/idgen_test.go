package idgen

import (
	"regexp"
	"strings"
	"testing"
)

func TestNew_LengthAndCharset(t *testing.T) {
	for _, prefix := range []string{EventPrefix, StreamPrefix, "x-"} {
		id, err := New(prefix)
		if err != nil {
			t.Fatalf("New(%q) error: %v", prefix, err)
		}
		if len(id) != len(prefix)+Length {
			t.Errorf("New(%q) length = %d, want %d (id=%q)", prefix, len(id), len(prefix)+Length, id)
		}
		pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `[a-zA-Z0-9]+$`)
		if !pattern.MatchString(id) {
			t.Errorf("New(%q) = %q, does not match expected charset pattern", prefix, id)
		}
	}
}

func TestEvent_Prefix(t *testing.T) {
	if id := Event(); !strings.HasPrefix(id, EventPrefix) {
		t.Errorf("Event() = %q, want prefix %q", id, EventPrefix)
	}
}

func TestStream_Prefix(t *testing.T) {
	id, err := Stream()
	if err != nil {
		t.Fatalf("Stream() error: %v", err)
	}
	if !strings.HasPrefix(id, StreamPrefix) {
		t.Errorf("Stream() = %q, want prefix %q", id, StreamPrefix)
	}
}

func TestEvent_Uniqueness(t *testing.T) {
	const count = 10_000
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id := Event()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID after %d generations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}
