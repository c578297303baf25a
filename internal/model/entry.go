package model

import (
	"encoding/json"
	"time"
)

// Entry is a single key-value record as held by the durable store.
// UpdatedAt is zero for backends that do not track modification times.
type Entry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}
