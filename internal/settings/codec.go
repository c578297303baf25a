package settings

import (
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/modflags/internal/model"
)

// payload is the persisted shape. Every field is optional so payloads
// written by older or newer versions still load; unknown fields are ignored.
type payload struct {
	ResolverEnabled   *bool `json:"resolverEnabled"`
	AntiDeleteEnabled *bool `json:"antiDeleteEnabled"`
}

// Encode serializes s for persistence. Both flags are always written.
func Encode(s model.Settings) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return data, nil
}

// Decode parses a persisted payload. Missing fields default to false. An
// unreadable payload yields the default settings and a *DecodeError.
func Decode(data []byte) (model.Settings, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return model.DefaultSettings(), &DecodeError{Err: err}
	}
	s := model.DefaultSettings()
	if p.ResolverEnabled != nil {
		s.ResolverEnabled = *p.ResolverEnabled
	}
	if p.AntiDeleteEnabled != nil {
		s.AntiDeleteEnabled = *p.AntiDeleteEnabled
	}
	return s, nil
}
