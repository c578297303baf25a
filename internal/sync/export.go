package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alfredjeanlab/modflags/internal/model"
	"github.com/alfredjeanlab/modflags/internal/settings"
)

// Source supplies the settings to export. *settings.Store satisfies it.
type Source interface {
	Current() model.Settings
	Key() string
}

// snapshot is the document written by Export.
type snapshot struct {
	Version   string          `json:"version"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Key       string          `json:"key"`
	Settings  json.RawMessage `json:"settings"`
}

// Export writes a snapshot of the current settings to w. The settings field
// holds the payload exactly as it is persisted under Key.
func Export(ctx context.Context, src Source, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := settings.Encode(src.Current())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot{
		Version:   "1",
		Type:      "settings_snapshot",
		Timestamp: time.Now().UTC(),
		Key:       src.Key(),
		Settings:  payload,
	}); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
