package settings

import (
	"context"
	"log/slog"

	"github.com/alfredjeanlab/modflags/internal/events"
	"github.com/alfredjeanlab/modflags/internal/idgen"
	"github.com/alfredjeanlab/modflags/internal/model"
)

// Forward publishes a SettingsUpdated event for every change made to store
// until ctx is cancelled. The value current at the time of the call is not
// published. Publish failures are logged and do not stop forwarding.
func Forward(ctx context.Context, store *Store, pub events.Publisher, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	sub := store.Subscribe()
	defer sub.Close()

	var prev model.Settings
	select {
	case <-ctx.Done():
		return
	case v, ok := <-sub.C():
		if !ok {
			return
		}
		prev = v
	}

	for {
		select {
		case <-ctx.Done():
			return
		case next, ok := <-sub.C():
			if !ok {
				return
			}
			evt := events.SettingsUpdated{
				ID:       idgen.Event(),
				Settings: next,
				Previous: prev,
				Changed:  next.Diff(prev),
			}
			if err := pub.Publish(ctx, events.TopicSettingsUpdated, evt); err != nil {
				logger.Warn("publishing settings update failed", "error", err)
			}
			prev = next
		}
	}
}
