// Package antidelete decides whether deleted messages are kept with a
// deleted marker and renders them for display.
package antidelete

import (
	"context"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/modflags/internal/events"
	"github.com/alfredjeanlab/modflags/internal/format"
	"github.com/alfredjeanlab/modflags/internal/idgen"
	"github.com/alfredjeanlab/modflags/internal/metrics"
	"github.com/alfredjeanlab/modflags/internal/model"
)

// FlagSource supplies the current settings. *settings.Store satisfies it.
type FlagSource interface {
	Current() model.Settings
}

// Manager applies the anti-delete flag to deletion requests.
type Manager struct {
	flags     FlagSource
	now       func() time.Time
	publisher events.Publisher
	logger    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides time.Now for marker timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithPublisher publishes a MessageMarkedDeleted event per newly marked message.
func WithPublisher(p events.Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New returns a Manager reading the flag from flags.
func New(flags FlagSource, opts ...Option) *Manager {
	m := &Manager{
		flags:     flags,
		now:       time.Now,
		publisher: events.NoopPublisher{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enabled reports whether anti-delete is on.
func (m *Manager) Enabled() bool {
	return m.flags.Current().AntiDeleteEnabled
}

// ShouldPreserve reports whether deleted messages should be kept and marked
// instead of removed.
func (m *Manager) ShouldPreserve() bool {
	return m.Enabled()
}

// NewMarker returns a marker stamped with the current time. The marker owns
// its own copy of deletedBy.
func (m *Manager) NewMarker(deletedBy *model.PeerID) model.DeletedMarker {
	marker := model.DeletedMarker{DeletedAt: int32(m.now().Unix())}
	if deletedBy != nil {
		by := *deletedBy
		marker.DeletedBy = &by
	}
	return marker
}

// Decision is the outcome of Apply. When Preserve is set, Messages holds
// the marked copies to store back; otherwise Remove lists what to delete.
type Decision struct {
	Preserve bool              `json:"preserve"`
	Messages []model.Message   `json:"messages,omitempty"`
	Remove   []model.MessageID `json:"remove,omitempty"`
	// Marked counts messages that received a marker in this call.
	Marked int `json:"marked"`
}

// Apply handles a deletion of msgs. The flag is read once, so a batch is
// never split between the two outcomes. Messages already carrying a marker
// keep it unchanged.
func (m *Manager) Apply(ctx context.Context, msgs []model.Message, deletedBy *model.PeerID) Decision {
	if !m.ShouldPreserve() {
		ids := make([]model.MessageID, 0, len(msgs))
		for _, msg := range msgs {
			ids = append(ids, msg.ID)
		}
		return Decision{Remove: ids}
	}

	base := m.NewMarker(deletedBy)
	d := Decision{Preserve: true, Messages: make([]model.Message, 0, len(msgs))}
	for _, msg := range msgs {
		if msg.IsMarkedDeleted() {
			d.Messages = append(d.Messages, msg)
			continue
		}
		d.Messages = append(d.Messages, msg.WithDeletedMarker(cloneMarker(base)))
		d.Marked++
		m.publish(ctx, events.MessageMarkedDeleted{
			ID:      idgen.Event(),
			Message: msg.ID,
			Marker:  cloneMarker(base),
		})
	}
	metrics.IncMarkedDeleted(d.Marked)
	return d
}

// cloneMarker returns a copy of marker that shares no pointers with it.
func cloneMarker(marker model.DeletedMarker) model.DeletedMarker {
	if marker.DeletedBy != nil {
		by := *marker.DeletedBy
		marker.DeletedBy = &by
	}
	return marker
}

func (m *Manager) publish(ctx context.Context, evt events.MessageMarkedDeleted) {
	if err := m.publisher.Publish(ctx, events.TopicMessageMarkedDeleted, evt); err != nil {
		m.logger.Warn("failed to publish event",
			"topic", events.TopicMessageMarkedDeleted, "message", evt.Message.ID, "error", err)
	}
}

// Render returns the display text for msg and, for marked messages, the
// deletion caption. Rendering depends only on the marker, not on the
// current flag.
func Render(msg model.Message, loc *time.Location) (text, caption string) {
	marker, ok := msg.DeletedMarker()
	if !ok {
		return msg.Text, ""
	}
	return format.DeletedMessageText(msg.Text), format.DeletedTimestamp(marker.DeletedAt, loc)
}
