package events

import (
	"context"

	"github.com/alfredjeanlab/modflags/internal/model"
)

// Event topic constants
const (
	TopicSettingsUpdated      = "modflags.settings.updated"
	TopicMessageMarkedDeleted = "modflags.message.marked_deleted"

	// TopicAll matches every topic published by this service.
	TopicAll = "modflags.>"
)

// SettingsUpdated is published after a settings value changed.
type SettingsUpdated struct {
	ID       string         `json:"id"`
	Settings model.Settings `json:"settings"`
	Previous model.Settings `json:"previous"`
	Changed  []string       `json:"changed"` // flag names that differ
}

// MessageMarkedDeleted is published when a message is kept with a deleted
// marker instead of being removed.
type MessageMarkedDeleted struct {
	ID      string              `json:"id"`
	Message model.MessageID     `json:"message"`
	Marker  model.DeletedMarker `json:"marker"`
}

// EventID returns the event's unique ID.
func (e SettingsUpdated) EventID() string { return e.ID }

// EventID returns the event's unique ID.
func (e MessageMarkedDeleted) EventID() string { return e.ID }

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers raw event payloads on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}

// NoopPublisher discards events (used when NATS is not configured).
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }
