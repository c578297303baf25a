// Package client provides a transport-agnostic interface for the modflags
// service and an HTTP/JSON implementation of it.
package client

import (
	"context"

	"github.com/alfredjeanlab/modflags/internal/antidelete"
	"github.com/alfredjeanlab/modflags/internal/model"
	"github.com/alfredjeanlab/modflags/internal/screen"
	"github.com/alfredjeanlab/modflags/internal/settings"
)

// SettingsClient is the interface modctl commands use to talk to a
// modflags server.
type SettingsClient interface {
	// Settings
	GetSettings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, patch SettingsPatch) (*UpdateResponse, error)
	Toggle(ctx context.Context, flag string) (*UpdateResponse, error)
	StreamSettings(ctx context.Context, fn func(model.Settings) error) error

	// Screen
	GetScreen(ctx context.Context) (*screen.Screen, error)
	SetSection(ctx context.Context, section string, value bool) (*screen.Screen, error)

	// Format
	FormatIdentifier(ctx context.Context, id int64, kind string) (*Identifier, error)
	FormatDeleted(ctx context.Context, text string, deletedAt *int32) (*RenderedText, error)

	// Messages
	DeleteMessages(ctx context.Context, msgs []model.Message, deletedBy *model.PeerID) (*antidelete.Decision, error)
	PeerLabel(ctx context.Context, peer model.PeerID) (*PeerLabel, error)

	// Health
	Health(ctx context.Context) (*HealthStatus, error)

	// Lifecycle
	Close() error
}

// SettingsPatch holds optional flag values. Nil fields are left unchanged.
type SettingsPatch struct {
	ResolverEnabled   *bool `json:"resolverEnabled,omitempty"`
	AntiDeleteEnabled *bool `json:"antiDeleteEnabled,omitempty"`
}

// UpdateResponse is returned by UpdateSettings and Toggle. Warning is set
// when the server applied the change but could not persist it.
type UpdateResponse struct {
	settings.UpdateResult
	Warning string `json:"warning,omitempty"`
}

// Identifier is a formatted peer or message identifier.
type Identifier struct {
	Label    string `json:"label"`
	Copyable string `json:"copyable"`
}

// RenderedText is display text for a deleted message.
type RenderedText struct {
	Text    string `json:"text"`
	Caption string `json:"caption,omitempty"`
}

// PeerLabel is the resolver's rendering of a peer.
type PeerLabel struct {
	Label    string `json:"label"`
	Short    string `json:"short"`
	Copyable string `json:"copyable"`
}

// HealthStatus is the response from Health.
type HealthStatus struct {
	Status      string `json:"status"`
	SettingsKey string `json:"settings_key"`
	LoadError   string `json:"load_error,omitempty"`
}
