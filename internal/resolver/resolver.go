// Package resolver exposes raw peer and message identifiers for display
// when the resolver flag is on.
package resolver

import (
	"github.com/alfredjeanlab/modflags/internal/format"
	"github.com/alfredjeanlab/modflags/internal/model"
)

// FlagSource supplies the current settings.
type FlagSource interface {
	Current() model.Settings
}

type Helper struct {
	flags FlagSource
}

func New(flags FlagSource) *Helper {
	return &Helper{flags: flags}
}

func (h *Helper) Enabled() bool {
	return h.flags.Current().ResolverEnabled
}

// PeerLabel returns the detailed label for p, or false when the resolver
// is off.
func (h *Helper) PeerLabel(p model.PeerID) (string, bool) {
	if !h.Enabled() {
		return "", false
	}
	return format.PeerIdentifier(p), true
}

// ShortLabel returns "ID: <n>" for p, or false when the resolver is off.
func (h *Helper) ShortLabel(p model.PeerID) (string, bool) {
	if !h.Enabled() {
		return "", false
	}
	return format.Identifier(p.ID), true
}

func (h *Helper) MessageLabel(m model.MessageID) (string, bool) {
	if !h.Enabled() {
		return "", false
	}
	return format.MessageIdentifier(m), true
}

// CopyableID is available regardless of the flag.
func (h *Helper) CopyableID(p model.PeerID) string {
	return format.CopyableID(p.ID)
}
