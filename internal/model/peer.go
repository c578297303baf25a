package model

import (
	"fmt"
	"strings"
)

// PeerNamespace classifies a peer identifier.
type PeerNamespace int32

const (
	NamespaceUnknown PeerNamespace = iota
	NamespaceUser
	NamespaceGroup
	NamespaceChannel
	NamespaceSecret
)

// String returns the display label for the namespace.
func (n PeerNamespace) String() string {
	switch n {
	case NamespaceUser:
		return "User"
	case NamespaceGroup:
		return "Group"
	case NamespaceChannel:
		return "Channel"
	case NamespaceSecret:
		return "Secret"
	}
	return "Unknown"
}

// ParseNamespace maps a case-insensitive label ("user", "Channel", ...) to a
// namespace. Unrecognized labels map to NamespaceUnknown with ok=false.
func ParseNamespace(s string) (PeerNamespace, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return NamespaceUser, true
	case "group":
		return NamespaceGroup, true
	case "channel":
		return NamespaceChannel, true
	case "secret":
		return NamespaceSecret, true
	case "unknown", "":
		return NamespaceUnknown, true
	}
	return NamespaceUnknown, false
}

// MarshalText encodes the namespace as its lower-case label.
func (n PeerNamespace) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(n.String())), nil
}

// UnmarshalText decodes a namespace label.
func (n *PeerNamespace) UnmarshalText(b []byte) error {
	ns, ok := ParseNamespace(string(b))
	if !ok {
		return fmt.Errorf("unknown peer namespace %q", string(b))
	}
	*n = ns
	return nil
}

// PeerID identifies a user, group, channel or secret chat.
type PeerID struct {
	Namespace PeerNamespace `json:"namespace"`
	ID        int64         `json:"id"`
}

// String renders the peer as "<namespace>:<id>".
func (p PeerID) String() string {
	return fmt.Sprintf("%s:%d", strings.ToLower(p.Namespace.String()), p.ID)
}

// MessageID identifies a message within a peer's history.
type MessageID struct {
	Peer      PeerID `json:"peer"`
	Namespace int32  `json:"namespace"`
	ID        int32  `json:"id"`
}
