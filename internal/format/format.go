// Package format renders identifiers and deleted-message text for display.
// Every function is pure and never fails.
package format

import (
	"strconv"
	"time"

	"github.com/alfredjeanlab/modflags/internal/model"
)

const (
	DeletedGlyph       = "🗑"
	DeletedPlaceholder = DeletedGlyph + " [deleted message]"

	// deletedLayout is the en-US short date and short time.
	deletedLayout = "1/2/06, 3:04 PM"
)

// DeletedMessageText returns the body shown for a message kept with a
// deleted marker.
func DeletedMessageText(original string) string {
	if original == "" {
		return DeletedPlaceholder
	}
	return DeletedGlyph + " " + original
}

// DeletedTimestamp returns the caption for a deletion at ts (epoch seconds)
// in loc. A nil loc means UTC.
func DeletedTimestamp(ts int32, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return "Deleted: " + time.Unix(int64(ts), 0).In(loc).Format(deletedLayout)
}

func Identifier(id int64) string {
	return "ID: " + strconv.FormatInt(id, 10)
}

func IdentifierWithKind(id int64, kind model.PeerNamespace) string {
	return kind.String() + " ID: " + strconv.FormatInt(id, 10)
}

// PeerIdentifier is the detailed label for a peer, e.g. "Channel ID: 42".
func PeerIdentifier(p model.PeerID) string {
	return IdentifierWithKind(p.ID, p.Namespace)
}

// CopyableID is the bare number, suitable for the clipboard.
func CopyableID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func MessageIdentifier(m model.MessageID) string {
	return "Message ID: " + strconv.FormatInt(int64(m.ID), 10)
}
