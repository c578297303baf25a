package model

import (
	"encoding/json"
	"time"
)

// DeletedMarker is attached to a message in place of removing it. It is
// never modified once attached.
type DeletedMarker struct {
	DeletedAt int32   `json:"dt"`
	DeletedBy *PeerID `json:"dp,omitempty"`
}

// Time returns the deletion time.
func (m DeletedMarker) Time() time.Time {
	return time.Unix(int64(m.DeletedAt), 0)
}

// AttributeKind discriminates the variants of Attribute.
type AttributeKind string

const (
	AttributeDeleted AttributeKind = "deleted"
	// AttributeOther carries any host attribute this package does not model.
	AttributeOther AttributeKind = "other"
)

// Attribute is a tagged variant. Exactly one of the payload fields is set,
// according to Kind.
type Attribute struct {
	Kind    AttributeKind   `json:"kind"`
	Deleted *DeletedMarker  `json:"deleted,omitempty"`
	Name    string          `json:"name,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DeletedAttribute wraps a marker as an Attribute.
func DeletedAttribute(m DeletedMarker) Attribute {
	return Attribute{Kind: AttributeDeleted, Deleted: &m}
}

// Message is the subset of a host message record that the mod touches.
type Message struct {
	ID         MessageID   `json:"id"`
	Author     *PeerID     `json:"author,omitempty"`
	Text       string      `json:"text"`
	Timestamp  int32       `json:"timestamp"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// DeletedMarker returns the first deleted marker on the message.
func (m Message) DeletedMarker() (DeletedMarker, bool) {
	for _, a := range m.Attributes {
		if a.Kind == AttributeDeleted && a.Deleted != nil {
			return *a.Deleted, true
		}
	}
	return DeletedMarker{}, false
}

// IsMarkedDeleted reports whether a deleted marker is attached.
func (m Message) IsMarkedDeleted() bool {
	_, ok := m.DeletedMarker()
	return ok
}

// WithDeletedMarker returns a copy of m carrying marker. If m is already
// marked, it is returned unchanged.
func (m Message) WithDeletedMarker(marker DeletedMarker) Message {
	if m.IsMarkedDeleted() {
		return m
	}
	attrs := make([]Attribute, 0, len(m.Attributes)+1)
	attrs = append(attrs, m.Attributes...)
	attrs = append(attrs, DeletedAttribute(marker))
	m.Attributes = attrs
	return m
}
