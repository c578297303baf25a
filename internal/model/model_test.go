package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSettings_WithMethodsDoNotMutate(t *testing.T) {
	orig := DefaultSettings()
	next := orig.WithResolverEnabled(true)

	if orig.ResolverEnabled {
		t.Error("WithResolverEnabled mutated the receiver")
	}
	if !next.ResolverEnabled || next.AntiDeleteEnabled {
		t.Errorf("next = %+v, want resolver only", next)
	}

	both := next.WithAntiDeleteEnabled(true)
	if !both.ResolverEnabled || !both.AntiDeleteEnabled {
		t.Errorf("both = %+v, want both flags set", both)
	}
	if next.AntiDeleteEnabled {
		t.Error("WithAntiDeleteEnabled mutated the receiver")
	}
}

func TestSettings_Equal(t *testing.T) {
	for _, tc := range []struct {
		a, b Settings
		want bool
	}{
		{Settings{}, Settings{}, true},
		{Settings{ResolverEnabled: true}, Settings{ResolverEnabled: true}, true},
		{Settings{ResolverEnabled: true}, Settings{AntiDeleteEnabled: true}, false},
		{Settings{true, true}, Settings{true, false}, false},
	} {
		if got := tc.a.Equal(tc.b); got != tc.want {
			t.Errorf("%+v.Equal(%+v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSettings_Diff(t *testing.T) {
	got := Settings{ResolverEnabled: true}.Diff(Settings{AntiDeleteEnabled: true})
	if len(got) != 2 || got[0] != FlagResolver || got[1] != FlagAntiDelete {
		t.Errorf("Diff = %v, want both flags", got)
	}
	if got := (Settings{}).Diff(Settings{}); len(got) != 0 {
		t.Errorf("Diff of equal values = %v, want empty", got)
	}
}

func TestSetFlag(t *testing.T) {
	for _, tc := range []struct {
		name   string
		value  bool
		wantOK bool
		want   Settings
	}{
		{FlagResolver, true, true, Settings{ResolverEnabled: true}},
		{FlagAntiDelete, true, true, Settings{AntiDeleteEnabled: true}},
		{"bogus", true, false, Settings{}},
	} {
		f, ok := SetFlag(tc.name, tc.value)
		if ok != tc.wantOK {
			t.Errorf("SetFlag(%q) ok = %v, want %v", tc.name, ok, tc.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if got := f(DefaultSettings()); got != tc.want {
			t.Errorf("SetFlag(%q)(default) = %+v, want %+v", tc.name, got, tc.want)
		}
		if v, _ := tc.want.Get(tc.name); !v {
			t.Errorf("Get(%q) = false after setting it", tc.name)
		}
	}
}

func TestIdentity(t *testing.T) {
	s := Settings{ResolverEnabled: true}
	if got := Identity(s); got != s {
		t.Errorf("Identity(%+v) = %+v", s, got)
	}
}

func TestPeerNamespace_String(t *testing.T) {
	for _, tc := range []struct {
		ns   PeerNamespace
		want string
	}{
		{NamespaceUser, "User"},
		{NamespaceGroup, "Group"},
		{NamespaceChannel, "Channel"},
		{NamespaceSecret, "Secret"},
		{NamespaceUnknown, "Unknown"},
		{PeerNamespace(42), "Unknown"},
	} {
		if got := tc.ns.String(); got != tc.want {
			t.Errorf("PeerNamespace(%d).String() = %q, want %q", tc.ns, got, tc.want)
		}
	}
}

func TestParseNamespace(t *testing.T) {
	for _, tc := range []struct {
		in     string
		want   PeerNamespace
		wantOK bool
	}{
		{"user", NamespaceUser, true},
		{"Channel", NamespaceChannel, true},
		{" GROUP ", NamespaceGroup, true},
		{"secret", NamespaceSecret, true},
		{"", NamespaceUnknown, true},
		{"robot", NamespaceUnknown, false},
	} {
		got, ok := ParseNamespace(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ParseNamespace(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestPeerID_JSON(t *testing.T) {
	data, err := json.Marshal(PeerID{Namespace: NamespaceChannel, ID: 42})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"namespace":"channel","id":42}` {
		t.Errorf("marshal = %s", data)
	}

	var p PeerID
	if err := json.Unmarshal([]byte(`{"namespace":"robot","id":1}`), &p); err == nil {
		t.Error("expected error for unknown namespace")
	}
}

func TestMessage_DeletedMarker(t *testing.T) {
	actor := &PeerID{Namespace: NamespaceUser, ID: 7}
	msg := Message{
		Text: "hello",
		Attributes: []Attribute{
			{Kind: AttributeOther, Name: "reply"},
		},
	}
	if msg.IsMarkedDeleted() {
		t.Fatal("fresh message should not be marked")
	}

	marked := msg.WithDeletedMarker(DeletedMarker{DeletedAt: 100, DeletedBy: actor})
	if len(msg.Attributes) != 1 {
		t.Errorf("WithDeletedMarker mutated the original attributes: %d", len(msg.Attributes))
	}
	m, ok := marked.DeletedMarker()
	if !ok {
		t.Fatal("expected marker after WithDeletedMarker")
	}
	if m.DeletedAt != 100 || m.DeletedBy == nil || m.DeletedBy.ID != 7 {
		t.Errorf("marker = %+v", m)
	}

	again := marked.WithDeletedMarker(DeletedMarker{DeletedAt: 200})
	if len(again.Attributes) != 2 {
		t.Errorf("second marker attached: %d attributes", len(again.Attributes))
	}
	if m, _ := again.DeletedMarker(); m.DeletedAt != 100 {
		t.Errorf("DeletedAt = %d, want first marker 100", m.DeletedAt)
	}
}

func TestMessage_FirstMarkerWins(t *testing.T) {
	msg := Message{Attributes: []Attribute{
		DeletedAttribute(DeletedMarker{DeletedAt: 1}),
		DeletedAttribute(DeletedMarker{DeletedAt: 2}),
	}}
	if m, _ := msg.DeletedMarker(); m.DeletedAt != 1 {
		t.Errorf("DeletedAt = %d, want 1", m.DeletedAt)
	}
}

func TestDeletedMarker_JSONKeys(t *testing.T) {
	data, err := json.Marshal(DeletedMarker{DeletedAt: 1700000000})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"dt":1700000000}` {
		t.Errorf("marshal = %s, want dp omitted", data)
	}
}

func TestDeletedMarker_Time(t *testing.T) {
	m := DeletedMarker{DeletedAt: 1700000000}
	if !m.Time().Equal(time.Unix(1700000000, 0)) {
		t.Errorf("Time() = %v", m.Time())
	}
}
