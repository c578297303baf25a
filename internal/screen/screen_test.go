package screen

import (
	"testing"

	"github.com/alfredjeanlab/modflags/internal/model"
)

func TestBuild(t *testing.T) {
	sc := Build(model.Settings{AntiDeleteEnabled: true})
	if sc.Title != "Mod Settings" {
		t.Errorf("Title = %q", sc.Title)
	}
	if len(sc.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sc.Sections))
	}
	for i, want := range []struct {
		id, header, flag string
		value            bool
	}{
		{SectionResolver, "RESOLVER", model.FlagResolver, false},
		{SectionAntiDelete, "ANTI-DELETE", model.FlagAntiDelete, true},
	} {
		got := sc.Sections[i]
		if got.ID != want.id || got.Header != want.header || got.Toggle.Flag != want.flag || got.Toggle.Value != want.value {
			t.Errorf("section %d = %+v", i, got)
		}
		if got.Info == "" || got.Toggle.Title == "" {
			t.Errorf("section %d missing text: %+v", i, got)
		}
	}
}

func TestUpdater(t *testing.T) {
	for _, tc := range []struct {
		section string
		want    model.Settings
		ok      bool
	}{
		{SectionResolver, model.Settings{ResolverEnabled: true}, true},
		{SectionAntiDelete, model.Settings{AntiDeleteEnabled: true}, true},
		{"other", model.Settings{}, false},
	} {
		f, ok := Updater(tc.section, true)
		if ok != tc.ok {
			t.Errorf("Updater(%q) ok = %v", tc.section, ok)
			continue
		}
		if ok && f(model.DefaultSettings()) != tc.want {
			t.Errorf("Updater(%q) = %+v", tc.section, f(model.DefaultSettings()))
		}
	}
}
