// Package screen describes the mod settings screen as data: two sections,
// each a header, a toggle bound to one flag, and an explanatory note.
package screen

import "github.com/alfredjeanlab/modflags/internal/model"

const Title = "Mod Settings"

// Section IDs.
const (
	SectionResolver   = "resolver"
	SectionAntiDelete = "anti_delete"
)

type Toggle struct {
	Flag  string `json:"flag"`
	Title string `json:"title"`
	Value bool   `json:"value"`
}

type Section struct {
	ID     string `json:"id"`
	Header string `json:"header"`
	Toggle Toggle `json:"toggle"`
	Info   string `json:"info"`
}

type Screen struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Build returns the screen bound to s. Section order is fixed.
func Build(s model.Settings) Screen {
	return Screen{
		Title: Title,
		Sections: []Section{
			{
				ID:     SectionResolver,
				Header: "RESOLVER",
				Toggle: Toggle{Flag: model.FlagResolver, Title: "Enable Resolver", Value: s.ResolverEnabled},
				Info:   "Shows user ID when viewing profiles. Allows you to see the numeric ID of any user, group, or channel.",
			},
			{
				ID:     SectionAntiDelete,
				Header: "ANTI-DELETE",
				Toggle: Toggle{Flag: model.FlagAntiDelete, Title: "Enable Anti-Delete", Value: s.AntiDeleteEnabled},
				Info:   `When someone deletes a message, it will be marked as "deleted" instead of being removed. You can still see the original content.`,
			},
		},
	}
}

// Updater returns the settings change for flipping the toggle in the given
// section to v, and false for an unknown section.
func Updater(sectionID string, v bool) (model.Updater, bool) {
	switch sectionID {
	case SectionResolver:
		return model.SetResolverEnabled(v), true
	case SectionAntiDelete:
		return model.SetAntiDeleteEnabled(v), true
	}
	return nil, false
}
