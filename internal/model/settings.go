package model

// Settings holds the two mod feature flags. Values are immutable; use the
// With* methods to derive a changed copy.
type Settings struct {
	ResolverEnabled   bool `json:"resolverEnabled"`
	AntiDeleteEnabled bool `json:"antiDeleteEnabled"`
}

// DefaultSettings returns the settings used when nothing has been persisted.
func DefaultSettings() Settings {
	return Settings{}
}

// WithResolverEnabled returns a copy of s with ResolverEnabled set to v.
func (s Settings) WithResolverEnabled(v bool) Settings {
	s.ResolverEnabled = v
	return s
}

// WithAntiDeleteEnabled returns a copy of s with AntiDeleteEnabled set to v.
func (s Settings) WithAntiDeleteEnabled(v bool) Settings {
	s.AntiDeleteEnabled = v
	return s
}

// Equal reports whether both flags match.
func (s Settings) Equal(o Settings) bool {
	return s == o
}

// Diff returns the JSON names of the flags that differ between s and o.
func (s Settings) Diff(o Settings) []string {
	var changed []string
	if s.ResolverEnabled != o.ResolverEnabled {
		changed = append(changed, FlagResolver)
	}
	if s.AntiDeleteEnabled != o.AntiDeleteEnabled {
		changed = append(changed, FlagAntiDelete)
	}
	return changed
}

// Flag names as they appear in the persisted payload and the HTTP API.
const (
	FlagResolver   = "resolverEnabled"
	FlagAntiDelete = "antiDeleteEnabled"
)

// Updater computes a new Settings value from the current one.
type Updater func(Settings) Settings

// Identity leaves the settings unchanged.
func Identity(s Settings) Settings { return s }

// SetResolverEnabled returns an Updater that sets the resolver flag.
func SetResolverEnabled(v bool) Updater {
	return func(s Settings) Settings { return s.WithResolverEnabled(v) }
}

// SetAntiDeleteEnabled returns an Updater that sets the anti-delete flag.
func SetAntiDeleteEnabled(v bool) Updater {
	return func(s Settings) Settings { return s.WithAntiDeleteEnabled(v) }
}

// SetFlag returns an Updater for the flag with the given JSON name, and
// false if the name is not a known flag.
func SetFlag(name string, v bool) (Updater, bool) {
	switch name {
	case FlagResolver:
		return SetResolverEnabled(v), true
	case FlagAntiDelete:
		return SetAntiDeleteEnabled(v), true
	}
	return nil, false
}

// Get returns the value of the flag with the given JSON name.
func (s Settings) Get(name string) (bool, bool) {
	switch name {
	case FlagResolver:
		return s.ResolverEnabled, true
	case FlagAntiDelete:
		return s.AntiDeleteEnabled, true
	}
	return false, false
}
