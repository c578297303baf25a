package settings

import (
	"fmt"

	"github.com/alfredjeanlab/modflags/internal/model"
)

// DecodeError reports a persisted payload that could not be read. The store
// recovers from it by falling back to the default settings.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("decode settings: %v", e.Err)
	}
	return fmt.Sprintf("decode settings %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// PersistError reports that an update was applied in memory and published
// but could not be written to durable storage. It is a warning: the update
// itself is not rolled back.
type PersistError struct {
	Key      string
	Settings model.Settings
	Err      error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist settings %q: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
