package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/alfredjeanlab/modflags/internal/kv"
	"github.com/alfredjeanlab/modflags/internal/model"
	"github.com/alfredjeanlab/modflags/internal/screen"
	"github.com/alfredjeanlab/modflags/internal/settings"
)

// handleGetSettings handles GET /v1/settings.
func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Current())
}

// settingsPatch is the body of PATCH /v1/settings. Absent fields are left
// unchanged.
type settingsPatch struct {
	ResolverEnabled   *bool `json:"resolverEnabled"`
	AntiDeleteEnabled *bool `json:"antiDeleteEnabled"`
}

func (p settingsPatch) updater() (model.Updater, error) {
	if p.ResolverEnabled == nil && p.AntiDeleteEnabled == nil {
		return nil, inputError("at least one of resolverEnabled, antiDeleteEnabled is required")
	}
	return func(cur model.Settings) model.Settings {
		if p.ResolverEnabled != nil {
			cur = cur.WithResolverEnabled(*p.ResolverEnabled)
		}
		if p.AntiDeleteEnabled != nil {
			cur = cur.WithAntiDeleteEnabled(*p.AntiDeleteEnabled)
		}
		return cur
	}, nil
}

// updateResponse reports an applied update. Warning is set when the new
// value could not be persisted.
type updateResponse struct {
	settings.UpdateResult
	Warning string `json:"warning,omitempty"`
}

// handlePatchSettings handles PATCH /v1/settings.
func (s *Server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch settingsPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f, err := patch.updater()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.applyUpdate(w, r, f)
}

// handleToggleFlag handles POST /v1/settings/flags/{flag}/toggle. The flip
// happens inside a single update, so concurrent toggles never cancel out.
func (s *Server) handleToggleFlag(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("flag")
	if _, ok := model.DefaultSettings().Get(name); !ok {
		writeError(w, http.StatusNotFound, "unknown flag "+name)
		return
	}
	s.applyUpdate(w, r, func(cur model.Settings) model.Settings {
		v, _ := cur.Get(name)
		f, _ := model.SetFlag(name, !v)
		return f(cur)
	})
}

// screenToggle is the body of POST /v1/settings/screen/{section}.
type screenToggle struct {
	Value bool `json:"value"`
}

// handleScreenToggle handles POST /v1/settings/screen/{section}, the action
// behind a toggle on the settings screen. It responds with the updated screen.
func (s *Server) handleScreenToggle(w http.ResponseWriter, r *http.Request) {
	var req screenToggle
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	section := r.PathValue("section")
	f, ok := screen.Updater(section, req.Value)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown section "+section)
		return
	}

	res, err := s.store.Update(r.Context(), f)
	if err != nil && !isPersistError(err) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, screen.Build(res.Settings))
}

func (s *Server) applyUpdate(w http.ResponseWriter, r *http.Request, f model.Updater) {
	res, err := s.store.Update(r.Context(), f)
	resp := updateResponse{UpdateResult: res}
	if err != nil {
		if !isPersistError(err) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Warning = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func isPersistError(err error) bool {
	var pe *settings.PersistError
	return errors.As(err, &pe)
}

// rawEntry is the stored record as returned by GET /v1/settings/raw. A
// payload that is not valid JSON is returned as text in Corrupt.
type rawEntry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value,omitempty"`
	Corrupt   string          `json:"corrupt,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// handleGetRawSettings handles GET /v1/settings/raw.
func (s *Server) handleGetRawSettings(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.Raw(r.Context())
	if errors.Is(err, kv.ErrNotFound) {
		writeError(w, http.StatusNotFound, "nothing persisted under "+s.store.Key())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := rawEntry{Key: e.Key}
	if json.Valid(e.Value) {
		out.Value = e.Value
	} else {
		out.Corrupt = string(e.Value)
	}
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		out.UpdatedAt = &t
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetScreen handles GET /v1/settings/screen.
func (s *Server) handleGetScreen(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, screen.Build(s.store.Current()))
}
