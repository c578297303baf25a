package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alfredjeanlab/modflags/internal/metrics"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health and
// GET /metrics) must include a valid Authorization: Bearer <token> header.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("GET /v1/settings", s.handleGetSettings)
	mux.HandleFunc("PATCH /v1/settings", s.handlePatchSettings)
	mux.HandleFunc("GET /v1/settings/raw", s.handleGetRawSettings)
	mux.HandleFunc("GET /v1/settings/screen", s.handleGetScreen)
	mux.HandleFunc("POST /v1/settings/screen/{section}", s.handleScreenToggle)
	mux.HandleFunc("POST /v1/settings/flags/{flag}/toggle", s.handleToggleFlag)
	mux.HandleFunc("GET /v1/settings/stream", s.handleSettingsStream)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/format/identifier", s.handleFormatIdentifier)
	mux.HandleFunc("POST /v1/format/deleted", s.handleFormatDeleted)
	mux.HandleFunc("POST /v1/messages/delete", s.handleDeleteMessages)
	mux.HandleFunc("POST /v1/messages/render", s.handleRenderMessage)
	mux.HandleFunc("GET /v1/messages/{id}/label", s.handleMessageLabel)
	mux.HandleFunc("GET /v1/peers/{kind}/{id}/label", s.handlePeerLabel)
	mux.Handle("GET /metrics", metrics.Handler())
	return RequestLogger(s.logger, AuthMiddleware(authToken, mux))
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]string{"status": "ok", "settings_key": s.store.Key()}
	if err := s.store.LoadErr(); err != nil {
		resp["load_error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return inputError("request body is required")
		}
		return inputError("invalid JSON body: " + err.Error())
	}
	return nil
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Flush keeps SSE handlers working behind the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// RequestLogger logs method, route, status and duration for every request
// and records them as metrics.
func RequestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		duration := time.Since(start)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(r.Method, route, status, duration)

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "http request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", duration,
		)
	})
}
