package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alfredjeanlab/modflags/internal/idgen"
)

const (
	// sseHistorySize is the number of recent events kept for Last-Event-ID
	// reconnection on the event stream.
	sseHistorySize = 256

	sseKeepaliveInterval = 15 * time.Second

	// sseClientBuffer bounds each event-stream client; events beyond it are
	// dropped for that client.
	sseClientBuffer = 64

	// settingsEventName is the SSE event name used on the settings stream.
	settingsEventName = "settings"
)

// sseEvent is one event delivered on the event stream.
type sseEvent struct {
	ID    uint64
	Topic string
	Data  []byte
}

// sseHub fans published events out to event-stream clients and remembers
// the most recent ones for replay.
type sseHub struct {
	mu      sync.Mutex
	clients map[*sseClient]struct{}
	lastID  uint64
	history []sseEvent // oldest first, at most sseHistorySize
}

type sseClient struct {
	topics []string // patterns; empty matches everything
	ch     chan sseEvent
}

func newSSEHub() *sseHub {
	return &sseHub{clients: make(map[*sseClient]struct{})}
}

// broadcast assigns the next ID to the event, records it and offers it to
// every matching client without blocking.
func (h *sseHub) broadcast(topic string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastID++
	evt := sseEvent{ID: h.lastID, Topic: topic, Data: payload}
	if len(h.history) == sseHistorySize {
		copy(h.history, h.history[1:])
		h.history = h.history[:sseHistorySize-1]
	}
	h.history = append(h.history, evt)

	for c := range h.clients {
		if !c.wants(topic) {
			continue
		}
		select {
		case c.ch <- evt:
		default:
		}
	}
}

// subscribe registers a client and returns the recorded events after
// lastID that it should see first. Registration and replay happen under
// one lock, so nothing is missed or repeated in between.
func (h *sseHub) subscribe(topics []string, lastID uint64) (*sseClient, []sseEvent) {
	c := &sseClient{topics: topics, ch: make(chan sseEvent, sseClientBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}

	var replay []sseEvent
	if lastID > 0 {
		for _, evt := range h.history {
			if evt.ID > lastID && c.wants(evt.Topic) {
				replay = append(replay, evt)
			}
		}
	}
	return c, replay
}

func (h *sseHub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (c *sseClient) wants(topic string) bool {
	if len(c.topics) == 0 {
		return true
	}
	for _, p := range c.topics {
		if matchTopicPattern(p, topic) {
			return true
		}
	}
	return false
}

// matchTopicPattern matches a dot-separated topic NATS-style: "*" matches
// one segment and a trailing ">" matches one or more.
func matchTopicPattern(pattern, topic string) bool {
	if pattern == topic {
		return true
	}
	pat := strings.Split(pattern, ".")
	top := strings.Split(topic, ".")
	for i, p := range pat {
		if p == ">" {
			return i < len(top)
		}
		if i >= len(top) || (p != "*" && p != top[i]) {
			return false
		}
	}
	return len(pat) == len(top)
}

// startSSE writes the stream headers. It returns false after writing an
// error if w cannot stream.
func startSSE(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	if id, err := idgen.Stream(); err == nil {
		w.Header().Set("X-Stream-ID", id)
	}
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return flusher, true
}

func writeSSE(w http.ResponseWriter, id uint64, event string, data []byte) {
	fmt.Fprintf(w, "id:%d\n", id)
	fmt.Fprintf(w, "event:%s\n", event)
	fmt.Fprintf(w, "data:%s\n\n", data)
}

// handleSettingsStream handles GET /v1/settings/stream. The first event is
// the current settings; every change follows in order. IDs count events on
// this connection.
func (s *Server) handleSettingsStream(w http.ResponseWriter, r *http.Request) {
	sub := s.store.Subscribe()
	defer sub.Close()

	flusher, ok := startSSE(w)
	if !ok {
		return
	}

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	var seq uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case v, ok := <-sub.C():
			if !ok {
				return
			}
			data, err := json.Marshal(v)
			if err != nil {
				s.logger.Warn("failed to marshal settings for stream", "error", err)
				continue
			}
			seq++
			writeSSE(w, seq, settingsEventName, data)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}

// handleEventStream handles GET /v1/events/stream?topics=a,b. Clients that
// send Last-Event-ID receive the recorded events they missed first.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	var topics []string
	for _, t := range strings.Split(r.URL.Query().Get("topics"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	lastID, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)

	client, replay := s.sseHub.subscribe(topics, lastID)
	defer s.sseHub.unsubscribe(client)

	flusher, ok := startSSE(w)
	if !ok {
		return
	}
	for _, evt := range replay {
		writeSSE(w, evt.ID, evt.Topic, evt.Data)
	}
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-client.ch:
			writeSSE(w, evt.ID, evt.Topic, evt.Data)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}
