// Package server exposes the settings store and the mod helpers over HTTP
// and gRPC.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/modflags/internal/antidelete"
	"github.com/alfredjeanlab/modflags/internal/events"
	"github.com/alfredjeanlab/modflags/internal/resolver"
	"github.com/alfredjeanlab/modflags/internal/settings"
)

// Server wires the settings store to its consumers.
type Server struct {
	store      *settings.Store
	publisher  events.Publisher
	antiDelete *antidelete.Manager
	resolver   *resolver.Helper
	location   *time.Location
	logger     *slog.Logger
	sseHub     *sseHub
}

// Option configures a Server.
type Option func(*Server)

// WithLocation sets the time zone deleted-message captions are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Server backed by store. Events go to p and to clients of
// the HTTP event stream.
func New(store *settings.Store, p events.Publisher, opts ...Option) *Server {
	s := &Server{
		store:    store,
		location: time.UTC,
		logger:   slog.Default(),
		sseHub:   newSSEHub(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if p == nil {
		p = events.NoopPublisher{}
	}
	s.publisher = &hubPublisher{next: p, hub: s.sseHub, logger: s.logger}
	s.antiDelete = antidelete.New(store, antidelete.WithPublisher(s.publisher), antidelete.WithLogger(s.logger))
	s.resolver = resolver.New(store)
	return s
}

// Forward publishes settings changes until ctx is cancelled.
func (s *Server) Forward(ctx context.Context) {
	settings.Forward(ctx, s.store, s.publisher, s.logger)
}

// hubPublisher publishes to the event bus and broadcasts the same event to
// SSE clients. Both are best-effort.
type hubPublisher struct {
	next   events.Publisher
	hub    *sseHub
	logger *slog.Logger
}

func (p *hubPublisher) Publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to marshal event for SSE broadcast", "topic", topic, "error", err)
	} else {
		p.hub.broadcast(topic, payload)
	}
	return p.next.Publish(ctx, topic, event)
}

// Close is a no-op; the wrapped publisher is owned by the caller.
func (p *hubPublisher) Close() error { return nil }

// inputError indicates invalid user input.
// Transport layers map this to 400 / InvalidArgument.
type inputError string

func (e inputError) Error() string { return string(e) }
