// Package sync periodically exports a settings snapshot to off-host
// destinations.
package sync

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/modflags/internal/metrics"
	"github.com/alfredjeanlab/modflags/internal/model"
)

// Destination is the interface for a sync target.
type Destination interface {
	// Write sends the snapshot document to the destination.
	Write(ctx context.Context, data []byte) error
}

// Scheduler exports snapshots on an interval. A tick whose settings match
// the last snapshot every destination accepted is skipped.
type Scheduler struct {
	source       Source
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	mu     sync.Mutex
	synced *model.Settings // last value all destinations accepted

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports from src to the given
// destinations at the specified interval.
func NewScheduler(src Source, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		source:       src,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// Start runs a sync immediately and then on every tick until Stop.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.SyncOnce(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.upToDate() {
					continue
				}
				s.SyncOnce(ctx)
			}
		}
	}()
}

// Stop cancels the scheduler and waits for an in-flight sync to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) upToDate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced != nil && *s.synced == s.source.Current()
}

// SyncOnce exports one snapshot to every destination regardless of whether
// the settings changed. It reports whether all destinations accepted it.
func (s *Scheduler) SyncOnce(ctx context.Context) bool {
	cur := s.source.Current()

	var buf bytes.Buffer
	if err := Export(ctx, s.source, &buf); err != nil {
		s.logger.Error("sync export failed", "err", err)
		metrics.IncSyncRun(false)
		return false
	}
	data := buf.Bytes()

	ok := true
	for _, dest := range s.destinations {
		if err := dest.Write(ctx, data); err != nil {
			s.logger.Error("sync destination write failed", "destination", destName(dest), "err", err)
			ok = false
		}
	}
	metrics.IncSyncRun(ok)

	s.mu.Lock()
	if ok {
		s.synced = &cur
	} else {
		s.synced = nil
	}
	s.mu.Unlock()

	s.logger.Info("sync completed", "destinations", len(s.destinations), "bytes", len(data), "ok", ok)
	return ok
}

func destName(d Destination) string {
	if n, ok := d.(interface{ String() string }); ok {
		return n.String()
	}
	return "unnamed"
}
