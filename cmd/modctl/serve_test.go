package main

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alfredjeanlab/modflags/internal/kv"
	"github.com/alfredjeanlab/modflags/internal/model"
	"github.com/alfredjeanlab/modflags/internal/server"
	"github.com/alfredjeanlab/modflags/internal/settings"
)

func TestHTTPShutdownEndsSettingsStream(t *testing.T) {
	store := settings.New(context.Background(), kv.NewMemory())
	t.Cleanup(store.Close)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	httpServer := newHTTPServer(lis.Addr().String(), server.New(store, nil).NewHTTPHandler(""), store)
	go func() { _ = httpServer.Serve(lis) }()

	resp, err := http.Get("http://" + lis.Addr().String() + "/v1/settings/stream")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	// Wait for the initial event so the handler holds a live subscription.
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		if strings.HasPrefix(sc.Text(), "data:") {
			break
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start := time.Now()
	if err := httpServer.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Shutdown took %v with an open settings stream", elapsed)
	}
}

// slowPublisher holds each Publish call for a while and counts calls in
// flight.
type slowPublisher struct {
	started  chan struct{}
	once     atomic.Bool
	inFlight atomic.Int32
}

func (p *slowPublisher) Publish(_ context.Context, _ string, _ any) error {
	p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	if p.once.CompareAndSwap(false, true) {
		close(p.started)
	}
	time.Sleep(50 * time.Millisecond)
	return nil
}

func (p *slowPublisher) Close() error { return nil }

func TestStartForwardStopWaitsForPublish(t *testing.T) {
	store := settings.New(context.Background(), kv.NewMemory())
	t.Cleanup(store.Close)
	pub := &slowPublisher{started: make(chan struct{})}

	stop := startForward(server.New(store, pub))

	// Keep changing settings until the forwarder has subscribed and
	// started publishing.
	deadline := time.After(5 * time.Second)
	for v := true; ; v = !v {
		if _, err := store.Update(context.Background(), model.SetResolverEnabled(v)); err != nil {
			t.Fatal(err)
		}
		select {
		case <-pub.started:
		case <-time.After(20 * time.Millisecond):
			continue
		case <-deadline:
			t.Fatal("forwarder never published")
		}
		break
	}

	stop()
	if n := pub.inFlight.Load(); n != 0 {
		t.Errorf("stop returned with %d publish calls still running", n)
	}
}
