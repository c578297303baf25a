package settings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/modflags/internal/events"
	"github.com/alfredjeanlab/modflags/internal/kv"
	"github.com/alfredjeanlab/modflags/internal/model"
)

func TestSubscribe_ReplaysCurrent(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, kv.NewMemory())
	if _, err := s.Update(ctx, model.SetAntiDeleteEnabled(true)); err != nil {
		t.Fatal(err)
	}

	sub := s.Subscribe()
	defer sub.Close()
	if got := recv(t, sub); !got.AntiDeleteEnabled || got.ResolverEnabled {
		t.Errorf("replayed %+v, want anti-delete only", got)
	}
	expectNone(t, sub)
}

func TestSubscribe_ScenarioEnableResolver(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, kv.NewMemory())
	sub := s.Subscribe()
	defer sub.Close()

	if got := recv(t, sub); got != model.DefaultSettings() {
		t.Fatalf("initial = %+v", got)
	}
	if _, err := s.Update(ctx, model.SetResolverEnabled(true)); err != nil {
		t.Fatal(err)
	}
	if got := recv(t, sub); got != (model.Settings{ResolverEnabled: true}) {
		t.Errorf("after update = %+v", got)
	}
}

func TestSubscribe_IdentityNotNotified(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, kv.NewMemory())
	sub := s.Subscribe()
	defer sub.Close()
	recv(t, sub)

	if _, err := s.Update(ctx, model.Identity); err != nil {
		t.Fatal(err)
	}
	expectNone(t, sub)
}

func TestSubscribe_RepeatedValueNotifiedOnce(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, kv.NewMemory())
	sub := s.Subscribe()
	defer sub.Close()
	recv(t, sub)

	for i := 0; i < 3; i++ {
		if _, err := s.Update(ctx, model.SetResolverEnabled(true)); err != nil {
			t.Fatal(err)
		}
	}
	if got := recv(t, sub); !got.ResolverEnabled {
		t.Errorf("got %+v", got)
	}
	expectNone(t, sub)
}

func TestSubscribe_OrderedWithoutLoss(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, kv.NewMemory())
	sub := s.Subscribe()
	defer sub.Close()

	const n = 200
	toggle := func(v model.Settings) model.Settings { return v.WithResolverEnabled(!v.ResolverEnabled) }
	// Nobody reads while updating; the queue must absorb every change.
	for i := 0; i < n; i++ {
		if _, err := s.Update(ctx, toggle); err != nil {
			t.Fatal(err)
		}
	}

	if got := recv(t, sub); got.ResolverEnabled {
		t.Fatalf("initial = %+v", got)
	}
	for i := 1; i <= n; i++ {
		want := i%2 == 1
		if got := recv(t, sub); got.ResolverEnabled != want {
			t.Fatalf("value %d: resolver = %v, want %v", i, got.ResolverEnabled, want)
		}
	}
	expectNone(t, sub)
}

func TestSubscribe_ManySubscribersSeeSameSequence(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, kv.NewMemory())

	subs := make([]*Subscription, 5)
	for i := range subs {
		subs[i] = s.Subscribe()
		defer subs[i].Close()
	}
	seq := []model.Updater{
		model.SetResolverEnabled(true),
		model.SetAntiDeleteEnabled(true),
		model.SetResolverEnabled(false),
	}
	for _, f := range seq {
		if _, err := s.Update(ctx, f); err != nil {
			t.Fatal(err)
		}
	}

	want := []model.Settings{
		{},
		{ResolverEnabled: true},
		{ResolverEnabled: true, AntiDeleteEnabled: true},
		{AntiDeleteEnabled: true},
	}
	for i, sub := range subs {
		for j, w := range want {
			if got := recv(t, sub); got != w {
				t.Errorf("subscriber %d value %d = %+v, want %+v", i, j, got, w)
			}
		}
	}
}

// waitClosed drains sub until its channel is closed.
func waitClosed(t *testing.T, sub *Subscription) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.C():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription channel not closed")
		}
	}
}

func TestSubscription_Close(t *testing.T) {
	s := New(context.Background(), kv.NewMemory())
	sub := s.Subscribe()
	sub.Close()
	sub.Close()
	waitClosed(t, sub)
}

func TestStore_CloseEndsSubscriptions(t *testing.T) {
	s := New(context.Background(), kv.NewMemory())
	sub := s.Subscribe()
	s.Close()
	waitClosed(t, sub)

	// Subscribing to a closed store yields an already-closed subscription.
	waitClosed(t, s.Subscribe())
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := New(ctx, kv.NewMemory())

	got := make(chan model.Settings, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Watch(ctx, func(v model.Settings) { got <- v })
	}()

	if v := <-got; v != model.DefaultSettings() {
		t.Fatalf("first = %+v", v)
	}
	if _, err := s.Update(ctx, model.SetAntiDeleteEnabled(true)); err != nil {
		t.Fatal(err)
	}
	select {
	case v := <-got:
		if !v.AntiDeleteEnabled {
			t.Errorf("second = %+v", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []events.SettingsUpdated
	notify chan struct{}
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event.(events.SettingsUpdated))
	p.mu.Unlock()
	p.notify <- struct{}{}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestForward(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := New(ctx, kv.NewMemory())
	pub := &recordingPublisher{notify: make(chan struct{}, 8)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		Forward(ctx, s, pub, nil)
	}()

	// Wait until Forward has consumed the replayed value.
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		n := len(s.subs)
		s.mu.Unlock()
		if n == 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := s.Update(ctx, model.SetResolverEnabled(true)); err != nil {
		t.Fatal(err)
	}
	select {
	case <-pub.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
	}

	pub.mu.Lock()
	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1 (initial value must be skipped)", len(pub.events))
	}
	evt := pub.events[0]
	topic := pub.topics[0]
	pub.mu.Unlock()

	if topic != events.TopicSettingsUpdated {
		t.Errorf("topic = %q", topic)
	}
	if evt.ID == "" {
		t.Error("event ID is empty")
	}
	if !evt.Settings.ResolverEnabled || evt.Previous.ResolverEnabled {
		t.Errorf("event = %+v", evt)
	}
	if len(evt.Changed) != 1 || evt.Changed[0] != model.FlagResolver {
		t.Errorf("Changed = %v", evt.Changed)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Forward did not return after cancel")
	}
}
