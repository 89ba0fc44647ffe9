package receiver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/loyaltyhq/notify-agent/internal/channel"
	"github.com/loyaltyhq/notify-agent/internal/domain"
)

type fakeNotifier struct {
	mu     sync.Mutex
	shown  []domain.DisplayRecord
	closed []string
	fail   bool
	clicks chan domain.DisplayRecord
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{clicks: make(chan domain.DisplayRecord, 1)}
}

func (f *fakeNotifier) Show(rec domain.DisplayRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("display unavailable")
	}
	f.shown = append(f.shown, rec)
	return nil
}

func (f *fakeNotifier) Close(tag string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, tag)
}

func (f *fakeNotifier) Clicks() <-chan domain.DisplayRecord { return f.clicks }

func (f *fakeNotifier) lastShown(t *testing.T) domain.DisplayRecord {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.shown) == 0 {
		t.Fatal("nothing shown")
	}
	return f.shown[len(f.shown)-1]
}

type fakeHub struct {
	mu       sync.Mutex
	windows  int
	intents  []channel.ClickIntent
	delivers chan struct{}
}

func newFakeHub(windows int) *fakeHub {
	return &fakeHub{windows: windows, delivers: make(chan struct{}, 8)}
}

func (f *fakeHub) Deliver(intent channel.ClickIntent, origin string) int {
	f.mu.Lock()
	f.intents = append(f.intents, intent)
	f.mu.Unlock()
	f.delivers <- struct{}{}
	return f.windows
}

type fakeLauncher struct {
	mu      sync.Mutex
	targets []string
}

func (f *fakeLauncher) Open(target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, target)
	return nil
}

type fakeSource struct{ done chan struct{} }

func (f *fakeSource) Run(ctx context.Context, _ func(domain.PushPayload)) error {
	select {
	case <-ctx.Done():
	case <-f.done:
	}
	return nil
}

func (f *fakeSource) Close() {}

func countingFactory(calls *int, err error) SourceFactory {
	return func(domain.PushConfig) (PushSource, error) {
		*calls++
		if err != nil {
			return nil, err
		}
		return &fakeSource{done: make(chan struct{})}, nil
	}
}

func validConfig() domain.PushConfig {
	return domain.PushConfig{Brokers: []string{"localhost:9092"}, Topic: "push", GroupID: "agent"}
}

func TestEnsureInitialized_Idempotent(t *testing.T) {
	calls := 0
	r := New(Config{
		Notifier:  newFakeNotifier(),
		Hub:       newFakeHub(1),
		NewSource: countingFactory(&calls, nil),
	})

	if err := r.EnsureInitialized(validConfig()); err != nil {
		t.Fatal(err)
	}
	if err := r.EnsureInitialized(validConfig()); err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Fatalf("source factory called %d times, want 1", calls)
	}
	if r.State() != StateReady {
		t.Fatalf("state = %v, want ready", r.State())
	}
}

func TestEnsureInitialized_FailureLeavesGuardOpen(t *testing.T) {
	calls := 0
	factoryErr := errors.New("brokers unreachable")
	r := New(Config{Notifier: newFakeNotifier(), Hub: newFakeHub(1), NewSource: countingFactory(&calls, factoryErr)})

	if err := r.EnsureInitialized(validConfig()); err == nil {
		t.Fatal("expected init error")
	}
	if r.State() != StateFailed {
		t.Fatalf("state = %v, want failed", r.State())
	}

	// A later config push retries through the open guard.
	r.cfg.NewSource = countingFactory(&calls, nil)
	if err := r.HandleConfigPush(channel.ConfigPush{Type: channel.TypeConfig, Config: validConfig()}); err != nil {
		t.Fatal(err)
	}
	if r.State() != StateReady {
		t.Fatalf("state after retry = %v, want ready", r.State())
	}
	if calls != 2 {
		t.Fatalf("source factory called %d times, want 2", calls)
	}
}

func TestEnsureInitialized_RejectsIncompleteConfig(t *testing.T) {
	calls := 0
	r := New(Config{Notifier: newFakeNotifier(), Hub: newFakeHub(1), NewSource: countingFactory(&calls, nil)})

	if err := r.EnsureInitialized(domain.PushConfig{}); err == nil {
		t.Fatal("expected error for incomplete config")
	}
	if r.State() != StateUninitialized {
		t.Fatalf("state = %v, want uninitialized", r.State())
	}
	if calls != 0 {
		t.Fatal("factory must not run for incomplete config")
	}
}

func TestHandlePayload_FallbackChain(t *testing.T) {
	n := newFakeNotifier()
	r := New(Config{Notifier: n, Hub: newFakeHub(1)})

	r.HandlePayload(domain.PushPayload{
		Notification: &domain.PushNotification{Title: "Campaign live", Body: "Summer points"},
		Data:         &domain.PayloadData{NotificationID: "n-1", Title: "ignored"},
	})
	rec := n.lastShown(t)
	if rec.Title != "Campaign live" || rec.Body != "Summer points" || rec.Tag != "n-1" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	// Data-only payload falls back to data fields and keeps a non-empty tag.
	r.HandlePayload(domain.PushPayload{
		Data: &domain.PayloadData{Title: "From data", Message: "msg"},
	})
	rec = n.lastShown(t)
	if rec.Title != "From data" || rec.Body != "msg" {
		t.Fatalf("data fallback not applied: %+v", rec)
	}
	if rec.Tag == "" {
		t.Fatal("tag must never be empty")
	}
}

func TestHandlePayload_EmptyPayloadIgnored(t *testing.T) {
	n := newFakeNotifier()
	r := New(Config{Notifier: n, Hub: newFakeHub(1)})
	r.HandlePayload(domain.PushPayload{})
	if len(n.shown) != 0 {
		t.Fatal("empty payload must not display")
	}
}

func TestHandleClick_DeliversToConnectedWindows(t *testing.T) {
	n := newFakeNotifier()
	hub := newFakeHub(2)
	launcher := &fakeLauncher{}
	r := New(Config{Notifier: n, Hub: hub, Launcher: launcher, Origin: "app"})

	r.HandleClick(domain.DisplayRecord{
		Tag:  "n-1",
		Data: domain.PayloadData{CampaignID: "5", URL: "/x", PurchaseID: "9"},
	})

	<-hub.delivers
	if got := hub.intents[0].URL; got != "/admin/campaigns/5" {
		t.Fatalf("intent url = %q, want campaign path", got)
	}
	if len(n.closed) != 1 || n.closed[0] != "n-1" {
		t.Fatal("OS notification must be closed on click")
	}
	if len(launcher.targets) != 0 {
		t.Fatal("launcher must not run when windows are connected")
	}
}

func TestHandleClick_ZeroWindowsOpensAndResends(t *testing.T) {
	n := newFakeNotifier()
	hub := newFakeHub(0)
	launcher := &fakeLauncher{}
	r := New(Config{
		Notifier:    n,
		Hub:         hub,
		Launcher:    launcher,
		Origin:      "app",
		ResendDelay: 10 * time.Millisecond,
	})

	r.HandleClick(domain.DisplayRecord{Tag: "n-2", Data: domain.PayloadData{URL: "/x"}})

	<-hub.delivers // initial attempt, zero recipients
	launcher.mu.Lock()
	opened := len(launcher.targets) == 1 && launcher.targets[0] == "/x"
	launcher.mu.Unlock()
	if !opened {
		t.Fatalf("launcher targets = %v, want [/x]", launcher.targets)
	}

	select {
	case <-hub.delivers: // the delayed resend
	case <-time.After(time.Second):
		t.Fatal("click intent was not resent after window open")
	}
}

func TestStart_RoutesNotifierClicks(t *testing.T) {
	n := newFakeNotifier()
	hub := newFakeHub(1)
	r := New(Config{Notifier: n, Hub: hub, Origin: "app", NewSource: countingFactory(new(int), nil)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx, validConfig())

	n.clicks <- domain.DisplayRecord{Tag: "n-3", Data: domain.PayloadData{PurchaseID: "9"}}

	select {
	case <-hub.delivers:
	case <-time.After(time.Second):
		t.Fatal("notifier click was not routed")
	}
}
