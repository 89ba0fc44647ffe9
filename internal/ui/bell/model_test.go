package bell

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/loyaltyhq/notify-agent/internal/domain"
	"github.com/loyaltyhq/notify-agent/internal/permission"
	"github.com/loyaltyhq/notify-agent/internal/store"
)

type fixedBackend struct {
	supported bool
	state     permission.State
}

func (f *fixedBackend) Supported() bool { return f.supported }
func (f *fixedBackend) Current() permission.State { return f.state }
func (f *fixedBackend) Prompt(context.Context) (permission.State, error) {
	return f.state, nil
}

func newModel(states ...domain.Notification) (Model, *store.Store, *fixedBackend) {
	s := store.New()
	for _, n := range states {
		s.Add(n)
	}
	b := &fixedBackend{supported: true, state: permission.StateDefault}
	return New(s, permission.NewGate(b), 50*time.Millisecond), s, b
}

func unread(id string) domain.Notification {
	return domain.Notification{ID: id, Title: "t-" + id, CreatedAt: time.Now()}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBadgeText(t *testing.T) {
	m, s, _ := newModel()
	if got := m.BadgeText(); got != "" {
		t.Fatalf("empty store badge = %q, want empty", got)
	}

	for i := 0; i < 5; i++ {
		s.Add(unread(string(rune('a' + i))))
	}
	if got := m.BadgeText(); got != "5" {
		t.Fatalf("badge = %q, want 5", got)
	}

	for i := 5; i < 9; i++ {
		s.Add(unread(string(rune('a' + i))))
	}
	if got := m.BadgeText(); got != "9" {
		t.Fatalf("badge = %q, want 9", got)
	}

	s.Add(unread("j"))
	if got := m.BadgeText(); got != "9+" {
		t.Fatalf("badge = %q, want 9+", got)
	}
}

func TestAffordance_MutuallyExclusive(t *testing.T) {
	m, _, b := newModel()

	b.supported = false
	if got := m.Affordance(); got != AffordanceNone {
		t.Fatalf("unsupported affordance = %v, want none", got)
	}

	b.supported = true
	m.perm = permission.StateDefault
	if got := m.Affordance(); got != AffordanceEnable {
		t.Fatalf("default affordance = %v, want enable", got)
	}

	m.perm = permission.StateDenied
	if got := m.Affordance(); got != AffordanceBlocked {
		t.Fatalf("denied affordance = %v, want blocked", got)
	}

	m.perm = permission.StateGranted
	if got := m.Affordance(); got != AffordanceActive {
		t.Fatalf("granted affordance = %v, want active", got)
	}
}

func TestToggle_StartsAndCancelsPoll(t *testing.T) {
	m, _, b := newModel()

	m, cmd := m.Update(key("b"))
	if !m.Open() {
		t.Fatal("bell did not open")
	}
	if cmd == nil {
		t.Fatal("opening must start the permission poll")
	}
	openSeq := m.seq

	// Poll re-reads platform state and reschedules while open.
	b.state = permission.StateGranted
	m, cmd = m.Update(pollMsg{seq: openSeq})
	if m.perm != permission.StateGranted {
		t.Fatal("poll did not pick up the platform change")
	}
	if cmd == nil {
		t.Fatal("poll must reschedule while the dropdown is open")
	}

	// Closing cancels: a late tick from the old generation is a no-op.
	m, _ = m.Update(key("b"))
	b.state = permission.StateDenied
	m, cmd = m.Update(pollMsg{seq: openSeq})
	if cmd != nil {
		t.Fatal("cancelled poll must not reschedule")
	}
	if m.perm != permission.StateGranted {
		t.Fatal("cancelled poll must not mutate state")
	}
}

func TestDropdown_NewestFirstAndActions(t *testing.T) {
	m, s, _ := newModel(unread("old"), unread("new"))

	m, _ = m.Update(key("b"))

	// Cursor starts on the newest entry.
	n, ok := m.selected()
	if !ok || n.ID != "new" {
		t.Fatalf("selected = %+v, want newest entry", n)
	}

	m, _ = m.Update(key("enter"))
	if s.UnreadCount() != 1 {
		t.Fatal("enter must mark the selected entry read")
	}

	m, _ = m.Update(key("x"))
	if s.Len() != 1 || s.Notifications()[0].ID != "old" {
		t.Fatal("x must remove the selected entry")
	}

	m, _ = m.Update(key("a"))
	if s.UnreadCount() != 0 {
		t.Fatal("a must mark everything read")
	}
	_ = m
}
