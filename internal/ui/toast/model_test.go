package toast

import (
	"testing"
	"time"

	"github.com/loyaltyhq/notify-agent/internal/domain"
	"github.com/loyaltyhq/notify-agent/internal/store"
	"github.com/loyaltyhq/notify-agent/internal/ui/uimsg"
)

func unread(id string) domain.Notification {
	return domain.Notification{ID: id, Title: "t-" + id, Message: "m-" + id, CreatedAt: time.Now()}
}

func dismiss(m Model) Model {
	m, _ = m.Update(hideMsg{seq: m.seq})
	m, _ = m.Update(clearMsg{seq: m.seq})
	return m
}

func TestShowsFirstUnreadOnly(t *testing.T) {
	s := store.New()
	s.Add(unread("a"))
	s.Add(unread("b"))

	m := New(s, time.Second, 100*time.Millisecond)
	m, cmd := m.Update(uimsg.StoreChanged{})

	if !m.Visible() || m.current.ID != "a" {
		t.Fatalf("expected toast for a, got %+v", m.current)
	}
	if cmd == nil {
		t.Fatal("visible toast must schedule its hide timer")
	}

	// Further store emissions while visible do not replace the toast.
	m, _ = m.Update(uimsg.StoreChanged{})
	if m.current.ID != "a" {
		t.Fatal("toast replaced while still visible")
	}
}

func TestQueuedEntriesPickedUpAfterDismiss(t *testing.T) {
	s := store.New()
	s.Add(unread("a"))
	s.Add(unread("b"))

	m := New(s, time.Second, 100*time.Millisecond)
	m, _ = m.Update(uimsg.StoreChanged{})

	m = dismiss(m)
	if !m.Visible() || m.current.ID != "b" {
		t.Fatalf("queued entry not picked up, got %+v", m.current)
	}
}

func TestShownIDsAreMonotonic(t *testing.T) {
	s := store.New()
	s.Add(unread("a"))

	m := New(s, time.Second, 100*time.Millisecond)
	m, _ = m.Update(uimsg.StoreChanged{})
	if m.current.ID != "a" {
		t.Fatal("expected toast for a")
	}

	m = dismiss(m)
	if m.Visible() {
		t.Fatal("nothing new to show, toast must stay hidden")
	}

	// The store re-emits with a still present and unread; a must not
	// toast again.
	m, _ = m.Update(uimsg.StoreChanged{})
	if m.Visible() {
		t.Fatal("already-shown entry toasted twice")
	}

	// A genuinely new entry still gets its toast.
	s.Add(unread("c"))
	m, _ = m.Update(uimsg.StoreChanged{})
	if !m.Visible() || m.current.ID != "c" {
		t.Fatalf("new entry not shown, got %+v", m.current)
	}
}

func TestReadEntriesNeverToast(t *testing.T) {
	s := store.New()
	n := unread("a")
	n.Read = true
	s.Add(n)

	m := New(s, time.Second, 100*time.Millisecond)
	m, _ = m.Update(uimsg.StoreChanged{})
	if m.Visible() {
		t.Fatal("read entry must not toast")
	}
}

func TestStaleTimersAreIgnored(t *testing.T) {
	s := store.New()
	s.Add(unread("a"))
	s.Add(unread("b"))

	m := New(s, time.Second, 100*time.Millisecond)
	m, _ = m.Update(uimsg.StoreChanged{})
	staleSeq := m.seq

	m = dismiss(m) // now showing b with a new seq

	// The old toast's timers firing late must not touch the new one.
	m, _ = m.Update(hideMsg{seq: staleSeq})
	m, _ = m.Update(clearMsg{seq: staleSeq})
	if !m.Visible() || m.current.ID != "b" {
		t.Fatal("stale timer dismissed the active toast")
	}
}

func TestTwoPhaseDismiss(t *testing.T) {
	s := store.New()
	s.Add(unread("a"))

	m := New(s, time.Second, 100*time.Millisecond)
	m, _ = m.Update(uimsg.StoreChanged{})

	m, cmd := m.Update(hideMsg{seq: m.seq})
	if m.phase != phaseFading {
		t.Fatal("hide must enter the fading phase, not clear immediately")
	}
	if cmd == nil {
		t.Fatal("fading must schedule the clear timer")
	}
	if m.View() == "" {
		t.Fatal("content must survive until the fade completes")
	}

	m, _ = m.Update(clearMsg{seq: m.seq})
	if m.Visible() || m.View() != "" {
		t.Fatal("clear must remove the content")
	}
}
