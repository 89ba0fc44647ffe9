package channel

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/loyaltyhq/notify-agent/internal/domain"
)

func decodeIntent(t *testing.T, frame []byte) ClickIntent {
	t.Helper()
	s := string(frame)
	i := strings.Index(s, "data: ")
	if i < 0 {
		t.Fatalf("frame has no data line: %q", s)
	}
	payload := strings.TrimSuffix(s[i+len("data: "):], "\n\n")
	var intent ClickIntent
	if err := json.Unmarshal([]byte(payload), &intent); err != nil {
		t.Fatalf("undecodable frame %q: %v", s, err)
	}
	return intent
}

func TestDeliver_AllMatchesReceiveOnlyFirstFocused(t *testing.T) {
	h := NewHub()
	a := make(chan []byte, 1)
	b := make(chan []byte, 1)
	h.Register("win-a", "app", a)
	h.Register("win-b", "app", b)

	intent := NewClickIntent("/admin/campaigns/5", domain.PayloadData{CampaignID: "5"})
	if got := h.Deliver(intent, "app"); got != 2 {
		t.Fatalf("delivered to %d windows, want 2", got)
	}

	first := decodeIntent(t, <-a)
	second := decodeIntent(t, <-b)
	if !first.Focus {
		t.Fatal("first matching window must be focused")
	}
	if second.Focus {
		t.Fatal("only one window may be focused per delivery")
	}
	if first.URL != "/admin/campaigns/5" || second.URL != "/admin/campaigns/5" {
		t.Fatal("all matching windows must receive the intent")
	}
}

func TestDeliver_OriginMismatchSkipped(t *testing.T) {
	h := NewHub()
	other := make(chan []byte, 1)
	h.Register("win-x", "other-origin", other)

	if got := h.Deliver(NewClickIntent("/x", domain.PayloadData{}), "app"); got != 0 {
		t.Fatalf("delivered to %d windows, want 0", got)
	}
	select {
	case <-other:
		t.Fatal("window with different origin received intent")
	default:
	}
}

func TestDeliver_ZeroWindows(t *testing.T) {
	h := NewHub()
	if got := h.Deliver(NewClickIntent("/x", domain.PayloadData{}), "app"); got != 0 {
		t.Fatalf("delivered to %d windows, want 0", got)
	}
}

func TestDeliver_FullBufferDropsWithoutBlocking(t *testing.T) {
	h := NewHub()
	full := make(chan []byte) // unbuffered, nobody reading
	ok := make(chan []byte, 1)
	h.Register("win-full", "app", full)
	h.Register("win-ok", "app", ok)

	if got := h.Deliver(NewClickIntent("/x", domain.PayloadData{}), "app"); got != 1 {
		t.Fatalf("delivered to %d windows, want 1", got)
	}
	intent := decodeIntent(t, <-ok)
	if !intent.Focus {
		t.Fatal("first successful delivery should carry focus")
	}
}

func TestUnregister(t *testing.T) {
	h := NewHub()
	ch := make(chan []byte, 1)
	w := h.Register("win-a", "app", ch)
	if h.WindowCount() != 1 {
		t.Fatalf("count = %d, want 1", h.WindowCount())
	}
	h.Unregister(w)
	if h.WindowCount() != 0 {
		t.Fatalf("count = %d, want 0", h.WindowCount())
	}
	if got := h.Deliver(NewClickIntent("/x", domain.PayloadData{}), "app"); got != 0 {
		t.Fatal("unregistered window still receives intents")
	}
}
