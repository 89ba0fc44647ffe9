// Package toast shows a transient pop-up for newly arrived unread
// notifications. A per-window shown-ids set guarantees an entry
// triggers at most one toast for the lifetime of the window, no matter
// how often the store re-emits.
package toast

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/loyaltyhq/notify-agent/internal/domain"
	"github.com/loyaltyhq/notify-agent/internal/store"
	"github.com/loyaltyhq/notify-agent/internal/ui/theme"
	"github.com/loyaltyhq/notify-agent/internal/ui/uimsg"
)

type phase int

const (
	phaseHidden phase = iota
	phaseVisible
	phaseFading
)

// hideMsg and clearMsg carry the timer generation that scheduled them;
// a stale generation means the timer was cancelled and the message is
// ignored, which makes cancellation idempotent.
type hideMsg struct{ seq int }
type clearMsg struct{ seq int }

// Model is the toast component.
type Model struct {
	store *store.Store

	shown   map[string]struct{}
	current *domain.Notification
	phase   phase
	seq     int

	visibleFor time.Duration
	fadeFor    time.Duration
}

// New creates a toast bound to the window's store.
func New(s *store.Store, visibleFor, fadeFor time.Duration) Model {
	return Model{
		store:      s,
		shown:      make(map[string]struct{}),
		visibleFor: visibleFor,
		fadeFor:    fadeFor,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles store changes and the two-phase dismiss timers.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case uimsg.StoreChanged:
		if m.phase == phaseHidden {
			return m.evaluate()
		}
		// A toast is on screen; queued entries are picked up once it
		// clears.
		return m, nil

	case hideMsg:
		if msg.seq != m.seq || m.phase != phaseVisible {
			return m, nil
		}
		m.phase = phaseFading
		seq := m.seq
		return m, tea.Tick(m.fadeFor, func(time.Time) tea.Msg { return clearMsg{seq: seq} })

	case clearMsg:
		if msg.seq != m.seq || m.phase != phaseFading {
			return m, nil
		}
		m.current = nil
		m.phase = phaseHidden
		return m.evaluate()
	}
	return m, nil
}

// evaluate shows the first unread entry not yet in the shown set, if
// any. The set is monotonic: ids are only ever added, so a re-emitted
// entry can never toast twice.
func (m Model) evaluate() (Model, tea.Cmd) {
	for _, n := range m.store.Notifications() {
		if n.Read {
			continue
		}
		if _, ok := m.shown[n.ID]; ok {
			continue
		}
		m.shown[n.ID] = struct{}{}
		entry := n
		m.current = &entry
		m.phase = phaseVisible
		m.seq++
		seq := m.seq
		return m, tea.Tick(m.visibleFor, func(time.Time) tea.Msg { return hideMsg{seq: seq} })
	}
	return m, nil
}

// Visible reports whether a toast is currently on screen.
func (m Model) Visible() bool {
	return m.phase != phaseHidden && m.current != nil
}

// View renders the toast, or nothing when hidden.
func (m Model) View() string {
	if !m.Visible() {
		return ""
	}
	body := theme.Icon(m.current.Type) + " " + m.current.Title + "\n" + m.current.Message
	if m.phase == phaseFading {
		return theme.ToastFadingStyle.Render(body)
	}
	return theme.ToastStyle.BorderForeground(theme.Color(m.current.Type)).Render(body)
}
