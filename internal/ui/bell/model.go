// Package bell is the persistent notification affordance: an unread
// badge, a dropdown listing the session's notifications newest-first,
// and the permission affordance for the current gate state.
package bell

import (
	"context"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/loyaltyhq/notify-agent/internal/domain"
	"github.com/loyaltyhq/notify-agent/internal/permission"
	"github.com/loyaltyhq/notify-agent/internal/store"
	"github.com/loyaltyhq/notify-agent/internal/ui/theme"
	"github.com/loyaltyhq/notify-agent/internal/ui/uimsg"
)

// Affordance is the permission control surfaced in the dropdown.
// Exactly one applies at a time.
type Affordance int

const (
	// AffordanceNone: host unsupported, no permission controls at all.
	AffordanceNone Affordance = iota
	// AffordanceEnable: permission undecided, offer to request it.
	AffordanceEnable
	// AffordanceBlocked: denied, show manual-enable instructions.
	AffordanceBlocked
	// AffordanceActive: granted, informational only.
	AffordanceActive
)

// pollMsg re-reads the permission state while the dropdown is open.
// The generation makes closing the dropdown an idempotent cancel.
type pollMsg struct{ seq int }

// Model is the bell component.
type Model struct {
	store *store.Store
	gate  *permission.Gate

	open    bool
	cursor  int
	perm    permission.State
	seq     int
	polling time.Duration

	now func() time.Time
}

// New creates a bell bound to the window's store and permission gate.
func New(s *store.Store, gate *permission.Gate, pollEvery time.Duration) Model {
	return Model{store: s, gate: gate, polling: pollEvery, perm: gate.Get(), now: time.Now}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Open reports whether the dropdown is showing.
func (m Model) Open() bool {
	return m.open
}

// BadgeText renders the unread count: literal up to 9, then "9+",
// empty when nothing is unread.
func (m Model) BadgeText() string {
	n := m.store.UnreadCount()
	switch {
	case n == 0:
		return ""
	case n > 9:
		return "9+"
	default:
		return strconv.Itoa(n)
	}
}

// Affordance picks the permission control for the current state.
func (m Model) Affordance() Affordance {
	if !m.gate.IsSupported() {
		return AffordanceNone
	}
	switch m.perm {
	case permission.StateDenied:
		return AffordanceBlocked
	case permission.StateGranted:
		return AffordanceActive
	default:
		return AffordanceEnable
	}
}

// Update handles toggling, dropdown navigation, per-item actions and
// the permission poll.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case pollMsg:
		// Stale generation or closed dropdown: the poll was cancelled.
		if msg.seq != m.seq || !m.open {
			return m, nil
		}
		m.perm = m.gate.Get()
		return m, m.pollTick()

	case uimsg.PermissionResult:
		m.perm = msg.State
		return m, nil

	case uimsg.StoreChanged:
		if n := m.store.Len(); m.cursor >= n && n > 0 {
			m.cursor = n - 1
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "b":
		return m.toggle()
	case "esc":
		if m.open {
			return m.toggle()
		}
	case "up", "k":
		if m.open && m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.open && m.cursor < m.store.Len()-1 {
			m.cursor++
		}
	case "enter":
		if n, ok := m.selected(); ok {
			m.store.MarkAsRead(n.ID)
		}
	case "x":
		if n, ok := m.selected(); ok {
			m.store.Remove(n.ID)
		}
	case "a":
		if m.open {
			m.store.MarkAllAsRead()
		}
	case "e":
		// Requesting permission is tied to this explicit key press:
		// platforms ignore requests without a user gesture.
		if m.open && m.Affordance() == AffordanceEnable {
			gate := m.gate
			return m, func() tea.Msg {
				state, err := gate.Request(context.Background())
				if err != nil {
					return uimsg.PermissionResult{State: permission.StateDefault}
				}
				return uimsg.PermissionResult{State: state}
			}
		}
	}
	return m, nil
}

// toggle opens or closes the dropdown. Opening re-reads the permission
// state and starts the poll; closing bumps the generation, which
// cancels any in-flight poll timer.
func (m Model) toggle() (Model, tea.Cmd) {
	m.open = !m.open
	m.seq++
	if !m.open {
		return m, nil
	}
	m.perm = m.gate.Get()
	m.cursor = 0
	return m, m.pollTick()
}

func (m Model) pollTick() tea.Cmd {
	seq := m.seq
	return tea.Tick(m.polling, func(time.Time) tea.Msg { return pollMsg{seq: seq} })
}

// items returns the dropdown entries, newest-first.
func (m Model) items() []domain.Notification {
	entries := m.store.Notifications()
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

func (m Model) selected() (domain.Notification, bool) {
	if !m.open {
		return domain.Notification{}, false
	}
	entries := m.items()
	if m.cursor < 0 || m.cursor >= len(entries) {
		return domain.Notification{}, false
	}
	return entries[m.cursor], true
}

// View renders the bell and, when open, the dropdown.
func (m Model) View() string {
	head := "🔔"
	if badge := m.BadgeText(); badge != "" {
		head += " " + theme.BadgeStyle.Render(badge)
	}
	if !m.open {
		return head
	}

	var b strings.Builder
	b.WriteString(m.permissionLine())

	entries := m.items()
	if len(entries) == 0 {
		b.WriteString("\nNo notifications")
	}
	now := m.now()
	for i, n := range entries {
		line := theme.Icon(n.Type) + " " + n.Title + " · " + theme.RelativeAge(n.CreatedAt, now)
		style := theme.ReadStyle
		if !n.Read {
			style = theme.UnreadStyle.Foreground(theme.Color(n.Type))
		}
		line = style.Render(line)
		if i == m.cursor {
			line = theme.SelectedStyle.Render(line)
		}
		b.WriteString("\n" + line)
	}

	dropdown := theme.DropdownStyle.Render(b.String())
	return lipgloss.JoinVertical(lipgloss.Left, head, dropdown)
}

func (m Model) permissionLine() string {
	switch m.Affordance() {
	case AffordanceBlocked:
		return "Notifications blocked — enable them in your system settings"
	case AffordanceEnable:
		return "Press e to enable desktop notifications"
	case AffordanceActive:
		return "Desktop notifications active"
	default:
		return "Desktop notifications unavailable on this system"
	}
}
