// Package banner offers to re-request notification permission when the
// user has denied it. Dismissing it is remembered for the rest of the
// session; the user can opt into a permanent dismissal instead.
package banner

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/loyaltyhq/notify-agent/internal/permission"
	"github.com/loyaltyhq/notify-agent/internal/ui/theme"
	"github.com/loyaltyhq/notify-agent/internal/ui/uimsg"
)

// pollMsg re-reads the permission state on a fixed interval. The
// generation makes teardown an idempotent cancel.
type pollMsg struct{ seq int }

// Model is the banner component.
type Model struct {
	gate *permission.Gate

	perm      permission.State
	dismissed bool
	stopped   bool
	seq       int
	polling   time.Duration

	// persistDismiss records a permanent dismissal; nil when the
	// window has nowhere to persist it.
	persistDismiss func() error
}

// New creates a banner. alreadyDismissed carries a persisted permanent
// dismissal from an earlier session.
func New(gate *permission.Gate, pollEvery time.Duration, alreadyDismissed bool, persistDismiss func() error) Model {
	return Model{
		gate:           gate,
		perm:           gate.Get(),
		dismissed:      alreadyDismissed,
		polling:        pollEvery,
		persistDismiss: persistDismiss,
	}
}

// Init starts the permission poll.
func (m Model) Init() tea.Cmd {
	return m.pollTick()
}

// Stop cancels the poll on teardown. Calling it more than once, or
// after the last tick already fired, is a no-op.
func (m Model) Stop() Model {
	m.stopped = true
	m.seq++
	return m
}

// Visible reports whether the banner should render: denied permission,
// not dismissed, on a supported host.
func (m Model) Visible() bool {
	return !m.dismissed && m.gate.IsSupported() && m.perm == permission.StateDenied
}

// Update handles polling, dismissal, and the re-request action.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pollMsg:
		if msg.seq != m.seq || m.stopped {
			return m, nil
		}
		m.perm = m.gate.Get()
		return m, m.pollTick()

	case uimsg.PermissionResult:
		m.perm = msg.State
		return m, nil

	case tea.KeyMsg:
		if !m.Visible() {
			return m, nil
		}
		switch msg.String() {
		case "d":
			m.dismissed = true
		case "D":
			m.dismissed = true
			if m.persistDismiss != nil {
				if err := m.persistDismiss(); err != nil {
					log.Warn().Err(err).Msg("failed to persist banner dismissal")
				}
			}
		case "r":
			// Re-requesting a denied permission needs a user gesture;
			// this key press is that gesture.
			gate := m.gate
			return m, func() tea.Msg {
				state, err := gate.Request(context.Background())
				if err != nil {
					return uimsg.PermissionResult{State: permission.StateDenied}
				}
				return uimsg.PermissionResult{State: state}
			}
		}
	}
	return m, nil
}

func (m Model) pollTick() tea.Cmd {
	seq := m.seq
	return tea.Tick(m.polling, func(time.Time) tea.Msg { return pollMsg{seq: seq} })
}

// View renders the banner, or nothing.
func (m Model) View() string {
	if !m.Visible() {
		return ""
	}
	return theme.BannerStyle.Render(
		"Desktop notifications are blocked. Press r to request again, d to dismiss, D to never show this",
	)
}
