// Package ui assembles the window's presentation layer: bell, toast
// and permission banner, all consuming the same store and permission
// gate.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/loyaltyhq/notify-agent/internal/config"
	"github.com/loyaltyhq/notify-agent/internal/permission"
	"github.com/loyaltyhq/notify-agent/internal/store"
	"github.com/loyaltyhq/notify-agent/internal/ui/banner"
	"github.com/loyaltyhq/notify-agent/internal/ui/bell"
	"github.com/loyaltyhq/notify-agent/internal/ui/theme"
	"github.com/loyaltyhq/notify-agent/internal/ui/toast"
	"github.com/loyaltyhq/notify-agent/internal/ui/uimsg"
)

// focusFlashFor is how long the header stays highlighted after a
// click intent asked this window to take focus.
const focusFlashFor = time.Second

// flashEndMsg carries the generation that scheduled it; stale
// generations are ignored so overlapping flashes never cut each other
// short.
type flashEndMsg struct{ seq int }

// App is the root window model.
type App struct {
	store   *store.Store
	changes <-chan struct{}

	bell   bell.Model
	toast  toast.Model
	banner banner.Model

	route    string
	flash    bool
	flashSeq int
	quitting bool
}

// NewApp wires the presentation components to the window's store and
// permission gate.
func NewApp(s *store.Store, gate *permission.Gate, cfg config.UIConfig, route string, bannerDismissed bool, persistDismiss func() error) App {
	if route == "" {
		route = "/"
	}
	return App{
		store:   s,
		changes: s.Subscribe(),
		bell:    bell.New(s, gate, cfg.PermissionPoll),
		toast:   toast.New(s, cfg.ToastVisible, cfg.ToastFade),
		banner:  banner.New(gate, cfg.PermissionPoll, bannerDismissed, persistDismiss),
		route:   route,
	}
}

// Init starts the banner poll and the store-change subscription.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.banner.Init(), a.waitForStoreChange())
}

// waitForStoreChange blocks on the store subscription and resurfaces
// each signal as a message. The command is re-issued after every
// delivery for the lifetime of the window.
func (a App) waitForStoreChange() tea.Cmd {
	ch := a.changes
	return func() tea.Msg {
		<-ch
		return uimsg.StoreChanged{}
	}
}

// Update routes messages to every component; their private tick
// messages only match inside the owning model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			a.quitting = true
			a.banner = a.banner.Stop()
			return a, tea.Quit
		}

	case uimsg.StoreChanged:
		cmds = append(cmds, a.waitForStoreChange())

	case uimsg.ClickIntent:
		// The receiver resolved where this click should land; the
		// window just navigates there.
		a.route = msg.URL
		if msg.Focus {
			// A terminal cannot raise itself; flashing the header is
			// the focus affordance a TUI can offer.
			a.flash = true
			a.flashSeq++
			seq := a.flashSeq
			cmds = append(cmds, tea.Tick(focusFlashFor, func(time.Time) tea.Msg { return flashEndMsg{seq: seq} }))
		}

	case flashEndMsg:
		if msg.seq == a.flashSeq {
			a.flash = false
		}
	}

	var cmd tea.Cmd
	a.bell, cmd = a.bell.Update(msg)
	cmds = append(cmds, cmd)
	a.toast, cmd = a.toast.Update(msg)
	cmds = append(cmds, cmd)
	a.banner, cmd = a.banner.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// View renders the window: route header, banner, toast, bell.
func (a App) View() string {
	if a.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Bold(true)
	if a.flash {
		headerStyle = headerStyle.Reverse(true)
	}
	header := headerStyle.Render("loyalty · " + a.route)
	sections := []string{header}
	if v := a.banner.View(); v != "" {
		sections = append(sections, v)
	}
	if v := a.toast.View(); v != "" {
		sections = append(sections, v)
	}
	sections = append(sections, a.bell.View())
	sections = append(sections, theme.ReadStyle.Render("b bell · enter read · x remove · a read all · q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
