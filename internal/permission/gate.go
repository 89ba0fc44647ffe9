// Package permission wraps the platform's opt-in notification
// permission behind a tri-state gate.
package permission

import "context"

// State mirrors the platform permission state. It is re-read from the
// backend on every query, never cached authoritatively: the user can
// flip it in platform settings at any time.
type State string

const (
	// StateDefault means the user has not decided yet.
	StateDefault State = "default"
	StateGranted State = "granted"
	StateDenied  State = "denied"
)

// Decided reports whether the user has answered the consent prompt.
func (s State) Decided() bool {
	return s == StateGranted || s == StateDenied
}

// Backend is the platform side of the gate. Implementations live next
// to the OS notifier; tests substitute fakes.
type Backend interface {
	// Supported reports whether the host exposes a notification
	// permission mechanism at all.
	Supported() bool
	// Current reads the platform state synchronously, without side
	// effects.
	Current() State
	// Prompt presents the native consent UI and blocks until the user
	// responds or ctx is cancelled. Only called when the state is
	// still undecided.
	Prompt(ctx context.Context) (State, error)
}

// Gate exposes the permission contract to the rest of the window.
type Gate struct {
	backend Backend
}

// NewGate wraps a Backend.
func NewGate(b Backend) *Gate {
	return &Gate{backend: b}
}

// IsSupported reports whether permission operations can do anything.
// When false, Get and Request degrade to no-ops returning StateDefault;
// nothing ever errors on an unsupported host.
func (g *Gate) IsSupported() bool {
	return g.backend.Supported()
}

// Get reads the current permission state.
func (g *Gate) Get() State {
	if !g.backend.Supported() {
		return StateDefault
	}
	return g.backend.Current()
}

// Request triggers the platform consent prompt and suspends until the
// user responds. If the state is already decided it resolves
// immediately without presenting a prompt. Callers must only invoke
// this from a direct user action: platforms refuse or ignore requests
// that do not originate from a user gesture.
func (g *Gate) Request(ctx context.Context) (State, error) {
	if !g.backend.Supported() {
		return StateDefault, nil
	}
	if cur := g.backend.Current(); cur.Decided() {
		return cur, nil
	}
	return g.backend.Prompt(ctx)
}
