// Package uimsg holds the bubbletea messages shared between the
// window's presentation components.
package uimsg

import "github.com/loyaltyhq/notify-agent/internal/permission"

// StoreChanged signals that the notification store mutated and
// consumers should re-read it. Rapid mutations may coalesce into one
// message, so consumers derive state from the store, never from the
// message count.
type StoreChanged struct{}

// ClickIntent arrives from the channel client when the user clicks an
// OS notification routed to this window.
type ClickIntent struct {
	URL   string
	Focus bool
}

// PermissionResult carries the outcome of a permission request or poll.
type PermissionResult struct {
	State permission.State
}
