// Package notify renders OS-level notifications for the background
// receiver.
package notify

import (
	"github.com/gen2brain/beeep"

	"github.com/loyaltyhq/notify-agent/internal/domain"
)

// Beeep renders notifications through the cross-platform beeep
// library.
type Beeep struct {
	iconPath string
	clicks   chan domain.DisplayRecord
}

// NewBeeep creates a notifier using iconPath as the static asset for
// every notification.
func NewBeeep(iconPath string) *Beeep {
	return &Beeep{iconPath: iconPath, clicks: make(chan domain.DisplayRecord)}
}

// Show displays the record as an OS notification.
func (b *Beeep) Show(rec domain.DisplayRecord) error {
	return beeep.Notify(rec.Title, rec.Body, b.iconPath)
}

// Close is a no-op: the underlying library exposes no handle to an
// already-displayed notification, and tag coalescing is left to the
// platform's own notification center.
func (b *Beeep) Close(string) {}

// Clicks never yields: the library cannot observe clicks on displayed
// notifications. Platforms with a richer notifier can substitute an
// implementation that does.
func (b *Beeep) Clicks() <-chan domain.DisplayRecord {
	return b.clicks
}
