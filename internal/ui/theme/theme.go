// Package theme centralizes the presentation look: per-type icons and
// colors plus the shared styles. Type only ever drives appearance; no
// component branches on it for behavior.
package theme

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/loyaltyhq/notify-agent/internal/domain"
)

var (
	ColorGreen  = lipgloss.Color("42")
	ColorRed    = lipgloss.Color("196")
	ColorBlue   = lipgloss.Color("39")
	ColorYellow = lipgloss.Color("220")
	ColorGray   = lipgloss.Color("245")
	ColorWhite  = lipgloss.Color("255")

	BadgeStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorRed).
			Padding(0, 1).
			Bold(true)

	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBlue).
			Padding(0, 1)

	ToastFadingStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorGray).
				Foreground(ColorGray).
				Padding(0, 1)

	DropdownStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)

	UnreadStyle   = lipgloss.NewStyle().Bold(true)
	ReadStyle     = lipgloss.NewStyle().Foreground(ColorGray)
	SelectedStyle = lipgloss.NewStyle().Reverse(true)

	BannerStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(ColorYellow).
			Padding(0, 1)
)

// Icon returns the glyph for a notification type.
func Icon(t domain.NotificationType) string {
	switch t.Normalize() {
	case domain.TypePurchaseApproved:
		return "✓"
	case domain.TypePurchaseRejected:
		return "✗"
	case domain.TypeFriendRequest, domain.TypeFriendRequestAccepted:
		return "♥"
	case domain.TypePointsTransferReceived:
		return "₱"
	case domain.TypeCampaignCreated:
		return "★"
	default:
		return "•"
	}
}

// Color returns the accent color for a notification type.
func Color(t domain.NotificationType) lipgloss.Color {
	switch t.Normalize() {
	case domain.TypePurchaseApproved, domain.TypePointsTransferReceived:
		return ColorGreen
	case domain.TypePurchaseRejected:
		return ColorRed
	case domain.TypeFriendRequest, domain.TypeFriendRequestAccepted:
		return ColorYellow
	case domain.TypeCampaignCreated:
		return ColorBlue
	default:
		return ColorGray
	}
}

// RelativeAge formats how long ago t was, relative to now.
func RelativeAge(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
