// Package channel is the best-effort, at-most-once message bus between
// the background receiver and every open window. Windows push runtime
// configuration down; the receiver pushes click-navigation intents up.
// The channel holds no queue and no retry buffer: a window that is not
// yet listening when a message is posted misses it permanently.
package channel

import (
	"encoding/json"

	"github.com/loyaltyhq/notify-agent/internal/domain"
)

// MessageType discriminates the two message kinds on the wire.
type MessageType string

const (
	// TypeConfig is a window → receiver runtime configuration push.
	TypeConfig MessageType = "CONFIG"
	// TypeNotificationClick is a receiver → window navigation intent
	// fired when the user clicks an OS notification.
	TypeNotificationClick MessageType = "NOTIFICATION_CLICK"
)

// ClickIntent tells a window where to navigate after an OS
// notification click.
type ClickIntent struct {
	Type MessageType        `json:"type"`
	URL  string             `json:"url"`
	Data domain.PayloadData `json:"data"`
	// Focus is set on exactly one recipient per delivery: the first
	// matching window, which should bring itself to the foreground.
	Focus bool `json:"focus"`
}

// ConfigPush is the window → receiver message carrying push-backend
// configuration.
type ConfigPush struct {
	Type   MessageType       `json:"type"`
	Config domain.PushConfig `json:"config"`
}

// NewClickIntent builds an intent for the given resolved target.
func NewClickIntent(url string, data domain.PayloadData) ClickIntent {
	return ClickIntent{Type: TypeNotificationClick, URL: url, Data: data}
}

func encodeSSE(event string, v any) []byte {
	b, _ := json.Marshal(v)
	return []byte("event: " + event + "\ndata: " + string(b) + "\n\n")
}
