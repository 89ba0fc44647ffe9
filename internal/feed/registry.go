// Package feed turns raw backend payloads into store notifications on
// the window side. Each notification type registers its own builder
// via init(), so adding a type never touches the decode path.
package feed

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/loyaltyhq/notify-agent/internal/domain"
)

// Builder maps a decoded payload to a store notification. Returning
// nil means "nothing to show for this payload".
type Builder func(p domain.PushPayload) *domain.Notification

var builders = map[string]Builder{}

// Register binds a builder to a payload type tag. Called from each
// builder file's init(). Panics on duplicate registration to catch
// wiring mistakes early.
func Register(typeTag string, b Builder) {
	if _, exists := builders[typeTag]; exists {
		panic("feed: duplicate builder registered for type: " + typeTag)
	}
	builders[typeTag] = b
}

// Decode parses one raw payload and dispatches it to the builder for
// its type tag, falling back to the default builder for unknown tags.
// Returns nil for undecodable or empty payloads.
func Decode(raw []byte) *domain.Notification {
	var p domain.PushPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Warn().Err(err).Msg("feed: undecodable payload")
		return nil
	}
	if p.Notification == nil && p.Data == nil {
		return nil
	}

	typeTag := ""
	if p.Data != nil {
		typeTag = p.Data.Type
	}
	if b, ok := builders[typeTag]; ok {
		return b(p)
	}
	return buildDefault(p)
}
