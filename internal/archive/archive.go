// Package archive is the external key-value collaborator that keeps a
// capped, session-scoped history of displayed push payloads. The
// window store remains the source of truth; the archive only lets a
// freshly opened window warm its store. Everything here is
// best-effort.
package archive

import "context"

// Archive appends raw payloads and replays them oldest-first.
type Archive interface {
	Append(ctx context.Context, raw []byte) error
	Replay(ctx context.Context) ([][]byte, error)
}

// Noop is the Archive used when no backend is configured.
type Noop struct{}

func (Noop) Append(context.Context, []byte) error { return nil }
func (Noop) Replay(context.Context) ([][]byte, error) { return nil, nil }
