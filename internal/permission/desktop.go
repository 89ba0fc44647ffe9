package permission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

// PromptFunc asks the user for consent and returns their decision.
// The window UI supplies the implementation; it must block until the
// user answers or ctx is cancelled.
type PromptFunc func(ctx context.Context) (granted bool, err error)

// Desktop is the Backend for desktop hosts. The decision is persisted
// in a small state file so it survives window restarts, mirroring how
// a browser remembers a site's notification permission.
type Desktop struct {
	path   string
	prompt PromptFunc

	mu    sync.Mutex
	state State
}

type stateFile struct {
	Permission State `json:"permission"`
}

// NewDesktop loads (or initializes) the persisted permission state at
// path and uses prompt for consent requests.
func NewDesktop(path string, prompt PromptFunc) *Desktop {
	d := &Desktop{path: path, prompt: prompt, state: StateDefault}
	if s, err := readStateFile(path); err == nil {
		d.state = s
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("path", path).Msg("permission state file unreadable, treating as undecided")
	}
	return d
}

// Supported reports whether this host can render OS notifications.
// On Linux that requires a session bus; elsewhere the notifier is
// assumed present.
func (d *Desktop) Supported() bool {
	if runtime.GOOS == "linux" {
		return os.Getenv("DBUS_SESSION_BUS_ADDRESS") != ""
	}
	return true
}

// Current returns the persisted decision.
func (d *Desktop) Current() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Prompt asks the user and persists their answer.
func (d *Desktop) Prompt(ctx context.Context) (State, error) {
	if d.prompt == nil {
		return StateDefault, nil
	}

	granted, err := d.prompt(ctx)
	if err != nil {
		return StateDefault, fmt.Errorf("permission prompt: %w", err)
	}

	next := StateDenied
	if granted {
		next = StateGranted
	}

	d.mu.Lock()
	d.state = next
	d.mu.Unlock()

	if err := writeStateFile(d.path, next); err != nil {
		// The in-memory decision still stands for this session.
		log.Warn().Err(err).Msg("failed to persist permission decision")
	}
	return next, nil
}

func readStateFile(path string) (State, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return StateDefault, err
	}
	var f stateFile
	if err := json.Unmarshal(b, &f); err != nil {
		return StateDefault, err
	}
	if !f.Permission.Decided() {
		return StateDefault, nil
	}
	return f.Permission, nil
}

func writeStateFile(path string, s State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.Marshal(stateFile{Permission: s})
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
