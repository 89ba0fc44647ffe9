package channel

import (
	"fmt"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// Launcher opens a brand-new window when a click intent has no window
// to land in.
type Launcher interface {
	Open(target string) error
}

// ExecLauncher spawns the configured window command with the target
// path appended. The new process is left running detached; the
// receiver never waits on it.
type ExecLauncher struct {
	Command string
	Args    []string
}

// Open starts the window process pointed at target.
func (l ExecLauncher) Open(target string) error {
	if l.Command == "" {
		return fmt.Errorf("no window command configured")
	}
	args := append(append([]string{}, l.Args...), target)
	cmd := exec.Command(l.Command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch window: %w", err)
	}
	log.Info().Str("target", target).Int("pid", cmd.Process.Pid).Msg("opened new window")
	// Reap the child when it exits so it never lingers as a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}
