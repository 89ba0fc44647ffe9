package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/loyaltyhq/notify-agent/internal/archive"
	"github.com/loyaltyhq/notify-agent/internal/channel"
	"github.com/loyaltyhq/notify-agent/internal/config"
	"github.com/loyaltyhq/notify-agent/internal/domain"
	"github.com/loyaltyhq/notify-agent/internal/feed"
	"github.com/loyaltyhq/notify-agent/internal/permission"
	"github.com/loyaltyhq/notify-agent/internal/store"
	"github.com/loyaltyhq/notify-agent/internal/ui"
	"github.com/loyaltyhq/notify-agent/internal/ui/uimsg"
)

// prefs is the small per-user preference file windows share.
type prefs struct {
	BannerDismissed bool `json:"bannerDismissed"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	// The terminal belongs to the TUI; logs go to a file instead.
	setupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Store, warmed from the session archive ───────────────────────────────
	st := store.New()
	warmStore(ctx, cfg, st)

	// ── Permission gate ──────────────────────────────────────────────────────
	// In this window the enable keystroke itself is the user's consent
	// gesture, so the prompt resolves to granted.
	gate := permission.NewGate(permission.NewDesktop(
		cfg.PermissionStatePath(),
		func(context.Context) (bool, error) { return true, nil },
	))

	// ── Presentation ─────────────────────────────────────────────────────────
	p := loadPrefs(cfg.PrefsPath())
	initialRoute := ""
	if len(os.Args) > 1 {
		initialRoute = os.Args[1]
	}

	app := ui.NewApp(st, gate, cfg.UI, initialRoute, p.BannerDismissed, func() error {
		p.BannerDismissed = true
		return savePrefs(cfg.PrefsPath(), p)
	})

	// The program must exist before the client goroutine starts so the
	// intent callback always has a target to Send to.
	program := tea.NewProgram(app, tea.WithAltScreen())

	// ── Channel client ───────────────────────────────────────────────────────
	client := channel.NewClient(
		"http://"+cfg.Channel.Addr,
		cfg.Channel.Secret,
		cfg.Channel.Origin,
		func(intent channel.ClickIntent) {
			program.Send(uimsg.ClickIntent{URL: intent.URL, Focus: intent.Focus})
		},
	)
	go func() {
		if err := client.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("channel client stopped")
		}
	}()

	// Push the runtime backend config down to the receiver. It races
	// against the receiver's own placeholder; the init guard makes the
	// outcome safe either way.
	go func() {
		pushCtx, pushCancel := context.WithTimeout(ctx, 10*time.Second)
		defer pushCancel()
		if err := client.PushConfig(pushCtx, domain.PushConfig{
			Brokers: cfg.Push.Brokers,
			Topic:   cfg.Push.Topic,
			GroupID: cfg.Push.GroupID,
		}); err != nil {
			log.Warn().Err(err).Msg("runtime config push failed")
		}
	}()

	runWithFaultBoundary(program)
}

// runWithFaultBoundary keeps a rendering panic from leaving the user
// staring at a corrupted blank terminal: it logs the fault and falls
// back to a minimal text surface.
func runWithFaultBoundary(program *tea.Program) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("window UI panicked")
			fmt.Println("The notification window hit an internal error and had to close.")
			fmt.Println("Your notifications are unaffected; reopen the window to continue.")
			os.Exit(1)
		}
	}()

	if _, err := program.Run(); err != nil {
		log.Error().Err(err).Msg("window UI error")
		fmt.Println("The notification window could not start:", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logPath := filepath.Join(cfg.Window.StateDir, "window.log")
	if err := os.MkdirAll(cfg.Window.StateDir, 0o755); err == nil {
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600); err == nil {
			log.Logger = zerolog.New(f).With().Timestamp().Logger()
			return
		}
	}
	log.Logger = zerolog.New(zerolog.Nop())
}

// warmStore replays the session archive into a fresh store so the bell
// starts with this session's history instead of empty.
func warmStore(ctx context.Context, cfg *config.Config, st *store.Store) {
	if cfg.Archive.Addr == "" {
		return
	}

	arcCtx, arcCancel := context.WithTimeout(ctx, 5*time.Second)
	defer arcCancel()

	arc, err := archive.NewRedis(arcCtx, cfg.Archive.Addr, cfg.Archive.Key, cfg.Archive.Cap, cfg.Archive.TTL)
	if err != nil {
		log.Warn().Err(err).Msg("session archive unavailable, starting empty")
		return
	}
	defer arc.Close()

	raws, err := arc.Replay(arcCtx)
	if err != nil {
		log.Warn().Err(err).Msg("session archive replay failed")
		return
	}
	for _, raw := range raws {
		if n := feed.Decode(raw); n != nil {
			st.Add(*n)
		}
	}
	log.Info().Int("entries", st.Len()).Msg("store warmed from session archive")
}

func loadPrefs(path string) prefs {
	var p prefs
	b, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(b, &p)
	return p
}

func savePrefs(path string, p prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
