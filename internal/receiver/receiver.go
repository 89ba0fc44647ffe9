// Package receiver is the background half of the system: the only
// component allowed to display OS-level notifications. It runs with no
// UI of its own, consumes push payloads from the push-messaging
// backend, and routes notification clicks to windows over the channel.
//
// The receiver may be torn down and respawned at any time between
// events, so click handling depends only on the data embedded in the
// displayed record, never on in-memory state from the display step.
package receiver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/loyaltyhq/notify-agent/internal/channel"
	"github.com/loyaltyhq/notify-agent/internal/domain"
	"github.com/loyaltyhq/notify-agent/internal/routing"
)

// Notifier renders OS notifications. Close is best-effort; Clicks
// yields a record whenever the user clicks a displayed notification
// (platforms that cannot observe clicks simply never yield).
type Notifier interface {
	Show(rec domain.DisplayRecord) error
	Close(tag string)
	Clicks() <-chan domain.DisplayRecord
}

// Deliverer posts click intents to windows. Implemented by
// channel.Hub.
type Deliverer interface {
	Deliver(intent channel.ClickIntent, origin string) int
}

// Archive is the optional session archive displayed payloads are
// appended to, so a freshly opened window can warm its store.
type Archive interface {
	Append(ctx context.Context, raw []byte) error
}

// SourceFactory connects to the push-messaging backend. Production
// uses NewKafkaSource; tests substitute fakes.
type SourceFactory func(cfg domain.PushConfig) (PushSource, error)

// PushSource is an established push-backend connection.
type PushSource interface {
	// Run consumes payloads until ctx is cancelled or the connection
	// breaks, invoking handle for each one.
	Run(ctx context.Context, handle func(domain.PushPayload)) error
	Close()
}

// Config carries the receiver's collaborators and tuning.
type Config struct {
	Notifier    Notifier
	Hub         Deliverer
	Launcher    channel.Launcher
	Archive     Archive // nil disables archiving
	NewSource   SourceFactory
	Origin      string
	ResendDelay time.Duration
}

// Receiver owns the push-backend connection state machine and all OS
// notification handling.
type Receiver struct {
	cfg Config

	mu     sync.Mutex
	state  InitState
	source PushSource

	runCtx context.Context
}

// New creates a Receiver. Call Start before pushing config into it.
func New(cfg Config) *Receiver {
	return &Receiver{cfg: cfg, state: StateUninitialized}
}

// State returns the current connection state.
func (r *Receiver) State() InitState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start binds the receiver to ctx and begins consuming notification
// clicks. It then races the baked-in placeholder config against
// whatever a window pushes later: whichever initializes first wins.
// A failed placeholder init is not fatal.
func (r *Receiver) Start(ctx context.Context, placeholder domain.PushConfig) {
	r.mu.Lock()
	r.runCtx = ctx
	r.mu.Unlock()

	go r.consumeClicks(ctx)

	if err := r.EnsureInitialized(placeholder); err != nil {
		log.Warn().Err(err).Msg("placeholder push config did not initialize, waiting for a window config push")
	}
}

// EnsureInitialized establishes the push-backend connection if and
// only if none is established or being established. Calling it again
// once Ready is a no-op; a Failed attempt leaves the guard open so the
// next call retries.
func (r *Receiver) EnsureInitialized(cfg domain.PushConfig) error {
	r.mu.Lock()
	if r.state == StateReady || r.state == StateInitializing {
		r.mu.Unlock()
		return nil
	}
	if !cfg.Valid() {
		r.mu.Unlock()
		return fmt.Errorf("push config incomplete")
	}
	r.state = StateInitializing
	ctx := r.runCtx
	r.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	src, err := r.cfg.NewSource(cfg)
	if err != nil {
		r.mu.Lock()
		r.state = StateFailed
		r.mu.Unlock()
		log.Error().Err(err).Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).
			Msg("push backend init failed")
		return fmt.Errorf("init push source: %w", err)
	}

	r.mu.Lock()
	r.source = src
	r.state = StateReady
	r.mu.Unlock()

	log.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("push backend connected")

	go func() {
		err := src.Run(ctx, r.HandlePayload)
		src.Close()
		r.mu.Lock()
		r.source = nil
		if ctx.Err() != nil {
			r.state = StateUninitialized
		} else {
			// Broken connection: reopen the guard so a later config
			// push re-initializes.
			r.state = StateFailed
		}
		r.mu.Unlock()
		if err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("push source stopped")
		}
	}()
	return nil
}

// HandleConfigPush implements channel.ConfigSink for window → receiver
// configuration pushes.
func (r *Receiver) HandleConfigPush(msg channel.ConfigPush) error {
	return r.EnsureInitialized(msg.Config)
}

// HandlePayload displays one push payload as an OS notification.
// Title and body fall back from explicit notification fields to data
// fields to defaults; the tag falls back to a fresh value so unrelated
// notifications never coalesce.
func (r *Receiver) HandlePayload(p domain.PushPayload) {
	if p.Notification == nil && p.Data == nil {
		log.Debug().Msg("empty push payload, nothing to display")
		return
	}

	var data domain.PayloadData
	if p.Data != nil {
		data = *p.Data
	}

	rec := domain.DisplayRecord{
		Title: routing.DeriveTitle(p),
		Body:  routing.DeriveBody(p),
		Tag:   routing.ComputeTag(data),
		Data:  data,
	}

	if err := r.cfg.Notifier.Show(rec); err != nil {
		log.Warn().Err(err).Str("tag", rec.Tag).Msg("failed to display OS notification")
		return
	}
	log.Debug().Str("tag", rec.Tag).Str("title", rec.Title).Msg("OS notification displayed")

	if r.cfg.Archive != nil {
		raw, err := json.Marshal(p)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err = r.cfg.Archive.Append(ctx, raw)
			cancel()
		}
		if err != nil {
			// Best-effort: windows just warm-start with less history.
			log.Warn().Err(err).Msg("session archive append failed")
		}
	}
}

// HandleClick routes one OS notification click. The target is
// recomputed from the record's embedded data with the same precedence
// the display path used. Zero connected windows degrades to opening a
// new one and resending the intent after a fixed delay, giving the
// fresh window time to subscribe; the delay is a best-effort
// compensation, not a synchronization guarantee.
func (r *Receiver) HandleClick(rec domain.DisplayRecord) {
	r.cfg.Notifier.Close(rec.Tag)

	target := routing.ResolveTarget(rec.Data)
	intent := channel.NewClickIntent(target, rec.Data)

	if n := r.cfg.Hub.Deliver(intent, r.cfg.Origin); n > 0 {
		log.Debug().Str("target", target).Int("windows", n).Msg("click intent delivered")
		return
	}

	if r.cfg.Launcher == nil {
		log.Warn().Str("target", target).Msg("no window connected and no launcher configured, click dropped")
		return
	}
	if err := r.cfg.Launcher.Open(target); err != nil {
		log.Error().Err(err).Str("target", target).Msg("failed to open new window for click")
		return
	}
	time.AfterFunc(r.cfg.ResendDelay, func() {
		n := r.cfg.Hub.Deliver(intent, r.cfg.Origin)
		log.Debug().Str("target", target).Int("windows", n).Msg("click intent resent after window open")
	})
}

func (r *Receiver) consumeClicks(ctx context.Context) {
	clicks := r.cfg.Notifier.Clicks()
	for {
		select {
		case rec, ok := <-clicks:
			if !ok {
				return
			}
			r.HandleClick(rec)
		case <-ctx.Done():
			return
		}
	}
}
