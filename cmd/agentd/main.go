package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/loyaltyhq/notify-agent/internal/archive"
	"github.com/loyaltyhq/notify-agent/internal/channel"
	"github.com/loyaltyhq/notify-agent/internal/config"
	"github.com/loyaltyhq/notify-agent/internal/domain"
	"github.com/loyaltyhq/notify-agent/internal/notify"
	"github.com/loyaltyhq/notify-agent/internal/receiver"
)

func main() {
	// ── Logging ──────────────────────────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// ── Config ───────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().Str("env", cfg.Env).Str("channel", cfg.Channel.Addr).Msg("starting notify-agent")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Session archive (optional) ───────────────────────────────────────────
	var arc receiver.Archive = archive.Noop{}
	if cfg.Archive.Addr != "" {
		redisArc, err := archive.NewRedis(ctx, cfg.Archive.Addr, cfg.Archive.Key, cfg.Archive.Cap, cfg.Archive.TTL)
		if err != nil {
			// The agent still runs; windows just warm-start empty.
			log.Warn().Err(err).Msg("session archive unavailable")
		} else {
			defer redisArc.Close()
			arc = redisArc
			log.Info().Str("addr", cfg.Archive.Addr).Msg("session archive connected")
		}
	}

	// ── Channel hub & background receiver ────────────────────────────────────
	hub := channel.NewHub()

	recv := receiver.New(receiver.Config{
		Notifier:    notify.NewBeeep(cfg.Assets.Icon),
		Hub:         hub,
		Launcher:    channel.ExecLauncher{Command: cfg.Window.Command, Args: cfg.Window.Args},
		Archive:     arc,
		NewSource:   receiver.NewKafkaSource,
		Origin:      cfg.Channel.Origin,
		ResendDelay: cfg.Receiver.ResendDelay,
	})

	// The baked-in placeholder config races against whatever a window
	// pushes over the channel; the init guard settles the race.
	recv.Start(ctx, domain.PushConfig{
		Brokers: cfg.Push.Brokers,
		Topic:   cfg.Push.Topic,
		GroupID: cfg.Push.GroupID,
	})

	// ── Channel HTTP surface ─────────────────────────────────────────────────
	handler := channel.NewHandler(hub, recv)
	router := channel.NewRouter(handler, cfg.Channel.Secret)

	go func() {
		log.Info().Str("addr", cfg.Channel.Addr).Msg("channel listening")
		if err := router.Start(cfg.Channel.Addr); err != nil {
			log.Info().Msg("channel server stopped")
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("channel server shutdown error")
	}

	log.Info().Msg("notify-agent stopped")
}
