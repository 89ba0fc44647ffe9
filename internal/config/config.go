package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all agent and window configuration.
type Config struct {
	Env      string         `mapstructure:"env"`
	Channel  ChannelConfig  `mapstructure:"channel"`
	Push     PushConfig     `mapstructure:"push"`
	Assets   AssetsConfig   `mapstructure:"assets"`
	Window   WindowConfig   `mapstructure:"window"`
	UI       UIConfig       `mapstructure:"ui"`
	Receiver ReceiverConfig `mapstructure:"receiver"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
}

// ChannelConfig describes the receiver↔window message channel.
type ChannelConfig struct {
	// Addr is the localhost address the receiver's channel listens on.
	Addr string `mapstructure:"addr"`
	// Secret signs window tokens. Both sides read the same value.
	Secret string `mapstructure:"secret"`
	// Origin scopes delivery: only windows registered with the same
	// origin receive click intents.
	Origin string `mapstructure:"origin"`
}

// PushConfig is the build-time placeholder configuration for the
// push-messaging backend. A window may push a different runtime config
// over the channel; whichever initializes first wins.
type PushConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

// AssetsConfig points at the static assets used on OS notifications.
type AssetsConfig struct {
	Icon string `mapstructure:"icon"`
}

// WindowConfig describes how the receiver opens a brand-new window and
// where windows keep per-user state.
type WindowConfig struct {
	Command  string   `mapstructure:"command"`
	Args     []string `mapstructure:"args"`
	StateDir string   `mapstructure:"state_dir"`
}

// UIConfig tunes the presentation layer.
type UIConfig struct {
	ToastVisible   time.Duration `mapstructure:"toast_visible"`
	ToastFade      time.Duration `mapstructure:"toast_fade"`
	PermissionPoll time.Duration `mapstructure:"permission_poll"`
}

// ReceiverConfig tunes the background receiver.
type ReceiverConfig struct {
	// ResendDelay is how long to wait after opening a new window
	// before resending a click intent to it.
	ResendDelay time.Duration `mapstructure:"resend_delay"`
}

// ArchiveConfig describes the optional session archive. Empty Addr
// disables it.
type ArchiveConfig struct {
	Addr string        `mapstructure:"addr"`
	Key  string        `mapstructure:"key"`
	Cap  int64         `mapstructure:"cap"`
	TTL  time.Duration `mapstructure:"ttl"`
}

// Load reads configuration from environment variables and an optional
// config file. Environment variables override file values.
// Prefix: NOTIFY_AGENT_
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("env", "development")
	v.SetDefault("channel.addr", "127.0.0.1:8719")
	v.SetDefault("channel.secret", "dev-channel-secret")
	v.SetDefault("channel.origin", "loyalty-app")
	v.SetDefault("push.brokers", []string{"localhost:9092"})
	v.SetDefault("push.topic", "push-notifications")
	v.SetDefault("push.group_id", "notify-agent")
	v.SetDefault("assets.icon", "/usr/share/notify-agent/icon-512x512.png")
	v.SetDefault("window.command", "notify-window")
	v.SetDefault("window.state_dir", defaultStateDir())
	v.SetDefault("ui.toast_visible", 5*time.Second)
	v.SetDefault("ui.toast_fade", 300*time.Millisecond)
	v.SetDefault("ui.permission_poll", 2*time.Second)
	v.SetDefault("receiver.resend_delay", 3*time.Second)
	v.SetDefault("archive.addr", "")
	v.SetDefault("archive.key", "notify-agent:session")
	v.SetDefault("archive.cap", 100)
	v.SetDefault("archive.ttl", 12*time.Hour)

	// Environment variables (e.g. channel.addr -> NOTIFY_AGENT_CHANNEL_ADDR)
	v.SetEnvPrefix("NOTIFY_AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed conveniences for container setups
	v.BindEnv("push.brokers", "KAFKA_BROKERS")
	v.BindEnv("channel.addr", "CHANNEL_ADDR")
	v.BindEnv("channel.secret", "CHANNEL_SECRET")
	v.BindEnv("archive.addr", "REDIS_ADDR")

	// Try loading config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // Not required

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PermissionStatePath is where a window persists the user's permission
// decision.
func (c *Config) PermissionStatePath() string {
	return filepath.Join(c.Window.StateDir, "permission.json")
}

// PrefsPath is where a window persists presentation preferences, such
// as a permanent banner dismissal.
func (c *Config) PrefsPath() string {
	return filepath.Join(c.Window.StateDir, "prefs.json")
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "notify-agent")
	}
	return ".notify-agent"
}
