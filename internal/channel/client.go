package channel

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/loyaltyhq/notify-agent/internal/domain"
)

// Client is the window side of the channel. It subscribes to the
// receiver's intent stream and can push runtime configuration up.
// There is no delivery guarantee: anything posted while the client is
// between connections is missed permanently.
type Client struct {
	baseURL  string
	secret   string
	windowID string
	origin   string
	httpc    *http.Client
	onIntent func(ClickIntent)
}

// NewClient creates a channel client for one window. onIntent is
// invoked for every click intent received; it runs on the stream
// goroutine and must not block.
func NewClient(baseURL, secret, origin string, onIntent func(ClickIntent)) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		secret:   secret,
		windowID: uuid.NewString(),
		origin:   origin,
		httpc:    &http.Client{},
		onIntent: onIntent,
	}
}

// WindowID returns this window's channel identity.
func (c *Client) WindowID() string {
	return c.windowID
}

// Run subscribes to the intent stream and keeps the subscription alive
// with exponential backoff until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0 // retry for the lifetime of the window

	operation := func() error {
		if err := c.stream(ctx); err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			log.Warn().Err(err).Msg("channel stream interrupted, reconnecting")
			return err
		}
		return nil
	}
	return backoff.Retry(operation, backoff.WithContext(bo, ctx))
}

// stream opens one SSE subscription and consumes it until it breaks.
func (c *Client) stream(ctx context.Context) error {
	token, err := NewWindowToken(c.secret, c.windowID, c.origin)
	if err != nil {
		return fmt.Errorf("mint window token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/channel/stream", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("subscribe channel stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("channel stream: status %d", resp.StatusCode)
	}

	log.Info().Str("window", c.windowID).Msg("channel stream connected")

	var event string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Bytes()
		switch {
		case len(line) == 0:
			event = ""
		case bytes.HasPrefix(line, []byte("event: ")):
			event = string(bytes.TrimPrefix(line, []byte("event: ")))
		case bytes.HasPrefix(line, []byte("data: ")):
			if event != "message" {
				continue
			}
			var intent ClickIntent
			if err := json.Unmarshal(bytes.TrimPrefix(line, []byte("data: ")), &intent); err != nil {
				log.Warn().Err(err).Msg("undecodable channel message, skipping")
				continue
			}
			if intent.Type == TypeNotificationClick && c.onIntent != nil {
				c.onIntent(intent)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("channel stream read: %w", err)
	}
	return fmt.Errorf("channel stream closed by receiver")
}

// PushConfig posts runtime push-backend configuration to the receiver.
// A 202 only acknowledges receipt; the receiver decides on its own
// whether to initialize with it.
func (c *Client) PushConfig(ctx context.Context, cfg domain.PushConfig) error {
	token, err := NewWindowToken(c.secret, c.windowID, c.origin)
	if err != nil {
		return fmt.Errorf("mint window token: %w", err)
	}

	body, err := json.Marshal(ConfigPush{Type: TypeConfig, Config: cfg})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/channel/config", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	pushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	resp, err := c.httpc.Do(req.WithContext(pushCtx))
	if err != nil {
		return fmt.Errorf("push config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("push config: status %d", resp.StatusCode)
	}
	return nil
}
