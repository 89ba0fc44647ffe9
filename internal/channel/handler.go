package channel

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ConfigSink receives runtime push-backend configuration from windows.
// The background receiver implements it; the init guard inside makes
// repeated pushes harmless.
type ConfigSink interface {
	HandleConfigPush(cfg ConfigPush) error
}

// Handler serves the channel's HTTP surface.
type Handler struct {
	hub  *Hub
	sink ConfigSink
}

// NewHandler creates a Handler.
func NewHandler(hub *Hub, sink ConfigSink) *Handler {
	return &Handler{hub: hub, sink: sink}
}

// Stream GET /channel/stream — subscribes the calling window to click
// intents over SSE until the window disconnects.
func (h *Handler) Stream(c echo.Context) error {
	windowID, origin := mustIdentity(c)

	w := c.Response()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sendCh := make(chan []byte, 32)
	win := h.hub.Register(windowID, origin, sendCh)
	defer h.hub.Unregister(win)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"ok\"}\n\n")
	w.Flush()

	log.Info().Str("window", windowID).Str("origin", origin).Msg("channel stream opened")

	ctx := c.Request().Context()
	for {
		select {
		case msg, ok := <-sendCh:
			if !ok {
				return nil
			}
			if _, err := w.Write(msg); err != nil {
				return nil
			}
			w.Flush()

		case <-ctx.Done():
			log.Info().Str("window", windowID).Msg("channel stream closed by window")
			return nil
		}
	}
}

// PushConfig POST /channel/config — window → receiver configuration
// push. Always answers 202: whether the receiver actually used the
// config depends on its init guard, which is not the window's concern.
func (h *Handler) PushConfig(c echo.Context) error {
	var msg ConfigPush
	if err := c.Bind(&msg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed config push")
	}
	if msg.Type != TypeConfig {
		return echo.NewHTTPError(http.StatusBadRequest, "unexpected message type")
	}

	if err := h.sink.HandleConfigPush(msg); err != nil {
		// Init failures are logged by the receiver and retried on the
		// next push or payload; the window gets no error to surface.
		log.Debug().Err(err).Msg("config push did not initialize receiver")
	}
	return c.NoContent(http.StatusAccepted)
}

// Health GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"windows": h.hub.WindowCount(),
	})
}

func mustIdentity(c echo.Context) (windowID, origin string) {
	windowID, _ = c.Get("windowID").(string)
	origin, _ = c.Get("origin").(string)
	return
}
