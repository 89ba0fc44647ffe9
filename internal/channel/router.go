package channel

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewRouter sets up the channel's Echo routes and middleware.
func NewRouter(h *Handler, secret string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())

	// Health (no auth required)
	e.GET("/health", h.Health)

	// Channel endpoints — window token required
	ch := e.Group("/channel")
	ch.Use(WindowAuth(secret))
	ch.GET("/stream", h.Stream)
	ch.POST("/config", h.PushConfig)

	return e
}
