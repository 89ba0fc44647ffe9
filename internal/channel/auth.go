package channel

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// tokenTTL bounds how long a window token stays valid. Windows mint a
// fresh token per connection, so a short TTL costs nothing.
const tokenTTL = time.Hour

// NewWindowToken mints the bearer token a window presents on every
// channel request. HS256 with the shared channel secret from config.
func NewWindowToken(secret, windowID, origin string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    windowID,
		"origin": origin,
		"iat":    now.Unix(),
		"exp":    now.Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// WindowAuth validates the window bearer token and stores the window
// identity in the echo context. The token may arrive in the
// Authorization header or, for stream subscriptions, the "token" query
// parameter.
func WindowAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr := bearerToken(c)
			if tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing channel token")
			}

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid channel token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid claims")
			}

			windowID, _ := claims["sub"].(string)
			origin, _ := claims["origin"].(string)
			if windowID == "" || origin == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing window identity")
			}

			c.Set("windowID", windowID)
			c.Set("origin", origin)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.QueryParam("token")
}
