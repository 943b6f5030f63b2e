package api

import (
	"github.com/labstack/echo/v4"
)

const cacheControlKey = "cache-control-value"

// WithCacheControl configures the Cache-Control value for the routes it wraps.
// Handlers write it with SetCacheControl.
func WithCacheControl(enabled bool, value string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if enabled {
				c.Set(cacheControlKey, value)
			}
			return next(c)
		}
	}
}

// SetCacheControl sets the Cache-Control header to the value
// configured in WithCacheControl, or does nothing if it was not configured.
// Response headers must be written before the body,
// and we do not want the header on errors,
// so handlers call this right before writing a successful response.
func SetCacheControl(c echo.Context) {
	if value, ok := c.Get(cacheControlKey).(string); ok {
		c.Response().Header().Set("Cache-Control", value)
	}
}
