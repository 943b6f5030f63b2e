/*
Package api sets up an echo server the way every service should have one.
It adds /statusz and /healthz endpoints,
and logging middleware that takes care of the following important,
and fundamentally (in Go) interconnected tasks:

  - Extract (or add) a trace ID header to the request and response.
    The trace ID can be retrieved through api.TraceId(echo.Context).
  - Use that trace ID as a field on the logrus logger.
  - Handle request logging (metadata about the request and response,
    and log at the level appropriate for the status code).
    The request logger can be retrieved with api.Logger(echo.Context).
  - Recover from panics.
  - Coerce all errors into api.Error types, and marshal them.
  - Override echo's HTTPErrorHandler to pass through api.Error types.
*/
package api

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// If not provided, create an echo.New.
	App                    *echo.Echo
	Logger                 *logrus.Entry
	LoggingMiddlwareConfig LoggingMiddlwareConfig
	// Dump request and response details at debug level.
	// Disabled unless Debug.Enabled is set.
	Debug DebugMiddlewareConfig
	// Origins for echo's CORS middleware.
	// If it and CorsConfig are empty, do not add the middleware.
	CorsOrigins []string
	// Config for echo's CORS middleware.
	// Supercedes CorsOrigins.
	CorsConfig *middleware.CORSConfig
	// Limit for request bodies, like "1M". Empty means no limit.
	BodyLimit string
	// Return this from the health endpoint.
	// Defaults to {"o":"k"}.
	HealthResponse map[string]interface{}
	// Defaults to /healthz.
	HealthPath string
	// If the health endpoint is not static,
	// provide this instead of HealthResponse.
	HealthHandler echo.HandlerFunc
	// Return this from the status endpoint.
	// The default is not very useful so you should provide a value.
	StatusResponse map[string]interface{}
	// Defaults to /statusz
	StatusPath string
	// If the status endpoint is not static
	// (for example to report how many records are loaded),
	// provide this instead of StatusResponse.
	StatusHandler echo.HandlerFunc
}

func New(cfg Config) *echo.Echo {
	if cfg.Logger == nil {
		cfg.Logger = unconfiguredLogger()
	}
	if cfg.HealthHandler == nil {
		if cfg.HealthResponse == nil {
			cfg.HealthResponse = map[string]interface{}{"o": "k"}
		}
		cfg.HealthHandler = func(c echo.Context) error {
			return c.JSON(http.StatusOK, cfg.HealthResponse)
		}
	}
	if cfg.HealthPath == "" {
		cfg.HealthPath = HealthPath
	}
	if cfg.StatusHandler == nil {
		if cfg.StatusResponse == nil {
			cfg.StatusResponse = map[string]interface{}{
				"version": "not configured",
				"message": "you are a lovely and strong person",
			}
		}
		cfg.StatusHandler = func(c echo.Context) error {
			return c.JSON(http.StatusOK, cfg.StatusResponse)
		}
	}
	if cfg.StatusPath == "" {
		cfg.StatusPath = StatusPath
	}
	e := cfg.App
	if e == nil {
		e = echo.New()
	}
	e.Logger.SetOutput(os.Stdout)
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(e)
	e.Use(LoggingMiddlewareWithConfig(cfg.Logger, cfg.LoggingMiddlwareConfig))
	e.Use(DebugMiddleware(cfg.Debug))
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	if cfg.CorsConfig == nil && cfg.CorsOrigins != nil {
		cfg.CorsConfig = &middleware.CORSConfig{AllowOrigins: cfg.CorsOrigins, AllowCredentials: true}
	}
	if cfg.CorsConfig != nil {
		e.Use(middleware.CORSWithConfig(*cfg.CorsConfig))
	}
	e.GET(cfg.HealthPath, cfg.HealthHandler)
	e.GET(cfg.StatusPath, cfg.StatusHandler)
	return e
}

const HealthPath = "/healthz"
const StatusPath = "/statusz"

func unconfiguredLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	return logger.WithField("unconfigured_api_logger", true)
}
