// Package preflight holds requests until the service is ready to handle them,
// such as while the store is still being seeded.
package preflight

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithictech/go-profiles/api"
	"github.com/pkg/errors"
)

type Config struct {
	// The preflight check to execute.
	Check echo.HandlerFunc
	// Preflight checks will never wait longer than this amount of time.
	MaxTotalWait time.Duration
	// Retries will never be further than this far apart.
	MaxRetryWait time.Duration
}

func Middleware(check echo.HandlerFunc) echo.MiddlewareFunc {
	return MiddlewareWithConfig(Config{Check: check})
}

// MiddlewareWithConfig retries cfg.Check with backoff until it passes,
// then calls the next handler.
// If the check is still failing after MaxTotalWait,
// or the request is cancelled, the request fails with a 503 not_ready.
func MiddlewareWithConfig(cfg Config) echo.MiddlewareFunc {
	if cfg.MaxTotalWait == 0 {
		cfg.MaxTotalWait = time.Second * 30
	}
	if cfg.MaxRetryWait == 0 {
		cfg.MaxRetryWait = time.Second * 2
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if cfg.Check == nil {
			return func(c echo.Context) error {
				return errors.New("preflight check not configured")
			}
		}
		return func(c echo.Context) error {
			checkErr := cfg.Check(c)
			if checkErr == nil {
				return next(c)
			}
			giveUp := time.NewTimer(cfg.MaxTotalWait)
			defer giveUp.Stop()
			retryWait := 50 * time.Millisecond
			for {
				select {
				case <-time.After(retryWait):
				case <-giveUp.C:
					return notReady(checkErr)
				case <-c.Request().Context().Done():
					return notReady(checkErr)
				}
				if checkErr = cfg.Check(c); checkErr == nil {
					return next(c)
				}
				retryWait *= 2
				if retryWait > cfg.MaxRetryWait {
					retryWait = cfg.MaxRetryWait
				}
			}
		}
	}
}

func notReady(err error) error {
	return api.NewError(http.StatusServiceUnavailable, "not_ready").
		WithMessage(errors.Wrap(err, "preflight checks failed").Error())
}
