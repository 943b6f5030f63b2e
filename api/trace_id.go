package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/lithictech/go-profiles/logctx"
)

const TraceIdHeader = "Trace-Id"

var candidateTraceHeaders = []string{
	TraceIdHeader,
	echo.HeaderXRequestID,
}

// TraceId returns the trace id for the request.
//
// The first call caches the id in the echo context and sets the Trace-Id response header.
// The id comes from the Trace-Id or X-Request-Id request headers, in that order,
// or is generated with logctx.IdProvider if neither is present.
func TraceId(c echo.Context) string {
	traceIdKey := string(logctx.RequestTraceIdKey)
	if id, ok := c.Get(traceIdKey).(string); ok {
		return id
	}
	id := ""
	for _, header := range candidateTraceHeaders {
		if id = c.Request().Header.Get(header); id != "" {
			break
		}
	}
	if id == "" {
		id = logctx.IdProvider()
	}
	c.Set(traceIdKey, id)
	c.Response().Header().Set(TraceIdHeader, id)
	return id
}

// StdContext returns a standard context from an echo context,
// carrying the request's trace id and logger (see logctx).
// Use it to call into code that shouldn't depend on echo.
func StdContext(c echo.Context) context.Context {
	cc := c.Request().Context()
	cc = context.WithValue(cc, logctx.RequestTraceIdKey, TraceId(c))
	cc = logctx.WithLogger(cc, Logger(c))
	return cc
}
