package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/logger"
)

// RequestLogger attaches a request-scoped logger carrying the request id
// to the request context and logs one line per request.  It must run after echo's RequestID middleware.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ctx := log.WithRequestID(req.Context(), rid)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			ctx = c.Request().Context()
			status := c.Response().Status
			ev := log.Info(ctx)
			if status >= 500 {
				ev = log.Error(ctx, err)
			} else if status >= 400 {
				ev = log.Warn(ctx)
			}
			ev.Str("method", req.Method).
				Str("route", c.Path()).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}

// WithAuthLogger adds the authenticated user id to the request-scoped
// logger so service-layer log lines carry it.  Use it after JWTAuth or
// OptionalJWT.
func WithAuthLogger(log *logger.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, ok := UserID(c); ok {
				req := c.Request()
				c.SetRequest(req.WithContext(log.WithUserID(req.Context(), id)))
			}
			return next(c)
		}
	}
}
