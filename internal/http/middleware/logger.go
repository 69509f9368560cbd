package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"shareapi/internal/logger"
)

// Logger logs each HTTP request as one structured event:
// request_id (from RequestID), method, path, status and latency in milliseconds.
// 5xx responses are logged at error level and 4xx at warn.
// Handlers reach a request-scoped logger through zerolog.Ctx(c.UserContext()).
func Logger(log zerolog.Logger) fiber.Handler {
	log = logger.Component(log, "http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		rid := RequestIDFrom(c)
		reqLog := log.With().Str(logger.FieldRequestID, rid).Logger()
		c.SetUserContext(reqLog.WithContext(c.UserContext()))

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = reqLog.Error()
		case status >= fiber.StatusBadRequest:
			ev = reqLog.Warn()
		default:
			ev = reqLog.Info()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("latency", float64(time.Since(start).Microseconds())/1000).
			Str("ip", c.IP()).
			Msg("request")

		return err
	}
}

// LoggerWithWriter is Logger writing JSON to w with ts rendered in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	if loc == nil {
		loc = time.UTC
	}
	log := zerolog.New(w).Hook(zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
		e.Str(zerolog.TimestampFieldName, time.Now().In(loc).Format(zerolog.TimeFieldFormat))
	}))
	return Logger(log)
}
