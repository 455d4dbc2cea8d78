package factory

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type requestIDKey struct{}

func NewModuleLogger(module string) logrus.FieldLogger {
	return logrus.WithField("module", module)
}

// WithRequestID stores the transport request id for loggers further down the call chain.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}

// LoggerWithContext tags logger with the id the request id middleware assigned.
// Generated ids only exist on the response header.
func LoggerWithContext(logger logrus.FieldLogger, ctx echo.Context) logrus.FieldLogger {
	requestID := ctx.Request().Header.Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = ctx.Response().Header().Get(echo.HeaderXRequestID)
	}
	if requestID == "" {
		requestID = RequestID(ctx.Request().Context())
	}
	if requestID == "" {
		return logger
	}
	return logger.WithField("request_id", requestID)
}

func LoggerWithRequestContext(logger logrus.FieldLogger, ctx context.Context) logrus.FieldLogger {
	if requestID := RequestID(ctx); requestID != "" {
		return logger.WithField("request_id", requestID)
	}
	return logger
}

// PropagateRequestID copies the echo request id into the request context so
// services log with it.
func PropagateRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			requestID := ctx.Response().Header().Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = ctx.Request().Header.Get(echo.HeaderXRequestID)
			}
			if requestID != "" {
				ctx.SetRequest(ctx.Request().WithContext(WithRequestID(ctx.Request().Context(), requestID)))
			}
			return next(ctx)
		}
	}
}
