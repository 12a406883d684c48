// Package context carries request-scoped observability identifiers.
package context

import (
	"context"

	"github.com/gin-gonic/gin"
)

type contextKey string

const requestIDKey contextKey = "observability_request_id"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

func RequestIDFromGin(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return ""
	}
	return RequestIDFromContext(c.Request.Context())
}
