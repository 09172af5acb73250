package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/double-entry-ledger/internal/domain/shared"
)

const (
	// TraceIDHeader carries the trace ID in requests and responses
	TraceIDHeader = "X-Trace-Id"

	// TraceIDKey is the gin context key holding the trace ID
	TraceIDKey = "trace_id"
)

// TraceID reuses the caller's X-Trace-Id or generates one, echoes it back and
// stores it on both the gin context and the request context
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Header(TraceIDHeader, traceID)
		c.Set(TraceIDKey, traceID)
		c.Request = c.Request.WithContext(shared.ContextWithTraceID(c.Request.Context(), traceID))

		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the gin context if present
func GetTraceID(c *gin.Context) string {
	if id, exists := c.Get(TraceIDKey); exists {
		if traceID, ok := id.(string); ok {
			return traceID
		}
	}
	return ""
}
