package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const TraceIDKey = "trace_id"

// TraceIDHeader carries the trace across the gateway fleet. Gateways
// forward either an X-Request-ID of their own or a previously issued
// X-Trace-ID; responses always answer with X-Trace-ID.
const (
	TraceIDHeader   = "X-Trace-ID"
	requestIDHeader = "X-Request-ID"
)

// TraceID tags every request with a trace id, minting one when the
// caller did not send one.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = c.GetHeader(requestIDHeader)
		}
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)
		c.Next()
	}
}

// GetTraceID returns the request's trace id, or "" outside TraceID.
func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}
