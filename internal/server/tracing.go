package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracingMiddleware starts a server span per request with otelgin and tags it with the
// store-specific request details. A nil provider uses the global one.
func tracingMiddleware(serviceName string, tp trace.TracerProvider) []gin.HandlerFunc {
	var opts []otelgin.Option
	if tp != nil {
		opts = append(opts, otelgin.WithTracerProvider(tp))
	}
	return []gin.HandlerFunc{otelgin.Middleware(serviceName, opts...), spanAttributes()}
}

// spanAttributes runs inside the otelgin span, so attributes and errors land before it ends.
func spanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if handle := c.Query("handle"); handle != "" {
			span.SetAttributes(attribute.String("pageshare.handle", handle))
		}
		if c.Query("debounce") == "true" {
			span.SetAttributes(attribute.Bool("pageshare.debounce", true))
		}
		if key := c.Param("key"); key != "" {
			span.SetAttributes(attribute.String("pageshare.kv.key", key))
		}

		c.Next()

		if c.Writer.Status() == http.StatusInsufficientStorage {
			span.SetAttributes(attribute.Bool("pageshare.not_stored", true))
		}
		for _, ginErr := range c.Errors {
			if ginErr.Err != nil {
				span.RecordError(ginErr.Err)
				span.SetStatus(codes.Error, ginErr.Error())
			}
		}
	}
}
