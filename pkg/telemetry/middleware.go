package telemetry

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// ServerName is the tracer name of the mock API
	ServerName = "holidaze-mockapi"

	// TraceIDHeader echoes the request's trace ID to the caller
	TraceIDHeader = "X-Trace-ID"

	unmatchedRoute = "unmatched"
)

// AttributesFunc returns extra span attributes once the handler chain has run,
// so values set on the gin.Context by later middleware are visible
type AttributesFunc func(c *gin.Context) []attribute.KeyValue

// GinMiddleware traces every request as a server span named "METHOD route".
// Requests that match no route share one span name.
func GinMiddleware(name string, extra AttributesFunc) gin.HandlerFunc {
	tracer := otel.Tracer(name)

	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPMethod(c.Request.Method),
				semconv.HTTPRoute(route),
			),
		)
		defer span.End()

		if id := GetTraceID(ctx); id != "" {
			c.Header(TraceIDHeader, id)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPStatusCode(status))
		if extra != nil {
			span.SetAttributes(extra(c)...)
		}
		if len(c.Errors) > 0 {
			span.RecordError(c.Errors.Last())
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
