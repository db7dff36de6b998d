package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Route handlers name their spans "httpapi.Handler.<Operation>". Middleware
// and helpers stay span-free so a trace reads edge span, handler span, then
// usecase spans.
const handlerSpanPrefix = "httpapi.Handler."

var apiTracer = otel.Tracer("pitwall/internal/interfaces/httpapi")

// startSpan opens a handler span under the edge span already in ctx. Without
// a recording parent (filtered routes like /healthz) or for a non-handler
// name it hands out a detached noop span: callers unconditionally End() the
// result, so the live parent must never be returned.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() || !isHandlerSpan(name) {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return apiTracer.Start(ctx, name)
}

func isHandlerSpan(name string) bool {
	return strings.HasPrefix(name, handlerSpanPrefix)
}
