// Package otel adapts go.opentelemetry.io/otel's trace API to the
// observability.Tracer/Span interfaces, the way
// digitallysavvy-go-ai/pkg/telemetry.GetTracer picks between a real and a
// no-op tracer based on whether telemetry is enabled.
package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	otelattr "go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/aiproxy/sseproxy/providers/observability"
)

// TracerName identifies spans emitted by this proxy in a trace backend.
const TracerName = "sseproxy"

// Tracer implements observability.Tracer against an otel trace.Tracer.
type Tracer struct {
	tracer trace.Tracer
}

// New returns a Tracer backed by the global otel tracer provider. Before a
// real provider is registered (e.g. in tests, or when tracing is disabled)
// the global provider is itself a no-op, so spans are cheap no-ops until a
// caller wires an exporter.
func New() *Tracer {
	return &Tracer{tracer: otel.Tracer(TracerName)}
}

// NewNoop returns a Tracer that never emits spans, for callers that want to
// disable tracing explicitly rather than relying on an unconfigured global
// provider.
func NewNoop() *Tracer {
	return &Tracer{tracer: noop.NewTracerProvider().Tracer(TracerName)}
}

// StartSpan implements observability.Tracer.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toOtelAttrs(attrs)...))
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() { s.span.End() }

func (s *otelSpan) SetAttributes(attrs ...observability.Attribute) {
	s.span.SetAttributes(toOtelAttrs(attrs)...)
}

func (s *otelSpan) SetStatus(code observability.StatusCode, description string) {
	s.span.SetStatus(toOtelStatus(code), description)
}

func (s *otelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
}

func (s *otelSpan) AddEvent(name string, attrs ...observability.Attribute) {
	s.span.AddEvent(name, trace.WithAttributes(toOtelAttrs(attrs)...))
}

func toOtelStatus(code observability.StatusCode) codes.Code {
	switch code {
	case observability.StatusOK:
		return codes.Ok
	case observability.StatusError:
		return codes.Error
	default:
		return codes.Unset
	}
}

func toOtelAttrs(attrs []observability.Attribute) []otelattr.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]otelattr.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			out = append(out, otelattr.String(a.Key, v))
		case int:
			out = append(out, otelattr.Int(a.Key, v))
		case int64:
			out = append(out, otelattr.Int64(a.Key, v))
		case float64:
			out = append(out, otelattr.Float64(a.Key, v))
		case bool:
			out = append(out, otelattr.Bool(a.Key, v))
		default:
			out = append(out, otelattr.String(a.Key, observability.TruncateStringDefault(fmt.Sprintf("%v", v))))
		}
	}
	return out
}
