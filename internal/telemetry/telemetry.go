// Package telemetry installs the OpenTelemetry tracer provider. Finished
// spans are written to the logger at debug level.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Init sets the global tracer provider when enabled. The returned shutdown
// function is always safe to call.
func Init(serviceName string, enabled bool, logger *slog.Logger) func() {
	if !enabled {
		return func() {}
	}

	tp := NewProvider(serviceName, logger)
	otel.SetTracerProvider(tp)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("tracer shutdown", "err", err)
		}
	}
}

func NewProvider(serviceName string, logger *slog.Logger) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(&logProcessor{logger: logger}),
	)
}

type logProcessor struct {
	logger *slog.Logger
}

func (p *logProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *logProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	args := []any{
		"span", s.Name(),
		"duration", s.EndTime().Sub(s.StartTime()).Round(time.Millisecond),
		"trace_id", s.SpanContext().TraceID().String(),
	}
	for _, kv := range s.Attributes() {
		args = append(args, string(kv.Key), kv.Value.Emit())
	}
	if s.Status().Code == codes.Error {
		args = append(args, "error", s.Status().Description)
	}
	p.logger.Debug("span finished", args...)
}

func (p *logProcessor) Shutdown(context.Context) error   { return nil }
func (p *logProcessor) ForceFlush(context.Context) error { return nil }
