package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials"

	"github.com/apisada-prim/pawbook/internal/config"
)

const instrumentationName = "github.com/apisada-prim/pawbook"

// newExporter builds the span exporter; tests replace it.
var newExporter = func(ctx context.Context, cfg config.OTELConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
	}
	return otlptracegrpc.New(ctx, opts...)
}

// SetupOTel installs a global tracer provider exporting to the OTLP/gRPC
// collector in cfg, plus W3C trace-context propagation. When tracing is
// disabled it changes nothing and the returned shutdown is a no-op.
func SetupOTel(ctx context.Context, cfg config.OTELConfig, version string) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(version),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

// StartHandoff opens a span for one step of a handoff flow, named e.g.
// "handoff.qr.verify". petID is attached when known.
func StartHandoff(ctx context.Context, flow, step, petID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("pawbook.handoff.flow", flow),
		attribute.String("pawbook.handoff.step", step),
	}
	if petID != "" {
		attrs = append(attrs, attribute.String("pawbook.pet_id", petID))
	}
	return otel.Tracer(instrumentationName).Start(ctx, "handoff."+flow+"."+step, trace.WithAttributes(attrs...))
}
