// Package observability provides OpenTelemetry tracing, build metrics and
// the build audit log.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

const (
	// TracerName is the name used for the rspack tracer.
	TracerName = "github.com/efebarandurmaz/rspack"
)

// TracingConfig configures the OpenTelemetry tracing.
type TracingConfig struct {
	// ServiceName is the name of the service (default: "rspack")
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Environment is the build mode (development, production)
	Environment string

	// OTLPEndpoint is the OTLP gRPC endpoint (e.g., "localhost:4317")
	// If empty, tracing is disabled.
	OTLPEndpoint string

	// SampleRate is the trace sampling rate (0.0 to 1.0, default: 1.0)
	SampleRate float64
}

// DefaultTracingConfig returns a default tracing configuration.
func DefaultTracingConfig() *TracingConfig {
	return &TracingConfig{
		ServiceName:    "rspack",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		SampleRate:     1.0,
	}
}

// TracerProvider wraps the OpenTelemetry tracer provider.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// InitTracing initializes OpenTelemetry tracing.
// Returns a no-op tracer if OTLPEndpoint is empty.
func InitTracing(ctx context.Context, cfg *TracingConfig) (*TracerProvider, error) {
	if cfg == nil {
		cfg = DefaultTracingConfig()
	}

	if cfg.OTLPEndpoint == "" {
		return &TracerProvider{
			tracer: otel.Tracer(TracerName),
		}, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithDialOption(grpc.WithUserAgent(cfg.ServiceName+"/"+cfg.ServiceVersion)),
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	var sampler sdktrace.Sampler
	if cfg.SampleRate >= 1.0 {
		sampler = sdktrace.AlwaysSample()
	} else if cfg.SampleRate <= 0 {
		sampler = sdktrace.NeverSample()
	} else {
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{
		provider: provider,
		tracer:   provider.Tracer(TracerName),
	}, nil
}

// Shutdown flushes and stops the tracer provider.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider != nil {
		return tp.provider.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the underlying tracer.
func (tp *TracerProvider) Tracer() trace.Tracer {
	return tp.tracer
}

// Span kinds recorded under rspack.span.kind.
const (
	SpanKindAssemble = "assemble"
	SpanKindBuild    = "build"
	SpanKindPlugin   = "plugin"
	SpanKindServe    = "serve"
)

// StartAssembleSpan starts a span around plugin assembly.
func StartAssembleSpan(ctx context.Context, platform string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "rspack.assemble",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("rspack.span.kind", SpanKindAssemble),
			attribute.String("rspack.target.platform", platform),
		),
	)
}

// RecordAssembleResult records the assembled plugin list on a span.
func RecordAssembleResult(span trace.Span, names []string, userCount int) {
	span.SetAttributes(
		attribute.Int("rspack.plugins.count", len(names)),
		attribute.Int("rspack.plugins.user_count", userCount),
		attribute.StringSlice("rspack.plugins.order", names),
	)
}

// StartBuildSpan starts a span for Compiler.Build.
func StartBuildSpan(ctx context.Context, pluginCount, entryCount int) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "rspack.build",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("rspack.span.kind", SpanKindBuild),
			attribute.Int("rspack.plugins.count", pluginCount),
			attribute.Int("rspack.entries.count", entryCount),
		),
	)
}

// RecordBuildResult records emitted asset totals on a build span.
func RecordBuildResult(span trace.Span, assetCount, totalBytes int) {
	span.SetAttributes(
		attribute.Int("rspack.assets.count", assetCount),
		attribute.Int("rspack.assets.bytes", totalBytes),
	)
}

// StartPluginSpan starts a span for a single Plugin.Apply call.
func StartPluginSpan(ctx context.Context, plugin string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, fmt.Sprintf("plugin.%s", plugin),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("rspack.span.kind", SpanKindPlugin),
			attribute.String("rspack.plugin.name", plugin),
		),
	)
}

// StartServeSpan starts a span covering the dev server lifetime.
func StartServeSpan(ctx context.Context, addr, root string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "rspack.serve",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("rspack.span.kind", SpanKindServe),
			attribute.String("server.address", addr),
			attribute.String("rspack.serve.root", root),
		),
	)
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
