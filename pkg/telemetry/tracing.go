package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName — имя трейсера для спанов воркера и бота.
const InstrumentationName = "github.com/Gunvolt24/order_notifier"

// Options — параметры экспорта трейсов.
type Options struct {
	ServiceName string
	Endpoint    string
	SampleRatio float64
}

// Shutdown — корректное завершение провайдера.
type Shutdown func(context.Context) error

// NoopShutdown — для выключенного трейсинга.
func NoopShutdown(context.Context) error { return nil }

// SetupTracing настраивает OTLP/HTTP экспорт, семплинг и глобальные пропагаторы.
func SetupTracing(ctx context.Context, opts Options) (Shutdown, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = "localhost:4318"
	}
	ratio := min(max(opts.SampleRatio, 0), 1)

	// Экспортёр OTLP/HTTP без TLS.
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(opts.ServiceName),
			attribute.String("telemetry.sdk", "opentelemetry"),
		)),
	)

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, propagation.Baggage{},
		),
	)

	return traceProvider.Shutdown, nil
}

// Tracer — трейсер из глобального провайдера (noop, пока SetupTracing не вызван).
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
