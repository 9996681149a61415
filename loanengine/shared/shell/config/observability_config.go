package config

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const metricExportInterval = 10 * time.Second

// TelemetrySettings selects the exporters of the OpenTelemetry providers.
// Without OTLPEndpoint spans are not exported, and without PrometheusRegisterer metrics are only exported via OTLP.
type TelemetrySettings struct {
	ServiceName          string
	ServiceVersion       string
	OTLPEndpoint         string
	PrometheusRegisterer prometheus.Registerer
}

// TelemetryProviders holds the OpenTelemetry providers of the running service.
type TelemetryProviders struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
	Resource       *resource.Resource
}

// NewTelemetryProviders creates the providers and installs them as the global OpenTelemetry providers.
func NewTelemetryProviders(ctx context.Context, settings TelemetrySettings) (*TelemetryProviders, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(settings.ServiceName),
			semconv.ServiceVersionKey.String(settings.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceOptions := []trace.TracerProviderOption{trace.WithResource(res)}
	metricOptions := []metric.Option{metric.WithResource(res)}

	if settings.OTLPEndpoint != "" {
		traceExporter, traceErr := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(settings.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if traceErr != nil {
			return nil, traceErr
		}
		traceOptions = append(traceOptions, trace.WithBatcher(traceExporter))

		metricExporter, metricErr := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(settings.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if metricErr != nil {
			return nil, metricErr
		}
		metricOptions = append(metricOptions, metric.WithReader(
			metric.NewPeriodicReader(metricExporter, metric.WithInterval(metricExportInterval)),
		))
	}

	if settings.PrometheusRegisterer != nil {
		promExporter, promErr := otelprometheus.New(otelprometheus.WithRegisterer(settings.PrometheusRegisterer))
		if promErr != nil {
			return nil, promErr
		}
		metricOptions = append(metricOptions, metric.WithReader(promExporter))
	}

	tracerProvider := trace.NewTracerProvider(traceOptions...)
	meterProvider := metric.NewMeterProvider(metricOptions...)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TelemetryProviders{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		Resource:       res,
	}, nil
}

// Shutdown flushes and stops both providers.
func (p *TelemetryProviders) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.TracerProvider.Shutdown(ctx),
		p.MeterProvider.Shutdown(ctx),
	)
}
