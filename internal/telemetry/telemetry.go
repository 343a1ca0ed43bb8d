// Package telemetry provides logging and OpenTelemetry instrumentation for devstop.
package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/yairfalse/devstop/internal/config"
)

// Provider wraps OTEL tracer and meter providers.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter

	// Metrics
	invocationDuration metric.Float64Histogram
	instancesStopped   metric.Int64Counter
	stopFailures       metric.Int64Counter
	listErrors         metric.Int64Counter
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	metricReaders []sdkmetric.Reader
	spanExporters []sdktrace.SpanExporter
}

// WithMetricReader adds a metric reader, e.g. a ManualReader in tests.
func WithMetricReader(r sdkmetric.Reader) Option {
	return func(o *options) { o.metricReaders = append(o.metricReaders, r) }
}

// WithSpanExporter adds a batched span exporter.
func WithSpanExporter(e sdktrace.SpanExporter) Option {
	return func(o *options) { o.spanExporters = append(o.spanExporters, e) }
}

// NewProvider creates a new telemetry provider and installs it globally.
func NewProvider(ctx context.Context, cfg config.OTELConfig, opts ...Option) (*Provider, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	p := &Provider{}

	if err := p.setupTracing(ctx, cfg, res, o); err != nil {
		return nil, err
	}

	if err := p.setupMetrics(ctx, cfg, res, o); err != nil {
		if p.tracerProvider != nil {
			_ = p.tracerProvider.Shutdown(ctx)
		}
		return nil, err
	}

	if err := p.initMetrics(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Provider) setupTracing(ctx context.Context, cfg config.OTELConfig, res *resource.Resource, o *options) error {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
	}

	if cfg.Traces.Enabled && cfg.Endpoint != "" {
		exp, err := createTraceExporter(ctx, cfg)
		if err != nil {
			return fmt.Errorf("create trace exporter: %w", err)
		}
		sampler := sdktrace.TraceIDRatioBased(cfg.Traces.SampleRate)
		opts = append(opts, sdktrace.WithBatcher(exp), sdktrace.WithSampler(sampler))
	}
	for _, exp := range o.spanExporters {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}

	p.tracerProvider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(p.tracerProvider)
	p.tracer = p.tracerProvider.Tracer("devstop")

	return nil
}

func (p *Provider) setupMetrics(ctx context.Context, cfg config.OTELConfig, res *resource.Resource, o *options) error {
	opts := []sdkmetric.Option{
		sdkmetric.WithResource(res),
	}

	if cfg.Metrics.Enabled && cfg.Endpoint != "" {
		exp, err := createMetricExporter(ctx, cfg)
		if err != nil {
			return fmt.Errorf("create metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
	}
	for _, r := range o.metricReaders {
		opts = append(opts, sdkmetric.WithReader(r))
	}

	p.meterProvider = sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(p.meterProvider)
	p.meter = p.meterProvider.Meter("devstop")

	return nil
}

func createTraceExporter(ctx context.Context, cfg config.OTELConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	return otlptracegrpc.New(ctx, opts...)
}

func createMetricExporter(ctx context.Context, cfg config.OTELConfig) (sdkmetric.Exporter, error) {
	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	return otlpmetricgrpc.New(ctx, opts...)
}

func (p *Provider) initMetrics() error {
	var err error

	p.invocationDuration, err = p.meter.Float64Histogram(
		"devstop_invocation_duration_seconds",
		metric.WithDescription("Duration of stop invocations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("create invocation_duration: %w", err)
	}

	p.instancesStopped, err = p.meter.Int64Counter(
		"devstop_instances_stopped_total",
		metric.WithDescription("Instances a stop was initiated for"),
	)
	if err != nil {
		return fmt.Errorf("create instances_stopped: %w", err)
	}

	p.stopFailures, err = p.meter.Int64Counter(
		"devstop_stop_failures_total",
		metric.WithDescription("Stop requests rejected by the provider"),
	)
	if err != nil {
		return fmt.Errorf("create stop_failures: %w", err)
	}

	p.listErrors, err = p.meter.Int64Counter(
		"devstop_list_errors_total",
		metric.WithDescription("Failed instance listing queries"),
	)
	if err != nil {
		return fmt.Errorf("create list_errors: %w", err)
	}

	return nil
}

// Tracer returns the tracer.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// ForceFlush exports buffered spans and metrics. Lambda freezes the
// process between invocations, so call it before returning from each one.
func (p *Provider) ForceFlush(ctx context.Context) error {
	if p.tracerProvider != nil {
		if err := p.tracerProvider.ForceFlush(ctx); err != nil {
			return fmt.Errorf("flush tracer: %w", err)
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.ForceFlush(ctx); err != nil {
			return fmt.Errorf("flush meter: %w", err)
		}
	}
	return nil
}

// RecordInvocation records the duration and outcome of one invocation.
func (p *Provider) RecordInvocation(ctx context.Context, region string, statusCode int, d time.Duration) {
	p.invocationDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("region", region),
		attribute.String("status_code", strconv.Itoa(statusCode)),
	))
}

// RecordStopped records instances a stop was initiated for.
func (p *Provider) RecordStopped(ctx context.Context, region string, count int) {
	p.instancesStopped.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("region", region),
	))
}

// RecordStopFailures records rejected stop requests.
func (p *Provider) RecordStopFailures(ctx context.Context, region string, count int) {
	p.stopFailures.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("region", region),
	))
}

// RecordListError records a failed listing query.
func (p *Provider) RecordListError(ctx context.Context, region string) {
	p.listErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("region", region),
	))
}

// Shutdown flushes and shuts down the providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown tracer: %w", err)
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown meter: %w", err)
		}
	}
	return nil
}
