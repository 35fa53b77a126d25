package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Global telemetry handles
var (
	// Tracer for distributed tracing
	Tracer = otel.Tracer("github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied")

	// Meter for metrics
	Meter = otel.Meter("github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied")

	// Metrics - following OTEL naming conventions
	EventsClassified     metric.Int64Counter
	FindingsEmitted      metric.Int64Counter
	VerificationDegraded metric.Int64Counter
	IngestionFailures    metric.Int64Counter
	HandleDuration       metric.Float64Histogram
)

// Config for OTEL initialization
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTELEndpoint   string // e.g., "localhost:4317" for a collector sidecar
	Insecure       bool   // true for local collectors
	Disabled       bool   // skip exporters entirely, instruments become no-ops
}

// Telemetry owns the trace and metric providers for the process lifetime.
type Telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// InitOTEL initializes OpenTelemetry with traces and metrics. With
// cfg.Disabled the instruments still exist but record nowhere, so
// callers never need to branch on telemetry being off.
func InitOTEL(ctx context.Context, cfg Config) (*Telemetry, error) {
	cfg = applyConfigDefaults(cfg)

	if cfg.Disabled {
		if err := initMetrics(); err != nil {
			return nil, err
		}
		return &Telemetry{}, nil
	}

	res, err := createOTELResource(cfg)
	if err != nil {
		return nil, err
	}

	return setupProviders(ctx, cfg, res)
}

// Flush forces pending spans and metrics out to the collector. The
// function runtime freezes the process between invocations, so the
// handler calls this before returning.
func (t *Telemetry) Flush(ctx context.Context) error {
	if t.tracerProvider == nil {
		return nil
	}

	var err error
	if e := t.tracerProvider.ForceFlush(ctx); e != nil {
		err = fmt.Errorf("trace flush failed: %w", e)
	}
	if e := t.meterProvider.ForceFlush(ctx); e != nil && err == nil {
		err = fmt.Errorf("metric flush failed: %w", e)
	}
	return err
}

// Shutdown flushes and releases both providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.tracerProvider == nil {
		return nil
	}

	var err error
	if e := t.tracerProvider.Shutdown(ctx); e != nil {
		err = fmt.Errorf("trace shutdown failed: %w", e)
	}
	if e := t.meterProvider.Shutdown(ctx); e != nil && err == nil {
		err = fmt.Errorf("metric shutdown failed: %w", e)
	}
	return err
}

// applyConfigDefaults applies default values to config
func applyConfigDefaults(cfg Config) Config {
	if cfg.OTELEndpoint == "" {
		cfg.OTELEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
		if cfg.OTELEndpoint == "" {
			cfg.OTELEndpoint = "localhost:4317"
		}
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = "s3-tag-applied"
	}

	return cfg
}

// createOTELResource creates the OTEL resource with service information
func createOTELResource(cfg Config) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// setupProviders sets up trace and metric providers
func setupProviders(ctx context.Context, cfg Config, res *resource.Resource) (*Telemetry, error) {
	traceProvider, err := setupTraceProvider(ctx, cfg, res)
	if err != nil {
		return nil, fmt.Errorf("failed to setup traces: %w", err)
	}

	meterProvider, err := setupMetricProvider(ctx, cfg, res)
	if err != nil {
		_ = traceProvider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to setup metrics: %w", err)
	}

	if err := initMetrics(); err != nil {
		_ = traceProvider.Shutdown(ctx)
		_ = meterProvider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return &Telemetry{
		tracerProvider: traceProvider,
		meterProvider:  meterProvider,
	}, nil
}

// setupTraceProvider configures trace provider with OTLP exporter
func setupTraceProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.OTELEndpoint),
	}

	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithDialOption(
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	// Update global tracer
	Tracer = provider.Tracer("github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied")

	return provider, nil
}

// setupMetricProvider configures metric provider with a push-based OTLP
// reader. There is no pull surface here: the process only runs while an
// invocation is in flight, so nothing could scrape it.
func setupMetricProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.OTELEndpoint),
	}

	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		))
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(10*time.Second),
		)),
	)

	otel.SetMeterProvider(provider)

	// Update global meter
	Meter = provider.Meter("github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied")

	return provider, nil
}

// initMetrics initializes all metric instruments
func initMetrics() error {
	if err := initCounters(); err != nil {
		return err
	}

	return initHistograms()
}

// initCounters initializes counter metrics
func initCounters() error {
	var err error

	EventsClassified, err = Meter.Int64Counter("soar.s3tag.events.classified.total",
		metric.WithDescription("Total number of tagging events classified"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create events_classified counter: %w", err)
	}

	FindingsEmitted, err = Meter.Int64Counter("soar.s3tag.findings.emitted.total",
		metric.WithDescription("Total number of findings submitted to Security Hub"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create findings_emitted counter: %w", err)
	}

	VerificationDegraded, err = Meter.Int64Counter("soar.s3tag.verification.degraded.total",
		metric.WithDescription("Total number of findings emitted without cross-account verification"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create verification_degraded counter: %w", err)
	}

	IngestionFailures, err = Meter.Int64Counter("soar.s3tag.ingestion.failures.total",
		metric.WithDescription("Total number of finding submissions that failed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create ingestion_failures counter: %w", err)
	}

	return nil
}

// initHistograms initializes histogram metrics
func initHistograms() error {
	var err error

	HandleDuration, err = Meter.Float64Histogram("soar.s3tag.handle.duration.seconds",
		metric.WithDescription("Duration of event classification"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create handle_duration histogram: %w", err)
	}

	return nil
}
