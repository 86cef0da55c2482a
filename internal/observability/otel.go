package observability

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"atsmatch/internal/config"
	"atsmatch/internal/session"
	"atsmatch/internal/types"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ObservabilityConfig selects which trace and metric outputs an atsmatch run uses.
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	ConsoleOutput  bool
	PrettyPrint    bool
	SampleRate     float64
	Prometheus     PrometheusConfig
}

// Metrics holds the instruments recorded by analysis, store and watch code.
type Metrics struct {
	// Scoring
	AnalysesTotal     metric.Int64Counter
	ImprovementsTotal metric.Int64Counter
	AnalysisDuration  metric.Float64Histogram
	ATSScore          metric.Int64Histogram
	MatchPercentage   metric.Int64Histogram

	// Session store and watch mode
	StoreOperations metric.Int64Counter
	WatchThrottled  metric.Int64Counter
}

// ObservabilityManager owns the tracer and meter providers for one process.
type ObservabilityManager struct {
	config         ObservabilityConfig
	fullConfig     *config.Config
	resource       *resource.Resource
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error
	metricsHandler http.Handler
	consoleWriter  io.Writer
}

// NewObservabilityManager builds providers from config. A nil config yields
// a disabled manager.
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config) (*ObservabilityManager, error) {
	om := &ObservabilityManager{
		config:        obsConfig,
		fullConfig:    fullConfig,
		consoleWriter: os.Stderr, // stdout carries command output
	}
	if !obsConfig.Enabled {
		return om, nil
	}

	if err := om.initResource(); err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}

	if om.tracingEnabled() {
		if err := om.initTracing(); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if om.metricsEnabled() {
		if err := om.initMetrics(); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	return om, nil
}

// Disabled returns a manager whose tracer and metrics are no-ops.
func Disabled() *ObservabilityManager {
	return &ObservabilityManager{}
}

func (om *ObservabilityManager) tracingEnabled() bool {
	return om.fullConfig == nil || om.fullConfig.Observability.Tracing.Enabled
}

func (om *ObservabilityManager) metricsEnabled() bool {
	return om.fullConfig == nil || om.fullConfig.Observability.Metrics.Enabled
}

// initResource describes the atsmatch process for traces and metrics.
func (om *ObservabilityManager) initResource() error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", om.getServiceInstanceID()),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	om.resource = res
	return nil
}

// initTracing installs the tracer provider for analysis spans.
func (om *ObservabilityManager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	if om.config.ConsoleOutput {
		opts := []stdouttrace.Option{stdouttrace.WithWriter(om.consoleWriter)}
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	} else if om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled {
		exporter, err = om.createOTLPExporter()
	} else {
		exporter = &noOpSpanExporter{}
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	sampleRate := om.config.SampleRate
	if om.fullConfig != nil && om.fullConfig.Observability.Tracing.SampleRate > 0 {
		sampleRate = min(sampleRate, om.fullConfig.Observability.Tracing.SampleRate)
	}

	// CLI runs are short, so spans are exported synchronously.
	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
		trace.WithResource(om.resource),
		trace.WithSampler(trace.TraceIDRatioBased(sampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)

	return nil
}

// initMetrics installs the meter provider and the atsmatch instruments.
func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	meterProviderOptions := []sdkmetric.Option{
		sdkmetric.WithResource(om.resource),
	}
	for _, reader := range readers {
		meterProviderOptions = append(meterProviderOptions, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(meterProviderOptions...)

	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.initCustomMetrics()
}

// setupMetricReaders returns one reader per enabled output.
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if err := om.setupConsoleReader(&readers); err != nil {
		return nil, err
	}

	if err := om.setupOTLPReader(&readers); err != nil {
		return nil, err
	}

	if err := om.setupPrometheusReader(&readers); err != nil {
		return nil, err
	}

	// Instruments still need a reader when every output is off.
	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	return readers, nil
}

// setupConsoleReader prints metrics to stderr when console output is on.
func (om *ObservabilityManager) setupConsoleReader(readers *[]sdkmetric.Reader) error {
	if !om.config.ConsoleOutput {
		return nil
	}

	opts := []stdoutmetric.Option{stdoutmetric.WithWriter(om.consoleWriter)}
	if om.config.PrettyPrint {
		opts = append(opts, stdoutmetric.WithPrettyPrint())
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create console metric exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	*readers = append(*readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	return nil
}

// setupOTLPReader pushes metrics to the OTLP collector when enabled.
func (om *ObservabilityManager) setupOTLPReader(readers *[]sdkmetric.Reader) error {
	if om.fullConfig == nil || !om.fullConfig.Observability.OTLP.Enabled {
		return nil
	}

	otlpReader, err := om.createOTLPMetricsReader()
	if err != nil {
		return fmt.Errorf("failed to create OTLP metrics reader: %w", err)
	}
	*readers = append(*readers, otlpReader)
	return nil
}

// setupPrometheusReader sets up the Prometheus reader if enabled. The scrape
// endpoint is served by StartPrometheusServer, not here.
func (om *ObservabilityManager) setupPrometheusReader(readers *[]sdkmetric.Reader) error {
	if !om.config.Prometheus.Enabled {
		return nil
	}

	reader, handler, err := SetupPrometheusExporter(om.config.Prometheus)
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	*readers = append(*readers, reader)
	om.metricsHandler = handler
	return nil
}

// initCustomMetrics registers the scoring and infrastructure instruments.
func (om *ObservabilityManager) initCustomMetrics() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	om.metrics = &Metrics{}

	if err := om.createAnalysisMetrics(meter); err != nil {
		return err
	}

	return om.createInfrastructureMetrics(meter)
}

// createAnalysisMetrics registers analysis counts, durations and scores.
func (om *ObservabilityManager) createAnalysisMetrics(meter metric.Meter) error {
	var err error

	om.metrics.AnalysesTotal, err = meter.Int64Counter(
		"atsmatch_analyses_total",
		metric.WithDescription("Total number of resume analyses"),
	)
	if err != nil {
		return fmt.Errorf("failed to create analyses metric: %w", err)
	}

	om.metrics.ImprovementsTotal, err = meter.Int64Counter(
		"atsmatch_improvements_total",
		metric.WithDescription("Total number of rewritten resumes scored"),
	)
	if err != nil {
		return fmt.Errorf("failed to create improvements metric: %w", err)
	}

	om.metrics.AnalysisDuration, err = meter.Float64Histogram(
		"atsmatch_analysis_duration_seconds",
		metric.WithDescription("Time spent extracting, scoring and generating suggestions"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis duration metric: %w", err)
	}

	om.metrics.ATSScore, err = meter.Int64Histogram(
		"atsmatch_ats_score",
		metric.WithDescription("Distribution of ATS scores"),
		metric.WithExplicitBucketBoundaries(20, 40, 60, 80, 100),
	)
	if err != nil {
		return fmt.Errorf("failed to create ATS score metric: %w", err)
	}

	om.metrics.MatchPercentage, err = meter.Int64Histogram(
		"atsmatch_match_percentage",
		metric.WithDescription("Distribution of keyword match percentages"),
		metric.WithExplicitBucketBoundaries(20, 40, 60, 80, 100),
	)
	if err != nil {
		return fmt.Errorf("failed to create match percentage metric: %w", err)
	}

	return nil
}

// createInfrastructureMetrics registers store operation and watch throttle counters.
func (om *ObservabilityManager) createInfrastructureMetrics(meter metric.Meter) error {
	var err error

	om.metrics.StoreOperations, err = meter.Int64Counter(
		"atsmatch_store_operations_total",
		metric.WithDescription("Total number of session store operations"),
	)
	if err != nil {
		return fmt.Errorf("failed to create store operations metric: %w", err)
	}

	om.metrics.WatchThrottled, err = meter.Int64Counter(
		"atsmatch_watch_throttled_total",
		metric.WithDescription("File changes skipped by the watch rate limiter"),
	)
	if err != nil {
		return fmt.Errorf("failed to create watch throttled metric: %w", err)
	}

	return nil
}

// GetMetrics returns the instruments, or nil when disabled.
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om.metrics == nil {
		return &Metrics{}
	}
	return om.metrics
}

// MetricsHandler returns the instrumented Prometheus scrape handler, or nil
// when the Prometheus exporter is disabled.
func (om *ObservabilityManager) MetricsHandler() http.Handler {
	if om.metricsHandler == nil {
		return nil
	}
	return om.HTTPMiddleware()(om.metricsHandler)
}

// HTTPMiddleware wraps the scrape handler with otelhttp spans.
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	opts := []otelhttp.Option{}
	if om.tracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(om.tracerProvider))
	}
	if om.meterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(om.meterProvider))
	}
	return otelhttp.NewMiddleware(om.config.ServiceName, opts...)
}

// Tracer returns the atsmatch tracer.
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if om.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return om.tracerProvider.Tracer(name)
}

// Shutdown flushes pending spans and metrics.
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// TraceAnalysis runs one analysis inside a span and records its score metrics.
func (om *ObservabilityManager) TraceAnalysis(ctx context.Context, operation string, run func() types.AnalysisResult) types.AnalysisResult {
	ctx, span := om.Tracer("atsmatch.ats").Start(ctx, operation)
	defer span.End()

	start := time.Now()
	result := run()
	duration := time.Since(start).Seconds()

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
	}
	span.SetAttributes(
		attribute.String("ats.analysis_id", result.ID),
		attribute.Int("ats.score", result.Score),
		attribute.Int("ats.match_percentage", result.MatchPercentage),
		attribute.Int("ats.keyword_density", result.KeywordDensity),
		attribute.Int("ats.missing_keywords", len(result.MissingKeywords)),
	)

	om.GetMetrics().recordAnalysis(ctx, operation, duration, result, attrs)
	return result
}

// RecordStoreOperation counts a session store operation.
func (om *ObservabilityManager) RecordStoreOperation(ctx context.Context, operation string, success bool) {
	m := om.GetMetrics()
	if m.StoreOperations == nil {
		return
	}
	m.StoreOperations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	))
}

// RecordWatchThrottled counts a file change skipped by the watch rate limiter.
func (om *ObservabilityManager) RecordWatchThrottled(ctx context.Context, path string) {
	m := om.GetMetrics()
	if m.WatchThrottled == nil {
		return
	}
	m.WatchThrottled.Add(ctx, 1, metric.WithAttributes(attribute.String("file", path)))
}

func (m *Metrics) recordAnalysis(ctx context.Context, operation string, duration float64, result types.AnalysisResult, attrs []attribute.KeyValue) {
	if m.AnalysesTotal == nil {
		return
	}
	opt := metric.WithAttributes(attrs...)

	switch operation {
	case session.OperationImprove:
		m.ImprovementsTotal.Add(ctx, 1, opt)
	default:
		m.AnalysesTotal.Add(ctx, 1, opt)
	}
	m.AnalysisDuration.Record(ctx, duration, opt)
	m.ATSScore.Record(ctx, int64(result.Score), opt)
	m.MatchPercentage.Record(ctx, int64(result.MatchPercentage), opt)
}

// noOpSpanExporter drops spans when no exporter is configured.
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// createOTLPExporter sends analysis spans to the OTLP HTTP endpoint.
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	return exporter, nil
}

// createOTLPMetricsReader pushes metrics to the OTLP HTTP endpoint.
func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)), nil
}

// getServiceInstanceID defaults to the service name with a "-1" suffix.
func (om *ObservabilityManager) getServiceInstanceID() string {
	if om.fullConfig != nil && om.fullConfig.Observability.ServiceInstance != "" {
		return om.fullConfig.Observability.ServiceInstance
	}
	return om.config.ServiceName + "-1"
}

// getMetricsCollectionInterval defaults to 15s.
func (om *ObservabilityManager) getMetricsCollectionInterval() time.Duration {
	if om.fullConfig != nil && om.fullConfig.Observability.Metrics.CollectionInterval > 0 {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	return 15 * time.Second
}
