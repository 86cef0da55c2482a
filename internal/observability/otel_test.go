package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"atsmatch/internal/config"
	"atsmatch/internal/session"
	"atsmatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prometheusOnlyConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Observability.Enabled = true
	cfg.Observability.ServiceName = "atsmatch-test"
	cfg.Observability.SampleRate = 1.0
	cfg.Observability.Tracing.Enabled = true
	cfg.Observability.Tracing.SampleRate = 1.0
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.Metrics.CollectionInterval = time.Minute
	cfg.Observability.Prometheus.Enabled = true
	cfg.Observability.Prometheus.Endpoint = "/metrics"
	cfg.Observability.Prometheus.Port = "0"
	return cfg
}

func TestGetObservabilityConfig(t *testing.T) {
	cfg := prometheusOnlyConfig()
	cfg.Observability.Console.Enabled = true

	obs := GetObservabilityConfig(cfg, "1.2.3")
	assert.Equal(t, "atsmatch-test", obs.ServiceName)
	assert.Equal(t, "1.2.3", obs.ServiceVersion)
	assert.True(t, obs.ConsoleOutput)
	assert.True(t, obs.Prometheus.Enabled)

	fallback := GetObservabilityConfig(nil, "dev")
	assert.False(t, fallback.Enabled)
	assert.Equal(t, "atsmatch", fallback.ServiceName)
	assert.Equal(t, "/metrics", fallback.Prometheus.Endpoint)
}

func TestDisabledManagerIsNoop(t *testing.T) {
	om, err := NewObservabilityManager(GetObservabilityConfig(nil, "dev"), nil)
	require.NoError(t, err)

	result := om.TraceAnalysis(context.Background(), session.OperationAnalyze, func() types.AnalysisResult {
		return types.AnalysisResult{Score: 42}
	})
	assert.Equal(t, 42, result.Score)

	om.RecordStoreOperation(context.Background(), "get", true)
	om.RecordWatchThrottled(context.Background(), "resume.txt")
	assert.Nil(t, om.MetricsHandler())
	assert.NoError(t, om.Shutdown(context.Background()))

	assert.NotNil(t, Disabled().Tracer("x"))
}

func TestPrometheusScrapeIncludesAnalysisMetrics(t *testing.T) {
	cfg := prometheusOnlyConfig()
	om, err := NewObservabilityManager(GetObservabilityConfig(cfg, "test"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })

	ctx := context.Background()
	om.TraceAnalysis(ctx, session.OperationAnalyze, func() types.AnalysisResult {
		return types.AnalysisResult{ID: "a", Score: 72, MatchPercentage: 55}
	})
	om.TraceAnalysis(ctx, session.OperationImprove, func() types.AnalysisResult {
		return types.AnalysisResult{ID: "b", Score: 81, MatchPercentage: 70}
	})
	om.RecordStoreOperation(ctx, "set", true)

	handler := om.MetricsHandler()
	require.NotNil(t, handler)

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	for _, name := range []string{
		"atsmatch_analyses",
		"atsmatch_improvements",
		"atsmatch_ats_score_bucket",
		"atsmatch_match_percentage_bucket",
		"atsmatch_store_operations",
	} {
		assert.Contains(t, string(body), name)
	}
}

func TestStartPrometheusServerNilHandler(t *testing.T) {
	assert.NoError(t, StartPrometheusServer(context.Background(), nil, PrometheusConfig{}, nil))
}
