package tracing

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("METEORS_TRACING_ENABLED", "true")
	t.Setenv("METEORS_TRACING_EXPORTER", "OTLP")
	t.Setenv("METEORS_TRACING_SERVICE_NAME", "meteors-test")
	t.Setenv("METEORS_TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("METEORS_OTLP_ENDPOINT", "collector:4317")

	cfg := ConfigFromEnv(testLogger())
	assert.Equal(t, Config{
		Enabled:     true,
		ServiceName: "meteors-test",
		Exporter:    "otlp",
		Endpoint:    "collector:4317",
		SampleRatio: 0.25,
	}, cfg)
}

func TestConfigFromEnvInvalidValues(t *testing.T) {
	t.Setenv("METEORS_TRACING_ENABLED", "maybe")
	t.Setenv("METEORS_TRACING_SAMPLE_RATIO", "2")

	cfg := ConfigFromEnv(testLogger())
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1.0, cfg.SampleRatio)
	assert.Equal(t, "stdout", cfg.Exporter)
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{}, testLogger())
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitUnsupportedExporter(t *testing.T) {
	_, err := Init(context.Background(), Config{Enabled: true, Exporter: "zipkin"}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported tracing exporter")
}
