package otel

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fileapi/internal/config"
)

func TestGetSampler(t *testing.T) {
	tests := []struct {
		name    string
		sampler string
		arg     string
		want    string
	}{
		{"always on", "always_on", "", "AlwaysOnSampler"},
		{"always off", "always_off", "", "AlwaysOffSampler"},
		{"ratio", "traceidratio", "0.5", "TraceIDRatioBased{0.5}"},
		{"ratio with bad arg falls back to full sampling", "traceidratio", "abc", "AlwaysOnSampler"},
		{"parent based ratio", "parentbased_traceidratio", "0.25", "ParentBased{root:TraceIDRatioBased{0.25}"},
		{"parent based off", "parentbased_always_off", "", "ParentBased{root:AlwaysOffSampler"},
		{"unknown", "bogus", "", "ParentBased{root:AlwaysOnSampler"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := getSampler(tt.sampler, tt.arg).Description()
			assert.True(t, strings.HasPrefix(got, tt.want), got)
		})
	}
}

func TestInit_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	shutdown, err := Init(context.Background(), config.TracingConfig{Enabled: false}, logger)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"tracing_enabled":false`)
}

func TestInit_UnsupportedProtocol(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	shutdown, err := Init(context.Background(), config.TracingConfig{
		Enabled:     true,
		ServiceName: "fileapi-test",
		Protocol:    "carrier-pigeon",
	}, logger)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "tracing_init_failed")
	assert.Contains(t, buf.String(), "unsupported OTLP protocol: carrier-pigeon")
}
