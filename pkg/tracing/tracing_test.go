package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"empty service", func(c *Config) { c.ServiceName = "" }, true},
		{"bad rate", func(c *Config) { c.SamplingRate = 1.5 }, true},
		{"bad exporter", func(c *Config) { c.ExporterType = "zipkin" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestNewTracerProvider_Spans(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.SamplingType = "always"

	tp, err := NewTracerProvider(context.Background(), cfg)
	require.NoError(t, err)
	defer tp.Shutdown(context.Background())

	ctx, span := StartSpan(context.Background(), "unit", attribute.String("k", "v"))
	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
	span.End()

	assert.Len(t, TraceID(ctx), 32)
	assert.Equal(t, "", TraceID(context.Background()))
}

func TestNewTracerProvider_DisabledUsesNoop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExporterType = "otlp"
	cfg.Enabled = false

	tp, err := NewTracerProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "noop", cfg.ExporterType)
	require.NoError(t, tp.Shutdown(context.Background()))
}
