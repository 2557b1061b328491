package tracing

import (
	"fmt"
	"time"
)

// Config 链路追踪配置
type Config struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	Environment    string `mapstructure:"environment"`

	// ExporterType otlp / stdout / noop
	ExporterType     string            `mapstructure:"exporter"`
	ExporterEndpoint string            `mapstructure:"endpoint"`
	ExporterHeaders  map[string]string `mapstructure:"headers"`
	Insecure         bool              `mapstructure:"insecure"`

	// SamplingType always / never / ratio / parent_based
	SamplingType string  `mapstructure:"sampling_type"`
	SamplingRate float64 `mapstructure:"sampling_rate"`

	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Enabled:        false,
		ServiceName:    "uskup-dashboard",
		ServiceVersion: "1.0.0",
		Environment:    "development",
		ExporterType:   "noop",
		SamplingType:   "parent_based",
		SamplingRate:   1.0,
		BatchTimeout:   5 * time.Second,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("tracing: service name is required")
	}
	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		return fmt.Errorf("tracing: sampling rate must be between 0 and 1, got %v", c.SamplingRate)
	}
	switch c.ExporterType {
	case "otlp", "stdout", "noop":
	default:
		return fmt.Errorf("tracing: invalid exporter type %q", c.ExporterType)
	}
	return nil
}
