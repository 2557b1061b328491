package tracing

import sdktrace "go.opentelemetry.io/otel/sdk/trace"

// newSampler 根据配置创建采样器，未知类型按 parent_based 处理
func newSampler(cfg *Config) sdktrace.Sampler {
	switch cfg.SamplingType {
	case "always":
		return sdktrace.AlwaysSample()
	case "never":
		return sdktrace.NeverSample()
	case "ratio":
		return sdktrace.TraceIDRatioBased(cfg.SamplingRate)
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRate))
	}
}
