// Package tracer 初始化 Jaeger opentracing
package tracer

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New 创建 Jaeger tracer 并设为全局 tracer
// agent 为空时返回 opentracing.NoopTracer
func New(serviceName, agent string) (opentracing.Tracer, io.Closer, error) {
	if agent == "" {
		t := opentracing.NoopTracer{}
		opentracing.SetGlobalTracer(t)
		return t, nopCloser{}, nil
	}
	cfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:           false,
			LocalAgentHostPort: agent,
		},
	}
	t, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, nil, errors.Wrap(err, "init jaeger tracer")
	}
	opentracing.SetGlobalTracer(t)
	return t, closer, nil
}
