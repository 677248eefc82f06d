
//此源码被清华学神尹成大魔王专业翻译分析并修改
//尹成QQ77025077
//尹成微信18510341407
//尹成所在QQ群721929980
//尹成邮箱 yinc13@mails.tsinghua.edu.cn
//尹成毕业于清华大学,微软区块链领域全球最有价值专家
//https://mvp.microsoft.com/zh-cn/PublicProfile/4033620
/*
版权所有IBM公司。保留所有权利。

SPDX许可证标识符：Apache-2.0
**/

package main

import (
	"context"

	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	"github.com/ic-matcom/fabric-chaincode-go/common/metadata"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

//logExporter把结束的span写入debug日志
type logExporter struct {
	logger *flogging.FabricLogger
}

func (e *logExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		e.logger.Debugw("span",
			"name", s.Name(),
			"trace_id", s.SpanContext().TraceID().String(),
			"span_id", s.SpanContext().SpanID().String(),
			"status", s.Status().Code.String(),
			"duration", s.EndTime().Sub(s.StartTime()),
			"events", len(s.Events()),
		)
	}
	return nil
}

func (e *logExporter) Shutdown(ctx context.Context) error { return nil }

//newTracerProvider在未启用追踪时返回noop provider，shutdown总是可以安全调用
func newTracerProvider(c TracingConfig, ccName string) (trace.TracerProvider, func(context.Context) error) {
	if !c.Enabled {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", ccName),
		attribute.String("service.version", metadata.Version),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SamplingRatio))),
		sdktrace.WithBatcher(&logExporter{logger: flogging.MustGetLogger("chaincode.tracing")}),
		sdktrace.WithResource(res),
	)
	return tp, tp.Shutdown
}
