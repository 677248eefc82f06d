
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


package shim

import (
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics"
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics/disabled"
)

var (
	shimRequestsReceived = metrics.CounterOpts{
		Namespace:  "chaincode",
		Name:       "shim_requests_received",
		Help:       "The number of chaincode shim requests received.",
		LabelNames: []string{"type", "channel", "chaincode"},
	}
	shimRequestsCompleted = metrics.CounterOpts{
		Namespace:  "chaincode",
		Name:       "shim_requests_completed",
		Help:       "The number of chaincode shim requests completed.",
		LabelNames: []string{"type", "channel", "chaincode", "success"},
	}
	shimRequestDuration = metrics.HistogramOpts{
		Namespace:  "chaincode",
		Name:       "shim_request_duration",
		Help:       "The time to complete chaincode shim requests.",
		LabelNames: []string{"type", "channel", "chaincode", "success"},
	}
	shimPendingOperations = metrics.GaugeOpts{
		Namespace:  "chaincode",
		Name:       "shim_pending_operations",
		Help:       "The number of ledger operations waiting for a response from the peer.",
		LabelNames: []string{"chaincode"},
	}
)

type HandlerMetrics struct {
	ShimRequestsReceived  metrics.Counter
	ShimRequestsCompleted metrics.Counter
	ShimRequestDuration   metrics.Histogram
	ShimPendingOperations metrics.Gauge
}

func NewHandlerMetrics(p metrics.Provider) *HandlerMetrics {
	return &HandlerMetrics{
		ShimRequestsReceived:  p.NewCounter(shimRequestsReceived),
		ShimRequestsCompleted: p.NewCounter(shimRequestsCompleted),
		ShimRequestDuration:   p.NewHistogram(shimRequestDuration),
		ShimPendingOperations: p.NewGauge(shimPendingOperations),
	}
}

func disabledHandlerMetrics() *HandlerMetrics {
	return NewHandlerMetrics(&disabled.Provider{})
}
