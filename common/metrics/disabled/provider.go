
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

//disabled包提供丢弃所有观测值的度量，运维端点未启用prometheus时使用
package disabled

import (
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics"
)

type Provider struct{}

func (*Provider) NewCounter(metrics.CounterOpts) metrics.Counter       { return &Counter{} }
func (*Provider) NewGauge(metrics.GaugeOpts) metrics.Gauge             { return &Gauge{} }
func (*Provider) NewHistogram(metrics.HistogramOpts) metrics.Histogram { return &Histogram{} }

type Counter struct{}

func (c *Counter) With(...string) metrics.Counter { return c }
func (*Counter) Add(float64)                      {}

type Gauge struct{}

func (g *Gauge) With(...string) metrics.Gauge { return g }
func (*Gauge) Add(float64)                    {}
func (*Gauge) Set(float64)                    {}

type Histogram struct{}

func (h *Histogram) With(...string) metrics.Histogram { return h }
func (*Histogram) Observe(float64)                    {}
