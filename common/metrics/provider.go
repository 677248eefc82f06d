
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


package metrics

//Provider是度量的抽象工厂，具体实现由prometheus或disabled包提供。
type Provider interface {
//NewCounter创建计数器的新实例。
	NewCounter(CounterOpts) Counter
//NewGauge创建仪表的新实例。
	NewGauge(GaugeOpts) Gauge
//NewHistogram创建直方图的新实例。
	NewHistogram(HistogramOpts) Histogram
}

//Counter表示单调递增的计数。
type Counter interface {
//With为CounterOpts中声明的所有LabelNames提供值，
//以名称、值交替出现。
	With(labelValues ...string) Counter

//Add将delta加到计数器上，delta必须为非负数。
	Add(delta float64)
}

//CounterOpts包含创建计数器所需的信息。
type CounterOpts struct {
//命名空间、子系统和名称以下划线连接成完全限定名。
	Namespace string
	Subsystem string
	Name      string

	Help string

//LabelNames是With调用时必须提供值的标签名称。
	LabelNames []string
}

//Gauge表示某个度量的当前值。
type Gauge interface {
	With(labelValues ...string) Gauge

	Add(delta float64)

//set用于更新与仪表关联的当前值。
	Set(value float64)
}

//GaugeOpts包含创建仪表所需的信息。
type GaugeOpts struct {
	Namespace string
	Subsystem string
	Name      string

	Help string

	LabelNames []string
}

//Histogram记录观测值的分布。
type Histogram interface {
	With(labelValues ...string) Histogram
	Observe(value float64)
}

//HistogramOpts包含创建直方图所需的信息。
type HistogramOpts struct {
	Namespace string
	Subsystem string
	Name      string

	Help string

//桶用于提供prometheus的桶边界，为空时使用默认桶。
	Buckets []float64

	LabelNames []string
}
