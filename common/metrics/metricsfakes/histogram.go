
//此源码被清华学神尹成大魔王专业翻译分析并修改
//尹成QQ77025077
//尹成微信18510341407
//尹成所在QQ群721929980
//尹成邮箱 yinc13@mails.tsinghua.edu.cn
//尹成毕业于清华大学,微软区块链领域全球最有价值专家
//https://mvp.microsoft.com/zh-cn/PublicProfile/4033620
//伪造者生成的代码。不要编辑。
package metricsfakes

import (
	sync "sync"

	metrics "github.com/ic-matcom/fabric-chaincode-go/common/metrics"
)

type Histogram struct {
	WithStub        func(...string) metrics.Histogram
	withMutex       sync.RWMutex
	withArgsForCall []struct {
		arg1 []string
	}
	withReturns struct {
		result1 metrics.Histogram
	}
	ObserveStub        func(float64)
	observeMutex       sync.RWMutex
	observeArgsForCall []struct {
		arg1 float64
	}
}

func (fake *Histogram) With(arg1 ...string) metrics.Histogram {
	fake.withMutex.Lock()
	fake.withArgsForCall = append(fake.withArgsForCall, struct {
		arg1 []string
	}{arg1})
	stub := fake.WithStub
	ret := fake.withReturns.result1
	fake.withMutex.Unlock()
	if stub != nil {
		return stub(arg1...)
	}
	return ret
}

func (fake *Histogram) WithCallCount() int {
	fake.withMutex.RLock()
	defer fake.withMutex.RUnlock()
	return len(fake.withArgsForCall)
}

func (fake *Histogram) WithArgsForCall(i int) []string {
	fake.withMutex.RLock()
	defer fake.withMutex.RUnlock()
	return fake.withArgsForCall[i].arg1
}

func (fake *Histogram) WithReturns(result1 metrics.Histogram) {
	fake.withMutex.Lock()
	defer fake.withMutex.Unlock()
	fake.WithStub = nil
	fake.withReturns = struct {
		result1 metrics.Histogram
	}{result1}
}

func (fake *Histogram) Observe(arg1 float64) {
	fake.observeMutex.Lock()
	fake.observeArgsForCall = append(fake.observeArgsForCall, struct {
		arg1 float64
	}{arg1})
	stub := fake.ObserveStub
	fake.observeMutex.Unlock()
	if stub != nil {
		stub(arg1)
	}
}

func (fake *Histogram) ObserveCallCount() int {
	fake.observeMutex.RLock()
	defer fake.observeMutex.RUnlock()
	return len(fake.observeArgsForCall)
}

func (fake *Histogram) ObserveArgsForCall(i int) float64 {
	fake.observeMutex.RLock()
	defer fake.observeMutex.RUnlock()
	return fake.observeArgsForCall[i].arg1
}

var _ metrics.Histogram = new(Histogram)
