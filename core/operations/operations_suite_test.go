
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

package operations_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestOperations(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Operations Suite")
}

type warnLogger struct {
	mutex    sync.Mutex
	warnings []string
}

func (l *warnLogger) Warn(args ...interface{}) {
	l.record(fmt.Sprint(args...))
}

func (l *warnLogger) Warnf(template string, args ...interface{}) {
	l.record(fmt.Sprintf(template, args...))
}

func (l *warnLogger) record(msg string) {
	l.mutex.Lock()
	l.warnings = append(l.warnings, msg)
	l.mutex.Unlock()
}

func (l *warnLogger) Warnings() []string {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]string{}, l.warnings...)
}

type healthChecker struct {
	mutex sync.Mutex
	err   error
	calls int
}

func (h *healthChecker) HealthCheck(context.Context) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.calls++
	return h.err
}

func (h *healthChecker) CallCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.calls
}
