
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

package comm_test

import (
	"context"
	"testing"
	"time"

	"github.com/ic-matcom/fabric-chaincode-go/core/comm"
	. "github.com/onsi/gomega"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type throttleStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *throttleStream) Context() context.Context { return s.ctx }

type countingSemaphore struct {
	acquired   int
	released   int
	acquireErr error
}

func (s *countingSemaphore) Acquire(ctx context.Context) error {
	s.acquired++
	return s.acquireErr
}

func (s *countingSemaphore) Release() { s.released++ }

func TestThrottleReleasesAfterHandler(t *testing.T) {
	gt := NewGomegaWithT(t)

	sem := &countingSemaphore{}
	throttle := &comm.Throttle{Semaphore: sem}
	err := throttle.StreamServerInterceptor(nil, &throttleStream{ctx: context.Background()}, nil, func(interface{}, grpc.ServerStream) error {
		gt.Expect(sem.acquired).To(Equal(1))
		gt.Expect(sem.released).To(Equal(0))
		return nil
	})
	gt.Expect(err).NotTo(HaveOccurred())
	gt.Expect(sem.released).To(Equal(1))
}

func TestThrottleAcquireFailure(t *testing.T) {
	gt := NewGomegaWithT(t)

	throttle := &comm.Throttle{Semaphore: &countingSemaphore{acquireErr: context.Canceled}}
	err := throttle.StreamServerInterceptor(nil, &throttleStream{ctx: context.Background()}, nil, func(interface{}, grpc.ServerStream) error {
		t.Fatal("handler should not be called")
		return nil
	})
	gt.Expect(status.Code(err)).To(Equal(codes.Canceled))
}

func TestThrottleBlocksExtraStreams(t *testing.T) {
	gt := NewGomegaWithT(t)

	throttle := comm.NewThrottle(1)
	release := make(chan struct{})
	entered := make(chan struct{}, 2)
	handler := func(srv interface{}, ss grpc.ServerStream) error {
		entered <- struct{}{}
		<-release
		return nil
	}

	go throttle.StreamServerInterceptor(nil, &throttleStream{ctx: context.Background()}, nil, handler)
	gt.Eventually(entered).Should(Receive())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := throttle.StreamServerInterceptor(nil, &throttleStream{ctx: ctx}, nil, handler)
	gt.Expect(status.Code(err)).To(Equal(codes.DeadlineExceeded))
	gt.Consistently(entered).ShouldNot(Receive())

	close(release)
	gt.Eventually(func() error {
		return throttle.StreamServerInterceptor(nil, &throttleStream{ctx: context.Background()}, nil, func(interface{}, grpc.ServerStream) error { return nil })
	}).Should(Succeed())
}
