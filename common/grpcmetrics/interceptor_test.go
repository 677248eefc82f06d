
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


package grpcmetrics_test

import (
	"context"
	"io"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/ic-matcom/fabric-chaincode-go/common/grpcmetrics"
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics/metricsfakes"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
)

type countingStream struct {
	grpc.ServerStream
	pending int
}

func (c *countingStream) Context() context.Context { return context.Background() }
func (c *countingStream) SendMsg(interface{}) error { return nil }
func (c *countingStream) RecvMsg(m interface{}) error {
	if c.pending == 0 {
		return io.EOF
	}
	c.pending--
	if msg, ok := m.(*pb.ChaincodeMessage); ok {
		msg.Type = pb.ChaincodeMessage_GET_STATE
	}
	return nil
}

var _ = Describe("StreamServerInterceptor", func() {
	var (
		fakeRequestDuration   *metricsfakes.Histogram
		fakeRequestsReceived  *metricsfakes.Counter
		fakeRequestsCompleted *metricsfakes.Counter
		fakeActiveStreams     *metricsfakes.Gauge
		fakeMessagesSent      *metricsfakes.Counter
		fakeMessagesReceived  *metricsfakes.Counter

		interceptor grpc.StreamServerInterceptor
		info        *grpc.StreamServerInfo
	)

	BeforeEach(func() {
		fakeRequestDuration = &metricsfakes.Histogram{}
		fakeRequestDuration.WithReturns(fakeRequestDuration)
		fakeRequestsReceived = &metricsfakes.Counter{}
		fakeRequestsReceived.WithReturns(fakeRequestsReceived)
		fakeRequestsCompleted = &metricsfakes.Counter{}
		fakeRequestsCompleted.WithReturns(fakeRequestsCompleted)
		fakeActiveStreams = &metricsfakes.Gauge{}
		fakeActiveStreams.WithReturns(fakeActiveStreams)
		fakeMessagesSent = &metricsfakes.Counter{}
		fakeMessagesSent.WithReturns(fakeMessagesSent)
		fakeMessagesReceived = &metricsfakes.Counter{}
		fakeMessagesReceived.WithReturns(fakeMessagesReceived)

		interceptor = grpcmetrics.StreamServerInterceptor(&grpcmetrics.StreamMetrics{
			RequestDuration:   fakeRequestDuration,
			RequestsReceived:  fakeRequestsReceived,
			RequestsCompleted: fakeRequestsCompleted,
			ActiveStreams:     fakeActiveStreams,
			MessagesSent:      fakeMessagesSent,
			MessagesReceived:  fakeMessagesReceived,
		})
		info = &grpc.StreamServerInfo{FullMethod: "/protos.Chaincode/Connect"}
	})

	It("records stream and message metrics", func() {
		stream := &countingStream{pending: 2}
		err := interceptor(nil, stream, info, func(srv interface{}, ss grpc.ServerStream) error {
			for {
				if err := ss.RecvMsg(&pb.ChaincodeMessage{}); err != nil {
					break
				}
				Expect(ss.SendMsg(&pb.ChaincodeMessage{Type: pb.ChaincodeMessage_RESPONSE})).To(Succeed())
			}
			Expect(ss.SendMsg("not a chaincode message")).To(Succeed())
			return nil
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(fakeRequestsReceived.WithCallCount()).To(Equal(1))
		Expect(fakeRequestsReceived.WithArgsForCall(0)).To(Equal([]string{"service", "protos_Chaincode", "method", "Connect"}))
		Expect(fakeRequestsReceived.AddCallCount()).To(Equal(1))

		Expect(fakeMessagesReceived.AddCallCount()).To(Equal(2))
		Expect(fakeMessagesReceived.WithArgsForCall(0)).To(Equal([]string{"service", "protos_Chaincode", "method", "Connect", "type", "GET_STATE"}))
		Expect(fakeMessagesSent.AddCallCount()).To(Equal(3))
		Expect(fakeMessagesSent.WithArgsForCall(1)).To(Equal([]string{"service", "protos_Chaincode", "method", "Connect", "type", "RESPONSE"}))
		Expect(fakeMessagesSent.WithArgsForCall(2)).To(Equal([]string{"service", "protos_Chaincode", "method", "Connect", "type", "unknown"}))

		Expect(fakeActiveStreams.AddCallCount()).To(Equal(2))
		Expect(fakeActiveStreams.AddArgsForCall(0)).To(Equal(1.0))
		Expect(fakeActiveStreams.AddArgsForCall(1)).To(Equal(-1.0))

		Expect(fakeRequestsCompleted.WithArgsForCall(0)).To(Equal([]string{"service", "protos_Chaincode", "method", "Connect", "code", "OK"}))
		Expect(fakeRequestDuration.ObserveCallCount()).To(Equal(1))
	})

	It("labels failed streams with the status code", func() {
		err := interceptor(nil, &countingStream{}, info, func(srv interface{}, ss grpc.ServerStream) error {
			return errors.New("boom")
		})
		Expect(err).To(MatchError("boom"))
		Expect(fakeRequestsCompleted.WithArgsForCall(0)).To(Equal([]string{"service", "protos_Chaincode", "method", "Connect", "code", "Unknown"}))
	})

	It("uses unknown for malformed method names", func() {
		interceptor(nil, &countingStream{}, &grpc.StreamServerInfo{FullMethod: "bogus"}, func(interface{}, grpc.ServerStream) error { return nil })
		Expect(fakeRequestsReceived.WithArgsForCall(0)).To(Equal([]string{"service", "unknown", "method", "unknown"}))
	})
})

var _ = Describe("NewStreamMetrics", func() {
	It("creates all stream metrics from the provider", func() {
		provider := &metricsfakes.Provider{}
		provider.NewCounterReturns(&metricsfakes.Counter{})
		provider.NewGaugeReturns(&metricsfakes.Gauge{})
		provider.NewHistogramReturns(&metricsfakes.Histogram{})

		sm := grpcmetrics.NewStreamMetrics(provider)
		Expect(sm.ActiveStreams).NotTo(BeNil())
		Expect(provider.NewCounterCallCount()).To(Equal(4))
		Expect(provider.NewGaugeCallCount()).To(Equal(1))
		Expect(provider.NewHistogramCallCount()).To(Equal(1))
		Expect(provider.NewGaugeArgsForCall(0).Name).To(Equal("streams_active"))
	})
})
