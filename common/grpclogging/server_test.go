
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


package grpclogging_test

import (
	"context"
	"io"
	"net"
	"sync"

	"github.com/ic-matcom/fabric-chaincode-go/common/grpclogging"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/peer"
)

type fakeServerStream struct {
	grpc.ServerStream
	ctx   context.Context
	in    []*pb.ChaincodeMessage
	mutex sync.Mutex
	sent  []interface{}
}

func (f *fakeServerStream) Context() context.Context { return f.ctx }

func (f *fakeServerStream) SendMsg(m interface{}) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeServerStream) RecvMsg(m interface{}) error {
	if len(f.in) == 0 {
		return io.EOF
	}
	*(m.(*pb.ChaincodeMessage)) = *f.in[0]
	f.in = f.in[1:]
	return nil
}

var _ = Describe("StreamServerInterceptor", func() {
	var (
		core     zapcore.Core
		logs     *observer.ObservedLogs
		stream   *fakeServerStream
		info     *grpc.StreamServerInfo
		register *pb.ChaincodeMessage
	)

	BeforeEach(func() {
		core, logs = observer.New(zap.LevelEnablerFunc(func(zapcore.Level) bool { return true }))
		register = &pb.ChaincodeMessage{Type: pb.ChaincodeMessage_REGISTER, Txid: "tx1", ChannelId: "ch1"}
		ctx := peer.NewContext(context.Background(), &peer.Peer{
			Addr: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 7052},
		})
		stream = &fakeServerStream{ctx: ctx, in: []*pb.ChaincodeMessage{register}}
		info = &grpc.StreamServerInfo{FullMethod: "/protos.Chaincode/Connect"}
	})

	It("logs the start and completion of the stream", func() {
		interceptor := grpclogging.StreamServerInterceptor(zap.New(core))
		err := interceptor(nil, stream, info, func(srv interface{}, ss grpc.ServerStream) error {
			msg := &pb.ChaincodeMessage{}
			Expect(ss.RecvMsg(msg)).To(Succeed())
			Expect(ss.SendMsg(msg)).To(Succeed())
			return nil
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(logs.FilterMessage("streaming call started").Len()).To(Equal(1))
		completed := logs.FilterMessage("streaming call completed").All()
		Expect(completed).To(HaveLen(1))
		fields := completed[0].ContextMap()
		Expect(fields).To(HaveKeyWithValue("grpc.service", "protos.Chaincode"))
		Expect(fields).To(HaveKeyWithValue("grpc.method", "Connect"))
		Expect(fields).To(HaveKeyWithValue("grpc.peer_address", "127.0.0.1:7052"))
		Expect(fields).To(HaveKeyWithValue("grpc.code", "OK"))
		Expect(fields).To(HaveKeyWithValue("grpc.messages_sent", int64(1)))
		Expect(fields).To(HaveKeyWithValue("grpc.messages_received", int64(1)))
	})

	It("logs chaincode message payloads at the payload level", func() {
		interceptor := grpclogging.StreamServerInterceptor(zap.New(core))
		interceptor(nil, stream, info, func(srv interface{}, ss grpc.ServerStream) error {
			msg := &pb.ChaincodeMessage{}
			return ss.RecvMsg(msg)
		})

		received := logs.FilterMessage("received stream message").All()
		Expect(received).To(HaveLen(1))
		Expect(received[0].Level).To(Equal(grpclogging.DefaultPayloadLevel))
		Expect(received[0].LoggerName).To(Equal("payload"))
		Expect(received[0].ContextMap()).To(HaveKeyWithValue("chaincode.message_type", "REGISTER"))
		Expect(received[0].ContextMap()).To(HaveKeyWithValue("chaincode.txid", "tx1"))
	})

	It("counts messages sent concurrently by transaction goroutines", func() {
		interceptor := grpclogging.StreamServerInterceptor(zap.New(core))
		err := interceptor(nil, stream, info, func(srv interface{}, ss grpc.ServerStream) error {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ss.SendMsg(&pb.ChaincodeMessage{Type: pb.ChaincodeMessage_COMPLETED})
				}()
			}
			wg.Wait()
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(stream.sent).To(HaveLen(20))

		completed := logs.FilterMessage("streaming call completed").All()
		Expect(completed).To(HaveLen(1))
		Expect(completed[0].ContextMap()).To(HaveKeyWithValue("grpc.messages_sent", int64(20)))
		Expect(completed[0].ContextMap()).To(HaveKeyWithValue("grpc.messages_received", int64(0)))
	})

	It("uses the provided leveler", func() {
		leveler := grpclogging.LevelerFunc(func(context.Context, string) zapcore.Level { return zapcore.WarnLevel })
		interceptor := grpclogging.StreamServerInterceptor(zap.New(core), grpclogging.WithLeveler(leveler))
		err := interceptor(nil, stream, info, func(srv interface{}, ss grpc.ServerStream) error {
			return errors.New("stream failed")
		})
		Expect(err).To(MatchError("stream failed"))

		completed := logs.FilterMessage("streaming call completed").All()
		Expect(completed).To(HaveLen(1))
		Expect(completed[0].Level).To(Equal(zapcore.WarnLevel))
		Expect(completed[0].ContextMap()).To(HaveKeyWithValue("error", "stream failed"))
		Expect(completed[0].ContextMap()).To(HaveKeyWithValue("grpc.code", "Unknown"))
	})

	It("decorates the stream context with the logging fields", func() {
		interceptor := grpclogging.StreamServerInterceptor(zap.New(core))
		var fields []zapcore.Field
		interceptor(nil, stream, info, func(srv interface{}, ss grpc.ServerStream) error {
			fields = grpclogging.ZapFields(ss.Context())
			return nil
		})
		Expect(fields).To(ContainElement(zap.String("grpc.method", "Connect")))
	})
})
