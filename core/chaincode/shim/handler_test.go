
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
	"context"
	"io"
	"sync"
	"testing"
	"time"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/ic-matcom/fabric-chaincode-go/common/flogging/floggingtest"
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics/metricsfakes"
	"github.com/ic-matcom/fabric-chaincode-go/protos/utils"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestStateTable(t *testing.T) {
	gt := NewGomegaWithT(t)

	gt.Expect(stateTable).To(HaveLen(9))
	for tr := range stateTable {
		switch tr.state {
		case created:
			gt.Expect(tr.msgType).To(BeElementOf(pb.ChaincodeMessage_REGISTERED, pb.ChaincodeMessage_KEEPALIVE))
		case established:
			gt.Expect(tr.msgType).To(BeElementOf(pb.ChaincodeMessage_READY, pb.ChaincodeMessage_KEEPALIVE))
		case ready:
			gt.Expect(tr.msgType).NotTo(BeElementOf(pb.ChaincodeMessage_REGISTERED, pb.ChaincodeMessage_READY))
		}
	}
}

func TestLoggingPrefix(t *testing.T) {
	gt := NewGomegaWithT(t)
	gt.Expect(loggingPrefix("mychannel", "0123456789abcdef")).To(Equal("[mychannel-01234567]"))
	gt.Expect(loggingPrefix("mychannel", "abc")).To(Equal("[mychannel-abc]"))
}

func TestHandlerMetrics(t *testing.T) {
	gt := NewGomegaWithT(t)

	counter := &metricsfakes.Counter{}
	counter.WithReturns(counter)
	histogram := &metricsfakes.Histogram{}
	histogram.WithReturns(histogram)
	gauge := &metricsfakes.Gauge{}
	gauge.WithReturns(gauge)

	provider := &metricsfakes.Provider{}
	provider.NewCounterReturns(counter)
	provider.NewHistogramReturns(histogram)
	provider.NewGaugeReturns(gauge)

	p := startChat(t, &shimTestCC{}, WithHandlerMetrics(NewHandlerMetrics(provider)))
	defer p.close()

	gt.Expect(gauge.WithCallCount()).To(Equal(1))
	gt.Expect(gauge.WithArgsForCall(0)).To(Equal([]string{"chaincode", testChaincode}))

	p.transaction(pb.ChaincodeMessage_TRANSACTION, "txm", "query", "A")
	req := p.expect(pb.ChaincodeMessage_GET_STATE)
	p.respond(req, []byte("1"))
	p.completed("txm")

	gt.Eventually(histogram.ObserveCallCount).Should(Equal(1))
	gt.Expect(counter.WithCallCount()).To(Equal(2))
	gt.Expect(counter.WithArgsForCall(0)).To(Equal([]string{"type", "TRANSACTION", "channel", testChannel, "chaincode", testChaincode}))
	gt.Expect(counter.WithArgsForCall(1)).To(Equal([]string{"type", "TRANSACTION", "channel", testChannel, "chaincode", testChaincode, "success", "true"}))
	gt.Expect(counter.AddCallCount()).To(Equal(2))
	gt.Expect(histogram.WithArgsForCall(0)).To(ContainElement("success"))

	gt.Eventually(gauge.AddCallCount).Should(Equal(2))
	gt.Expect(gauge.AddArgsForCall(0)).To(Equal(1.0))
	gt.Expect(gauge.AddArgsForCall(1)).To(Equal(-1.0))
}

func TestTransactionSpans(t *testing.T) {
	gt := NewGomegaWithT(t)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	p := startChat(t, &shimTestCC{}, WithTracerProvider(tp))
	defer p.close()

	p.transaction(pb.ChaincodeMessage_TRANSACTION, "txspan", "query", "A")
	req := p.expect(pb.ChaincodeMessage_GET_STATE)
	p.respond(req, []byte("1"))
	p.completed("txspan")

	gt.Eventually(func() int { return len(recorder.Ended()) }).Should(Equal(1))
	span := recorder.Ended()[0]
	gt.Expect(span.Name()).To(Equal("chaincode/TRANSACTION"))
	gt.Expect(span.SpanKind()).To(Equal(trace.SpanKindServer))
	gt.Expect(span.Attributes()).To(ContainElements(
		attribute.String("tx.id", "txspan"),
		attribute.String("channel.id", testChannel),
		attribute.String("chaincode.name", testChaincode),
		attribute.Int("response.status", OK),
	))
	gt.Expect(span.Events()).To(HaveLen(1))
	gt.Expect(span.Events()[0].Name).To(Equal("GET_STATE"))
	gt.Expect(span.Status().Code).To(Equal(codes.Unset))

	p.transaction(pb.ChaincodeMessage_INIT, "txfail", "init")
	p.completed("txfail")
	gt.Eventually(func() int { return len(recorder.Ended()) }).Should(Equal(2))
	span = recorder.Ended()[1]
	gt.Expect(span.Name()).To(Equal("chaincode/INIT"))
	gt.Expect(span.Status().Code).To(Equal(codes.Error))
	gt.Expect(span.Status().Description).To(Equal("Incorrect number of arguments. Expecting 4"))
}

func TestHandlerLogging(t *testing.T) {
	gt := NewGomegaWithT(t)

	logger, recorder := floggingtest.NewTestLogger(t)
	p := startChat(t, &shimTestCC{}, WithLogger(logger))
	defer p.close()

	p.send(&pb.ChaincodeMessage{Type: pb.ChaincodeMessage_RESPONSE, Txid: "orphan", ChannelId: testChannel})
	gt.Eventually(func() []string { return recorder.MessagesContaining("ignoring message") }).Should(ConsistOf(
		"[orphan] no pending request for RESPONSE on channel [testchannel], ignoring message",
	))

	p.send(&pb.ChaincodeMessage{Type: pb.ChaincodeMessage_REGISTERED, Txid: "again"})
	p.expect(pb.ChaincodeMessage_ERROR)
	gt.Expect(recorder.MessagesContaining("Chaincode handler cannot handle message (REGISTERED)")).To(HaveLen(1))
}

//recordingStream记录所有发出的消息，关闭接收通道后Recv返回EOF，
//但Send从不拒绝，用来观察读循环退出后是否还有写入
type recordingStream struct {
	recv  chan *pb.ChaincodeMessage
	mutex sync.Mutex
	sent  []pb.ChaincodeMessage_Type
}

func newRecordingStream(msgs ...*pb.ChaincodeMessage) *recordingStream {
	s := &recordingStream{recv: make(chan *pb.ChaincodeMessage, len(msgs))}
	for _, m := range msgs {
		s.recv <- m
	}
	return s
}

func (s *recordingStream) Send(msg *pb.ChaincodeMessage) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sent = append(s.sent, msg.Type)
	return nil
}

func (s *recordingStream) Recv() (*pb.ChaincodeMessage, error) {
	msg, ok := <-s.recv
	if !ok {
		return nil, io.EOF
	}
	return msg, nil
}

func (s *recordingStream) CloseSend() error { return nil }

func (s *recordingStream) Sent() []pb.ChaincodeMessage_Type {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]pb.ChaincodeMessage_Type{}, s.sent...)
}

func TestChatWaitsForRunningTransactions(t *testing.T) {
	gt := NewGomegaWithT(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	cc := &funcCC{invoke: func(stub ChaincodeStubInterface) pb.Response {
		close(entered)
		<-release
		return Success(nil)
	}}

	input := &pb.ChaincodeInput{Args: [][]byte{[]byte("invoke")}}
	stream := newRecordingStream(
		&pb.ChaincodeMessage{Type: pb.ChaincodeMessage_REGISTERED},
		&pb.ChaincodeMessage{Type: pb.ChaincodeMessage_READY},
		&pb.ChaincodeMessage{Type: pb.ChaincodeMessage_TRANSACTION, Payload: utils.MarshalOrPanic(input), Txid: "tx1", ChannelId: testChannel},
	)

	done := make(chan error, 1)
	go func() { done <- chatWithPeer(testChaincode, stream, cc) }()
	gt.Eventually(entered, 5*time.Second).Should(BeClosed())

	close(stream.recv)
	gt.Consistently(done, 100*time.Millisecond).ShouldNot(Receive())

	close(release)
	var err error
	gt.Eventually(done, 5*time.Second).Should(Receive(&err))
	gt.Expect(err).To(MatchError("received EOF, ending chaincode stream: EOF"))

	gt.Expect(stream.Sent()).To(Equal([]pb.ChaincodeMessage_Type{pb.ChaincodeMessage_REGISTER}))
	gt.Consistently(stream.Sent, 50*time.Millisecond).Should(HaveLen(1))
}

func TestSendAfterShutdown(t *testing.T) {
	gt := NewGomegaWithT(t)

	stream := newRecordingStream()
	h := newChaincodeHandler(stream, &shimTestCC{}, testChaincode)
	gt.Expect(h.serialSend(&pb.ChaincodeMessage{Type: pb.ChaincodeMessage_KEEPALIVE})).To(Succeed())

	h.shutdown(nil)
	err := h.serialSend(&pb.ChaincodeMessage{Type: pb.ChaincodeMessage_COMPLETED, Txid: "tx1"})
	gt.Expect(errors.Cause(err)).To(Equal(ErrConnectionClosed))
	gt.Expect(err).To(MatchError("[tx1] cannot send COMPLETED: chaincode connection closed"))
	gt.Expect(stream.Sent()).To(Equal([]pb.ChaincodeMessage_Type{pb.ChaincodeMessage_KEEPALIVE}))

	_, err = h.handleGetState(context.Background(), "", "A", testChannel, "tx2")
	gt.Expect(errors.Cause(err)).To(Equal(ErrConnectionClosed))
}
