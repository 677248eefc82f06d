
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


package grpcmetrics

import (
	"strings"
	"time"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

//StreamMetrics是流式调用的服务端度量。
type StreamMetrics struct {
	RequestDuration   metrics.Histogram
	RequestsReceived  metrics.Counter
	RequestsCompleted metrics.Counter
	ActiveStreams     metrics.Gauge
	MessagesSent      metrics.Counter
	MessagesReceived  metrics.Counter
}

func StreamServerInterceptor(sm *StreamMetrics) grpc.StreamServerInterceptor {
	return func(svc interface{}, stream grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		service, method := serviceMethod(info.FullMethod)
		sm.RequestsReceived.With("service", service, "method", method).Add(1)

		active := sm.ActiveStreams.With("service", service, "method", method)
		active.Add(1)
		defer active.Add(-1)

		wrappedStream := &serverStream{
			ServerStream:     stream,
			labels:           []string{"service", service, "method", method},
			messagesSent:     sm.MessagesSent,
			messagesReceived: sm.MessagesReceived,
		}

		startTime := time.Now()
		err := handler(svc, wrappedStream)
		duration := time.Since(startTime)

		code := status.Code(err).String()
		sm.RequestDuration.With("service", service, "method", method, "code", code).Observe(duration.Seconds())
		sm.RequestsCompleted.With("service", service, "method", method, "code", code).Add(1)

		return err
	}
}

//serviceMethod把/protos.Chaincode/Connect拆分为protos_Chaincode与Connect
func serviceMethod(fullMethod string) (service, method string) {
	normalizedMethod := strings.Replace(fullMethod, ".", "_", -1)
	parts := strings.SplitN(normalizedMethod, "/", -1)
	if len(parts) != 3 {
		return "unknown", "unknown"
	}
	return parts[1], parts[2]
}

type serverStream struct {
	grpc.ServerStream
	labels           []string
	messagesSent     metrics.Counter
	messagesReceived metrics.Counter
}

func (ss *serverStream) SendMsg(msg interface{}) error {
	ss.messagesSent.With(ss.messageLabels(msg)...).Add(1)
	return ss.ServerStream.SendMsg(msg)
}

func (ss *serverStream) RecvMsg(msg interface{}) error {
	err := ss.ServerStream.RecvMsg(msg)
	if err == nil {
		ss.messagesReceived.With(ss.messageLabels(msg)...).Add(1)
	}
	return err
}

//链码消息按类型计数，其他消息的类型为unknown
func (ss *serverStream) messageLabels(msg interface{}) []string {
	msgType := "unknown"
	if ccMsg, ok := msg.(*pb.ChaincodeMessage); ok {
		msgType = ccMsg.Type.String()
	}
	return append(ss.labels[:len(ss.labels):len(ss.labels)], "type", msgType)
}
