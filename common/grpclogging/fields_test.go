
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
	"bytes"
	"context"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/ic-matcom/fabric-chaincode-go/common/grpclogging"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ = Describe("Fields", func() {
	var (
		buf    *bytes.Buffer
		logger *zap.Logger
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{MessageKey: "msg"})
		logger = zap.New(zapcore.NewCore(enc, zapcore.AddSync(buf), zapcore.DebugLevel))
	})

	It("round trips fields through the context", func() {
		fields := []zapcore.Field{zap.String("grpc.method", "Connect")}
		ctx := grpclogging.WithFields(context.Background(), fields)
		Expect(grpclogging.ZapFields(ctx)).To(Equal(fields))
		Expect(grpclogging.ZapFields(context.Background())).To(BeNil())
	})

	It("encodes proto messages as json", func() {
		msg := &pb.ChaincodeMessage{Type: pb.ChaincodeMessage_GET_STATE, Txid: "tx1", ChannelId: "ch1"}
		logger.Info("sent", grpclogging.ProtoMessage("message", msg))
		Expect(buf.String()).To(MatchJSON(`{"msg":"sent","message":{"type":"GET_STATE","txid":"tx1","channel_id":"ch1"}}`))
	})

	It("falls back to zap.Any for other values", func() {
		logger.Info("sent", grpclogging.ProtoMessage("message", "plain"))
		Expect(buf.String()).To(MatchJSON(`{"msg":"sent","message":"plain"}`))
	})

	It("records only the error message", func() {
		logger.Info("failed", grpclogging.Error(errors.New("stream closed")))
		Expect(buf.String()).To(MatchJSON(`{"msg":"failed","error":"stream closed"}`))

		buf.Reset()
		logger.Info("ok", grpclogging.Error(nil))
		Expect(buf.String()).To(MatchJSON(`{"msg":"ok"}`))
	})
})
