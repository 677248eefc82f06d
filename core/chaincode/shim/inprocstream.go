
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
	"fmt"
	"sync/atomic"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

//SendPanicFailure是向已关闭的通道发送时恢复出的错误
type SendPanicFailure string

func (e SendPanicFailure) Error() string {
	return "send failure " + string(e)
}

//errSendClosed在CloseSend之后发送时返回
var errSendClosed = errors.New("stream closed for sending")

//inProcStream用一对通道实现ChaincodeStream，两个通道都归peer所有，
//链码一侧从不关闭它们
type inProcStream struct {
	recv       <-chan *pb.ChaincodeMessage
	send       chan<- *pb.ChaincodeMessage
	sendClosed atomic.Bool
}

func newInProcStream(recv <-chan *pb.ChaincodeMessage, send chan<- *pb.ChaincodeMessage) *inProcStream {
	return &inProcStream{recv: recv, send: send}
}

func (s *inProcStream) Send(msg *pb.ChaincodeMessage) (err error) {
	if s.sendClosed.Load() {
		return errSendClosed
	}
	defer func() {
		if r := recover(); r != nil {
			err = SendPanicFailure(fmt.Sprint(r))
		}
	}()
	s.send <- msg
	return nil
}

func (s *inProcStream) Recv() (*pb.ChaincodeMessage, error) {
	if msg, ok := <-s.recv; ok {
		return msg, nil
	}
	return nil, errors.New("channel is closed")
}

//CloseSend只标记本端不再发送，不关闭peer的通道
func (s *inProcStream) CloseSend() error {
	s.sendClosed.Store(true)
	return nil
}
