
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

package peer

import (
	"io"
	"sync"
	"time"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

//MockResponseSet描述对等端对链码消息的一组预期应答，
//按顺序逐条匹配
type MockResponseSet struct {
//所有应答都被消费后调用DoneFunc
	DoneFunc func(int, error)

//收到的消息类型与预期不符时调用ErrorFunc
	ErrorFunc func(int, error)

	Responses []*MockResponse
}

//MockResponse是一条预期消息以及可选的应答，RespMsg可以是
//*pb.ChaincodeMessage或者func(*pb.ChaincodeMessage) *pb.ChaincodeMessage
type MockResponse struct {
	RecvMsg *pb.ChaincodeMessage
	RespMsg interface{}
}

//link在一对端点之间共享关闭状态
type link struct {
	quit chan struct{}
	once sync.Once
}

func (l *link) close() {
	l.once.Do(func() { close(l.quit) })
}

//MockCCComm是链码和对等端之间的内存流的一端
type MockCCComm struct {
	name        string
	bailOnError bool
	keepAlive   *pb.ChaincodeMessage
	recvStream  chan *pb.ChaincodeMessage
	sendStream  chan *pb.ChaincodeMessage
	link        *link
	respIndex   int
	respLock    sync.Mutex
	respSet     *MockResponseSet
	pong        bool
}

func (s *MockCCComm) SetName(newname string) {
	s.name = newname
}

func (s *MockCCComm) Name() string {
	return s.name
}

//Send在流关闭后返回错误
func (s *MockCCComm) Send(msg *pb.ChaincodeMessage) error {
	select {
	case <-s.link.quit:
		return errors.Errorf("stream %s is closed", s.name)
	default:
	}
	select {
	case s.sendStream <- msg:
		return nil
	case <-s.link.quit:
		return errors.Errorf("stream %s is closed", s.name)
	}
}

//Recv在流关闭后返回io.EOF
func (s *MockCCComm) Recv() (*pb.ChaincodeMessage, error) {
	select {
	case msg, ok := <-s.recvStream:
		if !ok {
			return nil, io.EOF
		}
		return msg, nil
	case <-s.link.quit:
		return nil, io.EOF
	}
}

func (s *MockCCComm) CloseSend() error {
	s.Quit()
	return nil
}

func (s *MockCCComm) GetRecvStream() chan *pb.ChaincodeMessage {
	return s.recvStream
}

func (s *MockCCComm) GetSendStream() chan *pb.ChaincodeMessage {
	return s.sendStream
}

//Quit关闭两端，可以重复调用
func (s *MockCCComm) Quit() {
	s.link.close()
}

func (s *MockCCComm) SetBailOnError(b bool) {
	s.bailOnError = b
}

//SetPong为真时原样回送收到的KEEPALIVE
func (s *MockCCComm) SetPong(val bool) {
	s.pong = val
}

//SetKeepAlive设置Run期间周期发送的KEEPALIVE，只在对等端一侧使用
func (s *MockCCComm) SetKeepAlive(ka *pb.ChaincodeMessage) {
	s.keepAlive = ka
}

func (s *MockCCComm) SetResponses(respSet *MockResponseSet) {
	s.respLock.Lock()
	s.respSet = respSet
	s.respIndex = 0
	s.respLock.Unlock()
}

//保持活力
func (s *MockCCComm) ka(done <-chan struct{}) {
	if s.keepAlive == nil {
		return
	}
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if err := s.Send(s.keepAlive); err != nil {
			return
		}
		select {
		case <-ticker.C:
		case <-done:
			return
		case <-s.link.quit:
			return
		}
	}
}

//Run按应答集处理收到的消息，直到流关闭或者done被关闭
func (s *MockCCComm) Run(done <-chan struct{}) error {
	go s.ka(done)
	defer s.Quit()

	go func() {
		select {
		case <-done:
			s.Quit()
		case <-s.link.quit:
		}
	}()

	for {
		msg, err := s.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err = s.respond(msg); err != nil && s.bailOnError {
			return err
		}
	}
}

func (s *MockCCComm) respond(msg *pb.ChaincodeMessage) error {
	if msg.Type == pb.ChaincodeMessage_KEEPALIVE {
		if s.pong {
			return s.Send(msg)
		}
		return nil
	}

	s.respLock.Lock()
	defer s.respLock.Unlock()

	if s.respSet == nil || s.respIndex >= len(s.respSet.Responses) {
		return nil
	}

	var err error
	mockResp := s.respSet.Responses[s.respIndex]
	if mockResp.RecvMsg != nil && msg.Type != mockResp.RecvMsg.Type {
		mismatch := errors.Errorf("invalid message expected %s received %s", mockResp.RecvMsg.Type, msg.Type)
		if s.respSet.ErrorFunc != nil {
			s.respSet.ErrorFunc(s.respIndex, mismatch)
			s.respIndex++
			return nil
		}
		err = mismatch
	}

	if err == nil && mockResp.RespMsg != nil {
		var ccMsg *pb.ChaincodeMessage
		switch r := mockResp.RespMsg.(type) {
		case *pb.ChaincodeMessage:
			ccMsg = r
		case func(*pb.ChaincodeMessage) *pb.ChaincodeMessage:
			ccMsg = r(msg)
		}
		if ccMsg == nil {
			return errors.Errorf("response %d is not a chaincode message", s.respIndex)
		}
		err = s.Send(ccMsg)
	}

	s.respIndex++
	if s.respIndex == len(s.respSet.Responses) && s.respSet.DoneFunc != nil {
		s.respSet.DoneFunc(s.respIndex, err)
	}
	return err
}
