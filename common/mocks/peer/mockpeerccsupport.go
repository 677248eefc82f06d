
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
	"sync"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

//MockPeerCCSupport按链码名称登记内存流，可以被多个测试goroutine共用
type MockPeerCCSupport struct {
	mutex   sync.Mutex
	streams map[string]*MockCCComm
}

func NewMockPeerSupport() *MockPeerCCSupport {
	return &MockPeerCCSupport{streams: map[string]*MockCCComm{}}
}

//AddCC登记链码一侧的端点，recv和send从链码的角度命名
func (mp *MockPeerCCSupport) AddCC(name string, recv chan *pb.ChaincodeMessage, send chan *pb.ChaincodeMessage) (*MockCCComm, error) {
	mp.mutex.Lock()
	defer mp.mutex.Unlock()

	if _, ok := mp.streams[name]; ok {
		return nil, errors.Errorf("CC %s already added", name)
	}
	cc := &MockCCComm{
		name:       name,
		recvStream: recv,
		sendStream: send,
		link:       &link{quit: make(chan struct{})},
	}
	mp.streams[name] = cc
	return cc, nil
}

func (mp *MockPeerCCSupport) GetCC(name string) (*MockCCComm, error) {
	if cc := mp.lookup(name); cc != nil {
		return cc, nil
	}
	return nil, errors.Errorf("CC %s not added", name)
}

//GetCCMirror返回peer一侧的端点，通道方向相反，关闭状态与链码端点共享
func (mp *MockPeerCCSupport) GetCCMirror(name string) *MockCCComm {
	cc := mp.lookup(name)
	if cc == nil {
		return nil
	}
	return &MockCCComm{
		name:       name,
		recvStream: cc.sendStream,
		sendStream: cc.recvStream,
		link:       cc.link,
	}
}

func (mp *MockPeerCCSupport) RemoveCC(name string) error {
	mp.mutex.Lock()
	defer mp.mutex.Unlock()

	if _, ok := mp.streams[name]; !ok {
		return errors.Errorf("CC %s not added", name)
	}
	delete(mp.streams, name)
	return nil
}

func (mp *MockPeerCCSupport) RemoveAll() error {
	mp.mutex.Lock()
	mp.streams = map[string]*MockCCComm{}
	mp.mutex.Unlock()
	return nil
}

func (mp *MockPeerCCSupport) lookup(name string) *MockCCComm {
	mp.mutex.Lock()
	defer mp.mutex.Unlock()
	return mp.streams[name]
}
