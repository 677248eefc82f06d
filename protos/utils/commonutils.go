
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

package utils

import (
	"crypto/rand"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes/timestamp"
	cb "github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

//NonceSize是提案随机数的字节长度
const NonceSize = 24

//MarshalOrPanic只用于结构固定、序列化不会失败的消息
func MarshalOrPanic(msg proto.Message) []byte {
	data, err := proto.Marshal(msg)
	if err != nil {
		panic(err)
	}
	return data
}

func CreateNonceOrPanic() []byte {
	nonce, err := CreateNonce()
	if err != nil {
		panic(err)
	}
	return nonce
}

//CreateNonce从crypto/rand读取NonceSize字节
func CreateNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "error generating random nonce")
	}
	return nonce, nil
}

//MakeChannelHeader的时间戳精确到秒
func MakeChannelHeader(headerType cb.HeaderType, version int32, channelID string, epoch uint64) *cb.ChannelHeader {
	return &cb.ChannelHeader{
		Type:      int32(headerType),
		Version:   version,
		Timestamp: &timestamp.Timestamp{Seconds: time.Now().Unix()},
		ChannelId: channelID,
		Epoch:     epoch,
	}
}

func MakeSignatureHeader(creator, nonce []byte) *cb.SignatureHeader {
	return &cb.SignatureHeader{Creator: creator, Nonce: nonce}
}

func MakePayloadHeader(ch *cb.ChannelHeader, sh *cb.SignatureHeader) *cb.Header {
	return &cb.Header{
		ChannelHeader:   MarshalOrPanic(ch),
		SignatureHeader: MarshalOrPanic(sh),
	}
}

func UnmarshalChannelHeader(raw []byte) (*cb.ChannelHeader, error) {
	chdr := &cb.ChannelHeader{}
	if err := proto.Unmarshal(raw, chdr); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling ChannelHeader")
	}
	return chdr, nil
}

func UnmarshalChaincodeID(raw []byte) (*pb.ChaincodeID, error) {
	ccid := &pb.ChaincodeID{}
	if err := proto.Unmarshal(raw, ccid); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling ChaincodeID")
	}
	return ccid, nil
}
