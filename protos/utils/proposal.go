
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
	"crypto/sha256"
	"encoding/binary"

	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/hyperledger/fabric-protos-go/msp"
	"github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

//DecodedProposal是从SignedProposal逐层解出的只读视图。
//没有签名提案的内部调用只有零值。
type DecodedProposal struct {
	SignedProposal  *peer.SignedProposal
	Signature       []byte
	Proposal        *peer.Proposal
	Header          *common.Header
	SignatureHeader *common.SignatureHeader
	ChannelHeader   *common.ChannelHeader
	Payload         *peer.ChaincodeProposalPayload

//Creator是签名头中序列化的身份，Identity是其解码结果
	Creator  []byte
	Identity *msp.SerializedIdentity

	Timestamp *timestamp.Timestamp
	Transient map[string][]byte
	Binding   []byte
}

//DecodeSignedProposal按 提案 -> 头 -> 签名头 -> 创建者 ->
//通道头 -> 链码提案负载 的顺序解码，任何一层失败都返回
//带有该层描述的错误。signedProposal为nil时返回空的结果。
func DecodeSignedProposal(signedProposal *peer.SignedProposal) (*DecodedProposal, error) {
	decoded := &DecodedProposal{}
	if signedProposal == nil {
		return decoded, nil
	}
	decoded.SignedProposal = signedProposal
	decoded.Signature = signedProposal.Signature

	prop, err := GetProposal(signedProposal.ProposalBytes)
	if err != nil {
		return nil, errors.WithMessage(err, "failed extracting proposal from signed proposal")
	}
	if len(prop.Header) == 0 {
		return nil, errors.New("proposal's header is empty")
	}
	if len(prop.Payload) == 0 {
		return nil, errors.New("proposal's payload is empty")
	}
	decoded.Proposal = prop

	hdr, err := GetHeader(prop.Header)
	if err != nil {
		return nil, errors.WithMessage(err, "error extracting header from proposal")
	}
	decoded.Header = hdr

	shdr, err := GetSignatureHeader(hdr.SignatureHeader)
	if err != nil {
		return nil, errors.WithMessage(err, "error extracting signature header from proposal")
	}
	decoded.SignatureHeader = shdr
	decoded.Creator = shdr.Creator

	sid, err := GetSerializedIdentity(shdr.Creator)
	if err != nil {
		return nil, errors.WithMessage(err, "error extracting creator identity from signature header")
	}
	decoded.Identity = sid

	chdr, err := UnmarshalChannelHeader(hdr.ChannelHeader)
	if err != nil {
		return nil, errors.WithMessage(err, "error extracting channel header from proposal")
	}
	decoded.ChannelHeader = chdr
	decoded.Timestamp = chdr.GetTimestamp()

	payload, err := GetChaincodeProposalPayload(prop.Payload)
	if err != nil {
		return nil, errors.WithMessage(err, "error extracting chaincode proposal payload")
	}
	decoded.Payload = payload
	decoded.Transient = payload.TransientMap

	decoded.Binding = computeProposalBindingInternal(shdr.Nonce, shdr.Creator, chdr.Epoch)

	return decoded, nil
}

//ComputeProposalBinding计算提案的绑定
func ComputeProposalBinding(proposal *peer.Proposal) ([]byte, error) {
	if proposal == nil {
		return nil, errors.New("proposal is nil")
	}
	if len(proposal.Header) == 0 {
		return nil, errors.New("proposal's header is nil")
	}

	h, err := GetHeader(proposal.Header)
	if err != nil {
		return nil, err
	}

	chdr, err := UnmarshalChannelHeader(h.ChannelHeader)
	if err != nil {
		return nil, err
	}
	shdr, err := GetSignatureHeader(h.SignatureHeader)
	if err != nil {
		return nil, err
	}

	return computeProposalBindingInternal(shdr.Nonce, shdr.Creator, chdr.Epoch), nil
}

//绑定 = SHA256(nonce || creator || 小端序的epoch)
func computeProposalBindingInternal(nonce, creator []byte, epoch uint64) []byte {
	epochBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(epochBytes, epoch)

	h := sha256.New()
	h.Write(nonce)
	h.Write(creator)
	h.Write(epochBytes)
	return h.Sum(nil)
}
