
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

package statebased

import (
	"sort"

	"github.com/golang/protobuf/proto"
	cb "github.com/hyperledger/fabric-protos-go/common"
	mb "github.com/hyperledger/fabric-protos-go/msp"
	"github.com/pkg/errors"
)

type stateEP struct {
	orgs map[string]mb.MSPRole_MSPRoleType
}

//NewStateEP从已有的策略字节构造背书策略，policy为nil时从空策略开始
func NewStateEP(policy []byte) (KeyEndorsementPolicy, error) {
	s := &stateEP{orgs: map[string]mb.MSPRole_MSPRoleType{}}
	if policy == nil {
		return s, nil
	}

	spe := &cb.SignaturePolicyEnvelope{}
	if err := proto.Unmarshal(policy, spe); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling to SignaturePolicy")
	}
	for _, identity := range spe.Identities {
//只识别角色类主体
		if identity.PrincipalClassification != mb.MSPPrincipal_ROLE {
			continue
		}
		role := &mb.MSPRole{}
		if err := proto.Unmarshal(identity.Principal, role); err != nil {
			return nil, errors.Wrap(err, "error unmarshaling msp principal")
		}
		s.orgs[role.MspIdentifier] = role.Role
	}
	return s, nil
}

func (s *stateEP) Policy() ([]byte, error) {
	spe, err := s.envelope()
	if err != nil {
		return nil, err
	}
	return proto.Marshal(spe)
}

func (s *stateEP) AddOrgs(role RoleType, neworgs ...string) error {
	var mspRole mb.MSPRole_MSPRoleType
	switch role {
	case RoleTypeMember:
		mspRole = mb.MSPRole_MEMBER
	case RoleTypePeer:
		mspRole = mb.MSPRole_PEER
	default:
		return &RoleTypeDoesNotExistError{RoleType: role}
	}

	for _, org := range neworgs {
		s.orgs[org] = mspRole
	}
	return nil
}

func (s *stateEP) DelOrgs(delorgs ...string) {
	for _, org := range delorgs {
		delete(s.orgs, org)
	}
}

func (s *stateEP) ListOrgs() []string {
	names := make([]string, 0, len(s.orgs))
	for mspid := range s.orgs {
		names = append(names, mspid)
	}
	sort.Strings(names)
	return names
}

//envelope生成N-of-N策略，第i条规则要求第i个主体签名
func (s *stateEP) envelope() (*cb.SignaturePolicyEnvelope, error) {
	mspids := s.ListOrgs()
	principals := make([]*mb.MSPPrincipal, len(mspids))
	rules := make([]*cb.SignaturePolicy, len(mspids))
	for i, id := range mspids {
		role, err := proto.Marshal(&mb.MSPRole{Role: s.orgs[id], MspIdentifier: id})
		if err != nil {
			return nil, errors.Wrap(err, "error marshaling msp role")
		}
		principals[i] = &mb.MSPPrincipal{
			PrincipalClassification: mb.MSPPrincipal_ROLE,
			Principal:               role,
		}
		rules[i] = &cb.SignaturePolicy{
			Type: &cb.SignaturePolicy_SignedBy{SignedBy: int32(i)},
		}
	}

	return &cb.SignaturePolicyEnvelope{
		Version: 0,
		Rule: &cb.SignaturePolicy{
			Type: &cb.SignaturePolicy_NOutOf_{
				NOutOf: &cb.SignaturePolicy_NOutOf{N: int32(len(mspids)), Rules: rules},
			},
		},
		Identities: principals,
	}, nil
}
