
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

import "fmt"

//RoleType是背书策略中组织主体的角色
type RoleType string

const (
	RoleTypeMember = RoleType("MEMBER")
	RoleTypePeer   = RoleType("PEER")
)

//RoleTypeDoesNotExistError在AddOrgs收到未知角色时返回
type RoleTypeDoesNotExistError struct {
	RoleType RoleType
}

func (r *RoleTypeDoesNotExistError) Error() string {
	return fmt.Sprintf("role type %s does not exist", r.RoleType)
}

//KeyEndorsementPolicy维护单个键的背书策略，
//生成的策略要求列出的每个组织都签名。
//Policy的结果交给SetStateValidationParameter写入账本
type KeyEndorsementPolicy interface {
//Policy返回序列化的SignaturePolicyEnvelope
	Policy() ([]byte, error)

//AddOrgs以指定角色加入组织
	AddOrgs(roleType RoleType, organizations ...string) error

	DelOrgs(organizations ...string)

//ListOrgs按字典序返回组织
	ListOrgs() []string
}
