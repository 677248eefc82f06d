
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

//attrmgr包读写X509证书扩展和idemix身份中携带的客户端属性。
package attrmgr

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/json"
	"sort"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/msp"
	"github.com/pkg/errors"
)

var (
//AttrOID是证书中保存属性JSON的扩展标识
	AttrOID = asn1.ObjectIdentifier{1, 2, 3, 4, 5, 6, 7, 8, 1}
//AttrOIDString是AttrOID的点分形式
	AttrOIDString = "1.2.3.4.5.6.7.8.1"
)

//Attribute是一个名称/值对
type Attribute interface {
	GetName() string
	GetValue() string
}

//AttributeRequest请求把某个属性写入证书
type AttributeRequest interface {
	GetName() string
	IsRequired() bool
}

//Mgr是属性管理器
type Mgr struct{}

//New构造属性管理器
func New() *Mgr { return &Mgr{} }

//ProcessAttributeRequestsForCert按请求挑选属性并写入证书扩展
func (mgr *Mgr) ProcessAttributeRequestsForCert(requests []AttributeRequest, attributes []Attribute, cert *x509.Certificate) error {
	attrs, err := mgr.ProcessAttributeRequests(requests, attributes)
	if err != nil {
		return err
	}
	return mgr.AddAttributesToCert(attrs, cert)
}

//ProcessAttributeRequests返回请求中命中的属性，
//缺少必需属性时返回错误
func (mgr *Mgr) ProcessAttributeRequests(requests []AttributeRequest, attributes []Attribute) (*Attributes, error) {
	byName := make(map[string]string, len(attributes))
	for _, a := range attributes {
		byName[a.GetName()] = a.GetValue()
	}

	attrs := &Attributes{Attrs: map[string]string{}}
	var missing []string
	for _, req := range requests {
		val, ok := byName[req.GetName()]
		if !ok {
			if req.IsRequired() {
				missing = append(missing, req.GetName())
			}
			continue
		}
		attrs.Attrs[req.GetName()] = val
	}
	if len(missing) > 0 {
		return nil, errors.Errorf("the following required attributes are missing: %v", missing)
	}
	return attrs, nil
}

//AddAttributesToCert把属性编码为JSON扩展追加到证书
func (mgr *Mgr) AddAttributesToCert(attrs *Attributes, cert *x509.Certificate) error {
	buf, err := json.Marshal(attrs)
	if err != nil {
		return errors.Wrap(err, "failed to marshal attributes")
	}
	cert.ExtraExtensions = append(cert.ExtraExtensions, pkix.Extension{Id: AttrOID, Value: buf})
	cert.Extensions = append(cert.Extensions, pkix.Extension{Id: AttrOID, Value: buf})
	return nil
}

//GetAttributesFromCert读取证书中的属性，没有扩展时返回空集合
func (mgr *Mgr) GetAttributesFromCert(cert *x509.Certificate) (*Attributes, error) {
	attrs := &Attributes{Attrs: map[string]string{}}
	for _, ext := range cert.Extensions {
		if !ext.Id.Equal(AttrOID) {
			continue
		}
		if err := json.Unmarshal(ext.Value, attrs); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal attributes from certificate")
		}
		if attrs.Attrs == nil {
			attrs.Attrs = map[string]string{}
		}
		break
	}
	return attrs, nil
}

//GetAttributesFromIdemix从序列化的idemix身份中取出ou和role属性
func (mgr *Mgr) GetAttributesFromIdemix(creator []byte) (*Attributes, error) {
	if creator == nil {
		return nil, errors.New("creator is nil")
	}

	sid := &msp.SerializedIdentity{}
	if err := proto.Unmarshal(creator, sid); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal transaction invoker's identity")
	}
	idemixID := &msp.SerializedIdemixIdentity{}
	if err := proto.Unmarshal(sid.IdBytes, idemixID); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal transaction invoker's idemix identity")
	}

	ou := &msp.OrganizationUnit{}
	if err := proto.Unmarshal(idemixID.Ou, ou); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal transaction invoker's ou")
	}
	role := &msp.MSPRole{}
	if err := proto.Unmarshal(idemixID.Role, role); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal transaction invoker's role")
	}

	return &Attributes{Attrs: map[string]string{
		"ou":   ou.OrganizationalUnitIdentifier,
		"role": roleName(role.Role),
	}}, nil
}

func roleName(r msp.MSPRole_MSPRoleType) string {
	switch r {
	case msp.MSPRole_MEMBER:
		return "member"
	case msp.MSPRole_ADMIN:
		return "admin"
	case msp.MSPRole_CLIENT:
		return "client"
	case msp.MSPRole_PEER:
		return "peer"
	case msp.MSPRole_ORDERER:
		return "orderer"
	}
	return ""
}

//Attributes是属性名到值的映射
type Attributes struct {
	Attrs map[string]string `json:"attrs"`
}

//Names按字典序返回属性名
func (a *Attributes) Names() []string {
	names := make([]string, 0, len(a.Attrs))
	for name := range a.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *Attributes) Contains(name string) bool {
	_, ok := a.Attrs[name]
	return ok
}

func (a *Attributes) Value(name string) (string, bool, error) {
	attr, ok := a.Attrs[name]
	return attr, ok, nil
}

//True在属性值为"true"时返回nil
func (a *Attributes) True(name string) error {
	val, ok, _ := a.Value(name)
	if !ok {
		return errors.Errorf("attribute '%s' was not found", name)
	}
	if val != "true" {
		return errors.Errorf("attribute '%s' is not true", name)
	}
	return nil
}
