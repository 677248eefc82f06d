
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

//cid包从交易创建者中解析客户端身份
package cid

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/msp"
	"github.com/ic-matcom/fabric-chaincode-go/core/chaincode/shim/ext/attrmgr"
	"github.com/pkg/errors"
)

func GetID(stub ChaincodeStubInterface) (string, error) {
	c, err := New(stub)
	if err != nil {
		return "", err
	}
	return c.GetID()
}

func GetMSPID(stub ChaincodeStubInterface) (string, error) {
	c, err := New(stub)
	if err != nil {
		return "", err
	}
	return c.GetMSPID()
}

func GetAttributeValue(stub ChaincodeStubInterface, attrName string) (value string, found bool, err error) {
	c, err := New(stub)
	if err != nil {
		return "", false, err
	}
	return c.GetAttributeValue(attrName)
}

func AssertAttributeValue(stub ChaincodeStubInterface, attrName, attrValue string) error {
	c, err := New(stub)
	if err != nil {
		return err
	}
	return c.AssertAttributeValue(attrName, attrValue)
}

func GetX509Certificate(stub ChaincodeStubInterface) (*x509.Certificate, error) {
	c, err := New(stub)
	if err != nil {
		return nil, err
	}
	return c.GetX509Certificate()
}

type clientIdentity struct {
	mspID string
	cert  *x509.Certificate
	attrs *attrmgr.Attributes
}

//New解析存根的创建者，创建者可以是PEM格式的X509证书或idemix凭证
func New(stub ChaincodeStubInterface) (ClientIdentity, error) {
	creator, err := stub.GetCreator()
	if err != nil {
		return nil, errors.WithMessage(err, "failed to get transaction invoker's identity from the chaincode stub")
	}
	if creator == nil {
		return nil, errors.New("transaction invoker's identity is not set")
	}

	sid := &msp.SerializedIdentity{}
	if err := proto.Unmarshal(creator, sid); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal transaction invoker's identity")
	}

	c := &clientIdentity{mspID: sid.Mspid}
	block, _ := pem.Decode(sid.IdBytes)
	if block == nil {
		c.attrs, err = attrmgr.New().GetAttributesFromIdemix(creator)
		if err != nil {
			return nil, errors.WithMessage(err, "identity bytes are neither X509 PEM format nor an idemix credential")
		}
		return c, nil
	}

	c.cert, err = x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse certificate")
	}
	c.attrs, err = attrmgr.New().GetAttributesFromCert(c.cert)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to get attributes from the transaction invoker's certificate")
	}
	return c, nil
}

//GetID由证书的主题和颁发者DN拼接后做base64编码
func (c *clientIdentity) GetID() (string, error) {
	if c.cert == nil {
		return "", errors.New("identity does not carry an X509 certificate")
	}
	id := fmt.Sprintf("x509::%s::%s", getDN(&c.cert.Subject), getDN(&c.cert.Issuer))
	return base64.StdEncoding.EncodeToString([]byte(id)), nil
}

func (c *clientIdentity) GetMSPID() (string, error) {
	return c.mspID, nil
}

func (c *clientIdentity) GetAttributeValue(attrName string) (string, bool, error) {
	if c.attrs == nil {
		return "", false, nil
	}
	return c.attrs.Value(attrName)
}

func (c *clientIdentity) AssertAttributeValue(attrName, attrValue string) error {
	val, ok, err := c.GetAttributeValue(attrName)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("attribute '%s' was not found", attrName)
	}
	if val != attrValue {
		return errors.Errorf("attribute '%s' equals '%s', not '%s'", attrName, val, attrValue)
	}
	return nil
}

func (c *clientIdentity) GetX509Certificate() (*x509.Certificate, error) {
	return c.cert, nil
}

var attributeTypeNames = map[string]string{
	"2.5.4.6":  "C",
	"2.5.4.10": "O",
	"2.5.4.11": "OU",
	"2.5.4.3":  "CN",
	"2.5.4.5":  "SERIALNUMBER",
	"2.5.4.7":  "L",
	"2.5.4.8":  "ST",
	"2.5.4.9":  "STREET",
	"2.5.4.17": "POSTALCODE",
}

//getDN按RFC 2253的顺序（最后一个RDN在前）输出可分辨名称
func getDN(name *pkix.Name) string {
	rdns := name.ToRDNSequence()
	parts := make([]string, 0, len(rdns))
	for i := len(rdns) - 1; i >= 0; i-- {
		atvs := make([]string, 0, len(rdns[i]))
		for _, tv := range rdns[i] {
			atvs = append(atvs, formatATV(tv))
		}
		parts = append(parts, strings.Join(atvs, "+"))
	}
	return strings.Join(parts, ",")
}

func formatATV(tv pkix.AttributeTypeAndValue) string {
	oid := tv.Type.String()
	typeName, ok := attributeTypeNames[oid]
	if !ok {
		der, err := asn1.Marshal(tv.Value)
		if err == nil {
			return oid + "=#" + hex.EncodeToString(der)
		}
		typeName = oid
	}
	return typeName + "=" + escapeDNValue(fmt.Sprint(tv.Value))
}

func escapeDNValue(v string) string {
	var b strings.Builder
	last := len(v) - 1
	for idx, c := range v {
		switch {
		case idx == 0 && (c == ' ' || c == '#'), idx == last && c == ' ':
			b.WriteByte('\\')
		case strings.ContainsRune(`,+"\<>;`, c):
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}
