
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

package cid

import "crypto/x509"

//ChaincodeStubInterface是cid用到的存根方法子集，shim.ChaincodeStubInterface满足它
type ChaincodeStubInterface interface {
	GetCreator() ([]byte, error)
}

//ClientIdentity描述提交交易的客户端身份，用于链码内的访问控制
type ClientIdentity interface {
//GetID返回身份在MSP内唯一的标识
	GetID() (string, error)

//GetMSPID返回身份所属MSP的ID
	GetMSPID() (string, error)

//GetAttributeValue返回属性值，found为false表示身份不带该属性
	GetAttributeValue(attrName string) (value string, found bool, err error)

//AssertAttributeValue在属性值不等于attrValue时返回错误
	AssertAttributeValue(attrName, attrValue string) error

//GetX509Certificate返回身份的证书，idemix身份返回nil
	GetX509Certificate() (*x509.Certificate, error)
}
