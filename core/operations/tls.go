
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

package operations

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/ic-matcom/fabric-chaincode-go/core/comm"
	"github.com/pkg/errors"
)

//TLS是运维端点的TLS配置
type TLS struct {
	Enabled            bool
	CertFile           string
	KeyFile            string
	ClientCertRequired bool
	ClientCACertFiles  []string
}

//Config在未启用TLS时返回nil
func (t TLS) Config() (*tls.Config, error) {
	if !t.Enabled {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load operations key pair")
	}
	caCertPool := x509.NewCertPool()
	for _, caPath := range t.ClientCACertFiles {
		caPem, err := os.ReadFile(caPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read client CA %s", caPath)
		}
		caCertPool.AppendCertsFromPEM(caPem)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		CipherSuites: comm.DefaultTLSCipherSuites,
		ClientCAs:    caCertPool,
		ClientAuth:   tls.VerifyClientCertIfGiven,
	}
	if t.ClientCertRequired {
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return tlsConfig, nil
}
