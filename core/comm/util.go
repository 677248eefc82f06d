
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


package comm

import (
	"context"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"io/ioutil"

	"github.com/pkg/errors"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/peer"
)

//AddPemToCertPool将PEM编码的证书添加到证书池
func AddPemToCertPool(pemCerts []byte, pool *x509.CertPool) error {
	certs, err := pemToX509Certs(pemCerts)
	if err != nil {
		return err
	}
	for _, cert := range certs {
		pool.AddCert(cert)
	}
	return nil
}

//pemToX509Certs解析可能包含多个证书的PEM数据
func pemToX509Certs(pemCerts []byte) ([]*x509.Certificate, error) {
	certs := []*x509.Certificate{}
	for len(pemCerts) > 0 {
		var block *pem.Block
		block, pemCerts = pem.Decode(pemCerts)
		if block == nil {
			break
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

//TLSFiles是从环境或配置中读取的TLS文件路径
type TLSFiles struct {
	KeyPath      string
	CertPath     string
	ClientCAPath string
	RootCertPath string
}

//ServerSecureOptions读取TLS文件并生成服务端的SecureOptions。
//只有密钥和证书都给出时才启用TLS，给出客户端CA时
//要求客户端提供证书。
func ServerSecureOptions(files TLSFiles) (*SecureOptions, error) {
	if files.KeyPath == "" || files.CertPath == "" {
		return &SecureOptions{UseTLS: false}, nil
	}

	key, err := ioutil.ReadFile(files.KeyPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read TLS key")
	}
	cert, err := ioutil.ReadFile(files.CertPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read TLS certificate")
	}
	opts := &SecureOptions{
		UseTLS:      true,
		Key:         key,
		Certificate: cert,
	}

	if files.ClientCAPath != "" {
		clientCA, err := ioutil.ReadFile(files.ClientCAPath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read client CA certificate")
		}
		opts.RequireClientCert = true
		opts.ClientRootCAs = [][]byte{clientCA}
	}
	return opts, nil
}

//ClientSecureOptions读取TLS文件并生成连接对等节点时的SecureOptions，
//客户端密钥与证书用于双向TLS。
func ClientSecureOptions(files TLSFiles) (*SecureOptions, error) {
	rootCert, err := ioutil.ReadFile(files.RootCertPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read peer root certificate")
	}
	opts := &SecureOptions{
		UseTLS:        true,
		ServerRootCAs: [][]byte{rootCert},
	}
	if files.KeyPath == "" && files.CertPath == "" {
		return opts, nil
	}

	key, err := ioutil.ReadFile(files.KeyPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read client TLS key")
	}
	cert, err := ioutil.ReadFile(files.CertPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read client TLS certificate")
	}
	opts.RequireClientCert = true
	opts.Key = key
	opts.Certificate = cert
	return opts, nil
}

//ExtractCertificateHashFromContext返回对端TLS证书的SHA256，
//没有证书时返回nil
func ExtractCertificateHashFromContext(ctx context.Context) []byte {
	rawCert := ExtractCertificateFromContext(ctx)
	if len(rawCert) == 0 {
		return nil
	}
	h := sha256.New()
	h.Write(rawCert)
	return h.Sum(nil)
}

//ExtractCertificateFromContext返回grpc流上下文中对端的TLS证书
func ExtractCertificateFromContext(ctx context.Context) []byte {
	pr, extracted := peer.FromContext(ctx)
	if !extracted {
		return nil
	}

	authInfo := pr.AuthInfo
	if authInfo == nil {
		return nil
	}

	tlsInfo, isTLSConn := authInfo.(credentials.TLSInfo)
	if !isTLSConn {
		return nil
	}
	certs := tlsInfo.State.PeerCertificates
	if len(certs) == 0 {
		return nil
	}
	return certs[0].Raw
}
