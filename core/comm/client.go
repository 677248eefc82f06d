
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
	"crypto/tls"
	"crypto/x509"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

//GRPCClient拨号连接对等节点的链码支持服务。
//tlsConfig为nil时使用明文连接。
type GRPCClient struct {
	tlsConfig *tls.Config
	dialOpts  []grpc.DialOption
	timeout   time.Duration
}

//NewGRPCClient根据配置创建GRPCClient
func NewGRPCClient(config ClientConfig) (*GRPCClient, error) {
	tlsConfig, err := clientTLSConfig(config.SecOpts)
	if err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultConnectionTimeout
	}

	dialOpts := ClientKeepaliveOptions(config.KaOpts)
	dialOpts = append(dialOpts, grpc.WithDefaultCallOptions(
		grpc.MaxCallRecvMsgSize(MaxRecvMsgSize),
		grpc.MaxCallSendMsgSize(MaxSendMsgSize),
	))
	if !config.AsyncConnect {
		dialOpts = append(dialOpts, grpc.WithBlock())
	}

	return &GRPCClient{
		tlsConfig: tlsConfig,
		dialOpts:  dialOpts,
		timeout:   timeout,
	}, nil
}

func clientTLSConfig(opts *SecureOptions) (*tls.Config, error) {
	if opts == nil || !opts.UseTLS {
		return nil, nil
	}

	config := &tls.Config{
		MinVersion:            tls.VersionTLS12,
		VerifyPeerCertificate: opts.VerifyCertificate,
	}

	if len(opts.ServerRootCAs) != 0 {
		config.RootCAs = x509.NewCertPool()
		for _, pemBytes := range opts.ServerRootCAs {
			if err := AddPemToCertPool(pemBytes, config.RootCAs); err != nil {
				commLogger.Debugf("error adding root certificate: %v", err)
				return nil, errors.WithMessage(err, "error adding root certificate")
			}
		}
	}

	if !opts.RequireClientCert {
		return config, nil
	}
	if opts.Key == nil || opts.Certificate == nil {
		return nil, errors.New("both Key and Certificate are required when using mutual TLS")
	}
	cert, err := tls.X509KeyPair(opts.Certificate, opts.Key)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to load client certificate")
	}
	config.Certificates = []tls.Certificate{cert}

	return config, nil
}

//Certificate返回双向TLS时出示给服务器的客户端证书，未配置时为空
func (client *GRPCClient) Certificate() tls.Certificate {
	if !client.MutualTLSRequired() {
		return tls.Certificate{}
	}
	return client.tlsConfig.Certificates[0]
}

func (client *GRPCClient) TLSEnabled() bool {
	return client.tlsConfig != nil
}

func (client *GRPCClient) MutualTLSRequired() bool {
	return client.TLSEnabled() && len(client.tlsConfig.Certificates) != 0
}

//NewConnection在客户端超时内拨号address。
//serverNameOverride用于校验服务器证书中的主机名。
func (client *GRPCClient) NewConnection(address, serverNameOverride string) (*grpc.ClientConn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), client.timeout)
	defer cancel()
	return client.Dial(ctx, address, serverNameOverride)
}

//Dial与NewConnection相同，但由调用者的ctx控制阻塞拨号的期限
func (client *GRPCClient) Dial(ctx context.Context, address, serverNameOverride string) (*grpc.ClientConn, error) {
	opts := append([]grpc.DialOption{client.transportCredentials(serverNameOverride)}, client.dialOpts...)

	conn, err := grpc.DialContext(ctx, address, opts...)
	if err != nil {
		return nil, errors.WithMessage(errors.WithStack(err), "failed to create new connection")
	}
	return conn, nil
}

//每个连接克隆一份TLS配置，ServerName不会在连接间串用
func (client *GRPCClient) transportCredentials(serverName string) grpc.DialOption {
	if !client.TLSEnabled() {
		return grpc.WithTransportCredentials(insecure.NewCredentials())
	}
	config := client.tlsConfig.Clone()
	config.ServerName = serverName
	return grpc.WithTransportCredentials(credentials.NewTLS(config))
}
