
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
	"crypto/tls"
	"crypto/x509"
	"net"
	"sync/atomic"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

//GRPCServer是链码在服务模式下使用的grpc服务器
type GRPCServer struct {
//侦听地址，格式为hostname:port
	address string
	listener net.Listener
	server   *grpc.Server
//服务器用于TLS通信的证书，原子引用
	serverCertificate atomic.Value
//grpc服务器使用的TLS配置
	tlsConfig *tls.Config
}

//NewGRPCServer在给定的侦听地址上创建GRPCServer
func NewGRPCServer(address string, serverConfig ServerConfig) (*GRPCServer, error) {
	if address == "" {
		return nil, errors.New("missing address parameter")
	}
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", address)
	}
	return NewGRPCServerFromListener(lis, serverConfig)
}

//NewGRPCServerFromListener使用已有的net.Listener创建GRPCServer
func NewGRPCServerFromListener(listener net.Listener, serverConfig ServerConfig) (*GRPCServer, error) {
	grpcServer := &GRPCServer{
		address:  listener.Addr().String(),
		listener: listener,
	}

	var serverOpts []grpc.ServerOption

	var secureConfig SecureOptions
	if serverConfig.SecOpts != nil {
		secureConfig = *serverConfig.SecOpts
	}
	if secureConfig.UseTLS {
		creds, err := grpcServer.configureTLS(secureConfig, serverConfig.Logger)
		if err != nil {
			return nil, err
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
	}

	serverOpts = append(serverOpts, grpc.MaxSendMsgSize(MaxSendMsgSize))
	serverOpts = append(serverOpts, grpc.MaxRecvMsgSize(MaxRecvMsgSize))
	serverOpts = append(serverOpts, ServerKeepaliveOptions(serverConfig.KaOpts)...)

	if serverConfig.ConnectionTimeout <= 0 {
		serverConfig.ConnectionTimeout = DefaultConnectionTimeout
	}
	serverOpts = append(serverOpts, grpc.ConnectionTimeout(serverConfig.ConnectionTimeout))

	if len(serverConfig.StreamInterceptors) > 0 {
		serverOpts = append(
			serverOpts,
			grpc.StreamInterceptor(grpc_middleware.ChainStreamServer(serverConfig.StreamInterceptors...)),
		)
	}

	if serverConfig.MetricsProvider != nil {
		sh := NewServerStatsHandler(serverConfig.MetricsProvider)
		serverOpts = append(serverOpts, grpc.StatsHandler(sh))
	}

	grpcServer.server = grpc.NewServer(serverOpts...)

	return grpcServer, nil
}

func (gServer *GRPCServer) configureTLS(secureConfig SecureOptions, logger *flogging.FabricLogger) (credentials.TransportCredentials, error) {
//密钥和证书都是必需的
	if secureConfig.Key == nil || secureConfig.Certificate == nil {
		return nil, errors.New("serverConfig.SecOpts must contain both Key and Certificate when UseTLS is true")
	}
	cert, err := tls.X509KeyPair(secureConfig.Certificate, secureConfig.Key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load server key pair")
	}
	gServer.serverCertificate.Store(cert)

	if len(secureConfig.CipherSuites) == 0 {
		secureConfig.CipherSuites = DefaultTLSCipherSuites
	}
	getCert := func(_ *tls.ClientHelloInfo) (*tls.Certificate, error) {
		cert := gServer.serverCertificate.Load().(tls.Certificate)
		return &cert, nil
	}
	gServer.tlsConfig = &tls.Config{
		VerifyPeerCertificate:  secureConfig.VerifyCertificate,
		GetCertificate:         getCert,
		SessionTicketsDisabled: true,
		CipherSuites:           secureConfig.CipherSuites,
		ClientAuth:             tls.RequestClientCert,
	}

	if secureConfig.RequireClientCert {
		gServer.tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
		gServer.tlsConfig.ClientCAs = x509.NewCertPool()
		for _, clientRootCA := range secureConfig.ClientRootCAs {
			certs, err := pemToX509Certs(clientRootCA)
			if err != nil {
				return nil, errors.WithMessage(err, "failed to append client root certificate(s)")
			}
			if len(certs) < 1 {
				return nil, errors.New("failed to append client root certificate(s): no client root certificates found")
			}
			for _, c := range certs {
				gServer.tlsConfig.ClientCAs.AddCert(c)
			}
		}
	}

	return NewServerTransportCredentials(gServer.tlsConfig, logger), nil
}

//SetServerCertificate替换服务器使用的TLS证书，新连接立即生效
func (gServer *GRPCServer) SetServerCertificate(cert tls.Certificate) {
	gServer.serverCertificate.Store(cert)
}

//Address返回侦听地址
func (gServer *GRPCServer) Address() string {
	return gServer.address
}

func (gServer *GRPCServer) Listener() net.Listener {
	return gServer.listener
}

//Server返回底层的grpc.Server，用于注册服务
func (gServer *GRPCServer) Server() *grpc.Server {
	return gServer.server
}

//ServerCertificate返回当前使用的TLS证书
func (gServer *GRPCServer) ServerCertificate() tls.Certificate {
	cert, _ := gServer.serverCertificate.Load().(tls.Certificate)
	return cert
}

//TLSEnabled指示服务器是否启用TLS
func (gServer *GRPCServer) TLSEnabled() bool {
	return gServer.tlsConfig != nil
}

//MutualTLSRequired指示客户端是否必须提供证书
func (gServer *GRPCServer) MutualTLSRequired() bool {
	return gServer.tlsConfig != nil &&
		gServer.tlsConfig.ClientAuth == tls.RequireAndVerifyClientCert
}

//Start在侦听器上开始服务，直到Stop被调用
func (gServer *GRPCServer) Start() error {
	return gServer.server.Serve(gServer.listener)
}

//Stop立即停止服务器并关闭所有连接
func (gServer *GRPCServer) Stop() {
	gServer.server.Stop()
}

//GracefulStop停止接受新连接并等待已有的流结束
func (gServer *GRPCServer) GracefulStop() {
	gServer.server.GracefulStop()
}
