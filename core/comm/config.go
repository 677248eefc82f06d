
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
	"time"

	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
)

var commLogger = flogging.MustGetLogger("comm")

//配置默认值
var (
//grpc客户端和服务器的最大发送和接收字节数
	MaxRecvMsgSize = 100 * 1024 * 1024
	MaxSendMsgSize = 100 * 1024 * 1024
//默认保活选项，与对等节点的链码连接设置一致
	DefaultKeepaliveOptions = &KeepaliveOptions{
		ClientInterval:    time.Duration(1) * time.Minute,
		ClientTimeout:     time.Duration(20) * time.Second,
		ServerInterval:    time.Duration(2) * time.Hour,
		ServerTimeout:     time.Duration(20) * time.Second,
		ServerMinInterval: time.Duration(1) * time.Minute,
	}
//强TLS密码套件
	DefaultTLSCipherSuites = []uint16{
		tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		tls.TLS_RSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_RSA_WITH_AES_256_GCM_SHA384,
	}
//默认连接超时
	DefaultConnectionTimeout = 5 * time.Second
)

//ServerConfig定义用于配置GRPCServer实例的参数
type ServerConfig struct {
//ConnectionTimeout指定所有新连接建立连接的超时
	ConnectionTimeout time.Duration
//SecOpts定义安全参数
	SecOpts *SecureOptions
//KaOpts定义保活参数
	KaOpts *KeepaliveOptions
//StreamInterceptors按顺序应用于流式RPC
	StreamInterceptors []grpc.StreamServerInterceptor
//Logger用于记录TLS握手失败
	Logger *flogging.FabricLogger
//MetricsProvider非空时记录连接打开与关闭的次数
	MetricsProvider metrics.Provider
}

//ClientConfig定义用于配置GRPCClient实例的参数
type ClientConfig struct {
	SecOpts *SecureOptions
	KaOpts  *KeepaliveOptions
//Timeout是阻塞建立连接时的等待时间
	Timeout time.Duration
//AsyncConnect使连接创建不阻塞
	AsyncConnect bool
}

//SecureOptions定义GRPCServer或GRPCClient的TLS参数
type SecureOptions struct {
//VerifyCertificate非空时在常规证书校验之后调用，
//返回错误会终止握手。
	VerifyCertificate func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error
//用于TLS通信的PEM编码的X509证书
	Certificate []byte
//用于TLS通信的PEM编码私钥
	Key []byte
//客户端用来验证服务器证书的PEM编码CA证书
	ServerRootCAs [][]byte
//服务器用来验证客户端证书的PEM编码CA证书
	ClientRootCAs [][]byte
	UseTLS        bool
//TLS客户端是否必须提供证书
	RequireClientCert bool
	CipherSuites      []uint16
}

//KeepaliveOptions用于设置客户端和服务端的grpc保活参数
type KeepaliveOptions struct {
//ClientInterval是客户端在没有活动时ping服务器的间隔
	ClientInterval time.Duration
//ClientTimeout是客户端等待ping响应的时间
	ClientTimeout time.Duration
//ServerInterval是服务器在没有活动时ping客户端的间隔
	ServerInterval time.Duration
//ServerTimeout是服务器等待ping响应的时间
	ServerTimeout time.Duration
//ServerMinInterval是客户端ping之间允许的最短时间，
//更频繁的客户端会被断开
	ServerMinInterval time.Duration
}

//ServerKeepaliveOptions返回服务器的grpc保活选项，ka为nil时
//使用默认值
func ServerKeepaliveOptions(ka *KeepaliveOptions) []grpc.ServerOption {
	if ka == nil {
		ka = DefaultKeepaliveOptions
	}
	var serverOpts []grpc.ServerOption
	kap := keepalive.ServerParameters{
		Time:    ka.ServerInterval,
		Timeout: ka.ServerTimeout,
	}
	serverOpts = append(serverOpts, grpc.KeepaliveParams(kap))
	kep := keepalive.EnforcementPolicy{
		MinTime: ka.ServerMinInterval,
//允许没有活动流时保活
		PermitWithoutStream: true,
	}
	serverOpts = append(serverOpts, grpc.KeepaliveEnforcementPolicy(kep))
	return serverOpts
}

//ClientKeepaliveOptions返回客户端的grpc保活选项，ka为nil时
//使用默认值
func ClientKeepaliveOptions(ka *KeepaliveOptions) []grpc.DialOption {
	if ka == nil {
		ka = DefaultKeepaliveOptions
	}

	kap := keepalive.ClientParameters{
		Time:                ka.ClientInterval,
		Timeout:             ka.ClientTimeout,
		PermitWithoutStream: true,
	}
	return []grpc.DialOption{grpc.WithKeepaliveParams(kap)}
}
