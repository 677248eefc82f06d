
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
	"net"

	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	"github.com/pkg/errors"
	"google.golang.org/grpc/credentials"
)

var (
	ErrClientHandshakeNotImplemented  = errors.New("core/comm: client handshakes are not implemented with server credentials")
	ErrServerNameOverrideNotSupported = errors.New("core/comm: OverrideServerName is not supported")
)

//NewServerTransportCredentials返回链码服务端的TLS传输凭证，最低版本为TLS 1.2。
//config不会被复制，之后对证书的更新对新连接生效。
func NewServerTransportCredentials(config *tls.Config, logger *flogging.FabricLogger) credentials.TransportCredentials {
	config.NextProtos = []string{"h2"}
	if config.MinVersion < tls.VersionTLS12 {
		config.MinVersion = tls.VersionTLS12
	}
	return &serverCreds{config: config, logger: logger}
}

type serverCreds struct {
	config *tls.Config
	logger *flogging.FabricLogger
}

func (sc *serverCreds) ServerHandshake(rawConn net.Conn) (net.Conn, credentials.AuthInfo, error) {
	conn := tls.Server(rawConn, sc.config)
	if err := conn.Handshake(); err != nil {
		if sc.logger != nil {
			sc.logger.Errorw("TLS handshake failed", "remote_address", rawConn.RemoteAddr().String(), "error", err)
		}
		rawConn.Close()
		return nil, nil, err
	}
	return conn, credentials.TLSInfo{
		State:          conn.ConnectionState(),
		CommonAuthInfo: credentials.CommonAuthInfo{SecurityLevel: credentials.PrivacyAndIntegrity},
	}, nil
}

func (sc *serverCreds) ClientHandshake(context.Context, string, net.Conn) (net.Conn, credentials.AuthInfo, error) {
	return nil, nil, ErrClientHandshakeNotImplemented
}

func (sc *serverCreds) Info() credentials.ProtocolInfo {
	return credentials.ProtocolInfo{SecurityProtocol: "tls"}
}

func (sc *serverCreds) Clone() credentials.TransportCredentials {
	return &serverCreds{config: sc.config, logger: sc.logger}
}

func (sc *serverCreds) OverrideServerName(string) error {
	return ErrServerNameOverrideNotSupported
}
