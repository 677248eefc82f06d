
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
//包shim为链码提供访问状态变量、交易上下文和调用其他链码的API
package shim

import (
	"context"
	"io"
	"strings"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/ic-matcom/fabric-chaincode-go/core/comm"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
)

//peerStreamGetter建立到对等节点的流，测试中用模拟流替换
type peerStreamGetter func(name string) (PeerChaincodeStream, error)

//设置模拟对等流getter的uts
var streamGetter peerStreamGetter

//peerStream在关闭发送方向时一并关闭底层连接
type peerStream struct {
	pb.ChaincodeSupport_RegisterClient
	conn *grpc.ClientConn
}

func (s *peerStream) CloseSend() error {
	err := s.ChaincodeSupport_RegisterClient.CloseSend()
	s.conn.Close()
	return err
}

//非模拟用户CC流建立功能
func userChaincodeStreamGetter(name string) (PeerChaincodeStream, error) {
	peerAddress := viper.GetString("peer.address")
	if peerAddress == "" {
		return nil, errors.New("peer.address not configured, can't connect to peer")
	}
	chaincodeLogger.Debugf("Peer address: %s", peerAddress)

	clientConn, err := newPeerClientConnection(peerAddress)
	if err != nil {
		err = errors.WithMessage(err, "error trying to connect to local peer")
		chaincodeLogger.Errorf("%+v", err)
		return nil, err
	}

	chaincodeSupportClient := pb.NewChaincodeSupportClient(clientConn)
	stream, err := chaincodeSupportClient.Register(context.Background())
	if err != nil {
		clientConn.Close()
		return nil, errors.Wrapf(err, "error chatting with leader at address=%s", peerAddress)
	}

	return &peerStream{ChaincodeSupport_RegisterClient: stream, conn: clientConn}, nil
}

func newPeerClientConnection(peerAddress string) (*grpc.ClientConn, error) {
	config := comm.ClientConfig{
		KaOpts:  comm.DefaultKeepaliveOptions,
		Timeout: comm.DefaultConnectionTimeout,
	}
	if viper.GetBool("peer.tls.enabled") {
		secOpts, err := comm.ClientSecureOptions(comm.TLSFiles{
			KeyPath:      viper.GetString("tls.client.key.path"),
			CertPath:     viper.GetString("tls.client.cert.path"),
			RootCertPath: viper.GetString("peer.tls.rootcert.file"),
		})
		if err != nil {
			return nil, err
		}
		config.SecOpts = secOpts
	}

	client, err := comm.NewGRPCClient(config)
	if err != nil {
		return nil, err
	}
	return client.NewConnection(peerAddress, viper.GetString("peer.tls.serverhostoverride"))
}

//Start以客户端模式运行链码：连接peer.address并在流上注册，
//直到流关闭才返回
func Start(cc Chaincode, opts ...HandlerOption) error {
//如果调用了start（），我们假设这是一个独立的链代码并设置
//格式化日志记录。
	SetupChaincodeLogging()
	configureViperEnv()

	chaincodename := viper.GetString("chaincode.id.name")
	if chaincodename == "" {
		return errors.New("error chaincode id not provided")
	}

//模拟流未设置…获取真实流
	getter := streamGetter
	if getter == nil {
		getter = userChaincodeStreamGetter
	}

	stream, err := getter(chaincodename)
	if err != nil {
		return err
	}
	defer stream.CloseSend()

	return chatWithPeer(chaincodename, stream, cc, opts...)
}

//StartInProc在进程内运行链码，env中的CORE_CHAINCODE_ID_NAME
//给出链码名称
func StartInProc(env []string, args []string, cc Chaincode, recv <-chan *pb.ChaincodeMessage, send chan<- *pb.ChaincodeMessage, opts ...HandlerOption) error {
	chaincodeLogger.Debugf("in proc %v", args)

	var chaincodename string
	for _, v := range env {
		if strings.HasPrefix(v, "CORE_CHAINCODE_ID_NAME=") {
			chaincodename = strings.TrimPrefix(v, "CORE_CHAINCODE_ID_NAME=")
			break
		}
	}
	if chaincodename == "" {
		return errors.New("error chaincode id not provided")
	}

	stream := newInProcStream(recv, send)
	chaincodeLogger.Debugf("starting chat with peer using name=%s", chaincodename)
	return chatWithPeer(chaincodename, stream, cc, opts...)
}

//chatWithPeer注册链码并运行读循环。返回前所有未完成的账本请求
//以连接关闭失败，正在执行的交易全部结束，之后不会再写流。
func chatWithPeer(chaincodename string, stream ChaincodeStream, cc Chaincode, opts ...HandlerOption) (err error) {
	handler := newChaincodeHandler(stream, cc, chaincodename, opts...)
	defer func() { handler.shutdown(err) }()

	if err = handler.register(); err != nil {
		return err
	}

	for {
		in, recvErr := stream.Recv()
		switch {
		case recvErr == io.EOF:
			err = errors.Wrap(recvErr, "received EOF, ending chaincode stream")
			handler.logger.Debugf("%+v", err)
			return err
		case recvErr != nil:
			err = errors.Wrap(recvErr, "receive failed")
			handler.logger.Errorf("Received error from server, ending chaincode stream: %+v", err)
			return err
		case in == nil:
			err = errors.New("received nil message, ending chaincode stream")
			handler.logger.Debugf("%+v", err)
			return err
		}

		handler.logger.Debugf("[%s]Received message %s from peer", shorttxid(in.Txid), in.Type)
		if err = handler.handleMessage(in); err != nil {
			return errors.WithMessage(err, "error handling message")
		}
	}
}
