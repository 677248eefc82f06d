
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
package shim

import (
	"io"
	"net"
	"sync"
	"time"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	"github.com/ic-matcom/fabric-chaincode-go/common/grpclogging"
	"github.com/ic-matcom/fabric-chaincode-go/common/grpcmetrics"
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics"
	"github.com/ic-matcom/fabric-chaincode-go/core/comm"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

//TLSProperties是服务模式下的TLS材料，均为PEM编码
type TLSProperties struct {
//Disabled为真时以明文监听
	Disabled bool
	Key      []byte
	Cert     []byte
//ClientCACerts非空时要求对等节点提供客户端证书
	ClientCACerts []byte
}

//ChaincodeServer以服务模式运行链码，由对等节点调用Chaincode.Connect
//建立连接。每条Connect流拥有独立的Handler。
type ChaincodeServer struct {
	CCID     string
	Address  string
	CC       Chaincode
	TLSProps TLSProperties
	KaOpts   *comm.KeepaliveOptions

//MaxConcurrency限制同时存在的Connect流，零表示不限制
	MaxConcurrency int
//RateLimit是每秒允许建立的新流数，零表示不限制
	RateLimit float64

	MetricsProvider metrics.Provider
	TracerProvider  trace.TracerProvider
	CallTimeout     time.Duration
	Logger          *flogging.FabricLogger

	mutex   sync.Mutex
	server  *comm.GRPCServer
	metrics *HandlerMetrics
}

//NewChaincodeServerFromEnv按viper配置创建ChaincodeServer，
//同时识别CHAINCODE_ID和CHAINCODE_SERVER_ADDRESS环境变量
func NewChaincodeServerFromEnv(cc Chaincode) (*ChaincodeServer, error) {
	SetupChaincodeLogging()
	bindServerEnv()

	secOpts, err := comm.ServerSecureOptions(comm.TLSFiles{
		KeyPath:      viper.GetString("tls.client.key.path"),
		CertPath:     viper.GetString("tls.client.cert.path"),
		ClientCAPath: viper.GetString("peer.tls.rootcert.file"),
	})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to load chaincode server TLS configuration")
	}

	tlsProps := TLSProperties{Disabled: !secOpts.UseTLS}
	if secOpts.UseTLS {
		tlsProps.Key = secOpts.Key
		tlsProps.Cert = secOpts.Certificate
		if len(secOpts.ClientRootCAs) > 0 {
			tlsProps.ClientCACerts = secOpts.ClientRootCAs[0]
		}
	}

	return &ChaincodeServer{
		CCID:           viper.GetString("chaincode.id.name"),
		Address:        viper.GetString("chaincode.server.address"),
		CC:             cc,
		TLSProps:       tlsProps,
		KaOpts:         comm.DefaultKeepaliveOptions,
		MaxConcurrency: viper.GetInt("chaincode.server.maxconcurrency"),
		RateLimit:      viper.GetFloat64("chaincode.server.ratelimit"),
	}, nil
}

//原实现使用不带CORE前缀的变量名
func bindServerEnv() {
	configureViperEnv()
	viper.BindEnv("chaincode.id.name", "CHAINCODE_ID", "CORE_CHAINCODE_ID_NAME")
	viper.BindEnv("chaincode.server.address", "CHAINCODE_SERVER_ADDRESS", "CORE_CHAINCODE_SERVER_ADDRESS")
}

func (cs *ChaincodeServer) validate() error {
	switch {
	case cs.CCID == "":
		return errors.New("ccid must be specified")
	case cs.Address == "":
		return errors.New("address must be specified")
	case cs.CC == nil:
		return errors.New("chaincode must be specified")
	}
	if !cs.TLSProps.Disabled && (len(cs.TLSProps.Key) == 0 || len(cs.TLSProps.Cert) == 0) {
		return errors.New("key and cert must be specified when TLS is enabled")
	}
	return nil
}

func (cs *ChaincodeServer) logger() *flogging.FabricLogger {
	if cs.Logger != nil {
		return cs.Logger
	}
	return chaincodeLogger
}

func (cs *ChaincodeServer) serverConfig() comm.ServerConfig {
	config := comm.ServerConfig{
		KaOpts:          cs.KaOpts,
		Logger:          flogging.MustGetLogger("comm.grpc.server"),
		MetricsProvider: cs.MetricsProvider,
		SecOpts:         &comm.SecureOptions{UseTLS: !cs.TLSProps.Disabled},
	}
	if config.KaOpts == nil {
		config.KaOpts = comm.DefaultKeepaliveOptions
	}
	if !cs.TLSProps.Disabled {
		config.SecOpts.Key = cs.TLSProps.Key
		config.SecOpts.Certificate = cs.TLSProps.Cert
		if len(cs.TLSProps.ClientCACerts) > 0 {
			config.SecOpts.RequireClientCert = true
			config.SecOpts.ClientRootCAs = [][]byte{cs.TLSProps.ClientCACerts}
		}
	}

//新流依次经过限速、并发限制、日志和指标
	var interceptors []grpc.StreamServerInterceptor
	if cs.RateLimit > 0 {
		interceptors = append(interceptors, comm.NewRateLimiter(cs.RateLimit, int(cs.RateLimit)).StreamServerInterceptor)
	}
	if cs.MaxConcurrency > 0 {
		interceptors = append(interceptors, comm.NewThrottle(cs.MaxConcurrency).StreamServerInterceptor)
	}
	interceptors = append(interceptors, grpclogging.StreamServerInterceptor(flogging.MustGetLogger("comm.grpc.server").Zap()))
	if cs.MetricsProvider != nil {
		interceptors = append(interceptors, grpcmetrics.StreamServerInterceptor(grpcmetrics.NewStreamMetrics(cs.MetricsProvider)))
	}
	config.StreamInterceptors = interceptors
	return config
}

//Start在Address上监听并阻塞，直到Stop被调用
func (cs *ChaincodeServer) Start() error {
	if err := cs.validate(); err != nil {
		return err
	}
	lis, err := net.Listen("tcp", cs.Address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", cs.Address)
	}
	return cs.Serve(lis)
}

//Serve在给定的listener上提供Chaincode服务
func (cs *ChaincodeServer) Serve(lis net.Listener) error {
	if cs.Address == "" {
		cs.Address = lis.Addr().String()
	}
	if err := cs.validate(); err != nil {
		lis.Close()
		return err
	}

	server, err := comm.NewGRPCServerFromListener(lis, cs.serverConfig())
	if err != nil {
		lis.Close()
		return err
	}
	pb.RegisterChaincodeServer(server.Server(), cs)

	cs.mutex.Lock()
	if cs.MetricsProvider != nil {
		cs.metrics = NewHandlerMetrics(cs.MetricsProvider)
	}
	cs.server = server
	cs.mutex.Unlock()

	cs.logger().Infof("Chaincode %s listening on %s", cs.CCID, server.Address())
	return server.Start()
}

//Stop关闭监听和所有连接
func (cs *ChaincodeServer) Stop() {
	cs.mutex.Lock()
	server := cs.server
	cs.mutex.Unlock()
	if server != nil {
		server.Stop()
	}
}

func (cs *ChaincodeServer) handlerOptions() []HandlerOption {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()
	return []HandlerOption{
		WithCallTimeout(cs.CallTimeout),
		WithHandlerMetrics(cs.metrics),
		WithTracerProvider(cs.TracerProvider),
		WithLogger(cs.Logger),
	}
}

//Connect由对等节点调用，在流的生命周期内运行会话
func (cs *ChaincodeServer) Connect(stream pb.Chaincode_ConnectServer) error {
	err := chatWithPeer(cs.CCID, stream, cs.CC, cs.handlerOptions()...)
	if errors.Cause(err) == io.EOF {
		return nil
	}
	return err
}
