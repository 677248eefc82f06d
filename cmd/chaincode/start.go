
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

package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	floggingmetrics "github.com/ic-matcom/fabric-chaincode-go/common/flogging/metrics"
	"github.com/ic-matcom/fabric-chaincode-go/common/metadata"
	"github.com/ic-matcom/fabric-chaincode-go/core/chaincode/shim"
	"github.com/ic-matcom/fabric-chaincode-go/core/operations"
	"github.com/ic-matcom/fabric-chaincode-go/examples/chaincode/go/assettransfer"
	"github.com/ic-matcom/fabric-chaincode-go/examples/chaincode/go/token"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
)

var logger = flogging.MustGetLogger("chaincode.cmd")

var chaincodes = map[string]func() shim.Chaincode{
	"asset": func() shim.Chaincode { return new(assettransfer.AssetTransfer) },
	"token": func() shim.Chaincode { return new(token.Token) },
}

const (
	modeClient = "client"
	modeServer = "server"
)

type startOptions struct {
	mode       string
	chaincode  string
	configFile string
}

func startCmd() *cobra.Command {
	o := &startOptions{}
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the chaincode.",
		Long: `Start the chaincode. In client mode the chaincode dials peer.address and registers;
in server mode it listens on chaincode.server.address and waits for the peer to connect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return errors.Errorf("trailing args detected: %s", args)
			}
			cmd.SilenceUsage = true
			return o.run(viper.GetViper())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.mode, "mode", "m", modeClient, "client or server")
	flags.StringVarP(&o.chaincode, "chaincode", "c", "asset", "chaincode to run: asset or token")
	flags.StringVar(&o.configFile, "config", "", "path to a YAML configuration file")
	return cmd
}

func (o *startOptions) run(v *viper.Viper) error {
	newCC, ok := chaincodes[o.chaincode]
	if !ok {
		return errors.Errorf("unknown chaincode %s", o.chaincode)
	}
	if o.mode != modeClient && o.mode != modeServer {
		return errors.Errorf("unknown mode %s", o.mode)
	}

	conf, err := loadConfig(v, o.configFile)
	if err != nil {
		return err
	}
	shim.SetupChaincodeLogging()

	ops := operations.NewSystem(operations.Options{
		ListenAddress: conf.Operations.ListenAddress,
		TLS: operations.TLS{
			Enabled:            conf.Operations.TLS.Enabled,
			CertFile:           conf.Operations.TLS.Cert.File,
			KeyFile:            conf.Operations.TLS.Key.File,
			ClientCertRequired: conf.Operations.TLS.ClientAuthRequired,
			ClientCACertFiles:  conf.Operations.TLS.ClientRootCAs.Files,
		},
		Metrics: operations.MetricsOptions{Provider: conf.Metrics.Provider},
		Version: metadata.Version,
	})
	flogging.SetObserver(floggingmetrics.NewObserver(ops))
	defer flogging.SetObserver(nil)

	if conf.Operations.ListenAddress != "" {
		if err := ops.Start(); err != nil {
			return err
		}
		defer ops.Stop()
		logger.Infof("operations endpoint listening on %s", ops.Addr())
	}

	tp, shutdown := newTracerProvider(conf.Tracing, conf.Chaincode.ID.Name)
	defer shutdown(context.Background())

	cc := newCC()
	if o.mode == modeServer {
		return serve(cc, conf, ops, tp)
	}

	logger.Infof("starting %s chaincode in client mode", o.chaincode)
	return shim.Start(cc,
		shim.WithCallTimeout(conf.Chaincode.CallTimeout),
		shim.WithHandlerMetrics(shim.NewHandlerMetrics(ops)),
		shim.WithTracerProvider(tp),
	)
}

func serve(cc shim.Chaincode, conf *Config, ops *operations.System, tp trace.TracerProvider) error {
	srv, err := shim.NewChaincodeServerFromEnv(cc)
	if err != nil {
		return err
	}
	srv.MetricsProvider = ops
	srv.TracerProvider = tp
	srv.CallTimeout = conf.Chaincode.CallTimeout

	if err := ops.RegisterChecker("chaincode.server", &dialChecker{address: srv.Address}); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		if sig, ok := <-sigs; ok {
			logger.Infof("received %s, stopping chaincode server", sig)
			srv.Stop()
		}
	}()

	return srv.Start()
}

//dialChecker在链码服务地址可连接时认为健康
type dialChecker struct {
	address string
}

func (d *dialChecker) HealthCheck(ctx context.Context) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", d.address)
	if err != nil {
		return errors.Wrapf(err, "chaincode server at %s is not reachable", d.address)
	}
	return conn.Close()
}
