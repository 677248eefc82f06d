
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
	"strings"
	"time"

	"github.com/ic-matcom/fabric-chaincode-go/common/viperutil"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

//Config是链码进程的全部配置，键名与CORE_前缀的环境变量一一对应，
//例如chaincode.id.name对应CORE_CHAINCODE_ID_NAME
type Config struct {
	Chaincode  ChaincodeConfig
	Peer       PeerConfig
	TLS        ClientTLSConfig `mapstructure:"tls"`
	Operations OperationsConfig
	Metrics    MetricsConfig
	Tracing    TracingConfig
}

type ChaincodeConfig struct {
	ID struct {
		Name string
	} `mapstructure:"id"`
	Server struct {
		Address        string
		MaxConcurrency int
		RateLimit      float64
	}
	Logging struct {
		Format string
		Level  string
		Shim   string
	}
	BuildLevel  string
	CallTimeout time.Duration
}

type PeerConfig struct {
	Address string
	TLS     struct {
		Enabled  bool
		RootCert struct {
			File string
		}
		ServerHostOverride string
	} `mapstructure:"tls"`
}

type ClientTLSConfig struct {
	Client struct {
		Key struct {
			Path string
		}
		Cert struct {
			Path string
		}
	}
}

type OperationsConfig struct {
	ListenAddress string
	TLS           struct {
		Enabled bool
		Cert    struct {
			File string
		}
		Key struct {
			File string
		}
		ClientAuthRequired bool
		ClientRootCAs      struct {
			Files []string
		}
	} `mapstructure:"tls"`
}

type MetricsConfig struct {
	Provider string
}

type TracingConfig struct {
	Enabled       bool
	SamplingRatio float64
}

var defaults = map[string]interface{}{
	"chaincode.id.name":                  "",
	"chaincode.server.address":           "",
	"chaincode.server.maxconcurrency":    0,
	"chaincode.server.ratelimit":         0.0,
	"chaincode.logging.format":           "",
	"chaincode.logging.level":            "info",
	"chaincode.logging.shim":             "",
	"chaincode.buildlevel":               "",
	"chaincode.calltimeout":              "0s",
	"peer.address":                       "",
	"peer.tls.enabled":                   false,
	"peer.tls.rootcert.file":             "",
	"peer.tls.serverhostoverride":        "",
	"tls.client.key.path":                "",
	"tls.client.cert.path":               "",
	"operations.listenaddress":           "127.0.0.1:9443",
	"operations.tls.enabled":             false,
	"operations.tls.cert.file":           "",
	"operations.tls.key.file":            "",
	"operations.tls.clientauthrequired":  false,
	"operations.tls.clientrootcas.files": []string{},
	"metrics.provider":                   "prometheus",
	"tracing.enabled":                    false,
	"tracing.samplingratio":              1.0,
}

//loadConfig在v上设置默认值和环境变量映射，configFile非空时读取该YAML文件，
//最后严格解码到Config。shim直接从同一个viper读取它关心的键
func loadConfig(v *viper.Viper, configFile string) (*Config, error) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("CORE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.BindEnv("chaincode.id.name", "CHAINCODE_ID", "CORE_CHAINCODE_ID_NAME")
	v.BindEnv("chaincode.server.address", "CHAINCODE_SERVER_ADDRESS", "CORE_CHAINCODE_SERVER_ADDRESS")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}

	c := &Config{}
	if err := viperutil.EnhancedExactUnmarshal(v, c); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return c, nil
}
