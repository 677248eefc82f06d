
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

//operations包提供链码进程的运维HTTP端点：
//  /metrics  prometheus度量
//  /logspec  读取和修改日志规范
//  /healthz  健康检查
//  /version  版本信息
package operations

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	"github.com/ic-matcom/fabric-chaincode-go/common/flogging/httpadmin"
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics"
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics/disabled"
	promprovider "github.com/ic-matcom/fabric-chaincode-go/common/metrics/prometheus"
	"github.com/ic-matcom/fabric-chaincode-go/core/middleware"
	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//Logger是System记录失败健康检查所需的最小日志接口
type Logger interface {
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
}

//HealthChecker由需要参与/healthz检查的组件实现
type HealthChecker interface {
	HealthCheck(context.Context) error
}

//健康检查的最长等待时间
const healthCheckTimeout = 30 * time.Second

type MetricsOptions struct {
//Provider为"prometheus"时启用/metrics，其他取值关闭度量
	Provider string
}

type Options struct {
	ListenAddress string
	TLS           TLS
	Logger        Logger
	Metrics       MetricsOptions
	Version       string
}

//System是运维HTTP服务，同时作为整个进程的metrics.Provider
type System struct {
	metrics.Provider

	logger     Logger
	options    Options
	mux        *http.ServeMux
	httpServer *http.Server
	registry   *prom.Registry
	addr       string

	mutex    sync.RWMutex
	checkers map[string]HealthChecker
}

func NewSystem(o Options) *System {
	logger := o.Logger
	if logger == nil {
		logger = flogging.MustGetLogger("chaincode.operations")
	}

	s := &System{
		logger:   logger,
		options:  o,
		mux:      http.NewServeMux(),
		checkers: map[string]HealthChecker{},
	}
	s.initializeMetrics()
	s.initializeLogSpecHandler()
	s.mux.Handle("/healthz", s.handler(http.HandlerFunc(s.serveHealth), false))
	s.mux.Handle("/version", s.handler(http.HandlerFunc(s.serveVersion), false))

	s.httpServer = &http.Server{
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
	return s
}

func (s *System) initializeMetrics() {
	if s.options.Metrics.Provider != "prometheus" {
		s.Provider = &disabled.Provider{}
		return
	}

	s.registry = prom.NewRegistry()
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.Provider = promprovider.NewProvider(s.registry)
	s.mux.Handle("/metrics", s.handler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}), false))
}

func (s *System) initializeLogSpecHandler() {
	s.mux.Handle("/logspec", s.handler(httpadmin.NewSpecHandler(), true))
}

//Registry返回prometheus注册表，未启用度量时为nil
func (s *System) Registry() *prom.Registry {
	return s.registry
}

//handler给h套上请求ID和日志中间件，requireAuth为true且要求客户端证书时校验证书
func (s *System) handler(h http.Handler, requireAuth bool) http.Handler {
	mws := []middleware.Middleware{
		middleware.WithRequestID(middleware.NewUUID),
		middleware.WithLogging(flogging.MustGetLogger("chaincode.operations.http")),
	}
	if requireAuth && s.options.TLS.Enabled && s.options.TLS.ClientCertRequired {
		mws = append(mws, middleware.RequireCert())
	}
	return middleware.NewChain(mws...).Handler(h)
}

//RegisterChecker注册组件的健康检查，同名组件只能注册一次
func (s *System) RegisterChecker(component string, checker HealthChecker) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.checkers[component]; ok {
		return errors.Errorf("checker already registered for component %s", component)
	}
	s.checkers[component] = checker
	return nil
}

func (s *System) Start() error {
	tlsConfig, err := s.options.TLS.Config()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", s.options.ListenAddress)
	if err != nil {
		return errors.Wrap(err, "failed to listen on operations address")
	}
	s.addr = listener.Addr().String()
	s.httpServer.TLSConfig = tlsConfig

	go func() {
		var err error
		if tlsConfig != nil {
			err = s.httpServer.ServeTLS(listener, "", "")
		} else {
			err = s.httpServer.Serve(listener)
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Warnf("operations server stopped: %s", err)
		}
	}()

	return nil
}

func (s *System) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

//Addr返回实际监听的地址，Start之前为空
func (s *System) Addr() string {
	return s.addr
}

type FailedCheck struct {
	Component string `json:"component"`
	Reason    string `json:"reason"`
}

type HealthStatus struct {
	Status       string        `json:"status"`
	Time         time.Time     `json:"time"`
	FailedChecks []FailedCheck `json:"failed_checks,omitempty"`
}

const (
	StatusOK          = "OK"
	StatusUnavailable = "Service Unavailable"
)

func (s *System) serveHealth(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.mutex.RLock()
	components := make([]string, 0, len(s.checkers))
	for c := range s.checkers {
		components = append(components, c)
	}
	checkers := s.checkers
	s.mutex.RUnlock()
	sort.Strings(components)

	ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
	defer cancel()

	hs := HealthStatus{Status: StatusOK, Time: time.Now()}
	for _, c := range components {
		if err := checkers[c].HealthCheck(ctx); err != nil {
			hs.FailedChecks = append(hs.FailedChecks, FailedCheck{Component: c, Reason: err.Error()})
		}
	}

	code := http.StatusOK
	if len(hs.FailedChecks) > 0 {
		hs.Status = StatusUnavailable
		code = http.StatusServiceUnavailable
		s.logger.Warnf("health check failed: %v", hs.FailedChecks)
	}
	s.writeJSON(w, code, hs)
}

type VersionInfo struct {
	Version string `json:"Version"`
}

func (s *System) serveVersion(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, &VersionInfo{Version: s.options.Version})
}

func (s *System) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", err)
	}
}
