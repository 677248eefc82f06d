
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

package operations_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics"
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics/disabled"
	"github.com/ic-matcom/fabric-chaincode-go/core/operations"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("System", func() {
	var (
		fakeLogger *warnLogger
		options    operations.Options
		system     *operations.System
		baseURL    string
	)

	get := func(path string) (int, string) {
		resp, err := http.Get(baseURL + path)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp.StatusCode, string(body)
	}

	BeforeEach(func() {
		fakeLogger = &warnLogger{}
		options = operations.Options{
			ListenAddress: "127.0.0.1:0",
			Logger:        fakeLogger,
			Metrics:       operations.MetricsOptions{Provider: "prometheus"},
			Version:       "1.4.0-test",
		}
	})

	JustBeforeEach(func() {
		system = operations.NewSystem(options)
		Expect(system.Start()).To(Succeed())
		baseURL = "http://" + system.Addr()
	})

	AfterEach(func() {
		Expect(system.Stop()).To(Succeed())
		flogging.ActivateSpec("info")
	})

	It("serves the version", func() {
		code, body := get("/version")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"Version":"1.4.0-test"}`))
	})

	It("exposes metrics created through the provider", func() {
		counter := system.NewCounter(metrics.CounterOpts{
			Namespace: "chaincode",
			Name:      "test_total",
			Help:      "a test counter",
		})
		counter.Add(3)

		code, body := get("/metrics")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring("chaincode_test_total 3"))
		Expect(body).To(ContainSubstring("go_goroutines"))
		Expect(system.Registry()).NotTo(BeNil())
	})

	It("reads and updates the log spec", func() {
		code, body := get("/logspec")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"spec"`))

		req, err := http.NewRequest(http.MethodPut, baseURL+"/logspec", strings.NewReader(`{"spec":"shim=debug:warning"}`))
		Expect(err).NotTo(HaveOccurred())
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		Expect(flogging.Global.Spec()).To(Equal("shim=debug:warn"))
	})

	Describe("health checks", func() {
		It("reports OK without checkers", func() {
			code, body := get("/healthz")
			Expect(code).To(Equal(http.StatusOK))
			var hs operations.HealthStatus
			Expect(json.Unmarshal([]byte(body), &hs)).To(Succeed())
			Expect(hs.Status).To(Equal(operations.StatusOK))
			Expect(hs.FailedChecks).To(BeEmpty())
		})

		It("reports failing components", func() {
			healthy := &healthChecker{}
			broken := &healthChecker{err: errors.New("peer stream is down")}
			Expect(system.RegisterChecker("handler", broken)).To(Succeed())
			Expect(system.RegisterChecker("server", healthy)).To(Succeed())
			Expect(system.RegisterChecker("server", healthy)).To(MatchError("checker already registered for component server"))

			code, body := get("/healthz")
			Expect(code).To(Equal(http.StatusServiceUnavailable))
			var hs operations.HealthStatus
			Expect(json.Unmarshal([]byte(body), &hs)).To(Succeed())
			Expect(hs.Status).To(Equal(operations.StatusUnavailable))
			Expect(hs.FailedChecks).To(ConsistOf(operations.FailedCheck{Component: "handler", Reason: "peer stream is down"}))
			Expect(healthy.CallCount()).To(Equal(1))
			Expect(fakeLogger.Warnings()).To(ConsistOf(ContainSubstring("handler")))
		})

		It("rejects other methods", func() {
			resp, err := http.Post(baseURL+"/healthz", "application/json", nil)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
		})
	})

	Context("when metrics are disabled", func() {
		BeforeEach(func() {
			options.Metrics.Provider = "disabled"
		})

		It("does not serve /metrics", func() {
			Expect(system.Provider).To(BeAssignableToTypeOf(&disabled.Provider{}))
			Expect(system.Registry()).To(BeNil())
			code, _ := get("/metrics")
			Expect(code).To(Equal(http.StatusNotFound))
		})
	})
})

var _ = Describe("TLS", func() {
	It("returns a nil config when disabled", func() {
		config, err := operations.TLS{}.Config()
		Expect(err).NotTo(HaveOccurred())
		Expect(config).To(BeNil())
	})

	It("fails on missing key material", func() {
		_, err := operations.TLS{Enabled: true, CertFile: "missing.pem", KeyFile: "missing.key"}.Config()
		Expect(err).To(MatchError(ContainSubstring("failed to load operations key pair")))
	})

	It("fails to start with bad TLS material", func() {
		s := operations.NewSystem(operations.Options{
			ListenAddress: "127.0.0.1:0",
			TLS:           operations.TLS{Enabled: true, CertFile: "missing.pem", KeyFile: "missing.key"},
		})
		Expect(s.Start()).To(MatchError(ContainSubstring("failed to load operations key pair")))
	})
})
