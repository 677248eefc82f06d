
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


package prometheus_test

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"

	commonmetrics "github.com/ic-matcom/fabric-chaincode-go/common/metrics"
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics/prometheus"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ = Describe("Provider", func() {
	var (
		server *httptest.Server
		client *http.Client
		p      *prometheus.Provider
	)

	BeforeEach(func() {
		registry := prom.NewRegistry()
		server = httptest.NewServer(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		client = server.Client()

		p = prometheus.NewProvider(registry)
	})

	AfterEach(func() {
		server.Close()
	})

	scrape := func() string {
		resp, err := client.Get(fmt.Sprintf("http://%s/metrics", server.Listener.Addr().String()))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		bytes, err := ioutil.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return string(bytes)
	}

	It("implements metrics.Provider", func() {
		var p commonmetrics.Provider = &prometheus.Provider{}
		Expect(p).NotTo(BeNil())
	})

	Describe("NewCounter", func() {
		var counterOpts commonmetrics.CounterOpts

		BeforeEach(func() {
			counterOpts = commonmetrics.CounterOpts{
				Namespace:  "chaincode",
				Subsystem:  "shim",
				Name:       "counter_name",
				Help:       "This is some help text for the counter",
				LabelNames: []string{"alpha", "beta"},
			}
		})

		It("creates counters that support labels", func() {
			counter := p.NewCounter(counterOpts)
			counter.With("alpha", "a", "beta", "b").Add(1)
			counter.With("alpha", "aardvark", "beta", "b").Add(2)

			body := scrape()
			Expect(body).To(ContainSubstring(`# HELP chaincode_shim_counter_name This is some help text for the counter`))
			Expect(body).To(ContainSubstring(`# TYPE chaincode_shim_counter_name counter`))
			Expect(body).To(ContainSubstring(`chaincode_shim_counter_name{alpha="a",beta="b"} 1`))
			Expect(body).To(ContainSubstring(`chaincode_shim_counter_name{alpha="aardvark",beta="b"} 2`))
		})

		It("uses unknown for a missing label value", func() {
			counter := p.NewCounter(counterOpts)
			counter.With("alpha", "a", "beta").Add(1)
			Expect(scrape()).To(ContainSubstring(`chaincode_shim_counter_name{alpha="a",beta="unknown"} 1`))
		})

		Context("when the counter is defined without labels", func() {
			BeforeEach(func() {
				counterOpts.LabelNames = nil
			})

			It("With does not need to be called", func() {
				counter := p.NewCounter(counterOpts)
				counter.Add(1)
				Expect(scrape()).To(ContainSubstring(`chaincode_shim_counter_name 1`))
			})
		})

		Context("when the counter is registered twice", func() {
			It("panics", func() {
				p.NewCounter(counterOpts)
				Expect(func() { p.NewCounter(counterOpts) }).To(Panic())
			})
		})
	})

	Describe("NewGauge", func() {
		It("creates gauges that support labels", func() {
			gauge := p.NewGauge(commonmetrics.GaugeOpts{
				Namespace:  "chaincode",
				Subsystem:  "shim",
				Name:       "gauge_name",
				Help:       "This is some help text for the gauge",
				LabelNames: []string{"alpha", "beta"},
			})
			gauge.With("alpha", "a", "beta", "b").Add(1)
			gauge.With("alpha", "a", "beta", "b").Add(1)
			gauge.With("alpha", "aardvark", "beta", "bob").Set(99)

			body := scrape()
			Expect(body).To(ContainSubstring(`# TYPE chaincode_shim_gauge_name gauge`))
			Expect(body).To(ContainSubstring(`chaincode_shim_gauge_name{alpha="a",beta="b"} 2`))
			Expect(body).To(ContainSubstring(`chaincode_shim_gauge_name{alpha="aardvark",beta="bob"} 99`))
		})
	})

	Describe("NewHistogram", func() {
		It("creates histogram with buckets that support labels", func() {
			histogram := p.NewHistogram(commonmetrics.HistogramOpts{
				Namespace:  "chaincode",
				Subsystem:  "shim",
				Name:       "histogram_name",
				Help:       "This is some help text for the histogram",
				Buckets:    []float64{1, 5},
				LabelNames: []string{"alpha", "beta"},
			})
			histogram.With("alpha", "a", "beta", "b").Observe(0.5)
			histogram.With("alpha", "a", "beta", "b").Observe(4.5)

			body := scrape()
			Expect(body).To(ContainSubstring(`# TYPE chaincode_shim_histogram_name histogram`))
			Expect(body).To(ContainSubstring(`chaincode_shim_histogram_name_bucket{alpha="a",beta="b",le="1"} 1`))
			Expect(body).To(ContainSubstring(`chaincode_shim_histogram_name_bucket{alpha="a",beta="b",le="5"} 2`))
			Expect(body).To(ContainSubstring(`chaincode_shim_histogram_name_sum{alpha="a",beta="b"} 5`))
			Expect(body).To(ContainSubstring(`chaincode_shim_histogram_name_count{alpha="a",beta="b"} 2`))
		})
	})
})
