
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

package middleware_test

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ic-matcom/fabric-chaincode-go/common/flogging/floggingtest"
	"github.com/ic-matcom/fabric-chaincode-go/core/middleware"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Chain", func() {
	var (
		chain middleware.Chain
		hello http.Handler
		resp  *httptest.ResponseRecorder
		req   *http.Request
	)

	tag := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(name + ":before,"))
				next.ServeHTTP(w, r)
				w.Write([]byte(name + ":after,"))
			})
		}
	}

	BeforeEach(func() {
		chain = middleware.NewChain(tag("1"), tag("2"), tag("3"))
		hello = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("Hello!,"))
		})
		req = httptest.NewRequest("GET", "/", nil)
		resp = httptest.NewRecorder()
	})

	It("calls middleware in the specified order", func() {
		chain.Handler(hello).ServeHTTP(resp, req)
		Expect(resp.Body.String()).To(Equal("1:before,2:before,3:before,Hello!,3:after,2:after,1:after,"))
	})

	It("calls the handler when the chain is empty", func() {
		middleware.NewChain().Handler(hello).ServeHTTP(resp, req)
		Expect(resp.Body.String()).To(Equal("Hello!,"))
	})

	It("uses the DefaultServeMux when the handler is nil", func() {
		middleware.NewChain().Handler(nil).ServeHTTP(resp, req)
		Expect(resp.Body.String()).To(ContainSubstring("404 page not found"))
	})
})

var _ = Describe("WithRequestID", func() {
	var (
		handler http.Handler
		seen    string
		resp    *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		seen = ""
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = middleware.RequestID(r.Context())
		})
		handler = middleware.WithRequestID(func() string { return "generated-id" })(next)
		resp = httptest.NewRecorder()
	})

	It("generates an ID when none is supplied", func() {
		handler.ServeHTTP(resp, httptest.NewRequest("GET", "/", nil))
		Expect(seen).To(Equal("generated-id"))
		Expect(resp.Header().Get("X-Request-Id")).To(Equal("generated-id"))
	})

	It("keeps the ID from the request header", func() {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Request-Id", "client-id")
		handler.ServeHTTP(resp, req)
		Expect(seen).To(Equal("client-id"))
		Expect(resp.Header().Get("X-Request-Id")).To(Equal("client-id"))
	})

	It("falls back to uuids", func() {
		h := middleware.WithRequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = middleware.RequestID(r.Context())
		}))
		h.ServeHTTP(resp, httptest.NewRequest("GET", "/", nil))
		Expect(seen).To(HaveLen(36))
	})

	It("reports unknown without a request ID", func() {
		Expect(middleware.RequestID(httptest.NewRequest("GET", "/", nil).Context())).To(Equal("unknown"))
	})
})

var _ = Describe("RequireCert", func() {
	var (
		handler http.Handler
		called  bool
		req     *http.Request
		resp    *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		called = false
		handler = middleware.RequireCert()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		req = httptest.NewRequest("GET", "https://localhost/", nil)
		req.TLS = &tls.ConnectionState{VerifiedChains: [][]*x509.Certificate{{&x509.Certificate{}}}}
		resp = httptest.NewRecorder()
	})

	It("delegates when the first verified chain is not empty", func() {
		handler.ServeHTTP(resp, req)
		Expect(resp.Code).To(Equal(http.StatusOK))
		Expect(called).To(BeTrue())
	})

	DescribeTable("rejects requests without a verified client certificate",
		func(state *tls.ConnectionState) {
			req.TLS = state
			handler.ServeHTTP(resp, req)
			Expect(resp.Code).To(Equal(http.StatusUnauthorized))
			Expect(called).To(BeFalse())
		},
		Entry("no TLS", nil),
		Entry("no verified chains", &tls.ConnectionState{}),
		Entry("empty first chain", &tls.ConnectionState{VerifiedChains: [][]*x509.Certificate{{}}}),
	)
})

func TestWithLogging(t *testing.T) {
	gt := NewGomegaWithT(t)
	logger, recorder := floggingtest.NewTestLogger(t)

	h := middleware.NewChain(
		middleware.WithRequestID(func() string { return "rid" }),
		middleware.WithLogging(logger),
	).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest("GET", "/version", nil))
	gt.Expect(resp.Code).To(Equal(http.StatusTeapot))
	gt.Expect(recorder.MessagesContaining("request complete")).To(HaveLen(1))
	gt.Expect(recorder.EntriesContaining("rid")).To(HaveLen(1))
}
