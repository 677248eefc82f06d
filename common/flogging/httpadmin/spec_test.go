
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

package httpadmin_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	"github.com/ic-matcom/fabric-chaincode-go/common/flogging/httpadmin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type specLogging struct {
	spec        string
	activateErr error
	activated   []string
}

func (f *specLogging) Spec() string { return f.spec }

func (f *specLogging) ActivateSpec(spec string) error {
	f.activated = append(f.activated, spec)
	return f.activateErr
}

var _ = Describe("SpecHandler", func() {
	var (
		fakeLogging *specLogging
		handler     *httpadmin.SpecHandler
		resp        *httptest.ResponseRecorder
	)

	serve := func(method, body string) {
		handler.ServeHTTP(resp, httptest.NewRequest(method, "/logspec", strings.NewReader(body)))
	}

	BeforeEach(func() {
		fakeLogging = &specLogging{spec: "chaincode.asset=debug:info"}
		handler = &httpadmin.SpecHandler{
			Logging: fakeLogging,
			Logger:  flogging.MustGetLogger("test.logspec"),
		}
		resp = httptest.NewRecorder()
	})

	It("returns the active spec", func() {
		serve(http.MethodGet, "")
		Expect(resp.Code).To(Equal(http.StatusOK))
		Expect(resp.Header().Get("Content-Type")).To(Equal("application/json"))
		Expect(resp.Body).To(MatchJSON(`{"spec": "chaincode.asset=debug:info"}`))
		Expect(fakeLogging.activated).To(BeEmpty())
	})

	It("replaces the whole spec", func() {
		serve(http.MethodPut, `{"spec": "shim=debug:warn"}`)
		Expect(resp.Code).To(Equal(http.StatusNoContent))
		Expect(fakeLogging.activated).To(Equal([]string{"shim=debug:warn"}))
	})

	It("changes only the shim level", func() {
		fakeLogging.spec = "shim=error:chaincode.asset=debug:info"
		serve(http.MethodPut, `{"shim": "debug"}`)
		Expect(resp.Code).To(Equal(http.StatusNoContent))
		Expect(fakeLogging.activated).To(Equal([]string{"shim=debug:chaincode.asset=debug:info"}))
	})

	It("rejects payloads that are not json", func() {
		serve(http.MethodPut, `goo`)
		Expect(resp.Code).To(Equal(http.StatusBadRequest))
		Expect(resp.Body).To(MatchJSON(`{"error": "invalid character 'g' looking for beginning of value"}`))
		Expect(fakeLogging.activated).To(BeEmpty())
	})

	It("reports specs that cannot be activated", func() {
		fakeLogging.activateErr = errors.New("invalid logging specification")
		serve(http.MethodPut, `{"spec": "shim=chatty"}`)
		Expect(resp.Code).To(Equal(http.StatusBadRequest))
		Expect(resp.Body).To(MatchJSON(`{"error": "invalid logging specification"}`))
	})

	It("rejects other methods", func() {
		serve(http.MethodPost, `{}`)
		Expect(resp.Code).To(Equal(http.StatusMethodNotAllowed))
		Expect(resp.Header().Get("Allow")).To(Equal("GET, PUT"))
		Expect(resp.Body).To(MatchJSON(`{"error": "invalid request method: POST"}`))
		Expect(fakeLogging.activated).To(BeEmpty())
	})

	It("uses the global logging system by default", func() {
		h := httpadmin.NewSpecHandler()
		Expect(h.Logging).To(BeIdenticalTo(flogging.Global))
		Expect(h.Logger).NotTo(BeNil())
	})
})
