
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

//httpadmin包在运维端点上提供日志规范的查询和修改
package httpadmin

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	"github.com/pkg/errors"
)

type Logging interface {
	ActivateSpec(spec string) error
	Spec() string
}

//LogSpec是/logspec的请求和响应体。
//PUT时Spec非空则替换整个规范，否则只把Shim应用到shim记录器。
type LogSpec struct {
	Spec string `json:"spec,omitempty"`
	Shim string `json:"shim,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewSpecHandler() *SpecHandler {
	return &SpecHandler{
		Logging: flogging.Global,
		Logger:  flogging.MustGetLogger("chaincode.operations.logspec"),
	}
}

type SpecHandler struct {
	Logging Logging
	Logger  *flogging.FabricLogger
}

func (h *SpecHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		h.sendResponse(resp, http.StatusOK, &LogSpec{Spec: h.Logging.Spec()})
	case http.MethodPut:
		h.update(resp, req)
	default:
		resp.Header().Set("Allow", "GET, PUT")
		h.sendResponse(resp, http.StatusMethodNotAllowed, errors.Errorf("invalid request method: %s", req.Method))
	}
}

func (h *SpecHandler) update(resp http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()

	var logSpec LogSpec
	if err := json.NewDecoder(req.Body).Decode(&logSpec); err != nil {
		h.sendResponse(resp, http.StatusBadRequest, err)
		return
	}

	spec := logSpec.Spec
	if spec == "" && logSpec.Shim != "" {
		spec = withLoggerLevel(h.Logging.Spec(), "shim", logSpec.Shim)
	}
	if err := h.Logging.ActivateSpec(spec); err != nil {
		h.sendResponse(resp, http.StatusBadRequest, err)
		return
	}

	h.Logger.Infof("activated logging spec %s", spec)
	resp.WriteHeader(http.StatusNoContent)
}

//withLoggerLevel用name=level替换spec中name原有的条目
func withLoggerLevel(spec, name, level string) string {
	fields := []string{name + "=" + level}
	for _, field := range strings.Split(spec, ":") {
		if field != "" && !strings.HasPrefix(field, name+"=") {
			fields = append(fields, field)
		}
	}
	return strings.Join(fields, ":")
}

func (h *SpecHandler) sendResponse(resp http.ResponseWriter, code int, payload interface{}) {
	if err, ok := payload.(error); ok {
		payload = &ErrorResponse{Error: err.Error()}
	}

	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(code)
	if err := json.NewEncoder(resp).Encode(payload); err != nil {
		h.Logger.Errorw("failed to encode payload", "error", err)
	}
}
