
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

package middleware

import (
	"net/http"
	"time"

	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

//WithLogging在debug级别记录每个请求的方法、路径、状态码和耗时
func WithLogging(logger *flogging.FabricLogger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, req)
			logger.Debugw("request complete",
				"method", req.Method,
				"path", req.URL.Path,
				"status", rec.status,
				"request_id", RequestID(req.Context()),
				"duration", time.Since(start),
			)
		})
	}
}
