
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
	"context"
	"net/http"

	"github.com/google/uuid"
)

//RequestIDHeader在请求与响应之间传递关联ID
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

//RequestID返回上下文中的请求ID，没有时返回"unknown"
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return "unknown"
}

type GenerateIDFunc func() string

//NewUUID是默认的请求ID生成器
func NewUUID() string {
	return uuid.NewString()
}

//WithRequestID沿用请求头中的ID，没有时生成新的ID，
//ID同时写入请求上下文和响应头
func WithRequestID(generate GenerateIDFunc) Middleware {
	if generate == nil {
		generate = NewUUID
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			id := req.Header.Get(RequestIDHeader)
			if id == "" {
				id = generate()
				req.Header.Set(RequestIDHeader, id)
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := context.WithValue(req.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
