
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
	"crypto/tls"
	"net/http"
)

//RequireCert拒绝没有经过验证的TLS客户端证书的请求，返回401
func RequireCert() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !hasVerifiedCert(req.TLS) {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func hasVerifiedCert(state *tls.ConnectionState) bool {
	return state != nil && len(state.VerifiedChains) != 0 && len(state.VerifiedChains[0]) != 0
}
