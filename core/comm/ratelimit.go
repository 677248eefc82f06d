
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


package comm

import (
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

//RateLimiter限制新流的建立速率。对等节点重连过快时，
//流在建立前等待令牌，流上下文结束时以
//ResourceExhausted拒绝。
type RateLimiter struct {
	limiter *rate.Limiter
}

//NewRateLimiter创建每秒允许perSecond个新流、突发为burst的限速器，
//burst小于1时按1处理
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (r *RateLimiter) StreamServerInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if err := r.limiter.Wait(ss.Context()); err != nil {
		return status.Error(codes.ResourceExhausted, errors.WithMessage(err, "stream rate limit exceeded").Error())
	}
	return handler(srv, ss)
}
