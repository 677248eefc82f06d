
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


package comm_test

import (
	"context"
	"testing"

	"github.com/ic-matcom/fabric-chaincode-go/core/comm"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRateLimiter(t *testing.T) {
	limiter := comm.NewRateLimiter(0.001, 0)

	calls := 0
	handler := func(srv interface{}, ss grpc.ServerStream) error {
		calls++
		return nil
	}

	err := limiter.StreamServerInterceptor(nil, &throttleStream{ctx: context.Background()}, nil, handler)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = limiter.StreamServerInterceptor(nil, &throttleStream{ctx: ctx}, nil, handler)
	assert.Error(t, err)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
	assert.Contains(t, err.Error(), "stream rate limit exceeded")
	assert.Equal(t, 1, calls)
}

func TestRateLimiterBurst(t *testing.T) {
	limiter := comm.NewRateLimiter(0.001, 3)

	calls := 0
	handler := func(srv interface{}, ss grpc.ServerStream) error {
		calls++
		return nil
	}
	for i := 0; i < 3; i++ {
		err := limiter.StreamServerInterceptor(nil, &throttleStream{ctx: context.Background()}, nil, handler)
		assert.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}
