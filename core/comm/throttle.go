
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
	"context"

	"github.com/ic-matcom/fabric-chaincode-go/common/semaphore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

type Semaphore interface {
	Acquire(ctx context.Context) error
	Release()
}

//Throttle限制同时处理的Connect流数量。超出的流一直等待，
//等待期间流上下文结束则以对应的grpc状态码返回。
type Throttle struct {
	Semaphore Semaphore
}

func NewThrottle(maxConcurrency int) *Throttle {
	return &Throttle{Semaphore: semaphore.New(maxConcurrency)}
}

func (t *Throttle) StreamServerInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if err := t.Semaphore.Acquire(ss.Context()); err != nil {
		return status.FromContextError(err).Err()
	}
	defer t.Semaphore.Release()

	return handler(srv, ss)
}
