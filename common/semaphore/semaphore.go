
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


package semaphore

import "context"

//Semaphore是基于带缓冲通道的计数信号量。
type Semaphore chan struct{}

//New创建容量为count的信号量，count必须大于0。
func New(count int) Semaphore {
	if count <= 0 {
		panic("count must be greater than 0")
	}
	return make(chan struct{}, count)
}

//Acquire获取一个许可，上下文结束时返回上下文错误。
func (s Semaphore) Acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case s <- struct{}{}:
		return nil
	}
}

//Release释放一个许可，释放次数多于获取次数时会恐慌。
func (s Semaphore) Release() {
	select {
	case <-s:
	default:
		panic("semaphore buffer is empty")
	}
}
