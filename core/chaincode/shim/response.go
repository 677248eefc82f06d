
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
package shim

import (
	pb "github.com/hyperledger/fabric-protos-go/peer"
)

const (
//OK表示Init或Invoke成功，小于400的状态码会被背书
	OK = 200

//状态码大于或等于ERRORTHRESHOLD时背书节点拒绝背书
	ERRORTHRESHOLD = 400

//ERROR是默认的错误状态码
	ERROR = 500
)

//Success返回带有负载的OK响应
func Success(payload []byte) pb.Response {
	return pb.Response{
		Status:  OK,
		Payload: payload,
	}
}

//Error返回带有错误信息的ERROR响应
func Error(msg string) pb.Response {
	return pb.Response{
		Status:  ERROR,
		Message: msg,
	}
}
