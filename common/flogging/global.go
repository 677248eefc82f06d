
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

package flogging

import (
	"strings"

	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc/grpclog"
)

const defaultLevel = zapcore.InfoLevel

//Global是进程内共享的日志系统，grpc的内部日志也写入其中
var Global *Logging

func init() {
	logging, err := New(Config{})
	if err != nil {
		panic(err)
	}
	Global = logging
	grpclog.SetLoggerV2(NewGRPCLogger(Global.ZapLogger("grpc")))
}

//Init把config应用到Global，config无效时panic
func Init(config Config) {
	if err := Global.Apply(config); err != nil {
		panic(err)
	}
}

//Reset恢复Global的默认配置，测试结束时使用
func Reset() {
	Global.Apply(Config{})
}

func GetLoggerLevel(loggerName string) string {
	return strings.ToUpper(Global.Level(loggerName).String())
}

//MustGetLogger返回Global中指定名称的记录器，名称无效时panic
func MustGetLogger(loggerName string) *FabricLogger {
	return Global.Logger(loggerName)
}

func SetObserver(observer Observer) {
	Global.SetObserver(observer)
}

//ActivateSpec在Global上启用日志规范，规范无效时panic
func ActivateSpec(spec string) {
	if err := Global.ActivateSpec(spec); err != nil {
		panic(err)
	}
}
