
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
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

const (
//disabledlevel表示禁用的日志级别，只能以编程方式使用。
	DisabledLevel = zapcore.Level(math.MinInt8)

//payloadlevel用于记录消息负载，比debug更详细。
	PayloadLevel = zapcore.Level(zapcore.DebugLevel - 1)
)

//NameToLevel将级别名称转换为zapcore.Level，无法识别的
//名称返回info级别。
func NameToLevel(level string) zapcore.Level {
	l, err := nameToLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func nameToLevel(level string) (zapcore.Level, error) {
	switch level {
	case "PAYLOAD", "payload":
		return PayloadLevel, nil
	case "DEBUG", "debug":
		return zapcore.DebugLevel, nil
	case "INFO", "info":
		return zapcore.InfoLevel, nil
	case "WARNING", "WARN", "warning", "warn":
		return zapcore.WarnLevel, nil
	case "ERROR", "error":
		return zapcore.ErrorLevel, nil
	case "DPANIC", "dpanic":
		return zapcore.DPanicLevel, nil
	case "PANIC", "panic":
		return zapcore.PanicLevel, nil
	case "FATAL", "fatal":
		return zapcore.FatalLevel, nil

//兼容go-logging的名称
	case "NOTICE", "notice":
		return zapcore.InfoLevel, nil
	case "CRITICAL", "critical":
		return zapcore.ErrorLevel, nil

	default:
		return DisabledLevel, errors.Errorf("invalid log level: %s", level)
	}
}

//IsValidLevel判断级别名称是否可用于日志规范。
func IsValidLevel(level string) bool {
	_, err := nameToLevel(level)
	return err == nil
}
