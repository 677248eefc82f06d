
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

package grpclogging

import (
	"bytes"
	"context"

	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type fieldsKey struct{}

//WithFields把流的日志字段放入ctx，处理器可以用ZapFields取出
func WithFields(ctx context.Context, fields []zapcore.Field) context.Context {
	return context.WithValue(ctx, fieldsKey{}, fields)
}

func ZapFields(ctx context.Context) []zapcore.Field {
	fields, _ := ctx.Value(fieldsKey{}).([]zapcore.Field)
	return fields
}

//protoJSON只在日志条目真正编码时才序列化消息
type protoJSON struct{ proto.Message }

func (p protoJSON) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := (&jsonpb.Marshaler{OrigName: true}).Marshal(&buf, p.Message); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//ProtoMessage以jsonpb格式记录proto消息，其他值按zap.Any处理
func ProtoMessage(key string, val interface{}) zapcore.Field {
	if msg, ok := val.(proto.Message); ok {
		return zap.Reflect(key, protoJSON{msg})
	}
	return zap.Any(key, val)
}

//Error记录err的消息，不输出pkg/errors的堆栈
func Error(err error) zapcore.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.String("error", err.Error())
}
