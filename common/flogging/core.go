
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
	"go.uber.org/zap/zapcore"
)

//Encoding是日志记录的输出格式
type Encoding int8

const (
	CONSOLE = iota
	JSON
)

//EncodingSelector在写入时决定使用哪种Encoding
type EncodingSelector interface {
	Encoding() Encoding
}

//Observer在日志条目被检查和写入时得到通知
type Observer interface {
	Check(e zapcore.Entry, ce *zapcore.CheckedEntry)
	WriteEntry(e zapcore.Entry, fields []zapcore.Field)
}

//Core是按记录器名称过滤级别的zapcore.Core。
//Encoders中的编码器带有With添加的字段，不能在Core之间共享。
type Core struct {
	Levels   *LoggerLevels
	Encoders map[Encoding]zapcore.Encoder
	Selector EncodingSelector
	Output   zapcore.WriteSyncer
	Observer Observer
}

func (c *Core) Enabled(lvl zapcore.Level) bool {
	return c.Levels.Enabled(lvl)
}

func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.Encoders = make(map[Encoding]zapcore.Encoder, len(c.Encoders))
	for encoding, enc := range c.Encoders {
		enc = enc.Clone()
		for i := range fields {
			fields[i].AddTo(enc)
		}
		clone.Encoders[encoding] = enc
	}
	return &clone
}

func (c *Core) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Observer != nil {
		c.Observer.Check(e, ce)
	}
	if !c.Levels.Level(e.LoggerName).Enabled(e.Level) {
		return ce
	}
	return ce.AddCore(e, c)
}

func (c *Core) Write(e zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.Encoders[c.Selector.Encoding()].EncodeEntry(e, fields)
	if err != nil {
		return err
	}
	_, err = c.Output.Write(buf.Bytes())
	buf.Free()
	if err != nil {
		return err
	}

//panic和fatal之后进程可能立即退出
	if e.Level >= zapcore.PanicLevel {
		c.Sync()
	}
	if c.Observer != nil {
		c.Observer.WriteEntry(e, fields)
	}
	return nil
}

func (c *Core) Sync() error {
	return c.Output.Sync()
}
