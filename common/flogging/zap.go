
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
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapgrpc"
)

//NewZapLogger在core上创建带调用者信息的zap记录器，error及以上级别附带堆栈
func NewZapLogger(core zapcore.Core, options ...zap.Option) *zap.Logger {
	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	return zap.New(core, append(opts, options...)...)
}

//NewGRPCLogger把grpc内部日志转发给l
func NewGRPCLogger(l *zap.Logger) *zapgrpc.Logger {
	return zapgrpc.NewLogger(l.WithOptions(zap.AddCaller(), zap.AddCallerSkip(3)))
}

//NewFabricLogger包装zap记录器
func NewFabricLogger(l *zap.Logger, options ...zap.Option) *FabricLogger {
	options = append(options, zap.AddCallerSkip(1))
	return &FabricLogger{s: l.WithOptions(options...).Sugar()}
}

//FabricLogger是zap.SugaredLogger的适配器。
//不带f或w后缀的方法用空格连接参数，Warning、Notice和Critical
//是Warn、Info和Error的别名。
type FabricLogger struct{ s *zap.SugaredLogger }

func (f *FabricLogger) Debug(args ...interface{})                   { f.s.Debug(joinArgs(args)) }
func (f *FabricLogger) Debugf(template string, args ...interface{}) { f.s.Debugf(template, args...) }
func (f *FabricLogger) Debugw(msg string, kvPairs ...interface{})   { f.s.Debugw(msg, kvPairs...) }
func (f *FabricLogger) Info(args ...interface{})                    { f.s.Info(joinArgs(args)) }
func (f *FabricLogger) Infof(template string, args ...interface{})  { f.s.Infof(template, args...) }
func (f *FabricLogger) Infow(msg string, kvPairs ...interface{})    { f.s.Infow(msg, kvPairs...) }
func (f *FabricLogger) Warn(args ...interface{})                    { f.s.Warn(joinArgs(args)) }
func (f *FabricLogger) Warnf(template string, args ...interface{})  { f.s.Warnf(template, args...) }
func (f *FabricLogger) Warnw(msg string, kvPairs ...interface{})    { f.s.Warnw(msg, kvPairs...) }
func (f *FabricLogger) Error(args ...interface{})                   { f.s.Error(joinArgs(args)) }
func (f *FabricLogger) Errorf(template string, args ...interface{}) { f.s.Errorf(template, args...) }
func (f *FabricLogger) Errorw(msg string, kvPairs ...interface{})   { f.s.Errorw(msg, kvPairs...) }
func (f *FabricLogger) Panic(args ...interface{})                   { f.s.Panic(joinArgs(args)) }
func (f *FabricLogger) Panicf(template string, args ...interface{}) { f.s.Panicf(template, args...) }
func (f *FabricLogger) Fatal(args ...interface{})                   { f.s.Fatal(joinArgs(args)) }
func (f *FabricLogger) Fatalf(template string, args ...interface{}) { f.s.Fatalf(template, args...) }

func (f *FabricLogger) Warning(args ...interface{})                    { f.s.Warn(joinArgs(args)) }
func (f *FabricLogger) Warningf(template string, args ...interface{})  { f.s.Warnf(template, args...) }
func (f *FabricLogger) Notice(args ...interface{})                     { f.s.Info(joinArgs(args)) }
func (f *FabricLogger) Noticef(template string, args ...interface{})   { f.s.Infof(template, args...) }
func (f *FabricLogger) Critical(args ...interface{})                   { f.s.Error(joinArgs(args)) }
func (f *FabricLogger) Criticalf(template string, args ...interface{}) { f.s.Errorf(template, args...) }

func (f *FabricLogger) Named(name string) *FabricLogger { return &FabricLogger{s: f.s.Named(name)} }
func (f *FabricLogger) With(args ...interface{}) *FabricLogger {
	return &FabricLogger{s: f.s.With(args...)}
}
func (f *FabricLogger) Sync() error      { return f.s.Sync() }
func (f *FabricLogger) Zap() *zap.Logger { return f.s.Desugar() }

func joinArgs(args []interface{}) string { return strings.TrimSuffix(fmt.Sprintln(args...), "\n") }
