
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

//floggingtest包提供记录日志输出的测试记录器
package floggingtest

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	"github.com/onsi/gomega/gbytes"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//DefaultEncoderConfig省略时间和调用者，便于断言完整的日志行
func DefaultEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		NameKey:          "name",
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}
}

//Recorder保存测试记录器写出的日志行和消息
type Recorder struct {
	mutex    sync.RWMutex
	entries  []string
	messages []string
	buffer   *gbytes.Buffer
}

func newRecorder() *Recorder {
	r := &Recorder{}
	r.Reset()
	return r
}

func (r *Recorder) record(e zapcore.Entry, line []byte) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.buffer.Write(line)
	r.entries = append(r.entries, strings.TrimRight(string(line), "\n"))
	r.messages = append(r.messages, e.Message)
}

func (r *Recorder) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.buffer = gbytes.NewBuffer()
	r.entries = []string{}
	r.messages = []string{}
}

//Buffer返回全部日志行，可以配合gbytes.Say使用
func (r *Recorder) Buffer() *gbytes.Buffer {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.buffer
}

func (r *Recorder) Entries() []string  { return r.filter(&r.entries, nil) }
func (r *Recorder) Messages() []string { return r.filter(&r.messages, nil) }

func (r *Recorder) EntriesContaining(sub string) []string {
	return r.filter(&r.entries, func(s string) bool { return strings.Contains(s, sub) })
}

func (r *Recorder) EntriesMatching(regex string) []string {
	return r.filter(&r.entries, regexp.MustCompile(regex).MatchString)
}

func (r *Recorder) MessagesContaining(sub string) []string {
	return r.filter(&r.messages, func(s string) bool { return strings.Contains(s, sub) })
}

func (r *Recorder) MessagesMatching(regex string) []string {
	return r.filter(&r.messages, regexp.MustCompile(regex).MatchString)
}

func (r *Recorder) filter(lines *[]string, keep func(string) bool) []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	matches := []string{}
	for _, l := range *lines {
		if keep == nil || keep(l) {
			matches = append(matches, l)
		}
	}
	return matches
}

//RecordingCore把日志行同时写入Recorder和测试输出，fatal级别会panic
type RecordingCore struct {
	zapcore.LevelEnabler
	encoder  zapcore.Encoder
	recorder *Recorder
	writer   zapcore.WriteSyncer
}

func (r *RecordingCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	buf, err := r.encoder.EncodeEntry(e, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	r.writer.Write(buf.Bytes())
	r.recorder.record(e, buf.Bytes())
	return nil
}

func (r *RecordingCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if r.Enabled(e.Level) {
		ce = ce.AddCore(e, r)
	}
	if ce != nil && e.Level == zapcore.FatalLevel {
		panic(e.Message)
	}
	return ce
}

func (r *RecordingCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *r
	clone.encoder = r.encoder.Clone()
	for _, f := range fields {
		f.AddTo(clone.encoder)
	}
	return &clone
}

func (r *RecordingCore) Sync() error {
	return r.writer.Sync()
}

//TestingWriter把日志行转发给testing.TB.Logf
type TestingWriter struct{ testing.TB }

func (t *TestingWriter) Write(buf []byte) (int, error) {
	t.Logf("%s", bytes.TrimRight(buf, "\n"))
	return len(buf), nil
}

func (t *TestingWriter) Sync() error { return nil }

type Option func(r *RecordingCore, l *zap.Logger) *zap.Logger

func Named(loggerName string) Option {
	return func(r *RecordingCore, l *zap.Logger) *zap.Logger {
		return l.Named(loggerName)
	}
}

func AtLevel(level zapcore.Level) Option {
	return func(r *RecordingCore, l *zap.Logger) *zap.Logger {
		r.LevelEnabler = level
		return l
	}
}

//NewTestLogger返回默认启用debug级别的记录器及其Recorder
func NewTestLogger(tb testing.TB, options ...Option) (*flogging.FabricLogger, *Recorder) {
	recorder := newRecorder()
	core := &RecordingCore{
		LevelEnabler: zapcore.DebugLevel,
		encoder:      zapcore.NewConsoleEncoder(DefaultEncoderConfig()),
		recorder:     recorder,
		writer:       &TestingWriter{TB: tb},
	}

	zl := zap.New(core)
	for _, o := range options {
		zl = o(core, zl)
	}
	return flogging.NewFabricLogger(zl, zap.AddCaller()), recorder
}
