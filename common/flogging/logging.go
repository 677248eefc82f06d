
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
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//SpecEnvVar是未显式提供logspec时读取的环境变量。
const SpecEnvVar = "CORE_CHAINCODE_LOGGING_SPEC"

//config用于提供日志记录实例的依赖项。
type Config struct {
//格式为"json"时日志记录编码为json，其他取值
//（包括空字符串）使用人类可读的控制台编码。
	Format string

//logspec确定为日志系统启用的日志级别，
//格式见ActivateSpec。为空时读取SpecEnvVar，
//仍为空则使用info级别。
	LogSpec string

//Writer是编码后日志记录的接收器，默认为os.Stderr。
	Writer io.Writer
}

//日志记录维护与结构化日志系统关联的状态。
type Logging struct {
	*LoggerLevels

	mutex         sync.RWMutex
	encoding      Encoding
	encoderConfig zapcore.EncoderConfig
	writer        zapcore.WriteSyncer
	observer      Observer
}

//新建创建一个新的日志记录系统，并应用提供的配置。
func New(c Config) (*Logging, error) {
	s := &Logging{
		LoggerLevels: &LoggerLevels{
			defaultLevel: defaultLevel,
		},
		encoderConfig: newEncoderConfig(),
	}

	err := s.Apply(c)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newEncoderConfig() zapcore.EncoderConfig {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.NameKey = "name"
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = levelEncoder
	return encoderConfig
}

//levelEncoder把payload级别显示为PAYLOAD，其余沿用大写名称。
func levelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == PayloadLevel {
		enc.AppendString("PAYLOAD")
		return
	}
	zapcore.CapitalLevelEncoder(l, enc)
}

//应用将提供的配置应用于日志记录系统。
func (s *Logging) Apply(c Config) error {
	s.SetFormat(c.Format)

	if c.LogSpec == "" {
		c.LogSpec = os.Getenv(SpecEnvVar)
	}
	if c.LogSpec == "" {
		c.LogSpec = defaultLevel.String()
	}

	err := s.LoggerLevels.ActivateSpec(c.LogSpec)
	if err != nil {
		return err
	}

	if c.Writer == nil {
		c.Writer = os.Stderr
	}
	s.SetWriter(c.Writer)

	return nil
}

//setformat更新日志记录的编码方式。
func (s *Logging) SetFormat(format string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if strings.EqualFold(format, "json") {
		s.encoding = JSON
		return
	}
	s.encoding = CONSOLE
}

//setwriter控制写入哪些编写器格式的日志记录。
//除了*os.file之外，编写器需要对并发安全。
func (s *Logging) SetWriter(w io.Writer) {
	var sw zapcore.WriteSyncer
	switch t := w.(type) {
	case *os.File:
		sw = zapcore.Lock(t)
	case zapcore.WriteSyncer:
		sw = t
	default:
		sw = zapcore.AddSync(w)
	}

	s.mutex.Lock()
	s.writer = sw
	s.mutex.Unlock()
}

//setobserver用于提供日志观察器，只支持一个观察者。
func (s *Logging) SetObserver(observer Observer) {
	s.mutex.Lock()
	s.observer = observer
	s.mutex.Unlock()
}

//写满足io.Writer合同，核心在编码日志记录后调用它。
func (s *Logging) Write(b []byte) (int, error) {
	s.mutex.RLock()
	w := s.writer
	s.mutex.RUnlock()

	return w.Write(b)
}

//同步满足zapcore.WriteSyncer接口。
func (s *Logging) Sync() error {
	s.mutex.RLock()
	w := s.writer
	s.mutex.RUnlock()

	return w.Sync()
}

//编码满足EncodingSelector接口。
func (s *Logging) Encoding() Encoding {
	s.mutex.RLock()
	e := s.encoding
	s.mutex.RUnlock()
	return e
}

//zap logger用指定的名称实例化新的zap.logger。名字
//用于确定启用了哪些日志级别。
func (s *Logging) ZapLogger(name string) *zap.Logger {
	if !isValidLoggerName(name) {
		panic(fmt.Sprintf("invalid logger name: %s", name))
	}

	s.mutex.RLock()
	core := &Core{
		Levels: s.LoggerLevels,
		Encoders: map[Encoding]zapcore.Encoder{
			JSON:    zapcore.NewJSONEncoder(s.encoderConfig),
			CONSOLE: zapcore.NewConsoleEncoder(s.encoderConfig),
		},
		Selector: s,
		Output:   s,
		Observer: s,
	}
	s.mutex.RUnlock()

	return NewZapLogger(core).Named(name)
}

func (s *Logging) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) {
	s.mutex.RLock()
	observer := s.observer
	s.mutex.RUnlock()

	if observer != nil {
		observer.Check(e, ce)
	}
}

func (s *Logging) WriteEntry(e zapcore.Entry, fields []zapcore.Field) {
	s.mutex.RLock()
	observer := s.observer
	s.mutex.RUnlock()

	if observer != nil {
		observer.WriteEntry(e, fields)
	}
}

//Logger用指定的名称实例化新的FabricLogger。
func (s *Logging) Logger(name string) *FabricLogger {
	zl := s.ZapLogger(name)
	return NewFabricLogger(zl)
}
