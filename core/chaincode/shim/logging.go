
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
	"strings"
	"sync"

	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

//垫片组记录器
var chaincodeLogger = flogging.MustGetLogger("shim")

//LoggingLevel是控制链码日志的级别
type LoggingLevel zapcore.Level

//NOTICE和CRITICAL沿用旧名称，分别等同于INFO和ERROR
const (
	LogDebug    = LoggingLevel(zapcore.DebugLevel)
	LogInfo     = LoggingLevel(zapcore.InfoLevel)
	LogNotice   = LoggingLevel(zapcore.InfoLevel)
	LogWarning  = LoggingLevel(zapcore.WarnLevel)
	LogError    = LoggingLevel(zapcore.ErrorLevel)
	LogCritical = LoggingLevel(zapcore.ErrorLevel)
)

func (l LoggingLevel) String() string {
	return strings.ToUpper(zapcore.Level(l).String())
}

var loggingSetup sync.Once

//SetupChaincodeLogging根据CORE_CHAINCODE_LOGGING_LEVEL、
//CORE_CHAINCODE_LOGGING_SHIM和CORE_CHAINCODE_LOGGING_FORMAT
//初始化全局日志系统，只生效一次
func SetupChaincodeLogging() {
	loggingSetup.Do(setupChaincodeLogging)
}

//configureViperEnv让viper读取CORE_前缀的环境变量，可以重复调用
func configureViperEnv() {
	viper.SetEnvPrefix("CORE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func setupChaincodeLogging() {
	configureViperEnv()

	flogging.Init(flogging.Config{
		Format:  viper.GetString("chaincode.logging.format"),
		LogSpec: loggingSpec(viper.GetString("chaincode.logging.level"), viper.GetString("chaincode.logging.shim")),
	})

	buildLevel := viper.GetString("chaincode.buildlevel")
	chaincodeLogger.Infof("Chaincode (build level: %s) starting up ...", buildLevel)
}

//loggingSpec把链码日志级别和shim日志级别组合成flogging的日志规范，
//无效的级别被忽略
func loggingSpec(chaincodeLevel, shimLevel string) string {
	defaultLevel := LogInfo.String()
	if chaincodeLevel == "" {
		chaincodeLevel = defaultLevel
	}
	if err := (&flogging.LoggerLevels{}).ActivateSpec(chaincodeLevel); err != nil {
		chaincodeLogger.Warningf("Error: '%s' for chaincode log level: %s; defaulting to %s", err, chaincodeLevel, defaultLevel)
		chaincodeLevel = defaultLevel
	}

	if shimLevel == "" {
		return chaincodeLevel
	}
	if !flogging.IsValidLevel(shimLevel) {
		chaincodeLogger.Warningf("Error: invalid log level: %s for shim log level", shimLevel)
		return chaincodeLevel
	}
	return "shim=" + shimLevel + ":" + chaincodeLevel
}

//SetLoggingLevel设置shim记录器的级别
func SetLoggingLevel(level LoggingLevel) {
	setLoggerLevel("shim", level)
}

//LogLevel把CRITICAL、ERROR、WARNING、NOTICE、INFO或DEBUG转换为
//LoggingLevel，出错时返回LogError
func LogLevel(levelString string) (LoggingLevel, error) {
	if !flogging.IsValidLevel(strings.ToUpper(levelString)) {
		return LogError, errors.Errorf("invalid log level: %s", levelString)
	}
	return LoggingLevel(flogging.NameToLevel(strings.ToUpper(levelString))), nil
}

//IsEnabledForLogLevel检查shim记录器是否启用了给定级别
func IsEnabledForLogLevel(logLevel string) bool {
	lvl, err := LogLevel(logLevel)
	if err != nil {
		return false
	}
	return flogging.Global.Level("shim").Enabled(zapcore.Level(lvl))
}

//setLoggerLevel在当前日志规范中替换单个记录器的级别
func setLoggerLevel(name string, level LoggingLevel) {
	levelName := strings.ToLower(zapcore.Level(level).String())
	fields := []string{name + "=" + levelName}
	for _, field := range strings.Split(flogging.Global.Spec(), ":") {
		if strings.HasPrefix(field, name+"=") {
			continue
		}
		fields = append(fields, field)
	}
	flogging.ActivateSpec(strings.Join(fields, ":"))
}

//------------链码记录器-----------

//ChaincodeLogger是供链码使用的记录器，其输出与shim日志格式一致，
//通过名称区分
type ChaincodeLogger struct {
	name   string
	logger *flogging.FabricLogger
}

//NewLogger创建具有指定名称的ChaincodeLogger，名称不能为"shim"
func NewLogger(name string) *ChaincodeLogger {
	return &ChaincodeLogger{name: name, logger: flogging.MustGetLogger(name)}
}

//SetLevel设置该记录器的级别
func (c *ChaincodeLogger) SetLevel(level LoggingLevel) {
	setLoggerLevel(c.name, level)
}

func (c *ChaincodeLogger) IsEnabledFor(level LoggingLevel) bool {
	return flogging.Global.Level(c.name).Enabled(zapcore.Level(level))
}

func (c *ChaincodeLogger) Debug(args ...interface{})    { c.logger.Debug(args...) }
func (c *ChaincodeLogger) Info(args ...interface{})     { c.logger.Info(args...) }
func (c *ChaincodeLogger) Notice(args ...interface{})   { c.logger.Notice(args...) }
func (c *ChaincodeLogger) Warning(args ...interface{})  { c.logger.Warning(args...) }
func (c *ChaincodeLogger) Error(args ...interface{})    { c.logger.Error(args...) }
func (c *ChaincodeLogger) Critical(args ...interface{}) { c.logger.Critical(args...) }

func (c *ChaincodeLogger) Debugf(format string, args ...interface{})    { c.logger.Debugf(format, args...) }
func (c *ChaincodeLogger) Infof(format string, args ...interface{})     { c.logger.Infof(format, args...) }
func (c *ChaincodeLogger) Noticef(format string, args ...interface{})   { c.logger.Noticef(format, args...) }
func (c *ChaincodeLogger) Warningf(format string, args ...interface{})  { c.logger.Warningf(format, args...) }
func (c *ChaincodeLogger) Errorf(format string, args ...interface{})    { c.logger.Errorf(format, args...) }
func (c *ChaincodeLogger) Criticalf(format string, args ...interface{}) { c.logger.Criticalf(format, args...) }
