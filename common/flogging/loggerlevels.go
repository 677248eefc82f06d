
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
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

//LoggerLevels按记录器名称维护日志级别。
//
//日志规范由":"分隔的段组成，每段为<level>或
//<logger>[,<logger>...]=<level>。没有显式级别的记录器沿名称中的"."
//向上继承，名称以"."结尾的条目只匹配该记录器本身。
type LoggerLevels struct {
	mutex        sync.RWMutex
	defaultLevel zapcore.Level
	minLevel     zapcore.Level
	specs        map[string]zapcore.Level
	cache        map[string]zapcore.Level
}

var loggerNameRegexp = regexp.MustCompile(`^[[:alnum:]_#:-]+(\.[[:alnum:]_#:-]+)*$`)

func isValidLoggerName(name string) bool {
	return loggerNameRegexp.MatchString(name)
}

func parseSpec(spec string) (zapcore.Level, map[string]zapcore.Level, error) {
	badSegment := func(segment string) error {
		return errors.Errorf("invalid logging specification '%s': bad segment '%s'", spec, segment)
	}

	def := defaultLevel
	specs := map[string]zapcore.Level{}
	for _, segment := range strings.Split(spec, ":") {
		if segment == "" {
			continue
		}

		names, levelName, found := strings.Cut(segment, "=")
		if !found {
			lvl, err := nameToLevel(segment)
			if err != nil {
				return 0, nil, badSegment(segment)
			}
			def = lvl
			continue
		}

		if strings.Contains(levelName, "=") {
			return 0, nil, badSegment(segment)
		}
		if names == "" {
			return 0, nil, errors.Errorf("invalid logging specification '%s': no logger specified in segment '%s'", spec, segment)
		}
		lvl, err := nameToLevel(levelName)
		if err != nil {
			return 0, nil, badSegment(segment)
		}
		for _, name := range strings.Split(names, ",") {
			if !isValidLoggerName(strings.TrimSuffix(name, ".")) {
				return 0, nil, errors.Errorf("invalid logging specification '%s': bad logger name '%s'", spec, name)
			}
			specs[name] = lvl
		}
	}
	return def, specs, nil
}

//ActivateSpec解析并启用新的日志规范，规范无效时保留原有级别。
func (l *LoggerLevels) ActivateSpec(spec string) error {
	def, specs, err := parseSpec(spec)
	if err != nil {
		return err
	}

	lowest := def
	for _, lvl := range specs {
		if lvl < lowest {
			lowest = lvl
		}
	}

	l.mutex.Lock()
	l.defaultLevel = def
	l.minLevel = lowest
	l.specs = specs
	l.cache = map[string]zapcore.Level{}
	l.mutex.Unlock()
	return nil
}

//DefaultLevel返回未被规范点名的记录器所用的级别。
func (l *LoggerLevels) DefaultLevel() zapcore.Level {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.defaultLevel
}

//Enabled在任一记录器可能启用lvl时返回true，供Core在按名称判断前快速过滤。
func (l *LoggerLevels) Enabled(lvl zapcore.Level) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.minLevel.Enabled(lvl)
}

//Level返回记录器的有效级别。
func (l *LoggerLevels) Level(loggerName string) zapcore.Level {
	l.mutex.RLock()
	lvl, ok := l.cache[loggerName]
	l.mutex.RUnlock()
	if ok {
		return lvl
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()
	lvl = l.lookup(loggerName)
	if l.cache == nil {
		l.cache = map[string]zapcore.Level{}
	}
	l.cache[loggerName] = lvl
	return lvl
}

func (l *LoggerLevels) lookup(loggerName string) zapcore.Level {
	if lvl, ok := l.specs[loggerName+"."]; ok {
		return lvl
	}
	for name := loggerName; ; {
		if lvl, ok := l.specs[name]; ok {
			return lvl
		}
		idx := strings.LastIndex(name, ".")
		if idx <= 0 {
			return l.defaultLevel
		}
		name = name[:idx]
	}
}

//Spec返回规范化的日志规范，记录器条目按名称排序，默认级别在最后。
func (l *LoggerLevels) Spec() string {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	fields := make([]string, 0, len(l.specs)+1)
	for name, lvl := range l.specs {
		fields = append(fields, fmt.Sprintf("%s=%s", name, lvl))
	}
	sort.Strings(fields)
	fields = append(fields, l.defaultLevel.String())
	return strings.Join(fields, ":")
}
