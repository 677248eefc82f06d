
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

//viperutil包把viper配置严格解码到结构体：未知的键报错，
//并支持时长、字节大小、文件引用和PEM证书文件等取值形式
package viperutil

import (
	"encoding/json"
	"encoding/pem"
	"math"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var logger = flogging.MustGetLogger("viperutil")

//leafSettings按v.AllKeys()逐个取叶子的最终值再嵌套成map。
//AllKeys包含BindEnv绑定的键，配置文件中同名map缺少该叶子时也不会丢失
func leafSettings(v *viper.Viper) map[string]interface{} {
	result := make(map[string]interface{})
	for _, fqKey := range v.AllKeys() {
		val := v.Get(fqKey)
		if jm, ok := unmarshalJSON(val); ok {
			val = jm
		}
		logger.Debugf("Found real value for %s setting to %T %v", fqKey, val, val)

		path := strings.Split(fqKey, ".")
		node := result
		for _, p := range path[:len(path)-1] {
			child, ok := node[p].(map[string]interface{})
			if !ok {
				child = make(map[string]interface{})
				node[p] = child
			}
			node = child
		}
		last := path[len(path)-1]
		if _, isMap := node[last].(map[string]interface{}); isMap {
			continue
		}
		node[last] = val
	}
	return result
}

//环境变量只能给出字符串，JSON对象形式的字符串按map处理
func unmarshalJSON(val interface{}) (map[string]string, bool) {
	s, ok := val.(string)
	if !ok {
		return nil, false
	}
	mp := map[string]string{}
	if err := json.Unmarshal([]byte(s), &mp); err != nil {
		return nil, false
	}
	return mp, true
}

//customDecodeHook解析时长，并把"[a, b, c]"形式的字符串拆成切片
func customDecodeHook() mapstructure.DecodeHookFunc {
	durationHook := mapstructure.StringToTimeDurationHookFunc()
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		dur, err := mapstructure.DecodeHookExec(durationHook, reflect.ValueOf(data), reflect.New(t).Elem())
		if err == nil {
			if _, ok := dur.(time.Duration); ok {
				return dur, nil
			}
		}

		if f.Kind() != reflect.String {
			return data, nil
		}

		raw := data.(string)
		l := len(raw)
		if l > 1 && raw[0] == '[' && raw[l-1] == ']' {
			slice := strings.Split(raw[1:l-1], ",")
			for i, v := range slice {
				slice[i] = strings.TrimSpace(v)
			}
			return slice, nil
		}
		return data, nil
	}
}

var byteSizeRegexp = regexp.MustCompile(`^(?P<size>[0-9]+)\s*(?i)(?P<unit>(k|m|g))b?$`)

//byteSizeDecodeHook把"16 MB"之类的取值解析为uint32字节数
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(f reflect.Kind, t reflect.Kind, data interface{}) (interface{}, error) {
		if f != reflect.String || t != reflect.Uint32 {
			return data, nil
		}
		raw := data.(string)
		if raw == "" || !byteSizeRegexp.MatchString(raw) {
			return data, nil
		}
		size, err := strconv.ParseUint(byteSizeRegexp.ReplaceAllString(raw, "${size}"), 0, 64)
		if err != nil {
			return data, nil
		}
		switch strings.ToLower(byteSizeRegexp.ReplaceAllString(raw, "${unit}")) {
		case "g":
			size = size << 30
		case "m":
			size = size << 20
		case "k":
			size = size << 10
		}
		if size > math.MaxUint32 {
			return size, errors.Errorf("value '%s' overflows uint32", raw)
		}
		return size, nil
	}
}

func fileNameOf(data interface{}) (string, bool) {
	var v interface{}
	var ok bool
	switch d := data.(type) {
	case map[string]interface{}:
		if v, ok = d["File"]; !ok {
			v, ok = d["file"]
		}
	case map[string]string:
		if v, ok = d["File"]; !ok {
			v, ok = d["file"]
		}
	}
	if !ok {
		return "", false
	}
	name, _ := v.(string)
	return name, true
}

//stringFromFileDecodeHook把{File: path}形式的取值替换为文件内容
func stringFromFileDecodeHook() mapstructure.DecodeHookFunc {
	return func(f reflect.Kind, t reflect.Kind, data interface{}) (interface{}, error) {
		if t != reflect.String || f != reflect.Map {
			return data, nil
		}
		fileName, ok := fileNameOf(data)
		if !ok {
			return data, nil
		}
		if fileName == "" {
			return nil, errors.New("Value of File: was nil")
		}
		b, err := os.ReadFile(fileName)
		if err != nil {
			return data, err
		}
		return string(b), nil
	}
}

//pemBlocksFromFileDecodeHook把{File: path}形式的取值替换为文件中的证书PEM块
func pemBlocksFromFileDecodeHook() mapstructure.DecodeHookFunc {
	return func(f reflect.Kind, t reflect.Kind, data interface{}) (interface{}, error) {
		if t != reflect.Slice || f != reflect.Map {
			return data, nil
		}
		fileName, ok := fileNameOf(data)
		if !ok {
			return data, nil
		}
		if fileName == "" {
			return nil, errors.New("Value of File: was nil")
		}
		rest, err := os.ReadFile(fileName)
		if err != nil {
			return data, err
		}

		var result []string
		for len(rest) > 0 {
			var block *pem.Block
			block, rest = pem.Decode(rest)
			if block == nil {
				break
			}
			if block.Type != "CERTIFICATE" || len(block.Headers) != 0 {
				continue
			}
			result = append(result, string(pem.EncodeToMemory(block)))
		}
		return result, nil
	}
}

//EnhancedExactUnmarshal把v中的全部配置解码到output，output中没有对应字段的键报错
func EnhancedExactUnmarshal(v *viper.Viper, output interface{}) error {
	leafKeys := leafSettings(v)
	logger.Debugf("%+v", leafKeys)

	config := &mapstructure.DecoderConfig{
		ErrorUnused:      true,
		Result:           output,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			customDecodeHook(),
			byteSizeDecodeHook(),
			stringFromFileDecodeHook(),
			pemBlocksFromFileDecodeHook(),
		),
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return err
	}
	return decoder.Decode(leafKeys)
}

//Decode用于解码配置中的不透明字段
func Decode(input interface{}, output interface{}) error {
	return mapstructure.Decode(input, output)
}
