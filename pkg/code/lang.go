package code

import (
	"errors"
	"reflect"
	"sync/atomic"
)

// lang 类型，用来存储英文和中文文本
type lang struct {
	en    string
	zh_cn string
}

const FALLBACK_LNG = "en"

var lng atomic.Value

// GetMessage 根据当前全局语言返回消息，缺失时回退到英文
func (l lang) GetMessage() string {
	val := reflect.ValueOf(l)
	if field := val.FieldByName(GetGlobalDefaultLang()); field.IsValid() && field.String() != "" {
		return field.String()
	}
	return l.en
}

// GetSupportedLanguages 返回 lang 支持的语言字段名
func GetSupportedLanguages() []string {
	typ := reflect.TypeOf(lang{})
	languages := make([]string, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		languages = append(languages, typ.Field(i).Name)
	}
	return languages
}

// SetGlobalDefaultLang 设置全局语言，不支持时回退为英文并返回错误
func SetGlobalDefaultLang(language string) error {
	for _, l := range GetSupportedLanguages() {
		if language == l {
			lng.Store(language)
			return nil
		}
	}
	lng.Store(FALLBACK_LNG)
	return errors.New("unsupported language type, set defaulting to " + FALLBACK_LNG)
}

// GetGlobalDefaultLang 获取全局语言
func GetGlobalDefaultLang() string {
	if l, ok := lng.Load().(string); ok && l != "" {
		return l
	}
	return FALLBACK_LNG
}
