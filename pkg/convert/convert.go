// Package convert 结构体复制与 JSON 编解码工具
package convert

import (
	"github.com/bytedance/sonic"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// StructAssign 把 src 与 dst 同名字段的值复制到 dst
func StructAssign(src any, dst any) error {
	if err := copier.Copy(dst, src); err != nil {
		return errors.Wrap(err, "copy struct failed")
	}
	return nil
}

// StructToMap 结构体转 map，字段名取 json 标签
func StructToMap(param any) (map[string]any, error) {
	b, err := sonic.Marshal(param)
	if err != nil {
		return nil, errors.Wrap(err, "marshal struct failed")
	}
	data := make(map[string]any)
	if err := sonic.Unmarshal(b, &data); err != nil {
		return nil, errors.Wrap(err, "unmarshal struct failed")
	}
	return data, nil
}

// ToJSON 编码为 JSON 字符串
func ToJSON(v any) (string, error) {
	return sonic.MarshalString(v)
}

// ToIndentJSON 编码为带缩进的 JSON
func ToIndentJSON(v any) ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(v, "", "  ")
}

// FromJSON 解码 JSON 字符串
func FromJSON(s string, v any) error {
	return sonic.UnmarshalString(s, v)
}
