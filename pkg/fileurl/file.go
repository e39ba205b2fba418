// Package fileurl 路径与 URL 拼接工具
package fileurl

import (
	"os"
	"path"
	"strings"
)

// IsExist 判断路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	return err == nil || !os.IsNotExist(err)
}

// CreatePath 创建目录（含父目录）
func CreatePath(dst string, perm os.FileMode) error {
	return os.MkdirAll(dst, perm)
}

// PathSuffixCheckAdd 非空路径确保以 suffix 结尾
func PathSuffixCheckAdd(p string, suffix string) string {
	if p == "" || strings.HasSuffix(p, suffix) {
		return p
	}
	return p + suffix
}

// ObjectKey 拼接自定义前缀与对象键，结果不以 / 开头
func ObjectKey(customPath, key string) string {
	k := PathSuffixCheckAdd(strings.Trim(customPath, "/"), "/") + strings.TrimLeft(key, "/")
	return strings.TrimLeft(k, "/")
}

// JoinURL 拼接基础地址与路径片段
func JoinURL(base string, elem ...string) string {
	base = strings.TrimRight(base, "/")
	p := path.Join(elem...)
	if p == "" || p == "." {
		return base
	}
	return base + "/" + strings.TrimLeft(p, "/")
}
