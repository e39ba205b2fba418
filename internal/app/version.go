package app

import (
	"strings"

	pkgapp "github.com/dejay09121/Noteapp/pkg/app"

	"golang.org/x/mod/semver"
)

// 版本信息变量，由构建时注入
var (
	Version   string = "0.3.0"
	GitTag    string = "2000.01.01.release"
	BuildTime string = "2000-01-01T00:00:00+0800"
)

// Name 应用名称
const Name = "Noteapp"

// VersionInfo 当前构建的版本信息
func VersionInfo() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{Version: Version, GitTag: GitTag, BuildTime: BuildTime}
}

// CompareVersion 比较两个版本号，允许省略 v 前缀
// 任一版本无法解析时返回 0
func CompareVersion(a, b string) int {
	a, b = canonical(a), canonical(b)
	if !semver.IsValid(a) || !semver.IsValid(b) {
		return 0
	}
	return semver.Compare(a, b)
}

// SameMajor 主版本一致时客户端与服务端协议兼容
func SameMajor(a, b string) bool {
	a, b = canonical(a), canonical(b)
	return semver.IsValid(a) && semver.IsValid(b) && semver.Major(a) == semver.Major(b)
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
