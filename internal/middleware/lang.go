package middleware

import (
	"github.com/dejay09121/Noteapp/pkg/code"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// LangKey gin.Context 中保存协商后语言的键
const LangKey = "lang"

var langMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.SimplifiedChinese,
})

// Lang 语言协商：lang 查询参数 > lang 请求头 > Accept-Language
func Lang() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := NegotiateLang(c.Query("lang"), c.GetHeader("lang"), c.GetHeader("Accept-Language"))
		c.Set(LangKey, lang)
		_ = code.SetGlobalDefaultLang(lang)
		c.Next()
	}
}

// NegotiateLang 返回 code 包使用的语言名：en 或 zh_cn
func NegotiateLang(candidates ...string) string {
	tag, _ := language.MatchStrings(langMatcher, candidates...)
	if base, _ := tag.Base(); base.String() == "zh" {
		return "zh_cn"
	}
	return code.FALLBACK_LNG
}
