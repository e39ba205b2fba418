// Package search 笔记过滤与关键词高亮
//
// Matching is literal and case-insensitive. The term is quoted before it is
// compiled, so characters such as "." or "(" never act as pattern syntax.
package search

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dejay09121/Noteapp/internal/domain"
)

// Span 高亮片段
type Span struct {
	Text    string `json:"text"`
	Matched bool   `json:"matched"`
}

// Normalize 返回去除首尾空白后的搜索词
func Normalize(term string) string {
	return strings.TrimSpace(term)
}

// Matcher 编译后的搜索词，零值（空词）匹配所有笔记
type Matcher struct {
	term string
	re   *regexp.Regexp
}

// Compile 编译搜索词，非法 UTF-8 字节按 U+FFFD 处理
func Compile(term string) *Matcher {
	t := strings.ToValidUTF8(Normalize(term), string(utf8.RuneError))
	if t == "" {
		return &Matcher{}
	}
	return &Matcher{
		term: t,
		re:   regexp.MustCompile("(?i)" + regexp.QuoteMeta(t)),
	}
}

// Term 规范化后的搜索词
func (m *Matcher) Term() string {
	return m.term
}

// Empty 是否为空搜索词
func (m *Matcher) Empty() bool {
	return m.re == nil
}

// Match 标题或正文包含搜索词
func (m *Matcher) Match(n *domain.Note) bool {
	if m.re == nil {
		return true
	}
	return m.re.MatchString(n.Title) || m.re.MatchString(n.Content)
}

// Filter 保序过滤，空搜索词时原样返回输入序列的副本
func (m *Matcher) Filter(notes []*domain.Note) []*domain.Note {
	out := make([]*domain.Note, 0, len(notes))
	for _, n := range notes {
		if m.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// Highlight 按匹配位置切分文本，拼接全部片段可还原原文
func (m *Matcher) Highlight(text string) []Span {
	if m.re == nil || text == "" {
		return []Span{{Text: text}}
	}
	locs := m.re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []Span{{Text: text}}
	}
	spans := make([]Span, 0, len(locs)*2+1)
	pos := 0
	for _, loc := range locs {
		if loc[0] > pos {
			spans = append(spans, Span{Text: text[pos:loc[0]]})
		}
		spans = append(spans, Span{Text: text[loc[0]:loc[1]], Matched: true})
		pos = loc[1]
	}
	if pos < len(text) {
		spans = append(spans, Span{Text: text[pos:]})
	}
	return spans
}

// Apply 按搜索词过滤笔记
func Apply(term string, notes []*domain.Note) []*domain.Note {
	return Compile(term).Filter(notes)
}

// HighlightSpans 按搜索词切分文本
func HighlightSpans(text, term string) []Span {
	return Compile(term).Highlight(text)
}

// Join 拼接片段文本
func Join(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
