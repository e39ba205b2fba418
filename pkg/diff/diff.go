// Package diff 笔记内容的行级差异
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op 行变更类型
type Op int8

const (
	Equal Op = iota
	Insert
	Delete
)

// Line 差异中的一行
type Line struct {
	Op   Op
	Text string
}

// Stat 插入与删除的行数
type Stat struct {
	Inserted int
	Deleted  int
}

// Lines 按行比较 before 与 after
func Lines(before, after string) []Line {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []Line
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = Insert
		case diffmatchpatch.DiffDelete:
			op = Delete
		}
		for _, text := range splitLines(d.Text) {
			out = append(out, Line{Op: op, Text: text})
		}
	}
	return out
}

// Count 统计变更行数
func Count(lines []Line) Stat {
	var s Stat
	for _, l := range lines {
		switch l.Op {
		case Insert:
			s.Inserted++
		case Delete:
			s.Deleted++
		}
	}
	return s
}

// Unified 以 "+ " / "- " / "  " 前缀输出全部行
func Unified(before, after string) string {
	var sb strings.Builder
	for _, l := range Lines(before, after) {
		switch l.Op {
		case Insert:
			sb.WriteString("+ ")
		case Delete:
			sb.WriteString("- ")
		default:
			sb.WriteString("  ")
		}
		sb.WriteString(l.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// splitLines 按换行切分，丢弃末尾换行产生的空行
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
