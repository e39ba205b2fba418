// Package store 保存当前用户笔记集合的本地副本
package store

import (
	"sort"
	"sync"

	"github.com/dejay09121/Noteapp/internal/domain"
)

// Listener 集合被整体替换后回调，参数为新快照
type Listener func(notes []*domain.Note)

// Store 笔记集合
// ReplaceAll is the only mutation. Ids are unique and notes are ordered by
// CreatedAt descending after every call.
type Store struct {
	notifyMu sync.Mutex
	mu       sync.RWMutex
	notes    []*domain.Note
	listener Listener
}

// New 创建空集合
func New() *Store {
	return &Store{}
}

// OnChange 注册变更监听，重复注册会覆盖
func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

// ReplaceAll 用给定序列整体替换集合
// Duplicate ids keep the last occurrence. The sort is stable, so notes with
// equal CreatedAt keep their relative input order.
func (s *Store) ReplaceAll(notes []*domain.Note) {
	next := Dedupe(notes)
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].CreatedAt.After(next[j].CreatedAt)
	})

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.notes = next
	l := s.listener
	s.mu.Unlock()

	if l != nil {
		l(clone(next))
	}
}

// Notes 返回当前快照的副本
func (s *Store) Notes() []*domain.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.notes)
}

// Len 集合大小
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Dedupe 按 ID 去重，保留最后一次出现的记录，位置取最后一次出现处
func Dedupe(notes []*domain.Note) []*domain.Note {
	last := make(map[string]int, len(notes))
	for i, n := range notes {
		if n == nil {
			continue
		}
		last[n.ID] = i
	}
	out := make([]*domain.Note, 0, len(last))
	for i, n := range notes {
		if n == nil || last[n.ID] != i {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out
}

func clone(notes []*domain.Note) []*domain.Note {
	out := make([]*domain.Note, len(notes))
	for i, n := range notes {
		cp := *n
		out[i] = &cp
	}
	return out
}
