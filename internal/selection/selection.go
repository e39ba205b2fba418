// Package selection 批量删除的多选状态
package selection

import (
	"sort"
	"sync"
)

// Listener 选择状态变化回调
// Calls are serialised in mutation order. A listener may read the selection
// but must not mutate it.
type Listener func(selected []string, active bool)

// Selection 选中的笔记 ID 集合与删除模式开关
// Entering delete mode keeps the current selection; leaving it clears.
type Selection struct {
	// notifyMu 串行化变更与回调，保证事件顺序与状态顺序一致
	notifyMu sync.Mutex
	mu       sync.Mutex
	ids      map[string]struct{}
	active   bool
	listener Listener
}

// New 返回空选择，删除模式关闭
func New() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// OnChange 注册变更监听
func (s *Selection) OnChange(l Listener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

// Toggle 切换 id 的选中状态，不校验 id 是否存在于集合中
func (s *Selection) Toggle(id string) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
	s.notifyLocked()
}

// Clear 清空选择并退出删除模式
func (s *Selection) Clear() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	s.ids = make(map[string]struct{})
	s.active = false
	s.notifyLocked()
}

// SetActive 进入或退出删除模式
func (s *Selection) SetActive(active bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	if !active {
		s.ids = make(map[string]struct{})
	}
	s.active = active
	s.notifyLocked()
}

// Selected 返回排序后的选中 ID
func (s *Selection) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked()
}

// IsSelected 报告 id 是否已选中
func (s *Selection) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Active 是否处于删除模式
func (s *Selection) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Len 选中数量
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

func (s *Selection) selectedLocked() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// notifyLocked 释放 mu 后回调监听器，调用方持有 notifyMu
func (s *Selection) notifyLocked() {
	l := s.listener
	selected := s.selectedLocked()
	active := s.active
	s.mu.Unlock()
	if l != nil {
		l(selected, active)
	}
}
