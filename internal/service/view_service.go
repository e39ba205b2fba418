package service

import (
	"sync"

	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/internal/search"
	"github.com/dejay09121/Noteapp/internal/selection"
	"github.com/dejay09121/Noteapp/internal/store"
)

// ViewListener 展示层事件
// Events arrive in state order. Implementations must not mutate the view
// or its sources.
type ViewListener interface {
	OnNotesChanged(notes []*domain.Note)
	OnSearchResultsChanged(results []*domain.Note, term string)
	OnSelectionChanged(selected []string, active bool)
}

// ViewListenerFuncs 以函数形式实现 ViewListener，未设置的回调忽略
type ViewListenerFuncs struct {
	NotesChanged         func(notes []*domain.Note)
	SearchResultsChanged func(results []*domain.Note, term string)
	SelectionChanged     func(selected []string, active bool)
}

func (f ViewListenerFuncs) OnNotesChanged(notes []*domain.Note) {
	if f.NotesChanged != nil {
		f.NotesChanged(notes)
	}
}

func (f ViewListenerFuncs) OnSearchResultsChanged(results []*domain.Note, term string) {
	if f.SearchResultsChanged != nil {
		f.SearchResultsChanged(results, term)
	}
}

func (f ViewListenerFuncs) OnSelectionChanged(selected []string, active bool) {
	if f.SelectionChanged != nil {
		f.SelectionChanged(selected, active)
	}
}

// NotesView 笔记列表视图状态：搜索词、过滤结果与删除模式
// Results are always re-derived from the store snapshot; the view never
// edits notes on its own.
type NotesView struct {
	store     *store.Store
	selection *selection.Selection
	listener  ViewListener

	// notifyMu 串行化重新过滤与回调，最后一次结果事件总是对应最新状态
	notifyMu sync.Mutex
	mu       sync.Mutex
	matcher  *search.Matcher
	results  []*domain.Note
}

// NewNotesView 绑定集合与选择状态，并接管两者的变更监听
func NewNotesView(st *store.Store, sel *selection.Selection, l ViewListener) *NotesView {
	if l == nil {
		l = ViewListenerFuncs{}
	}
	v := &NotesView{
		store:     st,
		selection: sel,
		listener:  l,
		matcher:   search.Compile(""),
		results:   st.Notes(),
	}
	st.OnChange(v.onNotes)
	sel.OnChange(l.OnSelectionChanged)
	return v
}

func (v *NotesView) onNotes(notes []*domain.Note) {
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()

	v.mu.Lock()
	v.results = v.matcher.Filter(notes)
	results, term := v.results, v.matcher.Term()
	v.mu.Unlock()

	v.listener.OnNotesChanged(notes)
	v.listener.OnSearchResultsChanged(results, term)
}

// SetSearchTerm 更新搜索词并重新过滤
func (v *NotesView) SetSearchTerm(term string) {
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()

	v.mu.Lock()
	notes := v.store.Notes()
	v.matcher = search.Compile(term)
	v.results = v.matcher.Filter(notes)
	results, t := v.results, v.matcher.Term()
	v.mu.Unlock()

	v.listener.OnSearchResultsChanged(results, t)
}

// ClearSearch 清空搜索词，结果恢复为完整集合
func (v *NotesView) ClearSearch() {
	v.SetSearchTerm("")
}

// Term 当前（已规范化的）搜索词
func (v *NotesView) Term() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.matcher.Term()
}

// Results 当前过滤结果
func (v *NotesView) Results() []*domain.Note {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*domain.Note, len(v.results))
	copy(out, v.results)
	return out
}

// KeywordNotFound 有搜索词但没有结果
func (v *NotesView) KeywordNotFound() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.matcher.Empty() && len(v.results) == 0
}

// Highlight 按当前搜索词切分文本
func (v *NotesView) Highlight(text string) []search.Span {
	v.mu.Lock()
	m := v.matcher
	v.mu.Unlock()
	return m.Highlight(text)
}

func (v *NotesView) ToggleSelect(id string) {
	v.selection.Toggle(id)
}

func (v *NotesView) EnterDeleteMode() {
	v.selection.SetActive(true)
}

func (v *NotesView) ExitDeleteMode() {
	v.selection.SetActive(false)
}

func (v *NotesView) DeleteMode() bool {
	return v.selection.Active()
}
