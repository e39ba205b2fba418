package service

import (
	"sync"
	"testing"

	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/internal/search"
	"github.com/dejay09121/Noteapp/internal/selection"
	"github.com/dejay09121/Noteapp/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu        sync.Mutex
	notes     [][]string
	results   [][]string
	terms     []string
	selection [][]string
	active    []bool
}

func (r *recorder) listener() ViewListener {
	return ViewListenerFuncs{
		NotesChanged: func(notes []*domain.Note) {
			r.mu.Lock()
			r.notes = append(r.notes, noteIDs(notes))
			r.mu.Unlock()
		},
		SearchResultsChanged: func(results []*domain.Note, term string) {
			r.mu.Lock()
			r.results = append(r.results, noteIDs(results))
			r.terms = append(r.terms, term)
			r.mu.Unlock()
		},
		SelectionChanged: func(selected []string, active bool) {
			r.mu.Lock()
			r.selection = append(r.selection, selected)
			r.active = append(r.active, active)
			r.mu.Unlock()
		},
	}
}

func newView() (*store.Store, *selection.Selection, *NotesView, *recorder) {
	st, sel, rec := store.New(), selection.New(), &recorder{}
	return st, sel, NewNotesView(st, sel, rec.listener()), rec
}

func TestNotesView_SearchThenClear(t *testing.T) {
	st, _, v, rec := newView()
	st.ReplaceAll([]*domain.Note{
		mkNote("1", 1, "Grocery list"),
		mkNote("2", 2, "Work"),
	})

	v.SetSearchTerm("  groc ")
	assert.Equal(t, "groc", v.Term())
	assert.Equal(t, []string{"1"}, noteIDs(v.Results()))
	assert.False(t, v.KeywordNotFound())

	v.ClearSearch()
	assert.Equal(t, []string{"2", "1"}, noteIDs(v.Results()))

	require.Len(t, rec.terms, 3)
	assert.Equal(t, []string{"", "groc", ""}, rec.terms)
	assert.Equal(t, [][]string{{"2", "1"}}, rec.notes)
}

func TestNotesView_StoreChangeReappliesTerm(t *testing.T) {
	st, _, v, rec := newView()
	v.SetSearchTerm("milk")
	assert.True(t, v.KeywordNotFound())

	st.ReplaceAll([]*domain.Note{mkNote("1", 1, "Buy milk"), mkNote("2", 2, "Call mom")})

	assert.Equal(t, []string{"1"}, noteIDs(v.Results()))
	assert.False(t, v.KeywordNotFound())
	assert.Equal(t, []string{"1"}, rec.results[len(rec.results)-1])
}

func TestNotesView_Highlight(t *testing.T) {
	_, _, v, _ := newView()
	v.SetSearchTerm("an")

	spans := v.Highlight("Banana")
	assert.Equal(t, "Banana", search.Join(spans))
	assert.Equal(t, []search.Span{
		{Text: "B"}, {Text: "an", Matched: true}, {Text: "an", Matched: true}, {Text: "a"},
	}, spans)
}

func TestNotesView_DeleteMode(t *testing.T) {
	_, sel, v, rec := newView()

	v.ToggleSelect("1")
	v.EnterDeleteMode()
	assert.True(t, v.DeleteMode())
	assert.Equal(t, []string{"1"}, sel.Selected())

	v.ToggleSelect("3")
	assert.Equal(t, []string{"1", "3"}, sel.Selected())

	v.ExitDeleteMode()
	assert.False(t, v.DeleteMode())
	assert.Empty(t, sel.Selected())

	require.NotEmpty(t, rec.active)
	assert.False(t, rec.active[len(rec.active)-1])
	assert.Empty(t, rec.selection[len(rec.selection)-1])
}

func TestNotesView_ConcurrentUpdatesEndOnLatestState(t *testing.T) {
	for round := 0; round < 30; round++ {
		st, _, v, rec := newView()
		notes := []*domain.Note{
			mkNote("1", 1, "alpha"),
			mkNote("2", 2, "beta"),
			mkNote("3", 3, "gamma"),
		}

		var wg sync.WaitGroup
		for i := 0; i < 6; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				st.ReplaceAll(notes[:1+i%3])
			}(i)
			go func(i int) {
				defer wg.Done()
				v.SetSearchTerm([]string{"", "a", "b"}[i%3])
			}(i)
		}
		wg.Wait()

		rec.mu.Lock()
		require.NotEmpty(t, rec.results)
		assert.Equal(t, noteIDs(v.Results()), rec.results[len(rec.results)-1], "round %d", round)
		assert.Equal(t, v.Term(), rec.terms[len(rec.terms)-1], "round %d", round)
		require.NotEmpty(t, rec.notes)
		assert.Equal(t, noteIDs(st.Notes()), rec.notes[len(rec.notes)-1], "round %d", round)
		rec.mu.Unlock()
	}
}
