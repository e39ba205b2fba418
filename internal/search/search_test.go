package search

import (
	"testing"
	"time"

	"github.com/dejay09121/Noteapp/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(notes []*domain.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}

func TestApply_SearchThenClear(t *testing.T) {
	notes := []*domain.Note{
		{ID: "1", Title: "Grocery", CreatedAt: time.Unix(2, 0)},
		{ID: "2", Title: "Work", CreatedAt: time.Unix(1, 0)},
	}

	assert.Equal(t, []string{"Grocery"}, titles(Apply("grocery", notes)))
	assert.Equal(t, []string{"Grocery", "Work"}, titles(Apply("", notes)))
	assert.Equal(t, []string{"Grocery", "Work"}, titles(Apply("   ", notes)))
}

func TestApply_MatchesTitleOrContent(t *testing.T) {
	notes := []*domain.Note{
		{ID: "1", Title: "Shopping", Content: "milk\nEGGS"},
		{ID: "2", Title: "eggs benedict", Content: ""},
		{ID: "3", Title: "Other", Content: "nothing"},
	}

	got := Apply("  eggs ", notes)
	assert.Equal(t, []string{"Shopping", "eggs benedict"}, titles(got))
}

func TestApply_TermIsLiteral(t *testing.T) {
	notes := []*domain.Note{
		{ID: "1", Title: "a.b"},
		{ID: "2", Title: "axb"},
		{ID: "3", Content: "(x+y)*"},
	}

	assert.Equal(t, []string{"a.b"}, titles(Apply("a.b", notes)))
	assert.Len(t, Apply("(x+y)*", notes), 1)
	assert.Empty(t, Apply("[", notes))
}

func TestApply_InvalidUTF8Term(t *testing.T) {
	notes := []*domain.Note{
		{ID: "1", Title: "plain"},
		{ID: "2", Title: "raw \xff byte"},
	}

	assert.NotPanics(t, func() { Apply("\xff", notes) })
	assert.Equal(t, []string{"raw \xff byte"}, titles(Apply("\xff", notes)))
	assert.Empty(t, Apply("pl\xc3", notes))

	text := "a\xffb"
	assert.Equal(t, text, Join(HighlightSpans(text, "\xff")))
}

func TestHighlightSpans(t *testing.T) {
	tests := []struct {
		name string
		text string
		term string
		want []Span
	}{
		{"empty term", "Hello", "", []Span{{Text: "Hello"}}},
		{"blank term", "Hello", "  ", []Span{{Text: "Hello"}}},
		{"no match", "Hello", "xyz", []Span{{Text: "Hello"}}},
		{"keeps casing", "Buy Milk and milk", "MILK", []Span{
			{Text: "Buy "}, {Text: "Milk", Matched: true}, {Text: " and "}, {Text: "milk", Matched: true},
		}},
		{"match at both ends", "abXab", "ab", []Span{
			{Text: "ab", Matched: true}, {Text: "X"}, {Text: "ab", Matched: true},
		}},
		{"adjacent matches", "aaaa", "aa", []Span{
			{Text: "aa", Matched: true}, {Text: "aa", Matched: true},
		}},
		{"regex special literal", "a.b axb", "a.b", []Span{
			{Text: "a.b", Matched: true}, {Text: " axb"},
		}},
		{"empty text", "", "a", []Span{{Text: ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HighlightSpans(tt.text, tt.term)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, Join(got))
		})
	}
}

func TestMatcher_Term(t *testing.T) {
	m := Compile("  hi ")
	require.False(t, m.Empty())
	assert.Equal(t, "hi", m.Term())
	assert.True(t, Compile("\t").Empty())
}

func TestProperty_HighlightRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	special := gen.OneConstOf("", ".", "a.b", "(", ")", "*", "+", "?", "[", "]", "^", "$", "|", "\\", "{1}", " ", "\xff", "a\xc3")
	rawBytes := gen.SliceOf(gen.UInt8()).Map(func(b []uint8) string { return string(b) })

	properties.Property("concatenated spans reconstruct the text", prop.ForAll(
		func(text, term string) bool {
			return Join(HighlightSpans(text, term)) == text
		},
		gen.OneGenOf(gen.AnyString(), rawBytes),
		gen.OneGenOf(gen.AlphaString(), special, gen.AnyString(), rawBytes),
	))

	properties.Property("substring terms taken from the text always match", prop.ForAll(
		func(text string, i, j int) bool {
			if text == "" {
				return true
			}
			a, b := i%len(text), j%len(text)
			if a > b {
				a, b = b, a
			}
			term := text[a : b+1]
			if Normalize(term) == "" {
				return true
			}
			for _, s := range HighlightSpans(text, term) {
				if s.Matched {
					return true
				}
			}
			return false
		},
		gen.AlphaString(),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

func TestProperty_ApplyIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("apply(term, apply(term, notes)) == apply(term, notes)", prop.ForAll(
		func(ts []string, term string) bool {
			notes := make([]*domain.Note, len(ts))
			for i, s := range ts {
				notes[i] = &domain.Note{ID: s + string(rune('a'+i%26)), Title: s, Content: s + " body"}
			}
			once := Apply(term, notes)
			twice := Apply(term, once)
			if len(once) != len(twice) {
				return false
			}
			for i := range once {
				if once[i] != twice[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.OneGenOf(gen.AlphaString(), gen.OneConstOf("", "a.b", "  A ")),
	))

	properties.Property("empty term keeps input order", prop.ForAll(
		func(ts []string) bool {
			notes := make([]*domain.Note, len(ts))
			for i, s := range ts {
				notes[i] = &domain.Note{Title: s}
			}
			out := Apply("", notes)
			if len(out) != len(notes) {
				return false
			}
			for i := range out {
				if out[i] != notes[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AnyString()),
	))

	properties.TestingRun(t)
}
