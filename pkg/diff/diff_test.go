package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLines(t *testing.T) {
	lines := Lines("milk\neggs\nbread\n", "milk\nbutter\nbread\n")
	assert.Equal(t, []Line{
		{Equal, "milk"},
		{Delete, "eggs"},
		{Insert, "butter"},
		{Equal, "bread"},
	}, lines)
	assert.Equal(t, Stat{Inserted: 1, Deleted: 1}, Count(lines))
}

func TestUnified(t *testing.T) {
	assert.Equal(t, "  a\n+ b\n", Unified("a\n", "a\nb\n"))
	assert.Equal(t, "- x\n", Unified("x", ""))
	assert.Empty(t, Unified("", ""))
}
