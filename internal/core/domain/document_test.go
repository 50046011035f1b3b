package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"two words", 2},
		{"  spaced   out   words  ", 3},
		{"line\nbreaks\tand tabs", 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CountWords(tt.text), "text %q", tt.text)
	}
}

func TestPathIsPrefix(t *testing.T) {
	assert.True(t, PathIsPrefix(nil, []string{"A"}))
	assert.True(t, PathIsPrefix([]string{"A"}, []string{"A"}))
	assert.True(t, PathIsPrefix([]string{"A"}, []string{"A", "B"}))
	assert.False(t, PathIsPrefix([]string{"A", "B"}, []string{"A"}))
	assert.False(t, PathIsPrefix([]string{"A"}, []string{"B", "A"}))
	assert.False(t, PathIsPrefix([]string{"A", "C"}, []string{"A", "B", "C"}))
}

func TestCommonPathPrefix(t *testing.T) {
	assert.Equal(t, []string{"A"}, CommonPathPrefix([]string{"A", "B"}, []string{"A", "C"}))
	assert.Equal(t, []string{"A", "B"}, CommonPathPrefix([]string{"A", "B"}, []string{"A", "B", "C"}))
	assert.Empty(t, CommonPathPrefix([]string{"A"}, []string{"B"}))
	assert.Empty(t, CommonPathPrefix(nil, []string{"A"}))
}

func TestChunk_Title(t *testing.T) {
	withPath := Chunk{HeadingPath: []string{"Services", "Physiotherapy"}}
	assert.Equal(t, "Services", withPath.Title())

	noPath := Chunk{SourceID: "https://example.com/page"}
	assert.Empty(t, noPath.Title())
}
