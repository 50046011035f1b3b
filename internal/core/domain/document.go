package domain

import "strings"

// BlockKind is the structural role of a block within an extracted document.
type BlockKind int

const (
	// BlockHeading is a section heading with a hierarchy level.
	BlockHeading BlockKind = iota

	// BlockParagraph is running text.
	BlockParagraph

	// BlockTable is a cell matrix; the first row is the header row.
	BlockTable
)

// Block is one structural unit produced by an extractor.
type Block struct {
	// Kind is the structural role.
	Kind BlockKind

	// Text holds the content for heading and paragraph blocks.
	Text string

	// Cells holds the row-major cell matrix for table blocks.
	// Cells[0] is the header row.
	Cells [][]string

	// Page is the 1-based page number, 0 when the format has no pages.
	Page int

	// Level is the heading depth (1 for h1). Zero for non-headings.
	Level int
}

// RawDocument is the output of extraction for one source: an ordered list
// of structural blocks plus size accounting. It is owned by the pipeline
// run that produced it and discarded after normalisation.
type RawDocument struct {
	// SourceID is the normalised identifier of the originating source.
	SourceID string

	// Title is the document title when the format carries one.
	Title string

	// Blocks is the ordered structural content.
	Blocks []Block

	// WordCount is the total words across all blocks.
	WordCount int

	// ByteSize is the size of the fetched payload.
	ByteSize int
}

// AnnotatedBlock is a single unit of normalised text tagged with its
// hierarchical heading context. Text is never empty; table-derived blocks
// are flat declarative statements.
type AnnotatedBlock struct {
	// Text is the normalised content.
	Text string

	// HeadingPath is the ordered ancestor headings, outermost first.
	HeadingPath []string

	// Page is the page number the block came from.
	Page int

	// SourceID identifies the originating source.
	SourceID string

	// WordCount is the number of whitespace-separated words in Text.
	WordCount int
}

// CountWords returns the number of whitespace-separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// PathIsPrefix reports whether prefix is a (possibly equal) leading
// segment of path.
func PathIsPrefix(prefix, path []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if prefix[i] != path[i] {
			return false
		}
	}
	return true
}

// CommonPathPrefix returns the most specific common ancestor of two
// heading paths.
func CommonPathPrefix(a, b []string) []string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}
