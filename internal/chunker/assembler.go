// Package chunker partitions annotated blocks into bounded-size
// retrieval chunks while preserving hierarchical context and filtering
// low-information fragments.
package chunker

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/veldtlabs/quarry/internal/core/domain"
	"github.com/veldtlabs/quarry/internal/core/ports/driven"
)

// DefaultMaxTokens is the default chunk token budget, sized for
// semantic-search embedding models.
const DefaultMaxTokens = 512

// DefaultMinWords filters chunks that are typically navigation or
// boilerplate fragments with no standalone semantic value.
const DefaultMinWords = 15

// Assembler merges and splits annotated blocks into chunks. Token
// counting uses the embedding model's tokenisation scheme, since the
// token budget is an embedding input-length contract.
type Assembler struct {
	tokenizer driven.Tokenizer
	maxTokens int
	minWords  int
	category  string
}

// Option configures the assembler.
type Option func(*Assembler)

// WithMaxTokens sets the chunk token budget.
func WithMaxTokens(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.maxTokens = n
		}
	}
}

// WithMinWords sets the minimum word count below which chunks are
// dropped.
func WithMinWords(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.minWords = n
		}
	}
}

// WithCategory tags every produced chunk.
func WithCategory(category string) Option {
	return func(a *Assembler) {
		a.category = category
	}
}

// New creates an assembler with the given tokenizer and options.
func New(tokenizer driven.Tokenizer, opts ...Option) *Assembler {
	a := &Assembler{
		tokenizer: tokenizer,
		maxTokens: DefaultMaxTokens,
		minWords:  DefaultMinWords,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// pending is the chunk currently being grown.
type pending struct {
	texts    []string
	path     []string
	sourceID string
	pages    map[int]bool
}

// Assemble partitions blocks into chunks. Consecutive blocks merge
// while they share a heading-path, or while the new block's path is a
// descendant of the chunk's path and the token budget holds. A
// transition to a sibling or ancestor path always closes the chunk.
// Chunks below the minimum word count are dropped, never merged into a
// neighbour.
func (a *Assembler) Assemble(blocks []domain.AnnotatedBlock) []domain.Chunk {
	var chunks []domain.Chunk
	var cur *pending

	flush := func() {
		if cur == nil {
			return
		}
		if c, ok := a.seal(cur); ok {
			chunks = append(chunks, c)
		}
		cur = nil
	}

	for _, block := range blocks {
		if block.Text == "" {
			continue
		}

		// A block that alone exceeds the budget is hard-split as a last
		// resort; it can never merge with neighbours.
		if a.tokenizer.CountTokens(block.Text) > a.maxTokens {
			flush()
			for _, part := range a.hardSplit(block.Text) {
				piece := block
				piece.Text = part
				piece.WordCount = domain.CountWords(part)
				cur = a.seed(piece)
				flush()
			}
			continue
		}

		if cur == nil {
			cur = a.seed(block)
			continue
		}

		if !domain.PathIsPrefix(cur.path, block.HeadingPath) {
			// Sibling or ancestor transition: always a boundary.
			flush()
			cur = a.seed(block)
			continue
		}

		merged := strings.Join(append(cur.texts, block.Text), "\n")
		if a.tokenizer.CountTokens(merged) > a.maxTokens {
			// Budget overflow: close and re-seed with this block.
			flush()
			cur = a.seed(block)
			continue
		}

		cur.texts = append(cur.texts, block.Text)
		cur.pages[block.Page] = true
	}
	flush()

	return chunks
}

func (a *Assembler) seed(block domain.AnnotatedBlock) *pending {
	path := make([]string, len(block.HeadingPath))
	copy(path, block.HeadingPath)
	return &pending{
		texts:    []string{block.Text},
		path:     path,
		sourceID: block.SourceID,
		pages:    map[int]bool{block.Page: true},
	}
}

// seal finalises a pending chunk, applying the minimum-word filter.
func (a *Assembler) seal(p *pending) (domain.Chunk, bool) {
	text := strings.Join(p.texts, "\n")
	words := domain.CountWords(text)
	if words < a.minWords {
		return domain.Chunk{}, false
	}

	pages := make([]int, 0, len(p.pages))
	for page := range p.pages {
		if page > 0 {
			pages = append(pages, page)
		}
	}
	sort.Ints(pages)

	return domain.Chunk{
		ID:          uuid.New().String(),
		Text:        text,
		TokenCount:  a.tokenizer.CountTokens(text),
		WordCount:   words,
		HeadingPath: p.path,
		SourceID:    p.sourceID,
		Pages:       pages,
		Category:    a.category,
	}, true
}

// hardSplit cuts oversized text at token boundaries, accumulating words
// until the budget would overflow.
func (a *Assembler) hardSplit(text string) []string {
	words := strings.Fields(text)
	var parts []string
	var buf []string

	for _, word := range words {
		// A single whitespace-free token over the budget (a long URL or
		// an encoded blob) cannot split on word boundaries; cut it on
		// rune boundaries instead.
		if a.tokenizer.CountTokens(word) > a.maxTokens {
			if len(buf) > 0 {
				parts = append(parts, strings.Join(buf, " "))
				buf = buf[:0]
			}
			parts = append(parts, a.splitWord(word)...)
			continue
		}

		candidate := strings.Join(append(buf, word), " ")
		if len(buf) > 0 && a.tokenizer.CountTokens(candidate) > a.maxTokens {
			parts = append(parts, strings.Join(buf, " "))
			buf = buf[:0]
		}
		buf = append(buf, word)
	}
	if len(buf) > 0 {
		parts = append(parts, strings.Join(buf, " "))
	}
	return parts
}

// splitWord cuts one unbreakable token into rune-boundary pieces, each
// within the token budget.
func (a *Assembler) splitWord(word string) []string {
	var parts []string
	var buf []rune

	for _, r := range word {
		buf = append(buf, r)
		if a.tokenizer.CountTokens(string(buf)) >= a.maxTokens {
			parts = append(parts, string(buf))
			buf = buf[:0]
		}
	}
	if len(buf) > 0 {
		parts = append(parts, string(buf))
	}
	return parts
}
