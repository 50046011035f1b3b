// Package tokenizer estimates token counts for embedding-model input
// budgets. The estimate tracks cl100k-style BPE closely enough for chunk
// sizing: roughly one token per four characters of English text, and
// never fewer tokens than words.
package tokenizer

import (
	"unicode/utf8"

	"github.com/veldtlabs/quarry/internal/core/domain"
	"github.com/veldtlabs/quarry/internal/core/ports/driven"
)

// Ensure Estimator implements the interface.
var _ driven.Tokenizer = (*Estimator)(nil)

// charsPerToken is the average BPE compression for English text.
const charsPerToken = 4

// Estimator is a deterministic token-count approximation.
type Estimator struct{}

// New creates a new token estimator.
func New() *Estimator {
	return &Estimator{}
}

// CountTokens returns the estimated tokenised length of text.
// Deliberately conservative: a word is never less than one token.
func (e *Estimator) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	byChars := (utf8.RuneCountInString(text) + charsPerToken - 1) / charsPerToken
	byWords := domain.CountWords(text)
	if byWords > byChars {
		return byWords
	}
	return byChars
}
