package extractors

import (
	"context"
	"strings"

	"github.com/veldtlabs/quarry/internal/core/domain"
	"github.com/veldtlabs/quarry/internal/core/ports/driven"
)

// Ensure Plaintext implements the interface.
var _ driven.Extractor = (*Plaintext)(nil)

// Plaintext extracts paragraph blocks from plain text and markdown-ish
// content. Paragraphs are blank-line separated; lines of the form
// "# Heading" become heading blocks.
type Plaintext struct{}

// NewPlaintext creates a new plaintext extractor.
func NewPlaintext() *Plaintext {
	return &Plaintext{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Plaintext) SupportedMIMETypes() []string {
	return []string{"text/plain", "text/markdown", "text/x-markdown"}
}

// Extract splits the content into heading and paragraph blocks.
func (e *Plaintext) Extract(_ context.Context, sourceID string, content []byte) (*domain.RawDocument, error) {
	raw := &domain.RawDocument{
		SourceID: sourceID,
		ByteSize: len(content),
	}

	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if level, heading := markdownHeading(para); level > 0 {
			if raw.Title == "" && level == 1 {
				raw.Title = heading
			}
			raw.Blocks = append(raw.Blocks, domain.Block{
				Kind:  domain.BlockHeading,
				Text:  heading,
				Level: level,
			})
			continue
		}
		para = strings.Join(strings.Fields(para), " ")
		raw.Blocks = append(raw.Blocks, domain.Block{
			Kind: domain.BlockParagraph,
			Text: para,
		})
	}

	for _, b := range raw.Blocks {
		raw.WordCount += domain.CountWords(b.Text)
	}
	return raw, nil
}

// markdownHeading reports the heading level of a single-line "#"-prefixed
// paragraph, or 0 when the paragraph is not a heading.
func markdownHeading(para string) (int, string) {
	if strings.ContainsRune(para, '\n') || !strings.HasPrefix(para, "#") {
		return 0, ""
	}
	level := 0
	for level < len(para) && para[level] == '#' {
		level++
	}
	if level > 6 || level >= len(para) || para[level] != ' ' {
		return 0, ""
	}
	return level, strings.TrimSpace(para[level:])
}
