// Package normalize converts extracted documents into flat sequences of
// annotated text blocks. Headings maintain a hierarchy stack that every
// following block inherits; tables are rewritten into self-contained
// declarative statements so each row is independently queryable.
package normalize

import (
	"strings"

	"github.com/veldtlabs/quarry/internal/core/domain"
)

// Normalize converts one extracted document into annotated blocks.
// Pure and deterministic: normalising the same document twice yields
// identical output.
func Normalize(doc *domain.RawDocument) []domain.AnnotatedBlock {
	if doc == nil {
		return nil
	}

	var out []domain.AnnotatedBlock
	var stack []string

	for _, block := range doc.Blocks {
		switch block.Kind {
		case domain.BlockHeading:
			text := strings.TrimSpace(block.Text)
			if text == "" {
				continue
			}
			level := block.Level
			if level < 1 {
				level = 1
			}
			// A heading at level N replaces everything at N and deeper.
			if level-1 < len(stack) {
				stack = stack[:level-1]
			}
			stack = append(stack, text)

		case domain.BlockParagraph:
			text := strings.TrimSpace(block.Text)
			if text == "" {
				continue
			}
			out = append(out, newBlock(doc.SourceID, text, stack, block.Page))

		case domain.BlockTable:
			for _, text := range rewriteTable(block.Cells) {
				out = append(out, newBlock(doc.SourceID, text, stack, block.Page))
			}
		}
	}
	return out
}

// newBlock snapshots the heading stack so later heading changes cannot
// mutate earlier blocks.
func newBlock(sourceID, text string, stack []string, page int) domain.AnnotatedBlock {
	path := make([]string, len(stack))
	copy(path, stack)
	return domain.AnnotatedBlock{
		Text:        text,
		HeadingPath: path,
		Page:        page,
		SourceID:    sourceID,
		WordCount:   domain.CountWords(text),
	}
}

// rewriteTable turns a cell matrix into one declarative statement per
// data row. With header row H and key column 0, each non-key non-empty
// cell becomes "<key>, <header> = <cell>"; the row's statements join
// with "; ". Rows without an identifiable key fall back to
// "<header> = <cell>" joined by commas. Empty cells are skipped, never
// emitted, so every non-empty cell is preserved in the output.
func rewriteTable(cells [][]string) []string {
	if len(cells) < 2 {
		return nil
	}
	header := cells[0]

	var rows []string
	for _, row := range cells[1:] {
		key := ""
		if len(row) > 0 {
			key = strings.TrimSpace(row[0])
		}
		keyed := key != "" && len(header) > 0 && strings.TrimSpace(header[0]) != ""

		var parts []string
		for col := 0; col < len(row); col++ {
			if keyed && col == 0 {
				continue
			}
			value := strings.TrimSpace(row[col])
			if value == "" {
				continue
			}
			name := ""
			if col < len(header) {
				name = strings.TrimSpace(header[col])
			}
			if name == "" {
				if keyed {
					parts = append(parts, key+", "+value)
				} else {
					parts = append(parts, value)
				}
				continue
			}
			if keyed {
				parts = append(parts, key+", "+name+" = "+value)
			} else {
				parts = append(parts, name+" = "+value)
			}
		}

		if len(parts) == 0 {
			if keyed {
				// A row that is only a key still carries that cell.
				rows = append(rows, key)
			}
			continue
		}
		if keyed {
			rows = append(rows, strings.Join(parts, "; "))
		} else {
			rows = append(rows, strings.Join(parts, ", "))
		}
	}
	return rows
}
