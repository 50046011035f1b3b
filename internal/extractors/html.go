package extractors

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/veldtlabs/quarry/internal/core/domain"
	"github.com/veldtlabs/quarry/internal/core/ports/driven"
)

// Ensure HTML implements the interface.
var _ driven.Extractor = (*HTML)(nil)

// HTML extracts headings, paragraphs and tables from HTML pages.
type HTML struct{}

// NewHTML creates a new HTML extractor.
func NewHTML() *HTML {
	return &HTML{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *HTML) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Extract parses the page into structural blocks. Script, style and
// navigation containers are skipped; tables become cell matrices with
// the header row first.
func (e *HTML) Extract(_ context.Context, sourceID string, content []byte) (*domain.RawDocument, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptInput, err)
	}

	doc.Find("script, style, noscript, nav, footer, header>nav").Remove()

	raw := &domain.RawDocument{
		SourceID: sourceID,
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		ByteSize: len(content),
	}

	doc.Find("h1, h2, h3, h4, h5, h6, p, li, table").Each(func(_ int, sel *goquery.Selection) {
		tag := goquery.NodeName(sel)
		switch {
		case strings.HasPrefix(tag, "h") && len(tag) == 2:
			text := collapseSpace(sel.Text())
			if text == "" {
				return
			}
			level, _ := strconv.Atoi(tag[1:])
			raw.Blocks = append(raw.Blocks, domain.Block{
				Kind:  domain.BlockHeading,
				Text:  text,
				Level: level,
			})

		case tag == "table":
			cells := tableCells(sel)
			if len(cells) > 0 {
				raw.Blocks = append(raw.Blocks, domain.Block{
					Kind:  domain.BlockTable,
					Cells: cells,
				})
			}

		default: // p, li
			// Skip list items nested in tables; the table pass owns them.
			if sel.ParentsFiltered("table").Length() > 0 {
				return
			}
			text := collapseSpace(sel.Text())
			if text == "" {
				return
			}
			raw.Blocks = append(raw.Blocks, domain.Block{
				Kind: domain.BlockParagraph,
				Text: text,
			})
		}
	})

	for _, b := range raw.Blocks {
		raw.WordCount += blockWords(b)
	}
	return raw, nil
}

// tableCells reads a table into a row-major matrix, header row first.
// Tables without a th row use their first row as the header.
func tableCells(table *goquery.Selection) [][]string {
	var cells [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, collapseSpace(cell.Text()))
		})
		if len(row) > 0 {
			cells = append(cells, row)
		}
	})
	return cells
}

func blockWords(b domain.Block) int {
	if b.Kind == domain.BlockTable {
		n := 0
		for _, row := range b.Cells {
			for _, cell := range row {
				n += domain.CountWords(cell)
			}
		}
		return n
	}
	return domain.CountWords(b.Text)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
