package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldtlabs/quarry/internal/core/domain"
)

func extractHTML(t *testing.T, page string) *domain.RawDocument {
	t.Helper()
	raw, err := NewHTML().Extract(context.Background(), "https://example.com/page", []byte(page))
	require.NoError(t, err)
	return raw
}

func TestHTML_SupportedMIMETypes(t *testing.T) {
	assert.Contains(t, NewHTML().SupportedMIMETypes(), "text/html")
}

func TestHTML_Extract_Title(t *testing.T) {
	raw := extractHTML(t, `<html><head><title> Clinic Home </title></head><body></body></html>`)
	assert.Equal(t, "Clinic Home", raw.Title)
}

func TestHTML_Extract_HeadingsAndParagraphs(t *testing.T) {
	raw := extractHTML(t, `<html><body>
		<h1>Services</h1>
		<h2>Physiotherapy</h2>
		<p>We treat sports injuries.</p>
	</body></html>`)

	require.Len(t, raw.Blocks, 3)
	assert.Equal(t, domain.BlockHeading, raw.Blocks[0].Kind)
	assert.Equal(t, "Services", raw.Blocks[0].Text)
	assert.Equal(t, 1, raw.Blocks[0].Level)
	assert.Equal(t, 2, raw.Blocks[1].Level)
	assert.Equal(t, domain.BlockParagraph, raw.Blocks[2].Kind)
	assert.Equal(t, "We treat sports injuries.", raw.Blocks[2].Text)
}

func TestHTML_Extract_ScriptAndNavRemoved(t *testing.T) {
	raw := extractHTML(t, `<html><body>
		<nav><p>Home | About | Contact</p></nav>
		<script>var x = 1;</script>
		<style>p { color: red; }</style>
		<p>Actual content here.</p>
	</body></html>`)

	require.Len(t, raw.Blocks, 1)
	assert.Equal(t, "Actual content here.", raw.Blocks[0].Text)
}

func TestHTML_Extract_Table(t *testing.T) {
	raw := extractHTML(t, `<html><body><table>
		<tr><th>Name</th><th>Role</th></tr>
		<tr><td>John Smith</td><td>Physiotherapist</td></tr>
	</table></body></html>`)

	require.Len(t, raw.Blocks, 1)
	assert.Equal(t, domain.BlockTable, raw.Blocks[0].Kind)
	require.Len(t, raw.Blocks[0].Cells, 2)
	assert.Equal(t, []string{"Name", "Role"}, raw.Blocks[0].Cells[0])
	assert.Equal(t, []string{"John Smith", "Physiotherapist"}, raw.Blocks[0].Cells[1])
}

func TestHTML_Extract_ListItems(t *testing.T) {
	raw := extractHTML(t, `<html><body><ul>
		<li>Back pain</li>
		<li>Neck pain</li>
	</ul></body></html>`)

	require.Len(t, raw.Blocks, 2)
	assert.Equal(t, "Back pain", raw.Blocks[0].Text)
	assert.Equal(t, "Neck pain", raw.Blocks[1].Text)
}

func TestHTML_Extract_WhitespaceCollapsed(t *testing.T) {
	raw := extractHTML(t, "<html><body><p>spread \n\t out \n text</p></body></html>")

	require.Len(t, raw.Blocks, 1)
	assert.Equal(t, "spread out text", raw.Blocks[0].Text)
}

func TestHTML_Extract_WordCount(t *testing.T) {
	raw := extractHTML(t, `<html><body>
		<h1>Two words</h1>
		<p>Three more words</p>
		<table><tr><th>One</th></tr><tr><td>Two</td></tr></table>
	</body></html>`)

	assert.Equal(t, 7, raw.WordCount)
}

func TestHTML_Extract_EmptyPage(t *testing.T) {
	raw := extractHTML(t, `<html><body></body></html>`)
	assert.Empty(t, raw.Blocks)
	assert.Zero(t, raw.WordCount)
}
