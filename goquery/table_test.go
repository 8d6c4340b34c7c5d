package goquery_test

import (
	"testing"

	"github.com/fwojciec/xconnector/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableParser(t *testing.T) {
	t.Parallel()

	t.Run("uses thead row as header", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><table>
<thead><tr><th>Name</th><th>Value</th></tr></thead>
<tbody><tr><td>a</td><td>1</td></tr><tr><td>b</td><td>2</td></tr></tbody>
</table></body></html>`

		tables, err := goquery.NewTableParser().Parse(html)

		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Equal(t, []string{"Name", "Value"}, tables[0].Header)
		assert.Equal(t, [][]string{{"a", "1"}, {"b", "2"}}, tables[0].Rows)
		assert.Empty(t, tables[0].Heading)
	})

	t.Run("uses leading th-only row as header", func(t *testing.T) {
		t.Parallel()

		html := `<table><tr><th>Name</th><th>Value</th></tr><tr><td>a</td><td>1</td></tr></table>`

		tables, err := goquery.NewTableParser().Parse(html)

		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Equal(t, []string{"Name", "Value"}, tables[0].Header)
		assert.Equal(t, [][]string{{"a", "1"}}, tables[0].Rows)
	})

	t.Run("keeps key-value rows as rows", func(t *testing.T) {
		t.Parallel()

		html := `<table>
<tr><th>HMDB ID</th><td>HMDB0000001</td></tr>
<tr><th>Common Name</th><td>1-Methylhistidine</td></tr>
</table>`

		tables, err := goquery.NewTableParser().Parse(html)

		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Nil(t, tables[0].Header)
		assert.Equal(t, [][]string{
			{"HMDB ID", "HMDB0000001"},
			{"Common Name", "1-Methylhistidine"},
		}, tables[0].Rows)
	})

	t.Run("labels nested table with enclosing row heading", func(t *testing.T) {
		t.Parallel()

		html := `<table>
<tr><th>Version</th><td>5.0</td></tr>
<tr><th>Synonyms</th><td><table>
<thead><tr><th>Value</th><th>Source</th></tr></thead>
<tbody><tr><td>x</td><td>ChEBI</td></tr></tbody>
</table></td></tr>
</table>`

		tables, err := goquery.NewTableParser().Parse(html)

		require.NoError(t, err)
		require.Len(t, tables, 2)
		assert.Empty(t, tables[0].Heading)
		require.Len(t, tables[0].Rows, 2)
		assert.Equal(t, []string{"Version", "5.0"}, tables[0].Rows[0])
		assert.Equal(t, "Synonyms", tables[0].Rows[1][0])
		assert.Equal(t, "Synonyms", tables[1].Heading)
		assert.Equal(t, []string{"Value", "Source"}, tables[1].Header)
		assert.Equal(t, [][]string{{"x", "ChEBI"}}, tables[1].Rows)
	})

	t.Run("labels nested table with heading row above it", func(t *testing.T) {
		t.Parallel()

		html := `<table>
<tr><th colspan="2">Predicted Properties</th></tr>
<tr><td colspan="2"><table><tr><td>logP</td><td>0.1</td></tr></table></td></tr>
</table>`

		tables, err := goquery.NewTableParser().Parse(html)

		require.NoError(t, err)
		require.Len(t, tables, 2)
		assert.Equal(t, "Predicted Properties", tables[1].Heading)
	})

	t.Run("labels tables from caption and preceding heading", func(t *testing.T) {
		t.Parallel()

		html := `<body><h2>Spectra</h2><table><tr><td>a</td></tr></table>` +
			`<table><caption>Pathways</caption><tr><td>b</td></tr></table>` +
			`<table><tr><td>c</td></tr></table></body>`

		tables, err := goquery.NewTableParser().Parse(html)

		require.NoError(t, err)
		require.Len(t, tables, 3)
		assert.Equal(t, "Spectra", tables[0].Heading)
		assert.Equal(t, "Pathways", tables[1].Heading)
		assert.Empty(t, tables[2].Heading)
	})

	t.Run("labels table from panel heading", func(t *testing.T) {
		t.Parallel()

		html := `<div class="panel"><div class="panel-heading"><strong>Alkaptonuria</strong>&nbsp;<span>3</span></div>` +
			`<div class="panel-body"><table><tr><th>Metabolite</th><th>Accession</th></tr>` +
			`<tr><td>Homogentisic acid</td><td>HMDB0000130</td></tr></table></div></div>`

		tables, err := goquery.NewTableParser().Parse(html)

		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Equal(t, "Alkaptonuria", tables[0].Heading)
		assert.Equal(t, []string{"Metabolite", "Accession"}, tables[0].Header)
	})

	t.Run("expands colspan", func(t *testing.T) {
		t.Parallel()

		html := `<table><tr><th colspan="2">Record Information</th></tr><tr><th>Version</th><td>5.0</td></tr></table>`

		tables, err := goquery.NewTableParser().Parse(html)

		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Equal(t, []string{"Record Information", "Record Information"}, tables[0].Header)
		assert.Equal(t, [][]string{{"Version", "5.0"}}, tables[0].Rows)
	})

	t.Run("separates line breaks with spaces", func(t *testing.T) {
		t.Parallel()

		html := `<table><tr><td>Name</td><td>first<br>second<div>third</div></td></tr></table>`

		tables, err := goquery.NewTableParser().Parse(html)

		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Equal(t, [][]string{{"Name", "first second third"}}, tables[0].Rows)
	})

	t.Run("returns no tables for page without tables", func(t *testing.T) {
		t.Parallel()

		tables, err := goquery.NewTableParser().Parse(`<html><body><p>No record</p></body></html>`)

		require.NoError(t, err)
		assert.Empty(t, tables)
	})
}
