package pretty_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fwojciec/xconnector"
	"github.com/fwojciec/xconnector/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]pretty.Format{
		"table":    pretty.FormatTable,
		"CSV":      pretty.FormatCSV,
		"markdown": pretty.FormatMarkdown,
		"md":       pretty.FormatMarkdown,
	} {
		got, err := pretty.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := pretty.ParseFormat("xlsx")
	assert.Equal(t, xconnector.EINVALID, xconnector.ErrorCode(err))
}

func records() []xconnector.Record {
	return []xconnector.Record{
		{Label: "HMDB0000161", Fields: []xconnector.Field{{Name: "Common Name", Value: "Alanine"}, {Name: "Formula", Value: "C3H7NO2"}}},
		xconnector.SentinelRecord("HMDB9999999", []string{"Common Name", "Formula"}, xconnector.StatusNotFound, "HTTP 404"),
	}
}

func TestWriteRecords(t *testing.T) {
	t.Parallel()

	t.Run("csv", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, pretty.WriteRecords(&buf, records(), pretty.FormatCSV))

		assert.Equal(t, "ID,Common Name,Formula\nHMDB0000161,Alanine,C3H7NO2\nHMDB9999999,NaN,NaN\n", buf.String())
	})

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, pretty.WriteRecords(&buf, records(), pretty.FormatMarkdown))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 4)
		assert.Contains(t, lines[0], "| ID | Common Name | Formula |")
		assert.Contains(t, lines[2], "| HMDB0000161 | Alanine | C3H7NO2 |")
	})

	t.Run("table keeps header case", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, pretty.WriteRecords(&buf, records(), pretty.FormatTable))

		assert.Contains(t, buf.String(), "Common Name")
		assert.Contains(t, buf.String(), "╭")
	})
}

func TestWriteTable_PadsShortRows(t *testing.T) {
	t.Parallel()

	table := xconnector.Table{
		Columns: []string{"Value", "Source"},
		Rows:    []xconnector.PropertyRow{{Label: "HMDB0000001", Values: []string{"x"}}},
	}

	var buf bytes.Buffer
	require.NoError(t, pretty.WriteTable(&buf, table, pretty.FormatCSV))

	assert.Equal(t, "ID,Value,Source\nHMDB0000001,x,NaN\n", buf.String())
}

func TestWriteIDs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, pretty.WriteIDs(&buf, []string{"LMDB00001", "LMDB00002"}, pretty.FormatCSV))

	assert.Equal(t, "ID\nLMDB00001\nLMDB00002\n", buf.String())
}
