package xconnector_test

import (
	"testing"

	"github.com/fwojciec/xconnector"
	"github.com/stretchr/testify/assert"
)

func TestExtractIDs(t *testing.T) {
	t.Parallel()

	t.Run("deduplicates matches", func(t *testing.T) {
		t.Parallel()

		text := `<a href="/metabolites/HMDB0000001">HMDB0000001</a> HMDB0000002 HMDB0000001`
		ids := xconnector.ExtractIDs(xconnector.IDPattern{Prefix: "HMDB", Digits: 7}, text)

		assert.Equal(t, []string{"HMDB0000001", "HMDB0000002"}, ids.Sorted())
	})

	t.Run("skips candidates with too few digits", func(t *testing.T) {
		t.Parallel()

		ids := xconnector.ExtractIDs(xconnector.IDPattern{Prefix: "HMDB", Digits: 7}, "HMDB00001 HMDBx HMDB")

		assert.Empty(t, ids)
	})

	t.Run("takes the leading digits of longer runs", func(t *testing.T) {
		t.Parallel()

		ids := xconnector.ExtractIDs(xconnector.IDPattern{Prefix: "T3D", Digits: 4}, "T3D000123")

		assert.Equal(t, []string{"T3D0001"}, ids.Sorted())
	})

	t.Run("returns empty set for empty pattern", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, xconnector.ExtractIDs(xconnector.IDPattern{}, "HMDB0000001"))
	})
}

func TestIDSet_Merge(t *testing.T) {
	t.Parallel()

	a := xconnector.IDSet{}
	a.Add("LMDB00001", "LMDB00002")
	b := xconnector.IDSet{}
	b.Add("LMDB00002", "LMDB00003")

	a.Merge(b)

	assert.Equal(t, []string{"LMDB00001", "LMDB00002", "LMDB00003"}, a.Sorted())
	assert.True(t, a.Contains("LMDB00003"))
}

func TestExtractKeywordAccessions(t *testing.T) {
	t.Parallel()

	html := `<a href="/menta.cgi/respect/datail/datail?accession=PS058407">x</a>
<a href="/menta.cgi/respect/datail/datail?accession=PM013507">y</a>
<a href="/menta.cgi/respect/datail/datail?accession=PS058407">z</a>`

	assert.Equal(t, []string{"PS058407", "PM013507"}, xconnector.ExtractKeywordAccessions(html))
	assert.Empty(t, xconnector.ExtractKeywordAccessions("<p>no results</p>"))
}
