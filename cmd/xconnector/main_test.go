package main_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/xconnector"
	main "github.com/fwojciec/xconnector/cmd/xconnector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailHTML = `<html><body>
<table>
<tr><th>Version</th><td>5.0</td></tr>
<tr><th>HMDB ID</th><td>HMDB0000001</td></tr>
<tr><th>Common Name</th><td>1-Methylhistidine</td></tr>
</table>
</body></html>`

// newSite serves the given pages by path and 404s everything else.
func newSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = main.NewMain().Run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints help without arguments", func(t *testing.T) {
		t.Parallel()

		stdout, stderr, err := run(t)

		require.Error(t, err)
		assert.Contains(t, stdout, "chemquery")
		assert.Contains(t, stderr, "no command specified")
	})

	t.Run("help flag succeeds", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, "--help")

		require.NoError(t, err)
		assert.Contains(t, stdout, "reference")
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		t.Parallel()

		_, stderr, err := run(t, "-o", "xlsx", "sources")

		assert.Equal(t, xconnector.EINVALID, xconnector.ErrorCode(err))
		assert.Contains(t, stderr, `error: unknown format "xlsx"`)
	})

	t.Run("rejects unknown source", func(t *testing.T) {
		t.Parallel()

		_, stderr, err := run(t, "info", "kegg", "C00001")

		require.Error(t, err)
		assert.Contains(t, stderr, "error:")
	})

	t.Run("lists sources and datasets", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, "-o", "csv", "sources")

		require.NoError(t, err)
		assert.Contains(t, stdout, "hmdb,Human Metabolome Database,https://hmdb.ca,")
		assert.Contains(t, stdout, "pedb,Phenol-Explorer,Polyphenol_Metabolites.csv,classification composition,")
		assert.Contains(t, stdout, "browse:diseases")
	})

	t.Run("fetches records from the configured base URL", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t, map[string]string{"/metabolites/HMDB0000001": detailHTML})

		stdout, _, err := run(t, "--base-url", srv.URL, "--rate", "0", "-o", "csv",
			"info", "hmdb", "HMDB0000001", "HMDB0000002")

		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "ID,Version,HMDB ID,Common Name"), lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "HMDB0000001,5.0,HMDB0000001,1-Methylhistidine"), lines[1])
		assert.True(t, strings.HasPrefix(lines[2], "HMDB0000002,NaN,NaN,NaN"), lines[2])
	})

	t.Run("logs requests with a run id in debug mode", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t, map[string]string{"/metabolites/HMDB0000001": detailHTML})

		_, stderr, err := run(t, "--debug", "--base-url", srv.URL, "--rate", "0", "info", "hmdb", "HMDB0000001")

		require.NoError(t, err)
		assert.Contains(t, stderr, "run=")
		assert.Contains(t, stderr, "msg=fetch")
		assert.Contains(t, stderr, "msg=tables")
	})

	t.Run("downloads structures into the output directory", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t, map[string]string{"/structures/LMDB00001/image.png": "png-data"})
		out := filepath.Join(t.TempDir(), "images")

		stdout, _, err := run(t, "--base-url", srv.URL, "--rate", "0", "-o", "csv",
			"structure", "lmdb", "LMDB00001", "LMDB00002", "-d", out)

		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(out, "LMDB00001.png"))
		require.NoError(t, err)
		assert.Equal(t, "png-data", string(data))
		assert.Contains(t, stdout, "LMDB00001,"+srv.URL+"/structures/LMDB00001/image.png,8,found,")
		assert.Contains(t, stdout, "LMDB00002,")
		assert.Contains(t, stdout, ",not_found,")
	})

	t.Run("keeps existing files in the output directory", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t, map[string]string{
			"/structures/LMDB00001/image.png": "first",
			"/structures/LMDB00002/image.png": "second",
		})
		out := filepath.Join(t.TempDir(), "mydocs")
		require.NoError(t, os.MkdirAll(out, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(out, "thesis.txt"), []byte("draft"), 0o644))

		for _, acc := range []string{"LMDB00001", "LMDB00002"} {
			_, _, err := run(t, "--base-url", srv.URL, "--rate", "0", "structure", "lmdb", acc, "-d", out)
			require.NoError(t, err)
		}

		entries, err := os.ReadDir(out)
		require.NoError(t, err)
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		assert.Equal(t, []string{"LMDB00001.png", "LMDB00002.png", "thesis.txt"}, names)
		data, err := os.ReadFile(filepath.Join(out, "thesis.txt"))
		require.NoError(t, err)
		assert.Equal(t, "draft", string(data))
	})

	t.Run("looks up a reference dataset loaded from a directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Polyphenol_Metabolites.csv"),
			[]byte("id,name,formula,pubchem_compound_id\n1,Quercetin,C15H10O7,5280343\n2,Kaempferol,C15H10O6,5280863\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "polyphenol_classification.csv"),
			[]byte("compound_id,class\n1,Flavonols\n2,Flavonols\n"), 0o644))

		stdout, _, err := run(t, "-o", "csv", "reference", "pedb", "name", "Quercetin", "--data-dir", dir, "-r", "classification")

		require.NoError(t, err)
		assert.Equal(t, "ID,id,name,formula,pubchem_compound_id\nQuercetin,1,Quercetin,C15H10O7,5280343\n"+
			"ID,compound_id,class\n1,1,Flavonols\n", stdout)
	})

	t.Run("reports a dataset that was never loaded", func(t *testing.T) {
		t.Parallel()

		_, stderr, err := run(t, "reference", "bedb", "hmdb", "HMDB0000001")

		assert.Equal(t, xconnector.ENOTFOUND, xconnector.ErrorCode(err))
		assert.Contains(t, stderr, "Hint: Set --data-dir")
		assert.Contains(t, stderr, "error: table bedb not loaded")
	})
}
