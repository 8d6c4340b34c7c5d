package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/xconnector"
	"github.com/fwojciec/xconnector/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bedbCSV = "\ufeffHMDB_ID,PubChem_CID,KEGG_ID,Molecular_Formula,CanonicalSMILES,InChIKey,Name\n" +
	"HMDB0000001,92105,C01152,C7H11N3O2,CN1C=NC=C1CC(C(=O)O)N,BRMWTNUJHUMWMS-LURJTMIESA-N,1-Methylhistidine\n" +
	"HMDB0000002,428,C00986,C3H10N2,C(CN)CN,XFNJVJPLKCPIBV-UHFFFAOYSA-N,\"1,3-Diaminopropane\"\n" +
	"HMDB0000005,58,C00109,C4H6O3,CCC(=O)C(=O)O,TYEYBOSBBBHJIV-UHFFFAOYSA-N,2-Ketobutyric acid\n" +
	"HMDB0000008,11266,C05984,C4H8O3,CCC(C(=O)O)O,AFENDNXGAFYKQO-VKHMYHEASA-N,2-Hydroxybutyric acid\n"

const pedbCSV = "id,name,formula,pubchem_compound_id\n" +
	"1,Quercetin,C15H10O7,5280343\n" +
	"2,Kaempferol,C15H10O6,5280863\n" +
	"3,Isorhamnetin,C16H12O7,5281654\n" +
	"4,Quercetin 3-glucoside,C21H20O12,5280804\n"

const classificationCSV = "compound_id,class,subclass\n" +
	"1,Flavonoids,Flavonols\n" +
	"3,Flavonoids,Flavonols\n" +
	"1,Polyphenols,Other\n"

const compositionCSV = "id,food,mean\n" +
	"2,Capers,259\n" +
	"1,Onion,45.3\n"

func setupReferenceService(t *testing.T) *sqlite.ReferenceService {
	t.Helper()

	ctx := context.Background()
	svc := sqlite.NewReferenceService(setupTestDB(t))
	require.NoError(t, svc.Load(ctx, xconnector.SourceBEDB, strings.NewReader(bedbCSV)))
	require.NoError(t, svc.Load(ctx, xconnector.SourcePEDB, strings.NewReader(pedbCSV)))
	require.NoError(t, svc.LoadRelated(ctx, xconnector.SourcePEDB, "classification", strings.NewReader(classificationCSV)))
	require.NoError(t, svc.LoadRelated(ctx, xconnector.SourcePEDB, "composition", strings.NewReader(compositionCSV)))
	return svc
}

func TestReferenceService_FindReference(t *testing.T) {
	t.Parallel()

	t.Run("returns matching rows in file order", func(t *testing.T) {
		t.Parallel()

		svc := setupReferenceService(t)

		table, err := svc.FindReference(context.Background(), xconnector.SourceBEDB, "hmdb", []string{"HMDB0000005", "HMDB0000001", "HMDB9999999"})

		require.NoError(t, err)
		assert.Equal(t, "HMDB_ID", table.Columns[0])
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "HMDB0000001", table.Rows[0].Label)
		assert.Equal(t, "1-Methylhistidine", table.Value(0, "Name"))
		assert.Equal(t, "HMDB0000005", table.Rows[1].Label)
	})

	t.Run("matches identifiers exactly", func(t *testing.T) {
		t.Parallel()

		svc := setupReferenceService(t)

		table, err := svc.FindReference(context.Background(), xconnector.SourceBEDB, "formula", []string{"C4H8O3", "c4h6o3", "C4H"})

		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "2-Hydroxybutyric acid", table.Value(0, "Name"))
	})

	t.Run("keeps quoted cells intact", func(t *testing.T) {
		t.Parallel()

		svc := setupReferenceService(t)

		table, err := svc.FindReference(context.Background(), xconnector.SourceBEDB, "CID", []string{"428"})

		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "1,3-Diaminopropane", table.Value(0, "Name"))
	})

	t.Run("returns empty table for no values", func(t *testing.T) {
		t.Parallel()

		svc := setupReferenceService(t)

		table, err := svc.FindReference(context.Background(), xconnector.SourcePEDB, "name", nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name", "formula", "pubchem_compound_id"}, table.Columns)
		assert.Empty(t, table.Rows)
	})

	t.Run("rejects unknown identifier", func(t *testing.T) {
		t.Parallel()

		svc := setupReferenceService(t)

		_, err := svc.FindReference(context.Background(), xconnector.SourcePEDB, "hmdb", []string{"HMDB0000001"})

		assert.Equal(t, xconnector.EINVALID, xconnector.ErrorCode(err))
		assert.Contains(t, xconnector.ErrorMessage(err), "pubchem_compound_id")
	})

	t.Run("returns not found for unloaded dataset", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewReferenceService(setupTestDB(t))

		_, err := svc.FindReference(context.Background(), xconnector.SourceBEDB, "hmdb", []string{"HMDB0000001"})

		assert.Equal(t, xconnector.ENOTFOUND, xconnector.ErrorCode(err))
	})

	t.Run("returns not found for unknown dataset", func(t *testing.T) {
		t.Parallel()

		svc := setupReferenceService(t)

		_, err := svc.FindReference(context.Background(), xconnector.SourceHMDB, "hmdb", []string{"HMDB0000001"})

		assert.Equal(t, xconnector.ENOTFOUND, xconnector.ErrorCode(err))
	})
}

func TestReferenceService_FindRelated(t *testing.T) {
	t.Parallel()

	t.Run("joins related rows on the link column", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		svc := setupReferenceService(t)
		compounds, err := svc.FindReference(ctx, xconnector.SourcePEDB, "name", []string{"Quercetin", "Isorhamnetin"})
		require.NoError(t, err)

		classes, err := svc.FindRelated(ctx, xconnector.SourcePEDB, "classification", compounds)

		require.NoError(t, err)
		assert.Equal(t, []string{"compound_id", "class", "subclass"}, classes.Columns)
		require.Len(t, classes.Rows, 3)
		assert.Equal(t, []string{"1", "3", "1"}, []string{classes.Rows[0].Label, classes.Rows[1].Label, classes.Rows[2].Label})

		foods, err := svc.FindRelated(ctx, xconnector.SourcePEDB, "composition", compounds)

		require.NoError(t, err)
		require.Len(t, foods.Rows, 1)
		assert.Equal(t, "Onion", foods.Value(0, "food"))
	})

	t.Run("returns empty table when rows have no links", func(t *testing.T) {
		t.Parallel()

		svc := setupReferenceService(t)

		table, err := svc.FindRelated(context.Background(), xconnector.SourcePEDB, "composition", xconnector.Table{})

		require.NoError(t, err)
		assert.Empty(t, table.Rows)
	})

	t.Run("rejects unknown related table", func(t *testing.T) {
		t.Parallel()

		svc := setupReferenceService(t)

		_, err := svc.FindRelated(context.Background(), xconnector.SourcePEDB, "foods", xconnector.Table{})

		assert.Equal(t, xconnector.ENOTFOUND, xconnector.ErrorCode(err))
	})
}

func TestReferenceService_Load(t *testing.T) {
	t.Parallel()

	t.Run("names blank and duplicate columns", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		svc := sqlite.NewReferenceService(setupTestDB(t))
		csv := "id,name,,name,formula,pubchem_compound_id\n7,Apigenin,x,dup,C15H10O5,5280443\n8,Short\n"

		require.NoError(t, svc.Load(ctx, xconnector.SourcePEDB, strings.NewReader(csv)))
		table, err := svc.FindReference(ctx, xconnector.SourcePEDB, "name", []string{"Apigenin", "Short"})

		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name", "column_3", "name_2", "formula", "pubchem_compound_id"}, table.Columns)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "", table.Value(1, "formula"))
	})

	t.Run("replaces a previous load", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		svc := setupReferenceService(t)

		require.NoError(t, svc.Load(ctx, xconnector.SourcePEDB, strings.NewReader("id,name,formula,pubchem_compound_id\n9,Luteolin,C15H10O6,5280445\n")))
		table, err := svc.FindReference(ctx, xconnector.SourcePEDB, "name", []string{"Quercetin", "Luteolin"})

		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "Luteolin", table.Rows[0].Label)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewReferenceService(setupTestDB(t))

		err := svc.Load(context.Background(), xconnector.SourceBEDB, strings.NewReader(""))

		assert.Equal(t, xconnector.EINVALID, xconnector.ErrorCode(err))
	})
}

func TestReferenceService_LoadDir(t *testing.T) {
	t.Parallel()

	t.Run("loads main and present related files", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Polyphenol_Metabolites.csv"), []byte(pedbCSV), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "polyphenol_classification.csv"), []byte(classificationCSV), 0o644))
		svc := sqlite.NewReferenceService(setupTestDB(t))

		require.NoError(t, svc.LoadDir(ctx, xconnector.SourcePEDB, dir))

		tables, err := svc.LoadedTables(ctx, xconnector.SourcePEDB)
		require.NoError(t, err)
		require.Len(t, tables, 2)
		assert.Equal(t, "pedb", tables[0].Name)
		assert.Equal(t, 4, tables[0].Rows)
		assert.Equal(t, "pedb_classification", tables[1].Name)
		assert.Equal(t, []string{"compound_id", "class", "subclass"}, tables[1].Columns)
		assert.False(t, tables[1].LoadedAt.IsZero())

		_, err = svc.FindRelated(ctx, xconnector.SourcePEDB, "composition", xconnector.Table{})
		assert.Equal(t, xconnector.ENOTFOUND, xconnector.ErrorCode(err))
	})

	t.Run("returns not found for missing main file", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewReferenceService(setupTestDB(t))

		err := svc.LoadDir(context.Background(), xconnector.SourceBEDB, t.TempDir())

		assert.Equal(t, xconnector.ENOTFOUND, xconnector.ErrorCode(err))
	})
}
