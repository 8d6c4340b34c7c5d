package sqlite

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/xconnector"
)

// Ensure ReferenceService implements xconnector.ReferenceService.
var _ xconnector.ReferenceService = (*ReferenceService)(nil)

// ReferenceService loads reference dataset CSV files into SQLite tables
// and looks rows up by identifier.
type ReferenceService struct {
	db *DB
}

// NewReferenceService creates a new ReferenceService.
func NewReferenceService(db *DB) *ReferenceService {
	return &ReferenceService{db: db}
}

// LoadedTable describes a CSV file loaded into the database.
type LoadedTable struct {
	Name     string
	Dataset  xconnector.SourceID
	Columns  []string
	Rows     int
	LoadedAt time.Time
}

// tableName returns the name of the table holding a dataset file. The main
// file is stored under the dataset id, related files under id_name.
func tableName(id xconnector.SourceID, related string) string {
	if related == "" {
		return string(id)
	}
	return string(id) + "_" + related
}

// LoadDir loads the dataset's CSV files from dir. Related files that are
// missing are skipped; a missing main file is ENOTFOUND.
func (s *ReferenceService) LoadDir(ctx context.Context, id xconnector.SourceID, dir string) error {
	ds, err := xconnector.LookupDataset(id)
	if err != nil {
		return err
	}

	if err := s.loadFile(ctx, ds.ID, "", filepath.Join(dir, ds.File)); err != nil {
		return err
	}
	for _, rt := range ds.Related {
		err := s.loadFile(ctx, ds.ID, rt.Name, filepath.Join(dir, rt.File))
		if xconnector.ErrorCode(err) == xconnector.ENOTFOUND {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *ReferenceService) loadFile(ctx context.Context, id xconnector.SourceID, related, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return xconnector.Errorf(xconnector.ENOTFOUND, "dataset file %s not found", path)
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if related == "" {
		return s.Load(ctx, id, f)
	}
	return s.LoadRelated(ctx, id, related, f)
}

// Load replaces the dataset's main table with the CSV read from r.
func (s *ReferenceService) Load(ctx context.Context, id xconnector.SourceID, r io.Reader) error {
	if _, err := xconnector.LookupDataset(id); err != nil {
		return err
	}
	return s.loadTable(ctx, id, tableName(id, ""), r)
}

// LoadRelated replaces one of the dataset's related tables with the CSV
// read from r.
func (s *ReferenceService) LoadRelated(ctx context.Context, id xconnector.SourceID, related string, r io.Reader) error {
	ds, err := xconnector.LookupDataset(id)
	if err != nil {
		return err
	}
	if _, ok := ds.RelatedTable(related); !ok {
		return xconnector.Errorf(xconnector.ENOTFOUND, "%s has no related table %q", id, related)
	}
	return s.loadTable(ctx, id, tableName(id, related), r)
}

func (s *ReferenceService) loadTable(ctx context.Context, id xconnector.SourceID, name string, r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return xconnector.Errorf(xconnector.EINVALID, "%s: empty CSV", name)
	}
	if err != nil {
		return xconnector.Errorf(xconnector.EINVALID, "%s: reading header: %v", name, err)
	}
	columns := columnNames(header)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", name, err)
	}

	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c) + " TEXT NOT NULL"
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(name), placeholders(len(columns))))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return xconnector.Errorf(xconnector.EINVALID, "%s: %v", name, err)
		}
		for i := range args {
			args[i] = ""
			if i < len(record) {
				args[i] = record[i]
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", name, err)
		}
	}

	encoded, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO dataset_tables (name, dataset, columns, loaded_at)
		VALUES (?, ?, ?, ?)
	`, name, string(id), string(encoded), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record table %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// columnNames trims header names, strips a leading byte order mark, names
// empty columns by position and suffixes duplicates.
func columnNames(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		seen[h]++
		if n := seen[h]; n > 1 {
			h = fmt.Sprintf("%s_%d", h, n)
		}
		columns[i] = h
	}
	return columns
}

// columns returns the CSV columns of a loaded table.
func (s *ReferenceService) columns(ctx context.Context, name string) ([]string, error) {
	var encoded string
	err := s.db.QueryRowContext(ctx, "SELECT columns FROM dataset_tables WHERE name = ?", name).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, xconnector.Errorf(xconnector.ENOTFOUND, "table %s not loaded", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", name, err)
	}

	var columns []string
	if err := json.Unmarshal([]byte(encoded), &columns); err != nil {
		return nil, fmt.Errorf("failed to decode columns of %s: %w", name, err)
	}
	return columns, nil
}

// FindReference returns the dataset rows whose identifier column exactly
// matches one of values, in file order. Each row is labelled with its
// identifier value.
func (s *ReferenceService) FindReference(ctx context.Context, dataset xconnector.SourceID, identifier string, values []string) (xconnector.Table, error) {
	ds, err := xconnector.LookupDataset(dataset)
	if err != nil {
		return xconnector.Table{}, err
	}
	column, ok := ds.Identifiers[strings.ToLower(identifier)]
	if !ok {
		return xconnector.Table{}, xconnector.Errorf(xconnector.EINVALID,
			"unknown identifier %q for %s (choose from %s)", identifier, dataset, strings.Join(ds.IdentifierNames(), ", "))
	}
	return s.find(ctx, tableName(ds.ID, ""), column, values)
}

// FindRelated returns the rows of a related table whose key column matches
// the dataset link column of rows. Each row is labelled with its key.
func (s *ReferenceService) FindRelated(ctx context.Context, dataset xconnector.SourceID, related string, rows xconnector.Table) (xconnector.Table, error) {
	ds, err := xconnector.LookupDataset(dataset)
	if err != nil {
		return xconnector.Table{}, err
	}
	rt, ok := ds.RelatedTable(related)
	if !ok {
		return xconnector.Table{}, xconnector.Errorf(xconnector.ENOTFOUND, "%s has no related table %q", dataset, related)
	}

	var keys []string
	seen := make(map[string]bool)
	for i := range rows.Rows {
		v := rows.Value(i, ds.LinkColumn)
		if v == xconnector.NotAValue || v == "" || seen[v] {
			continue
		}
		seen[v] = true
		keys = append(keys, v)
	}
	return s.find(ctx, tableName(ds.ID, rt.Name), rt.KeyColumn, keys)
}

func (s *ReferenceService) find(ctx context.Context, name, column string, values []string) (xconnector.Table, error) {
	columns, err := s.columns(ctx, name)
	if err != nil {
		return xconnector.Table{}, err
	}
	key := -1
	for i, c := range columns {
		if c == column {
			key = i
		}
	}
	if key < 0 {
		return xconnector.Table{}, xconnector.Errorf(xconnector.EINVALID, "table %s has no column %q", name, column)
	}

	table := xconnector.Table{Columns: columns}
	if len(values) == 0 {
		return table, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s) ORDER BY rowid",
		selectColumns(columns), quoteIdent(name), quoteIdent(column), placeholders(len(values)))
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return xconnector.Table{}, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		cells := make([]string, len(columns))
		dest := make([]any, len(columns))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return xconnector.Table{}, fmt.Errorf("failed to scan %s: %w", name, err)
		}
		table.Rows = append(table.Rows, xconnector.PropertyRow{Label: cells[key], Values: cells})
	}
	if err := rows.Err(); err != nil {
		return xconnector.Table{}, fmt.Errorf("failed to iterate %s: %w", name, err)
	}
	return table, nil
}

// LoadedTables lists the tables loaded for dataset, main table first.
func (s *ReferenceService) LoadedTables(ctx context.Context, dataset xconnector.SourceID) ([]LoadedTable, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, dataset, columns, loaded_at
		FROM dataset_tables
		WHERE dataset = ?
		ORDER BY name = dataset DESC, name
	`, string(dataset))
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}

	var tables []LoadedTable
	for rows.Next() {
		var t LoadedTable
		var id, cols, loadedAt string
		if err := rows.Scan(&t.Name, &id, &cols, &loadedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		t.Dataset = xconnector.SourceID(id)
		if err := json.Unmarshal([]byte(cols), &t.Columns); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to decode columns of %s: %w", t.Name, err)
		}
		if t.LoadedAt, err = parseRFC3339(loadedAt, "loaded_at"); err != nil {
			rows.Close()
			return nil, err
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate tables: %w", err)
	}
	rows.Close()

	// Counting needs the single connection the cursor above was holding.
	for i := range tables {
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(tables[i].Name)).Scan(&tables[i].Rows)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", tables[i].Name, err)
		}
	}
	return tables, nil
}
