// Package table holds the in-memory dataset being enriched.
//
// Rows are identified by the value of a key column. Values are compared after
// trimming surrounding whitespace, and a cell that is empty or whitespace only
// counts as absent. A Table is not safe for concurrent mutation; the engine
// mutates it from a single goroutine.
package table

import (
	"fmt"
	"strings"
)

// DuplicatePolicy decides what happens when several rows share a key value.
type DuplicatePolicy string

const (
	// DuplicateUpdateAll keeps every row; an update by key touches all of them.
	DuplicateUpdateAll DuplicatePolicy = "update-all"
	// DuplicateReject fails the load on the first repeated key.
	DuplicateReject DuplicatePolicy = "reject"
)

// Options configure how raw records become a Table.
type Options struct {
	// KeyColumn names the column whose value identifies a row.
	KeyColumn string
	// EnsureColumns are appended to the header when missing (target columns).
	EnsureColumns []string
	// Duplicates selects the duplicate key policy. Empty means DuplicateUpdateAll.
	Duplicates DuplicatePolicy
}

// Table is an ordered set of rows sharing one header.
type Table struct {
	header    []string
	columns   map[string]int
	records   [][]string
	keyColumn string
	keyIndex  int
	byKey     map[string][]int
}

// Row is a read-only view of one table row.
type Row struct {
	t *Table
	i int
}

// Stats summarises enrichment progress for a target column.
type Stats struct {
	Rows        int
	Processed   int
	Unprocessed int
}

// New builds a Table from a header and data records. Records shorter than the
// header are padded; longer ones are rejected.
func New(header []string, records [][]string, opts Options) (*Table, error) {
	if len(header) == 0 {
		return nil, ErrEmptyHeader
	}

	t := &Table{
		header:    make([]string, 0, len(header)+len(opts.EnsureColumns)),
		columns:   make(map[string]int, len(header)+len(opts.EnsureColumns)),
		keyColumn: opts.KeyColumn,
		byKey:     make(map[string][]int, len(records)),
	}

	for _, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := t.columns[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		t.columns[name] = len(t.header)
		t.header = append(t.header, name)
	}

	keyIndex, ok := t.columns[opts.KeyColumn]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingKeyColumn, opts.KeyColumn)
	}
	t.keyIndex = keyIndex

	for _, name := range opts.EnsureColumns {
		if _, exists := t.columns[name]; !exists {
			t.columns[name] = len(t.header)
			t.header = append(t.header, name)
		}
	}

	t.records = make([][]string, len(records))
	for i, rec := range records {
		if len(rec) > len(header) {
			return nil, fmt.Errorf("%w: data row %d has %d cells, header has %d",
				ErrRaggedRow, i+1, len(rec), len(header))
		}
		row := make([]string, len(t.header))
		copy(row, rec)
		t.records[i] = row

		key := normalize(row[t.keyIndex])
		if key == "" {
			continue
		}
		if existing := t.byKey[key]; len(existing) > 0 && opts.Duplicates == DuplicateReject {
			return nil, fmt.Errorf("%w: %q on data rows %d and %d", ErrDuplicateKey, key, existing[0]+1, i+1)
		}
		t.byKey[key] = append(t.byKey[key], i)
	}

	return t, nil
}

// Header returns a copy of the column names in order.
func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}

// KeyColumn returns the name of the key column.
func (t *Table) KeyColumn() string {
	return t.keyColumn
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.records)
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Row returns a view of row i.
func (t *Table) Row(i int) Row {
	return Row{t: t, i: i}
}

// Records returns a deep copy of the data records, aligned with Header.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.records))
	for i, rec := range t.records {
		out[i] = append([]string(nil), rec...)
	}
	return out
}

// SelectUnprocessed returns the rows whose target column is empty, in table
// order.
func (t *Table) SelectUnprocessed(target string) []Row {
	col, ok := t.columns[target]
	var rows []Row
	for i, rec := range t.records {
		if !ok || normalize(rec[col]) == "" {
			rows = append(rows, Row{t: t, i: i})
		}
	}
	return rows
}

// UpdateByKey overwrites fields on every row whose key equals key and
// returns the number of rows touched. An unknown key is a no-op.
func (t *Table) UpdateByKey(key string, fields map[string]string) int {
	return t.update(key, "", fields)
}

// FillByKey is UpdateByKey restricted to rows whose target column is still
// empty, so rows that were already enriched are never overwritten.
func (t *Table) FillByKey(key, target string, fields map[string]string) int {
	return t.update(key, target, fields)
}

func (t *Table) update(key, target string, fields map[string]string) int {
	idx := t.byKey[normalize(key)]
	if len(idx) == 0 || len(fields) == 0 {
		return 0
	}

	for name := range fields {
		t.ensureColumn(name)
	}
	targetCol, guarded := t.columns[target]

	touched := 0
	for _, i := range idx {
		rec := t.records[i]
		if guarded && normalize(rec[targetCol]) != "" {
			continue
		}
		for name, value := range fields {
			rec[t.columns[name]] = value
		}
		touched++
	}
	return touched
}

// Stats counts processed and unprocessed rows for target.
func (t *Table) Stats(target string) Stats {
	s := Stats{Rows: len(t.records)}
	s.Unprocessed = len(t.SelectUnprocessed(target))
	s.Processed = s.Rows - s.Unprocessed
	return s
}

func (t *Table) ensureColumn(name string) {
	if _, ok := t.columns[name]; ok {
		return
	}
	t.columns[name] = len(t.header)
	t.header = append(t.header, name)
	for i := range t.records {
		t.records[i] = append(t.records[i], "")
	}
}

// Index returns the row's position in the table.
func (r Row) Index() int {
	return r.i
}

// Key returns the row's key value, trimmed.
func (r Row) Key() string {
	return normalize(r.t.records[r.i][r.t.keyIndex])
}

// Get returns the value of column name, or "" when the column is unknown.
func (r Row) Get(name string) string {
	col, ok := r.t.columns[name]
	if !ok {
		return ""
	}
	return r.t.records[r.i][col]
}

func normalize(s string) string {
	return strings.TrimSpace(s)
}
