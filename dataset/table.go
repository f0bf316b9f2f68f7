package dataset

import (
	"fmt"
	"strings"
	"time"
)

// Row is a single record. Values are nil, string, int64, float64 or
// time.Time depending on the declared column type.
type Row map[string]any

// Table is an ordered set of rows with a stable column order, matching
// one persisted table in the store.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Batch is one normalized import batch. Seq is the ingestion-order
// sequence number: batches are ordered ascending and always outrank rows
// loaded from the persisted table (which carry seq 0).
type Batch struct {
	Seq    int
	Source string
	Table  *Table
}

// Key identifies the deduplication key of a table. When Parts is set the
// key is a synthetic composite built by joining the part columns with "_"
// into a new column named Column.
type Key struct {
	Column string
	Parts  []string
}

// NewTable creates an empty table with the given column order.
func NewTable(name string, columns ...string) *Table {
	return &Table{Name: name, Columns: columns}
}

// HasColumn reports whether the table declares the column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends a column to the declaration if it is not present yet.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Append adds a row, extending the column declaration with any new keys.
func (t *Table) Append(r Row) {
	for c := range r {
		if !t.HasColumn(c) {
			t.Columns = append(t.Columns, c)
		}
	}
	t.Rows = append(t.Rows, r)
}

// Str returns the value of a column rendered as a trimmed string.
// nil values render as "".
func Str(r Row, column string) string {
	v, ok := r[column]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// Time returns a column as time.Time when it holds one.
func Time(r Row, column string) (time.Time, bool) {
	if ts, ok := r[column].(time.Time); ok && !ts.IsZero() {
		return ts, true
	}
	return time.Time{}, false
}

// Float returns a numeric column as float64 when it holds one.
func Float(r Row, column string) (float64, bool) {
	switch x := r[column].(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	}
	return 0, false
}

// Int returns a numeric column as int64 when it holds one.
func Int(r Row, column string) (int64, bool) {
	switch x := r[column].(type) {
	case int64:
		return x, true
	case float64:
		return int64(x), true
	}
	return 0, false
}

// NormalizeHeader replaces spaces in a column label with underscores,
// the canonical form used across all persisted tables.
func NormalizeHeader(label string) string {
	return strings.ReplaceAll(strings.TrimSpace(label), " ", "_")
}
