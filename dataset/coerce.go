package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ColumnType is a declared storage type from the metadata registry.
type ColumnType string

const (
	TypeInteger  ColumnType = "INTEGER"
	TypeReal     ColumnType = "REAL"
	TypeText     ColumnType = "TEXT"
	TypeDate     ColumnType = "DATE"
	TypeDatetime ColumnType = "DATETIME"
)

// ValidType reports whether t is one of the five registry types.
func ValidType(t ColumnType) bool {
	switch t {
	case TypeInteger, TypeReal, TypeText, TypeDate, TypeDatetime:
		return true
	}
	return false
}

// Registry maps (table, column) to a declared type. Implemented by the
// store's metadata side table.
type Registry interface {
	ColumnType(table, column string) (ColumnType, bool, error)
	SetColumnType(table, column string, t ColumnType) error
}

// TypeResolver decides the type of a column that is present in the data
// but absent from the registry. Resolution is mandatory: coercion never
// guesses a type on its own.
type TypeResolver interface {
	Resolve(table, column string) (ColumnType, error)
}

// datetimeLayouts is the fixed ordered list of accepted literal formats.
// Order matters: the first layout that parses wins.
var datetimeLayouts = []string{
	"02/01/06 03:04 PM",
	"2006-01-02 15:04:05",
	"02/01/06 15:04:05",
	"02/01/06",
	"2006-01-02 15:04",
	"02/01/2006 03:04 PM",
	"02/01/2006 15:04",
}

// missing sentinels observed in the source exports
func isMissing(s string) bool {
	switch s {
	case "", "-", "no se registro ?":
		return true
	}
	return false
}

// CoerceReport collects diagnostics of one coercion pass.
type CoerceReport struct {
	Table string
	// Resolved lists columns that were absent from the registry and the
	// type the resolver assigned to them.
	Resolved map[string]ColumnType
	// Unparsed records raw values that failed every recognized format,
	// keyed by column. They were coerced to nil, not dropped.
	Unparsed map[string][]string
}

func (r *CoerceReport) addUnparsed(column, raw string) {
	if r.Unparsed == nil {
		r.Unparsed = make(map[string][]string)
	}
	// cap the diagnostic list per column, first twenty are enough to spot
	// a format drift
	if len(r.Unparsed[column]) < 20 {
		r.Unparsed[column] = append(r.Unparsed[column], raw)
	}
}

// Coerce applies per-column type coercion to every row of the table.
// Unknown columns are classified through the resolver and the decision is
// persisted to the registry. Unparseable cells become nil and are listed
// in the report; the batch is never aborted for them.
func Coerce(t *Table, reg Registry, res TypeResolver) (*CoerceReport, error) {
	report := &CoerceReport{Table: t.Name, Resolved: make(map[string]ColumnType)}

	types := make(map[string]ColumnType, len(t.Columns))
	for _, column := range t.Columns {
		ct, ok, err := reg.ColumnType(t.Name, column)
		if err != nil {
			return nil, fmt.Errorf("coerce %s: read registry for %q: %w", t.Name, column, err)
		}
		if !ok {
			if res == nil {
				return nil, fmt.Errorf("coerce %s: column %q not in type registry and no resolver configured", t.Name, column)
			}
			ct, err = res.Resolve(t.Name, column)
			if err != nil {
				return nil, fmt.Errorf("coerce %s: resolve type of %q: %w", t.Name, column, err)
			}
			if !ValidType(ct) {
				return nil, fmt.Errorf("coerce %s: resolver returned invalid type %q for %q", t.Name, ct, column)
			}
			if err := reg.SetColumnType(t.Name, column, ct); err != nil {
				return nil, fmt.Errorf("coerce %s: persist type of %q: %w", t.Name, column, err)
			}
			report.Resolved[column] = ct
		}
		types[column] = ct
	}

	for _, row := range t.Rows {
		for column, ct := range types {
			row[column] = coerceValue(row[column], ct, column, report)
		}
	}
	return report, nil
}

func coerceValue(v any, ct ColumnType, column string, report *CoerceReport) any {
	if v == nil {
		return nil
	}
	raw, isString := v.(string)
	if isString {
		raw = strings.TrimSpace(raw)
		if isMissing(raw) {
			return nil
		}
	} else {
		// keep a printable form so a mistyped cell shows up in the
		// unparsed diagnostics as itself, not as an empty string
		raw = fmt.Sprint(v)
	}

	switch ct {
	case TypeText:
		if isString {
			return raw
		}
		if ts, ok := v.(time.Time); ok {
			return ts.Format("2006-01-02 15:04:05")
		}
		return fmt.Sprint(v)

	case TypeInteger:
		switch x := v.(type) {
		case int64:
			return x
		case float64:
			return int64(math.Round(x))
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			report.addUnparsed(column, raw)
			return nil
		}
		// half-valued floats round before truncation
		return int64(math.Round(f))

	case TypeReal:
		switch x := v.(type) {
		case float64:
			return x
		case int64:
			return float64(x)
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			report.addUnparsed(column, raw)
			return nil
		}
		return f

	case TypeDate, TypeDatetime:
		ts, ok := v.(time.Time)
		if !ok {
			ts, ok = ParseTimestamp(raw)
			if !ok {
				report.addUnparsed(column, raw)
				return nil
			}
		}
		if ct == TypeDate {
			return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
		}
		return ts
	}
	return v
}

// ParseTimestamp tries the fixed ordered layout list against a raw value.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if isMissing(raw) {
		return time.Time{}, false
	}
	for _, layout := range datetimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
