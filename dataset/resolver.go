package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnknownColumn is returned when a column cannot be classified and no
// fallback type is configured.
var ErrUnknownColumn = errors.New("column not present in type registry")

// StdinResolver asks the operator to classify an unknown column. It
// blocks with no timeout; only attended runs should use it.
type StdinResolver struct {
	In  io.Reader
	Out io.Writer
}

var promptChoices = map[string]ColumnType{
	"1": TypeInteger,
	"2": TypeReal,
	"3": TypeText,
	"4": TypeDate,
	"5": TypeDatetime,
}

func (r *StdinResolver) Resolve(table, column string) (ColumnType, error) {
	scanner := bufio.NewScanner(r.In)
	for {
		fmt.Fprintf(r.Out, "Type for column %q of table %s\n(1: INTEGER, 2: REAL, 3: TEXT, 4: DATE, 5: DATETIME): ", column, table)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("read type choice: %w", err)
			}
			return "", fmt.Errorf("input closed while classifying column %q: %w", column, ErrUnknownColumn)
		}
		if ct, ok := promptChoices[strings.TrimSpace(scanner.Text())]; ok {
			fmt.Fprintf(r.Out, "Selected %s for column %q.\n", ct, column)
			return ct, nil
		}
		fmt.Fprintln(r.Out, "Invalid choice, try again.")
	}
}

// UnresolvedColumn is one deferred-review entry of a DefaultsResolver.
type UnresolvedColumn struct {
	Table    string
	Column   string
	Assigned ColumnType
}

// DefaultsResolver classifies unknown columns from a configuration-supplied
// table without blocking the run. Columns absent from Defaults get the
// Fallback type and are queued for operator review; with no fallback the
// run fails fast instead of guessing.
type DefaultsResolver struct {
	Defaults map[string]ColumnType
	Fallback ColumnType
	Review   []UnresolvedColumn
}

func (r *DefaultsResolver) Resolve(table, column string) (ColumnType, error) {
	if ct, ok := r.Defaults[column]; ok {
		return ct, nil
	}
	if r.Fallback == "" {
		return "", fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, column)
	}
	r.Review = append(r.Review, UnresolvedColumn{Table: table, Column: column, Assigned: r.Fallback})
	return r.Fallback, nil
}
