package importer

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// rawSheet is one worksheet read into memory: a header row plus data
// rows, all as raw strings.
type rawSheet struct {
	headers   []string
	headerIdx map[string]int
	rows      [][]string
}

// readSheet loads a worksheet, skipping skipRows banner rows before the
// header row. When sheetName is empty the first sheet is used.
func readSheet(path, sheetName string, skipRows int) (*rawSheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("no sheets found in %s", path)
		}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows of sheet %s: %w", sheetName, err)
	}
	if len(rows) <= skipRows {
		return nil, fmt.Errorf("sheet %s is too short, expected a header row after %d banner rows", sheetName, skipRows)
	}

	s := &rawSheet{
		headers:   rows[skipRows],
		headerIdx: make(map[string]int),
		rows:      rows[skipRows+1:],
	}
	for i, h := range s.headers {
		s.headerIdx[strings.TrimSpace(h)] = i
	}
	return s, nil
}

// sheetNames lists the worksheets of a file.
func sheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// cell returns the value of a named column in a data row, "" when the
// row is ragged.
func (s *rawSheet) cell(row []string, header string) string {
	idx, ok := s.headerIdx[header]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// missingColumns returns the required headers the sheet does not carry,
// in the order they were asked for.
func (s *rawSheet) missingColumns(required []string) []string {
	var missing []string
	for _, c := range required {
		if _, ok := s.headerIdx[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
